package controllers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"spark_server/models"
	"spark_server/services"
)

// ChatController struct
type ChatController struct {
	ChatService  *services.ChatService
	MediaService *services.MediaService
}

// NewChatController initializes the chat controller
func NewChatController(chatService *services.ChatService, mediaService *services.MediaService) *ChatController {
	return &ChatController{ChatService: chatService, MediaService: mediaService}
}

// HandleSendMessage - Handles appending a new message
func (c *ChatController) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	var message models.Message
	if err := json.NewDecoder(r.Body).Decode(&message); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	stored, err := c.ChatService.AppendMessage(r.Context(), message)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, stored)
}

// HandleGetMessages - Fetch messages based on matchId
func (c *ChatController) HandleGetMessages(w http.ResponseWriter, r *http.Request) {
	matchID := r.URL.Query().Get("matchId")
	limitStr := r.URL.Query().Get("limit")

	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		limit = 50
	}

	messages, err := c.ChatService.GetMessages(r.Context(), matchID, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, messages)
}

// HandleEditMessage rewrites a text message's body.
func (c *ChatController) HandleEditMessage(w http.ResponseWriter, r *http.Request) {
	var request struct {
		MatchID   string `json:"matchId"`
		CreatedAt string `json:"createdAt"`
		SenderID  string `json:"senderId"`
		Text      string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	if err := c.ChatService.EditMessage(r.Context(), request.MatchID, request.CreatedAt, request.SenderID, request.Text); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// HandleDeleteMessage removes a single message sent by the requester.
func (c *ChatController) HandleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	var request struct {
		MatchID   string `json:"matchId"`
		CreatedAt string `json:"createdAt"`
		SenderID  string `json:"senderId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	if err := c.ChatService.DeleteMessage(r.Context(), request.MatchID, request.CreatedAt, request.SenderID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// HandleMarkConversationOpened resets the requester's unread counter.
func (c *ChatController) HandleMarkConversationOpened(w http.ResponseWriter, r *http.Request) {
	var request struct {
		MatchID string `json:"matchId"`
		UserID  string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	log.Printf("🔄 Conversation %s opened by %s", request.MatchID, request.UserID)

	if err := c.ChatService.MarkConversationOpened(r.Context(), request.UserID, request.MatchID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// HandleOpenViewOnce performs the authoritative view-once open transition.
func (c *ChatController) HandleOpenViewOnce(w http.ResponseWriter, r *http.Request) {
	var request struct {
		MatchID   string `json:"matchId"`
		CreatedAt string `json:"createdAt"`
		ViewerID  string `json:"viewerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	if err := c.MediaService.OpenViewOnce(r.Context(), request.MatchID, request.CreatedAt, request.ViewerID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
