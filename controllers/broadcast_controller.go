package controllers

import (
	"encoding/json"
	"net/http"

	"spark_server/services"

	"github.com/gorilla/mux"
)

// BroadcastController struct
type BroadcastController struct {
	BroadcastService *services.BroadcastService
}

// NewBroadcastController initializes the broadcast controller
func NewBroadcastController(service *services.BroadcastService) *BroadcastController {
	return &BroadcastController{BroadcastService: service}
}

// HandleBroadcast sends a system notice to every user.
func (c *BroadcastController) HandleBroadcast(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Text        string `json:"text"`
		IncludeBots bool   `json:"includeBots"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	result, err := c.BroadcastService.Broadcast(r.Context(), request.Text, request.IncludeBots)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// HandleDeleteBroadcast withdraws a broadcast from every recipient.
func (c *BroadcastController) HandleDeleteBroadcast(w http.ResponseWriter, r *http.Request) {
	broadcastID := mux.Vars(r)["broadcastId"]

	if err := c.BroadcastService.DeleteBroadcast(r.Context(), broadcastID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
