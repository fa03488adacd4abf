package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"spark_server/services"

	"github.com/gorilla/mux"
)

// InteractionController struct
type InteractionController struct {
	InteractionService *services.InteractionService
}

// NewInteractionController initializes the interaction controller
func NewInteractionController(service *services.InteractionService) *InteractionController {
	return &InteractionController{InteractionService: service}
}

// HandleSwipe records a swipe decision and returns the resulting match
// transition.
func (c *InteractionController) HandleSwipe(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ActorID  string `json:"actorId"`
		TargetID string `json:"targetId"`
		Decision string `json:"decision"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	log.Printf("🔄 Swipe request: %s -> %s (%s)", request.ActorID, request.TargetID, request.Decision)

	result, err := c.InteractionService.RecordSwipe(r.Context(), request.ActorID, request.TargetID, request.Decision)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// HandleGetUserInteractions returns every swipe recorded by a user.
func (c *InteractionController) HandleGetUserInteractions(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	if userID == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "userId is required"})
		return
	}

	interactions, err := c.InteractionService.GetUserInteractions(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, interactions)
}
