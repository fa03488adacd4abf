package routes

import (
	"spark_server/controllers"
	"spark_server/services"

	"github.com/gorilla/mux"
)

// RegisterInteractionRoutes sets up routes for swipe operations under /api/interactions
func RegisterInteractionRoutes(r *mux.Router, interactionService *services.InteractionService) {
	controller := controllers.NewInteractionController(interactionService)

	interactionRouter := r.PathPrefix("/api/interactions").Subrouter()
	interactionRouter.HandleFunc("/swipe", controller.HandleSwipe).Methods("POST")
	interactionRouter.HandleFunc("/{userId}", controller.HandleGetUserInteractions).Methods("GET")
}
