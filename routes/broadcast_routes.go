package routes

import (
	"spark_server/controllers"
	"spark_server/services"

	"github.com/gorilla/mux"
)

// RegisterBroadcastRoutes sets up routes for system broadcasts under /api/broadcast
func RegisterBroadcastRoutes(r *mux.Router, broadcastService *services.BroadcastService) {
	controller := controllers.NewBroadcastController(broadcastService)

	broadcastRouter := r.PathPrefix("/api/broadcast").Subrouter()
	broadcastRouter.HandleFunc("", controller.HandleBroadcast).Methods("POST")
	broadcastRouter.HandleFunc("/{broadcastId}", controller.HandleDeleteBroadcast).Methods("DELETE")
}
