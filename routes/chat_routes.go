package routes

import (
	"spark_server/controllers"
	"spark_server/services"

	"github.com/gorilla/mux"
)

// RegisterChatRoutes sets up routes for chat-related operations under /api/chat
func RegisterChatRoutes(r *mux.Router, chatService *services.ChatService, mediaService *services.MediaService) {
	controller := controllers.NewChatController(chatService, mediaService)

	chatRouter := r.PathPrefix("/api/chat").Subrouter()
	chatRouter.HandleFunc("/message", controller.HandleSendMessage).Methods("POST")
	chatRouter.HandleFunc("/messages", controller.HandleGetMessages).Methods("GET")
	chatRouter.HandleFunc("/message/edit", controller.HandleEditMessage).Methods("PATCH")
	chatRouter.HandleFunc("/message/delete", controller.HandleDeleteMessage).Methods("POST")
	chatRouter.HandleFunc("/messages/mark-as-read", controller.HandleMarkConversationOpened).Methods("POST")
	chatRouter.HandleFunc("/message/view-once/open", controller.HandleOpenViewOnce).Methods("POST")
}
