package main

import (
	"log"
	"net/http"
	"os"

	"spark_server/controllers"
	"spark_server/routes"
	"spark_server/services"
	"spark_server/socket"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env if present; real deployments rely on the environment.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	log.Println("Initializing DynamoDB client...")
	dynamoClient := services.InitializeDynamoDBClient()
	dynamoService := &services.DynamoService{Client: dynamoClient}
	log.Println("DynamoDB client initialized.")

	s3Service := services.InitializeS3Service()

	// Initialize Services
	userProfileService := &services.UserProfileService{Dynamo: dynamoService}
	notificationService := &services.NotificationService{DispatchURL: os.Getenv("PUSH_DISPATCH_URL")}
	broadcastService := &services.BroadcastService{Dynamo: dynamoService, Profiles: userProfileService}
	chatService := &services.ChatService{
		Dynamo:     dynamoService,
		Profiles:   userProfileService,
		Broadcasts: broadcastService,
		Notifier:   notificationService,
	}
	botService := &services.BotService{
		WebhookURL: os.Getenv("BOT_WEBHOOK_URL"),
		Chat:       chatService,
	}
	chatService.Bot = botService
	interactionService := &services.InteractionService{
		Dynamo:   dynamoService,
		Profiles: userProfileService,
		Notifier: notificationService,
		Bot:      botService,
	}
	matchService := &services.MatchService{Dynamo: dynamoService}
	mediaService := &services.MediaService{Dynamo: dynamoService, Blobs: s3Service}

	// Set up the server port
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Using server port: %s\n", port)

	// Initialize the router
	r := mux.NewRouter()

	r.HandleFunc("/", controllers.WelcomeHandler).Methods("GET")
	r.HandleFunc("/health", controllers.HealthCheckHandler).Methods("GET")

	// Register routes
	routes.RegisterUserProfileRoutes(r, userProfileService)
	routes.RegisterInteractionRoutes(r, interactionService)
	routes.RegisterChatRoutes(r, chatService, mediaService)
	routes.RegisterMatchRoutes(r, matchService)
	routes.RegisterBroadcastRoutes(r, broadcastService)
	routes.RegisterS3Routes(r, s3Service)

	// Realtime chat fan-in
	socketServer := socket.NewSocketServer()
	go func() {
		if err := socketServer.Serve(); err != nil {
			log.Fatalf("Socket server error: %v", err)
		}
	}()
	defer socketServer.Close()
	r.PathPrefix("/socket.io/").Handler(socketServer)

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	// Start the HTTP server
	log.Printf("Starting server on port %s...\n", port)
	log.Fatal(http.ListenAndServe(":"+port, corsHandler))
}
