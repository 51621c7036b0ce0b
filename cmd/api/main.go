package main

import (
	"log"
	"os"

	"soltracker/internal/handlers"
	"soltracker/internal/routes"
	"soltracker/internal/store"
	"soltracker/pkg/config"
	"soltracker/pkg/solana"
)

func main() {
	// Initialize database
	db := config.InitDB()
	st := store.NewStore(db)

	// Initialize RabbitMQ for worker control
	rabbit := config.InitRabbitMQ()
	defer rabbit.Close()

	publisher, err := config.NewPublisher(rabbit)
	if err != nil {
		log.Fatal("Failed to create publisher:", err)
	}
	defer publisher.Close()

	rpcEndpoint := os.Getenv("RPC_HTTP_ENDPOINT")
	if rpcEndpoint == "" {
		log.Fatal("RPC_HTTP_ENDPOINT is required")
	}

	// Set up router
	r := routes.SetupRouter(routes.Handlers{
		Tracking:     handlers.NewTrackingHandler(publisher),
		Transactions: handlers.NewTransactionHandler(st),
		Tokens:       handlers.NewTokenHandler(st, nil),
		WalletTokens: handlers.NewWalletTokenHandler(st),
		Holdings:     handlers.NewHoldingsHandler(solana.NewHoldingsClient(rpcEndpoint)),
	})

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
