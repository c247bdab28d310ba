package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gdg-garage/garage-meetup-api/internal/auth"
	"github.com/gdg-garage/garage-meetup-api/internal/config"
	"github.com/gdg-garage/garage-meetup-api/internal/database"
	"github.com/gdg-garage/garage-meetup-api/internal/handlers"
	"github.com/gdg-garage/garage-meetup-api/internal/notifier"
	"github.com/go-chi/chi/v5"
)

func main() {
	// Load Configuration
	cfg := config.LoadConfig()

	// Connect to Database
	db := database.Connect(cfg)

	// Initialize Handlers
	var eventNotifier notifier.Notifier
	if discordNotifier, err := notifier.NewDiscordNotifier(cfg); err != nil {
		log.Printf("Discord notifier not initialized: %v", err)
	} else {
		eventNotifier = discordNotifier
	}

	authHandler := auth.NewAuthHandler(cfg, db)
	eventHandler := handlers.NewEventHandler(db, eventNotifier)
	voteHandler := handlers.NewVoteHandler(db)
	apiKeyHandler := handlers.NewAPIKeyHandler(db)

	// Initialize Router
	r := chi.NewRouter()

	// Register Routes
	handlers.RegisterRoutes(r, cfg, authHandler, eventHandler, voteHandler, apiKeyHandler)

	// Start Server
	log.Printf("Starting server on port %s", cfg.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
