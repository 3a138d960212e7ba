package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"project-analyzer-web/config"
	"project-analyzer-web/database"
	"project-analyzer-web/server"
	"project-analyzer-web/services"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load configuration
	cfg := config.LoadConfig()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	logger := services.NewStructuredLogger(
		services.ParseLogLevel(cfg.Logging.Level),
		cfg.Logging.Format,
		os.Stdout,
	)

	// Optional PostgreSQL-backed session persistence.
	var repo services.SessionRepository
	if cfg.Session.Store == "postgres" {
		db, err := database.Connect(&cfg.Database)
		if err != nil {
			log.Fatalf("Failed to connect to session database: %v", err)
		}
		defer db.Close()
		repo = database.NewSessionRepository(db)
	}

	srv := server.NewServer(cfg, logger, repo)
	if err := srv.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
