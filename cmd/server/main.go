package main

import (
	"log"

	"github.com/labstack/echo/v4"
	"github.com/raiser-connect/backend/internal/router"
	"github.com/raiser-connect/backend/pkg/config"
	"github.com/raiser-connect/backend/validators"
)

func main() {
	// Initialize the document store
	store, err := config.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.CloseDB() // Ensure the connection is closed when main exits

	// Load configuration
	cfg := config.Load()

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Validator
	e.Validator = validators.NewValidator()

	// Setup routes and dependencies
	router.SetupRoutes(e, store, cfg)

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
