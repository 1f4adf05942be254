// Command migrate applies the database schema explicitly.
//
// Development connections auto-migrate on startup; production deployments run
// this binary before starting the server.
package main

import (
	"log"

	"samplepedia/internal/config"
	"samplepedia/internal/database"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Migration completed")
}
