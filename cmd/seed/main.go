// Command main runs the database seeder for Samplepedia.
package main

import (
	"flag"
	"log"

	"samplepedia/internal/config"
	"samplepedia/internal/database"
	"samplepedia/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numTasks := flag.Int("tasks", 200, "Number of analysis tasks to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	skipBcrypt := flag.Bool("skip-bcrypt", false, "Store plaintext passwords for faster seeding")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d users, %d tasks, clean=%v\n", *numUsers, *numTasks, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Seed(db, seed.Options{
		NumUsers:    *numUsers,
		NumTasks:    *numTasks,
		ShouldClean: *shouldClean,
		SkipBcrypt:  *skipBcrypt,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("All done. Test users have the password: password123")
}
