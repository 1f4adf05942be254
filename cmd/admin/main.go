// Package main provides account management utilities for Samplepedia.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"samplepedia/internal/config"
	"samplepedia/internal/database"
	"samplepedia/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/admin/main.go promote-staff <user_id>       - Grant staff rights")
		fmt.Println("  go run ./cmd/admin/main.go demote-staff <user_id>        - Revoke staff rights")
		fmt.Println("  go run ./cmd/admin/main.go grant-contributor <user_id>   - Add user to the contributor group")
		fmt.Println("  go run ./cmd/admin/main.go revoke-contributor <user_id>  - Remove user from the contributor group")
		fmt.Println("  go run ./cmd/admin/main.go list-staff                    - List staff and contributors")
		fmt.Println("  go run ./cmd/admin/main.go create-superuser              - Create staff account from SUPERUSER_* env")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	command := os.Args[1]

	switch command {
	case "promote-staff":
		setFlag(db, requireUserID(command), "is_staff", true)

	case "demote-staff":
		setFlag(db, requireUserID(command), "is_staff", false)

	case "grant-contributor":
		setFlag(db, requireUserID(command), "is_contributor", true)

	case "revoke-contributor":
		setFlag(db, requireUserID(command), "is_contributor", false)

	case "list-staff":
		listStaff(db)

	case "create-superuser":
		createSuperuser(db, cfg)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

func requireUserID(command string) string {
	if len(os.Args) < 3 {
		fmt.Printf("Usage: go run ./cmd/admin/main.go %s <user_id>\n", command)
		os.Exit(1)
	}
	return os.Args[2]
}

func setFlag(db *gorm.DB, userID, column string, value bool) {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fmt.Printf("User with ID %s not found\n", userID)
		} else {
			log.Fatalf("Database error: %v", err)
		}
		os.Exit(1)
	}

	current := user.IsStaff
	if column == "is_contributor" {
		current = user.IsContributor
	}
	if current == value {
		fmt.Printf("User %s (ID: %d) already has %s=%v\n", user.Username, user.ID, column, value)
		return
	}

	if err := db.Model(&user).Update(column, value).Error; err != nil {
		log.Fatalf("Failed to update user: %v", err)
	}

	fmt.Printf("Updated %s (ID: %d): %s=%v\n", user.Username, user.ID, column, value)
}

func listStaff(db *gorm.DB) {
	var users []models.User
	if err := db.Where("is_staff = ? OR is_contributor = ?", true, true).Find(&users).Error; err != nil {
		log.Fatalf("Failed to fetch users: %v", err)
	}

	if len(users) == 0 {
		fmt.Println("No staff or contributors found")
		return
	}

	fmt.Println("\nStaff and contributors:")
	fmt.Println("─────────────────────────────────────")
	for _, u := range users {
		role := "contributor"
		if u.IsStaff {
			role = "staff"
		}
		fmt.Printf("ID: %d | Username: %s | Email: %s | Role: %s\n", u.ID, u.Username, u.Email, role)
	}
	fmt.Println("─────────────────────────────────────")
}

// createSuperuser makes a staff account from SUPERUSER_USERNAME/EMAIL/PASSWORD.
// Idempotent: an existing account with that username is promoted instead.
func createSuperuser(db *gorm.DB, cfg *config.Config) {
	if cfg.SuperuserUsername == "" || cfg.SuperuserEmail == "" || cfg.SuperuserPassword == "" {
		log.Fatal("SUPERUSER_USERNAME, SUPERUSER_EMAIL and SUPERUSER_PASSWORD must all be set")
	}

	var existing models.User
	err := db.Where("username = ?", cfg.SuperuserUsername).First(&existing).Error
	if err == nil {
		if existing.IsStaff {
			fmt.Printf("Superuser %s already exists\n", existing.Username)
			return
		}
		if err := db.Model(&existing).Update("is_staff", true).Error; err != nil {
			log.Fatalf("Failed to promote existing user: %v", err)
		}
		fmt.Printf("Promoted existing user %s (ID: %d) to staff\n", existing.Username, existing.ID)
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Fatalf("Database error: %v", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.SuperuserPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	user := models.User{
		Username: cfg.SuperuserUsername,
		Email:    cfg.SuperuserEmail,
		Password: string(hashed),
		IsStaff:  true,
	}
	if err := db.Create(&user).Error; err != nil {
		log.Fatalf("Failed to create superuser: %v", err)
	}

	fmt.Printf("Created superuser %s (ID: %d)\n", user.Username, user.ID)
}
