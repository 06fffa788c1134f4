package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"cleancity/backend/internal/api/handler"
	"cleancity/backend/internal/models"
	"cleancity/backend/internal/storage"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     os.Getenv("REDIS_ADDR"),
		Password: os.Getenv("REDIS_PASSWORD"),
	})

	storageSvc := storage.NewStorageService(db, rdb, nil)

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "set-role":
		if len(os.Args) != 4 {
			fmt.Println("Usage: admin set-role <user_id> <role>")
			os.Exit(1)
		}
		userID := os.Args[2]
		role := models.Role(os.Args[3])
		if !role.Valid() {
			fmt.Printf("Invalid role %q. Valid roles: user, worker, admin, super_admin.\n", os.Args[3])
			os.Exit(1)
		}
		if err := setRole(storageSvc, userID, role); err != nil {
			log.Fatalf("Error setting role: %v", err)
		}
		fmt.Printf("User %s is now %s.\n", userID, role)
	case "ban":
		if len(os.Args) < 3 {
			fmt.Println("Usage: admin ban <user_id> [duration_in_hours]")
			os.Exit(1)
		}
		userID := os.Args[2]
		var duration time.Duration
		if len(os.Args) > 3 {
			hours, err := strconv.Atoi(os.Args[3])
			if err != nil {
				fmt.Println("Invalid duration. Please provide an integer.")
				os.Exit(1)
			}
			duration = time.Duration(hours) * time.Hour
		}
		if err := storageSvc.RevokeUser(userID, duration); err != nil {
			log.Fatalf("Error banning user: %v", err)
		}
		fmt.Printf("User %s has been banned.\n", userID)
	case "unban":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin unban <user_id>")
			os.Exit(1)
		}
		userID := os.Args[2]
		if err := storageSvc.RestoreUser(userID); err != nil {
			log.Fatalf("Error unbanning user: %v", err)
		}
		fmt.Printf("User %s has been unbanned.\n", userID)
	case "token":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin token <user_id>")
			os.Exit(1)
		}
		token, err := mintToken(storageSvc, os.Args[2])
		if err != nil {
			log.Fatalf("Error minting token: %v", err)
		}
		fmt.Println(token)
	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}

func setRole(s storage.Storage, userID string, role models.Role) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("user %s not found", userID)
	}
	return s.UpdateUserRole(userID, role)
}

// mintToken issues a token for the user's current stored role, for local
// testing against the API.
func mintToken(s storage.Storage, userID string) (string, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return "", fmt.Errorf("JWT_SECRET is not set")
	}
	user, err := s.GetUserByID(userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", fmt.Errorf("user %s not found", userID)
	}
	return handler.GenerateToken([]byte(secret), user.ID, user.Role)
}
