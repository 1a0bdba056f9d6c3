package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/yukikurage/project-collab-api/internal/config"
	"github.com/yukikurage/project-collab-api/internal/database"
	"github.com/yukikurage/project-collab-api/internal/repository"
	"github.com/yukikurage/project-collab-api/internal/services"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Println("Usage: promote-admin <email>")
		os.Exit(1)
	}

	email := os.Args[1]
	cfg := config.Load()

	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	authService := services.NewAuthService(
		repository.NewUserRepository(database.GetDB()),
		services.NewJWTService(cfg.JWTSecret, cfg.JWTExpiry),
	)

	user, err := authService.PromoteToAdmin(context.Background(), email)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			log.Fatalf("No user found with email: %s", email)
		}
		log.Fatalf("Failed to update user: %v", err)
	}

	fmt.Printf("Successfully promoted %s (%s) to Admin\n", user.Email, user.ID)
}
