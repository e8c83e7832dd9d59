package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stayease/hotel-booking-backend/internal/bootstrap"
	"github.com/stayease/hotel-booking-backend/internal/config"
	"github.com/stayease/hotel-booking-backend/internal/models"
	"github.com/stayease/hotel-booking-backend/internal/services"
	"github.com/stayease/hotel-booking-backend/pkg/jwt"
)

func main() {
	var req models.RegisterRequest
	flag.StringVar(&req.Email, "email", "", "admin email (required)")
	flag.StringVar(&req.Password, "password", os.Getenv("ADMIN_PASSWORD"), "admin password, at least 8 characters (or ADMIN_PASSWORD)")
	flag.StringVar(&req.FirstName, "first-name", "Admin", "first name")
	flag.StringVar(&req.LastName, "last-name", "", "last name")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if req.Email == "" || req.Password == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Database.IsMemory() {
		logger.Fatal("create-admin needs a persistent DATABASE_URL")
	}

	stores, db, err := bootstrap.OpenStores(cfg.Database, logger)
	if err != nil {
		logger.Fatalf("Failed to open store: %v", err)
	}
	defer db.Close()

	auth := services.NewAuthService(stores.Users, jwt.NewService(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry), cfg.Security.BcryptCost, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	user, created, err := auth.EnsureAdmin(ctx, &req)
	if err != nil {
		logger.Fatalf("Failed to create admin: %v", err)
	}

	if created {
		fmt.Printf("Created ADMIN %s (%s)\n", user.Email, user.ID)
	} else {
		fmt.Printf("Promoted %s (%s) to ADMIN and reset its password\n", user.Email, user.ID)
	}
}
