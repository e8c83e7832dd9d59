package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	govalidator "github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/stayease/hotel-booking-backend/internal/bootstrap"
	"github.com/stayease/hotel-booking-backend/internal/config"
	"github.com/stayease/hotel-booking-backend/internal/handlers"
	"github.com/stayease/hotel-booking-backend/internal/middleware"
	"github.com/stayease/hotel-booking-backend/internal/services"
	"github.com/stayease/hotel-booking-backend/pkg/jwt"
	"github.com/stayease/hotel-booking-backend/pkg/validator"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting hotel booking backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Custom binding tags (thaiphone, roomstatus)
	if v, ok := binding.Validator.Engine().(*govalidator.Validate); ok {
		if err := validator.RegisterBindingValidators(v); err != nil {
			logger.Fatalf("Failed to register validators: %v", err)
		}
	}

	// Storage
	stores, db, err := bootstrap.OpenStores(cfg.Database, logger)
	if err != nil {
		logger.Fatalf("Failed to open store: %v", err)
	}
	defer db.Close()

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
	authService := services.NewAuthService(stores.Users, jwtService, cfg.Security.BcryptCost, logger)
	inventoryService := services.NewRoomInventoryService(stores.RoomTypes, logger)
	bookingService := services.NewBookingService(stores.Bookings, stores.Slips, stores.RoomTypes, logger)
	packageService := services.NewPackageService(stores.Packages)

	scheduler, closeScheduler, err := bootstrap.NewScheduler(cfg.Scheduler, stores, logger)
	if err != nil {
		logger.Fatalf("Failed to build scheduler: %v", err)
	}
	defer closeScheduler()
	if cfg.Scheduler.Enabled {
		scheduler.Start()
	} else {
		logger.Warn("Reconciliation scheduler disabled; sweeps run only on demand")
	}

	// Initialize Gin router
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	if cfg.Security.EnableRequestLog {
		router.Use(middleware.RequestLogger(logger))
	}

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	routes := &handlers.Routes{
		JWT:      jwtService,
		Health:   handlers.NewHealthHandler(db, version),
		Auth:     handlers.NewAuthHandler(authService, logger),
		Rooms:    handlers.NewRoomHandler(inventoryService, logger),
		Bookings: handlers.NewBookingHandler(bookingService, logger),
		Payments: handlers.NewPaymentHandler(bookingService, cfg.Payment.PromptPayID, logger),
		Packages: handlers.NewPackageHandler(packageService, logger),
		Admin:    handlers.NewAdminHandler(scheduler, logger),
	}
	routes.Register(router)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	scheduler.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}
