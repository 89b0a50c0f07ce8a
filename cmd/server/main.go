package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/loca-mat/service-rental/internal/application"
	"github.com/loca-mat/service-rental/internal/config"
	"github.com/loca-mat/service-rental/internal/domain/rental"
	rentalEvents "github.com/loca-mat/service-rental/internal/events"
	"github.com/loca-mat/service-rental/internal/handler"
	"github.com/loca-mat/service-rental/internal/platform/auth"
	"github.com/loca-mat/service-rental/internal/platform/database"
	"github.com/loca-mat/service-rental/internal/platform/health"
	"github.com/loca-mat/service-rental/internal/platform/kafka"
	"github.com/loca-mat/service-rental/internal/platform/logger"
	"github.com/loca-mat/service-rental/internal/platform/middleware"
	"github.com/loca-mat/service-rental/internal/repository"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "service-rental")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-rental",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.ItemModel{},
			&repository.ClientModel{},
			&repository.ContractModel{},
			&repository.ContractLinkModel{},
		); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		dbURL := cfg.DBConfig.DatabaseURL()
		if err := database.RunMigrations(dbURL, "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		15*time.Minute,
		7*24*time.Hour,
	)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize the inventory store and pricing strategy
	store := repository.NewGormInventoryStore(db, cfg.LockTimeout)
	pricingStrategy := rental.NewStandardPricingStrategy()

	// Initialize application services
	bookingService := application.NewBookingService(store, pricingStrategy, kafkaProducer, log)
	fleetService := application.NewFleetService(store, log)
	clientService := application.NewClientService(store, log)
	reportService := application.NewReportService(store, log)

	// Initialize and start the fleet event consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.KafkaConfig.GroupPrefix + "rental-service"
	maintenanceConsumer := rentalEvents.NewMaintenanceEventConsumer(
		cfg.KafkaConfig.Brokers,
		groupID,
		fleetService,
		log,
	)
	defer func() { _ = maintenanceConsumer.Close() }()

	go func() {
		log.Info("starting fleet event consumer")
		if err := maintenanceConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("fleet event consumer error", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	contractHandler := handler.NewContractHandler(bookingService)
	fleetHandler := handler.NewFleetHandler(fleetService)
	clientHandler := handler.NewClientHandler(clientService)
	reportHandler := handler.NewReportHandler(reportService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, "service-rental")
	healthHandler.RegisterRoutes(router)

	// Register routes
	contractHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	fleetHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	clientHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	reportHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-rental...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-rental stopped")
}
