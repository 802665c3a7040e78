package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc/health"

	grpcapi "mediarental-backend/internal/api/grpc"
	httpapi "mediarental-backend/internal/api/http"
	"mediarental-backend/internal/config"
	"mediarental-backend/internal/jobs"
	"mediarental-backend/internal/logger"
	"mediarental-backend/internal/repository/postgres"
	"mediarental-backend/internal/scheduler"
	"mediarental-backend/internal/service"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	applySchema := flag.Bool("apply-schema", false, "Create the booking tables before serving")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting media rental backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "http", cfg.GetServerAddress(), "grpc", cfg.GetGRPCAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	logger.Debug("Connecting to database...", "connection_string", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database))
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if cfg.Database.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	}

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)
	if *applySchema || cfg.Database.ApplySchema {
		if err := store.ApplySchema(context.Background()); err != nil {
			logger.Error("Failed to apply schema", "error", err)
			log.Fatalf("Failed to apply schema: %v", err)
		}
	}

	// Initialize Services
	clock := service.RealClock()
	inventorySvc := service.NewInventoryPool(store.Inventory(), store.Rentals(), store, clock)
	discountSvc := service.NewDiscountResolver(store.Discounts(), store, clock, cfg.Booking.MaxDiscountDays)
	ledgerSvc := service.NewRentalLedger(store.Rentals(), store, clock)
	paymentSvc := service.NewPaymentRecorder(store.Payments(), store, clock)
	bookingSvc := service.NewBookingService(
		inventorySvc,
		discountSvc,
		ledgerSvc,
		paymentSvc,
		store.Catalog(),
		store,
		clock,
		service.NewULIDGen(),
	)

	// Set up gRPC server (health + reflection)
	healthSrv := health.NewServer()
	grpcServer := grpcapi.NewServer(healthSrv)
	lis, err := net.Listen("tcp", cfg.GetGRPCAddress())
	if err != nil {
		logger.Error("Failed to listen", "error", err, "address", cfg.GetGRPCAddress())
		log.Fatalf("Failed to listen: %v", err)
	}
	go func() {
		logger.Info("gRPC server listening", "address", cfg.GetGRPCAddress())
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("Failed to serve gRPC", "error", err)
		}
	}()

	// Keep the health status current from the database probe
	jobRunner := jobs.NewJobRunner(ledgerSvc, store, healthSrv, &config.Config{
		Booking:   cfg.Booking,
		Scheduler: config.SchedulerConfig{ProbeDatabase: cfg.Scheduler.ProbeDatabase},
	})
	probe := scheduler.NewScheduler(jobRunner)
	jobRunner.ProbeDatabase()
	probe.Start()

	// Set up HTTP server
	router := mux.NewRouter()
	httpapi.RegisterRoutes(router, httpapi.NewBookingHandler(bookingSvc, inventorySvc, discountSvc, ledgerSvc, paymentSvc))
	httpServer := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down...")
	healthSrv.Shutdown()
	probe.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP shutdown error", "error", err)
	}
	grpcServer.GracefulStop()
	logger.Info("Server stopped. Goodbye!")
}
