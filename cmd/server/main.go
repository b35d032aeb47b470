package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dealhive/dealhive/internal"
	"github.com/dealhive/dealhive/internal/handler"
	"github.com/dealhive/dealhive/internal/metrics"
	"github.com/dealhive/dealhive/internal/middleware"
	"github.com/dealhive/dealhive/internal/service"
	"github.com/dealhive/dealhive/internal/store"
	"github.com/dealhive/dealhive/internal/store/memory"
	"github.com/dealhive/dealhive/internal/store/postgres"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize the store
	var st store.Store
	switch cfg.StoreDriver {
	case "postgres":
		db, err := sql.Open("pgx", cfg.DatabaseUrl)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		defer db.Close()

		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("database ping failed: %w", err)
		}

		if err := internal.RunMigrations(db); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		logger.Info("Database ready")

		st = postgres.New(db)
	case "memory":
		logger.Warn("Using in-memory store; data is not persisted")
		st = memory.New()
	}

	// Initialize services
	catalog := service.NewPlanCatalog(st, logger)
	entitlement := service.NewEntitlementService(st, catalog, logger)
	wallet := service.NewWalletService(st, entitlement, logger)
	redemption := service.NewRedemptionService(st, entitlement, logger)

	// Initialize middleware
	identityMw := middleware.NewIdentityMiddleware(logger)
	loggingMw := middleware.NewRequestLoggingMiddleware(logger)
	metricsAuthMw := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword)

	// Initialize handlers
	entitlementHandler := handler.NewEntitlementHandler(entitlement, logger)
	walletHandler := handler.NewWalletHandler(wallet, logger)
	redemptionHandler := handler.NewRedemptionHandler(redemption, logger)

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Metrics endpoint (basic auth when configured)
	mux.Handle("GET /metrics", metricsAuthMw.Handler(promhttp.Handler()))

	// API routes require a resolved identity
	requireUser := middleware.Stack(identityMw.RequireUser)

	entitlementHandler.RegisterRoutes(mux, requireUser)
	walletHandler.RegisterRoutes(mux, requireUser)
	redemptionHandler.RegisterRoutes(mux, requireUser)

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      loggingMw.Handler(metrics.Middleware(mux)),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env, "store", cfg.StoreDriver)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	<-sigChan
	logger.Info("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
		return err
	}

	logger.Info("Server stopped")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
