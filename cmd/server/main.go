package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"msghook-backend/internal/api"
	"msghook-backend/internal/config"
	"msghook-backend/internal/handlers"
	"msghook-backend/internal/logging"
	"msghook-backend/internal/observability"
	"msghook-backend/internal/services"
	"msghook-backend/internal/store"
	"msghook-backend/internal/store/postgres"
	"msghook-backend/internal/store/sqlite"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	log.Println("Starting msghook backend...")

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	log.Println("Configuration loaded successfully.")

	// 2. Structured Logging
	logger := logging.Setup(cfg.LogLevel)

	// 3. Metrics
	metricsCtx, metricsCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer metricsCancel()
	metrics, metricsShutdown, err := observability.New(metricsCtx, observability.Config{
		ServiceName:    "msghook-backend",
		ServiceVersion: "1.0.0",
		OTLPEndpoint:   cfg.OTLPEndpoint,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize metrics: %v", err)
	}

	// 4. Storage Backend
	// Use context.Background() for initial setup, but request-scoped contexts later.
	dbCtx, dbCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer dbCancel()

	msgStore, err := openStore(dbCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("FATAL: Unable to open message store: %v", err)
	}
	defer msgStore.Close()

	// Initial table creation is the only schema management this service does.
	if err := msgStore.EnsureSchema(dbCtx); err != nil {
		log.Fatalf("FATAL: Unable to apply messages schema: %v", err)
	}
	log.Println("Message store initialized and schema applied.")

	// 5. Initialize Services
	ingestService := services.NewIngestService(msgStore, cfg.WebhookSecret, metrics, logger)
	messageService := services.NewMessageService(msgStore)
	statsService := services.NewStatsService(msgStore)
	log.Println("Services initialized.")

	// 6. Initialize Handlers
	webhookHandler := handlers.NewWebhookHandlers(ingestService)
	messageHandler := handlers.NewMessageHandlers(messageService)
	statsHandler := handlers.NewStatsHandlers(statsService)
	healthHandler := handlers.NewHealthHandlers(msgStore, cfg.WebhookSecret)
	log.Println("Handlers initialized.")

	// 7. Setup Router & Inject Dependencies
	router := api.NewRouter(api.RouterDependencies{
		WebhookHandler: webhookHandler,
		MessageHandler: messageHandler,
		StatsHandler:   statsHandler,
		HealthHandler:  healthHandler,
		Logger:         logger,
		Metrics:        metrics,
		Config:         cfg,
	})
	log.Println("HTTP router configured.")

	// 8. Configure and Start HTTP Server
	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
		// Production hardening: Set timeouts to avoid Slowloris attacks
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Channel to listen for OS signals for graceful shutdown
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	// Run server in a goroutine so it doesn't block
	go func() {
		log.Printf("Server starting and listening on port %s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: Could not listen on %s: %v\n", cfg.HTTPPort, err)
		}
		log.Println("Server listener routine stopped.")
	}()

	// Wait for interrupt signal
	<-stopChan
	log.Println("Shutdown signal received, initiating graceful shutdown...")

	// Create a deadline context for shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Attempt graceful shutdown
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("WARN: Server graceful shutdown failed: %v", err)
	}

	// Flush any pending metric exports before exiting.
	if err := metricsShutdown(shutdownCtx); err != nil {
		log.Printf("WARN: Metrics shutdown failed: %v", err)
	}

	log.Println("Server shutdown complete.")
}

// openStore selects the storage backend from the DATABASE_URL scheme:
// postgres:// (or postgresql://) connects through a pgx pool, anything else
// is treated as a SQLite location.
func openStore(ctx context.Context, dbURL string) (store.MessageStore, error) {
	if strings.HasPrefix(dbURL, "postgres://") || strings.HasPrefix(dbURL, "postgresql://") {
		dbpool, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			return nil, err
		}
		if err := dbpool.Ping(ctx); err != nil {
			dbpool.Close()
			return nil, err
		}
		log.Println("Database connection pool established and pinged successfully.")
		return postgres.NewPostgresStore(dbpool), nil
	}

	log.Println("Using SQLite message store.")
	return sqlite.Open(sqlitePath(dbURL))
}

// sqlitePath strips the sqlite URL scheme, accepting sqlite:///relative/path,
// sqlite:////absolute/path and bare filesystem paths.
func sqlitePath(dbURL string) string {
	if s := strings.TrimPrefix(dbURL, "sqlite:///"); s != dbURL {
		return s
	}
	return strings.TrimPrefix(dbURL, "sqlite://")
}
