package api

import (
	"log"
	"log/slog"
	"time"

	"msghook-backend/internal/config"
	"msghook-backend/internal/handlers"
	"msghook-backend/internal/observability"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterDependencies holds all the dependencies required by the router setup,
// primarily handlers and configuration.
type RouterDependencies struct {
	WebhookHandler *handlers.WebhookHandlers
	MessageHandler *handlers.MessageHandlers
	StatsHandler   *handlers.StatsHandlers
	HealthHandler  *handlers.HealthHandlers
	Logger         *slog.Logger
	Metrics        *observability.Metrics
	Config         *config.Config
}

// NewRouter creates and configures the main Chi router for the application.
func NewRouter(deps RouterDependencies) *chi.Mux {
	r := chi.NewRouter()

	// --- Base Middleware Stack ---
	r.Use(middleware.RealIP)                        // Use X-Forwarded-For or X-Real-IP
	r.Use(RequestLogger(deps.Logger, deps.Metrics)) // Correlation id + structured access log + metrics
	r.Use(middleware.Recoverer)                     // Recover from panics, return 500
	r.Use(middleware.Timeout(60 * time.Second))     // Set a request timeout

	// --- CORS Configuration ---
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", handlers.SignatureHeader},
		MaxAge:         300, // Maximum value not ignored by any of major browsers
	}))

	// --- Health Probes ---
	if deps.HealthHandler != nil {
		r.Get("/health/live", deps.HealthHandler.HandleLive)
		r.Get("/health/ready", deps.HealthHandler.HandleReady)
	} else {
		log.Println("WARN: HealthHandler dependency is nil, skipping /health routes.")
	}

	// --- Webhook Ingestion ---
	// Public by necessity; the HMAC signature check inside the handler
	// secures it.
	if deps.WebhookHandler != nil {
		r.Post("/webhook", deps.WebhookHandler.HandleWebhook)
	} else {
		log.Println("WARN: WebhookHandler dependency is nil, skipping /webhook route.")
	}

	// --- Read Endpoints ---
	if deps.MessageHandler != nil {
		r.Get("/messages", deps.MessageHandler.HandleListMessages)
	} else {
		log.Println("WARN: MessageHandler dependency is nil, skipping /messages route.")
	}

	if deps.StatsHandler != nil {
		r.Get("/stats", deps.StatsHandler.HandleGetStats)
	} else {
		log.Println("WARN: StatsHandler dependency is nil, skipping /stats route.")
	}

	return r
}
