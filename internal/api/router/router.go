// Package router wires the HTTP surface: the WhatsApp webhook plus the
// operational endpoints (health, metrics).
package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ethiomaids/platform/internal/conversation"
	httpmiddleware "github.com/ethiomaids/platform/internal/http/middleware"
	"github.com/ethiomaids/platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	WebhookHandler *conversation.Handler
	MetricsHandler http.Handler

	CORSAllowedOrigins []string

	// Per-IP throttle for the webhook route. Zero disables it.
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthCheck)

	if cfg.WebhookHandler != nil {
		r.Group(func(webhook chi.Router) {
			if cfg.RateLimitPerSecond > 0 && cfg.RateLimitBurst > 0 {
				webhook.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
			}
			webhook.Post("/webhooks/whatsapp", cfg.WebhookHandler.ServeHTTP)
			// Preflight from browser-based test harnesses.
			webhook.Options("/webhooks/whatsapp", cfg.WebhookHandler.ServeHTTP)
		})
	}

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
