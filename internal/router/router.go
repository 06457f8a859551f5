package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"tteoksang-game-server/internal/handler"
	"tteoksang-game-server/internal/middleware"
	"tteoksang-game-server/pkg/apierror"
	"tteoksang-game-server/pkg/response"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler             *handler.Handler
	AdminHandler        *handler.AdminHandler
	Channel             http.Handler
	HandshakeMiddleware func(http.Handler) http.Handler
	LoginKey            string
	Logger              *zap.Logger
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader, middleware.LoginKeyHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, apierror.NotFound(""))
	})

	// Game channel; the handshake middleware runs on the upgrade request only.
	if cfg.Channel != nil {
		r.Group(func(r chi.Router) {
			if cfg.HandshakeMiddleware != nil {
				r.Use(cfg.HandshakeMiddleware)
			}
			r.Handle("/ws/game", cfg.Channel)
		})
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Handler != nil {
			r.Get("/health", cfg.Handler.Health)
			r.Get("/ready", cfg.Handler.Ready)
		}

		if cfg.AdminHandler != nil {
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireLoginKey(cfg.LoginKey))
				r.Get("/sessions", cfg.AdminHandler.GetSessions)
			})
		}
	})

	return r
}
