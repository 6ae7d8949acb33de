package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/nickfox/LLMCreativeStudio/internal/api/middleware"
	"github.com/nickfox/LLMCreativeStudio/internal/config"
	"github.com/nickfox/LLMCreativeStudio/internal/handlers"
	"github.com/nickfox/LLMCreativeStudio/internal/session"
	"github.com/nickfox/LLMCreativeStudio/internal/store"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(logger zerolog.Logger, cfg *config.Config, data store.DataStore, msgs store.MessageStore, redisStore *store.RedisStore, sessions *session.Manager) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	// Security middleware (order matters!)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(64 * 1024)) // 64KB max body
	r.Use(middleware.ValidateRequest)

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// Rate limiting needs Redis; skipped in dev runs without it
	if redisStore != nil {
		limiter := middleware.NewRateLimiter(redisStore.Client(), logger, middleware.RateLimiterConfig{
			Whitelist:        cfg.RateLimitWhitelist,
			AutoBlockEnabled: cfg.AutoBlockEnabled,
		})
		r.Use(limiter.Middleware)
	}

	// CORS - the desktop client calls from a file origin
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	h := handlers.NewHandler(data, msgs, sessions)

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/", h.Root)
	r.Get("/health", h.Health)
	r.Get("/stats", h.Stats)
	r.Get("/find", h.Search)
	r.Get("/participants", h.Participants)

	// Routing and session history
	r.Post("/chat", h.Chat)
	r.Get("/sessions", h.ListSessions)
	r.Route("/session/{id}", func(r chi.Router) {
		r.Post("/messages", h.AppendMessage)
		r.Get("/messages", h.Messages)
		r.Get("/debate", h.DebateStatus)
		r.Get("/context", h.Context)
		r.Delete("/", h.ClearSession)
	})

	// Projects and characters
	r.Post("/projects", h.CreateProject)
	r.Get("/projects", h.ListProjects)
	r.Route("/project/{id}", func(r chi.Router) {
		r.Get("/", h.GetProject)
		r.Delete("/", h.DeleteProject)
		r.Post("/characters", h.AssignCharacter)
		r.Get("/characters", h.ListCharacters)
		r.Delete("/characters", h.ClearCharacters)
		r.Delete("/characters/{name}", h.DeleteCharacter)
	})

	return r
}
