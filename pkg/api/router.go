// Package api provides HTTP API server components.
package api

import (
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/chatforge/chatforge/config"
	"github.com/chatforge/chatforge/pkg/api/handlers"
	"github.com/chatforge/chatforge/pkg/api/middleware"
	"github.com/chatforge/chatforge/pkg/logger"

	_ "github.com/chatforge/chatforge/docs/swagger" // Import generated docs
)

// Handlers holds all HTTP handlers.
type Handlers struct {
	// Auth handles registration, login and session endpoints
	Auth *handlers.AuthHandler

	// Health handles health check endpoints
	Health *handlers.HealthHandler

	// Memory handles memory inspection endpoints
	Memory *handlers.MemoryHandler

	// WebSocket handles chat connection upgrades
	WebSocket *handlers.WebSocketHandler

	// Authn validates access tokens for protected routes
	Authn middleware.Authenticator

	// Metrics is the optional metrics recorder
	Metrics middleware.MetricsRecorder

	// RateLimiter guards the public auth endpoints; nil disables limiting
	RateLimiter *middleware.RateLimiter
}

// NewRouter creates a new chi router with middleware and routes.
func NewRouter(cfg *config.Config, log logger.Logger, handlers *Handlers) chi.Router {
	r := chi.NewRouter()

	// Register global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Tracing(middleware.DefaultTracingOptions()))

	// Add metrics middleware if provided
	if handlers.Metrics != nil {
		r.Use(middleware.Metrics(handlers.Metrics))
	}

	r.Use(middleware.CORS(&cfg.Server.CORS))

	// Register routes
	RegisterRoutes(r, cfg, handlers)

	return r
}

// RegisterRoutes registers all API routes.
func RegisterRoutes(r chi.Router, cfg *config.Config, h *Handlers) {
	requireAuth := middleware.Auth(h.Authn)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Auth routes
		if h.Auth != nil {
			r.Route("/auth", func(r chi.Router) {
				// Public endpoints, rate limited per client
				r.Group(func(r chi.Router) {
					if h.RateLimiter != nil {
						r.Use(middleware.RateLimit(h.RateLimiter))
					}
					r.Use(middleware.Timeout(cfg.Server.HTTP.ReadTimeout))

					r.Post("/register", h.Auth.Register)
					r.Post("/login", h.Auth.Login)
					r.Post("/refresh", h.Auth.Refresh)
					r.Post("/sms/send", h.Auth.SendCode)
					r.Post("/sms/verify", h.Auth.VerifyCode)
				})

				// Endpoints requiring a valid access token
				r.Group(func(r chi.Router) {
					r.Use(requireAuth)
					r.Use(middleware.Timeout(cfg.Server.HTTP.ReadTimeout))

					r.Get("/me", h.Auth.Me)
					r.Post("/logout", h.Auth.Logout)
					r.Post("/account/delete", h.Auth.DeleteAccount)
				})
			})
		}

		// Memory routes
		if h.Memory != nil {
			r.Route("/memory/{namespace}", func(r chi.Router) {
				r.Use(requireAuth)

				r.Post("/", h.Memory.StoreMemory)
				r.Get("/", h.Memory.SearchMemory)
				r.Get("/block", h.Memory.PreviewBlock)
			})
		}
	})

	// WebSocket chat endpoint; auth happens in the handshake, not via
	// middleware, so failures can use websocket close codes.
	if h.WebSocket != nil {
		r.Get("/ws/chat", h.WebSocket.ServeHTTP)
	}

	// Health check routes (not versioned)
	if h.Health != nil {
		r.Get("/health", h.Health.Health)
		r.Get("/ready", h.Health.Ready)
		r.Get("/status", h.Health.Status)
	}

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.WrapHandler)
}
