package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"event-ticketing-api/internal/handlers"
	"event-ticketing-api/internal/middleware"
)

// Handlers groups the HTTP handlers mounted by NewRouter
type Handlers struct {
	Auth   *handlers.AuthHandler
	Users  *handlers.UserHandler
	Events *handlers.EventHandler
	Ticket *handlers.TicketHandler
	Audit  *handlers.AuditHandler
	Health *handlers.HealthHandler
}

// RouterConfig holds the cross-cutting pieces of the HTTP stack
type RouterConfig struct {
	AllowedOrigins []string
	Auth           *middleware.AuthMiddleware
	// LoginLimiter throttles POST /login/. Nil disables throttling.
	LoginLimiter *middleware.LoginRateLimiter
}

// NewRouter builds the chi router. Routes are registered without a trailing
// slash; StripSlashes makes "/events/" and "/events" equivalent.
func NewRouter(h Handlers, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.ErrorHandlingMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Retry-After", "X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(chimiddleware.StripSlashes)

	r.NotFound(middleware.NotFoundHandler().ServeHTTP)
	r.MethodNotAllowed(middleware.MethodNotAllowedHandler().ServeHTTP)

	// Platform
	r.Get("/health", h.Health.Health)
	r.Get("/swagger/doc.json", h.Health.SwaggerDoc)

	// Public auth endpoints
	r.Post("/register", h.Auth.Register)
	r.Post("/token/refresh", h.Auth.Refresh)
	if cfg.LoginLimiter != nil {
		r.With(middleware.LoginRateLimit(cfg.LoginLimiter)).Post("/login", h.Auth.Login)
	} else {
		r.Post("/login", h.Auth.Login)
	}

	// Authenticated endpoints
	r.Group(func(r chi.Router) {
		r.Use(cfg.Auth.RequireAuth)

		r.Get("/user", h.Users.List)
		r.Put("/user/{id}", h.Users.Update)
		r.Put("/user/{id}/role", h.Users.UpdateRole)

		r.Get("/events", h.Events.List)
		r.Post("/events", h.Events.Create)
		r.Get("/events/{id}", h.Events.Get)
		r.Put("/events/{id}", h.Events.Update)
		r.Delete("/events/{id}", h.Events.Delete)

		r.Get("/tickets", h.Ticket.List)
		r.Get("/tickets/{id}", h.Ticket.Get)
		r.Post("/tickets/{id}/purchase", h.Ticket.Purchase)

		r.Get("/audit", h.Audit.List)
	})

	return r
}
