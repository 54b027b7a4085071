package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	_ "event-ticketing-api/docs"
	"event-ticketing-api/internal/auth"
	"event-ticketing-api/internal/config"
	"event-ticketing-api/internal/database"
	"event-ticketing-api/internal/handlers"
	"event-ticketing-api/internal/logging"
	"event-ticketing-api/internal/messaging"
	"event-ticketing-api/internal/middleware"
	"event-ticketing-api/internal/repositories"
	"event-ticketing-api/internal/services"
	"event-ticketing-api/internal/utils"
)

const shutdownTimeout = 10 * time.Second

// Server owns the HTTP server and the message router that records audit events
type Server struct {
	addr         string
	handler      http.Handler
	pubSub       *gochannel.GoChannel
	msgRouter    *message.Router
	loginLimiter *middleware.LoginRateLimiter
}

// New wires repositories, services and handlers on top of db. A nil hasher
// uses the default Argon2id parameters.
func New(cfg *config.Config, db *database.DB, hasher services.PasswordHasher) (*Server, error) {
	if hasher == nil {
		hasher = utils.NewPasswordHasher(nil)
	}

	logger := logging.NewWatermillLogger(logrus.NewEntry(logrus.StandardLogger()))

	userRepo := repositories.NewUserRepository(db.DB)
	eventRepo := repositories.NewEventRepository(db.DB)
	ticketRepo := repositories.NewTicketRepository(db.DB)
	auditRepo := repositories.NewAuditLogRepository(db.DB)

	pubSub := messaging.NewPubSub(logger)

	eventBus, err := messaging.NewEventBus(pubSub, logger)
	if err != nil {
		return nil, err
	}

	msgRouter, err := messaging.NewRouter(pubSub, auditRepo, logger)
	if err != nil {
		return nil, err
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)

	authService := services.NewAuthService(userRepo, hasher, tokens, eventBus)
	userService := services.NewUserService(userRepo, hasher, eventBus)
	eventService := services.NewEventService(eventRepo, eventBus)
	ticketService := services.NewTicketService(ticketRepo, eventRepo, eventBus, cfg.Tickets.MaxPerPurchase)
	auditService := services.NewAuditService(auditRepo)

	var loginLimiter *middleware.LoginRateLimiter
	if cfg.Auth.LoginRateLimit > 0 {
		loginLimiter = middleware.NewLoginRateLimiter(cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow)
	}

	handler := NewRouter(Handlers{
		Auth:   handlers.NewAuthHandler(authService),
		Users:  handlers.NewUserHandler(userService),
		Events: handlers.NewEventHandler(eventService),
		Ticket: handlers.NewTicketHandler(ticketService),
		Audit:  handlers.NewAuditHandler(auditService),
		Health: handlers.NewHealthHandler(db),
	}, RouterConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Auth:           middleware.NewAuthMiddleware(authService),
		LoginLimiter:   loginLimiter,
	})

	return &Server{
		addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		handler:      handler,
		pubSub:       pubSub,
		msgRouter:    msgRouter,
		loginLimiter: loginLimiter,
	}, nil
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run starts the message router, then the HTTP server, and blocks until ctx
// is cancelled or either of them fails.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, runCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.msgRouter.Run(runCtx); err != nil {
			return fmt.Errorf("running message router: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		// Events published before the router subscribes would be dropped.
		select {
		case <-s.msgRouter.Running():
		case <-runCtx.Done():
			return nil
		}

		logrus.WithField("addr", s.addr).Info("Starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("starting http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-runCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		logrus.Info("Shutting down HTTP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down http server: %w", err)
		}
		return nil
	})

	err := g.Wait()
	s.close()
	if err != nil {
		return fmt.Errorf("waiting for shutdown: %w", err)
	}

	logrus.Info("Shutdown complete")
	return nil
}

func (s *Server) close() {
	if s.loginLimiter != nil {
		s.loginLimiter.Stop()
	}
	if err := s.pubSub.Close(); err != nil {
		logrus.WithError(err).Warn("Failed to close pub/sub")
	}
}
