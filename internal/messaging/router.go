package messaging

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/sirupsen/logrus"

	"event-ticketing-api/internal/logging"
)

// NewRouter wires the audit handlers to subscriber
func NewRouter(subscriber message.Subscriber, audit AuditRecorder, logger watermill.LoggerAdapter) (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: 10 * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("creating router: %w", err)
	}

	router.AddMiddleware(middleware.Recoverer)
	router.AddMiddleware(correlationIDMiddleware)
	router.AddMiddleware(handlerLogMiddleware)
	router.AddMiddleware(middleware.Retry{
		MaxRetries:      3,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     time.Second,
		Multiplier:      2,
		Logger:          logger,
	}.Middleware)

	ep, err := cqrs.NewEventProcessorWithConfig(router, cqrs.EventProcessorConfig{
		SubscriberConstructor: func(params cqrs.EventProcessorSubscriberConstructorParams) (message.Subscriber, error) {
			return subscriber, nil
		},
		GenerateSubscribeTopic: func(params cqrs.EventProcessorGenerateSubscribeTopicParams) (string, error) {
			return params.EventName, nil
		},
		Marshaler: newMarshaler(),
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating event processor: %w", err)
	}

	h := auditHandler{recorder: audit}
	handlers := []cqrs.EventHandler{
		cqrs.NewEventHandler("audit-user-registered", h.onUserRegistered),
		cqrs.NewEventHandler("audit-user-updated", h.onUserUpdated),
		cqrs.NewEventHandler("audit-user-role-changed", h.onUserRoleChanged),
		cqrs.NewEventHandler("audit-event-created", h.onEventCreated),
		cqrs.NewEventHandler("audit-event-updated", h.onEventUpdated),
		cqrs.NewEventHandler("audit-event-deleted", h.onEventDeleted),
		cqrs.NewEventHandler("audit-tickets-purchased", h.onTicketsPurchased),
	}

	if err := ep.AddHandlers(handlers...); err != nil {
		return nil, fmt.Errorf("adding handlers: %w", err)
	}

	return router, nil
}

func correlationIDMiddleware(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		correlationID := middleware.MessageCorrelationID(msg)
		if correlationID == "" {
			correlationID = "gen_" + watermill.NewShortUUID()
		}

		ctx := logging.WithCorrelationID(msg.Context(), correlationID)
		ctx = logging.ToContext(ctx, logrus.WithFields(logrus.Fields{
			"message_uuid":   msg.UUID,
			"correlation_id": correlationID,
		}))
		msg.SetContext(ctx)

		return next(msg)
	}
}

func handlerLogMiddleware(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		logger := logging.FromContext(msg.Context())
		logger.Debug("Handling a message")

		msgs, err := next(msg)
		if err != nil {
			logger.WithError(err).Error("Message handling error")
		}

		return msgs, err
	}
}
