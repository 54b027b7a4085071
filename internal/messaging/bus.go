package messaging

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"event-ticketing-api/internal/logging"
)

// Publisher publishes domain events
type Publisher interface {
	Publish(ctx context.Context, event any) error
}

// NewPubSub creates the in-process transport shared by the event bus and the router
func NewPubSub(logger watermill.LoggerAdapter) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 256,
	}, logger)
}

func newMarshaler() cqrs.JSONMarshaler {
	return cqrs.JSONMarshaler{
		GenerateName: cqrs.StructName,
	}
}

// NewEventBus publishes events on a topic named after the event struct
func NewEventBus(publisher message.Publisher, logger watermill.LoggerAdapter) (*cqrs.EventBus, error) {
	bus, err := cqrs.NewEventBusWithConfig(publisher, cqrs.EventBusConfig{
		GeneratePublishTopic: func(params cqrs.GenerateEventPublishTopicParams) (string, error) {
			return params.EventName, nil
		},
		OnPublish: func(params cqrs.OnEventSendParams) error {
			correlationID := logging.CorrelationIDFromContext(params.Message.Context())
			if correlationID == "" {
				correlationID = watermill.NewUUID()
			}
			middleware.SetCorrelationID(correlationID, params.Message)
			return nil
		},
		Marshaler: newMarshaler(),
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating event bus: %w", err)
	}
	return bus, nil
}

// DiscardPublisher drops every event. Used by CLI tools that run without a router.
type DiscardPublisher struct{}

func (DiscardPublisher) Publish(context.Context, any) error { return nil }
