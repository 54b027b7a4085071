package services

import (
	"context"

	"event-ticketing-api/internal/logging"
	"event-ticketing-api/internal/messaging"
)

// publish sends a domain event. Failures are logged and never returned so a
// committed change is not reported as failed.
func publish(ctx context.Context, publisher messaging.Publisher, event any) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logging.FromContext(ctx).WithError(err).WithField("event", event).Error("Failed to publish domain event")
	}
}
