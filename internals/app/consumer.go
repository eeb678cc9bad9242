package app

import (
	"context"

	"endpoint-status/pkg/rabbitmq"
)

// StartConsumer keeps the user directory in sync with user events. It is a
// no-op unless rabbitmq.consume_user_events is set.
func StartConsumer(ctx context.Context, c *Container) {
	if c.Consumer == nil {
		return
	}

	eventHandler := rabbitmq.NewEventHandler(c.userSvc)

	// Consume ranges over the delivery channel, so it gets its own goroutine
	go func() {
		if err := c.Consumer.Consume(ctx, eventHandler); err != nil {
			c.Logger.Error().
				Err(err).
				Msg("rabbitmq consumer stopped")
		}
	}()
}
