package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rabbitmq/amqp091-go"
)

// ErrPoisonMessage marks deliveries that can never succeed. They are
// dropped instead of requeued.
var ErrPoisonMessage = errors.New("poison message")

type ProfileWriter interface {
	UpsertProfile(ctx context.Context, email, preferredLocale string) error
}

// EventHandler keeps the local user directory in sync with user events.
type EventHandler struct {
	writer   ProfileWriter
	validate *validator.Validate
}

func NewEventHandler(writer ProfileWriter) *EventHandler {
	return &EventHandler{
		writer:   writer,
		validate: validator.New(),
	}
}

func (h *EventHandler) Handle(ctx context.Context, msg amqp091.Delivery) error {
	var event EventPayload
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		return fmt.Errorf("%w: decode event: %v", ErrPoisonMessage, err)
	}

	if event.Type != EventUserUpserted {
		return nil // ignore unknown events
	}

	var payload UserUpserted
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("%w: decode %s payload: %v", ErrPoisonMessage, event.Type, err)
	}
	if err := h.validate.Struct(payload); err != nil {
		return fmt.Errorf("%w: invalid %s event %s: %v", ErrPoisonMessage, event.Type, event.ID, err)
	}

	return h.writer.UpsertProfile(ctx, payload.Email, payload.PreferredLocale)
}
