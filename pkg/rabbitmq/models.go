package rabbitmq

import (
	"encoding/json"

	"github.com/google/uuid"
)

const EventUserUpserted = "user.upserted"

type EventPayload struct {
	ID      uuid.UUID       `json:"id"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type UserUpserted struct {
	Email           string `json:"email" validate:"required,email"`
	PreferredLocale string `json:"preferred_locale" validate:"omitempty,bcp47_language_tag"`
}
