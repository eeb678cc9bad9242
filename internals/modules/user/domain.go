package user

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered recipient whose locale overrides the default for
// notification mails.
type User struct {
	ID              uuid.UUID
	Email           string
	PreferredLocale string
	UpdatedAt       time.Time
}

type UpsertProfileCmd struct {
	Email           string
	PreferredLocale string
}
