package notifier

import (
	"context"
	"errors"
)

// DefaultTemplateKey is used when no template is registered under the
// endpoint's own key.
const DefaultTemplateKey = "status_changed"

// ErrTransportUnavailable marks a failure that is not specific to one
// recipient. It aborts the dispatch loop.
var ErrTransportUnavailable = errors.New("mail transport unavailable")

type Params struct {
	EndpointID      string `json:"endpoint_id"`
	EndpointLabel   string `json:"endpoint_label"`
	URI             string `json:"uri"`
	Status          string `json:"status"`
	Message         string `json:"message"`
	PreviousStatus  string `json:"previous_status"`
	PreviousMessage string `json:"previous_message"`
}

type Message struct {
	TemplateKey string `json:"template_key"`
	Recipient   string `json:"recipient"`
	Locale      string `json:"locale"`
	Params      Params `json:"params"`
}

type Delivery struct {
	Delivered bool
}

type Transport interface {
	Send(ctx context.Context, msg Message) (Delivery, error)
}

type Profile struct {
	Email           string
	PreferredLocale string
}

// Directory finds registered users by address. A nil profile with a nil
// error means the address is not registered.
type Directory interface {
	FindByEmail(ctx context.Context, email string) (*Profile, error)
}

// Report counts per-recipient outcomes of one dispatch.
type Report struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}
