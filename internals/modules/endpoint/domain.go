package endpoint

import (
	"context"
	"errors"
	"slices"
	"strconv"

	"endpoint-status/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

type Status string

const (
	StatusNeutral       Status = "neutral"
	StatusUp            Status = "up"
	StatusDown          Status = "down"
	StatusMalformed     Status = "malformed"
	StatusUnprocessable Status = "unprocessable"
)

var AllStatuses = []Status{StatusNeutral, StatusUp, StatusDown, StatusMalformed, StatusUnprocessable}

func (s Status) Valid() bool {
	return slices.Contains(AllStatuses, s)
}

func (s Status) String() string {
	return string(s)
}

var ErrNotFound = errors.New("endpoint not found")

// Endpoint is a monitored URI together with its last recorded outcome.
type Endpoint struct {
	ID          string   `json:"id" validate:"required,max=128"`
	Label       string   `json:"label" validate:"required"`
	URI         string   `json:"uri" validate:"required,url"`
	Enabled     bool     `json:"enabled"`
	Status      Status   `json:"status" validate:"required,oneof=neutral up down malformed unprocessable"`
	Message     *string  `json:"message,omitempty"`
	ProcessorID *string  `json:"processor,omitempty"`
	Subscribers []string `json:"email_subscribers"`
}

// New returns an enabled, never-checked endpoint.
func New(id, label, uri string) *Endpoint {
	return &Endpoint{
		ID:      id,
		Label:   label,
		URI:     uri,
		Enabled: true,
		Status:  StatusNeutral,
	}
}

// MessageText returns the message or "" when none was recorded yet.
func (e *Endpoint) MessageText() string {
	if e.Message == nil {
		return ""
	}
	return *e.Message
}

// SetOutcome writes status and message together.
func (e *Endpoint) SetOutcome(status Status, message string) {
	e.Status = status
	e.Message = &message
}

// Processor returns the configured processor id, "" meaning default.
func (e *Endpoint) Processor() string {
	if e.ProcessorID == nil {
		return ""
	}
	return *e.ProcessorID
}

func (e *Endpoint) Clone() *Endpoint {
	cp := *e
	if e.Message != nil {
		m := *e.Message
		cp.Message = &m
	}
	if e.ProcessorID != nil {
		p := *e.ProcessorID
		cp.ProcessorID = &p
	}
	cp.Subscribers = slices.Clone(e.Subscribers)
	return &cp
}

var validate = validator.New()

func (e *Endpoint) Validate() error {
	if err := validate.Struct(e); err != nil {
		return apperror.New(apperror.InvalidInput, "domain.endpoint.validate", err).
			WithMessage("invalid endpoint: " + err.Error())
	}
	return nil
}

// Store is the entity store the core borrows endpoints from.
type Store interface {
	Load(ctx context.Context, id string) (*Endpoint, error)
	// LoadMultiple returns the endpoints that exist, in the order of ids.
	LoadMultiple(ctx context.Context, ids []string) ([]*Endpoint, error)
	LoadEnabled(ctx context.Context) ([]*Endpoint, error)
	Save(ctx context.Context, e *Endpoint) error
	// SaveOutcome writes status and message of an existing endpoint together.
	SaveOutcome(ctx context.Context, id string, status Status, message string) error
}

// IsNotFound reports whether err means the endpoint does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || apperror.IsKind(err, apperror.NotFound)
}

func invalidStatus(op string, s Status) error {
	return apperror.Invalid(op, "invalid endpoint status "+strconv.Quote(string(s)))
}

func notFound(op, id string) error {
	return apperror.New(apperror.NotFound, op, ErrNotFound).WithMessage("endpoint " + id + " not found")
}
