package processor

import (
	"context"

	"endpoint-status/internals/modules/checker"
	"endpoint-status/internals/modules/endpoint"
	"endpoint-status/internals/modules/notifier"
)

// Processor is one check-and-notify strategy.
type Processor interface {
	ID() string
	Label() string
	Description() string
	Check(ctx context.Context, ep *endpoint.Endpoint) (checker.Result, error)
	Notify(ctx context.Context, ep *endpoint.Endpoint, previousStatus endpoint.Status, previousMessage *string) (notifier.Report, error)
}

type StatusChecker interface {
	Check(ctx context.Context, ep *endpoint.Endpoint) (checker.Result, error)
}

type Notifier interface {
	Notify(ctx context.Context, ep *endpoint.Endpoint, previousStatus endpoint.Status, previousMessage *string) (notifier.Report, error)
}

// CheckNotify composes a checker with a notifier.
type CheckNotify struct {
	id          string
	label       string
	description string
	checker     StatusChecker
	notifier    Notifier
}

func NewCheckNotify(id, label, description string, c StatusChecker, n Notifier) *CheckNotify {
	return &CheckNotify{
		id:          id,
		label:       label,
		description: description,
		checker:     c,
		notifier:    n,
	}
}

func (p *CheckNotify) ID() string          { return p.id }
func (p *CheckNotify) Label() string       { return p.label }
func (p *CheckNotify) Description() string { return p.description }

func (p *CheckNotify) Check(ctx context.Context, ep *endpoint.Endpoint) (checker.Result, error) {
	return p.checker.Check(ctx, ep)
}

func (p *CheckNotify) Notify(ctx context.Context, ep *endpoint.Endpoint, previousStatus endpoint.Status, previousMessage *string) (notifier.Report, error) {
	return p.notifier.Notify(ctx, ep, previousStatus, previousMessage)
}

// Builtins returns the default JSON-validating processor and the
// status-code-only processor.
func Builtins(c *checker.Checker, n Notifier) []Processor {
	return []Processor{
		NewCheckNotify(DefaultID, "Default",
			"Fetches the endpoint, expects a 2xx response with a well-formed JSON body and mails subscribers on change.",
			c, n),
		NewCheckNotify(HTTPStatusID, "HTTP status",
			"Fetches the endpoint and only looks at the response status code.",
			c.WithoutPayloadValidation(), n),
	}
}
