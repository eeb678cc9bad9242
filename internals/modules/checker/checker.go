package checker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"endpoint-status/internals/modules/endpoint"
	"endpoint-status/pkg/metrics"

	"github.com/rs/zerolog"
)

const (
	MessageWellFormed = "Feed content is well formed."
	MessageReachable  = "Endpoint responded with a success status."
)

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Options struct {
	Timeout         time.Duration
	MaxBodyBytes    int64
	UserAgent       string
	ValidatePayload bool
	Metrics         *metrics.Metrics
}

func DefaultOptions() Options {
	return Options{
		Timeout:         10 * time.Second,
		MaxBodyBytes:    1 << 20,
		UserAgent:       "endpoint-status/1.0",
		ValidatePayload: true,
	}
}

// Result describes one check. Previous* hold the values the endpoint had
// before the check.
type Result struct {
	Status          endpoint.Status
	Message         string
	Changed         bool
	PreviousStatus  endpoint.Status
	PreviousMessage *string
	StatusCode      int
	Latency         time.Duration
}

// Checker probes an endpoint once and persists the classified outcome.
type Checker struct {
	client HTTPDoer
	store  endpoint.Store
	opts   Options
	logger *zerolog.Logger
}

func New(client HTTPDoer, store endpoint.Store, opts Options, logger *zerolog.Logger) *Checker {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultOptions().Timeout
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultOptions().MaxBodyBytes
	}
	l := logger.With().Str("component", "checker").Logger()
	return &Checker{
		client: client,
		store:  store,
		opts:   opts,
		logger: &l,
	}
}

// WithoutPayloadValidation returns a checker that classifies on the status
// code alone.
func (c *Checker) WithoutPayloadValidation() *Checker {
	cp := *c
	cp.opts.ValidatePayload = false
	return &cp
}

// Check issues one GET, records status and message on ep and saves it,
// whatever the outcome. The returned error is the save failure, or the
// context error when ctx was cancelled before anything was recorded.
func (c *Checker) Check(ctx context.Context, ep *endpoint.Endpoint) (Result, error) {
	res := Result{PreviousStatus: ep.Status}
	if ep.Message != nil {
		prev := *ep.Message
		res.PreviousMessage = &prev
	}

	start := time.Now()
	outcome := c.probe(ctx, ep)
	res.Latency = time.Since(start)

	// Shutdown mid-probe: nothing is recorded and the item is lost.
	if err := ctx.Err(); err != nil {
		return res, err
	}

	res.Status, res.Message = c.evaluate(outcome)
	if outcome.Response != nil {
		res.StatusCode = outcome.Response.StatusCode
	}
	res.Changed = res.Status != res.PreviousStatus ||
		res.PreviousMessage == nil || *res.PreviousMessage != res.Message

	ep.SetOutcome(res.Status, res.Message)

	if err := c.store.SaveOutcome(ctx, ep.ID, res.Status, res.Message); err != nil {
		c.logger.Error().Err(err).
			Str("endpoint_id", ep.ID).
			Str("status", string(res.Status)).
			Msg("failed to persist endpoint status")
		return res, err
	}

	c.opts.Metrics.ObserveCheck(string(res.Status), res.Changed, res.Latency)

	c.logger.Debug().
		Str("endpoint_id", ep.ID).
		Str("status", string(res.Status)).
		Str("previous_status", string(res.PreviousStatus)).
		Bool("changed", res.Changed).
		Int("status_code", res.StatusCode).
		Dur("latency", res.Latency).
		Msg("endpoint checked")

	return res, nil
}

func (c *Checker) evaluate(o Outcome) (endpoint.Status, string) {
	status := classifyExchange(o)
	if c.opts.ValidatePayload {
		status = Classify(o)
	}

	switch status {
	case endpoint.StatusUnprocessable:
		fault := o.Fault
		if fault == nil {
			fault = errors.New("no response received")
		}
		return status, "Processing failed: " + fault.Error()
	case endpoint.StatusDown:
		if o.Transport != nil {
			return status, "Request failed: " + o.Transport.Error()
		}
		return status, "Unexpected response status: " + statusLine(o.Response)
	case endpoint.StatusMalformed:
		return status, "Malformed payload: " + payloadError(o.Response).Error()
	default:
		if !c.opts.ValidatePayload {
			return status, MessageReachable
		}
		return status, MessageWellFormed
	}
}

func (c *Checker) probe(ctx context.Context, ep *endpoint.Endpoint) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{Fault: fmt.Errorf("panic: %v", r)}
		}
	}()

	reqCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, ep.URI, nil)
	if err != nil {
		return Outcome{Fault: fmt.Errorf("build request: %w", err)}
	}
	if c.opts.UserAgent != "" {
		req.Header.Set("User-Agent", c.opts.UserAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Outcome{Transport: newTransportError(err)}
	}
	defer resp.Body.Close()

	out = Outcome{Response: &Response{StatusCode: resp.StatusCode, Status: resp.Status}}
	if !c.opts.ValidatePayload || ClassifyCode(resp.StatusCode) != endpoint.StatusUp {
		return out
	}

	// one byte past the cap tells a full body from a truncated one
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.opts.MaxBodyBytes+1))
	if err != nil {
		if isTransportFailure(err) {
			return Outcome{Transport: newTransportError(err)}
		}
		return Outcome{Fault: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(body)) > c.opts.MaxBodyBytes {
		out.Response.Body = body[:c.opts.MaxBodyBytes]
		out.Response.Truncated = true
		return out
	}
	out.Response.Body = body
	return out
}

func statusLine(r *Response) string {
	if r.Status != "" {
		return r.Status
	}
	return fmt.Sprintf("%d %s", r.StatusCode, http.StatusText(r.StatusCode))
}
