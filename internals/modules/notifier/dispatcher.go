package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"endpoint-status/internals/modules/endpoint"
	"endpoint-status/pkg/metrics"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type DispatcherOptions struct {
	DefaultLocale string
	Timeout       time.Duration
	Metrics       *metrics.Metrics
}

// Dispatcher mails every subscriber of an endpoint about a status change.
type Dispatcher struct {
	transport Transport
	directory Directory
	opts      DispatcherOptions
	validate  *validator.Validate
	logger    *zerolog.Logger
}

func NewDispatcher(transport Transport, directory Directory, opts DispatcherOptions, logger *zerolog.Logger) *Dispatcher {
	if opts.DefaultLocale == "" {
		opts.DefaultLocale = "en"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	l := logger.With().Str("component", "notifier").Logger()
	return &Dispatcher{
		transport: transport,
		directory: directory,
		opts:      opts,
		validate:  validator.New(),
		logger:    &l,
	}
}

// Notify sends one message per syntactically valid subscriber, in order.
// A failing recipient is logged and counted; only an unavailable transport
// or a cancelled ctx stops the loop.
func (d *Dispatcher) Notify(ctx context.Context, ep *endpoint.Endpoint, previousStatus endpoint.Status, previousMessage *string) (Report, error) {
	var report Report
	defer func() {
		d.opts.Metrics.ObserveNotifications(report.Succeeded, report.Failed, report.Skipped)
	}()

	params := Params{
		EndpointID:     ep.ID,
		EndpointLabel:  ep.Label,
		URI:            ep.URI,
		Status:         string(ep.Status),
		Message:        ep.MessageText(),
		PreviousStatus: string(previousStatus),
	}
	if previousMessage != nil {
		params.PreviousMessage = *previousMessage
	}

	for _, addr := range ep.Subscribers {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if err := d.validate.Var(addr, "required,email"); err != nil {
			report.Skipped++
			d.logger.Debug().
				Str("endpoint_id", ep.ID).
				Str("recipient", addr).
				Msg("skipping invalid subscriber address")
			continue
		}

		msg := Message{
			TemplateKey: ep.ID,
			Recipient:   addr,
			Locale:      d.localeFor(ctx, addr),
			Params:      params,
		}

		report.Attempted++
		delivery, err := d.send(ctx, msg)

		if errors.Is(err, ErrTransportUnavailable) {
			report.Failed++
			d.logger.Error().Err(err).
				Str("endpoint_id", ep.ID).
				Str("endpoint_label", ep.Label).
				Msg("mail transport unavailable, aborting notifications")
			return report, fmt.Errorf("notify subscribers of %s: %w", ep.ID, err)
		}

		if err != nil || !delivery.Delivered {
			report.Failed++
			d.logger.Warn().Err(err).
				Str("endpoint_id", ep.ID).
				Str("endpoint_label", ep.Label).
				Str("recipient", addr).
				Msg("failed to send endpoint status notification")
			continue
		}

		report.Succeeded++
	}

	return report, nil
}

func (d *Dispatcher) send(ctx context.Context, msg Message) (Delivery, error) {
	sendCtx, cancel := context.WithTimeout(ctx, d.opts.Timeout)
	defer cancel()
	return d.transport.Send(sendCtx, msg)
}

func (d *Dispatcher) localeFor(ctx context.Context, addr string) string {
	if d.directory == nil {
		return d.opts.DefaultLocale
	}
	profile, err := d.directory.FindByEmail(ctx, addr)
	if err != nil {
		d.logger.Debug().Err(err).Str("recipient", addr).Msg("user directory lookup failed, using default locale")
		return d.opts.DefaultLocale
	}
	if profile == nil || profile.PreferredLocale == "" {
		return d.opts.DefaultLocale
	}
	return profile.PreferredLocale
}
