package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"endpoint-status/pkg/rabbitmq"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Publisher is satisfied by *rabbitmq.Publisher.
type Publisher interface {
	Publish(ctx context.Context, body []byte) (bool, error)
}

// MailJob is the message a downstream mailer consumes from the mail queue.
type MailJob struct {
	TemplateKey string    `json:"template_key"`
	Recipient   string    `json:"recipient"`
	Locale      string    `json:"locale"`
	Subject     string    `json:"subject"`
	Body        string    `json:"body"`
	Params      Params    `json:"params"`
	QueuedAt    time.Time `json:"queued_at"`
}

// AMQPTransport hands rendered messages to a mail queue. Delivered means
// the broker confirmed the job, not that the mail reached the inbox.
type AMQPTransport struct {
	publisher Publisher
	templates *Templates
	log       *zerolog.Logger
}

func NewAMQPTransport(publisher Publisher, templates *Templates, logger *zerolog.Logger) *AMQPTransport {
	l := logger.With().Str("component", "notifier.amqp").Logger()
	return &AMQPTransport{
		publisher: publisher,
		templates: templates,
		log:       &l,
	}
}

func (t *AMQPTransport) Send(ctx context.Context, msg Message) (Delivery, error) {
	rendered, err := t.templates.Render(msg)
	if err != nil {
		return Delivery{}, err
	}

	body, err := json.Marshal(MailJob{
		TemplateKey: msg.TemplateKey,
		Recipient:   msg.Recipient,
		Locale:      msg.Locale,
		Subject:     rendered.Subject,
		Body:        rendered.Body,
		Params:      msg.Params,
		QueuedAt:    time.Now().UTC(),
	})
	if err != nil {
		return Delivery{}, err
	}

	acked, err := t.publisher.Publish(ctx, body)
	if err != nil {
		if errors.Is(err, rabbitmq.ErrChannelClosed) || errors.Is(err, amqp091.ErrClosed) {
			return Delivery{}, fmt.Errorf("%w: %v", ErrTransportUnavailable, err)
		}
		return Delivery{}, err
	}
	if !acked {
		t.log.Warn().Str("to", msg.Recipient).Str("template", msg.TemplateKey).Msg("broker nacked mail job")
	}
	return Delivery{Delivered: acked}, nil
}
