package rabbitmq

import (
	"context"
	"errors"

	"github.com/rabbitmq/amqp091-go"
)

var ErrChannelClosed = errors.New("AMQP channel is nil")

type Publisher struct {
	ch         *amqp091.Channel // confirm-mode channel
	exchange   string
	routingKey string
}

func NewPublisher(conn *amqp091.Connection, exchange, routingKey string) (*Publisher, error) {

	if conn == nil {
		return nil, errors.New("AMQP connection is nil")
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	if err := ch.Confirm(false); err != nil {
		ch.Close()
		return nil, err
	}

	return &Publisher{
		ch:         ch,
		exchange:   exchange,
		routingKey: routingKey,
	}, nil
}

// Publish sends one persistent JSON message and waits for the broker's
// confirmation. acked is false when the broker nacked the message.
func (p *Publisher) Publish(ctx context.Context, body []byte) (bool, error) {
	if p.ch == nil || p.ch.IsClosed() {
		return false, ErrChannelClosed
	}

	dc, err := p.ch.PublishWithDeferredConfirmWithContext(
		ctx,
		p.exchange,
		p.routingKey,
		false,
		false,
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return false, err
	}
	if dc == nil {
		return false, errors.New("channel is not in confirm mode")
	}

	return dc.WaitContext(ctx)
}

func (p *Publisher) Close() error {
	if p.ch != nil {
		return p.ch.Close()
	}
	return nil
}
