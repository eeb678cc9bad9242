package rabbitmq

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const defaultHandlerTimeout = 5 * time.Second

type DeliveryHandler interface {
	Handle(ctx context.Context, msg amqp091.Delivery) error
}

type settlement int

const (
	ack settlement = iota
	requeue
	drop
)

// settle decides what happens to a delivery after its handler returned.
// Transient failures get one redelivery, poison messages none.
func settle(err error, redelivered bool) settlement {
	switch {
	case err == nil:
		return ack
	case errors.Is(err, ErrPoisonMessage), redelivered:
		return drop
	default:
		return requeue
	}
}

// Consumer hands deliveries to a handler with at most `workers` in flight.
type Consumer struct {
	ch             *amqp091.Channel
	queueName      string
	sem            chan struct{}
	wg             sync.WaitGroup
	consumerTag    string
	handlerTimeout time.Duration
	log            *zerolog.Logger
}

func NewConsumer(conn *amqp091.Connection, queueName string, workers int, log *zerolog.Logger) (*Consumer, error) {
	if conn == nil {
		return nil, errors.New("AMQP connection is nil")
	}
	if workers < 1 {
		workers = 1
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	// Backpressure
	if err := ch.Qos(workers, 0, false); err != nil {
		_ = ch.Close()
		return nil, err
	}

	l := log.With().Str("component", "rabbitmq.consumer").Str("queue", queueName).Logger()

	return &Consumer{
		ch:             ch,
		queueName:      queueName,
		sem:            make(chan struct{}, workers),
		handlerTimeout: defaultHandlerTimeout,
		log:            &l,
	}, nil
}

// Consume blocks until ctx is cancelled or the channel closes.
func (c *Consumer) Consume(ctx context.Context, handler DeliveryHandler) error {
	c.consumerTag = "endpoint-status-" + uuid.NewString()

	msgs, err := c.ch.Consume(
		c.queueName,
		c.consumerTag,
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}
	c.log.Info().Str("consumer_tag", c.consumerTag).Msg("consumer started")

	go func() {
		<-ctx.Done()
		_ = c.ch.Cancel(c.consumerTag, false) // stop new deliveries
	}()

	for msg := range msgs {
		c.sem <- struct{}{}
		c.wg.Add(1)
		go c.dispatch(ctx, handler, msg)
	}

	c.wg.Wait()
	c.log.Info().Msg("consumer stopped")
	return nil
}

func (c *Consumer) dispatch(ctx context.Context, handler DeliveryHandler, m amqp091.Delivery) {
	defer c.wg.Done()
	defer func() { <-c.sem }()

	// in-flight messages finish even when consuming is being cancelled
	msgCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.handlerTimeout)
	defer cancel()

	err := handler.Handle(msgCtx, m)
	switch settle(err, m.Redelivered) {
	case ack:
		_ = m.Ack(false)
	case requeue:
		c.log.Warn().Err(err).Str("message_id", m.MessageId).Msg("message failed, requeueing")
		_ = m.Nack(false, true)
	case drop:
		c.log.Error().Err(err).Str("message_id", m.MessageId).Bool("redelivered", m.Redelivered).Msg("message dropped")
		_ = m.Nack(false, false)
	}
}

func (c *Consumer) Shutdown(ctx context.Context) error {
	if c.consumerTag != "" {
		_ = c.ch.Cancel(c.consumerTag, false)
	}

	done := make(chan struct{})

	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return c.ch.Close()
	case <-ctx.Done():
		return ctx.Err()
	}
}
