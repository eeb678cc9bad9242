package rabbitmq

import (
	"errors"
	"time"

	"endpoint-status/config"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const dialAttempts = 5

func NewConnection(rmqCfg *config.RabbitMQConfig, log *zerolog.Logger) (*amqp091.Connection, error) {

	var conn *amqp091.Connection
	var err error
	for i := range dialAttempts {
		conn, err = amqp091.Dial(rmqCfg.URL)
		if err == nil {
			return conn, nil
		}
		log.Warn().Err(err).Int("attempt", i+1).Msg("rabbitmq connection attempt failed")
		time.Sleep(2 * time.Second)
	}
	log.Error().Err(err).Int("attempts", dialAttempts).Msg("failed to connect to rabbitmq")
	return nil, errors.New("failed to connect to rabbitmq")
}

type binding struct {
	exchange   string
	queue      string
	routingKey string
}

// SetupTopology declares the mail job exchange/queue and, when user events
// are consumed, the user directory exchange/queue.
func SetupTopology(conn *amqp091.Connection, rmqCfg *config.RabbitMQConfig) error {
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	bindings := []binding{
		{rmqCfg.MailExchange, rmqCfg.MailQueue, rmqCfg.MailRouting},
	}
	if rmqCfg.ConsumeEvents {
		bindings = append(bindings, binding{rmqCfg.UserExchange, rmqCfg.UserQueue, rmqCfg.UserRouting})
	}

	for _, b := range bindings {
		if err := declare(ch, rmqCfg.ExchangeType, b); err != nil {
			return err
		}
	}
	return nil
}

func declare(ch *amqp091.Channel, kind string, b binding) error {
	if kind == "" {
		kind = amqp091.ExchangeDirect
	}

	if err := ch.ExchangeDeclare(
		b.exchange,
		kind,
		true, false, false, false, nil,
	); err != nil {
		return err
	}

	if _, err := ch.QueueDeclare(
		b.queue,
		true, false, false, false, nil,
	); err != nil {
		return err
	}

	return ch.QueueBind(
		b.queue,
		b.routingKey,
		b.exchange,
		false, nil,
	)
}
