package app

import (
	"context"
	"errors"
	"fmt"

	"endpoint-status/config"
	middle "endpoint-status/internals/middleware"
	"endpoint-status/internals/modules/admin"
	"endpoint-status/internals/modules/checker"
	"endpoint-status/internals/modules/endpoint"
	"endpoint-status/internals/modules/notifier"
	"endpoint-status/internals/modules/processor"
	"endpoint-status/internals/modules/queue"
	"endpoint-status/internals/modules/scheduler"
	"endpoint-status/internals/modules/user"
	"endpoint-status/internals/security"
	"endpoint-status/pkg/httpclient"
	"endpoint-status/pkg/logger"
	"endpoint-status/pkg/metrics"
	"endpoint-status/pkg/rabbitmq"
	"endpoint-status/pkg/redisstore"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

type Container struct {
	Cfg         *config.Config
	DB          *pgxpool.Pool
	RedisClient *redisstore.Client
	AMQP        *amqp091.Connection
	Logger      *zerolog.Logger
	Metrics     *metrics.Metrics

	Endpoints *endpoint.Repository
	Queues    *queue.Queues
	Enqueuer  *queue.Enqueuer
	Runner    *queue.Runner
	Registry  *processor.Registry
	Scheduler *scheduler.Scheduler
	Consumer  *rabbitmq.Consumer

	publisher    *rabbitmq.Publisher
	userSvc      *user.Service
	userHandler  *user.Handler
	adminHandler *admin.Handler
	authMW       *middle.AuthMiddleware
}

func NewContainer(ctx context.Context, db *pgxpool.Pool, cfg *config.Config, log *zerolog.Logger) (*Container, error) {

	redisClient, err := redisstore.New(&cfg.Redis)
	if err != nil {
		return nil, err
	}
	if err := redisClient.Ping(ctx); err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	c := &Container{
		Cfg:         cfg,
		DB:          db,
		RedisClient: redisClient,
		Logger:      log,
		Metrics:     metrics.New(),
	}

	// rabbitmq is only dialled when something uses it
	if cfg.Mail.Transport == "amqp" || cfg.RabbitMQ.ConsumeEvents {
		conn, err := rabbitmq.NewConnection(&cfg.RabbitMQ, log)
		if err != nil {
			return nil, c.fail(err)
		}
		c.AMQP = conn
		if err := rabbitmq.SetupTopology(conn, &cfg.RabbitMQ); err != nil {
			return nil, c.fail(fmt.Errorf("rabbitmq topology: %w", err))
		}
	}

	validate := validator.New()

	// repositories
	c.Endpoints = endpoint.NewRepository(db, cfg.DB.QueryTimeout, logger.Component(log, "endpoint.repository"))
	userRepo := user.NewRepository(db, cfg.DB.QueryTimeout, logger.Component(log, "user.repository"))
	c.userSvc = user.NewService(userRepo)

	// notification
	templates := notifier.NewTemplates(cfg.Mail.DefaultLocale, cfg.Mail.SubjectPrefix)
	var transport notifier.Transport
	switch cfg.Mail.Transport {
	case "amqp":
		pub, err := rabbitmq.NewPublisher(c.AMQP, cfg.RabbitMQ.MailExchange, cfg.RabbitMQ.MailRouting)
		if err != nil {
			return nil, c.fail(fmt.Errorf("rabbitmq publisher: %w", err))
		}
		c.publisher = pub
		transport = notifier.NewAMQPTransport(pub, templates, log)
	default:
		transport = notifier.NewSMTPTransport(&cfg.Mail, templates, log)
	}
	dispatcher := notifier.NewDispatcher(transport, c.userSvc, notifier.DispatcherOptions{
		DefaultLocale: cfg.Mail.DefaultLocale,
		Timeout:       cfg.Mail.Timeout,
		Metrics:       c.Metrics,
	}, log)

	// checking
	chk := checker.New(httpclient.NewHttpClient(&cfg.Checker), c.Endpoints, checker.Options{
		Timeout:         cfg.Checker.Timeout,
		MaxBodyBytes:    cfg.Checker.MaxBodyBytes,
		UserAgent:       cfg.Checker.UserAgent,
		ValidatePayload: true,
		Metrics:         c.Metrics,
	}, log)

	c.Registry = processor.NewRegistry(log)
	c.Registry.MustRegister(processor.Builtins(chk, dispatcher)...)

	// queues & scheduling
	c.Queues = queue.NewQueues(redisClient, cfg.Queues.Names)
	c.Enqueuer = queue.NewEnqueuer(c.Queues, c.Endpoints, log)
	c.Runner = queue.NewRunner(c.Queues, c.Endpoints, c.Registry, queue.RunnerOptions{
		Snapshots: redisClient,
		Metrics:   c.Metrics,
	}, log)
	c.Scheduler = scheduler.New(
		scheduler.NewRedisStateStore(redisClient),
		c.Endpoints,
		c.Enqueuer,
		c.Runner,
		scheduler.Options{
			PrimaryQueue: c.Queues.Primary(),
			Interval:     cfg.Scheduler.Interval(),
			PollInterval: cfg.Scheduler.PollInterval,
			Metrics:      c.Metrics,
		},
		log,
	)

	if cfg.RabbitMQ.ConsumeEvents {
		consumer, err := rabbitmq.NewConsumer(c.AMQP, cfg.RabbitMQ.UserQueue, cfg.RabbitMQ.WorkerCount, log)
		if err != nil {
			return nil, c.fail(fmt.Errorf("rabbitmq consumer: %w", err))
		}
		c.Consumer = consumer
	}

	// http
	tokenSvc := security.NewTokenService(&cfg.Auth)
	c.authMW = middle.NewAuthMiddleware(tokenSvc)
	c.userHandler = user.NewHandler(c.userSvc, validate)
	c.adminHandler = admin.NewHandler(admin.NewService(admin.Deps{
		Cron:       c.Scheduler,
		Queues:     c.Queues,
		Enqueuer:   c.Enqueuer,
		Processors: c.Registry,
		Endpoints:  c.Endpoints,
		Snapshots:  redisClient,
	}, logger.Component(log, "admin")), validate)

	return c, nil
}

func (c *Container) fail(err error) error {
	return errors.Join(err, c.Shutdown(context.Background()))
}

// Ready reports whether the stores the workers depend on answer.
func (c *Container) Ready(ctx context.Context) error {
	if c.DB != nil {
		if err := c.DB.Ping(ctx); err != nil {
			return fmt.Errorf("db: %w", err)
		}
	}
	if err := c.RedisClient.Ping(ctx); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	return nil
}

// Shutdown releases brokers and stores. The db pool is owned by the caller.
func (c *Container) Shutdown(ctx context.Context) error {
	var errs []error

	// 1. stop consuming
	if c.Consumer != nil {
		if err := c.Consumer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("consumer: %w", err))
		}
	}
	// 2. broker
	if c.publisher != nil {
		if err := c.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}
	if c.AMQP != nil && !c.AMQP.IsClosed() {
		if err := c.AMQP.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	// 3. redis
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	return errors.Join(errs...)
}
