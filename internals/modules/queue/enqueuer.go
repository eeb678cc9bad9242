package queue

import (
	"context"

	"endpoint-status/internals/modules/endpoint"

	"github.com/rs/zerolog"
)

// Enqueuer puts endpoints on a named queue by id.
type Enqueuer struct {
	queues *Queues
	store  endpoint.Store
	logger *zerolog.Logger
}

func NewEnqueuer(queues *Queues, store endpoint.Store, logger *zerolog.Logger) *Enqueuer {
	l := logger.With().Str("component", "queue.enqueuer").Logger()
	return &Enqueuer{
		queues: queues,
		store:  store,
		logger: &l,
	}
}

// Enqueue loads ids and queues every endpoint that exists, enabled or not.
// Unknown ids are ignored. It returns the number of items queued.
func (e *Enqueuer) Enqueue(ctx context.Context, queueName string, ids []string) (int, error) {
	if err := e.queues.checkName("queue.enqueuer.enqueue", queueName); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	eps, err := e.store.LoadMultiple(ctx, ids)
	if err != nil {
		return 0, err
	}
	if len(eps) < len(ids) {
		e.logger.Debug().Int("requested", len(ids)).Int("found", len(eps)).Msg("some endpoint ids do not exist")
	}
	return e.EnqueueEndpoints(ctx, queueName, eps)
}

func (e *Enqueuer) EnqueueEndpoints(ctx context.Context, queueName string, eps []*endpoint.Endpoint) (int, error) {
	n := 0
	for _, ep := range eps {
		if _, err := e.queues.Enqueue(ctx, queueName, ep.ID); err != nil {
			return n, err
		}
		n++
	}
	if n > 0 {
		e.logger.Info().Str("queue", queueName).Int("count", n).Msg("endpoints enqueued")
	}
	return n, nil
}
