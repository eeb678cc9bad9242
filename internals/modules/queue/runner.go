package queue

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"endpoint-status/internals/modules/endpoint"
	"endpoint-status/internals/modules/processor"
	"endpoint-status/pkg/apperror"
	"endpoint-status/pkg/metrics"

	"github.com/rs/zerolog"
)

type Resolver interface {
	Resolve(processorID string) processor.Processor
}

// SnapshotRecorder keeps the last probe details of an endpoint. Satisfied
// by *redisstore.Client.
type SnapshotRecorder interface {
	StoreStatus(ctx context.Context, endpointID string, statusCode int, latencyMs int64, checkedAt time.Time) error
}

type QueueSummary struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Faults    int `json:"faults"`
}

// Summary describes one drain pass over one or more queues.
type Summary struct {
	Processed int                     `json:"processed"`
	Skipped   int                     `json:"skipped"`
	Faults    int                     `json:"faults"`
	Queues    map[string]QueueSummary `json:"queues"`
	Messages  []string                `json:"messages,omitempty"`
}

type drainOptions struct {
	statusMessages bool
}

type DrainOption func(*drainOptions)

// WithStatusMessages collects one human readable line per processed item
// into Summary.Messages.
func WithStatusMessages() DrainOption {
	return func(o *drainOptions) { o.statusMessages = true }
}

type RunnerOptions struct {
	Snapshots SnapshotRecorder
	Metrics   *metrics.Metrics
}

// Runner drains queues: every item is checked by its endpoint's processor
// and subscribers are notified when the outcome changed.
type Runner struct {
	queues   *Queues
	store    endpoint.Store
	registry Resolver
	locks    *KeyedMutex
	opts     RunnerOptions
	now      func() time.Time
	logger   *zerolog.Logger
}

func NewRunner(queues *Queues, store endpoint.Store, registry Resolver, opts RunnerOptions, logger *zerolog.Logger) *Runner {
	l := logger.With().Str("component", "queue.runner").Logger()
	return &Runner{
		queues:   queues,
		store:    store,
		registry: registry,
		locks:    NewKeyedMutex(),
		opts:     opts,
		now:      time.Now,
		logger:   &l,
	}
}

// Drain empties each named queue (all configured queues when names is
// empty). Queues are drained concurrently, items of one queue in order.
// Only queue backend or entity store unavailability, and cancellation,
// are returned; everything else is recorded per item.
func (r *Runner) Drain(ctx context.Context, names []string, opts ...DrainOption) (Summary, error) {
	var o drainOptions
	for _, opt := range opts {
		opt(&o)
	}

	if len(names) == 0 {
		names = r.queues.Names()
	}
	for _, name := range names {
		if err := r.queues.checkName("queue.runner.drain", name); err != nil {
			return Summary{}, err
		}
	}

	type queueResult struct {
		summary  QueueSummary
		messages []string
		err      error
	}
	results := make([]queueResult, len(names))

	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := &results[i]
			res.err = r.drainQueue(ctx, name, o, &res.summary, &res.messages)
		}()
	}
	wg.Wait()

	summary := Summary{Queues: make(map[string]QueueSummary, len(names))}
	var errs []error
	for i, name := range names {
		res := results[i]
		summary.Queues[name] = res.summary
		summary.Processed += res.summary.Processed
		summary.Skipped += res.summary.Skipped
		summary.Faults += res.summary.Faults
		summary.Messages = append(summary.Messages, res.messages...)
		if res.err != nil {
			errs = append(errs, fmt.Errorf("drain %s: %w", name, res.err))
		}
	}
	return summary, errors.Join(errs...)
}

func (r *Runner) drainQueue(ctx context.Context, name string, o drainOptions, sum *QueueSummary, messages *[]string) error {
	worker := r.queues.Worker(name)
	log := r.logger.With().Str("queue", name).Int("worker", worker).Logger()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		item, err := r.queues.DequeueNext(ctx, name)
		if errors.Is(err, ErrCorruptItem) {
			sum.Faults++
			r.opts.Metrics.ItemFault(name)
			log.Error().Err(err).Msg("dropping corrupt queue item")
			continue
		}
		if err != nil {
			log.Error().Err(err).Msg("queue backend unavailable, stopping drain")
			return err
		}
		if item == nil {
			return nil
		}

		ep, err := r.process(ctx, item)
		switch {
		case err == nil:
			sum.Processed++
			r.opts.Metrics.ItemProcessed(name)
			line := fmt.Sprintf("Queue %d worker processed item with id %s and label %s", worker, ep.ID, ep.Label)
			log.Info().Str("id", ep.ID).Str("label", ep.Label).Str("item_id", item.ID.String()).Msg(line)
			if o.statusMessages {
				*messages = append(*messages, line)
			}
		case endpoint.IsNotFound(err):
			sum.Skipped++
			log.Warn().Str("id", item.EndpointID).Str("item_id", item.ID.String()).Msg("queued endpoint no longer exists, skipping")
		case ctx.Err() != nil:
			log.Warn().Str("id", item.EndpointID).Str("item_id", item.ID.String()).Msg("drain cancelled, in-flight item dropped")
			return ctx.Err()
		case isUnavailable(err):
			log.Error().Err(err).Str("id", item.EndpointID).Msg("entity store unavailable, stopping drain")
			return err
		default:
			sum.Faults++
			r.opts.Metrics.ItemFault(name)
			log.Error().Err(err).Str("id", item.EndpointID).Str("item_id", item.ID.String()).Msg("failed to process queue item")
		}
	}
}

// itemFault marks an error raised while checking or notifying, as opposed
// to loading the endpoint.
type itemFault struct {
	err error
}

func (f *itemFault) Error() string { return f.err.Error() }
func (f *itemFault) Unwrap() error { return f.err }

func (r *Runner) process(ctx context.Context, item *Item) (ep *endpoint.Endpoint, err error) {
	unlock := r.locks.Lock(item.EndpointID)
	defer unlock()

	defer func() {
		if rec := recover(); rec != nil {
			err = &itemFault{err: fmt.Errorf("panic: %v", rec)}
			r.logger.Error().Str("id", item.EndpointID).Bytes("stack", debug.Stack()).Msg("recovered panic while processing queue item")
		}
	}()

	ep, err = r.store.Load(ctx, item.EndpointID)
	if err != nil {
		return nil, err
	}

	p := r.registry.Resolve(ep.Processor())
	if p == nil {
		return ep, &itemFault{err: errors.New("no processor available")}
	}

	res, err := p.Check(ctx, ep)
	if err != nil {
		if ctx.Err() != nil {
			return ep, ctx.Err()
		}
		return ep, &itemFault{err: fmt.Errorf("check: %w", err)}
	}

	if r.opts.Snapshots != nil {
		if err := r.opts.Snapshots.StoreStatus(ctx, ep.ID, res.StatusCode, res.Latency.Milliseconds(), r.now()); err != nil {
			r.logger.Warn().Err(err).Str("id", ep.ID).Msg("failed to record probe snapshot")
		}
	}

	if !res.Changed {
		return ep, nil
	}

	report, err := p.Notify(ctx, ep, res.PreviousStatus, res.PreviousMessage)
	if err != nil {
		if ctx.Err() != nil {
			return ep, ctx.Err()
		}
		return ep, &itemFault{err: fmt.Errorf("notify: %w", err)}
	}
	r.logger.Debug().
		Str("id", ep.ID).
		Int("attempted", report.Attempted).
		Int("succeeded", report.Succeeded).
		Int("failed", report.Failed).
		Int("skipped", report.Skipped).
		Msg("subscribers notified")

	return ep, nil
}

// isUnavailable reports a load failure meaning the entity store itself is
// failing (connection, dial or timeout). Any other load error belongs to the
// item alone.
func isUnavailable(err error) bool {
	var fault *itemFault
	if errors.As(err, &fault) {
		return false
	}
	switch apperror.KindOf(err) {
	case apperror.Dependency, apperror.RequestTimeout:
		return true
	default:
		return false
	}
}
