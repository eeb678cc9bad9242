package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"endpoint-status/internals/modules/endpoint"
	"endpoint-status/internals/modules/queue"
	"endpoint-status/pkg/metrics"

	"github.com/rs/zerolog"
)

type EndpointSource interface {
	LoadEnabled(ctx context.Context) ([]*endpoint.Endpoint, error)
}

type Enqueuer interface {
	EnqueueEndpoints(ctx context.Context, queueName string, eps []*endpoint.Endpoint) (int, error)
}

type Drainer interface {
	Drain(ctx context.Context, names []string, opts ...queue.DrainOption) (queue.Summary, error)
}

type Options struct {
	PrimaryQueue string
	Interval     time.Duration
	PollInterval time.Duration
	Metrics      *metrics.Metrics
}

// Report describes one tick or manual run.
type Report struct {
	Executed      bool          `json:"executed"`
	ExecutedAt    time.Time     `json:"executed_at,omitzero"`
	Enqueued      int           `json:"enqueued"`
	NextExecution time.Time     `json:"next_execution"`
	Summary       queue.Summary `json:"summary"`
}

type Status struct {
	NextExecution     time.Time `json:"next_execution"`
	DueInSeconds      int64     `json:"due_in_seconds"`
	IntervalSeconds   int64     `json:"interval_seconds"`
	ShowStatusMessage bool      `json:"show_status_message"`
}

// Scheduler gates periodic executions: an execution enqueues every enabled
// endpoint on the primary queue at most once per interval.
type Scheduler struct {
	mu        sync.Mutex
	state     StateStore
	endpoints EndpointSource
	enqueuer  Enqueuer
	drainer   Drainer
	opts      Options
	now       func() time.Time
	logger    *zerolog.Logger
}

func New(state StateStore, endpoints EndpointSource, enqueuer Enqueuer, drainer Drainer, opts Options, logger *zerolog.Logger) *Scheduler {
	l := logger.With().Str("component", "scheduler").Logger()
	return &Scheduler{
		state:     state,
		endpoints: endpoints,
		enqueuer:  enqueuer,
		drainer:   drainer,
		opts:      opts,
		now:       time.Now,
		logger:    &l,
	}
}

// Tick is the automatic trigger. Before NextExecution it does nothing;
// otherwise it enqueues, moves NextExecution one interval ahead and drains
// every queue.
func (s *Scheduler) Tick(ctx context.Context) (Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.state.Load(ctx)
	if err != nil {
		return Report{}, err
	}

	report, err := s.execute(ctx, &st)
	if err != nil || !report.Executed {
		return report, err
	}

	var opts []queue.DrainOption
	if st.ShowStatusMessage {
		opts = append(opts, queue.WithStatusMessages())
	}
	report.Summary, err = s.drainer.Drain(ctx, nil, opts...)
	return report, err
}

// RunNow is the manual trigger. force makes the execution due
// immediately; the queues are drained either way, with a status line per
// processed item.
func (s *Scheduler) RunNow(ctx context.Context, force bool) (Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.state.Load(ctx)
	if err != nil {
		return Report{}, err
	}
	if force {
		st.NextExecution = time.Time{}
	}
	st.ShowStatusMessage = true
	if err := s.state.Save(ctx, st); err != nil {
		return Report{}, err
	}

	report, execErr := s.execute(ctx, &st)

	var drainErr error
	report.Summary, drainErr = s.drainer.Drain(ctx, nil, queue.WithStatusMessages())

	st.ShowStatusMessage = false
	saveErr := s.state.Save(context.WithoutCancel(ctx), st)

	return report, errors.Join(execErr, drainErr, saveErr)
}

func (s *Scheduler) execute(ctx context.Context, st *State) (Report, error) {
	now := s.now()
	report := Report{NextExecution: st.NextExecution}

	if now.Before(st.NextExecution) {
		s.logger.Debug().Time("next_execution", st.NextExecution).Msg("endpoint_status not due yet")
		return report, nil
	}

	eps, err := s.endpoints.LoadEnabled(ctx)
	if err != nil {
		return report, err
	}
	n, err := s.enqueuer.EnqueueEndpoints(ctx, s.opts.PrimaryQueue, eps)
	if err != nil {
		return report, err
	}

	st.NextExecution = now.Add(s.opts.Interval)
	if err := s.state.Save(ctx, *st); err != nil {
		return report, err
	}

	s.opts.Metrics.SchedulerExecuted()
	s.logger.Info().
		Int("enqueued", n).
		Time("next_execution", st.NextExecution).
		Msgf("endpoint_status executed at %s", now.Format(time.RFC3339))

	report.Executed = true
	report.ExecutedAt = now
	report.Enqueued = n
	report.NextExecution = st.NextExecution
	return report, nil
}

func (s *Scheduler) Status(ctx context.Context) (Status, error) {
	st, err := s.state.Load(ctx)
	if err != nil {
		return Status{}, err
	}
	due := int64(st.NextExecution.Sub(s.now()).Seconds())
	if st.NextExecution.IsZero() || due < 0 {
		due = 0
	}
	return Status{
		NextExecution:     st.NextExecution,
		DueInSeconds:      due,
		IntervalSeconds:   int64(s.opts.Interval.Seconds()),
		ShowStatusMessage: st.ShowStatusMessage,
	}, nil
}

// Run calls Tick every poll interval until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	if s.opts.PollInterval <= 0 {
		panic("scheduler poll interval must be > 0")
	}
	s.logger.Info().Dur("poll_interval", s.opts.PollInterval).Msg("Scheduler started")
	ticker := time.NewTicker(s.opts.PollInterval)
	defer func() {
		ticker.Stop()
		s.logger.Info().Msg("Scheduler stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			report, err := s.Tick(ctx)
			if err != nil {
				// infrastructure fault → log & retry on the next tick
				s.logger.Error().Err(err).Msg("scheduler tick failed")
				continue
			}
			if report.Executed {
				s.logger.Info().
					Int("processed", report.Summary.Processed).
					Int("faults", report.Summary.Faults).
					Msg("scheduled run completed")
			}
		}
	}
}
