package admin

import (
	"context"
	"strconv"
	"time"

	"endpoint-status/internals/modules/endpoint"
	"endpoint-status/internals/modules/processor"
	"endpoint-status/internals/modules/scheduler"
	"endpoint-status/pkg/apperror"

	"github.com/rs/zerolog"
)

type Cron interface {
	RunNow(ctx context.Context, force bool) (scheduler.Report, error)
	Status(ctx context.Context) (scheduler.Status, error)
}

type Queues interface {
	Names() []string
	Sizes(ctx context.Context) (map[string]int, error)
}

type Enqueuer interface {
	Enqueue(ctx context.Context, queueName string, ids []string) (int, error)
}

type ProcessorLister interface {
	Definitions() []processor.Definition
}

type EndpointStore interface {
	Load(ctx context.Context, id string) (*endpoint.Endpoint, error)
	Save(ctx context.Context, e *endpoint.Endpoint) error
}

// SnapshotStore holds the last probe hash of an endpoint, nil if none.
type SnapshotStore interface {
	GetStatus(ctx context.Context, endpointID string) (map[string]string, error)
	DelStatus(ctx context.Context, endpointID string) error
}

type Deps struct {
	Cron       Cron
	Queues     Queues
	Enqueuer   Enqueuer
	Processors ProcessorLister
	Endpoints  EndpointStore
	Snapshots  SnapshotStore
}

type Service struct {
	deps   Deps
	logger *zerolog.Logger
}

func NewService(deps Deps, logger *zerolog.Logger) *Service {
	return &Service{
		deps:   deps,
		logger: logger,
	}
}

func (s *Service) RunCron(ctx context.Context, force bool) (scheduler.Report, error) {
	return s.deps.Cron.RunNow(ctx, force)
}

func (s *Service) CronStatus(ctx context.Context) (scheduler.Status, error) {
	return s.deps.Cron.Status(ctx)
}

func (s *Service) QueueSizes(ctx context.Context) ([]QueueSize, error) {
	sizes, err := s.deps.Queues.Sizes(ctx)
	if err != nil {
		return nil, err
	}
	names := s.deps.Queues.Names()
	out := make([]QueueSize, 0, len(names))
	for _, name := range names {
		out = append(out, QueueSize{Name: name, Size: sizes[name]})
	}
	return out, nil
}

func (s *Service) Enqueue(ctx context.Context, queueName string, ids []string) (int, error) {
	return s.deps.Enqueuer.Enqueue(ctx, queueName, ids)
}

func (s *Service) Processors() []processor.Definition {
	return s.deps.Processors.Definitions()
}

// EndpointStatus returns the persisted status plus the last probe snapshot.
// A snapshot read failure only drops the snapshot.
func (s *Service) EndpointStatus(ctx context.Context, id string) (EndpointStatusResponse, error) {
	ep, err := s.deps.Endpoints.Load(ctx, id)
	if err != nil {
		return EndpointStatusResponse{}, err
	}

	resp := EndpointStatusResponse{
		ID:      ep.ID,
		Label:   ep.Label,
		Status:  string(ep.Status),
		Message: ep.Message,
	}

	if s.deps.Snapshots == nil {
		return resp, nil
	}
	fields, err := s.deps.Snapshots.GetStatus(ctx, id)
	if err != nil {
		s.logger.Warn().Err(err).Str("endpoint_id", id).Msg("probe snapshot unavailable")
		return resp, nil
	}
	resp.LastProbe = parseSnapshot(fields)
	return resp, nil
}

// UpsertEndpoint creates or edits an endpoint. A new endpoint starts neutral;
// an existing one keeps its recorded outcome. The probe snapshot is dropped
// when the URI changes since it describes the old target.
func (s *Service) UpsertEndpoint(ctx context.Context, id string, req UpsertEndpointRequest) (*endpoint.Endpoint, error) {
	const op = "service.admin.upsert_endpoint"

	if req.Processor != nil && !s.knownProcessor(*req.Processor) {
		return nil, apperror.Invalid(op, "unknown processor "+strconv.Quote(*req.Processor))
	}

	ep, err := s.deps.Endpoints.Load(ctx, id)
	created := endpoint.IsNotFound(err)
	switch {
	case created:
		ep = endpoint.New(id, req.Label, req.URI)
	case err != nil:
		return nil, err
	}
	uriChanged := !created && ep.URI != req.URI

	ep.Label = req.Label
	ep.URI = req.URI
	if req.Enabled != nil {
		ep.Enabled = *req.Enabled
	}
	ep.ProcessorID = req.Processor
	ep.Subscribers = req.Subscribers

	if err := s.deps.Endpoints.Save(ctx, ep); err != nil {
		return nil, err
	}

	if (created || uriChanged) && s.deps.Snapshots != nil {
		if err := s.deps.Snapshots.DelStatus(ctx, id); err != nil {
			s.logger.Warn().Err(err).Str("endpoint_id", id).Msg("failed to clear probe snapshot")
		}
	}

	s.logger.Info().Str("endpoint_id", id).Bool("created", created).Msg("endpoint saved")
	return ep, nil
}

func (s *Service) knownProcessor(id string) bool {
	for _, d := range s.deps.Processors.Definitions() {
		if d.ID == id {
			return true
		}
	}
	return false
}

func parseSnapshot(fields map[string]string) *ProbeSnapshot {
	if len(fields) == 0 {
		return nil
	}
	var snap ProbeSnapshot
	snap.StatusCode, _ = strconv.Atoi(fields["status_code"])
	snap.LatencyMs, _ = strconv.ParseInt(fields["latency_ms"], 10, 64)
	if sec, err := strconv.ParseInt(fields["checked_at"], 10, 64); err == nil && sec > 0 {
		snap.CheckedAt = time.Unix(sec, 0).UTC()
	}
	return &snap
}
