package endpoint

import (
	"context"
	"errors"
	"time"

	"endpoint-status/pkg/db"
	"endpoint-status/pkg/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
)

const selectColumns = `SELECT id, label, uri, enabled, status, message, processor, email_subscribers FROM endpoint_status`

const upsertEndpoint = `
INSERT INTO endpoint_status (id, label, uri, enabled, status, message, processor, email_subscribers, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
ON CONFLICT (id) DO UPDATE SET
	label = EXCLUDED.label,
	uri = EXCLUDED.uri,
	enabled = EXCLUDED.enabled,
	status = EXCLUDED.status,
	message = EXCLUDED.message,
	processor = EXCLUDED.processor,
	email_subscribers = EXCLUDED.email_subscribers,
	updated_at = now()`

const updateOutcome = `UPDATE endpoint_status SET status = $2, message = $3, updated_at = now() WHERE id = $1`

// Repository is the PostgreSQL entity store.
type Repository struct {
	db           db.DBTX
	queryTimeout time.Duration
	logger       *zerolog.Logger
}

func NewRepository(dbExecutor db.DBTX, queryTimeout time.Duration, logger *zerolog.Logger) *Repository {
	return &Repository{
		db:           dbExecutor,
		queryTimeout: queryTimeout,
		logger:       logger,
	}
}

func (r *Repository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.queryTimeout)
}

func (r *Repository) Load(ctx context.Context, id string) (*Endpoint, error) {
	const op = "repo.endpoint.load"

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	e, err := scanEndpoint(r.db.QueryRow(ctx, selectColumns+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound(op, id)
	}
	if err != nil {
		return nil, utils.WrapRepoError(op, err, false, r.logger)
	}
	return e, nil
}

func (r *Repository) LoadMultiple(ctx context.Context, ids []string) ([]*Endpoint, error) {
	const op = "repo.endpoint.load_multiple"

	if len(ids) == 0 {
		return nil, nil
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	found, err := r.query(ctx, selectColumns+` WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, utils.WrapRepoError(op, err, false, r.logger)
	}

	byID := make(map[string]*Endpoint, len(found))
	for _, e := range found {
		byID[e.ID] = e
	}

	out := make([]*Endpoint, 0, len(found))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		e, ok := byID[id]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, e)
	}
	return out, nil
}

func (r *Repository) LoadEnabled(ctx context.Context) ([]*Endpoint, error) {
	const op = "repo.endpoint.load_enabled"

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	found, err := r.query(ctx, selectColumns+` WHERE enabled ORDER BY id`)
	if err != nil {
		return nil, utils.WrapRepoError(op, err, false, r.logger)
	}
	return found, nil
}

// Save upserts the whole entity. It is the seeding path and validates every
// field, the URI included.
func (r *Repository) Save(ctx context.Context, e *Endpoint) error {
	const op = "repo.endpoint.save"

	if err := e.Validate(); err != nil {
		return err
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	subscribers := e.Subscribers
	if subscribers == nil {
		subscribers = []string{}
	}

	_, err := r.db.Exec(ctx, upsertEndpoint,
		e.ID,
		e.Label,
		e.URI,
		e.Enabled,
		string(e.Status),
		utils.ToPgText(e.Message),
		utils.ToPgText(e.ProcessorID),
		subscribers,
	)
	if err != nil {
		return utils.WrapRepoError(op, err, false, r.logger)
	}
	return nil
}

// SaveOutcome records a check result. Only status and message are written,
// in one statement, so rows whose URI or label would fail Validate still get
// their outcome recorded.
func (r *Repository) SaveOutcome(ctx context.Context, id string, status Status, message string) error {
	const op = "repo.endpoint.save_outcome"

	if !status.Valid() {
		return invalidStatus(op, status)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, updateOutcome, id, string(status), message)
	if err != nil {
		return utils.WrapRepoError(op, err, false, r.logger)
	}
	if tag.RowsAffected() == 0 {
		return notFound(op, id)
	}
	return nil
}

func (r *Repository) query(ctx context.Context, sql string, args ...any) ([]*Endpoint, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Endpoint
	for rows.Next() {
		e, err := scanEndpoint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanEndpoint(row pgx.Row) (*Endpoint, error) {
	var (
		e           Endpoint
		status      string
		message     pgtype.Text
		processor   pgtype.Text
		subscribers []string
	)
	if err := row.Scan(&e.ID, &e.Label, &e.URI, &e.Enabled, &status, &message, &processor, &subscribers); err != nil {
		return nil, err
	}
	e.Status = Status(status)
	e.Message = utils.FromPgText(message)
	e.ProcessorID = utils.FromPgText(processor)
	e.Subscribers = subscribers
	return &e, nil
}
