package user

import (
	"context"
	"errors"
	"time"

	"endpoint-status/internals/modules/notifier"
	"endpoint-status/pkg/db"
	"endpoint-status/pkg/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const (
	selectUserByEmail = `SELECT id, email, preferred_locale, updated_at FROM users WHERE email = $1`

	upsertUser = `
INSERT INTO users (id, email, preferred_locale, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (email) DO UPDATE SET
	preferred_locale = EXCLUDED.preferred_locale,
	updated_at = now()
RETURNING id, email, preferred_locale, updated_at`
)

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

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	const op string = "repo.user.get_user_by_email"

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var u User
	err := r.db.QueryRow(ctx, selectUserByEmail, email).Scan(&u.ID, &u.Email, &u.PreferredLocale, &u.UpdatedAt)
	if err == nil {
		return u, nil
	}
	return User{}, utils.WrapRepoError(op, err, true, r.logger)
}

// FindByEmail looks a recipient up for the notifier. Unknown addresses are
// not an error.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*notifier.Profile, error) {
	const op string = "repo.user.find_by_email"

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var p notifier.Profile
	var id uuid.UUID
	var updatedAt time.Time
	err := r.db.QueryRow(ctx, selectUserByEmail, email).Scan(&id, &p.Email, &p.PreferredLocale, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, utils.WrapRepoError(op, err, false, r.logger)
	}
	return &p, nil
}

func (r *Repository) UpsertUser(ctx context.Context, cmd UpsertProfileCmd) (User, error) {
	const op string = "repo.user.upsert_user"

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var u User
	err := r.db.QueryRow(ctx, upsertUser, uuid.New(), cmd.Email, cmd.PreferredLocale).
		Scan(&u.ID, &u.Email, &u.PreferredLocale, &u.UpdatedAt)
	if err == nil {
		return u, nil
	}
	return User{}, utils.WrapRepoError(op, err, false, r.logger)
}
