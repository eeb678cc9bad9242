package user

import (
	"context"
	"strings"

	"endpoint-status/internals/modules/notifier"
	"endpoint-status/pkg/apperror"
)

type store interface {
	GetUserByEmail(ctx context.Context, email string) (User, error)
	UpsertUser(ctx context.Context, cmd UpsertProfileCmd) (User, error)
	FindByEmail(ctx context.Context, email string) (*notifier.Profile, error)
}

type Service struct {
	repo store
}

func NewService(repo store) *Service {
	return &Service{
		repo: repo,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FindByEmail is the notifier's recipient directory. Addresses are matched
// the way profiles are stored, so case and surrounding space do not matter.
func (s *Service) FindByEmail(ctx context.Context, email string) (*notifier.Profile, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, nil
	}
	return s.repo.FindByEmail(ctx, email)
}

func (s *Service) GetProfile(ctx context.Context, email string) (User, error) {
	const op string = "service.user.get_profile"

	email = normalizeEmail(email)
	if email == "" {
		return User{}, apperror.Invalid(op, "email is required")
	}
	return s.repo.GetUserByEmail(ctx, email)
}

// UpsertProfile satisfies the user event handler as well as the admin API.
func (s *Service) UpsertProfile(ctx context.Context, email, preferredLocale string) error {
	_, err := s.Upsert(ctx, UpsertProfileCmd{Email: email, PreferredLocale: preferredLocale})
	return err
}

func (s *Service) Upsert(ctx context.Context, cmd UpsertProfileCmd) (User, error) {
	const op string = "service.user.upsert"

	cmd.Email = normalizeEmail(cmd.Email)
	if cmd.Email == "" {
		return User{}, apperror.Invalid(op, "email is required")
	}
	cmd.PreferredLocale = strings.TrimSpace(cmd.PreferredLocale)
	return s.repo.UpsertUser(ctx, cmd)
}
