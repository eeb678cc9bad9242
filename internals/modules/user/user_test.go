package user

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"endpoint-status/internals/modules/endpoint"
	"endpoint-status/internals/modules/notifier"
	"endpoint-status/pkg/apperror"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	users map[string]User
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (User, error) {
	u, ok := m.users[email]
	if !ok {
		return User{}, apperror.New(apperror.NotFound, "mem.user.get", nil)
	}
	return u, nil
}

func (m *memStore) FindByEmail(_ context.Context, email string) (*notifier.Profile, error) {
	u, ok := m.users[email]
	if !ok {
		return nil, nil
	}
	return &notifier.Profile{Email: u.Email, PreferredLocale: u.PreferredLocale}, nil
}

func (m *memStore) UpsertUser(_ context.Context, cmd UpsertProfileCmd) (User, error) {
	u, ok := m.users[cmd.Email]
	if !ok {
		u = User{ID: uuid.New(), Email: cmd.Email}
	}
	u.PreferredLocale = cmd.PreferredLocale
	u.UpdatedAt = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	m.users[cmd.Email] = u
	return u, nil
}

func newTestRouter() (http.Handler, *memStore) {
	store := &memStore{users: map[string]User{}}
	r := chi.NewRouter()
	r.Mount("/users", Routes(NewHandler(NewService(store), validator.New())))
	return r, store
}

func TestService_UpsertProfileNormalizesEmail(t *testing.T) {
	store := &memStore{users: map[string]User{}}
	svc := NewService(store)

	require.NoError(t, svc.UpsertProfile(context.Background(), "  Ops@Example.COM ", "de"))
	u, ok := store.users["ops@example.com"]
	require.True(t, ok)
	assert.Equal(t, "de", u.PreferredLocale)

	err := svc.UpsertProfile(context.Background(), "   ", "de")
	assert.True(t, apperror.IsKind(err, apperror.InvalidInput))
}

func TestService_FindByEmailMatchesStoredProfile(t *testing.T) {
	store := &memStore{users: map[string]User{}}
	svc := NewService(store)
	require.NoError(t, svc.UpsertProfile(context.Background(), "Alice@Example.com", "de"))

	p, err := svc.FindByEmail(context.Background(), " Alice@Example.com")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "de", p.PreferredLocale)

	p, err = svc.FindByEmail(context.Background(), "  ")
	require.NoError(t, err)
	assert.Nil(t, p)
}

type recordingTransport struct {
	sent []notifier.Message
}

func (r *recordingTransport) Send(_ context.Context, msg notifier.Message) (notifier.Delivery, error) {
	r.sent = append(r.sent, msg)
	return notifier.Delivery{Delivered: true}, nil
}

func TestService_DispatcherUsesStoredLocaleForMixedCaseSubscriber(t *testing.T) {
	store := &memStore{users: map[string]User{}}
	svc := NewService(store)
	require.NoError(t, svc.UpsertProfile(context.Background(), "alice@example.com", "de"))

	tr := &recordingTransport{}
	log := zerolog.Nop()
	d := notifier.NewDispatcher(tr, svc, notifier.DispatcherOptions{DefaultLocale: "en"}, &log)

	ep := endpoint.New("feed", "Feed", "https://example.com/feed.json")
	ep.Subscribers = []string{"Alice@Example.com"}
	ep.SetOutcome(endpoint.StatusDown, "Unexpected response status: 503 Service Unavailable")

	_, err := d.Notify(context.Background(), ep, endpoint.StatusUp, nil)
	require.NoError(t, err)
	require.Len(t, tr.sent, 1)
	assert.Equal(t, "de", tr.sent[0].Locale)
	assert.Equal(t, "Alice@Example.com", tr.sent[0].Recipient)
}

func TestHandler_UpsertAndGet(t *testing.T) {
	r, _ := newTestRouter()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/users/",
		strings.NewReader(`{"email":"ops@example.com","preferred_locale":"de"}`)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/ops@example.com", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data ProfileResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "de", body.Data.PreferredLocale)
	assert.Equal(t, "2026-03-01T00:00:00Z", body.Data.UpdatedAt)
}

func TestHandler_Rejections(t *testing.T) {
	r, _ := newTestRouter()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/users/", strings.NewReader(`{"email":"not-an-address"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/ghost@example.com", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
