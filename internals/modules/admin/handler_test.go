package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"endpoint-status/internals/modules/endpoint"
	"endpoint-status/internals/modules/endpoint/endpointtest"
	"endpoint-status/internals/modules/processor"
	"endpoint-status/internals/modules/queue"
	"endpoint-status/internals/modules/scheduler"
	"endpoint-status/pkg/redisstore"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCron struct {
	forced []bool
	err    error
}

func (f *fakeCron) RunNow(_ context.Context, force bool) (scheduler.Report, error) {
	f.forced = append(f.forced, force)
	return scheduler.Report{Executed: force, Enqueued: 1}, f.err
}

func (f *fakeCron) Status(context.Context) (scheduler.Status, error) {
	return scheduler.Status{DueInSeconds: 42, IntervalSeconds: 3600}, nil
}

type apiFixture struct {
	router http.Handler
	cron   *fakeCron
	client *redisstore.Client
	queues *queue.Queues
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), Protocol: 2, DisableIdentity: true})
	t.Cleanup(func() { _ = rdb.Close() })
	client := redisstore.NewFromClient(rdb, "test")
	logger := zerolog.Nop()

	msg := "Feed content is well formed."
	up := endpoint.New("feed", "Feed", "https://feed.example")
	up.Status = endpoint.StatusUp
	up.Message = &msg
	store := endpointtest.NewStore(up, endpoint.New("other", "Other", "https://other.example"))

	queues := queue.NewQueues(client, []string{"q1", "q2"})
	registry := processor.NewRegistry(&logger)
	registry.MustRegister(
		processor.NewCheckNotify(processor.DefaultID, "Default", "JSON check", nil, nil),
		processor.NewCheckNotify(processor.HTTPStatusID, "HTTP status", "Status code only", nil, nil),
	)

	cron := &fakeCron{}
	svc := NewService(Deps{
		Cron:       cron,
		Queues:     queues,
		Enqueuer:   queue.NewEnqueuer(queues, store, &logger),
		Processors: registry,
		Endpoints:  store,
		Snapshots:  client,
	}, &logger)

	r := chi.NewRouter()
	r.Mount("/api/v1", Routes(NewHandler(svc, validator.New())))

	return &apiFixture{router: r, cron: cron, client: client, queues: queues}
}

func (f *apiFixture) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), rec.Body.String())
	return rec, decoded
}

func TestRunCron(t *testing.T) {
	f := newAPI(t)

	rec, body := f.do(t, http.MethodPost, "/api/v1/cron/run", `{"force": true}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["data"].(map[string]any)["executed"])

	rec, _ = f.do(t, http.MethodPost, "/api/v1/cron/run", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []bool{true, false}, f.cron.forced)

	rec, _ = f.do(t, http.MethodPost, "/api/v1/cron/run", `{"force":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCronStatus(t *testing.T) {
	f := newAPI(t)

	rec, body := f.do(t, http.MethodGet, "/api/v1/cron", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(42), body["data"].(map[string]any)["due_in_seconds"])
}

func TestEnqueueAndQueueSizes(t *testing.T) {
	f := newAPI(t)

	rec, body := f.do(t, http.MethodPost, "/api/v1/queues/q2/items", `{"endpoint_ids": ["feed", "missing", "other"]}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, float64(2), body["data"].(map[string]any)["enqueued"])

	rec, body = f.do(t, http.MethodGet, "/api/v1/queues", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{
		map[string]any{"name": "q1", "size": float64(0)},
		map[string]any{"name": "q2", "size": float64(2)},
	}, body["data"])
}

func TestEnqueue_Rejections(t *testing.T) {
	f := newAPI(t)

	rec, body := f.do(t, http.MethodPost, "/api/v1/queues/nope/items", `{"endpoint_ids": ["feed"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])

	rec, _ = f.do(t, http.MethodPost, "/api/v1/queues/q1/items", `{"endpoint_ids": []}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = f.do(t, http.MethodPost, "/api/v1/queues/q1/items", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListProcessors(t *testing.T) {
	f := newAPI(t)

	rec, body := f.do(t, http.MethodGet, "/api/v1/processors", "")
	require.Equal(t, http.StatusOK, rec.Code)
	defs := body["data"].([]any)
	require.Len(t, defs, 2)
	ids := []any{defs[0].(map[string]any)["id"], defs[1].(map[string]any)["id"]}
	assert.ElementsMatch(t, []any{processor.DefaultID, processor.HTTPStatusID}, ids)
}

func TestEndpointStatus(t *testing.T) {
	f := newAPI(t)
	checkedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, f.client.StoreStatus(context.Background(), "feed", 200, 87, checkedAt))

	rec, body := f.do(t, http.MethodGet, "/api/v1/endpoints/feed/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "up", data["status"])
	assert.Equal(t, "Feed content is well formed.", data["message"])
	probe := data["last_probe"].(map[string]any)
	assert.Equal(t, float64(200), probe["status_code"])
	assert.Equal(t, float64(87), probe["latency_ms"])
	assert.Equal(t, "2026-03-01T12:00:00Z", probe["checked_at"])

	rec, body = f.do(t, http.MethodGet, "/api/v1/endpoints/other/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	data = body["data"].(map[string]any)
	assert.Nil(t, data["message"])
	assert.NotContains(t, data, "last_probe")

	rec, _ = f.do(t, http.MethodGet, "/api/v1/endpoints/ghost/status", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpsertEndpoint_CreatesNeutralEndpoint(t *testing.T) {
	f := newAPI(t)
	require.NoError(t, f.client.StoreStatus(context.Background(), "fresh", 500, 12, time.Now()))

	rec, body := f.do(t, http.MethodPut, "/api/v1/endpoints/fresh",
		`{"label": "Fresh", "uri": "https://fresh.example/health", "processor": "http_status", "email_subscribers": ["ops@example.com"]}`)
	require.Equal(t, http.StatusOK, rec.Code, body)
	data := body["data"].(map[string]any)
	assert.Equal(t, "neutral", data["status"])
	assert.Equal(t, true, data["enabled"])
	assert.Equal(t, processor.HTTPStatusID, data["processor"])

	// a stale snapshot under the same id is dropped
	snap, err := f.client.GetStatus(context.Background(), "fresh")
	require.NoError(t, err)
	assert.Nil(t, snap)

	rec, body = f.do(t, http.MethodGet, "/api/v1/endpoints/fresh/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Fresh", body["data"].(map[string]any)["label"])
}

func TestUpsertEndpoint_KeepsOutcomeAndSnapshotForSameURI(t *testing.T) {
	f := newAPI(t)
	require.NoError(t, f.client.StoreStatus(context.Background(), "feed", 200, 87, time.Now()))

	rec, body := f.do(t, http.MethodPut, "/api/v1/endpoints/feed",
		`{"label": "Feed renamed", "uri": "https://feed.example", "enabled": false}`)
	require.Equal(t, http.StatusOK, rec.Code, body)
	data := body["data"].(map[string]any)
	assert.Equal(t, "up", data["status"])
	assert.Equal(t, "Feed content is well formed.", data["message"])
	assert.Equal(t, false, data["enabled"])

	snap, err := f.client.GetStatus(context.Background(), "feed")
	require.NoError(t, err)
	assert.NotNil(t, snap)
}

func TestUpsertEndpoint_URIChangeDropsSnapshot(t *testing.T) {
	f := newAPI(t)
	require.NoError(t, f.client.StoreStatus(context.Background(), "feed", 200, 87, time.Now()))

	rec, _ := f.do(t, http.MethodPut, "/api/v1/endpoints/feed", `{"label": "Feed", "uri": "https://mirror.example/feed"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	snap, err := f.client.GetStatus(context.Background(), "feed")
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestUpsertEndpoint_Rejections(t *testing.T) {
	f := newAPI(t)

	rec, _ := f.do(t, http.MethodPut, "/api/v1/endpoints/x", `{"label": "X", "uri": "not a uri"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = f.do(t, http.MethodPut, "/api/v1/endpoints/x", `{"uri": "https://x.example"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = f.do(t, http.MethodPut, "/api/v1/endpoints/x", `{"label": "X", "uri": "https://x.example", "email_subscribers": ["nope"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body := f.do(t, http.MethodPut, "/api/v1/endpoints/x", `{"label": "X", "uri": "https://x.example", "processor": "ghost"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
}
