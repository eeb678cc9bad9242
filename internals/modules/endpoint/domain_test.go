package endpoint

import (
	"testing"

	"endpoint-status/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Valid(t *testing.T) {
	for _, s := range AllStatuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, Status("unknown").Valid())
	assert.False(t, Status("").Valid())
}

func TestNew_StartsNeutral(t *testing.T) {
	e := New("feed", "Feed", "https://example.com/feed.json")
	assert.Equal(t, StatusNeutral, e.Status)
	assert.Nil(t, e.Message)
	assert.True(t, e.Enabled)
	assert.Equal(t, "", e.MessageText())
	assert.Equal(t, "", e.Processor())
}

func TestSetOutcome(t *testing.T) {
	e := New("feed", "Feed", "https://example.com/feed.json")
	e.SetOutcome(StatusDown, "Unexpected response status: 503 Service Unavailable")

	assert.Equal(t, StatusDown, e.Status)
	assert.Equal(t, "Unexpected response status: 503 Service Unavailable", e.MessageText())
}

func TestClone_IsDeep(t *testing.T) {
	p := "http_status"
	e := New("feed", "Feed", "https://example.com/feed.json")
	e.ProcessorID = &p
	e.Subscribers = []string{"a@example.com"}
	e.SetOutcome(StatusUp, "ok")

	cp := e.Clone()
	cp.Subscribers[0] = "b@example.com"
	*cp.Message = "changed"
	*cp.ProcessorID = "default"

	assert.Equal(t, "a@example.com", e.Subscribers[0])
	assert.Equal(t, "ok", e.MessageText())
	assert.Equal(t, "http_status", e.Processor())
}

func TestValidate(t *testing.T) {
	require.NoError(t, New("feed", "Feed", "https://example.com/feed.json").Validate())

	bad := New("feed", "Feed", "not a uri")
	err := bad.Validate()
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.InvalidInput))

	bad = New("feed", "Feed", "https://example.com")
	bad.Status = "sideways"
	assert.Error(t, bad.Validate())
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(notFound("repo.endpoint.load", "x")))
	assert.True(t, IsNotFound(ErrNotFound))
	assert.False(t, IsNotFound(apperror.New(apperror.Dependency, "op", nil)))
}
