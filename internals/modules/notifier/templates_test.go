package notifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMessage(key, locale string) Message {
	return Message{
		TemplateKey: key,
		Recipient:   "ops@example.com",
		Locale:      locale,
		Params: Params{
			EndpointID:     "feed",
			EndpointLabel:  "Feed",
			URI:            "https://example.com/feed.json",
			Status:         "down",
			Message:        "Request failed: TIMEOUT: context deadline exceeded",
			PreviousStatus: "up",
		},
	}
}

func TestTemplates_FallsBackToDefaultKey(t *testing.T) {
	tpl := NewTemplates("en", "[endpoint-status]")

	r, err := tpl.Render(sampleMessage("feed", "en"))
	require.NoError(t, err)
	assert.Equal(t, "[endpoint-status] Feed is now down", r.Subject)
	assert.Contains(t, r.Body, "up -> down")
	assert.Contains(t, r.Body, "https://example.com/feed.json")
	assert.NotContains(t, r.Body, "Previous:")
}

func TestTemplates_Localised(t *testing.T) {
	tpl := NewTemplates("en", "")

	r, err := tpl.Render(sampleMessage("feed", "de"))
	require.NoError(t, err)
	assert.Equal(t, "Feed ist jetzt down", r.Subject)

	r, err = tpl.Render(sampleMessage("feed", "fr"))
	require.NoError(t, err)
	assert.Equal(t, "Feed is now down", r.Subject)
}

func TestTemplates_PerEndpointOverride(t *testing.T) {
	tpl := NewTemplates("en", "")
	require.NoError(t, tpl.Register("feed", "en", "Feed alert: {{.Status}}", "{{.Message}}"))

	r, err := tpl.Render(sampleMessage("feed", "en"))
	require.NoError(t, err)
	assert.Equal(t, "Feed alert: down", r.Subject)
	assert.Equal(t, "Request failed: TIMEOUT: context deadline exceeded", r.Body)

	// other locales of the override fall back to its default locale
	r, err = tpl.Render(sampleMessage("feed", "de"))
	require.NoError(t, err)
	assert.Equal(t, "Feed alert: down", r.Subject)
}

func TestTemplates_RejectsBadTemplates(t *testing.T) {
	tpl := NewTemplates("en", "")
	assert.Error(t, tpl.Register("broken", "en", "{{.Status", "body"))
	assert.Panics(t, func() { tpl.MustRegister("broken", "en", "ok", "{{end}}") })
}

func TestTemplates_MissingTemplate(t *testing.T) {
	tpl := &Templates{defaultLocale: "en", byKey: map[string]map[string]mailTemplate{}}
	_, err := tpl.Render(sampleMessage("feed", "en"))
	assert.Error(t, err)
}
