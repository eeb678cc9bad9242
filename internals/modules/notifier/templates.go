package notifier

import (
	"fmt"
	"strings"
	"sync"
	"text/template"
)

type Rendered struct {
	Subject string
	Body    string
}

type mailTemplate struct {
	subject *template.Template
	body    *template.Template
}

// Templates renders messages by template key and locale. Lookups fall back
// to the default locale, then to DefaultTemplateKey.
type Templates struct {
	mu            sync.RWMutex
	defaultLocale string
	subjectPrefix string
	byKey         map[string]map[string]mailTemplate
}

func NewTemplates(defaultLocale, subjectPrefix string) *Templates {
	t := &Templates{
		defaultLocale: defaultLocale,
		subjectPrefix: subjectPrefix,
		byKey:         make(map[string]map[string]mailTemplate),
	}
	t.MustRegister(DefaultTemplateKey, "en",
		`{{.EndpointLabel}} is now {{.Status}}`,
		`The status of endpoint "{{.EndpointLabel}}" ({{.EndpointID}}) changed.

URI:      {{.URI}}
Status:   {{.PreviousStatus}} -> {{.Status}}
Message:  {{.Message}}
{{- if .PreviousMessage}}
Previous: {{.PreviousMessage}}
{{- end}}
`)
	t.MustRegister(DefaultTemplateKey, "de",
		`{{.EndpointLabel}} ist jetzt {{.Status}}`,
		`Der Status des Endpunkts "{{.EndpointLabel}}" ({{.EndpointID}}) hat sich geändert.

URI:      {{.URI}}
Status:   {{.PreviousStatus}} -> {{.Status}}
Meldung:  {{.Message}}
{{- if .PreviousMessage}}
Vorher:   {{.PreviousMessage}}
{{- end}}
`)
	return t
}

func (t *Templates) Register(key, locale, subject, body string) error {
	subj, err := template.New(key + ".subject." + locale).Option("missingkey=error").Parse(subject)
	if err != nil {
		return fmt.Errorf("parse subject template %s/%s: %w", key, locale, err)
	}
	b, err := template.New(key + ".body." + locale).Option("missingkey=error").Parse(body)
	if err != nil {
		return fmt.Errorf("parse body template %s/%s: %w", key, locale, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.byKey[key] == nil {
		t.byKey[key] = make(map[string]mailTemplate)
	}
	t.byKey[key][locale] = mailTemplate{subject: subj, body: b}
	return nil
}

func (t *Templates) MustRegister(key, locale, subject, body string) {
	if err := t.Register(key, locale, subject, body); err != nil {
		panic(err)
	}
}

func (t *Templates) Render(msg Message) (Rendered, error) {
	tpl, ok := t.lookup(msg.TemplateKey, msg.Locale)
	if !ok {
		return Rendered{}, fmt.Errorf("no mail template for %q", msg.TemplateKey)
	}

	var subj, body strings.Builder
	if err := tpl.subject.Execute(&subj, msg.Params); err != nil {
		return Rendered{}, fmt.Errorf("render subject: %w", err)
	}
	if err := tpl.body.Execute(&body, msg.Params); err != nil {
		return Rendered{}, fmt.Errorf("render body: %w", err)
	}

	return Rendered{
		Subject: strings.TrimSpace(t.subjectPrefix + " " + subj.String()),
		Body:    body.String(),
	}, nil
}

func (t *Templates) lookup(key, locale string) (mailTemplate, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, k := range []string{key, DefaultTemplateKey} {
		locales, ok := t.byKey[k]
		if !ok {
			continue
		}
		if tpl, ok := locales[locale]; ok {
			return tpl, true
		}
		if tpl, ok := locales[t.defaultLocale]; ok {
			return tpl, true
		}
	}
	return mailTemplate{}, false
}
