package notifier

import (
	"bufio"
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"endpoint-status/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// smtpSink is a minimal SMTP server accepting one message per connection.
type smtpSink struct {
	ln     net.Listener
	mu     sync.Mutex
	data   []string
	reject string
}

func newSMTPSink(t *testing.T, reject string) *smtpSink {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	s := &smtpSink{ln: ln, reject: reject}
	go s.serve()
	t.Cleanup(func() { _ = ln.Close() })
	return s
}

func (s *smtpSink) serve() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.handle(conn)
	}
}

func (s *smtpSink) handle(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	reply := func(line string) { _, _ = conn.Write([]byte(line + "\r\n")) }

	reply("220 sink ready")
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		cmd := strings.ToUpper(strings.TrimSpace(line))
		switch {
		case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
			reply("250 sink")
		case strings.HasPrefix(cmd, "MAIL FROM"):
			reply("250 ok")
		case strings.HasPrefix(cmd, "RCPT TO"):
			if s.reject != "" && strings.Contains(cmd, strings.ToUpper(s.reject)) {
				reply("550 no such user")
				continue
			}
			reply("250 ok")
		case cmd == "DATA":
			reply("354 go ahead")
			var sb strings.Builder
			for {
				l, err := r.ReadString('\n')
				if err != nil {
					return
				}
				if l == ".\r\n" {
					break
				}
				sb.WriteString(l)
			}
			s.mu.Lock()
			s.data = append(s.data, sb.String())
			s.mu.Unlock()
			reply("250 queued")
		case cmd == "QUIT":
			reply("221 bye")
			return
		default:
			reply("250 ok")
		}
	}
}

func (s *smtpSink) messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.data...)
}

func newSMTP(addr string) *SMTPTransport {
	log := zerolog.Nop()
	cfg := &config.MailConfig{
		From: "noreply@example.com",
		SMTP: config.SMTPConfig{Addr: addr},
	}
	return NewSMTPTransport(cfg, NewTemplates("en", "[endpoint-status]"), &log)
}

func sendCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestSMTPTransport_Delivers(t *testing.T) {
	sink := newSMTPSink(t, "")

	d, err := newSMTP(sink.ln.Addr().String()).Send(sendCtx(t), sampleMessage("feed", "en"))
	require.NoError(t, err)
	assert.True(t, d.Delivered)

	msgs := sink.messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "To: ops@example.com")
	assert.Contains(t, msgs[0], "Subject: [endpoint-status] Feed is now down")
	assert.Contains(t, msgs[0], "Content-Language: en")
}

func TestSMTPTransport_RejectedRecipient(t *testing.T) {
	sink := newSMTPSink(t, "ops@example.com")

	d, err := newSMTP(sink.ln.Addr().String()).Send(sendCtx(t), sampleMessage("feed", "en"))
	require.NoError(t, err)
	assert.False(t, d.Delivered)
	assert.Empty(t, sink.messages())
}

func TestSMTPTransport_UnreachableRelay(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	_, err = newSMTP(addr).Send(sendCtx(t), sampleMessage("feed", "en"))
	assert.ErrorIs(t, err, ErrTransportUnavailable)
}

func TestHost(t *testing.T) {
	assert.Equal(t, "smtp.example.com", host("smtp.example.com:587"))
	assert.Equal(t, "smtp.example.com", host("smtp.example.com"))
}

func TestSMTPTransport_ComposeKeepsHeadersOnOneLine(t *testing.T) {
	m := newSMTP("localhost:25")
	msg := Message{Recipient: "ops@example.com", Locale: "en"}
	raw := string(m.compose(msg, Rendered{
		Subject: "[endpoint-status] Feed\r\nBcc: victim@example.com\nX-Evil: 1 is now down",
		Body:    "line one\nline two",
	}))

	head, body, ok := strings.Cut(raw, "\r\n\r\n")
	require.True(t, ok)
	assert.Equal(t, "line one\r\nline two\r\n", body)

	lines := strings.Split(head, "\r\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Subject: [endpoint-status] Feed Bcc: victim@example.com X-Evil: 1 is now down", lines[2])
	for _, l := range lines {
		assert.NotContains(t, l, "\n")
		assert.NotContains(t, l, "\r")
		assert.False(t, strings.HasPrefix(l, "Bcc:"))
	}
}
