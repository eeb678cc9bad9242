package notifier

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"endpoint-status/config"

	"github.com/rs/zerolog"
)

// SMTPTransport delivers rendered messages straight to an SMTP relay.
type SMTPTransport struct {
	addr      string
	auth      smtp.Auth
	useTLS    bool
	from      string
	templates *Templates
	log       *zerolog.Logger
}

func NewSMTPTransport(cfg *config.MailConfig, templates *Templates, logger *zerolog.Logger) *SMTPTransport {
	var auth smtp.Auth
	if cfg.SMTP.User != "" || cfg.SMTP.Password != "" {
		auth = smtp.PlainAuth("", cfg.SMTP.User, cfg.SMTP.Password, host(cfg.SMTP.Addr))
	}
	l := logger.With().Str("component", "notifier.smtp").Logger()
	return &SMTPTransport{
		addr:      cfg.SMTP.Addr,
		auth:      auth,
		useTLS:    cfg.SMTP.UseTLS,
		from:      cfg.From,
		templates: templates,
		log:       &l,
	}
}

// Send returns ErrTransportUnavailable when the relay cannot be reached at
// all. A rejected recipient or message is reported as not delivered.
func (m *SMTPTransport) Send(ctx context.Context, msg Message) (Delivery, error) {
	rendered, err := m.templates.Render(msg)
	if err != nil {
		return Delivery{}, err
	}

	start := time.Now()
	log := m.log.With().
		Str("smtp_addr", m.addr).
		Bool("tls", m.useTLS).
		Str("to", msg.Recipient).
		Str("template", msg.TemplateKey).
		Logger()

	c, err := m.dial(ctx)
	if err != nil {
		log.Error().Err(err).Msg("smtp dial failed")
		return Delivery{}, fmt.Errorf("%w: %v", ErrTransportUnavailable, err)
	}
	defer func() { _ = c.Close() }()

	if m.auth != nil {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(m.auth); err != nil {
				log.Error().Err(err).Msg("smtp auth failed")
				return Delivery{}, fmt.Errorf("%w: %v", ErrTransportUnavailable, err)
			}
		}
	}
	if err := c.Mail(m.from); err != nil {
		log.Error().Err(err).Msg("smtp MAIL FROM failed")
		return Delivery{}, err
	}
	if err := c.Rcpt(msg.Recipient); err != nil {
		log.Warn().Err(err).Msg("smtp RCPT TO rejected")
		return Delivery{Delivered: false}, nil
	}
	w, err := c.Data()
	if err != nil {
		log.Error().Err(err).Msg("smtp DATA failed")
		return Delivery{}, err
	}
	if _, err = w.Write(m.compose(msg, rendered)); err != nil {
		log.Error().Err(err).Msg("smtp write failed")
		return Delivery{}, err
	}
	if err := w.Close(); err != nil {
		log.Error().Err(err).Msg("smtp close failed")
		return Delivery{}, err
	}
	_ = c.Quit()

	log.Info().Dur("elapsed", time.Since(start)).Msg("email sent")
	return Delivery{Delivered: true}, nil
}

func (m *SMTPTransport) dial(ctx context.Context) (*smtp.Client, error) {
	dialer := net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", m.addr)
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	if m.useTLS {
		conn = tls.Client(conn, &tls.Config{ServerName: host(m.addr), MinVersion: tls.VersionTLS12})
	}
	c, err := smtp.NewClient(conn, host(m.addr))
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return c, nil
}

func (m *SMTPTransport) compose(msg Message, r Rendered) []byte {
	return []byte(
		"From: " + headerValue(m.from) + "\r\n" +
			"To: " + headerValue(msg.Recipient) + "\r\n" +
			"Subject: " + headerValue(r.Subject) + "\r\n" +
			"Content-Language: " + headerValue(msg.Locale) + "\r\n" +
			"Content-Type: text/plain; charset=utf-8\r\n" +
			"\r\n" + strings.ReplaceAll(r.Body, "\n", "\r\n") + "\r\n")
}

var headerBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// headerValue keeps a value on one header line. Labels come from stored
// endpoints and must not be able to add headers.
func headerValue(v string) string {
	return headerBreaks.Replace(v)
}

func host(addr string) string {
	if h, _, err := net.SplitHostPort(addr); err == nil {
		return h
	}
	return addr
}
