// Package mail delivers account notifications over SMTP.
package mail

import (
	"context"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"

	"cgl/internal/domain/auth"
	"cgl/pkg/logger"
)

// Config holds SMTP settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// TLS requires STARTTLS when true; otherwise it is opportunistic.
	TLS     bool
	Timeout time.Duration
}

// SMTPMailer implements auth.Mailer.
type SMTPMailer struct {
	cfg    Config
	client *gomail.Client
}

// NewSMTPMailer creates a mailer. No connection is made until Send.
func NewSMTPMailer(cfg Config) (*SMTPMailer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("smtp sender address is required")
	}

	opts := []gomail.Option{gomail.WithPort(cfg.Port)}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}
	if cfg.TLS {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, gomail.WithTimeout(cfg.Timeout))
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	return &SMTPMailer{cfg: cfg, client: client}, nil
}

// Send implements auth.Mailer.
func (m *SMTPMailer) Send(ctx context.Context, msg auth.Message) error {
	gm, err := buildMessage(m.cfg.From, msg)
	if err != nil {
		return err
	}
	if err := m.client.DialAndSendWithContext(ctx, gm); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	logger.Info(ctx, "mail sent", "to", msg.To, "subject", msg.Subject)
	return nil
}

// buildMessage assembles a text message with an optional HTML alternative.
func buildMessage(from string, msg auth.Message) (*gomail.Msg, error) {
	gm := gomail.NewMsg()
	if err := gm.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", from, err)
	}
	if err := gm.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}
	gm.Subject(msg.Subject)
	gm.SetBodyString(gomail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		gm.AddAlternativeString(gomail.TypeTextHTML, msg.HTML)
	}
	return gm, nil
}

// LogMailer writes messages to the log instead of sending them. Used when no
// SMTP host is configured.
type LogMailer struct{}

// Send implements auth.Mailer.
func (LogMailer) Send(ctx context.Context, msg auth.Message) error {
	logger.Info(ctx, "mail not sent, smtp disabled", "to", msg.To, "subject", msg.Subject, "body", msg.Text)
	return nil
}

var (
	_ auth.Mailer = (*SMTPMailer)(nil)
	_ auth.Mailer = LogMailer{}
)
