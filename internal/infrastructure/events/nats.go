// Package events publishes content events to NATS.
package events

import (
	"context"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/nats-io/nats.go"

	"cgl/internal/domain"
	"cgl/pkg/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Conn is the subset of *nats.Conn used by the publisher.
type Conn interface {
	Publish(subject string, data []byte) error
}

// Config holds NATS connection settings.
type Config struct {
	URL           string
	Name          string
	MaxReconnects int
	ReconnectWait time.Duration
}

// Publisher implements domain.Publisher on a NATS connection.
type Publisher struct {
	conn Conn
}

// NewPublisher wraps an established connection.
func NewPublisher(conn Conn) *Publisher {
	return &Publisher{conn: conn}
}

// Connect dials NATS with reconnect handlers that log through the default logger.
func Connect(cfg Config) (*nats.Conn, error) {
	name := cfg.Name
	if name == "" {
		name = "cgl"
	}
	opts := []nats.Option{
		nats.Name(name),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn(context.Background(), "nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info(context.Background(), "nats reconnected", "url", nc.ConnectedUrl())
		}),
	}
	if cfg.ReconnectWait > 0 {
		opts = append(opts, nats.ReconnectWait(cfg.ReconnectWait))
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return conn, nil
}

// Publish implements domain.Publisher.
func (p *Publisher) Publish(ctx context.Context, subject string, event domain.ContentEvent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before publish: %w", err)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", subject, err)
	}
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}

	logger.Debug(ctx, "content event published", "subject", subject, "id", event.ID)
	return nil
}

var _ domain.Publisher = (*Publisher)(nil)
