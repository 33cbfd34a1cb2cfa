package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cgl/internal/domain"
)

type captureConn struct {
	subject string
	data    []byte
	err     error
}

func (c *captureConn) Publish(subject string, data []byte) error {
	c.subject = subject
	c.data = data
	return c.err
}

func TestPublisher_EncodesEvent(t *testing.T) {
	conn := &captureConn{}
	pub := NewPublisher(conn)

	ev := domain.ContentEvent{
		ID:            "0190a5f6-0000-7000-8000-000000000009",
		Kind:          "chapter",
		BookID:        "0190a5f6-0000-7000-8000-000000000001",
		VisibleNumber: "005.00",
		OccurredAt:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, pub.Publish(context.Background(), domain.SubjectChapterCreated, ev))

	assert.Equal(t, "cgl.chapter.created", conn.subject)
	assert.JSONEq(t, `{
		"id": "0190a5f6-0000-7000-8000-000000000009",
		"kind": "chapter",
		"bookId": "0190a5f6-0000-7000-8000-000000000001",
		"visibleNumber": "005.00",
		"occurredAt": "2024-03-01T12:00:00Z"
	}`, string(conn.data))
}

func TestPublisher_ConnectionError(t *testing.T) {
	pub := NewPublisher(&captureConn{err: errors.New("nats: connection closed")})

	err := pub.Publish(context.Background(), domain.SubjectBookCreated, domain.ContentEvent{ID: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cgl.book.created")
}

func TestPublisher_CancelledContext(t *testing.T) {
	conn := &captureConn{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewPublisher(conn).Publish(ctx, domain.SubjectBookCreated, domain.ContentEvent{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, conn.subject)
}
