package domain

import (
	"context"
	"time"

	appctx "cgl/internal/core/context"
	"cgl/internal/core/id"
)

// Subjects of published content events.
const (
	SubjectBookCreated    = "cgl.book.created"
	SubjectChapterCreated = "cgl.chapter.created"
	SubjectRecordCreated  = "cgl.record.created"
)

// ContentEvent is the payload published after content is created.
type ContentEvent struct {
	ID            string    `json:"id"`
	Kind          string    `json:"kind"`
	BookID        string    `json:"bookId,omitempty"`
	VisibleNumber string    `json:"visibleNumber"`
	CreatedBy     string    `json:"createdBy,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// Publisher delivers content events to subscribers.
type Publisher interface {
	Publish(ctx context.Context, subject string, event ContentEvent) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, string, ContentEvent) error { return nil }

// PublishCreated returns an after-create hook announcing new content on
// subject. Errors are reported to the service, which logs them.
func PublishCreated[T Numbered](pub Publisher, subject string) Hook[T] {
	return func(ctx context.Context, e T) error {
		if pub == nil {
			return nil
		}
		scope := e.NumberingScope()
		ev := ContentEvent{
			ID:            e.GetID().String(),
			Kind:          string(scope.Kind),
			VisibleNumber: e.GetVisibleNumber().String(),
			CreatedBy:     appctx.GetUserID(ctx),
			OccurredAt:    time.Now().UTC(),
		}
		if !id.IsNil(scope.BookID) {
			ev.BookID = scope.BookID.String()
		}
		return pub.Publish(ctx, subject, ev)
	}
}
