package auth

import (
	"context"

	"cgl/internal/core/id"
)

// UserRepository defines user storage operations.
type UserRepository interface {
	// Create creates a new user. A taken email is reported as a duplicate.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves user by ID.
	GetByID(ctx context.Context, userID id.ID) (*User, error)

	// GetByEmail retrieves user by normalized email.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Update updates user data (optimistic locking on version).
	Update(ctx context.Context, user *User) error

	// Delete removes a user.
	Delete(ctx context.Context, userID id.ID) error

	// Exists checks if email is registered.
	Exists(ctx context.Context, email string) (bool, error)
}

// Mailer delivers account notifications.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Message is a single outgoing email.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}
