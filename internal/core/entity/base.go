// Package entity provides the base types embedded by books, chapters and records.
package entity

import (
	"context"
	"time"

	"cgl/internal/core/id"
	"cgl/internal/core/numbering"
)

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants (without database access).
type Validatable interface {
	// Validate returns nil if valid, AppError with details otherwise.
	Validate(ctx context.Context) error
}

// BaseEntity contains the fields shared by all stored content.
type BaseEntity struct {
	// ID is the primary key (UUIDv7), never shown as a reader-facing number.
	ID id.ID `db:"id" json:"id"`

	// DeletionMark indicates soft-deleted entity
	DeletionMark bool `db:"deletion_mark" json:"deletionMark"`

	// Version for optimistic locking (incremented on each update)
	Version int `db:"version" json:"version"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
	CreatedBy string    `db:"created_by" json:"createdBy,omitempty"`
	UpdatedBy string    `db:"updated_by" json:"updatedBy,omitempty"`
}

// NewBaseEntity creates a BaseEntity with a generated ID and fresh timestamps.
func NewBaseEntity() BaseEntity {
	now := time.Now().UTC()
	return BaseEntity{
		ID:        id.New(),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// GetID returns the entity ID.
func (b *BaseEntity) GetID() id.ID {
	return b.ID
}

// GetVersion returns the optimistic-lock version.
func (b *BaseEntity) GetVersion() int {
	return b.Version
}

// Touch bumps UpdatedAt and the version.
func (b *BaseEntity) Touch() {
	b.UpdatedAt = time.Now().UTC()
	b.Version++
}

// MarkDeleted sets the deletion mark.
func (b *BaseEntity) MarkDeleted() {
	b.DeletionMark = true
}

// SetCreatedBy records the author of the entity.
func (b *BaseEntity) SetCreatedBy(userID string) {
	b.CreatedBy = userID
}

// SetUpdatedBy records the last editor of the entity.
func (b *BaseEntity) SetUpdatedBy(userID string) {
	b.UpdatedBy = userID
}

// NumberedEntity is a BaseEntity carrying a visible number, stored as two
// integer columns so that ordering and range queries stay exact.
type NumberedEntity struct {
	BaseEntity

	NumMajor int `db:"num_major" json:"-"`
	NumMinor int `db:"num_minor" json:"-"`
}

// NewNumberedEntity creates a NumberedEntity with a generated ID.
func NewNumberedEntity() NumberedEntity {
	return NumberedEntity{BaseEntity: NewBaseEntity()}
}

// GetVisibleNumber returns the entity's visible number.
func (n *NumberedEntity) GetVisibleNumber() numbering.VisibleNumber {
	return numbering.VisibleNumber{Major: n.NumMajor, Minor: n.NumMinor}
}

// SetVisibleNumber assigns the entity's visible number.
func (n *NumberedEntity) SetVisibleNumber(v numbering.VisibleNumber) {
	n.NumMajor = v.Major
	n.NumMinor = v.Minor
}

// IsDeleted reports the deletion mark.
func (b *BaseEntity) IsDeleted() bool {
	return b.DeletionMark
}

// SetDeleted sets or clears the deletion mark.
func (b *BaseEntity) SetDeleted(marked bool) {
	b.DeletionMark = marked
}
