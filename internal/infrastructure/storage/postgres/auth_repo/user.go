// Package auth_repo provides the PostgreSQL implementation of the user repository.
package auth_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	"cgl/internal/core/apperror"
	"cgl/internal/core/id"
	"cgl/internal/domain/auth"
	"cgl/internal/infrastructure/storage/postgres"
)

const userColumns = `id, first_name, last_name, email, password_hash, country, phone, user_type,
	reset_otp_hash, otp_expires_at, reset_allowed_until, last_login_at,
	failed_login_attempts, locked_until, created_at, updated_at, version`

// UserRepo implements auth.UserRepository.
type UserRepo struct {
	txm *postgres.TxManager
}

var _ auth.UserRepository = (*UserRepo)(nil)

// NewUserRepo creates a new user repository.
func NewUserRepo(txm *postgres.TxManager) *UserRepo {
	return &UserRepo{txm: txm}
}

// Create creates a new user.
func (r *UserRepo) Create(ctx context.Context, user *auth.User) error {
	query := `
		INSERT INTO users (
			id, first_name, last_name, email, password_hash, country, phone,
			user_type, created_at, updated_at, version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.txm.GetQuerier(ctx).Exec(ctx, query,
		user.ID, user.FirstName, user.LastName, user.Email, user.PasswordHash,
		user.Country, user.Phone, user.UserType, user.CreatedAt, user.UpdatedAt, user.Version,
	)
	if err != nil {
		return postgres.MapError(fmt.Errorf("insert user: %w", err))
	}
	return nil
}

// GetByID retrieves user by ID.
func (r *UserRepo) GetByID(ctx context.Context, userID id.ID) (*auth.User, error) {
	return r.getOne(ctx, "id = $1", userID, userID.String())
}

// GetByEmail retrieves user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.getOne(ctx, "email = $1", email, email)
}

func (r *UserRepo) getOne(ctx context.Context, where string, arg any, key string) (*auth.User, error) {
	var user auth.User
	query := "SELECT " + userColumns + " FROM users WHERE " + where
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &user, query, arg); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("user", key)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &user, nil
}

// Update updates user data with optimistic locking.
func (r *UserRepo) Update(ctx context.Context, user *auth.User) error {
	query := `
		UPDATE users SET
			first_name = $3, last_name = $4, email = $5, password_hash = $6,
			country = $7, phone = $8, user_type = $9,
			reset_otp_hash = $10, otp_expires_at = $11, reset_allowed_until = $12,
			last_login_at = $13, failed_login_attempts = $14, locked_until = $15,
			updated_at = $16, version = version + 1
		WHERE id = $1 AND version = $2
	`
	now := time.Now().UTC()
	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, query,
		user.ID, user.Version,
		user.FirstName, user.LastName, user.Email, user.PasswordHash,
		user.Country, user.Phone, user.UserType,
		user.ResetOTPHash, user.OTPExpiresAt, user.ResetAllowedUntil,
		user.LastLoginAt, user.FailedLoginAttempts, user.LockedUntil,
		now,
	)
	if err != nil {
		return postgres.MapError(fmt.Errorf("update user: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("user", user.ID.String())
	}

	user.Version++
	user.UpdatedAt = now
	return nil
}

// Delete removes a user.
func (r *UserRepo) Delete(ctx context.Context, userID id.ID) error {
	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, "DELETE FROM users WHERE id = $1", userID)
	if err != nil {
		return postgres.MapError(fmt.Errorf("delete user: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("user", userID.String())
	}
	return nil
}

// Exists checks if email is registered.
func (r *UserRepo) Exists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.txm.GetQuerier(ctx).QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return exists, nil
}
