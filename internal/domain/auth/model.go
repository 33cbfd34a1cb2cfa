// Package auth provides user accounts, authentication and password recovery.
package auth

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"cgl/internal/core/apperror"
	"cgl/internal/core/id"
)

// UserType is the account tier. ADMIN doubles as the only privileged role.
type UserType string

const (
	UserTypeBookReader UserType = "BOOK_READER"
	UserTypeAdmin      UserType = "ADMIN"
	UserTypeSilver     UserType = "SILVER"
	UserTypeGold       UserType = "GOLD"
	UserTypeBasic      UserType = "BASIC"
)

// Valid reports whether t is a known user type.
func (t UserType) Valid() bool {
	switch t {
	case UserTypeBookReader, UserTypeAdmin, UserTypeSilver, UserTypeGold, UserTypeBasic:
		return true
	}
	return false
}

// User represents a registered account.
type User struct {
	ID                  id.ID      `db:"id" json:"id"`
	FirstName           string     `db:"first_name" json:"firstName"`
	LastName            string     `db:"last_name" json:"lastName"`
	Email               string     `db:"email" json:"email"`
	PasswordHash        string     `db:"password_hash" json:"-"`
	Country             string     `db:"country" json:"country"`
	Phone               string     `db:"phone" json:"phone"`
	UserType            UserType   `db:"user_type" json:"userType"`
	ResetOTPHash        *string    `db:"reset_otp_hash" json:"-"`
	OTPExpiresAt        *time.Time `db:"otp_expires_at" json:"-"`
	ResetAllowedUntil   *time.Time `db:"reset_allowed_until" json:"-"`
	LastLoginAt         *time.Time `db:"last_login_at" json:"lastLoginAt,omitempty"`
	FailedLoginAttempts int        `db:"failed_login_attempts" json:"-"`
	LockedUntil         *time.Time `db:"locked_until" json:"-"`
	CreatedAt           time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updatedAt"`
	Version             int        `db:"version" json:"version"`
}

// NewUser creates a new user of the default type.
func NewUser(email, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		ID:           id.New(),
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		UserType:     UserTypeBookReader,
		CreatedAt:    now,
		UpdatedAt:    now,
		Version:      1,
	}
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate validates user data.
func (u *User) Validate(ctx context.Context) error {
	if u.Email == "" {
		return apperror.NewValidation("email is required").WithDetail("field", "email")
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return apperror.NewValidation("email is invalid").WithDetail("field", "email")
	}
	if strings.TrimSpace(u.FirstName) == "" {
		return apperror.NewValidation("firstName is required").WithDetail("field", "firstName")
	}
	if strings.TrimSpace(u.LastName) == "" {
		return apperror.NewValidation("lastName is required").WithDetail("field", "lastName")
	}
	if !u.UserType.Valid() {
		return apperror.NewValidation("invalid userType").WithDetail("field", "userType")
	}
	return nil
}

// IsAdmin reports whether the user has the ADMIN type.
func (u *User) IsAdmin() bool {
	return u.UserType == UserTypeAdmin
}

// IsLocked returns true if account is locked.
func (u *User) IsLocked() bool {
	if u.LockedUntil == nil {
		return false
	}
	return time.Now().Before(*u.LockedUntil)
}

// CanLogin checks if user can login.
func (u *User) CanLogin() error {
	if u.IsLocked() {
		return apperror.NewForbidden("account is temporarily locked")
	}
	return nil
}

// RecordFailedLogin increments failed login counter.
func (u *User) RecordFailedLogin(maxAttempts int, lockDuration time.Duration) {
	u.FailedLoginAttempts++
	if maxAttempts > 0 && u.FailedLoginAttempts >= maxAttempts {
		lockUntil := time.Now().Add(lockDuration)
		u.LockedUntil = &lockUntil
	}
}

// RecordSuccessfulLogin resets failed login counter.
func (u *User) RecordSuccessfulLogin() {
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	now := time.Now().UTC()
	u.LastLoginAt = &now
}

// SetResetOTP stores a hashed one-time password valid until expiresAt.
func (u *User) SetResetOTP(otpHash string, expiresAt time.Time) {
	u.ResetOTPHash = &otpHash
	u.OTPExpiresAt = &expiresAt
	u.ResetAllowedUntil = nil
}

// ClearResetState forgets any pending OTP and reset window.
func (u *User) ClearResetState() {
	u.ResetOTPHash = nil
	u.OTPExpiresAt = nil
	u.ResetAllowedUntil = nil
}

// CanResetPassword reports whether a confirmed OTP window is open at now.
func (u *User) CanResetPassword(now time.Time) bool {
	return u.ResetAllowedUntil != nil && now.Before(*u.ResetAllowedUntil)
}

// FullName returns user's full name.
func (u *User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Email
	}
	if u.LastName == "" {
		return u.FirstName
	}
	if u.FirstName == "" {
		return u.LastName
	}
	return u.FirstName + " " + u.LastName
}

// TokenResponse is returned on successful login.
type TokenResponse struct {
	AccessToken string    `json:"token"`
	ExpiresAt   time.Time `json:"expiresAt"`
	TokenType   string    `json:"tokenType"`
}

// Credentials for login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest for user registration.
type RegisterRequest struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Country   string
	Phone     string
	UserType  UserType
}

// ProfileUpdate carries profile fields; empty values keep the stored ones.
type ProfileUpdate struct {
	FirstName string
	LastName  string
	Country   string
	Phone     string
}
