package dto

import (
	"strings"
	"time"

	"cgl/internal/domain/auth"
)

// --- Request DTOs ---

// RegisterRequest for user registration.
type RegisterRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
	UserType  string `json:"userType"`
}

// ToAuthRequest converts to domain request.
func (r *RegisterRequest) ToAuthRequest() auth.RegisterRequest {
	return auth.RegisterRequest{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Password:  r.Password,
		Country:   r.Country,
		Phone:     r.Phone,
		UserType:  auth.UserType(strings.ToUpper(strings.TrimSpace(r.UserType))),
	}
}

// LoginRequest for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ToCredentials converts to domain credentials.
func (r *LoginRequest) ToCredentials() auth.Credentials {
	return auth.Credentials{
		Email:    r.Email,
		Password: r.Password,
	}
}

// UpdateProfileRequest carries profile fields; empty fields keep their value.
type UpdateProfileRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
}

// ToProfileUpdate converts to domain update.
func (r *UpdateProfileRequest) ToProfileUpdate() auth.ProfileUpdate {
	return auth.ProfileUpdate{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Country:   r.Country,
		Phone:     r.Phone,
	}
}

// ForgotPasswordRequest starts a password reset.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ConfirmOTPRequest verifies a reset code.
type ConfirmOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=6,numeric"`
}

// ResetPasswordRequest sets a new password after a confirmed code.
type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// --- Response DTOs ---

// UserResponse represents user in API response.
type UserResponse struct {
	ID          string     `json:"id"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Email       string     `json:"email"`
	Country     string     `json:"country,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	UserType    string     `json:"userType"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// FromUser creates response from domain user.
func FromUser(u *auth.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:          u.ID.String(),
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		Country:     u.Country,
		Phone:       u.Phone,
		UserType:    string(u.UserType),
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// UserMessageResponse pairs a message with a user.
type UserMessageResponse struct {
	Message string        `json:"message"`
	User    *UserResponse `json:"user"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Message   string        `json:"message"`
	Token     string        `json:"token"`
	TokenType string        `json:"tokenType"`
	ExpiresAt time.Time     `json:"expiresAt"`
	User      *UserResponse `json:"user"`
}

// NewLoginResponse creates a login response.
func NewLoginResponse(t *auth.TokenResponse, u *auth.User) LoginResponse {
	return LoginResponse{
		Message:   "Login successful",
		Token:     t.AccessToken,
		TokenType: t.TokenType,
		ExpiresAt: t.ExpiresAt,
		User:      FromUser(u),
	}
}
