package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"cgl/internal/core/apperror"
	"cgl/internal/core/id"
	"cgl/internal/core/tx"
	"cgl/pkg/logger"
)

// ServiceConfig holds auth service configuration.
type ServiceConfig struct {
	MaxLoginAttempts  int
	LockDuration      time.Duration
	PasswordMinLength int
	OTPTTL            time.Duration
	ResetWindow       time.Duration
	BcryptCost        int
}

// DefaultServiceConfig returns default configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxLoginAttempts:  5,
		LockDuration:      15 * time.Minute,
		PasswordMinLength: 6,
		OTPTTL:            10 * time.Minute,
		ResetWindow:       10 * time.Minute,
		BcryptCost:        bcrypt.DefaultCost,
	}
}

// Service provides account management and authentication.
type Service struct {
	userRepo   UserRepository
	txManager  tx.Manager
	jwtService *JWTService
	mailer     Mailer
	config     ServiceConfig

	now         func() time.Time
	generateOTP func() (string, error)
}

// NewService creates a new auth service.
func NewService(
	userRepo UserRepository,
	txManager tx.Manager,
	jwtService *JWTService,
	mailer Mailer,
	config ServiceConfig,
) *Service {
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		userRepo:    userRepo,
		txManager:   txManager,
		jwtService:  jwtService,
		mailer:      mailer,
		config:      config,
		now:         func() time.Time { return time.Now().UTC() },
		generateOTP: randomOTP,
	}
}

// JWT returns the token service used by the auth middleware.
func (s *Service) JWT() *JWTService {
	return s.jwtService
}

// Register registers a new user.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if err := s.validatePassword(req.Password); err != nil {
		return nil, err
	}

	email := NormalizeEmail(req.Email)
	exists, err := s.userRepo.Exists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email exists: %w", err)
	}
	if exists {
		return nil, apperror.NewDuplicate("user", "email", email)
	}

	passwordHash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := NewUser(email, passwordHash)
	user.FirstName = strings.TrimSpace(req.FirstName)
	user.LastName = strings.TrimSpace(req.LastName)
	user.Country = strings.TrimSpace(req.Country)
	user.Phone = strings.TrimSpace(req.Phone)
	if req.UserType != "" {
		user.UserType = req.UserType
	}
	if err := user.Validate(ctx); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.userRepo.Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "user registered",
		"user_id", user.ID,
		"email", user.Email,
		"user_type", user.UserType)

	return user, nil
}

// Login authenticates user and returns an access token.
func (s *Service) Login(ctx context.Context, creds Credentials) (*TokenResponse, *User, error) {
	user, err := s.userRepo.GetByEmail(ctx, NormalizeEmail(creds.Email))
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil, apperror.NewUnauthorized("invalid credentials")
		}
		return nil, nil, err
	}
	if err := user.CanLogin(); err != nil {
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		user.RecordFailedLogin(s.config.MaxLoginAttempts, s.config.LockDuration)
		if uerr := s.userRepo.Update(ctx, user); uerr != nil {
			logger.Warn(ctx, "failed to record failed login", "user_id", user.ID, "error", uerr)
		}
		return nil, nil, apperror.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return nil, nil, apperror.NewInternal(err)
	}

	user.RecordSuccessfulLogin()
	if err := s.userRepo.Update(ctx, user); err != nil {
		logger.Warn(ctx, "failed to record login", "user_id", user.ID, "error", err)
	}

	logger.Info(ctx, "user logged in",
		"user_id", user.ID,
		"email", user.Email)

	return &TokenResponse{AccessToken: token, ExpiresAt: expiresAt, TokenType: "Bearer"}, user, nil
}

// GetProfile returns the user's account.
func (s *Service) GetProfile(ctx context.Context, userID id.ID) (*User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("user", userID.String())
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile overwrites the non-empty fields of upd.
func (s *Service) UpdateProfile(ctx context.Context, userID id.ID, upd ProfileUpdate) (*User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.FirstName = coalesce(upd.FirstName, user.FirstName)
	user.LastName = coalesce(upd.LastName, user.LastName)
	user.Country = coalesce(upd.Country, user.Country)
	user.Phone = coalesce(upd.Phone, user.Phone)
	if err := user.Validate(ctx); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.userRepo.Update(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteAccount removes the user's account.
func (s *Service) DeleteAccount(ctx context.Context, userID id.ID) error {
	if _, err := s.GetProfile(ctx, userID); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}
	logger.Info(ctx, "user deleted", "user_id", userID)
	return nil
}

// ForgotPassword issues a one-time password and mails it to the user.
// Only the OTP hash is stored.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewNotFound("user", NormalizeEmail(email))
		}
		return err
	}

	otp, err := s.generateOTP()
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("generate otp: %w", err))
	}
	user.SetResetOTP(hashOTP(otp), s.now().Add(s.config.OTPTTL))
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	msg, err := otpMessage(user, otp, s.config.OTPTTL)
	if err != nil {
		return apperror.NewInternal(err)
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return apperror.NewInternal(fmt.Errorf("send otp email: %w", err))
	}

	logger.Info(ctx, "password reset requested", "user_id", user.ID)
	return nil
}

// ConfirmOTP verifies the OTP and opens the password reset window.
func (s *Service) ConfirmOTP(ctx context.Context, email, otp string) error {
	user, err := s.userRepo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewInvalidOTP()
		}
		return err
	}

	now := s.now()
	if user.ResetOTPHash == nil || user.OTPExpiresAt == nil || now.After(*user.OTPExpiresAt) {
		return apperror.NewInvalidOTP()
	}
	if subtle.ConstantTimeCompare([]byte(*user.ResetOTPHash), []byte(hashOTP(strings.TrimSpace(otp)))) != 1 {
		return apperror.NewInvalidOTP()
	}

	until := now.Add(s.config.ResetWindow)
	user.ResetOTPHash = nil
	user.OTPExpiresAt = nil
	user.ResetAllowedUntil = &until
	return s.userRepo.Update(ctx, user)
}

// ResetPassword sets a new password after a confirmed OTP and sends a
// confirmation email.
func (s *Service) ResetPassword(ctx context.Context, email, newPassword string) error {
	user, err := s.userRepo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewNotFound("user", NormalizeEmail(email))
		}
		return err
	}
	if !user.CanResetPassword(s.now()) {
		return apperror.NewForbidden("password reset requires a confirmed OTP")
	}
	if err := s.validatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = passwordHash
	user.ClearResetState()
	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	msg, err := resetConfirmationMessage(user)
	if err != nil {
		return apperror.NewInternal(err)
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		// The password is already changed; a lost confirmation is not fatal.
		logger.Warn(ctx, "failed to send reset confirmation", "user_id", user.ID, "error", err)
	}

	logger.Info(ctx, "password reset", "user_id", user.ID)
	return nil
}

// SeedUser creates the user or, when it exists, updates its profile and
// optionally its password. Used by the admin CLI.
func (s *Service) SeedUser(ctx context.Context, req RegisterRequest, resetPassword bool) (*User, bool, error) {
	user, err := s.userRepo.GetByEmail(ctx, NormalizeEmail(req.Email))
	if err != nil {
		if !apperror.IsNotFound(err) {
			return nil, false, err
		}
		created, err := s.Register(ctx, req)
		return created, true, err
	}

	user.FirstName = coalesce(req.FirstName, user.FirstName)
	user.LastName = coalesce(req.LastName, user.LastName)
	user.Country = coalesce(req.Country, user.Country)
	user.Phone = coalesce(req.Phone, user.Phone)
	if req.UserType != "" {
		user.UserType = req.UserType
	}
	if resetPassword {
		if err := s.validatePassword(req.Password); err != nil {
			return nil, false, err
		}
		if user.PasswordHash, err = s.hashPassword(req.Password); err != nil {
			return nil, false, err
		}
	}
	if err := user.Validate(ctx); err != nil {
		return nil, false, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, false, err
	}
	return user, false, nil
}

func (s *Service) validatePassword(password string) error {
	if len(password) < s.config.PasswordMinLength {
		return apperror.NewValidation(
			fmt.Sprintf("password must be at least %d characters", s.config.PasswordMinLength),
		).WithDetail("field", "password")
	}
	return nil
}

func (s *Service) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.BcryptCost)
	if err != nil {
		return "", apperror.NewInternal(fmt.Errorf("hash password: %w", err))
	}
	return string(hash), nil
}

func coalesce(v, fallback string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return fallback
}

// hashOTP creates SHA256 hash of an OTP.
func hashOTP(otp string) string {
	hash := sha256.Sum256([]byte(otp))
	return hex.EncodeToString(hash[:])
}

// randomOTP returns a uniformly random six-digit code.
func randomOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
