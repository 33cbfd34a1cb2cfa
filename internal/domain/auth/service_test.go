package auth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"cgl/internal/core/apperror"
	"cgl/internal/core/id"
)

type memUserRepo struct {
	mu    sync.Mutex
	users map[id.ID]*User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[id.ID]*User)}
}

func (r *memUserRepo) Create(_ context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return apperror.NewDuplicate("user", "email", user.Email)
		}
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, userID id.ID) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, apperror.NewNotFound("user", userID.String())
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("user", email)
}

func (r *memUserRepo) Update(_ context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return apperror.NewNotFound("user", user.ID.String())
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, userID id.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, userID)
	return nil
}

func (r *memUserRepo) Exists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type captureMailer struct {
	sent []Message
	err  error
}

func (m *captureMailer) Send(_ context.Context, msg Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type fixture struct {
	svc    *Service
	repo   *memUserRepo
	mailer *captureMailer
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := DefaultServiceConfig()
	cfg.BcryptCost = bcrypt.MinCost

	f := &fixture{
		repo:   newMemUserRepo(),
		mailer: &captureMailer{},
		now:    time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(f.repo, passthroughTx{}, NewJWTService(DefaultJWTConfig("test-secret")), f.mailer, cfg)
	f.svc.now = func() time.Time { return f.now }
	f.svc.generateOTP = func() (string, error) { return "123456", nil }
	return f
}

func (f *fixture) register(t *testing.T, email string) *User {
	t.Helper()
	u, err := f.svc.Register(context.Background(), RegisterRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		Password:  "secret-pass",
		Country:   "UK",
		Phone:     "5551234",
	})
	require.NoError(t, err)
	return u
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "  Ada@Example.com ")

	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, UserTypeBookReader, u.UserType)
	assert.NotEqual(t, "secret-pass", u.PasswordHash)

	_, err := f.svc.Register(context.Background(), RegisterRequest{
		FirstName: "A", LastName: "B", Email: "ada@example.com", Password: "another-pass",
	})
	assert.True(t, apperror.IsCode(err, apperror.CodeDuplicate))
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"short password", RegisterRequest{FirstName: "A", LastName: "B", Email: "a@b.c", Password: "x"}},
		{"bad email", RegisterRequest{FirstName: "A", LastName: "B", Email: "nope", Password: "secret-pass"}},
		{"missing name", RegisterRequest{LastName: "B", Email: "a@b.c", Password: "secret-pass"}},
		{"unknown type", RegisterRequest{FirstName: "A", LastName: "B", Email: "a@b.c", Password: "secret-pass", UserType: "PLATINUM"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Register(context.Background(), tt.req)
			assert.True(t, apperror.IsCode(err, apperror.CodeValidation), "got %v", err)
		})
	}
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "ada@example.com")

	tok, got, err := f.svc.Login(context.Background(), Credentials{Email: "ADA@example.com", Password: "secret-pass"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "Bearer", tok.TokenType)

	uc, err := f.svc.JWT().ValidateToken(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID.String(), uc.UserID)
	assert.Equal(t, string(UserTypeBookReader), uc.UserType)
	assert.False(t, uc.IsAdmin)

	_, _, err = f.svc.Login(context.Background(), Credentials{Email: "ada@example.com", Password: "wrong"})
	assert.True(t, apperror.IsCode(err, apperror.CodeUnauthorized))

	_, _, err = f.svc.Login(context.Background(), Credentials{Email: "ghost@example.com", Password: "secret-pass"})
	assert.True(t, apperror.IsCode(err, apperror.CodeUnauthorized))
}

func TestLogin_LocksAfterRepeatedFailures(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ada@example.com")

	for _i := 0; _i < DefaultServiceConfig().MaxLoginAttempts; _i++ {
		_, _, err := f.svc.Login(context.Background(), Credentials{Email: "ada@example.com", Password: "wrong"})
		require.True(t, apperror.IsCode(err, apperror.CodeUnauthorized))
	}

	_, _, err := f.svc.Login(context.Background(), Credentials{Email: "ada@example.com", Password: "secret-pass"})
	assert.True(t, apperror.IsCode(err, apperror.CodeForbidden))
}

func TestUpdateProfile_KeepsEmptyFields(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "ada@example.com")

	got, err := f.svc.UpdateProfile(context.Background(), u.ID, ProfileUpdate{Country: "FR", FirstName: "  "})
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.FirstName)
	assert.Equal(t, "Lovelace", got.LastName)
	assert.Equal(t, "FR", got.Country)
	assert.Equal(t, "5551234", got.Phone)
}

func TestDeleteAccount(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "ada@example.com")

	require.NoError(t, f.svc.DeleteAccount(context.Background(), u.ID))
	_, err := f.svc.GetProfile(context.Background(), u.ID)
	assert.True(t, apperror.IsNotFound(err))
	assert.True(t, apperror.IsNotFound(f.svc.DeleteAccount(context.Background(), u.ID)))
}

func TestPasswordResetFlow(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ada@example.com")
	ctx := context.Background()

	// Reset without a confirmed OTP is refused.
	err := f.svc.ResetPassword(ctx, "ada@example.com", "brand-new-pass")
	assert.True(t, apperror.IsCode(err, apperror.CodeForbidden))

	require.NoError(t, f.svc.ForgotPassword(ctx, "ada@example.com"))
	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "Password Reset OTP", f.mailer.sent[0].Subject)
	assert.Contains(t, f.mailer.sent[0].HTML, "123456")
	assert.Contains(t, f.mailer.sent[0].Text, "10 minutes")

	stored, err := f.repo.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored.ResetOTPHash)
	assert.NotEqual(t, "123456", *stored.ResetOTPHash)

	assert.True(t, apperror.IsCode(f.svc.ConfirmOTP(ctx, "ada@example.com", "000000"), apperror.CodeInvalidOTP))
	require.NoError(t, f.svc.ConfirmOTP(ctx, "ada@example.com", "123456"))
	// The OTP is single use.
	assert.True(t, apperror.IsCode(f.svc.ConfirmOTP(ctx, "ada@example.com", "123456"), apperror.CodeInvalidOTP))

	require.NoError(t, f.svc.ResetPassword(ctx, "ada@example.com", "brand-new-pass"))
	require.Len(t, f.mailer.sent, 2)
	assert.Equal(t, "Password Reset Successful", f.mailer.sent[1].Subject)

	_, _, err = f.svc.Login(ctx, Credentials{Email: "ada@example.com", Password: "brand-new-pass"})
	assert.NoError(t, err)

	// The reset window closes after use.
	err = f.svc.ResetPassword(ctx, "ada@example.com", "third-pass")
	assert.True(t, apperror.IsCode(err, apperror.CodeForbidden))
}

func TestConfirmOTP_Expired(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ada@example.com")
	ctx := context.Background()

	require.NoError(t, f.svc.ForgotPassword(ctx, "ada@example.com"))
	f.now = f.now.Add(11 * time.Minute)
	assert.True(t, apperror.IsCode(f.svc.ConfirmOTP(ctx, "ada@example.com", "123456"), apperror.CodeInvalidOTP))
}

func TestResetWindowExpires(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ada@example.com")
	ctx := context.Background()

	require.NoError(t, f.svc.ForgotPassword(ctx, "ada@example.com"))
	require.NoError(t, f.svc.ConfirmOTP(ctx, "ada@example.com", "123456"))
	f.now = f.now.Add(11 * time.Minute)

	err := f.svc.ResetPassword(ctx, "ada@example.com", "brand-new-pass")
	assert.True(t, apperror.IsCode(err, apperror.CodeForbidden))
}

func TestForgotPassword_UnknownEmail(t *testing.T) {
	f := newFixture(t)
	err := f.svc.ForgotPassword(context.Background(), "ghost@example.com")
	assert.True(t, apperror.IsNotFound(err))
	assert.Empty(t, f.mailer.sent)
}

func TestSeedUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := RegisterRequest{
		FirstName: "Root", LastName: "Admin", Email: "root@example.com",
		Password: "first-pass", UserType: UserTypeAdmin,
	}

	u, created, err := f.svc.SeedUser(ctx, req, false)
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, u.IsAdmin())

	req.Password = "second-pass"
	_, created, err = f.svc.SeedUser(ctx, req, false)
	require.NoError(t, err)
	assert.False(t, created)
	_, _, err = f.svc.Login(ctx, Credentials{Email: req.Email, Password: "first-pass"})
	assert.NoError(t, err, "password is kept without reset flag")

	_, _, err = f.svc.SeedUser(ctx, req, true)
	require.NoError(t, err)
	_, _, err = f.svc.Login(ctx, Credentials{Email: req.Email, Password: "second-pass"})
	assert.NoError(t, err)
}

func TestRandomOTP(t *testing.T) {
	for _i := 0; _i < 50; _i++ {
		otp, err := randomOTP()
		require.NoError(t, err)
		assert.Len(t, otp, 6)
		assert.Empty(t, strings.Trim(otp, "0123456789"))
		assert.NotEqual(t, byte('0'), otp[0])
	}
}

func TestValidateToken_RejectsForeignSecret(t *testing.T) {
	u := NewUser("ada@example.com", "x")
	u.UserType = UserTypeAdmin

	tok, _, err := NewJWTService(DefaultJWTConfig("one")).GenerateAccessToken(u)
	require.NoError(t, err)

	_, err = NewJWTService(DefaultJWTConfig("two")).ValidateToken(tok)
	assert.Error(t, err)

	uc, err := NewJWTService(DefaultJWTConfig("one")).ValidateToken(tok)
	require.NoError(t, err)
	assert.True(t, uc.IsAdmin)
	assert.Equal(t, []string{"ADMIN"}, uc.Roles)
}
