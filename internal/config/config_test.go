package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "counter", cfg.Numbering.Strategy)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.AccessTokenTTL)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cgl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
env: production
server:
  port: "9000"
  shutdown_timeout: 10s
database:
  url: postgres://file/cgl
auth:
  jwt_secret: from-file
numbering:
  strategy: scan
cors:
  origins: [https://cgl.example]
`), 0o600))

	t.Setenv("PORT", "9100")
	t.Setenv("NUMBERING_STRATEGY", "")
	t.Setenv(EnvConfigFile, "")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "postgres://file/cgl", cfg.Database.URL)
	assert.Equal(t, "scan", cfg.Numbering.Strategy)
	assert.Equal(t, []string{"https://cgl.example"}, cfg.CORS.Origins)
	assert.False(t, cfg.IsDevelopment())
	// Untouched sections keep their defaults.
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(envMap(map[string]string{
		"DATABASE_URL": "postgres://env/cgl",
		"JWT_SECRET":   "s3cret",
		"SMTP_HOST":    "smtp.example.com",
		"SMTP_PORT":    "465",
		"EMAIL_USER":   "mailer@example.com",
		"EMAIL_PASS":   "pw",
		"NATS_URL":     "nats://localhost:4222",
		"CORS_ORIGINS": "https://a.example, ,https://b.example",
		"LOG_LEVEL":    "debug",
	}))
	require.NoError(t, err)

	assert.Equal(t, "postgres://env/cgl", cfg.Database.URL)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, "smtp.example.com", cfg.Mail.Host)
	assert.Equal(t, 465, cfg.Mail.Port)
	assert.Equal(t, "mailer@example.com", cfg.Mail.From)
	assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.Origins)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestApplyEnv_BadPort(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(envMap(map[string]string{"SMTP_PORT": "smtp"}))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "NoPort", mutate: func(c *Config) { c.Server.Port = "" }},
		{name: "NoDatabase", mutate: func(c *Config) { c.Database.URL = "" }},
		{name: "NoSecret", mutate: func(c *Config) { c.Auth.JWTSecret = "" }},
		{name: "DevSecretInProduction", mutate: func(c *Config) { c.Env = "production" }},
		{name: "UnknownStrategy", mutate: func(c *Config) { c.Numbering.Strategy = "lock" }},
		{name: "NoAttempts", mutate: func(c *Config) { c.Numbering.MaxAttempts = 0 }},
		{name: "MailWithoutSender", mutate: func(c *Config) {
			c.Mail.Host = "smtp.example.com"
			c.Mail.From = ""
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
