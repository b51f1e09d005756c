package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"ECOFINDS_CONFIG", "PORT", "STORE_DRIVER", "MONGO_URI", "MONGO_DATABASE",
	"JWT_SECRET", "JWT_EXPIRES_IN", "REQUEST_TIMEOUT", "CORS_ALLOWED_ORIGINS",
	"EMAIL_PROVIDER", "POSTMARK_API_TOKEN", "SENDGRID_API_KEY", "EMAIL_SENDER",
	"CHECKOUT_HARDENED",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, ":5000", cfg.Addr())
	assert.Equal(t, StoreMongo, cfg.StoreDriver)
	assert.Equal(t, "ecofinds", cfg.Database)
	assert.Equal(t, 720*time.Hour, cfg.JWTExpiration)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowOrigins)
	assert.Equal(t, EmailLog, cfg.Email.Provider)
	assert.False(t, cfg.Checkout.Hardened)
}

func TestLoad_MissingSecret(t *testing.T) {
	clearEnv(t)

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_MemoryStoreGetsDevSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, devJWTSecret, cfg.JWTSecret)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "ecofinds.yaml")
	yml := `port: "8080"
database: market
jwt_secret: from-file
jwt_expires_in: 2h
request_timeout: 3s
cors_allowed_origins:
  - https://ecofinds.example
checkout:
  hardened: true
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))
	t.Setenv("PORT", "9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "market", cfg.Database)
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiration)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowOrigins)
	assert.True(t, cfg.Checkout.Hardened)
}

func TestLoad_ConfigFromEnvPath(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store: memory\n"), 0o600))
	t.Setenv("ECOFINDS_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
}

func TestLoad_BadValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"duration", "JWT_EXPIRES_IN", "thirty days"},
		{"timeout", "REQUEST_TIMEOUT", "soon"},
		{"bool", "CHECKOUT_HARDENED", "maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("JWT_SECRET", "x")
			t.Setenv(tt.key, tt.val)

			_, err := Load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		cfg := Default()
		cfg.JWTSecret = "x"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"ok", func(*Config) {}, ""},
		{"unknown store", func(c *Config) { c.StoreDriver = "postgres" }, "unknown store driver"},
		{"missing uri", func(c *Config) { c.MongoURI = "" }, "MONGO_URI"},
		{"memory ignores uri", func(c *Config) { c.StoreDriver = StoreMemory; c.MongoURI = "" }, ""},
		{"zero expiry", func(c *Config) { c.JWTExpiration = 0 }, "JWT_EXPIRES_IN"},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }, "REQUEST_TIMEOUT"},
		{"postmark without token", func(c *Config) { c.Email.Provider = EmailPostmark; c.Email.Sender = "a@b.c" }, "POSTMARK_API_TOKEN"},
		{"sendgrid ok", func(c *Config) {
			c.Email = EmailConfig{Provider: EmailSendgrid, SendgridKey: "k", Sender: "a@b.c"}
		}, ""},
		{"unknown provider", func(c *Config) { c.Email.Provider = "smtp" }, "unknown email provider"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_OptionsOverrideEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "mongo")
	t.Setenv("PORT", "7000")

	cfg, err := Load("", WithStoreDriver("memory"), WithPort("7100"), WithPort(""))
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, "7100", cfg.Port)
	assert.Equal(t, devJWTSecret, cfg.JWTSecret)
}
