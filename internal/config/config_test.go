package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("ACCESS_TOKEN_TTL", "")
	t.Setenv("GIN_MODE", "")

	cfg := Load()

	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, "/api/", cfg.RefreshCookiePath)
	assert.True(t, cfg.RotateRefreshTokens)
	require.NoError(t, cfg.Validate())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("ACCESS_TOKEN_TTL", "5m")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example ,")

	cfg := Load()

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoad_ReleaseRequiresSecrets(t *testing.T) {
	t.Setenv("GIN_MODE", "release")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SESSION_SECRET", "")

	assert.Error(t, Load().Validate())

	t.Setenv("JWT_SECRET", "a-real-jwt-secret-from-the-vault")
	t.Setenv("SESSION_SECRET", "a-real-cookie-signing-secret")
	assert.NoError(t, Load().Validate())
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			DBDriver:              "postgres",
			JWTSecret:             "0123456789abcdef",
			SessionSecret:         "fedcba9876543210",
			AccessTokenTTL:        time.Minute,
			RefreshTokenTTL:       time.Hour,
			IdentityVerifyTimeout: time.Second,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.DBDriver = "oracle" }, wantErr: true},
		{name: "short secret", mutate: func(c *Config) { c.JWTSecret = "short" }, wantErr: true},
		{name: "access not shorter than refresh", mutate: func(c *Config) { c.AccessTokenTTL = time.Hour }, wantErr: true},
		{name: "zero verify timeout", mutate: func(c *Config) { c.IdentityVerifyTimeout = 0 }, wantErr: true},
		{name: "release with own secrets", mutate: func(c *Config) { c.GinMode = "release" }},
		{name: "release with default jwt secret", mutate: func(c *Config) {
			c.GinMode = "release"
			c.JWTSecret = defaultJWTSecret
		}, wantErr: true},
		{name: "release with default session secret", mutate: func(c *Config) {
			c.GinMode = "release"
			c.SessionSecret = defaultSessionSecret
		}, wantErr: true},
		{name: "release with short session secret", mutate: func(c *Config) {
			c.GinMode = "release"
			c.SessionSecret = "short"
		}, wantErr: true},
		{name: "debug keeps default secrets", mutate: func(c *Config) {
			c.JWTSecret = defaultJWTSecret
			c.SessionSecret = defaultSessionSecret
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
