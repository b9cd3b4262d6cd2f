package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Built-in secrets only good for local development. Release mode refuses them.
const (
	defaultJWTSecret     = "default-jwt-secret-change-me"
	defaultSessionSecret = "default-secret-key-change-me"
)

const minSecretLength = 16

type Config struct {
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	GinMode     string
	Port        string
	CORSOrigins []string

	JWTSecret           string
	JWTIssuer           string
	AccessTokenTTL      time.Duration
	RefreshTokenTTL     time.Duration
	RotateRefreshTokens bool

	SessionSecret     string
	CookieSecure      bool
	RefreshCookiePath string

	FirebaseProjectID       string
	FirebaseCredentialsFile string
	IdentityVerifyTimeout   time.Duration

	InvitationTTL time.Duration
}

// Load reads configuration from an optional .env file and the environment.
func Load() *Config {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return &Config{
		DBDriver:   strings.ToLower(v.GetString("DB_DRIVER")),
		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetString("DB_PORT"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBName:     v.GetString("DB_NAME"),
		DBSSLMode:  v.GetString("DB_SSLMODE"),
		SQLitePath: v.GetString("SQLITE_PATH"),

		GinMode:     v.GetString("GIN_MODE"),
		Port:        v.GetString("PORT"),
		CORSOrigins: splitList(v.GetString("CORS_ORIGINS")),

		JWTSecret:           v.GetString("JWT_SECRET"),
		JWTIssuer:           v.GetString("JWT_ISSUER"),
		AccessTokenTTL:      v.GetDuration("ACCESS_TOKEN_TTL"),
		RefreshTokenTTL:     v.GetDuration("REFRESH_TOKEN_TTL"),
		RotateRefreshTokens: v.GetBool("ROTATE_REFRESH_TOKENS"),

		SessionSecret:     v.GetString("SESSION_SECRET"),
		CookieSecure:      v.GetBool("COOKIE_SECURE"),
		RefreshCookiePath: v.GetString("REFRESH_COOKIE_PATH"),

		FirebaseProjectID:       v.GetString("FIREBASE_PROJECT_ID"),
		FirebaseCredentialsFile: v.GetString("FIREBASE_CREDENTIALS_FILE"),
		IdentityVerifyTimeout:   v.GetDuration("IDENTITY_VERIFY_TIMEOUT"),

		InvitationTTL: v.GetDuration("INVITATION_TTL"),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("DB_USER", "studyuser")
	v.SetDefault("DB_PASSWORD", "studypassword")
	v.SetDefault("DB_NAME", "group_study")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("SQLITE_PATH", "group_study.db")

	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("PORT", "8080")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")

	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_ISSUER", "group-study-api")
	v.SetDefault("ACCESS_TOKEN_TTL", 15*time.Minute)
	v.SetDefault("REFRESH_TOKEN_TTL", 7*24*time.Hour)
	v.SetDefault("ROTATE_REFRESH_TOKENS", true)

	v.SetDefault("SESSION_SECRET", defaultSessionSecret)
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("REFRESH_COOKIE_PATH", "/api/")

	v.SetDefault("FIREBASE_PROJECT_ID", "")
	v.SetDefault("FIREBASE_CREDENTIALS_FILE", "")
	v.SetDefault("IDENTITY_VERIFY_TIMEOUT", 5*time.Second)

	v.SetDefault("INVITATION_TTL", 7*24*time.Hour)
}

// Validate reports configuration that would make the server unsafe or unable to start.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if len(c.JWTSecret) < minSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minSecretLength)
	}
	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be set in release mode")
		}
		if c.SessionSecret == defaultSessionSecret || len(c.SessionSecret) < minSecretLength {
			return fmt.Errorf("SESSION_SECRET must be set to at least %d characters in release mode", minSecretLength)
		}
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("token lifetimes must be positive")
	}
	if c.AccessTokenTTL >= c.RefreshTokenTTL {
		return fmt.Errorf("ACCESS_TOKEN_TTL must be shorter than REFRESH_TOKEN_TTL")
	}
	if c.IdentityVerifyTimeout <= 0 {
		return fmt.Errorf("IDENTITY_VERIFY_TIMEOUT must be positive")
	}
	return nil
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
