// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// JWTSecret signs access tokens. Required.
	JWTSecret string
	JWTTTL    time.Duration

	// UploadDir is the root of receipt and document storage.
	UploadDir    string
	MaxBodyBytes int64

	// DefaultOwnerPassword is assigned to owners created without one.
	DefaultOwnerPassword string

	// Admin is the bootstrap operator account. Seeding is skipped when the
	// email is empty.
	Admin AdminConfig

	LoginRatePerSec float64
	LoginBurst      int

	// OverdueSweepCron is a six-field (with seconds) cron expression.
	OverdueSweepCron string
	ResetTokenTTL    time.Duration
}

type AdminConfig struct {
	Email    string
	Username string
	Password string
}

// env mirrors the process environment; cleanenv fills it from the tags.
type env struct {
	Port                 string        `env:"PORT" env-default:"8080"`
	DatabaseURL          string        `env:"DATABASE_URL"`
	LogLevel             string        `env:"LOG_LEVEL" env-default:"info"`
	CORSOrigins          string        `env:"CORS_ORIGINS" env-default:"http://localhost:5173"`
	JWTSecret            string        `env:"JWT_SECRET"`
	JWTTTL               time.Duration `env:"JWT_TTL" env-default:"24h"`
	UploadDir            string        `env:"UPLOAD_DIR" env-default:"./uploads"`
	MaxBodyBytes         int64         `env:"MAX_BODY_BYTES" env-default:"10485760"`
	DefaultOwnerPassword string        `env:"DEFAULT_OWNER_PASSWORD" env-default:"owner123"`
	AdminEmail           string        `env:"ADMIN_EMAIL"`
	AdminUsername        string        `env:"ADMIN_USERNAME" env-default:"admin"`
	AdminPassword        string        `env:"ADMIN_PASSWORD"`
	LoginRatePerSec      float64       `env:"LOGIN_RATE_PER_SEC" env-default:"1"`
	LoginBurst           int           `env:"LOGIN_BURST" env-default:"5"`
	OverdueSweepCron     string        `env:"OVERDUE_SWEEP_CRON" env-default:"0 0 * * * *"`
	ResetTokenTTL        time.Duration `env:"RESET_TOKEN_TTL" env-default:"1h"`
}

// Load reads configuration from environment variables and returns a Config.
// A .env file in the working directory is read first when present; variables
// already set in the environment take precedence over it.
// Returns an error listing any required variables that are not set.
func Load() (Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit dotenv path. A missing file is not an error.
func LoadFile(dotenv string) (Config, error) {
	if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: read %s: %w", dotenv, err)
	}

	var e env
	if err := cleanenv.ReadEnv(&e); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	var missing []string
	if e.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if e.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if e.AdminEmail != "" && e.AdminPassword == "" {
		missing = append(missing, "ADMIN_PASSWORD")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	if e.MaxBodyBytes <= 0 {
		return Config{}, fmt.Errorf("config: MAX_BODY_BYTES must be positive, got %d", e.MaxBodyBytes)
	}
	if e.LoginRatePerSec <= 0 || e.LoginBurst < 1 {
		return Config{}, fmt.Errorf("config: LOGIN_RATE_PER_SEC and LOGIN_BURST must be positive")
	}

	return Config{
		Port:                 e.Port,
		DatabaseURL:          e.DatabaseURL,
		LogLevel:             e.LogLevel,
		CORSOrigins:          splitCSV(e.CORSOrigins),
		JWTSecret:            e.JWTSecret,
		JWTTTL:               e.JWTTTL,
		UploadDir:            e.UploadDir,
		MaxBodyBytes:         e.MaxBodyBytes,
		DefaultOwnerPassword: e.DefaultOwnerPassword,
		Admin: AdminConfig{
			Email:    e.AdminEmail,
			Username: e.AdminUsername,
			Password: e.AdminPassword,
		},
		LoginRatePerSec:  e.LoginRatePerSec,
		LoginBurst:       e.LoginBurst,
		OverdueSweepCron: e.OverdueSweepCron,
		ResetTokenTTL:    e.ResetTokenTTL,
	}, nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
