// Package config loads service configuration from the environment.
//
// Load never fails; Validate does. main is expected to call both and
// refuse to start on a validation error, so a misconfigured deployment
// dies loudly instead of running with guessable defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration, grouped by concern.
type Config struct {
	Service   ServiceConfig
	Logging   LoggingConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Tracing   TracingConfig
	Profiling ProfilingConfig
	Shutdown  ShutdownConfig
}

type ServiceConfig struct {
	Name    string
	Version string
	Env     string
	Port    string
}

type LoggingConfig struct {
	Level string
}

type DatabaseConfig struct {
	URL string
	// Timeout bounds every store call so the gating path cannot hang.
	TimeoutSeconds int
}

type AuthConfig struct {
	// JWTSecret signs session tokens. Empty is a validation error, not a
	// fallback — tokens signed with a known default are forgeable.
	JWTSecret string
	// SessionReapIntervalSeconds controls the expired-session reaper.
	// Zero disables it; expiry is still enforced at verification time.
	SessionReapIntervalSeconds int
}

type TracingConfig struct {
	Enabled    bool
	Endpoint   string
	SampleRate float64
}

type ProfilingConfig struct {
	Enabled  bool
	Endpoint string
}

type ShutdownConfig struct {
	TimeoutSeconds             int
	ReadinessDrainDelaySeconds int
}

// Load builds Config from the environment. A .env file is honored for
// local development; missing keys fall back to defaults except for
// secrets, which have none.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Service: ServiceConfig{
			Name:    getEnv("SERVICE_NAME", "gatehouse"),
			Version: getEnv("SERVICE_VERSION", "dev"),
			Env:     getEnv("ENV", "development"),
			Port:    getEnv("PORT", "8080"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			URL:            os.Getenv("DATABASE_URL"),
			TimeoutSeconds: getEnvInt("DB_TIMEOUT_SECONDS", 5),
		},
		Auth: AuthConfig{
			JWTSecret:                  os.Getenv("JWT_SECRET"),
			SessionReapIntervalSeconds: getEnvInt("SESSION_REAP_INTERVAL_SECONDS", 0),
		},
		Tracing: TracingConfig{
			Enabled:    getEnvBool("TRACING_ENABLED", false),
			Endpoint:   getEnv("TRACING_ENDPOINT", "localhost:4318"),
			SampleRate: getEnvFloat("TRACING_SAMPLE_RATE", 1.0),
		},
		Profiling: ProfilingConfig{
			Enabled:  getEnvBool("PROFILING_ENABLED", false),
			Endpoint: getEnv("PROFILING_ENDPOINT", "http://localhost:4040"),
		},
		Shutdown: ShutdownConfig{
			TimeoutSeconds:             getEnvInt("SHUTDOWN_TIMEOUT_SECONDS", 10),
			ReadinessDrainDelaySeconds: getEnvInt("READINESS_DRAIN_DELAY_SECONDS", 0),
		},
	}
}

// Validate checks the configuration invariants that must hold before the
// service is allowed to start.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required; refusing to sign tokens with a default key")
	}
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Database.TimeoutSeconds <= 0 {
		return fmt.Errorf("DB_TIMEOUT_SECONDS must be positive, got %d", c.Database.TimeoutSeconds)
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return fmt.Errorf("TRACING_SAMPLE_RATE must be in [0, 1], got %v", c.Tracing.SampleRate)
	}
	if c.Shutdown.TimeoutSeconds <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT_SECONDS must be positive, got %d", c.Shutdown.TimeoutSeconds)
	}
	return nil
}

// IsProduction reports whether the service runs with production
// hardening (secure cookies, JSON logs).
func (c *Config) IsProduction() bool {
	return c.Service.Env == "production"
}

// GetDBTimeoutDuration returns the per-call store deadline.
func (c *Config) GetDBTimeoutDuration() time.Duration {
	return time.Duration(c.Database.TimeoutSeconds) * time.Second
}

// GetSessionReapInterval returns the reaper interval; zero means disabled.
func (c *Config) GetSessionReapInterval() time.Duration {
	return time.Duration(c.Auth.SessionReapIntervalSeconds) * time.Second
}

// GetShutdownTimeoutDuration returns how long graceful shutdown may take.
func (c *Config) GetShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.Shutdown.TimeoutSeconds) * time.Second
}

// GetReadinessDrainDelayDuration returns how long to fail readiness
// before the HTTP server begins shutting down.
func (c *Config) GetReadinessDrainDelayDuration() time.Duration {
	return time.Duration(c.Shutdown.ReadinessDrainDelaySeconds) * time.Second
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return def
}
