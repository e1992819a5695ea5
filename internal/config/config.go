// Package config provides application configuration loading from environment variables and .env files.
// It uses viper for flexible configuration management with sensible defaults.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration loaded from environment variables or .env file.
// Configuration priority: environment variables > .env file > defaults.
type Config struct {
	AppEnv         string        // Application environment (dev, staging, prod)
	HTTPAddr       string        // HTTP server bind address (e.g., ":8080")
	MetricsAddr    string        // Metrics server bind address
	AdminAPIKey    string        // Bearer token for write operations
	StoreType      string        // memory, file, sqlite, postgres or redis
	StoreDSN       string        // Backend specific location (dir, file, DSN or URL)
	StoreNamespace string        // Key the collection is persisted under
	LogLevel       string        // zerolog level name
	LogFormat      string        // json or console
	Lang           string        // en or zh; picks default names and fallback texts
	GeminiAPIKey   string        // Credential for the generative assist calls; empty disables them
	GeminiModel    string        // Model used for descriptions and suggestions
	AssistTimeout  time.Duration // Deadline for one generative call
	RateLimitPerIP int           // Requests per minute per client IP
	TrafficBucket  bool          // Derive "traffic" from user_id when evaluating
	RolloutSalt    string        // Salt for deterministic traffic bucketing
	OTLPEndpoint   string        // OTLP/HTTP traces endpoint; empty disables tracing

	rolloutSaltGenerated bool
}

const (
	saltByteSize        = 16 // 16 bytes = 128 bits of entropy
	defaultSaltFallback = "default-random-salt"
	defaultAdminKey     = "admin-123"
)

var storeTypes = map[string]bool{
	"memory":   true,
	"file":     true,
	"sqlite":   true,
	"postgres": true,
	"redis":    true,
}

// generateRandomSalt creates a cryptographically secure random 16-byte hex-encoded salt.
func generateRandomSalt() string {
	bytes := make([]byte, saltByteSize)
	if _, err := rand.Read(bytes); err != nil {
		return defaultSaltFallback
	}
	return hex.EncodeToString(bytes)
}

// Load reads configuration from environment variables and .env file (if present).
// Environment variables take precedence over .env file values.
//
// Load does NOT validate configuration constraints; call Validate for that.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env") // Optional; silently ignored if file doesn't exist
	_ = v.ReadInConfig()    // Ignore error - .env is optional
	v.AutomaticEnv()

	setConfigDefaults(v)
	rolloutSalt, rolloutSaltGenerated := getOrGenerateRolloutSalt(v)

	return &Config{
		AppEnv:               v.GetString("APP_ENV"),
		HTTPAddr:             v.GetString("APP_HTTP_ADDR"),
		MetricsAddr:          v.GetString("METRICS_ADDR"),
		AdminAPIKey:          v.GetString("ADMIN_API_KEY"),
		StoreType:            v.GetString("STORE_TYPE"),
		StoreDSN:             v.GetString("STORE_DSN"),
		StoreNamespace:       v.GetString("STORE_NAMESPACE"),
		LogLevel:             v.GetString("LOG_LEVEL"),
		LogFormat:            v.GetString("LOG_FORMAT"),
		Lang:                 v.GetString("APP_LANG"),
		GeminiAPIKey:         v.GetString("GEMINI_API_KEY"),
		GeminiModel:          v.GetString("GEMINI_MODEL"),
		AssistTimeout:        v.GetDuration("ASSIST_TIMEOUT"),
		RateLimitPerIP:       v.GetInt("RATE_LIMIT_PER_IP"),
		TrafficBucket:        v.GetBool("TRAFFIC_BUCKETING"),
		RolloutSalt:          rolloutSalt,
		OTLPEndpoint:         v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		rolloutSaltGenerated: rolloutSaltGenerated,
	}, nil
}

// setConfigDefaults sets default values for all configuration options.
// These defaults are suitable for local development but should be overridden in production.
func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("APP_HTTP_ADDR", ":8080")
	v.SetDefault("METRICS_ADDR", ":9090")
	v.SetDefault("ADMIN_API_KEY", defaultAdminKey) // Change in production!
	v.SetDefault("STORE_TYPE", "file")
	v.SetDefault("STORE_DSN", "./data")
	v.SetDefault("STORE_NAMESPACE", "apollo_toggles")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("APP_LANG", "en")
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("ASSIST_TIMEOUT", "10s")
	v.SetDefault("RATE_LIMIT_PER_IP", 100)
	v.SetDefault("TRAFFIC_BUCKETING", false)
}

// getOrGenerateRolloutSalt retrieves ROLLOUT_SALT or generates a random one.
// The boolean reports whether the salt was generated.
func getOrGenerateRolloutSalt(v *viper.Viper) (string, bool) {
	rolloutSalt := v.GetString("ROLLOUT_SALT")
	if rolloutSalt == "" {
		return generateRandomSalt(), true
	}
	return rolloutSalt, false
}

// RolloutSaltGenerated reports whether the salt was generated at startup, in
// which case traffic buckets change on every restart.
func (c *Config) RolloutSaltGenerated() bool {
	return c.rolloutSaltGenerated
}

// ValidationError represents a configuration validation error with details about what failed.
type ValidationError struct {
	Field   string // Name of the configuration field
	Message string // Human-readable error message
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation failed [%s]: %s", e.Field, e.Message)
}

// Validate checks that the configuration is usable and returns the first
// failure as a ValidationError. In production (APP_ENV=prod) the default admin
// key and a generated rollout salt are rejected as well.
func (c *Config) Validate() error {
	if !storeTypes[c.StoreType] {
		return ValidationError{
			Field:   "STORE_TYPE",
			Message: fmt.Sprintf("must be one of memory, file, sqlite, postgres, redis; got '%s'", c.StoreType),
		}
	}

	if c.StoreType != "memory" && c.StoreDSN == "" {
		return ValidationError{
			Field:   "STORE_DSN",
			Message: fmt.Sprintf("store location is required when STORE_TYPE=%s", c.StoreType),
		}
	}

	if c.StoreNamespace == "" {
		return ValidationError{
			Field:   "STORE_NAMESPACE",
			Message: "store namespace cannot be empty",
		}
	}

	if c.HTTPAddr == "" {
		return ValidationError{
			Field:   "APP_HTTP_ADDR",
			Message: "HTTP server address cannot be empty",
		}
	}

	if c.MetricsAddr == "" {
		return ValidationError{
			Field:   "METRICS_ADDR",
			Message: "metrics server address cannot be empty",
		}
	}

	if c.Lang != "en" && c.Lang != "zh" {
		return ValidationError{
			Field:   "APP_LANG",
			Message: fmt.Sprintf("must be 'en' or 'zh', got '%s'", c.Lang),
		}
	}

	if c.AssistTimeout <= 0 {
		return ValidationError{
			Field:   "ASSIST_TIMEOUT",
			Message: "assist timeout must be positive",
		}
	}

	if c.RateLimitPerIP <= 0 {
		return ValidationError{
			Field:   "RATE_LIMIT_PER_IP",
			Message: "rate limit must be positive",
		}
	}

	if c.AppEnv == "prod" || c.AppEnv == "production" {
		if c.AdminAPIKey == defaultAdminKey {
			return ValidationError{
				Field:   "ADMIN_API_KEY",
				Message: "default admin API key 'admin-123' is not allowed in production",
			}
		}
		if c.TrafficBucket && c.rolloutSaltGenerated {
			return ValidationError{
				Field:   "ROLLOUT_SALT",
				Message: "rollout salt must be explicitly configured in production when TRAFFIC_BUCKETING is on",
			}
		}
	}

	return nil
}
