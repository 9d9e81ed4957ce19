// Package config reads finpal settings from the environment. A .env file in
// the working directory is loaded first when present.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// HTTP Server
	Port           string
	MaxUploadBytes int64
	RateLimitRPM   int

	// Rules persistence
	RulesBackend  string
	RulesFile     string
	RulesSeedFile string
	SQLiteDBPath  string

	// AMQP rule change notifications, disabled when AMQPURL is empty
	AMQPURL             string
	AMQPExchange        string
	AMQPRoutingKey      string
	AMQPConnectAttempts int
	AMQPDialTimeout     time.Duration

	// Sessions
	SessionTTL        time.Duration
	SessionMaxEntries int

	// Presentation
	Currency string

	// Logging
	LogLevel  string
	LogFormat string
}

// Backend names accepted by RULES_BACKEND.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// LoadDotEnv loads the given .env files, or ./.env when none are named.
// Variables already set in the environment win. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8081"),
		MaxUploadBytes: getEnvInt64("MAX_UPLOAD_BYTES", 10<<20),
		RateLimitRPM:   getEnvInt("RATE_LIMIT_RPM", 60),

		RulesBackend:  strings.ToLower(getEnv("RULES_BACKEND", BackendJSON)),
		RulesFile:     getEnv("RULES_FILE", "categories.json"),
		RulesSeedFile: getEnv("RULES_SEED_FILE", ""),
		SQLiteDBPath:  getEnv("SQLITE_DB_PATH", "./data/finpal.db"),

		AMQPURL:             getEnv("AMQP_URL", ""),
		AMQPExchange:        getEnv("AMQP_EXCHANGE", "finpal"),
		AMQPRoutingKey:      getEnv("AMQP_ROUTING_KEY", "rules.changed"),
		AMQPConnectAttempts: getEnvInt("AMQP_CONNECT_ATTEMPTS", 3),
		AMQPDialTimeout:     getEnvDuration("AMQP_DIAL_TIMEOUT", 3*time.Second),

		SessionTTL:        getEnvDuration("SESSION_TTL", 30*time.Minute),
		SessionMaxEntries: getEnvInt("SESSION_MAX_ENTRIES", 100),

		Currency: getEnv("CURRENCY", "CAD"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.RulesBackend {
	case BackendJSON:
		if c.RulesFile == "" {
			errors = append(errors, "rules file cannot be empty when using json backend")
		}
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		}
	case BackendMemory:
	default:
		errors = append(errors, fmt.Sprintf("invalid rules backend '%s': must be one of %v",
			c.RulesBackend, []string{BackendJSON, BackendSQLite, BackendMemory}))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPRoutingKey == "" {
			errors = append(errors, "AMQP routing key cannot be empty when AMQP URL is provided")
		}
	}

	if c.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	}
	if c.SessionMaxEntries < 1 {
		errors = append(errors, fmt.Sprintf("invalid session max entries %d: must be at least 1", c.SessionMaxEntries))
	}
	if c.MaxUploadBytes < 1024 {
		errors = append(errors, fmt.Sprintf("invalid max upload bytes %d: must be at least 1024", c.MaxUploadBytes))
	}
	if c.RateLimitRPM < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitRPM))
	}
	if strings.TrimSpace(c.Currency) == "" {
		errors = append(errors, "currency cannot be empty")
	}
	if f := strings.ToLower(c.LogFormat); f != "text" && f != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
