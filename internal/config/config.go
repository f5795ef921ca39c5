// Package config provides configuration loading and management for the application.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// DefaultConfigFile is the bootstrap file read when SETTLEMENT_CONFIG is unset
const DefaultConfigFile = "config/settlement.yaml"

// Config holds the process-level settings taken from the environment
type Config struct {
	// HTTP server port
	Port string

	// Path of the YAML bootstrap file
	ConfigFile string

	// Hex secp256k1 key of the operator. It signs receipts, submits
	// downstream transactions and is the administrative identity.
	OperatorKey string

	// Key required in X-API-Key for administrative HTTP calls; empty
	// disables them
	AdminAPIKey string

	// OpenTelemetry endpoint for observability
	OtelEndpoint string

	// Logging output
	LogFormat string
	LogLevel  string

	// Per-request deadline for route discovery and execution
	RequestTimeout time.Duration

	// Token bucket guarding the HTTP API; zero RPS disables it
	RateLimitRPS   float64
	RateLimitBurst int

	EnableMetrics   bool
	ShutdownTimeout time.Duration
}

// Load creates a new Config from environment variables
func Load() Config {
	return Config{
		Port:            GetEnvOrDefault("PORT", "8080"),
		ConfigFile:      GetEnvOrDefault("SETTLEMENT_CONFIG", DefaultConfigFile),
		OperatorKey:     strings.TrimSpace(GetEnvOrDefault("OPERATOR_KEY", "")),
		AdminAPIKey:     GetEnvOrDefault("ADMIN_API_KEY", ""),
		OtelEndpoint:    GetEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		LogFormat:       strings.ToLower(GetEnvOrDefault("LOG_FORMAT", "text")),
		LogLevel:        strings.ToLower(GetEnvOrDefault("LOG_LEVEL", "info")),
		RequestTimeout:  GetEnvAsDuration("REQUEST_TIMEOUT", 30*time.Second),
		RateLimitRPS:    GetEnvAsFloat("RATE_LIMIT_RPS", 10.0),
		RateLimitBurst:  GetEnvAsInt("RATE_LIMIT_BURST", 20),
		EnableMetrics:   GetEnvAsBool("ENABLE_METRICS", true),
		ShutdownTimeout: GetEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

// LoadDotEnv loads variables from the given .env files (".env" when none are
// given) without overriding the existing environment. Missing files are
// ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
		logrus.WithField("file", file).Debug("Loaded environment file")
	}
	return nil
}

// GetEnv retrieves an environment variable and whether it exists
func GetEnv(key string) (string, bool) {
	value, exists := os.LookupEnv(key)
	return value, exists
}

// GetEnvOrDefault retrieves an environment variable or returns the default value if not set
func GetEnvOrDefault(key, defaultValue string) string {
	if value, exists := GetEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// GetEnvAsInt retrieves an environment variable as an integer with a default value
func GetEnvAsInt(key string, defaultValue int) int {
	if value, exists := GetEnv(key); exists && value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		} else {
			logrus.Warnf("Invalid integer in %s: %v, using default: %v", key, err, defaultValue)
		}
	}
	return defaultValue
}

// GetEnvAsFloat retrieves an environment variable as a float with a default value
func GetEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := GetEnv(key); exists && value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		} else {
			logrus.Warnf("Invalid float in %s: %v, using default: %v", key, err, defaultValue)
		}
	}
	return defaultValue
}

// GetEnvAsBool retrieves an environment variable as a boolean with a default value
func GetEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := GetEnv(key); exists && value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		} else {
			logrus.Warnf("Invalid boolean in %s: %v, using default: %v", key, err, defaultValue)
		}
	}
	return defaultValue
}

// GetEnvAsDuration retrieves an environment variable as a duration with a default value
func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := GetEnv(key); exists && value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		} else {
			logrus.Warnf("Invalid duration in %s: %v, using default: %v", key, err, defaultValue)
		}
	}
	return defaultValue
}
