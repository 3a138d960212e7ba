package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Backend  BackendConfig
	Session  SessionConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Features FeaturesConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// BackendConfig holds analysis backend client configuration
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SessionConfig holds visitor session configuration
type SessionConfig struct {
	Store           string // "memory" or "postgres"
	TTL             time.Duration
	CleanupInterval time.Duration
	CookieName      string
}

// DatabaseConfig holds PostgreSQL configuration for the optional
// analysis-session persistence.
type DatabaseConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
	MaxConns int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// FeaturesConfig holds behavior flags for the results flow.
type FeaturesConfig struct {
	// AlwaysFetchFlow exempts the flow route from the detailed-analysis
	// short-circuit; diagrams are never part of the initial payload.
	AlwaysFetchFlow bool

	// RouteInfoPayloadShape selects what is sent as project_context on
	// route-info and flow-diagram requests: "context" sends the analysis
	// context, "full" sends the whole analysis result.
	RouteInfoPayloadShape string
}

const (
	PayloadShapeContext = "context"
	PayloadShapeFull    = "full"
)

// LoadConfig loads configuration from environment variables, then applies an
// optional YAML overlay file named by CONFIG_FILE.
func LoadConfig() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "3000"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Backend: BackendConfig{
			BaseURL: getEnv("BACKEND_URL", "http://localhost:8000"),
			Timeout: getDurationEnv("BACKEND_TIMEOUT", 120*time.Second),
		},
		Session: SessionConfig{
			Store:           getEnv("SESSION_STORE", "memory"),
			TTL:             getDurationEnv("SESSION_TTL", 2*time.Hour),
			CleanupInterval: getDurationEnv("SESSION_CLEANUP_INTERVAL", 5*time.Minute),
			CookieName:      getEnv("SESSION_COOKIE_NAME", "analyzer_session"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getIntEnv("DB_PORT", 5432),
			Database: getEnv("DB_NAME", "postgres"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			SSLMode:  getEnv("DB_SSLMODE", "prefer"),
			MaxConns: getIntEnv("DB_MAX_CONNS", 10),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Features: FeaturesConfig{
			AlwaysFetchFlow:       getBoolEnv("ALWAYS_FETCH_FLOW", true),
			RouteInfoPayloadShape: getEnv("ROUTE_INFO_PAYLOAD_SHAPE", PayloadShapeContext),
		},
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		// Overlay errors are non-fatal; env values stay in effect.
		if err := ApplyFile(cfg, path); err != nil {
			log.Printf("Config file %s not applied: %v", path, err)
		}
	}

	return cfg
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv gets duration from environment variable with default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getIntEnv gets integer from environment variable with default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getBoolEnv gets boolean from environment variable with default value
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return &ConfigError{Field: "BACKEND_URL", Message: "analysis backend URL is required"}
	}
	if !strings.HasPrefix(c.Backend.BaseURL, "http://") && !strings.HasPrefix(c.Backend.BaseURL, "https://") {
		return &ConfigError{Field: "BACKEND_URL", Message: "analysis backend URL must be http(s)"}
	}
	switch c.Session.Store {
	case "memory", "postgres":
	default:
		return &ConfigError{Field: "SESSION_STORE", Message: "must be \"memory\" or \"postgres\""}
	}
	switch c.Features.RouteInfoPayloadShape {
	case PayloadShapeContext, PayloadShapeFull:
	default:
		return &ConfigError{Field: "ROUTE_INFO_PAYLOAD_SHAPE", Message: "must be \"context\" or \"full\""}
	}
	return nil
}

// ConfigError represents configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
