package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"http_server"`
	Gateway       GatewayConfig       `mapstructure:"gateway"`
	SessionStore  SessionStoreConfig  `mapstructure:"session_store"`
	MockBackend   MockBackendConfig   `mapstructure:"mock_backend"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

// GatewayConfig points at the REST backend every view reads from.
type GatewayConfig struct {
	BaseURL        string        `mapstructure:"base_url" validate:"required,url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxConcurrency int           `mapstructure:"max_concurrency"`
}

type SessionStoreConfig struct {
	Driver       string `mapstructure:"driver" validate:"required,oneof=sqlite postgres redis memory"`
	Source       string `mapstructure:"source"`
	KeyPrefix    string `mapstructure:"key_prefix"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type MockBackendConfig struct {
	Port       int           `mapstructure:"port"`
	Seed       bool          `mapstructure:"seed"`
	JWTSecret  string        `mapstructure:"jwt_secret"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	BCryptCost int           `mapstructure:"bcrypt_cost" validate:"min=4,max=15"`
}

type ObservabilityConfig struct {
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required_if=Enabled true"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

const (
	SessionDriverSQLite   = "sqlite"
	SessionDriverPostgres = "postgres"
	SessionDriverRedis    = "redis"
	SessionDriverMemory   = "memory"
)

// DefaultConfig mirrors config.yml so commands work without a config file.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              8080,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			IdleTimeout:       60 * time.Second,
			WriteTimeout:      30 * time.Second,
		},
		Gateway: GatewayConfig{
			BaseURL:        "http://localhost:5000/api",
			Timeout:        10 * time.Second,
			MaxConcurrency: 8,
		},
		SessionStore: SessionStoreConfig{
			Driver:       SessionDriverSQLite,
			Source:       "file:dashboard_session.db?_busy_timeout=5000",
			KeyPrefix:    "resource-dashboard:",
			MaxOpenConns: 1,
			MaxIdleConns: 1,
		},
		MockBackend: MockBackendConfig{
			Port:       5000,
			Seed:       true,
			JWTSecret:  "mock-backend-development-secret",
			TokenTTL:   8 * time.Hour,
			BCryptCost: 10,
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{Enabled: true, Path: "/metrics"},
			Logging: LoggingConfig{Level: "info", Format: "text"},
		},
	}
}

// LoadConfigFromEnv builds the configuration for container deployments.
func LoadConfigFromEnv() *Config {
	cfg := DefaultConfig()

	cfg.Server.Port = getEnvAsInt("HTTP_SERVER_PORT", cfg.Server.Port)
	cfg.Server.AllowedOrigins = getEnv("HTTP_SERVER_ALLOWED_ORIGINS", cfg.Server.AllowedOrigins)
	cfg.Server.ReadTimeout = getEnvAsDuration("HTTP_SERVER_READ_TIMEOUT", cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = getEnvAsDuration("HTTP_SERVER_WRITE_TIMEOUT", cfg.Server.WriteTimeout)
	cfg.Server.IdleTimeout = getEnvAsDuration("HTTP_SERVER_IDLE_TIMEOUT", cfg.Server.IdleTimeout)

	cfg.Gateway.BaseURL = getEnv("GATEWAY_BASE_URL", cfg.Gateway.BaseURL)
	cfg.Gateway.Timeout = getEnvAsDuration("GATEWAY_TIMEOUT", cfg.Gateway.Timeout)
	cfg.Gateway.MaxConcurrency = getEnvAsInt("GATEWAY_MAX_CONCURRENCY", cfg.Gateway.MaxConcurrency)

	cfg.SessionStore.Driver = getEnv("SESSION_STORE_DRIVER", cfg.SessionStore.Driver)
	cfg.SessionStore.Source = getEnv("SESSION_STORE_SOURCE", cfg.SessionStore.Source)
	cfg.SessionStore.KeyPrefix = getEnv("SESSION_STORE_KEY_PREFIX", cfg.SessionStore.KeyPrefix)

	cfg.MockBackend.Port = getEnvAsInt("MOCK_BACKEND_PORT", cfg.MockBackend.Port)
	cfg.MockBackend.JWTSecret = getEnv("MOCK_BACKEND_JWT_SECRET", cfg.MockBackend.JWTSecret)
	cfg.MockBackend.TokenTTL = getEnvAsDuration("MOCK_BACKEND_TOKEN_TTL", cfg.MockBackend.TokenTTL)

	cfg.Observability.Logging.Level = getEnv("LOG_LEVEL", cfg.Observability.Logging.Level)
	cfg.Observability.Logging.Format = getEnv("LOG_FORMAT", "json")
	cfg.Observability.Metrics.Enabled = getEnv("METRICS_ENABLED", "true") == "true"

	return cfg
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Gateway.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("gateway config: %v", err))
	}

	if err := c.SessionStore.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("session store config: %v", err))
	}

	if err := c.Observability.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("observability config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *GatewayConfig) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base_url is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url scheme must be http or https, got %q", u.Scheme)
	}
	if c.MaxConcurrency < 0 {
		return errors.New("max_concurrency cannot be negative")
	}
	return nil
}

func (c *SessionStoreConfig) Validate() error {
	switch c.Driver {
	case SessionDriverMemory:
		return nil
	case SessionDriverSQLite, SessionDriverPostgres, SessionDriverRedis:
		if c.Source == "" {
			return fmt.Errorf("source is required for driver %s", c.Driver)
		}
	default:
		return fmt.Errorf("unsupported driver %q", c.Driver)
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *ObservabilityConfig) Validate() error {
	if c.Metrics.Enabled && c.Metrics.Path == "" {
		return errors.New("metrics path is required when metrics are enabled")
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("unsupported log format %q", c.Logging.Format)
	}
	return nil
}
