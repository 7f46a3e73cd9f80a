package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for ekaya-console.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (tokens, passwords, keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"3080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:""`
	Version  string `yaml:"-"` // Set at load time, not from config

	// TLS configuration (optional - if both provided, server uses HTTPS)
	TLSCertPath string `yaml:"tls_cert_path" env:"TLS_CERT_PATH" env-default:""`
	TLSKeyPath  string `yaml:"tls_key_path" env:"TLS_KEY_PATH" env-default:""`

	// Infrastructure back-end (GraphQL + REST)
	Backend BackendConfig `yaml:"backend"`

	// Redis holds per-session navigation trees. Leave host empty to keep
	// trees in memory.
	Redis RedisConfig `yaml:"redis"`

	// Session cookie configuration
	Session SessionConfig `yaml:"session"`

	// Menu configuration
	Menu MenuConfig `yaml:"menu"`
}

// BackendConfig holds settings for the infrastructure back-end.
type BackendConfig struct {
	URL            string `yaml:"url" env:"BACKEND_URL" env-default:"http://localhost:8000"`
	DefaultBranch  string `yaml:"default_branch" env:"BACKEND_DEFAULT_BRANCH" env-default:"main"`
	APIKeyHeader   string `yaml:"api_key_header" env:"BACKEND_API_KEY_HEADER" env-default:"X-INFRAHUB-KEY"`
	TimeoutSeconds int    `yaml:"timeout_seconds" env:"BACKEND_TIMEOUT_SECONDS" env-default:"30"`
	MaxRetries     int    `yaml:"max_retries" env:"BACKEND_MAX_RETRIES" env-default:"3"`
	APIToken       string `yaml:"-" env:"BACKEND_API_TOKEN"` // Secret - not in YAML

	// Consecutive unavailable responses before calls fail fast, and how
	// long to wait before probing again. A zero threshold disables it.
	BreakerThreshold    int `yaml:"breaker_threshold" env:"BACKEND_BREAKER_THRESHOLD" env-default:"5"`
	BreakerResetSeconds int `yaml:"breaker_reset_seconds" env:"BACKEND_BREAKER_RESET_SECONDS" env-default:"30"`
}

// Timeout returns the per-request timeout for back-end calls.
func (c *BackendConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// BreakerReset returns how long the circuit stays open.
func (c *BackendConfig) BreakerReset() time.Duration {
	return time.Duration(c.BreakerResetSeconds) * time.Second
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Host           string `yaml:"host" env:"REDIS_HOST" env-default:""`
	Port           int    `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	DB             int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
	TreeTTLMinutes int    `yaml:"tree_ttl_minutes" env:"REDIS_TREE_TTL_MINUTES" env-default:"60"`
	Password       string `yaml:"-" env:"REDIS_PASSWORD"` // Secret - not in YAML
}

// Enabled reports whether a Redis host is configured.
func (c *RedisConfig) Enabled() bool {
	return c.Host != ""
}

// Addr returns host:port for the Redis client.
func (c *RedisConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// TreeTTL returns how long an untouched navigation tree is kept.
func (c *RedisConfig) TreeTTL() time.Duration {
	return time.Duration(c.TreeTTLMinutes) * time.Minute
}

// SessionConfig holds session cookie settings.
type SessionConfig struct {
	CookieName   string `yaml:"cookie_name" env:"SESSION_COOKIE_NAME" env-default:"ekaya_console_session"`
	MaxAgeHours  int    `yaml:"max_age_hours" env:"SESSION_MAX_AGE_HOURS" env-default:"24"`
	SecureCookie bool   `yaml:"secure_cookie" env:"SESSION_SECURE_COOKIE" env-default:"false"`
	Secret       string `yaml:"-" env:"SESSION_SECRET"` // Secret - not in YAML
}

// MenuConfig selects where the navigation menu comes from.
type MenuConfig struct {
	// File is a YAML menu file. When empty the menu is fetched from the back-end.
	File string `yaml:"file" env:"MENU_FILE" env-default:""`
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
// Secrets (BACKEND_API_TOKEN, REDIS_PASSWORD, SESSION_SECRET) must come from
// environment variables (yaml:"-" fields).
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	if err := cfg.validateBackend(); err != nil {
		return nil, fmt.Errorf("invalid backend configuration: %w", err)
	}

	if err := cfg.validateTLS(); err != nil {
		return nil, fmt.Errorf("invalid TLS configuration: %w", err)
	}

	if cfg.Session.Secret == "" && cfg.Env != "local" {
		return nil, fmt.Errorf("SESSION_SECRET is required outside local environment")
	}

	return cfg, nil
}

// validateBackend checks the back-end URL and normalizes it without a trailing slash.
func (c *Config) validateBackend() error {
	u, err := url.Parse(c.Backend.URL)
	if err != nil {
		return fmt.Errorf("failed to parse backend url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend url must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("backend url has no host")
	}
	c.Backend.URL = strings.TrimRight(c.Backend.URL, "/")

	if c.Backend.DefaultBranch == "" {
		return fmt.Errorf("default_branch must not be empty")
	}
	if c.Backend.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be positive")
	}
	return nil
}

// validateTLS ensures TLS configuration is valid if provided.
// Both cert and key must be provided together, and files must exist.
func (c *Config) validateTLS() error {
	certSet := c.TLSCertPath != ""
	keySet := c.TLSKeyPath != ""

	if certSet != keySet {
		return fmt.Errorf("both tls_cert_path and tls_key_path must be provided together")
	}

	if certSet {
		if _, err := os.Stat(c.TLSCertPath); err != nil {
			return fmt.Errorf("TLS cert file does not exist: %w", err)
		}
		if _, err := os.Stat(c.TLSKeyPath); err != nil {
			return fmt.Errorf("TLS key file does not exist: %w", err)
		}
	}

	return nil
}
