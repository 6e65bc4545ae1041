// Package config loads task manager settings from defaults, an optional
// TOML file, a .env file and the environment, in that order.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// DefaultFile is read when present and no other file is named.
const DefaultFile = "taskmanager.toml"

// Defaults.
const (
	DefaultPort            = 5000
	DefaultWebPort         = 3000
	DefaultDatabaseURL     = "sqlite://tasks.db"
	DefaultAllowedOrigins  = "*"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
	DefaultShutdownTimeout = 30 * time.Second
)

// Config holds every runtime setting.
type Config struct {
	Port            int
	WebPort         int
	DatabaseURL     string
	DBDebug         bool
	AllowedOrigins  string
	APIBaseURL      string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// file mirrors Config in TOML. Durations are strings such as "30s".
type file struct {
	Port            int    `toml:"port"`
	WebPort         int    `toml:"web-port"`
	DatabaseURL     string `toml:"database-url"`
	DBDebug         bool   `toml:"db-debug"`
	AllowedOrigins  string `toml:"cors-allowed-origins"`
	APIBaseURL      string `toml:"api-base-url"`
	LogLevel        string `toml:"log-level"`
	LogFormat       string `toml:"log-format"`
	ShutdownTimeout string `toml:"shutdown-timeout"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port:            DefaultPort,
		WebPort:         DefaultWebPort,
		DatabaseURL:     DefaultDatabaseURL,
		AllowedOrigins:  DefaultAllowedOrigins,
		LogLevel:        DefaultLogLevel,
		LogFormat:       DefaultLogFormat,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// Load builds the configuration. An empty path reads DefaultFile if it
// exists; a named path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	required := path != ""
	if !required {
		path = DefaultFile
	}
	if err := cfg.loadFile(path, required); err != nil {
		return nil, err
	}

	// Real environment variables win over .env.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg.loadEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !required {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var f file
	meta, err := toml.Decode(string(data), &f)
	if err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		log.Printf("Warning: unknown keys in %s: %v", path, undecoded)
	}

	if meta.IsDefined("port") {
		c.Port = f.Port
	}
	if meta.IsDefined("web-port") {
		c.WebPort = f.WebPort
	}
	if meta.IsDefined("database-url") {
		c.DatabaseURL = strings.TrimSpace(f.DatabaseURL)
	}
	if meta.IsDefined("db-debug") {
		c.DBDebug = f.DBDebug
	}
	if meta.IsDefined("cors-allowed-origins") {
		c.AllowedOrigins = f.AllowedOrigins
	}
	if meta.IsDefined("api-base-url") {
		c.APIBaseURL = f.APIBaseURL
	}
	if meta.IsDefined("log-level") {
		c.LogLevel = f.LogLevel
	}
	if meta.IsDefined("log-format") {
		c.LogFormat = f.LogFormat
	}
	if meta.IsDefined("shutdown-timeout") {
		d, err := time.ParseDuration(f.ShutdownTimeout)
		if err != nil {
			return fmt.Errorf("parse config file %s: shutdown-timeout: %w", path, err)
		}
		c.ShutdownTimeout = d
	}
	return nil
}

func (c *Config) loadEnv() {
	c.Port = getEnvInt("PORT", c.Port)
	c.WebPort = getEnvInt("WEB_PORT", c.WebPort)
	c.DatabaseURL = getEnv("DATABASE_URL", getEnv("MONGODB_URI", c.DatabaseURL))
	c.DBDebug = getEnvBool("DB_DEBUG", c.DBDebug)
	c.AllowedOrigins = getEnv("CORS_ALLOWED_ORIGINS", c.AllowedOrigins)
	c.APIBaseURL = getEnv("API_BASE_URL", c.APIBaseURL)
	c.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", c.LogLevel))
	c.LogFormat = strings.ToLower(getEnv("LOG_FORMAT", c.LogFormat))
	c.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", c.ShutdownTimeout)
}

// ResolvedAPIBaseURL is the API root the web pages call.
func (c *Config) ResolvedAPIBaseURL() string {
	if c.APIBaseURL != "" {
		return c.APIBaseURL
	}
	return fmt.Sprintf("http://localhost:%d/api", c.Port)
}

// Validate reports settings the application cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %d", c.Port))
	}
	if c.WebPort < 0 || c.WebPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid web port %d", c.WebPort))
	}
	if c.WebPort != 0 && c.WebPort == c.Port {
		errs = append(errs, fmt.Errorf("port and web port must differ, both are %d", c.Port))
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		errs = append(errs, errors.New("database url is required"))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log level %q", c.LogLevel))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid log format %q", c.LogFormat))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("invalid shutdown timeout %s", c.ShutdownTimeout))
	}
	return errors.Join(errs...)
}

// getEnv returns environment variable value or default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns environment variable as int or default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Printf("Warning: invalid int value for %s: %s, using default: %d", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvBool returns environment variable as bool or default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
		log.Printf("Warning: invalid bool value for %s: %s, using default: %t", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvDuration returns environment variable as duration or default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		log.Printf("Warning: invalid duration value for %s: %s, using default: %s", key, value, defaultValue)
	}
	return defaultValue
}
