package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends.
const (
	BackendMemory  = "memory"
	BackendSurreal = "surreal"
)

// Provider is the read-only view of the configuration the rest of the
// application depends on.
type Provider interface {
	GetServerAddr() string
	GetStoreBackend() string

	GetDBURL() string
	GetDBUser() string
	GetDBPass() string
	GetDBNs() string
	GetDBDb() string
	GetDBQueryTimeout() time.Duration
	GetDBExecuteTimeout() time.Duration

	GetSweepInterval() time.Duration
	GetStaleThreshold() time.Duration
	GetVisibilityPolicy() string
	GetRateLimitPerMinute() int

	GetLogFormat() string
	GetLogLevel() string
}

// Config holds all configuration for the application.
type Config struct {
	ServerAddr   string
	StoreBackend string

	DBUrl            string
	DBNs             string
	DBDb             string
	DBUser           string
	DBPass           string
	DBQueryTimeout   time.Duration
	DBExecuteTimeout time.Duration

	SweepInterval      time.Duration
	StaleThreshold     time.Duration
	VisibilityPolicy   string
	RateLimitPerMinute int

	LogFormat string
	LogLevel  string
}

var _ Provider = (*Config)(nil)

// New loads configuration from a .env file, if present, and the environment.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}
	return FromEnv()
}

// FromEnv reads the configuration from the environment only.
func FromEnv() (*Config, error) {
	var errs []error

	cfg := &Config{
		ServerAddr:       getEnv("SERVER_ADDR", ":5000"),
		StoreBackend:     getEnv("STORE_BACKEND", BackendMemory),
		DBUrl:            os.Getenv("SURREAL_URL"),
		DBUser:           os.Getenv("SURREAL_USER"),
		DBPass:           os.Getenv("SURREAL_PASS"),
		DBNs:             os.Getenv("SURREAL_NS"),
		DBDb:             os.Getenv("SURREAL_DB"),
		VisibilityPolicy: os.Getenv("VISIBILITY_POLICY"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}

	cfg.DBQueryTimeout = getDuration("DB_QUERY_TIMEOUT", 5*time.Second, &errs)
	cfg.DBExecuteTimeout = getDuration("DB_EXECUTE_TIMEOUT", 10*time.Second, &errs)
	cfg.SweepInterval = getDuration("SWEEP_INTERVAL", 15*time.Second, &errs)
	cfg.StaleThreshold = getDuration("STALE_THRESHOLD", 10*time.Second, &errs)
	cfg.RateLimitPerMinute = getInt("RATE_LIMIT_PER_MINUTE", 60, &errs)

	switch cfg.StoreBackend {
	case BackendMemory:
	case BackendSurreal:
		if cfg.DBUrl == "" || cfg.DBNs == "" || cfg.DBDb == "" {
			errs = append(errs, errors.New("SURREAL_URL, SURREAL_NS and SURREAL_DB are required for the surreal backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_BACKEND: unknown backend %q", cfg.StoreBackend))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) GetServerAddr() string              { return c.ServerAddr }
func (c *Config) GetStoreBackend() string            { return c.StoreBackend }
func (c *Config) GetDBURL() string                   { return c.DBUrl }
func (c *Config) GetDBUser() string                  { return c.DBUser }
func (c *Config) GetDBPass() string                  { return c.DBPass }
func (c *Config) GetDBNs() string                    { return c.DBNs }
func (c *Config) GetDBDb() string                    { return c.DBDb }
func (c *Config) GetDBQueryTimeout() time.Duration   { return c.DBQueryTimeout }
func (c *Config) GetDBExecuteTimeout() time.Duration { return c.DBExecuteTimeout }
func (c *Config) GetSweepInterval() time.Duration    { return c.SweepInterval }
func (c *Config) GetStaleThreshold() time.Duration   { return c.StaleThreshold }
func (c *Config) GetVisibilityPolicy() string        { return c.VisibilityPolicy }
func (c *Config) GetRateLimitPerMinute() int         { return c.RateLimitPerMinute }
func (c *Config) GetLogFormat() string               { return c.LogFormat }
func (c *Config) GetLogLevel() string                { return c.LogLevel }

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		*errs = append(*errs, fmt.Errorf("%s: invalid duration %q", key, v))
		return fallback
	}
	return d
}

func getInt(key string, fallback int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		*errs = append(*errs, fmt.Errorf("%s: invalid positive integer %q", key, v))
		return fallback
	}
	return n
}
