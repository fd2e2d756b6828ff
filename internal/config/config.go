// Package config loads service configuration from the environment, after
// first reading an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the complete service configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Logging  LoggingConfig
	Pipeline PipelineConfig
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigins  []string
}

// DatabaseConfig configures the catalog database
type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// CacheConfig configures the Redis series cache
type CacheConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// LoggingConfig configures the structured logger
type LoggingConfig struct {
	Level  string
	Format string
}

// PipelineConfig holds request defaults
type PipelineConfig struct {
	DefaultCupSizeDays         int
	DefaultAggregationFunction string
}

// LoadConfig reads ENV_FILE (default .env) if present, then the environment
func LoadConfig() (*Config, error) {
	envFile := getenv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	p := &parser{}
	cfg := &Config{
		Server: ServerConfig{
			Host:         getenv("SERVER_HOST", "0.0.0.0"),
			Port:         p.intVar("SERVER_PORT", 8080),
			ReadTimeout:  p.durationVar("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: p.durationVar("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  p.durationVar("SERVER_IDLE_TIMEOUT", 60*time.Second),
			CORSOrigins:  splitList(getenv("CORS_ALLOWED_ORIGINS", "*")),
		},
		Database: DatabaseConfig{
			Driver:          getenv("DB_DRIVER", "postgres"),
			Host:            getenv("DB_HOST", "localhost"),
			Port:            p.intVar("DB_PORT", 5432),
			User:            getenv("DB_USER", "climate"),
			Password:        os.Getenv("DB_PASSWORD"),
			Database:        getenv("DB_NAME", "climate"),
			SSLMode:         getenv("DB_SSLMODE", "disable"),
			Path:            getenv("DB_PATH", "climate.db"),
			MaxOpenConns:    p.intVar("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    p.intVar("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: p.durationVar("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime: p.durationVar("DB_CONN_MAX_IDLE_TIME", time.Minute),
		},
		Cache: CacheConfig{
			Enabled:  p.boolVar("CACHE_ENABLED", false),
			Addr:     getenv("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       p.intVar("REDIS_DB", 0),
			TTL:      p.durationVar("CACHE_TTL", time.Hour),
		},
		Logging: LoggingConfig{
			Level:  strings.ToLower(getenv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getenv("LOG_FORMAT", "json")),
		},
		Pipeline: PipelineConfig{
			DefaultCupSizeDays:         p.intVar("PIPELINE_DEFAULT_CUP_SIZE_DAYS", 14),
			DefaultAggregationFunction: getenv("PIPELINE_DEFAULT_AGGREGATION", "Mean"),
		},
	}

	if len(p.errs) > 0 {
		return nil, errors.Join(p.errs...)
	}
	return cfg, nil
}

// Validate checks ranges and enumerations
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("SERVER_PORT %d out of range", c.Server.Port))
	}

	switch c.Database.Driver {
	case "postgres":
		if c.Database.Host == "" || c.Database.Database == "" {
			errs = append(errs, errors.New("DB_HOST and DB_NAME are required for postgres"))
		}
	case "sqlite3":
		if c.Database.Path == "" {
			errs = append(errs, errors.New("DB_PATH is required for sqlite3"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid DB_DRIVER %q (allowed: postgres, sqlite3)", c.Database.Driver))
	}
	if c.Database.MaxOpenConns < 1 {
		errs = append(errs, errors.New("DB_MAX_OPEN_CONNS must be positive"))
	}

	if c.Cache.Enabled && c.Cache.Addr == "" {
		errs = append(errs, errors.New("REDIS_ADDR is required when CACHE_ENABLED is set"))
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("invalid LOG_FORMAT %q (allowed: json, text)", c.Logging.Format))
	}

	if c.Pipeline.DefaultCupSizeDays < 1 {
		errs = append(errs, errors.New("PIPELINE_DEFAULT_CUP_SIZE_DAYS must be at least 1"))
	}

	return errors.Join(errs...)
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parser collects every malformed variable instead of stopping at the first
type parser struct {
	errs []error
}

func (p *parser) intVar(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid %s %q: expected an integer", k, v))
		return def
	}
	return n
}

func (p *parser) boolVar(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid %s %q: expected true or false", k, v))
		return def
	}
	return b
}

func (p *parser) durationVar(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid %s %q: expected a duration such as 30s", k, v))
		return def
	}
	return d
}
