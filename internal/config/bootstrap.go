package config

import (
	"climate-platform/pkg/cache"
	"climate-platform/pkg/database"
	"climate-platform/pkg/logging"
)

// NewLogger builds a logger for service using the configured level and format
func (c *Config) NewLogger(service, version string) *logging.StructuredLogger {
	level, err := logging.ParseLevel(c.Logging.Level)
	if err != nil {
		level = logging.InfoLevel
	}
	logger := logging.NewStructuredLogger(service, version, level)
	if c.Logging.Format == string(logging.FormatText) {
		logger.SetFormat(logging.FormatText)
	}
	return logger
}

// DatabaseConnection converts the database section for database.Open
func (c *Config) DatabaseConnection() *database.Config {
	return &database.Config{
		Driver:          c.Database.Driver,
		Host:            c.Database.Host,
		Port:            c.Database.Port,
		User:            c.Database.User,
		Password:        c.Database.Password,
		Database:        c.Database.Database,
		SSLMode:         c.Database.SSLMode,
		Path:            c.Database.Path,
		MaxOpenConns:    c.Database.MaxOpenConns,
		MaxIdleConns:    c.Database.MaxIdleConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
		ConnMaxIdleTime: c.Database.ConnMaxIdleTime,
	}
}

// CacheConnection converts the cache section for cache.New
func (c *Config) CacheConnection() cache.Config {
	return cache.Config{
		Addr:     c.Cache.Addr,
		Password: c.Cache.Password,
		DB:       c.Cache.DB,
		TTL:      c.Cache.TTL,
		Prefix:   "climate:",
	}
}
