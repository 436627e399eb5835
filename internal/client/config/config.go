package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/offsync/internal/logging"
)

// Config holds runtime settings for the offsync CLI.
//
// Durations are time.Duration; in files they are written as "3s" or as
// integer nanoseconds.
type Config struct {
	DatabasePath        string
	RemoteBaseURL       string
	HealthPath          string
	OnlineCheckInterval time.Duration
	RequestTimeout      time.Duration
	MaxRetries          int
	CacheMaxAge         time.Duration
	AssessmentListLimit int
	MaxStorageBytes     int64
	LogFormat           string
	LogLevel            string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "offsync.db"
	c.RemoteBaseURL = "http://127.0.0.1:8080"
	c.HealthPath = "/api/health"
	c.OnlineCheckInterval = 3 * time.Second
	c.RequestTimeout = 30 * time.Second
	c.MaxRetries = 3
	c.CacheMaxAge = 24 * time.Hour
	c.AssessmentListLimit = 50
	c.MaxStorageBytes = 0
	c.LogFormat = "text"
	c.LogLevel = "info"
}

// LoadConfig builds a Config from defaults and, when path is not empty, the
// JSON or YAML file at path. Command-line flags are applied by the caller.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Validate reports settings the engine cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("database path is empty"))
	}
	if c.RemoteBaseURL == "" {
		errs = append(errs, errors.New("remote base url is empty"))
	}
	if c.OnlineCheckInterval <= 0 {
		errs = append(errs, fmt.Errorf("online check interval must be positive, got %s", c.OnlineCheckInterval))
	}
	if c.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("request timeout must not be negative, got %s", c.RequestTimeout))
	}
	if c.MaxRetries <= 0 {
		errs = append(errs, fmt.Errorf("max retries must be positive, got %d", c.MaxRetries))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.MaxStorageBytes < 0 {
		errs = append(errs, fmt.Errorf("max storage bytes must not be negative, got %d", c.MaxStorageBytes))
	}
	return errors.Join(errs...)
}
