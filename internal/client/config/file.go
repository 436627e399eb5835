package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/offsync/internal/timex"
	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape. It is seeded from the current Config, so
// keys missing from the file keep their earlier value.
type fileConfig struct {
	DatabasePath        string         `json:"database_path" yaml:"database_path"`
	RemoteBaseURL       string         `json:"remote_base_url" yaml:"remote_base_url"`
	HealthPath          string         `json:"health_path" yaml:"health_path"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval" yaml:"online_check_interval"`
	RequestTimeout      timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	MaxRetries          int            `json:"max_retries" yaml:"max_retries"`
	CacheMaxAge         timex.Duration `json:"cache_max_age" yaml:"cache_max_age"`
	AssessmentListLimit int            `json:"assessment_list_limit" yaml:"assessment_list_limit"`
	MaxStorageBytes     int64          `json:"max_storage_bytes" yaml:"max_storage_bytes"`
	LogFormat           string         `json:"log_format" yaml:"log_format"`
	LogLevel            string         `json:"log_level" yaml:"log_level"`
}

func toFile(c *Config) fileConfig {
	return fileConfig{
		DatabasePath:        c.DatabasePath,
		RemoteBaseURL:       c.RemoteBaseURL,
		HealthPath:          c.HealthPath,
		OnlineCheckInterval: timex.Duration{Duration: c.OnlineCheckInterval},
		RequestTimeout:      timex.Duration{Duration: c.RequestTimeout},
		MaxRetries:          c.MaxRetries,
		CacheMaxAge:         timex.Duration{Duration: c.CacheMaxAge},
		AssessmentListLimit: c.AssessmentListLimit,
		MaxStorageBytes:     c.MaxStorageBytes,
		LogFormat:           c.LogFormat,
		LogLevel:            c.LogLevel,
	}
}

func (f fileConfig) apply(c *Config) {
	c.DatabasePath = f.DatabasePath
	c.RemoteBaseURL = f.RemoteBaseURL
	c.HealthPath = f.HealthPath
	c.OnlineCheckInterval = f.OnlineCheckInterval.Duration
	c.RequestTimeout = f.RequestTimeout.Duration
	c.MaxRetries = f.MaxRetries
	c.CacheMaxAge = f.CacheMaxAge.Duration
	c.AssessmentListLimit = f.AssessmentListLimit
	c.MaxStorageBytes = f.MaxStorageBytes
	c.LogFormat = f.LogFormat
	c.LogLevel = f.LogLevel
}

// loadFile overlays cfg with the file at path. ".yaml" and ".yml" are read
// as YAML, anything else as JSON.
func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	fc := toFile(cfg)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}
