// Package config loads runtime configuration for the offsync CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file passed with --config. Files ending in .yaml or
//     .yml are YAML, anything else is JSON.
//  3. Command-line flags, applied by the cli package on top.
//
// # File schema
//
// Intervals use timex.Duration, so values can be strings like "3s" or
// integer nanoseconds:
//
//	{
//	  "database_path": "offsync.db",
//	  "remote_base_url": "http://127.0.0.1:8080",
//	  "online_check_interval": "3s",
//	  "request_timeout": "30s",
//	  "max_retries": 3,
//	  "cache_max_age": "24h"
//	}
//
// Environment variables are not read.
package config
