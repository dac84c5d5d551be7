// Package config handles configuration loading for the parley server.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults; the server also runs
// with no config file at all, reading provider keys from the environment.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from PARLEY_CONFIG environment variable
//  2. ./config.yaml (current directory)
//  3. ~/.config/parley/config.yaml
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	providers:
//	  anthropic_api_key: "${ANTHROPIC_API_KEY}"
//
// Syntax: ${VAR_NAME}
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	retention:
//	  sweep_interval: "1h"
//	  max_age: "24h"
//
// Supported units: ns, us, ms, s, m, h
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: "0.0.0.0:8000"
//
// Provider credentials:
//
//	providers:
//	  anthropic_api_key: "${ANTHROPIC_API_KEY}"
//	  openai_api_key: "${OPENAI_API_KEY}"
//
// Browser clients:
//
//	cors:
//	  allowed_origins:
//	    - "http://localhost:3000"
//
// Retention of finished conversations:
//
//	retention:
//	  sweep_interval: "1h"
//	  max_age: "24h"
//
// Per-client rate limits (requests per minute):
//
//	rate_limit:
//	  default: 100
//	  analytics_list: 30
//	  analytics_detail: 10
//	  export: 5
//
// Preset library:
//
//	presets:
//	  path: "./presets.toml"
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Usage
//
// Load configuration from a specific path:
//
//	cfg, err := config.Load("/etc/parley/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Or fall back to environment-only defaults:
//
//	cfg := config.Default()
package config
