// Package config loads the CLI's connection settings.
//
// # Resolution Order
//
//  1. Built-in defaults (Default)
//  2. The config file: the path given, or ~/.config/alfalfa/config.toml
//  3. A .env file in the working directory (existing variables win)
//  4. ALFALFA_HOST, ALFALFA_API_VERSION, ALFALFA_WORKERS, ALFALFA_WAIT_TIMEOUT
//
// A missing config file is not an error.
//
// # Formats
//
// Files ending in .yaml or .yml are parsed as YAML, anything else as TOML.
// Both use the same keys:
//
//	host = "http://localhost"
//	api_version = "v2"
//	workers = 10
//	wait_timeout = "10m"
//	poll_interval = "2s"
//	request_timeout = "30s"
//	retries = 3
//
// Durations accept Go duration strings or a number of seconds.
package config
