package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds the connection and wait settings used by the CLI.
type Config struct {
	Host           string
	APIVersion     string
	Workers        int
	WaitTimeout    time.Duration
	PollInterval   time.Duration
	RequestTimeout time.Duration
	Retries        uint
}

const (
	defaultConfigPath     = "~/.config/alfalfa/config.toml"
	defaultHost           = "http://localhost"
	defaultAPIVersion     = "v2"
	defaultWorkers        = 10
	defaultWaitTimeout    = 600 * time.Second
	defaultPollInterval   = 2 * time.Second
	defaultRequestTimeout = 30 * time.Second
)

// Environment overrides, applied after the file.
const (
	EnvHost        = "ALFALFA_HOST"
	EnvAPIVersion  = "ALFALFA_API_VERSION"
	EnvWorkers     = "ALFALFA_WORKERS"
	EnvWaitTimeout = "ALFALFA_WAIT_TIMEOUT"
)

// DotEnvFile is read from the working directory, when present, before the
// environment overrides are applied. Variables already set win.
var DotEnvFile = ".env"

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Host:           defaultHost,
		APIVersion:     defaultAPIVersion,
		Workers:        defaultWorkers,
		WaitTimeout:    defaultWaitTimeout,
		PollInterval:   defaultPollInterval,
		RequestTimeout: defaultRequestTimeout,
	}
}

// fileConfig is the on-disk shape shared by the TOML and YAML formats.
// Durations are Go duration strings ("10m") or plain seconds ("600").
type fileConfig struct {
	Host           string `toml:"host" yaml:"host"`
	APIVersion     string `toml:"api_version" yaml:"api_version"`
	Workers        int    `toml:"workers" yaml:"workers"`
	WaitTimeout    string `toml:"wait_timeout" yaml:"wait_timeout"`
	PollInterval   string `toml:"poll_interval" yaml:"poll_interval"`
	RequestTimeout string `toml:"request_timeout" yaml:"request_timeout"`
	Retries        uint   `toml:"retries" yaml:"retries"`
}

// Load reads the config file at path (the default location when empty),
// falling back to defaults when it is missing, then applies .env and
// environment overrides.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	switch {
	case err == nil:
		defer file.Close()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		raw, err := decode(resolved, bytes)
		if err != nil {
			return Config{}, err
		}
		if err := cfg.merge(raw); err != nil {
			return Config{}, err
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("open config: %w", err)
	}

	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(path string, bytes []byte) (fileConfig, error) {
	var raw fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(bytes, &raw); err != nil {
			return fileConfig{}, fmt.Errorf("parse config: %w", err)
		}
	default:
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return fileConfig{}, fmt.Errorf("parse config: %w", err)
		}
	}
	return raw, nil
}

func (c *Config) merge(raw fileConfig) error {
	if v := strings.TrimSpace(raw.Host); v != "" {
		c.Host = v
	}
	if v := strings.TrimSpace(raw.APIVersion); v != "" {
		c.APIVersion = v
	}
	if raw.Workers > 0 {
		c.Workers = raw.Workers
	}
	if raw.Retries > 0 {
		c.Retries = raw.Retries
	}
	for _, d := range []struct {
		name string
		raw  string
		dest *time.Duration
	}{
		{"wait_timeout", raw.WaitTimeout, &c.WaitTimeout},
		{"poll_interval", raw.PollInterval, &c.PollInterval},
		{"request_timeout", raw.RequestTimeout, &c.RequestTimeout},
	} {
		if strings.TrimSpace(d.raw) == "" {
			continue
		}
		parsed, err := parseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("parse %s: %w", d.name, err)
		}
		*d.dest = parsed
	}
	return nil
}

func loadDotEnv() error {
	if DotEnvFile == "" {
		return nil
	}
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", DotEnvFile, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv(EnvHost)); v != "" {
		c.Host = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAPIVersion)); v != "" {
		c.APIVersion = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvWorkers)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("%s must be a positive integer, got %q", EnvWorkers, v)
		}
		c.Workers = n
	}
	if v := strings.TrimSpace(os.Getenv(EnvWaitTimeout)); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWaitTimeout, err)
		}
		c.WaitTimeout = d
	}
	return nil
}

// parseDuration accepts "90s"-style durations and bare seconds.
func parseDuration(value string) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if secs, err := strconv.ParseFloat(trimmed, 64); err == nil {
		if secs <= 0 {
			return 0, fmt.Errorf("duration must be positive, got %q", value)
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %q", value)
	}
	return d, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return ExpandPath(defaultConfigPath)
	}
	return ExpandPath(path)
}

// ExpandPath resolves a leading ~ and makes path absolute.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
