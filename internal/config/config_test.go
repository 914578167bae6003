package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolate points HOME and the .env lookup at a temp dir and clears overrides.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{EnvHost, EnvAPIVersion, EnvWorkers, EnvWaitTimeout} {
		t.Setenv(key, "")
	}
	prev := DotEnvFile
	DotEnvFile = filepath.Join(home, ".env")
	t.Cleanup(func() { DotEnvFile = prev })
	return home
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("cfg = %#v, want defaults %#v", cfg, Default())
	}
}

func TestLoad_ParsesTOML(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
host = "  http://sim.example.com:8080  "
api_version = "v1"
workers = 4
wait_timeout = "15m"
poll_interval = "500ms"
retries = 3
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Host != "http://sim.example.com:8080" {
		t.Fatalf("Host = %q", cfg.Host)
	}
	if cfg.APIVersion != "v1" || cfg.Workers != 4 || cfg.Retries != 3 {
		t.Fatalf("cfg = %#v", cfg)
	}
	if cfg.WaitTimeout != 15*time.Minute || cfg.PollInterval != 500*time.Millisecond {
		t.Fatalf("durations = %v / %v", cfg.WaitTimeout, cfg.PollInterval)
	}
	if cfg.RequestTimeout != defaultRequestTimeout {
		t.Fatalf("RequestTimeout = %v, want default", cfg.RequestTimeout)
	}
}

func TestLoad_ParsesYAML(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "alfalfa.yaml")
	if err := os.WriteFile(path, []byte("host: localhost:8000\nwait_timeout: 120\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Host != "localhost:8000" {
		t.Fatalf("Host = %q, want localhost:8000", cfg.Host)
	}
	if cfg.WaitTimeout != 2*time.Minute {
		t.Fatalf("WaitTimeout = %v, want 2m", cfg.WaitTimeout)
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
host = "   "
api_version = ""
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Host != defaultHost || cfg.APIVersion != defaultAPIVersion {
		t.Fatalf("cfg = %#v, want defaults", cfg)
	}
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`host = "file-host"`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv(EnvHost, "env-host")
	t.Setenv(EnvWorkers, "3")
	t.Setenv(EnvWaitTimeout, "90s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Host != "env-host" || cfg.Workers != 3 || cfg.WaitTimeout != 90*time.Second {
		t.Fatalf("cfg = %#v", cfg)
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	home := isolate(t)
	// godotenv sets variables with os.Setenv; restore them after the test.
	t.Setenv(EnvAPIVersion, "")
	if err := os.Unsetenv(EnvAPIVersion); err != nil {
		t.Fatalf("Unsetenv: %v", err)
	}

	if err := os.WriteFile(filepath.Join(home, ".env"), []byte("ALFALFA_API_VERSION=v1\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(filepath.Join(home, "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIVersion != "v1" {
		t.Fatalf("APIVersion = %q, want v1 from .env", cfg.APIVersion)
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`wait_timeout = "soon"`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for bad duration")
	}

	t.Setenv(EnvWorkers, "zero")
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected error for bad %s", EnvWorkers)
	}
}

func TestExpandPath_Tilde(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ExpandPath("~/.config/alfalfa/config.toml")
	if err != nil {
		t.Fatalf("ExpandPath returned error: %v", err)
	}
	if want := filepath.Join(home, ".config/alfalfa/config.toml"); got != want {
		t.Fatalf("ExpandPath = %q, want %q", got, want)
	}
	if _, err := ExpandPath("  "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestParseDuration(t *testing.T) {
	tests := map[string]time.Duration{
		"600":  600 * time.Second,
		"1.5":  1500 * time.Millisecond,
		"10m":  10 * time.Minute,
		" 2s ": 2 * time.Second,
	}
	for in, want := range tests {
		got, err := parseDuration(in)
		if err != nil {
			t.Fatalf("parseDuration(%q) returned error: %v", in, err)
		}
		if got != want {
			t.Fatalf("parseDuration(%q) = %v, want %v", in, got, want)
		}
	}
	for _, bad := range []string{"0", "-1s", "later"} {
		if _, err := parseDuration(bad); err == nil {
			t.Fatalf("parseDuration(%q) should fail", bad)
		}
	}
}
