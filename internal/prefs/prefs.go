// Package prefs keeps the per-user state of the alfalfa CLI: the dashboard
// theme and the runs recently submitted from this machine. It lives in
// ~/.config/alfalfa/prefs.toml unless --prefs names another file.
package prefs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Prefs holds user preferences for the CLI.
type Prefs struct {
	Theme string `toml:"theme"`
	// RecentRuns lists runs submitted from this machine, newest first.
	RecentRuns []string `toml:"recent_runs"`
}

const (
	defaultPrefsPath = "~/.config/alfalfa/prefs.toml"
	defaultTheme     = "Nightfox"

	// MaxRecentRuns bounds RecentRuns.
	MaxRecentRuns = 20
)

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Load reads the theme and recent runs stored at path. A missing file yields
// the defaults and no error. An unreadable or malformed file also yields the
// defaults, together with an error, so callers can keep going without writing
// over a file they could not parse.
func Load(path string) (Prefs, error) {
	p := Prefs{Theme: defaultTheme}
	resolved, err := resolvePath(path)
	if err != nil {
		return p, fmt.Errorf("locate prefs: %w", err)
	}

	data, err := os.ReadFile(resolved)
	if errors.Is(err, fs.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("read prefs %s: %w", resolved, err)
	}
	if err := toml.Unmarshal(data, &p); err != nil {
		return Prefs{Theme: defaultTheme}, fmt.Errorf("parse prefs %s: %w", resolved, err)
	}

	if strings.TrimSpace(p.Theme) == "" {
		p.Theme = defaultTheme
	}
	// Hand edits may leave blanks, duplicates or an overlong list.
	p.RememberRuns()
	return p, nil
}

// Save stores p at path, creating the directory if needed. The file is
// replaced atomically so a concurrent Load never sees half a recent-runs list.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("locate prefs: %w", err)
	}
	data, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode prefs: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".prefs-*.toml")
	if err != nil {
		return fmt.Errorf("save prefs %s: %w", resolved, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("save prefs %s: %w", resolved, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save prefs %s: %w", resolved, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("save prefs %s: %w", resolved, err)
	}
	if err := os.Rename(tmp.Name(), resolved); err != nil {
		return fmt.Errorf("save prefs %s: %w", resolved, err)
	}
	return nil
}

// RememberRuns moves runs to the front of RecentRuns, dropping duplicates and
// anything past MaxRecentRuns.
func (p *Prefs) RememberRuns(runs ...string) {
	next := make([]string, 0, len(runs)+len(p.RecentRuns))
	for _, r := range slices.Concat(runs, p.RecentRuns) {
		r = strings.TrimSpace(r)
		if r == "" || slices.Contains(next, r) {
			continue
		}
		next = append(next, r)
	}
	if len(next) > MaxRecentRuns {
		next = next[:MaxRecentRuns]
	}
	p.RecentRuns = next
}

// ForgetRun removes run from RecentRuns.
func (p *Prefs) ForgetRun(run string) {
	p.RecentRuns = slices.DeleteFunc(p.RecentRuns, func(r string) bool { return r == run })
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
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
