package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/five82/alfalfa"
	"github.com/five82/alfalfa/internal/state"
	"github.com/five82/alfalfa/internal/ui"
)

// Options configure the watch dashboard.
type Options struct {
	Client    *alfalfa.Client
	Runs      []alfalfa.RunID
	Host      string
	PollEvery time.Duration // zero uses default
	ThemeName string
	PrefsPath string // empty uses default ~/.config/alfalfa/prefs.toml
	Logger    *slog.Logger
}

// Run boots the watch TUI until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	if opts.Client == nil {
		return errors.New("watch requires a client")
	}
	if len(opts.Runs) == 0 {
		return errors.New("no runs to watch")
	}

	store := &state.Store{}

	interval := defaultPollInterval
	if opts.PollEvery > 0 {
		interval = opts.PollEvery
	}

	// Populate the store before the first frame.
	refresh(ctx, store, opts.Client, opts.Runs, opts.Logger)

	StartPoller(ctx, store, opts.Client, opts.Runs, interval, opts.Logger)

	return ui.Run(ui.Options{
		Context:   ctx,
		Store:     store,
		Host:      opts.Host,
		PollTick:  interval,
		ThemeName: opts.ThemeName,
		PrefsPath: opts.PrefsPath,
	})
}
