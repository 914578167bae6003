package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/five82/alfalfa"
	"github.com/five82/alfalfa/internal/state"
)

const (
	defaultPollInterval = 2 * time.Second
	maxBackoff          = 30 * time.Second
)

// Source is the part of the client the watch poller reads from.
type Source interface {
	StatusAll(ctx context.Context, runs []alfalfa.RunID) []alfalfa.Result[string]
	SimTimeAll(ctx context.Context, runs []alfalfa.RunID) []alfalfa.Result[time.Time]
}

// StartPoller launches a background goroutine that refreshes the store. It
// polls at interval while the server answers and backs off exponentially,
// up to maxBackoff, while it does not. It returns immediately.
func StartPoller(ctx context.Context, store *state.Store, src Source, runs []alfalfa.RunID, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	go func() {
		timer := time.NewTimer(interval)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
			refresh(ctx, store, src, runs, logger)
			timer.Reset(calculateBackoff(store.Snapshot().ConsecutiveFailures, interval))
		}
	}()
}

// calculateBackoff doubles base for every consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}

// refresh reads every run once. The store only records a failure when no
// run could be read at all.
func refresh(ctx context.Context, store *state.Store, src Source, ids []alfalfa.RunID, logger *slog.Logger) {
	if len(ids) == 0 {
		store.Update(nil, nil)
		return
	}
	statuses := src.StatusAll(ctx, ids)
	times := src.SimTimeAll(ctx, ids)

	runs := make([]state.Run, len(ids))
	var firstErr error
	failed := 0
	for i, id := range ids {
		runs[i] = state.Run{ID: id, Status: statuses[i].Value, Err: statuses[i].Err}
		if statuses[i].Err != nil {
			failed++
			if firstErr == nil {
				firstErr = statuses[i].Err
			}
			continue
		}
		if times[i].Err == nil {
			runs[i].SimTime = times[i].Value
		}
	}

	if failed == len(ids) {
		if logger == nil {
			logger = slog.New(slog.DiscardHandler)
		}
		logger.Warn("watch poll failed", slog.String("error", firstErr.Error()))
		store.Update(nil, firstErr)
		return
	}
	store.Update(runs, nil)
}
