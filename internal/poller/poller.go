package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/five82/alfalfa/internal/sim"
)

const (
	DefaultTimeout  = 600 * time.Second
	DefaultInterval = 2 * time.Second
)

// Source is what the poller needs from a backend.
type Source interface {
	Status(ctx context.Context, run sim.RunID) (string, error)
	ErrorLog(ctx context.Context, run sim.RunID) (string, error)
}

// Options tunes a wait. Zero values select the defaults.
type Options struct {
	Timeout  time.Duration
	Interval time.Duration
	Logger   *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// Wait blocks until run reports desired. It returns a *sim.SimulationError
// as soon as the run reports the error status, and a timeout ClientError
// naming both statuses once opts.Timeout has elapsed. A 404 means the run is
// not visible yet and is retried. The sleep between polls is the only point
// where ctx cancellation is observed outside of the status request itself.
func Wait(ctx context.Context, src Source, run sim.RunID, desired string, opts Options) error {
	if err := sim.ValidateRun(run); err != nil {
		return err
	}
	opts = opts.withDefaults()
	logger := opts.Logger.With(slog.String("run", string(run)), slog.String("desired", desired))

	start := time.Now()
	current := "unknown"
	timer := time.NewTimer(opts.Interval)
	defer timer.Stop()

	for {
		status, err := src.Status(ctx, run)
		switch {
		case err == nil:
			if !sim.SameStatus(status, current) {
				logger.Info("run status changed", slog.String("from", current), slog.String("status", status))
				current = status
			}
			if sim.SameStatus(status, sim.StatusError) {
				return simulationError(ctx, src, run)
			}
			if sim.SameStatus(status, desired) {
				return nil
			}
		case sim.IsNotFound(err):
			logger.Debug("run not visible yet")
		default:
			return err
		}

		if time.Since(start) >= opts.Timeout {
			return sim.NewClientError(sim.KindTimeout,
				"'wait' timed out waiting for status: '%s', current status: '%s'", desired, current)
		}

		timer.Reset(opts.Interval)
		select {
		case <-ctx.Done():
			kind := sim.KindCanceled
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				kind = sim.KindTimeout
			}
			return &sim.ClientError{
				Kind:    kind,
				Message: fmt.Sprintf("wait for %s on run %s interrupted at status %s", desired, run, current),
				Err:     ctx.Err(),
			}
		case <-timer.C:
		}
	}
}

func simulationError(ctx context.Context, src Source, run sim.RunID) error {
	log, err := src.ErrorLog(ctx, run)
	if err != nil {
		return &sim.SimulationError{RunID: run, Err: err}
	}
	return &sim.SimulationError{RunID: run, Log: log}
}
