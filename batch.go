package alfalfa

import (
	"context"
	"time"

	"github.com/five82/alfalfa/internal/fanout"
)

// The Many variants apply the single-run operation to every run with at most
// WithWorkers calls in flight. Results line up with the input. The first
// failure cancels the rest and is returned as an *ItemError naming the run.

// StatusMany returns the status of every run.
func (c *Client) StatusMany(ctx context.Context, runs []RunID) ([]string, error) {
	return fanout.Map(ctx, runs, c.cfg.workers, c.Status)
}

// WaitMany waits for every run to reach desired.
func (c *Client) WaitMany(ctx context.Context, runs []RunID, desired string, opts ...ActionOption) error {
	return fanout.Each(ctx, runs, c.cfg.workers, func(ctx context.Context, run RunID) error {
		return c.Wait(ctx, run, desired, opts...)
	})
}

// SubmitMany submits every model and returns the runs in input order.
func (c *Client) SubmitMany(ctx context.Context, paths []string, opts ...ActionOption) ([]RunID, error) {
	return fanout.Map(ctx, paths, c.cfg.workers, func(ctx context.Context, path string) (RunID, error) {
		return c.Submit(ctx, path, opts...)
	})
}

// StartMany starts every run with the same parameters.
func (c *Client) StartMany(ctx context.Context, runs []RunID, params StartParams, opts ...ActionOption) error {
	return fanout.Each(ctx, runs, c.cfg.workers, func(ctx context.Context, run RunID) error {
		return c.Start(ctx, run, params, opts...)
	})
}

// StopMany stops every run.
func (c *Client) StopMany(ctx context.Context, runs []RunID, opts ...ActionOption) error {
	return fanout.Each(ctx, runs, c.cfg.workers, func(ctx context.Context, run RunID) error {
		return c.Stop(ctx, run, opts...)
	})
}

// AdvanceMany advances every run by one timestep.
func (c *Client) AdvanceMany(ctx context.Context, runs []RunID) error {
	return fanout.Each(ctx, runs, c.cfg.workers, c.Advance)
}

// SimTimeMany returns the simulation clock of every run.
func (c *Client) SimTimeMany(ctx context.Context, runs []RunID) ([]time.Time, error) {
	return fanout.Map(ctx, runs, c.cfg.workers, c.SimTime)
}

// SetInputsMany writes the same inputs to every run.
func (c *Client) SetInputsMany(ctx context.Context, runs []RunID, inputs map[string]any) error {
	return fanout.Each(ctx, runs, c.cfg.workers, func(ctx context.Context, run RunID) error {
		return c.SetInputs(ctx, run, inputs)
	})
}

// StatusAll reports the status of every run without stopping at the first
// failure.
func (c *Client) StatusAll(ctx context.Context, runs []RunID) []Result[string] {
	return fanout.Settle(ctx, runs, c.cfg.workers, c.Status)
}

// SimTimeAll reports the simulation clock of every run without stopping at
// the first failure.
func (c *Client) SimTimeAll(ctx context.Context, runs []RunID) []Result[time.Time] {
	return fanout.Settle(ctx, runs, c.cfg.workers, c.SimTime)
}
