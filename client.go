package alfalfa

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/five82/alfalfa/internal/api"
	"github.com/five82/alfalfa/internal/legacy"
	"github.com/five82/alfalfa/internal/model"
	"github.com/five82/alfalfa/internal/points"
	"github.com/five82/alfalfa/internal/poller"
	"github.com/five82/alfalfa/internal/sim"
)

// Client drives runs on one server. It is safe for concurrent use.
type Client struct {
	backend sim.Backend
	points  *points.Cache
	logger  *slog.Logger
	cfg     settings
}

// New returns a Client for host. An empty host means http://localhost.
func New(host string, opts ...Option) (*Client, error) {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}

	transportOpts := []api.Option{
		api.WithTimeout(cfg.requestTimeout),
		api.WithLogger(cfg.logger),
		api.WithUserAgent(cfg.userAgent),
	}
	if cfg.httpClient != nil {
		transportOpts = append(transportOpts, api.WithHTTPClient(cfg.httpClient))
	}

	var (
		backend sim.Backend
		err     error
	)
	if strings.EqualFold(cfg.apiVersion, LegacyAPIVersion) {
		backend, err = legacy.NewSites(host, transportOpts...)
	} else {
		backend, err = api.NewRuns(host, cfg.apiVersion, transportOpts...)
	}
	if err != nil {
		return nil, err
	}
	return newClient(backend, cfg), nil
}

func newClient(backend sim.Backend, cfg settings) *Client {
	return &Client{
		backend: backend,
		points:  points.New(backend, cfg.logger),
		logger:  cfg.logger,
		cfg:     cfg,
	}
}

// APIVersion reports the dialect the client speaks.
func (c *Client) APIVersion() string {
	return c.cfg.apiVersion
}

// Status returns the current status of run as reported by the server.
func (c *Client) Status(ctx context.Context, run RunID) (string, error) {
	return retry(ctx, c, "status", func() (string, error) {
		return c.backend.Status(ctx, run)
	})
}

// ErrorLog returns the error log of a failed run.
func (c *Client) ErrorLog(ctx context.Context, run RunID) (string, error) {
	return retry(ctx, c, "error log", func() (string, error) {
		return c.backend.ErrorLog(ctx, run)
	})
}

// Wait blocks until run reaches desired. See the package documentation for
// the errors it returns.
func (c *Client) Wait(ctx context.Context, run RunID, desired string, opts ...ActionOption) error {
	a := c.action(opts)
	return c.wait(ctx, run, desired, a.timeout)
}

func (c *Client) wait(ctx context.Context, run RunID, desired string, timeout time.Duration) error {
	return poller.Wait(ctx, c.backend, run, desired, poller.Options{
		Timeout:  timeout,
		Interval: c.cfg.pollInterval,
		Logger:   c.logger,
	})
}

// UploadModel uploads a model file, zipping it first when path is a directory.
func (c *Client) UploadModel(ctx context.Context, path string) (ModelID, error) {
	file, cleanup, err := model.Prepare(path)
	if err != nil {
		return "", &ClientError{Kind: KindInvalidArgument, Message: fmt.Sprintf("prepare model %q", path), Err: err}
	}
	defer cleanup()
	id, err := c.backend.UploadModel(ctx, file)
	if err != nil {
		return "", err
	}
	c.logger.Info("model uploaded", slog.String("path", path), slog.String("model", string(id)))
	return id, nil
}

// CreateRun instantiates a run from an uploaded model and, unless NoWait is
// given, waits for it to become ready.
func (c *Client) CreateRun(ctx context.Context, m ModelID, opts ...ActionOption) (RunID, error) {
	run, err := c.backend.CreateRun(ctx, m)
	if err != nil {
		return "", err
	}
	if a := c.action(opts); a.wait {
		if err := c.wait(ctx, run, StatusReady, a.timeout); err != nil {
			return run, err
		}
	}
	return run, nil
}

// Submit uploads a model and creates a run from it.
func (c *Client) Submit(ctx context.Context, path string, opts ...ActionOption) (RunID, error) {
	m, err := c.UploadModel(ctx, path)
	if err != nil {
		return "", err
	}
	return c.CreateRun(ctx, m, opts...)
}

// Start starts run and, unless NoWait is given, waits for it to be running.
func (c *Client) Start(ctx context.Context, run RunID, params StartParams, opts ...ActionOption) error {
	if !params.End.IsZero() && params.End.Before(params.Start) {
		return NewClientError(KindInvalidArgument, "end %s is before start %s",
			params.End.Format(sim.TimeLayout), params.Start.Format(sim.TimeLayout))
	}
	if params.Timescale < 0 {
		return NewClientError(KindInvalidArgument, "timescale must be positive, got %v", params.Timescale)
	}
	if err := c.backend.Start(ctx, run, params); err != nil {
		return err
	}
	if a := c.action(opts); a.wait {
		return c.wait(ctx, run, StatusRunning, a.timeout)
	}
	return nil
}

// Stop stops run and, unless NoWait is given, waits for it to complete.
func (c *Client) Stop(ctx context.Context, run RunID, opts ...ActionOption) error {
	if err := c.backend.Stop(ctx, run); err != nil {
		return err
	}
	if a := c.action(opts); a.wait {
		return c.wait(ctx, run, StatusComplete, a.timeout)
	}
	return nil
}

// Advance steps an externally clocked run by one timestep.
func (c *Client) Advance(ctx context.Context, run RunID) error {
	return c.backend.Advance(ctx, run)
}

// Remove deletes run on the server and drops its cached points.
func (c *Client) Remove(ctx context.Context, run RunID) error {
	if err := c.backend.Remove(ctx, run); err != nil {
		return err
	}
	c.points.Forget(run)
	return nil
}

// Points lists the points of run. No types means every point.
func (c *Client) Points(ctx context.Context, run RunID, types ...PointType) ([]Point, error) {
	return retry(ctx, c, "points", func() ([]Point, error) {
		return c.backend.Points(ctx, run, types...)
	})
}

// Inputs returns the names of the points of run that accept writes.
func (c *Client) Inputs(ctx context.Context, run RunID) ([]string, error) {
	pts, err := c.Points(ctx, run, PointInput, PointBidirectional)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(pts))
	for _, pt := range pts {
		if pt.Name != "" {
			names = append(names, pt.Name)
		}
	}
	return names, nil
}

// Outputs returns the current values of the readable points of run, keyed by
// point name.
func (c *Client) Outputs(ctx context.Context, run RunID) (map[string]any, error) {
	values, err := retry(ctx, c, "outputs", func() ([]PointValue, error) {
		return c.backend.Outputs(ctx, run)
	})
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(values))
	for _, v := range values {
		name := v.Name
		if name == "" {
			if name, err = c.points.Name(ctx, run, v.ID); err != nil {
				return nil, err
			}
		}
		out[name] = v.Value
	}
	return out, nil
}

// SetInputs writes input values by point name. A nil value releases the
// point back to the simulation. Every name is resolved before anything is
// written; an unknown name fails the whole call. With no inputs it only
// checks that run exists.
func (c *Client) SetInputs(ctx context.Context, run RunID, inputs map[string]any) error {
	if err := sim.ValidateRun(run); err != nil {
		return err
	}
	if len(inputs) == 0 {
		_, err := c.Status(ctx, run)
		return err
	}
	names := make([]string, 0, len(inputs))
	for name := range inputs {
		names = append(names, name)
	}
	slices.Sort(names)

	writes := make([]sim.PointWrite, 0, len(names))
	for _, name := range names {
		id, err := c.points.ID(ctx, run, name)
		if err != nil {
			return err
		}
		writes = append(writes, sim.PointWrite{ID: id, Name: name, Value: inputs[name]})
	}
	return c.backend.WritePoints(ctx, run, writes)
}

// SimTime returns the simulation clock of run.
func (c *Client) SimTime(ctx context.Context, run RunID) (time.Time, error) {
	return retry(ctx, c, "sim time", func() (time.Time, error) {
		return c.backend.SimTime(ctx, run)
	})
}

// SetAlias binds alias to run, replacing any previous binding. Points
// cached under the alias belong to the old run and are dropped.
func (c *Client) SetAlias(ctx context.Context, alias string, run RunID) error {
	if err := c.backend.SetAlias(ctx, alias, run); err != nil {
		return err
	}
	c.points.Forget(RunID(alias))
	return nil
}

// Alias returns the run bound to alias.
func (c *Client) Alias(ctx context.Context, alias string) (RunID, error) {
	return retry(ctx, c, "alias", func() (RunID, error) {
		return c.backend.Alias(ctx, alias)
	})
}

// Aliases lists every alias on the server.
func (c *Client) Aliases(ctx context.Context) (map[string]RunID, error) {
	return retry(ctx, c, "aliases", func() (map[string]RunID, error) {
		return c.backend.Aliases(ctx)
	})
}

// retry runs fn once, or under the configured backoff policy when retries are
// enabled. Only transient errors are retried.
func retry[T any](ctx context.Context, c *Client, op string, fn func() (T, error)) (T, error) {
	if c.cfg.retryTries <= 1 {
		return fn()
	}
	b := backoff.NewExponentialBackOff()
	if c.cfg.retryInterval > 0 {
		b.InitialInterval = c.cfg.retryInterval
	}
	return backoff.Retry(ctx, func() (T, error) {
		v, err := fn()
		if err != nil && !sim.IsTransient(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(c.cfg.retryTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.logger.Warn("retrying after transient failure",
				slog.String("op", op),
				slog.Duration("next", next),
				slog.String("error", err.Error()))
		}),
	)
}
