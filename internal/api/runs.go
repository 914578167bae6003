package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/five82/alfalfa/internal/sim"
)

// Version is the API version served by the REST dialect.
const Version = "v2"

// Ensure Runs implements sim.Backend at compile time.
var _ sim.Backend = (*Runs)(nil)

// Runs is the REST dialect rooted at api/{version}/.
type Runs struct {
	t *Transport
}

// NewRuns builds the REST dialect for host.
func NewRuns(host, version string, opts ...Option) (*Runs, error) {
	if strings.TrimSpace(version) == "" {
		version = Version
	}
	t, err := NewTransport(host, "api/"+version, opts...)
	if err != nil {
		return nil, err
	}
	return &Runs{t: t}, nil
}

// Transport exposes the underlying transport.
func (r *Runs) Transport() *Transport {
	return r.t
}

func runPath(run sim.RunID, parts ...string) string {
	segs := append([]string{"runs", url.PathEscape(string(run))}, parts...)
	return strings.Join(segs, "/")
}

func (r *Runs) run(ctx context.Context, run sim.RunID) (runPayload, error) {
	if err := sim.ValidateRun(run); err != nil {
		return runPayload{}, err
	}
	var payload runPayload
	if err := r.t.Call(ctx, http.MethodGet, runPath(run), nil, &payload); err != nil {
		return runPayload{}, err
	}
	return payload, nil
}

// Status returns the server-reported status of a run.
func (r *Runs) Status(ctx context.Context, run sim.RunID) (string, error) {
	payload, err := r.run(ctx, run)
	if err != nil {
		return "", err
	}
	return payload.Status, nil
}

// ErrorLog returns the error log attached to a failed run.
func (r *Runs) ErrorLog(ctx context.Context, run sim.RunID) (string, error) {
	payload, err := r.run(ctx, run)
	if err != nil {
		return "", err
	}
	return payload.ErrorLog, nil
}

// UploadModel runs the two-step upload: ask for a target, then post the file.
func (r *Runs) UploadModel(ctx context.Context, path string) (sim.ModelID, error) {
	var target uploadPayload
	req := uploadRequest{ModelName: filepath.Base(path)}
	if err := r.t.Call(ctx, http.MethodPost, "models/upload", req, &target); err != nil {
		return "", fmt.Errorf("request upload target: %w", err)
	}
	if target.ModelID == "" {
		return "", sim.NewClientError(sim.KindDecode, "upload target for %s has no model id", req.ModelName)
	}
	if err := r.t.UploadFile(ctx, target.URL, target.Fields, path); err != nil {
		return "", err
	}
	return sim.ModelID(target.ModelID), nil
}

// CreateRun instantiates a run from an uploaded model.
func (r *Runs) CreateRun(ctx context.Context, model sim.ModelID) (sim.RunID, error) {
	if strings.TrimSpace(string(model)) == "" {
		return "", sim.NewClientError(sim.KindInvalidArgument, "model id required")
	}
	var payload createRunPayload
	path := "models/" + url.PathEscape(string(model)) + "/createRun"
	if err := r.t.Call(ctx, http.MethodPost, path, nil, &payload); err != nil {
		return "", err
	}
	if payload.RunID == "" {
		return "", sim.NewClientError(sim.KindDecode, "createRun for model %s returned no run id", model)
	}
	return sim.RunID(payload.RunID), nil
}

// Start asks the server to start a run.
func (r *Runs) Start(ctx context.Context, run sim.RunID, params sim.StartParams) error {
	if err := sim.ValidateRun(run); err != nil {
		return err
	}
	timescale := params.Timescale
	if timescale == 0 {
		timescale = sim.DefaultTimescale
	}
	req := startRequest{
		StartDatetime: params.Start.Format(sim.TimeLayout),
		EndDatetime:   params.End.Format(sim.TimeLayout),
		Timescale:     timescale,
		ExternalClock: params.ExternalClock,
		Realtime:      params.Realtime,
	}
	return r.t.Call(ctx, http.MethodPost, runPath(run, "start"), req, nil)
}

// Stop asks the server to stop a run.
func (r *Runs) Stop(ctx context.Context, run sim.RunID) error {
	if err := sim.ValidateRun(run); err != nil {
		return err
	}
	return r.t.Call(ctx, http.MethodPost, runPath(run, "stop"), nil, nil)
}

// Advance steps an externally clocked run by one timestep.
func (r *Runs) Advance(ctx context.Context, run sim.RunID) error {
	if err := sim.ValidateRun(run); err != nil {
		return err
	}
	return r.t.Call(ctx, http.MethodPost, runPath(run, "advance"), nil, nil)
}

// Remove deletes a run on the server.
func (r *Runs) Remove(ctx context.Context, run sim.RunID) error {
	if err := sim.ValidateRun(run); err != nil {
		return err
	}
	return r.t.Call(ctx, http.MethodDelete, runPath(run), nil, nil)
}

// Points lists the points of a run, optionally filtered by type.
func (r *Runs) Points(ctx context.Context, run sim.RunID, types ...sim.PointType) ([]sim.Point, error) {
	if err := sim.ValidateRun(run); err != nil {
		return nil, err
	}
	var points []sim.Point
	if len(types) == 0 {
		if err := r.t.Call(ctx, http.MethodGet, runPath(run, "points"), nil, &points); err != nil {
			return nil, err
		}
		return points, nil
	}
	req := pointsRequest{PointTypes: types}
	if err := r.t.Call(ctx, http.MethodPost, runPath(run, "points"), req, &points); err != nil {
		return nil, err
	}
	return points, nil
}

// Outputs reads the current values of output and bidirectional points,
// keyed by point id.
func (r *Runs) Outputs(ctx context.Context, run sim.RunID) ([]sim.PointValue, error) {
	if err := sim.ValidateRun(run); err != nil {
		return nil, err
	}
	req := pointsRequest{PointTypes: []sim.PointType{sim.PointOutput, sim.PointBidirectional}}
	var payload map[string]any
	if err := r.t.Call(ctx, http.MethodPost, runPath(run, "points", "values"), req, &payload); err != nil {
		return nil, err
	}
	values := make([]sim.PointValue, 0, len(payload))
	for id, v := range payload {
		values = append(values, sim.PointValue{ID: sim.PointID(id), Value: v})
	}
	return values, nil
}

// WritePoints writes input values by point id in a single request.
func (r *Runs) WritePoints(ctx context.Context, run sim.RunID, writes []sim.PointWrite) error {
	if err := sim.ValidateRun(run); err != nil {
		return err
	}
	req := writeRequest{Points: make(map[sim.PointID]any, len(writes))}
	for _, w := range writes {
		if w.ID == "" {
			return sim.NewClientError(sim.KindInvalidArgument, "write for %q has no point id", w.Name)
		}
		req.Points[w.ID] = w.Value
	}
	return r.t.Call(ctx, http.MethodPut, runPath(run, "points", "values"), req, nil)
}

// SimTime returns the simulation clock of a run.
func (r *Runs) SimTime(ctx context.Context, run sim.RunID) (time.Time, error) {
	if err := sim.ValidateRun(run); err != nil {
		return time.Time{}, err
	}
	var payload timePayload
	if err := r.t.Call(ctx, http.MethodGet, runPath(run, "time"), nil, &payload); err != nil {
		return time.Time{}, err
	}
	return ParseSimTime(payload.Time)
}

// SetAlias binds alias to run. The last write wins.
func (r *Runs) SetAlias(ctx context.Context, alias string, run sim.RunID) error {
	if err := sim.ValidateAlias(alias); err != nil {
		return err
	}
	if err := sim.ValidateRun(run); err != nil {
		return err
	}
	return r.t.Call(ctx, http.MethodPut, "aliases/"+url.PathEscape(alias), aliasRequest{RunID: run}, nil)
}

// Alias resolves alias to the run it is bound to.
func (r *Runs) Alias(ctx context.Context, alias string) (sim.RunID, error) {
	if err := sim.ValidateAlias(alias); err != nil {
		return "", err
	}
	var run sim.RunID
	if err := r.t.Call(ctx, http.MethodGet, "aliases/"+url.PathEscape(alias), nil, &run); err != nil {
		return "", err
	}
	return run, nil
}

// Aliases lists every alias known to the server.
func (r *Runs) Aliases(ctx context.Context) (map[string]sim.RunID, error) {
	aliases := map[string]sim.RunID{}
	if err := r.t.Call(ctx, http.MethodGet, "aliases", nil, &aliases); err != nil {
		return nil, err
	}
	return aliases, nil
}

// ParseSimTime accepts the server's simulation time layouts.
func ParseSimTime(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	for _, layout := range []string{sim.TimeLayout, "2006-01-02T15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, nil
		}
	}
	return time.Time{}, sim.NewClientError(sim.KindDecode, "unrecognized simulation time %q", value)
}
