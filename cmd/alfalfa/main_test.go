package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/alfalfa"
	"github.com/five82/alfalfa/internal/prefs"
)

func TestParseAssignments(t *testing.T) {
	got, err := parseAssignments([]string{"Zone Setpoint=21.5", "Damper=null", "Fan="})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"Zone Setpoint": 21.5, "Damper": nil, "Fan": nil}, got)

	tests := map[string][]string{
		"missing equals": {"Damper"},
		"empty name":     {"=1"},
		"not a number":   {"Damper=open"},
		"duplicate":      {"Damper=1", "Damper=2"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := parseAssignments(args)
			assert.Error(t, err)
		})
	}
}

func TestParseSimTime(t *testing.T) {
	want := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)

	got, err := parseSimTime("2020-01-02 03:04:05")
	require.NoError(t, err)
	assert.True(t, want.Equal(got))

	got, err = parseSimTime("2020-01-02T03:04:05Z")
	require.NoError(t, err)
	assert.True(t, want.Equal(got))

	got, err = parseSimTime("  ")
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	_, err = parseSimTime("yesterday")
	assert.Error(t, err)
}

func TestParsePointType(t *testing.T) {
	pt, err := parsePointType("Input")
	require.NoError(t, err)
	assert.Equal(t, alfalfa.PointInput, pt)

	_, err = parsePointType("sideways")
	assert.Error(t, err)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitSimulation, exitCode(&alfalfa.SimulationError{RunID: "r1", Log: "boom"}))
	assert.Equal(t, exitTimeout, exitCode(alfalfa.NewClientError(alfalfa.KindTimeout, "too slow")))
	assert.Equal(t, exitError, exitCode(alfalfa.NewClientError(alfalfa.KindNetwork, "down")))
	assert.Equal(t, exitError, exitCode(errors.New("plain")))
}

// fakeAPI serves the handful of REST routes the command tests touch.
type fakeAPI struct {
	mu      sync.Mutex
	written map[string]any
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	reply := func(v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"payload": v})
	}
	switch path := strings.TrimPrefix(r.URL.Path, "/api/v2/"); {
	case path == "runs/r1" && r.Method == http.MethodGet:
		reply(map[string]any{"id": "r1", "status": "RUNNING", "errorLog": "line 1\nline 2\nline 3"})
	case path == "runs/r1" && r.Method == http.MethodDelete:
		reply(nil)
	case path == "runs/r1/points" && r.Method == http.MethodGet:
		reply([]alfalfa.Point{
			{ID: "p1", Name: "Zone Temp", Type: alfalfa.PointOutput},
			{ID: "p2", Name: "Zone Setpoint", Type: alfalfa.PointInput},
		})
	case path == "runs/r1/points/values" && r.Method == http.MethodPut:
		var body struct {
			Points map[string]any `json:"points"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		for k, v := range body.Points {
			f.written[k] = v
		}
		reply(nil)
	case path == "aliases":
		reply(map[string]string{"office": "r1"})
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"not found"}`))
	}
}

func execute(t *testing.T, args ...string) (string, *fakeAPI, string, error) {
	t.Helper()
	api := &fakeAPI{written: map[string]any{}}
	srv := httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	prefsPath := filepath.Join(dir, "prefs.toml")
	t.Setenv("ALFALFA_HOST", "")
	t.Chdir(dir)

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{
		"--host", srv.URL,
		"--config", filepath.Join(dir, "missing.toml"),
		"--prefs", prefsPath,
	}, args...))
	err := root.Execute()
	return out.String(), api, prefsPath, err
}

func TestStatusCommand(t *testing.T) {
	out, _, _, err := execute(t, "status", "r1")
	require.NoError(t, err)
	assert.Equal(t, "RUNNING\n", out)
}

func TestStatusCommand_ManyRunsReportsFailures(t *testing.T) {
	out, _, _, err := execute(t, "status", "r1", "r9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 runs")
	assert.Contains(t, out, "RUNNING")
	assert.Contains(t, out, "r9")
}

func TestSetCommand_WritesByID(t *testing.T) {
	_, api, _, err := execute(t, "set", "r1", "Zone Setpoint=22")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"p2": 22.0}, api.written)
}

func TestSetCommand_UnknownNameWritesNothing(t *testing.T) {
	_, api, _, err := execute(t, "set", "r1", "Zone Setpoint=22", "Nope=1")
	require.Error(t, err)
	assert.Empty(t, api.written)
}

func TestErrorLogCommand_Tail(t *testing.T) {
	out, _, _, err := execute(t, "errorlog", "r1", "--lines", "2")
	require.NoError(t, err)
	assert.Equal(t, "line 2\nline 3\n", out)
}

func TestAliasList(t *testing.T) {
	out, _, _, err := execute(t, "alias", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "office")
	assert.Contains(t, out, "r1")
}

func TestRemoveForgetsRecentRun(t *testing.T) {
	api := &fakeAPI{written: map[string]any{}}
	srv := httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	prefsPath := filepath.Join(dir, "prefs.toml")
	require.NoError(t, prefs.Save(prefsPath, prefs.Prefs{Theme: "Slate", RecentRuns: []string{"r1", "r2"}}))
	t.Chdir(dir)

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--host", srv.URL, "--config", filepath.Join(dir, "none.toml"), "--prefs", prefsPath, "remove", "r1"})
	require.NoError(t, root.Execute())

	p, err := prefs.Load(prefsPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"r2"}, p.RecentRuns)
	assert.Equal(t, "Slate", p.Theme)
}

func TestRemoveLeavesUnreadablePrefsAlone(t *testing.T) {
	api := &fakeAPI{written: map[string]any{}}
	srv := httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	prefsPath := filepath.Join(dir, "prefs.toml")
	garbled := []byte("recent_runs = [\"r1\", \n")
	require.NoError(t, os.WriteFile(prefsPath, garbled, 0o644))
	t.Chdir(dir)

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--host", srv.URL, "--config", filepath.Join(dir, "none.toml"), "--prefs", prefsPath, "remove", "r1"})
	require.NoError(t, root.Execute())

	got, err := os.ReadFile(prefsPath)
	require.NoError(t, err)
	assert.Equal(t, garbled, got)
}
