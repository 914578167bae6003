package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/five82/alfalfa"
	"github.com/five82/alfalfa/internal/state"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 2 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 2 * time.Second},
		{"negative failures", -1, 2 * time.Second},
		{"one failure", 1, 4 * time.Second},
		{"two failures", 2, 8 * time.Second},
		{"three failures", 3, 16 * time.Second},
		{"four failures capped", 4, 30 * time.Second}, // Would be 32s, capped to 30s
		{"many failures capped", 10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	baseInterval := 2 * time.Second
	for failures := 0; failures <= 20; failures++ {
		got := calculateBackoff(failures, baseInterval)
		if got > maxBackoff {
			t.Errorf("calculateBackoff(%d, %v) = %v, exceeds maxBackoff %v", failures, baseInterval, got, maxBackoff)
		}
	}
}

type fakeSource struct {
	statuses []alfalfa.Result[string]
	times    []alfalfa.Result[time.Time]
}

func (f fakeSource) StatusAll(ctx context.Context, runs []alfalfa.RunID) []alfalfa.Result[string] {
	return f.statuses
}

func (f fakeSource) SimTimeAll(ctx context.Context, runs []alfalfa.RunID) []alfalfa.Result[time.Time] {
	return f.times
}

func TestRefresh_PartialFailureStaysOnline(t *testing.T) {
	simTime := time.Date(2020, 1, 1, 0, 1, 0, 0, time.UTC)
	src := fakeSource{
		statuses: []alfalfa.Result[string]{{Value: "RUNNING"}, {Err: errors.New("gone")}},
		times:    []alfalfa.Result[time.Time]{{Value: simTime}, {Err: errors.New("gone")}},
	}
	store := &state.Store{}

	refresh(context.Background(), store, src, []alfalfa.RunID{"r1", "r2"}, nil)

	snap := store.Snapshot()
	if snap.LastError != nil || snap.ConsecutiveFailures != 0 {
		t.Fatalf("snapshot = %#v, want online", snap)
	}
	if len(snap.Runs) != 2 {
		t.Fatalf("runs = %#v", snap.Runs)
	}
	if snap.Runs[0].Status != "RUNNING" || !snap.Runs[0].SimTime.Equal(simTime) {
		t.Fatalf("run r1 = %#v", snap.Runs[0])
	}
	if snap.Runs[1].Err == nil {
		t.Fatalf("run r2 should carry its error")
	}
}

func TestRefresh_TotalFailureCountsAgainstServer(t *testing.T) {
	down := errors.New("connection refused")
	src := fakeSource{
		statuses: []alfalfa.Result[string]{{Err: down}},
		times:    []alfalfa.Result[time.Time]{{Err: down}},
	}
	store := &state.Store{}
	store.Update([]state.Run{{ID: "r1", Status: "running"}}, nil)

	refresh(context.Background(), store, src, []alfalfa.RunID{"r1"}, nil)
	refresh(context.Background(), store, src, []alfalfa.RunID{"r1"}, nil)

	snap := store.Snapshot()
	if !snap.IsOffline() {
		t.Fatalf("store should be offline after two failed polls")
	}
	if len(snap.Runs) != 1 || snap.Runs[0].Status != "running" {
		t.Fatalf("previous runs should be kept, got %#v", snap.Runs)
	}
}

func TestStartPoller_StopsWithContext(t *testing.T) {
	src := fakeSource{
		statuses: []alfalfa.Result[string]{{Value: "ready"}},
		times:    []alfalfa.Result[time.Time]{{}},
	}
	store := &state.Store{}
	ctx, cancel := context.WithCancel(context.Background())

	StartPoller(ctx, store, src, []alfalfa.RunID{"r1"}, 5*time.Millisecond, nil)

	deadline := time.After(time.Second)
	for store.Snapshot().LastUpdated.IsZero() {
		select {
		case <-deadline:
			t.Fatalf("poller never refreshed the store")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
}
