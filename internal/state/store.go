package state

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/five82/alfalfa"
)

// Run is the latest view of one watched run.
type Run struct {
	ID      alfalfa.RunID
	Status  string
	SimTime time.Time
	// Err is the last failure for this run alone; other runs may be fine.
	Err error
}

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Runs                []Run
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive poll failures
}

// IsOffline returns true when the server has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Counts tallies runs by lower-cased status.
func (s Snapshot) Counts() map[string]int {
	counts := make(map[string]int)
	for _, r := range s.Runs {
		key := "unknown"
		if r.Status != "" {
			key = normalize(r.Status)
		}
		counts[key]++
	}
	return counts
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update replaces the stored runs. When err is non-nil the previous data is
// kept but the error is recorded for visibility.
func (s *Store) Update(runs []Run, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.LastUpdated = time.Now()
		s.snapshot.ConsecutiveFailures++
		return
	}

	s.snapshot.Runs = slices.Clone(runs)
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Runs = slices.Clone(s.snapshot.Runs)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}
