package state

import (
	"strings"

	"github.com/five82/alfalfa"
)

func normalize(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}

// Phase groups server statuses for display.
type Phase int

const (
	PhaseUnknown Phase = iota
	PhasePending
	PhaseActive
	PhaseDone
	PhaseFailed
)

// PhaseOf maps a server status to its display phase.
func PhaseOf(status string) Phase {
	switch normalize(status) {
	case alfalfa.StatusCreated, alfalfa.StatusReady, alfalfa.StatusStarting:
		return PhasePending
	case alfalfa.StatusRunning, alfalfa.StatusStopping:
		return PhaseActive
	case alfalfa.StatusComplete:
		return PhaseDone
	case alfalfa.StatusError:
		return PhaseFailed
	default:
		return PhaseUnknown
	}
}
