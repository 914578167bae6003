package sim

import (
	"strings"
	"time"
)

// TimeLayout is the wire format for simulation timestamps.
const TimeLayout = "2006-01-02 15:04:05"

// RunID identifies a run on the server. Aliases are accepted anywhere a RunID is.
type RunID string

// ModelID identifies an uploaded model.
type ModelID string

// PointID is the server-assigned identifier of a point, unique within a run.
type PointID string

// Run statuses reported by the server. Only StatusError is interpreted by the
// client; the others are listed for callers that wait on them.
const (
	StatusCreated  = "created"
	StatusReady    = "ready"
	StatusStarting = "starting"
	StatusRunning  = "running"
	StatusStopping = "stopping"
	StatusComplete = "complete"
	StatusError    = "error"
)

// SameStatus compares two status values. Server revisions disagree on case.
func SameStatus(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// PointType tags the direction of a point.
type PointType string

const (
	PointInput         PointType = "INPUT"
	PointOutput        PointType = "OUTPUT"
	PointBidirectional PointType = "BIDIRECTIONAL"
)

// Readable reports whether the point carries an output value.
func (t PointType) Readable() bool {
	return t == PointOutput || t == PointBidirectional
}

// Writable reports whether the point accepts input writes.
func (t PointType) Writable() bool {
	return t == PointInput || t == PointBidirectional
}

// Point describes one variable of a run.
type Point struct {
	ID   PointID   `json:"id"`
	Name string    `json:"name"`
	Type PointType `json:"type"`
}

// PointValue is a value read from a run. A dialect fills whichever of ID and
// Name it knows; the facade resolves the other one.
type PointValue struct {
	ID    PointID
	Name  string
	Value any
}

// PointWrite is a resolved write request. A nil Value releases the write.
type PointWrite struct {
	ID    PointID
	Name  string
	Value any
}

// StartParams configures a run start.
type StartParams struct {
	Start         time.Time
	End           time.Time
	Timescale     float64
	ExternalClock bool
	Realtime      bool
}

// DefaultTimescale is used when StartParams.Timescale is zero.
const DefaultTimescale = 5

// ValidateRun rejects an empty run identifier.
func ValidateRun(run RunID) error {
	if strings.TrimSpace(string(run)) == "" {
		return NewClientError(KindInvalidArgument, "run id required")
	}
	return nil
}

// ValidateAlias rejects an empty alias.
func ValidateAlias(alias string) error {
	if strings.TrimSpace(alias) == "" {
		return NewClientError(KindInvalidArgument, "alias required")
	}
	return nil
}
