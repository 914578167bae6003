package alfalfa

import (
	"github.com/five82/alfalfa/internal/fanout"
	"github.com/five82/alfalfa/internal/sim"
)

type (
	RunID       = sim.RunID
	ModelID     = sim.ModelID
	PointID     = sim.PointID
	PointType   = sim.PointType
	Point       = sim.Point
	PointValue  = sim.PointValue
	StartParams = sim.StartParams
)

// TimeLayout is the layout of simulation timestamps on the wire.
const TimeLayout = sim.TimeLayout

const (
	StatusCreated  = sim.StatusCreated
	StatusReady    = sim.StatusReady
	StatusStarting = sim.StatusStarting
	StatusRunning  = sim.StatusRunning
	StatusStopping = sim.StatusStopping
	StatusComplete = sim.StatusComplete
	StatusError    = sim.StatusError
)

const (
	PointInput         = sim.PointInput
	PointOutput        = sim.PointOutput
	PointBidirectional = sim.PointBidirectional
)

const DefaultTimescale = sim.DefaultTimescale

// SameStatus compares statuses the way Wait does.
func SameStatus(a, b string) bool {
	return sim.SameStatus(a, b)
}

// Result is one outcome of a StatusAll or SimTimeAll batch.
type Result[R any] = fanout.Result[R]
