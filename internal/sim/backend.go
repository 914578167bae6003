package sim

import (
	"context"
	"time"
)

// Backend is one protocol dialect of the simulation server.
type Backend interface {
	Status(ctx context.Context, run RunID) (string, error)
	ErrorLog(ctx context.Context, run RunID) (string, error)

	// UploadModel sends a model file (a single file or a zip archive).
	UploadModel(ctx context.Context, path string) (ModelID, error)
	CreateRun(ctx context.Context, model ModelID) (RunID, error)

	Start(ctx context.Context, run RunID, params StartParams) error
	Stop(ctx context.Context, run RunID) error
	Advance(ctx context.Context, run RunID) error
	Remove(ctx context.Context, run RunID) error

	// Points lists the points of a run. No types means all points.
	Points(ctx context.Context, run RunID, types ...PointType) ([]Point, error)
	Outputs(ctx context.Context, run RunID) ([]PointValue, error)
	WritePoints(ctx context.Context, run RunID, writes []PointWrite) error
	SimTime(ctx context.Context, run RunID) (time.Time, error)

	SetAlias(ctx context.Context, alias string, run RunID) error
	Alias(ctx context.Context, alias string) (RunID, error)
	Aliases(ctx context.Context) (map[string]RunID, error)
}
