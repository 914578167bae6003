package points

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/five82/alfalfa/internal/sim"
)

// Lister fetches the full point list of a run.
type Lister interface {
	Points(ctx context.Context, run sim.RunID, types ...sim.PointType) ([]sim.Point, error)
}

// fetchTimeout bounds one shared point-list fetch.
const fetchTimeout = 2 * time.Minute

// table holds both directions for one run. It is never mutated once stored.
type table struct {
	byName map[string]sim.Point
	byID   map[sim.PointID]sim.Point
}

// Cache translates point names to ids and back, per run. A miss fetches the
// run's point list once; concurrent misses on the same run share that fetch.
// Entries live until Refresh or Forget.
type Cache struct {
	src    Lister
	logger *slog.Logger

	mu     sync.RWMutex
	tables map[sim.RunID]*table

	group singleflight.Group
}

// New returns an empty cache backed by src.
func New(src Lister, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Cache{src: src, logger: logger, tables: make(map[sim.RunID]*table)}
}

// ID resolves a point name on run.
func (c *Cache) ID(ctx context.Context, run sim.RunID, name string) (sim.PointID, error) {
	if pt, ok := c.lookupName(run, name); ok {
		return pt.ID, nil
	}
	tbl, err := c.load(ctx, run)
	if err != nil {
		return "", err
	}
	if pt, ok := tbl.byName[name]; ok {
		return pt.ID, nil
	}
	return "", sim.NewClientError(sim.KindPointNotFound, "no point exists with name %s", name)
}

// Name resolves a point id on run.
func (c *Cache) Name(ctx context.Context, run sim.RunID, id sim.PointID) (string, error) {
	if pt, ok := c.lookupID(run, id); ok {
		return pt.Name, nil
	}
	tbl, err := c.load(ctx, run)
	if err != nil {
		return "", err
	}
	if pt, ok := tbl.byID[id]; ok {
		return pt.Name, nil
	}
	return "", sim.NewClientError(sim.KindPointNotFound, "no point exists with id %s", id)
}

// Refresh re-fetches the point list of run and replaces its entries.
func (c *Cache) Refresh(ctx context.Context, run sim.RunID) error {
	c.Forget(run)
	_, err := c.load(ctx, run)
	return err
}

// Forget drops the entries of run.
func (c *Cache) Forget(run sim.RunID) {
	c.mu.Lock()
	delete(c.tables, run)
	c.mu.Unlock()
}

func (c *Cache) lookupName(run sim.RunID, name string) (sim.Point, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tbl, ok := c.tables[run]
	if !ok {
		return sim.Point{}, false
	}
	pt, ok := tbl.byName[name]
	return pt, ok
}

func (c *Cache) lookupID(run sim.RunID, id sim.PointID) (sim.Point, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tbl, ok := c.tables[run]
	if !ok {
		return sim.Point{}, false
	}
	pt, ok := tbl.byID[id]
	return pt, ok
}

// load returns the table for run, fetching it if needed. The shared fetch
// runs detached from any one caller's context, bounded by fetchTimeout, so a
// caller that gives up does not fail the others waiting on it.
func (c *Cache) load(ctx context.Context, run sim.RunID) (*table, error) {
	ch := c.group.DoChan(string(run), func() (any, error) {
		// A concurrent caller may have stored the table while we queued.
		c.mu.RLock()
		tbl, ok := c.tables[run]
		c.mu.RUnlock()
		if ok {
			return tbl, nil
		}

		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()
		pts, err := c.src.Points(fctx, run)
		if err != nil {
			return nil, err
		}
		tbl = c.build(run, pts)

		c.mu.Lock()
		c.tables[run] = tbl
		c.mu.Unlock()
		return tbl, nil
	})
	select {
	case <-ctx.Done():
		kind := sim.KindCanceled
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			kind = sim.KindTimeout
		}
		return nil, &sim.ClientError{Kind: kind, Message: "load points of run " + string(run), Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*table), nil
	}
}

// build indexes pts. When two points share a display name the first one
// keeps the name.
func (c *Cache) build(run sim.RunID, pts []sim.Point) *table {
	tbl := &table{
		byName: make(map[string]sim.Point, len(pts)),
		byID:   make(map[sim.PointID]sim.Point, len(pts)),
	}
	for _, pt := range pts {
		if pt.ID == "" {
			continue
		}
		tbl.byID[pt.ID] = pt
		if pt.Name == "" {
			continue
		}
		if prev, dup := tbl.byName[pt.Name]; dup {
			c.logger.Warn("duplicate point name, keeping first match",
				slog.String("run", string(run)),
				slog.String("name", pt.Name),
				slog.String("kept", string(prev.ID)),
				slog.String("ignored", string(pt.ID)))
			continue
		}
		tbl.byName[pt.Name] = pt
	}
	c.logger.Debug("point table loaded", slog.String("run", string(run)), slog.Int("points", len(tbl.byID)))
	return tbl
}
