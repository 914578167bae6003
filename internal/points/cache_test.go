package points

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/alfalfa/internal/sim"
)

type countingLister struct {
	fetches atomic.Int32
	delay   time.Duration
	points  map[sim.RunID][]sim.Point
	err     error
}

func (l *countingLister) Points(ctx context.Context, run sim.RunID, types ...sim.PointType) ([]sim.Point, error) {
	l.fetches.Add(1)
	if l.delay > 0 {
		time.Sleep(l.delay)
	}
	if l.err != nil {
		return nil, l.err
	}
	return l.points[run], nil
}

func sample() *countingLister {
	return &countingLister{points: map[sim.RunID][]sim.Point{
		"r1": {
			{ID: "p1", Name: "zone_temp", Type: sim.PointOutput},
			{ID: "p2", Name: "setpoint", Type: sim.PointInput},
			{ID: "p3", Name: "damper", Type: sim.PointBidirectional},
		},
		"r2": {
			{ID: "q1", Name: "zone_temp", Type: sim.PointOutput},
		},
	}}
}

func TestCache_SecondLookupDoesNotFetch(t *testing.T) {
	src := sample()
	c := New(src, nil)
	ctx := context.Background()

	id, err := c.ID(ctx, "r1", "setpoint")
	require.NoError(t, err)
	assert.Equal(t, sim.PointID("p2"), id)
	assert.Equal(t, int32(1), src.fetches.Load())

	id, err = c.ID(ctx, "r1", "damper")
	require.NoError(t, err)
	assert.Equal(t, sim.PointID("p3"), id)

	name, err := c.Name(ctx, "r1", "p1")
	require.NoError(t, err)
	assert.Equal(t, "zone_temp", name)
	assert.Equal(t, int32(1), src.fetches.Load())
}

func TestCache_UnknownNameIsClientError(t *testing.T) {
	c := New(sample(), nil)

	_, err := c.ID(context.Background(), "r1", "no_such_point")
	var clientErr *sim.ClientError
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, sim.KindPointNotFound, clientErr.Kind)
	assert.Contains(t, err.Error(), "no point exists with name no_such_point")
}

func TestCache_RoundTrips(t *testing.T) {
	src := sample()
	c := New(src, nil)
	ctx := context.Background()

	for _, pt := range src.points["r1"] {
		id, err := c.ID(ctx, "r1", pt.Name)
		require.NoError(t, err)
		name, err := c.Name(ctx, "r1", id)
		require.NoError(t, err)
		assert.Equal(t, pt.Name, name, "name -> id -> name")

		name, err = c.Name(ctx, "r1", pt.ID)
		require.NoError(t, err)
		back, err := c.ID(ctx, "r1", name)
		require.NoError(t, err)
		assert.Equal(t, pt.ID, back, "id -> name -> id")
	}
}

func TestCache_ScopedPerRun(t *testing.T) {
	src := sample()
	c := New(src, nil)
	ctx := context.Background()

	a, err := c.ID(ctx, "r1", "zone_temp")
	require.NoError(t, err)
	b, err := c.ID(ctx, "r2", "zone_temp")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Equal(t, int32(2), src.fetches.Load())
}

func TestCache_ConcurrentMissesShareOneFetch(t *testing.T) {
	src := sample()
	src.delay = 20 * time.Millisecond
	c := New(src, nil)

	var wg sync.WaitGroup
	for _, name := range []string{"zone_temp", "setpoint", "damper", "zone_temp", "setpoint", "damper"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.ID(context.Background(), "r1", name)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), src.fetches.Load())
}

func TestCache_ExpiredCallerDoesNotFailSharedFetch(t *testing.T) {
	src := sample()
	src.delay = 200 * time.Millisecond
	c := New(src, nil)

	short, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	var wg sync.WaitGroup
	var shortErr, longErr error
	var id sim.PointID
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, shortErr = c.ID(short, "r1", "setpoint")
	}()
	go func() {
		defer wg.Done()
		id, longErr = c.ID(context.Background(), "r1", "setpoint")
	}()
	wg.Wait()

	var clientErr *sim.ClientError
	require.ErrorAs(t, shortErr, &clientErr)
	assert.Equal(t, sim.KindTimeout, clientErr.Kind)
	assert.ErrorIs(t, shortErr, context.DeadlineExceeded)

	require.NoError(t, longErr)
	assert.Equal(t, sim.PointID("p2"), id)
	assert.Equal(t, int32(1), src.fetches.Load())
}

func TestCache_FetchIgnoresCallerCancellation(t *testing.T) {
	var sawErr atomic.Value
	src := listerFunc(func(ctx context.Context, run sim.RunID) ([]sim.Point, error) {
		time.Sleep(50 * time.Millisecond)
		if err := ctx.Err(); err != nil {
			sawErr.Store(err)
		}
		return []sim.Point{{ID: "p1", Name: "zone_temp"}}, nil
	})
	c := New(src, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.ID(ctx, "r1", "zone_temp")
	require.ErrorIs(t, err, context.Canceled)

	require.Eventually(t, func() bool {
		_, ok := c.lookupName("r1", "zone_temp")
		return ok
	}, time.Second, 5*time.Millisecond)
	assert.Nil(t, sawErr.Load())
}

type listerFunc func(ctx context.Context, run sim.RunID) ([]sim.Point, error)

func (f listerFunc) Points(ctx context.Context, run sim.RunID, _ ...sim.PointType) ([]sim.Point, error) {
	return f(ctx, run)
}

func TestCache_DuplicateNamesKeepFirst(t *testing.T) {
	src := &countingLister{points: map[sim.RunID][]sim.Point{
		"r1": {
			{ID: "p1", Name: "fan"},
			{ID: "p2", Name: "fan"},
		},
	}}
	c := New(src, nil)
	ctx := context.Background()

	id, err := c.ID(ctx, "r1", "fan")
	require.NoError(t, err)
	assert.Equal(t, sim.PointID("p1"), id)

	name, err := c.Name(ctx, "r1", "p2")
	require.NoError(t, err)
	assert.Equal(t, "fan", name)
}

func TestCache_RefreshAndForget(t *testing.T) {
	src := sample()
	c := New(src, nil)
	ctx := context.Background()

	_, err := c.ID(ctx, "r1", "setpoint")
	require.NoError(t, err)

	src.points["r1"] = append(src.points["r1"], sim.Point{ID: "p4", Name: "new_point"})
	require.NoError(t, c.Refresh(ctx, "r1"))
	id, err := c.ID(ctx, "r1", "new_point")
	require.NoError(t, err)
	assert.Equal(t, sim.PointID("p4"), id)
	assert.Equal(t, int32(2), src.fetches.Load())

	c.Forget("r1")
	_, err = c.ID(ctx, "r1", "setpoint")
	require.NoError(t, err)
	assert.Equal(t, int32(3), src.fetches.Load())
}

func TestCache_FetchErrorIsReturned(t *testing.T) {
	apiErr := &sim.APIError{StatusCode: 500, Message: "boom"}
	c := New(&countingLister{err: apiErr}, nil)

	_, err := c.ID(context.Background(), "r1", "x")
	assert.True(t, errors.Is(err, apiErr))
}
