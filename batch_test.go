package alfalfa

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

// stubBackend answers per run from tables and counts calls.
type stubBackend struct {
	sim.Backend

	mu       sync.Mutex
	statuses map[RunID]string
	delays   map[RunID]time.Duration
	failures map[RunID]error
	flaky    int
	calls    atomic.Int32
	advanced []RunID
}

func (b *stubBackend) Status(ctx context.Context, run RunID) (string, error) {
	n := b.calls.Add(1)
	if d := b.delays[run]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if int(n) <= b.flaky {
		return "", &ClientError{Kind: KindNetwork, Message: "connection refused"}
	}
	if err := b.failures[run]; err != nil {
		return "", err
	}
	return b.statuses[run], nil
}

func (b *stubBackend) Advance(ctx context.Context, run RunID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.advanced = append(b.advanced, run)
	return nil
}

func stubClient(b *stubBackend, opts ...Option) *Client {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}
	return newClient(b, cfg)
}

func TestStatusMany_OrderedByInput(t *testing.T) {
	b := &stubBackend{
		statuses: map[RunID]string{"r1": "running", "r2": "ready", "r3": "complete"},
		delays:   map[RunID]time.Duration{"r1": 30 * time.Millisecond, "r2": 10 * time.Millisecond},
	}
	c := stubClient(b, WithWorkers(3))

	got, err := c.StatusMany(context.Background(), []RunID{"r1", "r2", "r3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"running", "ready", "complete"}, got)
}

func TestStatusMany_FailureNamesRun(t *testing.T) {
	gone := &APIError{StatusCode: 404, Message: "no such run"}
	b := &stubBackend{
		statuses: map[RunID]string{"r1": "running", "r3": "running"},
		failures: map[RunID]error{"r2": gone},
	}
	c := stubClient(b)

	_, err := c.StatusMany(context.Background(), []RunID{"r1", "r2", "r3"})
	var itemErr *ItemError[RunID]
	require.ErrorAs(t, err, &itemErr)
	assert.Equal(t, RunID("r2"), itemErr.Item)
	assert.Equal(t, 1, itemErr.Index)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsNotFound())
}

func TestStatusAll_KeepsEveryOutcome(t *testing.T) {
	b := &stubBackend{
		statuses: map[RunID]string{"r1": "running"},
		failures: map[RunID]error{"r2": &APIError{StatusCode: 500}},
	}
	c := stubClient(b)

	results := c.StatusAll(context.Background(), []RunID{"r1", "r2"})
	require.Len(t, results, 2)
	assert.Equal(t, "running", results[0].Value)
	assert.Error(t, results[1].Err)
}

func TestAdvanceMany_SingleRun(t *testing.T) {
	b := &stubBackend{}
	c := stubClient(b)

	require.NoError(t, c.AdvanceMany(context.Background(), []RunID{"r1"}))
	assert.Equal(t, []RunID{"r1"}, b.advanced)
}

func TestRetry_TransientErrorsAreRetried(t *testing.T) {
	b := &stubBackend{statuses: map[RunID]string{"r1": "ready"}, flaky: 2}
	c := stubClient(b, WithRetry(3, time.Millisecond))

	status, err := c.Status(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "ready", status)
	assert.Equal(t, int32(3), b.calls.Load())
}

func TestRetry_APIErrorsAreNotRetried(t *testing.T) {
	denied := &APIError{StatusCode: 403, Message: "forbidden"}
	b := &stubBackend{failures: map[RunID]error{"r1": denied}}
	c := stubClient(b, WithRetry(5, time.Millisecond))

	_, err := c.Status(context.Background(), "r1")
	assert.True(t, errors.Is(err, denied))
	assert.Equal(t, int32(1), b.calls.Load())
}

func TestRetry_DisabledByDefault(t *testing.T) {
	b := &stubBackend{statuses: map[RunID]string{"r1": "ready"}, flaky: 1}
	c := stubClient(b)

	_, err := c.Status(context.Background(), "r1")
	assert.True(t, IsTransient(err))
	assert.Equal(t, int32(1), b.calls.Load())
}
