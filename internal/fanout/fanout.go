package fanout

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// DefaultLimit bounds concurrency when a caller passes a non-positive limit.
const DefaultLimit = 10

// ItemError attributes a failure to one input of a batch.
type ItemError[T any] struct {
	Index int
	Item  T
	Err   error
}

func (e *ItemError[T]) Error() string {
	return fmt.Sprintf("item %d (%v): %v", e.Index, e.Item, e.Err)
}

func (e *ItemError[T]) Unwrap() error {
	return e.Err
}

// Map applies fn to every item with at most limit calls in flight and returns
// the results in input order. The first failure cancels the context handed to
// the remaining calls and is returned wrapped in an ItemError. A single item
// is run inline.
func Map[T, R any](ctx context.Context, items []T, limit int, fn func(context.Context, T) (R, error)) ([]R, error) {
	results := make([]R, len(items))
	switch len(items) {
	case 0:
		return results, nil
	case 1:
		r, err := fn(ctx, items[0])
		if err != nil {
			return nil, &ItemError[T]{Index: 0, Item: items[0], Err: err}
		}
		results[0] = r
		return results, nil
	}

	if limit <= 0 {
		limit = DefaultLimit
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, item := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return &ItemError[T]{Index: i, Item: item, Err: err}
			}
			r, err := fn(gctx, item)
			if err != nil {
				return &ItemError[T]{Index: i, Item: item, Err: err}
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Each is Map for operations without a result.
func Each[T any](ctx context.Context, items []T, limit int, fn func(context.Context, T) error) error {
	_, err := Map(ctx, items, limit, func(ctx context.Context, item T) (struct{}, error) {
		return struct{}{}, fn(ctx, item)
	})
	return err
}

// Result is the outcome of one item in Settle.
type Result[R any] struct {
	Value R
	Err   error
}

// Settle runs every item to completion and reports each outcome in input
// order. It never stops early; only ctx cancellation shortens the batch.
func Settle[T, R any](ctx context.Context, items []T, limit int, fn func(context.Context, T) (R, error)) []Result[R] {
	results := make([]Result[R], len(items))
	if limit <= 0 {
		limit = DefaultLimit
	}
	var g errgroup.Group
	g.SetLimit(limit)
	for i, item := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			v, err := fn(ctx, item)
			results[i] = Result[R]{Value: v, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
