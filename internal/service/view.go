package service

import (
	"context"

	"basegraph.app/taskflow/internal/cache"
)

// View is what a screen renders from: the last-known value, whether a fetch
// is still outstanding, and the error of the most recent fetch.
type View[T any] struct {
	Value   T
	Loading bool
	Err     error
}

type readOptions struct {
	wait bool
}

type ReadOption func(*readOptions)

// Wait makes a read block until the entry settles or ctx is done.
func Wait() ReadOption {
	return func(o *readOptions) { o.wait = true }
}

func read[T any](ctx context.Context, c *cache.Cache, key cache.Key, fetch func(ctx context.Context) (T, error), opts []ReadOption) View[T] {
	var o readOptions
	for _, opt := range opts {
		opt(&o)
	}

	fetcher := func(ctx context.Context) (any, error) {
		return fetch(ctx)
	}

	if !o.wait {
		return viewOf[T](c.Read(ctx, key, fetcher))
	}
	snap, err := c.Load(ctx, key, fetcher)
	v := viewOf[T](snap)
	if err != nil && v.Err == nil {
		v.Err = err
	}
	return v
}

func viewOf[T any](snap cache.Snapshot) View[T] {
	v, _ := snap.Value.(T)
	return View[T]{Value: v, Loading: snap.Loading(), Err: snap.Err}
}

func errView[T any](err error) View[T] {
	var zero T
	return View[T]{Value: zero, Err: err}
}
