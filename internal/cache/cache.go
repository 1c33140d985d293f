package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"basegraph.app/taskflow/common/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type Freshness string

const (
	// Loading: the key has never settled; a fetch is in flight.
	Loading Freshness = "loading"
	// Ready: the last fetch settled (with a value or an error) and nothing
	// has invalidated it since.
	Ready Freshness = "ready"
	// Stale: invalidated after its last fetch. The old value stays visible
	// until the next reader's refetch lands.
	Stale Freshness = "stale"
)

// Fetcher loads the current server value for a key.
type Fetcher func(ctx context.Context) (any, error)

// Snapshot is a read-only view of one entry at the time of the read.
type Snapshot struct {
	Key       Key
	Value     any
	Freshness Freshness
	Fetching  bool
	Err       error
	UpdatedAt time.Time
}

// Loading reports whether a view should show a loading indicator.
func (s Snapshot) Loading() bool {
	return s.Freshness == Loading || s.Fetching
}

// Cache maps query keys to their last-known server value. Reads never block;
// the first reader of a missing or stale key starts a background fetch that
// every concurrent reader of the same key shares.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	seq     uint64
	logger  *slog.Logger
}

type entry struct {
	key       Key
	value     any
	err       error
	freshness Freshness
	updatedAt time.Time

	// gen is bumped by every invalidation. A fetch that started under an
	// older gen may still land its value but leaves the entry stale.
	gen uint64
	// applied is the seq of the newest fetch whose result was stored.
	applied uint64
	flight  *flight
}

type flight struct {
	seq  uint64
	gen  uint64
	done chan struct{}
}

func New(log *slog.Logger) *Cache {
	if log == nil {
		log = slog.Default()
	}
	return &Cache{
		entries: make(map[string]*entry),
		logger:  log,
	}
}

// Read returns the entry for key, registering it and starting a fetch when
// it is missing or stale. The fetch runs detached from ctx's cancellation.
func (c *Cache) Read(ctx context.Context, key Key, fetch Fetcher) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entryLocked(key)
	c.maybeFetchLocked(ctx, e, fetch)
	return e.snapshot()
}

// Load is the blocking form of Read: it waits until the entry is Ready or
// ctx is done. A failed fetch settles the entry, so Load returns the
// snapshot with its Err set rather than an error of its own.
func (c *Cache) Load(ctx context.Context, key Key, fetch Fetcher) (Snapshot, error) {
	for {
		c.mu.Lock()
		e := c.entryLocked(key)
		c.maybeFetchLocked(ctx, e, fetch)
		if e.freshness == Ready || e.flight == nil {
			snap := e.snapshot()
			c.mu.Unlock()
			return snap, nil
		}
		done := e.flight.done
		c.mu.Unlock()

		select {
		case <-done:
		case <-ctx.Done():
			snap, _ := c.Peek(key)
			return snap, ctx.Err()
		}
	}
}

// Peek returns the entry without registering it or fetching.
func (c *Cache) Peek(key Key) (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.String()]
	if !ok {
		return Snapshot{Key: key, Freshness: Loading}, false
	}
	return e.snapshot(), true
}

// Invalidate marks every entry matching p stale without clearing its value,
// so views keep showing the old data until the refetch lands. Returns the
// number of entries marked.
func (c *Cache) Invalidate(ctx context.Context, p Pattern) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, e := range c.entries {
		if !p.Matches(e.key) {
			continue
		}
		e.gen++
		if e.freshness == Ready {
			e.freshness = Stale
		}
		n++
	}
	c.logger.DebugContext(ctx, "cache invalidated", "pattern", p.String(), "entries", n)
	return n
}

// Clear drops every entry. Fetches still in flight finish but their results
// are discarded.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}

func (c *Cache) entryLocked(key Key) *entry {
	id := key.String()
	e, ok := c.entries[id]
	if !ok {
		e = &entry{key: key, freshness: Loading}
		c.entries[id] = e
	}
	return e
}

func (c *Cache) maybeFetchLocked(ctx context.Context, e *entry, fetch Fetcher) {
	if e.freshness == Ready || fetch == nil {
		return
	}
	if e.flight != nil && e.flight.gen == e.gen {
		return
	}

	c.seq++
	f := &flight{seq: c.seq, gen: e.gen, done: make(chan struct{})}
	e.flight = f

	fetchCtx := logger.WithLogFields(context.WithoutCancel(ctx), logger.LogFields{
		CacheKey:  logger.Ptr(e.key.String()),
		Component: "taskflow.cache",
	})
	go c.run(fetchCtx, e, f, fetch)
}

func (c *Cache) run(ctx context.Context, e *entry, f *flight, fetch Fetcher) {
	sc := logger.StartSpan(ctx, "cache.fetch",
		trace.WithAttributes(attribute.String("cache.key", e.key.String())))
	ctx = sc.Context()

	start := time.Now()
	value, err := fetch(ctx)
	if err != nil {
		sc.RecordError(err)
		c.logger.WarnContext(ctx, "cache fetch failed", "error", err)
	} else {
		c.logger.DebugContext(ctx, "cache fetch finished", "duration_ms", time.Since(start).Milliseconds())
	}
	sc.End()

	c.settle(e, f, value, err)
}

func (c *Cache) settle(e *entry, f *flight, value any, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer close(f.done)

	if e.flight == f {
		e.flight = nil
	}
	if c.entries[e.key.String()] != e {
		return
	}
	if f.seq < e.applied {
		return
	}

	e.applied = f.seq
	if err != nil {
		e.err = err
	} else {
		e.value = value
		e.err = nil
	}
	e.updatedAt = time.Now().UTC()

	if f.gen == e.gen {
		e.freshness = Ready
	} else {
		e.freshness = Stale
	}
}

func (e *entry) snapshot() Snapshot {
	return Snapshot{
		Key:       e.key,
		Value:     e.value,
		Freshness: e.freshness,
		Fetching:  e.flight != nil,
		Err:       e.err,
		UpdatedAt: e.updatedAt,
	}
}
