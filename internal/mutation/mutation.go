package mutation

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"basegraph.app/taskflow/common/logger"
	"basegraph.app/taskflow/internal/cache"
	"basegraph.app/taskflow/internal/notify"
	"go.opentelemetry.io/otel/attribute"
)

var (
	// ErrSuperseded is returned by an invocation that finished after a newer
	// invocation on the same call site started. Its value is still returned.
	ErrSuperseded = errors.New("superseded by a newer invocation")
	// ErrClosed is returned by an invocation that finished after its call
	// site was closed.
	ErrClosed = errors.New("call site closed")
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusPending Status = "pending"
	StatusError   Status = "error"
)

// Record is the UI-facing state of a call site.
type Record struct {
	Status Status
	Err    error
}

func (r Record) Pending() bool {
	return r.Status == StatusPending
}

// Operation describes one kind of write against the remote store.
type Operation[P, R any] struct {
	// Name identifies the operation in logs and spans, e.g. "task.create".
	Name string
	Run  func(ctx context.Context, payload P) (R, error)
	// Invalidates lists the cache patterns a successful run may have changed.
	Invalidates func(payload P, result R) []cache.Pattern
	// SuccessMessage is shown in the success toast. Nil means no toast.
	SuccessMessage func(payload P, result R) string
	// FailureTitle is the title of the error toast.
	FailureTitle string
}

// Coordinator applies mutation outcomes to the cache and the notification sink.
type Coordinator struct {
	cache  *cache.Cache
	sink   notify.Sink
	logger *slog.Logger
}

func NewCoordinator(c *cache.Cache, sink notify.Sink, log *slog.Logger) *Coordinator {
	if log == nil {
		log = slog.Default()
	}
	return &Coordinator{cache: c, sink: sink, logger: log}
}

func (c *Coordinator) invalidate(ctx context.Context, patterns []cache.Pattern) {
	for _, p := range patterns {
		c.cache.Invalidate(ctx, p)
	}
}

func (c *Coordinator) notify(ctx context.Context, n notify.Notice) {
	if c.sink != nil {
		c.sink.Notify(ctx, n)
	}
}

// CallSite tracks the single in-flight mutation of one UI call site. A new
// Invoke supersedes the previous one for UI-state purposes; the superseded
// remote call is not cancelled.
type CallSite[P, R any] struct {
	coord *Coordinator
	op    Operation[P, R]

	mu     sync.Mutex
	token  uint64
	closed bool
	record Record
}

func NewCallSite[P, R any](coord *Coordinator, op Operation[P, R]) *CallSite[P, R] {
	return &CallSite[P, R]{
		coord:  coord,
		op:     op,
		record: Record{Status: StatusIdle},
	}
}

// State returns the call site's current record.
func (s *CallSite[P, R]) State() Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record
}

// Close detaches the call site. Results of invocations still in flight are
// discarded silently; their cache invalidations still apply.
func (s *CallSite[P, R]) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Reset returns an errored call site to idle, e.g. when a dialog is reopened.
func (s *CallSite[P, R]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.record.Status == StatusError {
		s.record = Record{Status: StatusIdle}
	}
}

// Invoke runs the operation and blocks until the remote call settles.
//
// On success the cache patterns from Invalidates are marked stale, a success
// toast is sent and the server-confirmed result is returned. On failure the
// cache is left untouched, an error toast is sent and the error is returned,
// alongside whatever partial result Run produced.
func (s *CallSite[P, R]) Invoke(ctx context.Context, payload P) (R, error) {
	token, ok := s.begin()
	if !ok {
		var zero R
		return zero, ErrClosed
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		CallSite:  logger.Ptr(s.op.Name),
		Component: "taskflow.mutation",
	})
	sc := logger.StartSpan(ctx, "mutation."+s.op.Name)
	defer sc.End()
	ctx = sc.Context()

	result, err := s.op.Run(ctx, payload)
	if err != nil {
		sc.RecordError(err)
	} else if s.op.Invalidates != nil {
		s.coord.invalidate(ctx, s.op.Invalidates(payload, result))
	}

	latest, open := s.settle(token, err)
	sc.SetAttributes(attribute.Bool("mutation.superseded", !latest), attribute.Bool("mutation.discarded", !open))

	switch {
	case !open:
		s.coord.logger.DebugContext(ctx, "mutation result discarded after close", "error", err)
		return result, errors.Join(ErrClosed, err)
	case !latest:
		s.coord.logger.DebugContext(ctx, "mutation result superseded", "error", err)
		return result, errors.Join(ErrSuperseded, err)
	}

	if err != nil {
		s.coord.logger.WarnContext(ctx, "mutation failed", "error", err)
		s.coord.notify(ctx, notify.Error(s.op.FailureTitle, err.Error()))
		return result, err
	}

	if s.op.SuccessMessage != nil {
		s.coord.notify(ctx, notify.Success(s.op.SuccessMessage(payload, result)))
	}
	return result, nil
}

func (s *CallSite[P, R]) begin() (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, false
	}
	s.token++
	s.record = Record{Status: StatusPending}
	return s.token, true
}

// settle records the outcome if token is still the latest invocation and
// the call site is open.
func (s *CallSite[P, R]) settle(token uint64, err error) (latest, open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return token == s.token, false
	}
	if token != s.token {
		return false, true
	}
	if err != nil {
		s.record = Record{Status: StatusError, Err: err}
	} else {
		s.record = Record{Status: StatusIdle}
	}
	return true, true
}
