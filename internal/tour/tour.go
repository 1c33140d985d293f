// Package tour drives the guided-onboarding overlay. Whether the tour starts
// on its own is decided by two durable flags, not by in-memory state, so a
// reload resumes the right behaviour.
package tour

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"basegraph.app/taskflow/internal/flagstore"
)

const (
	CompletedKey = "taskflow.tour.completed"
	SkippedKey   = "taskflow.tour.skipped"

	flagTrue = "true"

	DefaultAutoStartDelay = time.Second
)

type Phase string

const (
	PhaseDormant     Phase = "dormant"
	PhaseAutoPending Phase = "auto-pending"
	PhaseRunning     Phase = "running"
	PhaseStopped     Phase = "stopped"
	PhaseSkipped     Phase = "skipped"
	PhaseCompleted   Phase = "completed"
)

// State is what the overlay renders from.
type State struct {
	Phase      Phase `json:"phase"`
	Run        bool  `json:"run"`
	StepIndex  int   `json:"step_index"`
	TourActive bool  `json:"tour_active"`
}

var ErrInvalidStep = errors.New("step index must be >= 0")

type Option func(*Machine)

// WithAutoStartDelay sets how long Init waits before auto-starting, giving
// the initial layout time to settle.
func WithAutoStartDelay(d time.Duration) Option {
	return func(m *Machine) { m.delay = d }
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) { m.logger = logger }
}

type Machine struct {
	flags  flagstore.Store
	delay  time.Duration
	logger *slog.Logger

	mu     sync.Mutex
	state  State
	timer  *time.Timer
	closed bool
}

func New(flags flagstore.Store, opts ...Option) *Machine {
	m := &Machine{
		flags:  flags,
		delay:  DefaultAutoStartDelay,
		logger: slog.Default(),
		state:  State{Phase: PhaseDormant},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Init reads the durable flags. With neither flag set it schedules a single
// delayed transition into running; Close cancels it if it has not fired.
func (m *Machine) Init(ctx context.Context) error {
	completed, err := m.flagSet(ctx, CompletedKey)
	if err != nil {
		return err
	}
	skipped, err := m.flagSet(ctx, SkippedKey)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || m.state.Phase != PhaseDormant {
		return nil
	}

	switch {
	case completed:
		m.state.Phase = PhaseCompleted
	case skipped:
		m.state.Phase = PhaseSkipped
	default:
		m.state.Phase = PhaseAutoPending
		bg := context.WithoutCancel(ctx)
		m.timer = time.AfterFunc(m.delay, func() { m.autoStart(bg) })
		m.logger.DebugContext(ctx, "tour auto-start scheduled", "delay", m.delay)
	}
	return nil
}

// autoStart needs no flag writes: it only runs when neither flag is set.
func (m *Machine) autoStart(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || m.state.Phase != PhaseAutoPending {
		return
	}
	m.timer = nil
	m.state = State{Phase: PhaseRunning, Run: true, TourActive: true, StepIndex: 0}
	m.logger.DebugContext(ctx, "tour auto-started")
}

// Start shows the overlay from the first step and clears "skipped".
func (m *Machine) Start(ctx context.Context) error {
	err := m.remove(ctx, SkippedKey)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelTimerLocked()
	m.state = State{Phase: PhaseRunning, Run: true, TourActive: true, StepIndex: 0}
	return err
}

// Stop hides the overlay without touching the durable flags or the step.
func (m *Machine) Stop(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked(PhaseStopped)
	return nil
}

// Skip records the skip durably, then stops. The step index is kept.
func (m *Machine) Skip(ctx context.Context) error {
	err := m.set(ctx, SkippedKey)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked(PhaseSkipped)
	return err
}

// Complete records completion durably, clears "skipped", then stops.
func (m *Machine) Complete(ctx context.Context) error {
	err := errors.Join(m.set(ctx, CompletedKey), m.remove(ctx, SkippedKey))

	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked(PhaseCompleted)
	return err
}

// Reset forgets both durable flags and starts over.
func (m *Machine) Reset(ctx context.Context) error {
	err := errors.Join(m.remove(ctx, CompletedKey), m.remove(ctx, SkippedKey))
	return errors.Join(err, m.Start(ctx))
}

// SetStep moves the overlay to step i.
func (m *Machine) SetStep(_ context.Context, i int) error {
	if i < 0 {
		return ErrInvalidStep
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.StepIndex = i
	return nil
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Close tears the machine down: a pending auto-start never fires.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.cancelTimerLocked()
}

func (m *Machine) stopLocked(phase Phase) {
	m.cancelTimerLocked()
	m.state.Run = false
	m.state.TourActive = false
	m.state.Phase = phase
}

func (m *Machine) cancelTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func (m *Machine) flagSet(ctx context.Context, key string) (bool, error) {
	v, ok, err := m.flags.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", key, err)
	}
	return ok && v == flagTrue, nil
}

func (m *Machine) set(ctx context.Context, key string) error {
	if err := m.flags.Set(ctx, key, flagTrue); err != nil {
		m.logger.WarnContext(ctx, "tour flag write failed", "key", key, "error", err)
		return fmt.Errorf("setting %s: %w", key, err)
	}
	return nil
}

func (m *Machine) remove(ctx context.Context, key string) error {
	if err := m.flags.Remove(ctx, key); err != nil {
		m.logger.WarnContext(ctx, "tour flag remove failed", "key", key, "error", err)
		return fmt.Errorf("removing %s: %w", key, err)
	}
	return nil
}
