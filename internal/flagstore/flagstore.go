// Package flagstore persists small per-profile string flags outside process
// memory (the local-storage equivalent the onboarding tour relies on).
package flagstore

import (
	"context"
	"sync"
)

// Store is a durable key/value flag store scoped to one profile.
type Store interface {
	// Get returns the value and whether the key is present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Memory is a non-durable Store for tests and FLAG_STORE=memory.
type Memory struct {
	mu    sync.RWMutex
	flags map[string]string
}

func NewMemory() *Memory {
	return &Memory{flags: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.flags[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flags[key] = value
	return nil
}

func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.flags, key)
	return nil
}
