package service_test

import (
	"context"
	"sync/atomic"

	"basegraph.app/taskflow/internal/model"
	"basegraph.app/taskflow/internal/store"
)

// stubProvider serves the in-memory stores, swapping in members and tasks
// when a test needs to inject failures or count calls.
type stubProvider struct {
	store.Provider
	members store.MemberStore
	tasks   store.TaskStore
}

func (p *stubProvider) Members() store.MemberStore {
	if p.members != nil {
		return p.members
	}
	return p.Provider.Members()
}

func (p *stubProvider) Tasks() store.TaskStore {
	if p.tasks != nil {
		return p.tasks
	}
	return p.Provider.Tasks()
}

type mockMemberStore struct {
	store.MemberStore
	addFn    func(ctx context.Context, member *model.WorkspaceMember) error
	addCalls atomic.Int32
}

func (m *mockMemberStore) Add(ctx context.Context, member *model.WorkspaceMember) error {
	m.addCalls.Add(1)
	if m.addFn != nil {
		return m.addFn(ctx, member)
	}
	return m.MemberStore.Add(ctx, member)
}

type mockTaskStore struct {
	store.TaskStore
	listFn    func(ctx context.Context, workspaceID int64) ([]model.Task, error)
	createFn  func(ctx context.Context, task *model.Task) error
	listCalls atomic.Int32
}

func (m *mockTaskStore) Create(ctx context.Context, task *model.Task) error {
	if m.createFn != nil {
		return m.createFn(ctx, task)
	}
	return m.TaskStore.Create(ctx, task)
}

func (m *mockTaskStore) ListByWorkspace(ctx context.Context, workspaceID int64) ([]model.Task, error) {
	m.listCalls.Add(1)
	if m.listFn != nil {
		return m.listFn(ctx, workspaceID)
	}
	return m.TaskStore.ListByWorkspace(ctx, workspaceID)
}

func strPtr(s string) *string { return &s }

func int32Ptr(v int32) *int32 { return &v }

func int64Ptr(v int64) *int64 { return &v }
