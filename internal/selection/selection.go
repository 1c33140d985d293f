// Package selection holds the process-wide "current context": which workspace
// is selected and whether the sidebar is open. Last write wins; callers are
// responsible for only selecting workspaces the actor may access.
package selection

import "sync"

type State struct {
	WorkspaceID *int64 `json:"workspace_id,string,omitempty"`
	SidebarOpen bool   `json:"sidebar_open"`
}

type Store struct {
	mu    sync.RWMutex
	state State
}

func New() *Store {
	return &Store{state: State{SidebarOpen: true}}
}

// SetCurrentWorkspace selects a workspace; nil clears the selection.
func (s *Store) SetCurrentWorkspace(workspaceID *int64) {
	var v *int64
	if workspaceID != nil {
		id := *workspaceID
		v = &id
	}
	s.mu.Lock()
	s.state.WorkspaceID = v
	s.mu.Unlock()
}

func (s *Store) SetSidebarOpen(open bool) {
	s.mu.Lock()
	s.state.SidebarOpen = open
	s.mu.Unlock()
}

func (s *Store) CurrentWorkspace() *int64 {
	return s.Snapshot().WorkspaceID
}

func (s *Store) SidebarOpen() bool {
	return s.Snapshot().SidebarOpen
}

func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	if st.WorkspaceID != nil {
		id := *st.WorkspaceID
		st.WorkspaceID = &id
	}
	return st
}
