package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"basegraph.app/taskflow/internal/model"
)

// Memory is an in-process Provider with the same relational behaviour as the
// Postgres stores: unique slugs and positions, cascading workspace deletes and
// expanded reads. It backs STORE_DRIVER=memory and the test suites.
type Memory struct {
	mu         sync.RWMutex
	seq        int64
	users      map[int64]model.User
	categories map[int64]model.Category
	workspaces map[int64]model.Workspace
	members    map[memberKey]memberRow
	tasks      map[int64]taskRow
}

type memberKey struct {
	workspaceID int64
	userID      int64
}

type memberRow struct {
	member model.WorkspaceMember
	seq    int64
}

type taskRow struct {
	task model.Task
	seq  int64
}

func NewMemory() *Memory {
	return &Memory{
		users:      make(map[int64]model.User),
		categories: make(map[int64]model.Category),
		workspaces: make(map[int64]model.Workspace),
		members:    make(map[memberKey]memberRow),
		tasks:      make(map[int64]taskRow),
	}
}

// AddUser seeds a user row.
func (m *Memory) AddUser(u model.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	m.users[u.ID] = u
}

// AddCategory seeds a category row.
func (m *Memory) AddCategory(c model.Category) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories[c.ID] = c
}

func (m *Memory) Users() UserStore           { return memUsers{m} }
func (m *Memory) Workspaces() WorkspaceStore { return memWorkspaces{m} }
func (m *Memory) Members() MemberStore       { return memMembers{m} }
func (m *Memory) Tasks() TaskStore           { return memTasks{m} }

func (m *Memory) nextSeq() int64 {
	m.seq++
	return m.seq
}

type memUsers struct{ m *Memory }

func (s memUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	u, ok := s.m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

type memWorkspaces struct{ m *Memory }

func (s memWorkspaces) GetByID(_ context.Context, id int64) (*model.Workspace, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	ws, ok := s.m.workspaces[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &ws, nil
}

func (s memWorkspaces) GetBySlug(_ context.Context, slug string) (*model.Workspace, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	for _, ws := range s.m.workspaces {
		if ws.Slug == slug {
			return &ws, nil
		}
	}
	return nil, ErrNotFound
}

func (s memWorkspaces) GetForMember(_ context.Context, id, userID int64) (*model.Workspace, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	ws, ok := s.m.workspaces[id]
	if !ok {
		return nil, ErrNotFound
	}
	row, ok := s.m.members[memberKey{id, userID}]
	if !ok {
		return nil, ErrNotFound
	}
	ws.Role = row.member.Role
	return &ws, nil
}

func (s memWorkspaces) Create(_ context.Context, ws *model.Workspace) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.workspaces[ws.ID]; ok {
		return fmt.Errorf("%w: workspaces_pkey", ErrConflict)
	}
	if _, ok := s.m.users[ws.OwnerID]; !ok {
		return fmt.Errorf("owner %d: %w", ws.OwnerID, ErrNotFound)
	}
	for _, other := range s.m.workspaces {
		if other.Slug == ws.Slug {
			return fmt.Errorf("%w: workspaces_slug_key", ErrConflict)
		}
	}
	now := time.Now().UTC()
	ws.CreatedAt, ws.UpdatedAt = now, now
	row := *ws
	row.Role = ""
	s.m.workspaces[ws.ID] = row
	return nil
}

func (s memWorkspaces) Update(_ context.Context, ws *model.Workspace) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	existing, ok := s.m.workspaces[ws.ID]
	if !ok {
		return ErrNotFound
	}
	for id, other := range s.m.workspaces {
		if id != ws.ID && other.Slug == ws.Slug {
			return fmt.Errorf("%w: workspaces_slug_key", ErrConflict)
		}
	}
	existing.Name = ws.Name
	existing.Slug = ws.Slug
	existing.Description = ws.Description
	existing.UpdatedAt = time.Now().UTC()
	s.m.workspaces[ws.ID] = existing

	role := ws.Role
	*ws = existing
	ws.Role = role
	return nil
}

func (s memWorkspaces) Delete(_ context.Context, id int64) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.workspaces[id]; !ok {
		return ErrNotFound
	}
	delete(s.m.workspaces, id)
	for k := range s.m.members {
		if k.workspaceID == id {
			delete(s.m.members, k)
		}
	}
	for tid, row := range s.m.tasks {
		if row.task.WorkspaceID == id {
			delete(s.m.tasks, tid)
		}
	}
	for cid, c := range s.m.categories {
		if c.WorkspaceID == id {
			delete(s.m.categories, cid)
		}
	}
	return nil
}

func (s memWorkspaces) ListByMember(_ context.Context, userID int64) ([]model.Workspace, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	result := []model.Workspace{}
	for k, row := range s.m.members {
		if k.userID != userID {
			continue
		}
		ws, ok := s.m.workspaces[k.workspaceID]
		if !ok {
			continue
		}
		ws.Role = row.member.Role
		result = append(result, ws)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

type memMembers struct{ m *Memory }

func (s memMembers) Add(_ context.Context, member *model.WorkspaceMember) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.workspaces[member.WorkspaceID]; !ok {
		return fmt.Errorf("workspace %d: %w", member.WorkspaceID, ErrNotFound)
	}
	if _, ok := s.m.users[member.UserID]; !ok {
		return fmt.Errorf("user %d: %w", member.UserID, ErrNotFound)
	}
	if !member.Role.Valid() {
		return fmt.Errorf("invalid role %q", member.Role)
	}
	key := memberKey{member.WorkspaceID, member.UserID}
	if _, ok := s.m.members[key]; ok {
		return fmt.Errorf("%w: workspace_members_pkey", ErrConflict)
	}
	member.CreatedAt = time.Now().UTC()
	row := *member
	row.User = nil
	s.m.members[key] = memberRow{member: row, seq: s.m.nextSeq()}
	return nil
}

func (s memMembers) Get(_ context.Context, workspaceID, userID int64) (*model.WorkspaceMember, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	row, ok := s.m.members[memberKey{workspaceID, userID}]
	if !ok {
		return nil, ErrNotFound
	}
	m := row.member
	return &m, nil
}

func (s memMembers) ListByWorkspace(_ context.Context, workspaceID int64) ([]model.WorkspaceMember, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	rows := []memberRow{}
	for k, row := range s.m.members {
		if k.workspaceID == workspaceID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	result := make([]model.WorkspaceMember, len(rows))
	for i, row := range rows {
		result[i] = row.member
		if u, ok := s.m.users[row.member.UserID]; ok {
			result[i].User = u.Summary()
		}
	}
	return result, nil
}

type memTasks struct{ m *Memory }

func (s memTasks) GetByID(_ context.Context, workspaceID, id int64) (*model.Task, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	row, ok := s.m.tasks[id]
	if !ok || row.task.WorkspaceID != workspaceID {
		return nil, ErrNotFound
	}
	t := s.m.expandTask(row.task)
	return &t, nil
}

func (s memTasks) ListByWorkspace(_ context.Context, workspaceID int64) ([]model.Task, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	rows := []taskRow{}
	for _, row := range s.m.tasks {
		if row.task.WorkspaceID == workspaceID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].task.Position != rows[j].task.Position {
			return rows[i].task.Position < rows[j].task.Position
		}
		return rows[i].seq < rows[j].seq
	})

	result := make([]model.Task, len(rows))
	for i, row := range rows {
		result[i] = s.m.expandTask(row.task)
	}
	return result, nil
}

func (s memTasks) Create(_ context.Context, task *model.Task) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.workspaces[task.WorkspaceID]; !ok {
		return fmt.Errorf("workspace %d: %w", task.WorkspaceID, ErrNotFound)
	}
	if _, ok := s.m.users[task.CreatorID]; !ok {
		return fmt.Errorf("creator %d: %w", task.CreatorID, ErrNotFound)
	}
	if _, ok := s.m.tasks[task.ID]; ok {
		return fmt.Errorf("%w: tasks_pkey", ErrConflict)
	}
	if task.Position <= 0 {
		task.Position = s.m.maxPosition(task.WorkspaceID) + 1
	} else if s.m.positionTaken(task.WorkspaceID, task.Position, task.ID) {
		return fmt.Errorf("%w: tasks_workspace_id_position_key", ErrConflict)
	}

	now := time.Now().UTC()
	task.CreatedAt, task.UpdatedAt = now, now
	row := stripExpansion(*task)
	s.m.tasks[task.ID] = taskRow{task: row, seq: s.m.nextSeq()}
	*task = s.m.expandTask(row)
	return nil
}

func (s memTasks) Update(_ context.Context, task *model.Task) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	existing, ok := s.m.tasks[task.ID]
	if !ok || existing.task.WorkspaceID != task.WorkspaceID {
		return ErrNotFound
	}
	if s.m.positionTaken(task.WorkspaceID, task.Position, task.ID) {
		return fmt.Errorf("%w: tasks_workspace_id_position_key", ErrConflict)
	}

	row := stripExpansion(*task)
	row.CreatorID = existing.task.CreatorID
	row.CreatedAt = existing.task.CreatedAt
	row.UpdatedAt = time.Now().UTC()
	s.m.tasks[task.ID] = taskRow{task: row, seq: existing.seq}
	*task = s.m.expandTask(row)
	return nil
}

func (s memTasks) Delete(_ context.Context, workspaceID, id int64) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	row, ok := s.m.tasks[id]
	if !ok || row.task.WorkspaceID != workspaceID {
		return ErrNotFound
	}
	delete(s.m.tasks, id)
	return nil
}

func (m *Memory) maxPosition(workspaceID int64) int32 {
	var highest int32
	for _, row := range m.tasks {
		if row.task.WorkspaceID == workspaceID && row.task.Position > highest {
			highest = row.task.Position
		}
	}
	return highest
}

func (m *Memory) positionTaken(workspaceID int64, position int32, exceptID int64) bool {
	for id, row := range m.tasks {
		if id != exceptID && row.task.WorkspaceID == workspaceID && row.task.Position == position {
			return true
		}
	}
	return false
}

func (m *Memory) expandTask(t model.Task) model.Task {
	if t.CategoryID != nil {
		if c, ok := m.categories[*t.CategoryID]; ok {
			t.Category = &model.CategorySummary{ID: c.ID, Name: c.Name, Color: c.Color}
		}
	}
	if t.AssigneeID != nil {
		if u, ok := m.users[*t.AssigneeID]; ok {
			t.Assignee = u.Summary()
		}
	}
	if u, ok := m.users[t.CreatorID]; ok {
		t.Creator = u.Summary()
	}
	return t
}

func stripExpansion(t model.Task) model.Task {
	t.Category = nil
	t.Assignee = nil
	t.Creator = nil
	return t
}
