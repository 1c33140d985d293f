package store

import (
	"context"
	"errors"

	"basegraph.app/taskflow/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write violates a uniqueness constraint,
// e.g. two tasks claiming the same position in a workspace.
var ErrConflict = errors.New("conflict")

// UserStore defines the contract for user lookups
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// WorkspaceStore defines the contract for workspace data access
type WorkspaceStore interface {
	GetByID(ctx context.Context, id int64) (*model.Workspace, error)
	GetBySlug(ctx context.Context, slug string) (*model.Workspace, error)
	// GetForMember returns the workspace with Role set to the user's membership
	// role. ErrNotFound when the user is not a member.
	GetForMember(ctx context.Context, id, userID int64) (*model.Workspace, error)
	Create(ctx context.Context, ws *model.Workspace) error
	Update(ctx context.Context, ws *model.Workspace) error
	Delete(ctx context.Context, id int64) error // memberships and tasks cascade
	// ListByMember returns every workspace the user belongs to, oldest first,
	// with Role set to that user's membership role.
	ListByMember(ctx context.Context, userID int64) ([]model.Workspace, error)
}

// MemberStore defines the contract for workspace membership data access
type MemberStore interface {
	Add(ctx context.Context, member *model.WorkspaceMember) error
	Get(ctx context.Context, workspaceID, userID int64) (*model.WorkspaceMember, error)
	ListByWorkspace(ctx context.Context, workspaceID int64) ([]model.WorkspaceMember, error)
}

// TaskStore defines the contract for task data access. Reads expand the
// category, assignee and creator summaries.
type TaskStore interface {
	GetByID(ctx context.Context, workspaceID, id int64) (*model.Task, error)
	// ListByWorkspace returns tasks ascending by position, ties by insertion order.
	ListByWorkspace(ctx context.Context, workspaceID int64) ([]model.Task, error)
	// Create inserts the task. A zero Position appends it after the current maximum.
	Create(ctx context.Context, task *model.Task) error
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, workspaceID, id int64) error
}

// Provider hands out the stores the sync layer reads from and writes to.
type Provider interface {
	Users() UserStore
	Workspaces() WorkspaceStore
	Members() MemberStore
	Tasks() TaskStore
}
