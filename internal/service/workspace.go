package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"basegraph.app/taskflow/common"
	"basegraph.app/taskflow/common/id"
	"basegraph.app/taskflow/common/logger"
	"basegraph.app/taskflow/internal/auth"
	"basegraph.app/taskflow/internal/cache"
	"basegraph.app/taskflow/internal/model"
	"basegraph.app/taskflow/internal/mutation"
	"basegraph.app/taskflow/internal/store"
)

const (
	entityWorkspaces = "workspaces"
	entityWorkspace  = "workspace"
	entityMembers    = "workspace_members"

	maxSlugAttempts = 20
)

var (
	// ErrPartialCreate means the workspace row exists but the owner
	// membership could not be recorded. Nothing is rolled back.
	ErrPartialCreate = errors.New("workspace created without owner membership")
	ErrInvalidInput  = errors.New("invalid input")
)

type CreateStatus string

const (
	CreateBothSucceeded      CreateStatus = "both-succeeded"
	CreateWorkspaceOnly      CreateStatus = "workspace-only"
	CreateFailedBeforeInsert CreateStatus = "failed-before-insert"
)

// CreateResult tags the outcome of the two-phase workspace create. Workspace
// is set whenever the workspace row was inserted.
type CreateResult struct {
	Status    CreateStatus
	Workspace *model.Workspace
	Err       error
}

type CreateWorkspaceInput struct {
	Name        string
	Slug        *string
	Description *string
}

type UpdateWorkspaceInput struct {
	ID          int64
	Name        *string
	Description *string
}

// WorkspaceSync serves cached workspace views and the workspace mutations.
type WorkspaceSync struct {
	stores store.Provider
	actors auth.ActorSource
	cache  *cache.Cache
	coord  *mutation.Coordinator
	logger *slog.Logger
}

func NewWorkspaceSync(stores store.Provider, actors auth.ActorSource, c *cache.Cache, coord *mutation.Coordinator, log *slog.Logger) *WorkspaceSync {
	if log == nil {
		log = slog.Default()
	}
	return &WorkspaceSync{stores: stores, actors: actors, cache: c, coord: coord, logger: log}
}

func workspacesKey(actor int64) cache.Key { return cache.NewKey(entityWorkspaces, actor) }
func membersKey(id int64) cache.Key       { return cache.NewKey(entityMembers, id) }

// workspaceKey is scoped by reader since the value carries the reader's role.
// Match(entityWorkspace, id) still covers every reader's entry.
func workspaceKey(id, actor int64) cache.Key { return cache.NewKey(entityWorkspace, id, actor) }

// List returns every workspace the current actor belongs to, oldest first,
// each carrying the actor's role.
func (s *WorkspaceSync) List(ctx context.Context, opts ...ReadOption) View[[]model.Workspace] {
	actor, err := s.actors.CurrentActor(ctx)
	if err != nil {
		return errView[[]model.Workspace](err)
	}
	return read(ctx, s.cache, workspacesKey(actor), func(ctx context.Context) ([]model.Workspace, error) {
		list, err := s.stores.Workspaces().ListByMember(ctx, actor)
		if err != nil {
			return nil, fmt.Errorf("listing workspaces: %w", err)
		}
		return list, nil
	}, opts)
}

// Get returns one workspace with the current actor's role. A workspace the
// actor is not a member of reads as not found.
func (s *WorkspaceSync) Get(ctx context.Context, workspaceID int64, opts ...ReadOption) View[*model.Workspace] {
	actor, err := s.actors.CurrentActor(ctx)
	if err != nil {
		return errView[*model.Workspace](err)
	}
	return read(ctx, s.cache, workspaceKey(workspaceID, actor), func(ctx context.Context) (*model.Workspace, error) {
		ws, err := s.stores.Workspaces().GetForMember(ctx, workspaceID, actor)
		if err != nil {
			return nil, fmt.Errorf("getting workspace %d: %w", workspaceID, err)
		}
		return ws, nil
	}, opts)
}

func (s *WorkspaceSync) Members(ctx context.Context, workspaceID int64, opts ...ReadOption) View[[]model.WorkspaceMember] {
	if _, err := s.actors.CurrentActor(ctx); err != nil {
		return errView[[]model.WorkspaceMember](err)
	}
	return read(ctx, s.cache, membersKey(workspaceID), func(ctx context.Context) ([]model.WorkspaceMember, error) {
		members, err := s.stores.Members().ListByWorkspace(ctx, workspaceID)
		if err != nil {
			return nil, fmt.Errorf("listing members of workspace %d: %w", workspaceID, err)
		}
		return members, nil
	}, opts)
}

// Create inserts the workspace and then the actor's owner membership. The
// returned result is never nil.
//
// Create and the other mutation methods run on a call site of their own, so
// concurrent callers never supersede each other. A caller that wants its
// re-invocations to supersede holds a site from the New*CallSite constructors.
func (s *WorkspaceSync) Create(ctx context.Context, in CreateWorkspaceInput) (*CreateResult, error) {
	return s.NewCreateCallSite().Invoke(ctx, in)
}

func (s *WorkspaceSync) Update(ctx context.Context, in UpdateWorkspaceInput) (*model.Workspace, error) {
	return s.NewUpdateCallSite().Invoke(ctx, in)
}

// Delete removes the workspace; its memberships and tasks go with it.
func (s *WorkspaceSync) Delete(ctx context.Context, workspaceID int64) error {
	_, err := s.NewDeleteCallSite().Invoke(ctx, workspaceID)
	return err
}

// RetryOwnerMembership records the missing owner membership after a
// workspace-only create. It is a no-op when the membership already exists.
func (s *WorkspaceSync) RetryOwnerMembership(ctx context.Context, workspaceID int64) (*model.WorkspaceMember, error) {
	return s.NewRetryOwnerCallSite().Invoke(ctx, workspaceID)
}

func (s *WorkspaceSync) NewCreateCallSite() *mutation.CallSite[CreateWorkspaceInput, *CreateResult] {
	return mutation.NewCallSite(s.coord, mutation.Operation[CreateWorkspaceInput, *CreateResult]{
		Name: "workspace.create",
		Run:  s.runCreate,
		Invalidates: func(_ CreateWorkspaceInput, r *CreateResult) []cache.Pattern {
			return []cache.Pattern{cache.Match(entityWorkspaces), cache.Match(entityMembers, r.Workspace.ID)}
		},
		SuccessMessage: func(_ CreateWorkspaceInput, r *CreateResult) string {
			return fmt.Sprintf("Workspace %q created", r.Workspace.Name)
		},
		FailureTitle: "Could not create workspace",
	})
}

func (s *WorkspaceSync) NewUpdateCallSite() *mutation.CallSite[UpdateWorkspaceInput, *model.Workspace] {
	return mutation.NewCallSite(s.coord, mutation.Operation[UpdateWorkspaceInput, *model.Workspace]{
		Name: "workspace.update",
		Run:  s.runUpdate,
		Invalidates: func(in UpdateWorkspaceInput, _ *model.Workspace) []cache.Pattern {
			return []cache.Pattern{cache.Match(entityWorkspaces), cache.Match(entityWorkspace, in.ID)}
		},
		SuccessMessage: func(_ UpdateWorkspaceInput, ws *model.Workspace) string {
			return fmt.Sprintf("Workspace %q updated", ws.Name)
		},
		FailureTitle: "Could not update workspace",
	})
}

func (s *WorkspaceSync) NewDeleteCallSite() *mutation.CallSite[int64, int64] {
	return mutation.NewCallSite(s.coord, mutation.Operation[int64, int64]{
		Name: "workspace.delete",
		Run:  s.runDelete,
		Invalidates: func(workspaceID int64, _ int64) []cache.Pattern {
			return []cache.Pattern{
				cache.Match(entityWorkspaces),
				cache.Match(entityWorkspace, workspaceID),
				cache.Match(entityMembers, workspaceID),
				cache.Match(entityTasks, workspaceID),
			}
		},
		SuccessMessage: func(int64, int64) string { return "Workspace deleted" },
		FailureTitle:   "Could not delete workspace",
	})
}

func (s *WorkspaceSync) NewRetryOwnerCallSite() *mutation.CallSite[int64, *model.WorkspaceMember] {
	return mutation.NewCallSite(s.coord, mutation.Operation[int64, *model.WorkspaceMember]{
		Name: "workspace.retry_owner",
		Run:  s.runRetryOwner,
		Invalidates: func(workspaceID int64, _ *model.WorkspaceMember) []cache.Pattern {
			return []cache.Pattern{cache.Match(entityWorkspaces), cache.Match(entityMembers, workspaceID)}
		},
		SuccessMessage: func(int64, *model.WorkspaceMember) string { return "Workspace membership restored" },
		FailureTitle:   "Could not add you to the workspace",
	})
}

func (s *WorkspaceSync) runCreate(ctx context.Context, in CreateWorkspaceInput) (*CreateResult, error) {
	failed := func(err error) (*CreateResult, error) {
		return &CreateResult{Status: CreateFailedBeforeInsert, Err: err}, err
	}

	actor, err := s.actors.CurrentActor(ctx)
	if err != nil {
		return failed(err)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return failed(fmt.Errorf("%w: workspace name is required", ErrInvalidInput))
	}
	slug, err := s.ensureSlug(ctx, name, in.Slug)
	if err != nil {
		return failed(err)
	}

	ws := &model.Workspace{
		ID:          id.New(),
		OwnerID:     actor,
		Name:        name,
		Slug:        slug,
		Description: in.Description,
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{WorkspaceID: &ws.ID, UserID: &actor})

	if err := s.stores.Workspaces().Create(ctx, ws); err != nil {
		return failed(fmt.Errorf("creating workspace: %w", err))
	}

	owner := &model.WorkspaceMember{WorkspaceID: ws.ID, UserID: actor, Role: model.RoleOwner}
	if err := s.stores.Members().Add(ctx, owner); err != nil {
		s.logger.ErrorContext(ctx, "owner membership insert failed after workspace insert", "error", err)
		err = fmt.Errorf("%w: %w", ErrPartialCreate, err)
		return &CreateResult{Status: CreateWorkspaceOnly, Workspace: ws, Err: err}, err
	}

	ws.Role = model.RoleOwner
	s.logger.InfoContext(ctx, "workspace created", "slug", ws.Slug)
	return &CreateResult{Status: CreateBothSucceeded, Workspace: ws}, nil
}

func (s *WorkspaceSync) runUpdate(ctx context.Context, in UpdateWorkspaceInput) (*model.Workspace, error) {
	actor, err := s.actors.CurrentActor(ctx)
	if err != nil {
		return nil, err
	}
	ws, err := s.stores.Workspaces().GetForMember(ctx, in.ID, actor)
	if err != nil {
		return nil, fmt.Errorf("getting workspace %d: %w", in.ID, err)
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: workspace name is required", ErrInvalidInput)
		}
		ws.Name = name
	}
	if in.Description != nil {
		ws.Description = in.Description
	}

	if err := s.stores.Workspaces().Update(ctx, ws); err != nil {
		return nil, fmt.Errorf("updating workspace %d: %w", in.ID, err)
	}
	return ws, nil
}

func (s *WorkspaceSync) runDelete(ctx context.Context, workspaceID int64) (int64, error) {
	if _, err := s.actors.CurrentActor(ctx); err != nil {
		return 0, err
	}
	if err := s.stores.Workspaces().Delete(ctx, workspaceID); err != nil {
		return 0, fmt.Errorf("deleting workspace %d: %w", workspaceID, err)
	}
	return workspaceID, nil
}

func (s *WorkspaceSync) runRetryOwner(ctx context.Context, workspaceID int64) (*model.WorkspaceMember, error) {
	actor, err := s.actors.CurrentActor(ctx)
	if err != nil {
		return nil, err
	}
	ws, err := s.stores.Workspaces().GetByID(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("getting workspace %d: %w", workspaceID, err)
	}
	if ws.OwnerID != actor {
		return nil, fmt.Errorf("%w: only the creator can claim ownership", ErrInvalidInput)
	}

	existing, err := s.stores.Members().Get(ctx, workspaceID, actor)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("checking membership: %w", err)
	}

	owner := &model.WorkspaceMember{WorkspaceID: workspaceID, UserID: actor, Role: model.RoleOwner}
	if err := s.stores.Members().Add(ctx, owner); err != nil {
		return nil, fmt.Errorf("adding owner membership: %w", err)
	}
	return owner, nil
}

func (s *WorkspaceSync) ensureSlug(ctx context.Context, name string, slug *string) (string, error) {
	input := name
	if slug != nil && *slug != "" {
		input = *slug
	}

	base, err := common.Slugify(input, "workspace")
	if err != nil {
		return "", fmt.Errorf("generating slug: %w", err)
	}

	if _, err := s.stores.Workspaces().GetBySlug(ctx, base); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return base, nil
		}
		return "", fmt.Errorf("checking slug availability: %w", err)
	}

	for i := 2; i <= maxSlugAttempts; i++ {
		candidate := common.WithSuffix(base, i)
		_, err := s.stores.Workspaces().GetBySlug(ctx, candidate)
		if errors.Is(err, store.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("checking slug availability: %w", err)
		}
	}

	return "", fmt.Errorf("%w: no available slug for %q", store.ErrConflict, base)
}
