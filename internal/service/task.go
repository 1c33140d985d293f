package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"basegraph.app/taskflow/common/id"
	"basegraph.app/taskflow/common/logger"
	"basegraph.app/taskflow/internal/auth"
	"basegraph.app/taskflow/internal/cache"
	"basegraph.app/taskflow/internal/model"
	"basegraph.app/taskflow/internal/mutation"
	"basegraph.app/taskflow/internal/store"
)

const entityTasks = "tasks"

type CreateTaskInput struct {
	WorkspaceID int64
	Title       string
	Description *string
	Status      model.TaskStatus
	Priority    model.TaskPriority
	CategoryID  *int64
	AssigneeID  *int64
	DueDate     *time.Time
	// Position nil appends after the workspace's highest position.
	Position *int32
}

// UpdateTaskInput changes only the fields that are set.
type UpdateTaskInput struct {
	WorkspaceID int64
	ID          int64
	Title       *string
	Description *string
	Status      *model.TaskStatus
	Priority    *model.TaskPriority
	CategoryID  *int64
	AssigneeID  *int64
	DueDate     *time.Time
	Position    *int32
}

type MoveTaskInput struct {
	WorkspaceID int64
	ID          int64
	Position    int32
}

type DeleteTaskInput struct {
	WorkspaceID int64
	ID          int64
}

// TaskSync serves cached task views and the task mutations. Every task
// mutation invalidates the whole tasks/<workspace> subtree.
type TaskSync struct {
	stores store.Provider
	actors auth.ActorSource
	cache  *cache.Cache
	coord  *mutation.Coordinator
	logger *slog.Logger
}

func NewTaskSync(stores store.Provider, actors auth.ActorSource, c *cache.Cache, coord *mutation.Coordinator, log *slog.Logger) *TaskSync {
	if log == nil {
		log = slog.Default()
	}
	return &TaskSync{stores: stores, actors: actors, cache: c, coord: coord, logger: log}
}

func tasksKey(workspaceID int64) cache.Key { return cache.NewKey(entityTasks, workspaceID) }

func taskKey(workspaceID, taskID int64) cache.Key {
	return cache.NewKey(entityTasks, workspaceID, taskID)
}

func tasksPattern(workspaceID int64) []cache.Pattern {
	return []cache.Pattern{cache.Match(entityTasks, workspaceID)}
}

// List returns the workspace's tasks ascending by position. A zero workspace
// means nothing is selected: the view is empty and ready, and nothing is fetched.
func (s *TaskSync) List(ctx context.Context, workspaceID int64, opts ...ReadOption) View[[]model.Task] {
	if workspaceID == 0 {
		return View[[]model.Task]{Value: []model.Task{}}
	}
	if _, err := s.actors.CurrentActor(ctx); err != nil {
		return errView[[]model.Task](err)
	}
	return read(ctx, s.cache, tasksKey(workspaceID), func(ctx context.Context) ([]model.Task, error) {
		tasks, err := s.stores.Tasks().ListByWorkspace(ctx, workspaceID)
		if err != nil {
			return nil, fmt.Errorf("listing tasks of workspace %d: %w", workspaceID, err)
		}
		return tasks, nil
	}, opts)
}

func (s *TaskSync) Get(ctx context.Context, workspaceID, taskID int64, opts ...ReadOption) View[*model.Task] {
	if _, err := s.actors.CurrentActor(ctx); err != nil {
		return errView[*model.Task](err)
	}
	return read(ctx, s.cache, taskKey(workspaceID, taskID), func(ctx context.Context) (*model.Task, error) {
		t, err := s.stores.Tasks().GetByID(ctx, workspaceID, taskID)
		if err != nil {
			return nil, fmt.Errorf("getting task %d: %w", taskID, err)
		}
		return t, nil
	}, opts)
}

// Create runs on a call site of its own, as do Update, Move and Delete:
// unrelated callers never supersede each other.
func (s *TaskSync) Create(ctx context.Context, in CreateTaskInput) (*model.Task, error) {
	return s.NewCreateCallSite().Invoke(ctx, in)
}

func (s *TaskSync) Update(ctx context.Context, in UpdateTaskInput) (*model.Task, error) {
	return s.NewUpdateCallSite().Invoke(ctx, in)
}

func (s *TaskSync) Move(ctx context.Context, in MoveTaskInput) (*model.Task, error) {
	return s.NewMoveCallSite().Invoke(ctx, in)
}

// Delete removes the task. Sibling positions are left as they are.
func (s *TaskSync) Delete(ctx context.Context, in DeleteTaskInput) error {
	_, err := s.NewDeleteCallSite().Invoke(ctx, in)
	return err
}

func (s *TaskSync) NewCreateCallSite() *mutation.CallSite[CreateTaskInput, *model.Task] {
	return mutation.NewCallSite(s.coord, mutation.Operation[CreateTaskInput, *model.Task]{
		Name: "task.create",
		Run:  s.runCreate,
		Invalidates: func(in CreateTaskInput, _ *model.Task) []cache.Pattern {
			return tasksPattern(in.WorkspaceID)
		},
		SuccessMessage: func(_ CreateTaskInput, t *model.Task) string {
			return fmt.Sprintf("Task %q created", t.Title)
		},
		FailureTitle: "Could not create task",
	})
}

func (s *TaskSync) NewUpdateCallSite() *mutation.CallSite[UpdateTaskInput, *model.Task] {
	return mutation.NewCallSite(s.coord, mutation.Operation[UpdateTaskInput, *model.Task]{
		Name: "task.update",
		Run:  s.runUpdate,
		Invalidates: func(in UpdateTaskInput, _ *model.Task) []cache.Pattern {
			return tasksPattern(in.WorkspaceID)
		},
		SuccessMessage: func(UpdateTaskInput, *model.Task) string { return "Task updated" },
		FailureTitle:   "Could not update task",
	})
}

func (s *TaskSync) NewMoveCallSite() *mutation.CallSite[MoveTaskInput, *model.Task] {
	return mutation.NewCallSite(s.coord, mutation.Operation[MoveTaskInput, *model.Task]{
		Name: "task.move",
		Run: func(ctx context.Context, in MoveTaskInput) (*model.Task, error) {
			return s.runUpdate(ctx, UpdateTaskInput{WorkspaceID: in.WorkspaceID, ID: in.ID, Position: &in.Position})
		},
		Invalidates: func(in MoveTaskInput, _ *model.Task) []cache.Pattern {
			return tasksPattern(in.WorkspaceID)
		},
		SuccessMessage: func(MoveTaskInput, *model.Task) string { return "Task moved" },
		FailureTitle:   "Could not move task",
	})
}

func (s *TaskSync) NewDeleteCallSite() *mutation.CallSite[DeleteTaskInput, DeleteTaskInput] {
	return mutation.NewCallSite(s.coord, mutation.Operation[DeleteTaskInput, DeleteTaskInput]{
		Name: "task.delete",
		Run:  s.runDelete,
		Invalidates: func(in DeleteTaskInput, _ DeleteTaskInput) []cache.Pattern {
			return tasksPattern(in.WorkspaceID)
		},
		SuccessMessage: func(DeleteTaskInput, DeleteTaskInput) string { return "Task deleted" },
		FailureTitle:   "Could not delete task",
	})
}

func (s *TaskSync) runCreate(ctx context.Context, in CreateTaskInput) (*model.Task, error) {
	actor, err := s.actors.CurrentActor(ctx)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: task title is required", ErrInvalidInput)
	}
	if in.WorkspaceID == 0 {
		return nil, fmt.Errorf("%w: workspace is required", ErrInvalidInput)
	}

	t := &model.Task{
		ID:          id.New(),
		WorkspaceID: in.WorkspaceID,
		CategoryID:  in.CategoryID,
		AssigneeID:  in.AssigneeID,
		CreatorID:   actor,
		Title:       title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
	}
	if t.Status == "" {
		t.Status = model.TaskStatusTodo
	}
	if t.Priority == "" {
		t.Priority = model.TaskPriorityMedium
	}
	if in.Position != nil {
		if *in.Position < 1 {
			return nil, fmt.Errorf("%w: position must be positive", ErrInvalidInput)
		}
		t.Position = *in.Position
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{WorkspaceID: &t.WorkspaceID, TaskID: &t.ID, UserID: &actor})
	if err := s.stores.Tasks().Create(ctx, t); err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}
	s.logger.DebugContext(ctx, "task created", "position", t.Position)
	return t, nil
}

func (s *TaskSync) runUpdate(ctx context.Context, in UpdateTaskInput) (*model.Task, error) {
	if _, err := s.actors.CurrentActor(ctx); err != nil {
		return nil, err
	}
	t, err := s.stores.Tasks().GetByID(ctx, in.WorkspaceID, in.ID)
	if err != nil {
		return nil, fmt.Errorf("getting task %d: %w", in.ID, err)
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: task title is required", ErrInvalidInput)
		}
		t.Title = title
	}
	if in.Description != nil {
		t.Description = in.Description
	}
	if in.Status != nil {
		t.Status = *in.Status
	}
	if in.Priority != nil {
		t.Priority = *in.Priority
	}
	if in.CategoryID != nil {
		t.CategoryID = in.CategoryID
	}
	if in.AssigneeID != nil {
		t.AssigneeID = in.AssigneeID
	}
	if in.DueDate != nil {
		t.DueDate = in.DueDate
	}
	if in.Position != nil {
		if *in.Position < 1 {
			return nil, fmt.Errorf("%w: position must be positive", ErrInvalidInput)
		}
		t.Position = *in.Position
	}

	if err := s.stores.Tasks().Update(ctx, t); err != nil {
		return nil, fmt.Errorf("updating task %d: %w", in.ID, err)
	}
	return t, nil
}

func (s *TaskSync) runDelete(ctx context.Context, in DeleteTaskInput) (DeleteTaskInput, error) {
	if _, err := s.actors.CurrentActor(ctx); err != nil {
		return in, err
	}
	if err := s.stores.Tasks().Delete(ctx, in.WorkspaceID, in.ID); err != nil {
		return in, fmt.Errorf("deleting task %d: %w", in.ID, err)
	}
	return in, nil
}
