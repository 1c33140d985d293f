package service

import (
	"context"
	"fmt"
	"log/slog"

	"basegraph.app/taskflow/common/logger"
	"basegraph.app/taskflow/internal/auth"
	"basegraph.app/taskflow/internal/cache"
	"basegraph.app/taskflow/internal/mutation"
	"basegraph.app/taskflow/internal/notify"
	"basegraph.app/taskflow/internal/selection"
	"basegraph.app/taskflow/internal/store"
	"basegraph.app/taskflow/internal/tour"
)

// Deps are the collaborators Services is built from.
type Deps struct {
	Stores  store.Provider
	Session *auth.Session
	Tour    *tour.Machine
	// Notices buffers toasts for the presenter. Sink, if set, receives them too.
	Notices *notify.MemorySink
	Sink    notify.Sink
	Logger  *slog.Logger
}

// Services is the per-process context object: one cache, one selection and
// one tour per signed-in client, shared by every view.
type Services struct {
	stores    store.Provider
	session   *auth.Session
	cache     *cache.Cache
	coord     *mutation.Coordinator
	selection *selection.Store
	notices   *notify.MemorySink
	tour      *tour.Machine
	logger    *slog.Logger

	workspaces *WorkspaceSync
	tasks      *TaskSync
}

func NewServices(deps Deps) *Services {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	notices := deps.Notices
	if notices == nil {
		notices = notify.NewMemorySink(0)
	}
	var sink notify.Sink = notices
	if deps.Sink != nil {
		sink = notify.Fanout{notices, deps.Sink}
	}

	c := cache.New(log)
	coord := mutation.NewCoordinator(c, sink, log)

	return &Services{
		stores:     deps.Stores,
		session:    deps.Session,
		cache:      c,
		coord:      coord,
		selection:  selection.New(),
		notices:    notices,
		tour:       deps.Tour,
		logger:     log,
		workspaces: NewWorkspaceSync(deps.Stores, deps.Session, c, coord, log),
		tasks:      NewTaskSync(deps.Stores, deps.Session, c, coord, log),
	}
}

func (s *Services) Workspaces() *WorkspaceSync         { return s.workspaces }
func (s *Services) Tasks() *TaskSync                   { return s.tasks }
func (s *Services) Selection() *selection.Store        { return s.selection }
func (s *Services) Tour() *tour.Machine                { return s.tour }
func (s *Services) Notices() *notify.MemorySink        { return s.notices }
func (s *Services) Cache() *cache.Cache                { return s.cache }
func (s *Services) Coordinator() *mutation.Coordinator { return s.coord }

func (s *Services) CurrentActor(ctx context.Context) (int64, error) {
	return s.session.CurrentActor(ctx)
}

// SignIn switches the session to userID. Cached views and the selection
// belong to the previous actor, so both are dropped.
func (s *Services) SignIn(ctx context.Context, userID int64) error {
	if _, err := s.stores.Users().GetByID(ctx, userID); err != nil {
		return fmt.Errorf("getting user %d: %w", userID, err)
	}
	s.session.SignIn(userID)
	s.reset()
	ctx = logger.WithLogFields(ctx, logger.LogFields{UserID: &userID})
	s.logger.InfoContext(ctx, "signed in")
	return nil
}

func (s *Services) SignOut(ctx context.Context) {
	s.session.SignOut()
	s.reset()
	s.logger.InfoContext(ctx, "signed out")
}

func (s *Services) reset() {
	s.cache.Clear()
	s.selection.SetCurrentWorkspace(nil)
}
