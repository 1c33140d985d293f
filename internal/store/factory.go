package store

import (
	"basegraph.app/taskflow/core/db"
)

// Stores is the Postgres-backed Provider.
type Stores struct {
	db *db.DB
}

func NewStores(database *db.DB) *Stores {
	return &Stores{db: database}
}

func (s *Stores) Users() UserStore {
	return newUserStore(s.db.Querier())
}

func (s *Stores) Workspaces() WorkspaceStore {
	return newWorkspaceStore(s.db.Querier())
}

func (s *Stores) Members() MemberStore {
	return newMemberStore(s.db.Querier())
}

func (s *Stores) Tasks() TaskStore {
	return newTaskStore(s.db)
}
