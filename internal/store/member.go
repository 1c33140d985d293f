package store

import (
	"context"

	"basegraph.app/taskflow/core/db"
	"basegraph.app/taskflow/internal/model"
)

type memberStore struct {
	q db.Querier
}

func newMemberStore(q db.Querier) MemberStore {
	return &memberStore{q: q}
}

func (s *memberStore) Add(ctx context.Context, member *model.WorkspaceMember) error {
	err := s.q.QueryRow(ctx, `
		INSERT INTO workspace_members (workspace_id, user_id, role)
		VALUES ($1, $2, $3)
		RETURNING created_at`,
		member.WorkspaceID, member.UserID, member.Role,
	).Scan(&member.CreatedAt)
	return mapErr(err)
}

func (s *memberStore) Get(ctx context.Context, workspaceID, userID int64) (*model.WorkspaceMember, error) {
	m := model.WorkspaceMember{WorkspaceID: workspaceID, UserID: userID}
	err := s.q.QueryRow(ctx, `
		SELECT role, created_at FROM workspace_members
		WHERE workspace_id = $1 AND user_id = $2`,
		workspaceID, userID,
	).Scan(&m.Role, &m.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &m, nil
}

func (s *memberStore) ListByWorkspace(ctx context.Context, workspaceID int64) ([]model.WorkspaceMember, error) {
	rows, err := s.q.Query(ctx, `
		SELECT m.workspace_id, m.user_id, m.role, m.created_at, u.name, u.email, u.avatar_url
		FROM workspace_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.workspace_id = $1
		ORDER BY m.created_at ASC, m.user_id ASC`, workspaceID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	result := []model.WorkspaceMember{}
	for rows.Next() {
		var m model.WorkspaceMember
		u := &model.UserSummary{}
		if err := rows.Scan(&m.WorkspaceID, &m.UserID, &m.Role, &m.CreatedAt, &u.Name, &u.Email, &u.AvatarURL); err != nil {
			return nil, err
		}
		u.ID = m.UserID
		m.User = u
		result = append(result, m)
	}
	return result, mapErr(rows.Err())
}
