package store

import (
	"context"

	"basegraph.app/taskflow/core/db"
	"basegraph.app/taskflow/internal/model"
	"github.com/jackc/pgx/v5"
)

const workspaceColumns = `w.id, w.owner_id, w.name, w.slug, w.description, w.created_at, w.updated_at`

type workspaceStore struct {
	q db.Querier
}

func newWorkspaceStore(q db.Querier) WorkspaceStore {
	return &workspaceStore{q: q}
}

func (s *workspaceStore) GetByID(ctx context.Context, id int64) (*model.Workspace, error) {
	row := s.q.QueryRow(ctx, `SELECT `+workspaceColumns+` FROM workspaces w WHERE w.id = $1`, id)
	return scanWorkspace(row)
}

func (s *workspaceStore) GetBySlug(ctx context.Context, slug string) (*model.Workspace, error) {
	row := s.q.QueryRow(ctx, `SELECT `+workspaceColumns+` FROM workspaces w WHERE w.slug = $1`, slug)
	return scanWorkspace(row)
}

func (s *workspaceStore) GetForMember(ctx context.Context, id, userID int64) (*model.Workspace, error) {
	row := s.q.QueryRow(ctx, `
		SELECT `+workspaceColumns+`, m.role
		FROM workspaces w
		JOIN workspace_members m ON m.workspace_id = w.id
		WHERE w.id = $1 AND m.user_id = $2`, id, userID)

	var ws model.Workspace
	if err := row.Scan(&ws.ID, &ws.OwnerID, &ws.Name, &ws.Slug, &ws.Description, &ws.CreatedAt, &ws.UpdatedAt, &ws.Role); err != nil {
		return nil, mapErr(err)
	}
	return &ws, nil
}

func (s *workspaceStore) Create(ctx context.Context, ws *model.Workspace) error {
	row := s.q.QueryRow(ctx, `
		INSERT INTO workspaces AS w (id, owner_id, name, slug, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+workspaceColumns,
		ws.ID, ws.OwnerID, ws.Name, ws.Slug, ws.Description,
	)
	created, err := scanWorkspace(row)
	if err != nil {
		return err
	}
	*ws = *created
	return nil
}

func (s *workspaceStore) Update(ctx context.Context, ws *model.Workspace) error {
	row := s.q.QueryRow(ctx, `
		UPDATE workspaces AS w
		SET name = $2, slug = $3, description = $4, updated_at = now()
		WHERE w.id = $1
		RETURNING `+workspaceColumns,
		ws.ID, ws.Name, ws.Slug, ws.Description,
	)
	updated, err := scanWorkspace(row)
	if err != nil {
		return err
	}
	role := ws.Role
	*ws = *updated
	ws.Role = role
	return nil
}

func (s *workspaceStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM workspaces WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *workspaceStore) ListByMember(ctx context.Context, userID int64) ([]model.Workspace, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+workspaceColumns+`, m.role
		FROM workspaces w
		JOIN workspace_members m ON m.workspace_id = w.id
		WHERE m.user_id = $1
		ORDER BY w.created_at ASC, w.id ASC`, userID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	result := []model.Workspace{}
	for rows.Next() {
		var ws model.Workspace
		if err := rows.Scan(&ws.ID, &ws.OwnerID, &ws.Name, &ws.Slug, &ws.Description, &ws.CreatedAt, &ws.UpdatedAt, &ws.Role); err != nil {
			return nil, err
		}
		result = append(result, ws)
	}
	return result, mapErr(rows.Err())
}

func scanWorkspace(row pgx.Row) (*model.Workspace, error) {
	var ws model.Workspace
	if err := row.Scan(&ws.ID, &ws.OwnerID, &ws.Name, &ws.Slug, &ws.Description, &ws.CreatedAt, &ws.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &ws, nil
}
