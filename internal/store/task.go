package store

import (
	"context"

	"basegraph.app/taskflow/core/db"
	"basegraph.app/taskflow/internal/model"
	"github.com/jackc/pgx/v5"
)

// taskSelect expands category, assignee and creator in one round trip.
const taskSelect = `
	SELECT t.id, t.workspace_id, t.category_id, t.assignee_id, t.creator_id, t.position,
	       t.title, t.description, t.status, t.priority, t.due_date, t.created_at, t.updated_at,
	       c.name, c.color,
	       a.name, a.email, a.avatar_url,
	       cr.name, cr.email, cr.avatar_url
	FROM tasks t
	LEFT JOIN categories c ON c.id = t.category_id
	LEFT JOIN users a ON a.id = t.assignee_id
	JOIN users cr ON cr.id = t.creator_id`

type txDB interface {
	Querier() db.Querier
	WithTx(ctx context.Context, fn func(q db.Querier) error) error
}

type taskStore struct {
	db txDB
}

func newTaskStore(database txDB) TaskStore {
	return &taskStore{db: database}
}

func (s *taskStore) GetByID(ctx context.Context, workspaceID, id int64) (*model.Task, error) {
	return getTask(ctx, s.db.Querier(), workspaceID, id)
}

func (s *taskStore) ListByWorkspace(ctx context.Context, workspaceID int64) ([]model.Task, error) {
	rows, err := s.db.Querier().Query(ctx, taskSelect+`
		WHERE t.workspace_id = $1
		ORDER BY t.position ASC, t.created_at ASC, t.id ASC`, workspaceID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	result := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *t)
	}
	return result, mapErr(rows.Err())
}

// Create serialises appends per workspace with an advisory lock so two
// concurrent creators never compute the same next position.
func (s *taskStore) Create(ctx context.Context, task *model.Task) error {
	return s.db.WithTx(ctx, func(q db.Querier) error {
		if task.Position <= 0 {
			if _, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, task.WorkspaceID); err != nil {
				return mapErr(err)
			}
			if err := q.QueryRow(ctx,
				`SELECT COALESCE(MAX(position), 0) + 1 FROM tasks WHERE workspace_id = $1`, task.WorkspaceID,
			).Scan(&task.Position); err != nil {
				return mapErr(err)
			}
		}

		_, err := q.Exec(ctx, `
			INSERT INTO tasks (id, workspace_id, category_id, assignee_id, creator_id, position,
			                   title, description, status, priority, due_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			task.ID, task.WorkspaceID, task.CategoryID, task.AssigneeID, task.CreatorID, task.Position,
			task.Title, task.Description, task.Status, task.Priority, task.DueDate,
		)
		if err != nil {
			return mapErr(err)
		}

		created, err := getTask(ctx, q, task.WorkspaceID, task.ID)
		if err != nil {
			return err
		}
		*task = *created
		return nil
	})
}

func (s *taskStore) Update(ctx context.Context, task *model.Task) error {
	q := s.db.Querier()
	tag, err := q.Exec(ctx, `
		UPDATE tasks
		SET category_id = $3, assignee_id = $4, position = $5, title = $6, description = $7,
		    status = $8, priority = $9, due_date = $10, updated_at = now()
		WHERE workspace_id = $1 AND id = $2`,
		task.WorkspaceID, task.ID, task.CategoryID, task.AssigneeID, task.Position, task.Title,
		task.Description, task.Status, task.Priority, task.DueDate,
	)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	updated, err := getTask(ctx, q, task.WorkspaceID, task.ID)
	if err != nil {
		return err
	}
	*task = *updated
	return nil
}

func (s *taskStore) Delete(ctx context.Context, workspaceID, id int64) error {
	tag, err := s.db.Querier().Exec(ctx, `DELETE FROM tasks WHERE workspace_id = $1 AND id = $2`, workspaceID, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func getTask(ctx context.Context, q db.Querier, workspaceID, id int64) (*model.Task, error) {
	row := q.QueryRow(ctx, taskSelect+` WHERE t.workspace_id = $1 AND t.id = $2`, workspaceID, id)
	return scanTask(row)
}

func scanTask(row pgx.Row) (*model.Task, error) {
	var (
		t              model.Task
		categoryName   *string
		categoryColor  *string
		assigneeName   *string
		assigneeEmail  *string
		assigneeAvatar *string
		creator        model.UserSummary
	)
	err := row.Scan(
		&t.ID, &t.WorkspaceID, &t.CategoryID, &t.AssigneeID, &t.CreatorID, &t.Position,
		&t.Title, &t.Description, &t.Status, &t.Priority, &t.DueDate, &t.CreatedAt, &t.UpdatedAt,
		&categoryName, &categoryColor,
		&assigneeName, &assigneeEmail, &assigneeAvatar,
		&creator.Name, &creator.Email, &creator.AvatarURL,
	)
	if err != nil {
		return nil, mapErr(err)
	}

	if t.CategoryID != nil && categoryName != nil {
		t.Category = &model.CategorySummary{ID: *t.CategoryID, Name: *categoryName, Color: categoryColor}
	}
	if t.AssigneeID != nil && assigneeName != nil {
		t.Assignee = &model.UserSummary{ID: *t.AssigneeID, Name: *assigneeName, AvatarURL: assigneeAvatar}
		if assigneeEmail != nil {
			t.Assignee.Email = *assigneeEmail
		}
	}
	creator.ID = t.CreatorID
	t.Creator = &creator
	return &t, nil
}
