package store

import (
	"context"

	"basegraph.app/taskflow/core/db"
	"basegraph.app/taskflow/internal/model"
)

type userStore struct {
	q db.Querier
}

func newUserStore(q db.Querier) UserStore {
	return &userStore{q: q}
}

func (s *userStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	err := s.q.QueryRow(ctx,
		`SELECT id, name, email, avatar_url, created_at FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.AvatarURL, &u.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}
