package repos

import (
	"context"
	"database/sql"
	"errors"

	"studioapi/internal/domain"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepo struct{ DB *DB }

func NewUserRepo(db *DB) *UserRepo { return &UserRepo{DB: db} }

// ByEmail looks a user up by exact email. The password column comes back as
// stored; callers strip it before anything leaves the process.
func (r *UserRepo) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(ctx, &u, `
		SELECT id, email, role, name, status,
		       COALESCE(password, '') AS password
		FROM users WHERE email = :email`, map[string]any{"email": email})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}
