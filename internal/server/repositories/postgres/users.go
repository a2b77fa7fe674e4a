package postgres

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/postboard/internal/server/apperr"
	"github.com/dmitrijs2005/postboard/internal/server/models"
)

const userColumns = `id, email, name, password, created_at`

func (r *Repository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (id, email, name, password, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 `

	_, err := r.q.ExecContext(ctx, query,
		user.ID, user.Email, user.Name, user.PasswordHash, user.CreatedAt)
	if err != nil {
		return nil, r.translateError(ctx, fmt.Errorf("db error: %w", err), "", user.Email)
	}

	return user, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.getUser(ctx, query, email)
}

func (r *Repository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getUser(ctx, query, id)
}

func (r *Repository) getUser(ctx context.Context, query, key string) (*models.User, error) {
	user := &models.User{}
	err := r.q.QueryRowContext(ctx, query, key).
		Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		return nil, r.translateError(ctx, fmt.Errorf("db error: %w", err), "User", key)
	}

	user.CreatedAt = user.CreatedAt.UTC()
	return user, nil
}

// DeleteUserByID removes the user; the foreign key cascades to their posts.
func (r *Repository) DeleteUserByID(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return r.translateError(ctx, fmt.Errorf("db error: %w", err), "User", id)
	}
	return r.requireAffected(ctx, res, "User", id)
}

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

func (r *Repository) requireAffected(ctx context.Context, res rowsAffecter, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return r.translateError(ctx, fmt.Errorf("rows affected: %w", err), entity, id)
	}
	if n == 0 {
		return apperr.NotFound("%s '%s' not found", entity, id)
	}
	return nil
}
