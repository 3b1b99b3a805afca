package database

import (
	"context"
	"database/sql"
	"fmt"

	"medication_notifier/internal/domain/user"
)

var ErrUserNotFound = fmt.Errorf("user not found")

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	query := `SELECT id, email, timezone, created_at FROM users WHERE id = $1`
	u := user.User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Email, &u.Timezone, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("error getting user by ID: %w", err)
	}
	return &u, nil
}
