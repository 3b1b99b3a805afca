// internal/infra/database/postgres_subscription_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"

	"medication_notifier/internal/domain/push"
)

var ErrSubscriptionNotFound = fmt.Errorf("push subscription not found")

type PostgresSubscriptionRepository struct {
	db *sql.DB
}

func NewPostgresSubscriptionRepository(db *sql.DB) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{db: db}
}

func (r *PostgresSubscriptionRepository) GetByUserID(ctx context.Context, userID int64) (*push.Subscription, error) {
	query := `SELECT id, user_id, endpoint, p256dh_key, auth_key, created_at
               FROM push_subscriptions WHERE user_id = $1
               ORDER BY created_at DESC LIMIT 1`
	sub := push.Subscription{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&sub.ID, &sub.UserID, &sub.Endpoint, &sub.P256dhKey, &sub.AuthKey, &sub.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("error getting push subscription by user ID: %w", err)
	}
	return &sub, nil
}
