// internal/infra/database/postgres_notification_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"medication_notifier/internal/domain/notification"
)

var ErrNotificationNotFound = fmt.Errorf("notification not found")

type PostgresNotificationRepository struct {
	db *sql.DB
}

func NewPostgresNotificationRepository(db *sql.DB) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

// Exists covers dismissed rows too: a notification the user has already
// seen and cleared keeps suppressing re-emission until the cleanup stage
// sweeps it.
func (r *PostgresNotificationRepository) Exists(ctx context.Context, userID int64, typ notification.Type, initiatorID int64) (bool, error) {
	query := `SELECT EXISTS (
                 SELECT 1 FROM notifications
                 WHERE user_id = $1 AND notification_type = $2 AND initiator_id = $3
               )`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, userID, typ, initiatorID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking notification existence: %w", err)
	}
	return exists, nil
}

func (r *PostgresNotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	query := `INSERT INTO notifications (id, user_id, notification_type, initiator_id, title, message, expires_at, active)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
               RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query,
		n.ID, n.UserID, n.Type, n.InitiatorID, n.Title, n.Message, n.ExpiresAt, n.Active,
	).Scan(&n.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating notification: %w", err)
	}
	return nil
}

func (r *PostgresNotificationRepository) Deactivate(ctx context.Context, id uuid.UUID, userID int64) error {
	query := `UPDATE notifications SET active = FALSE WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("error deactivating notification: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking deactivated notification rows: %w", err)
	}
	if affected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *PostgresNotificationRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE expires_at <= $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("error deleting expired notifications: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error checking deleted notification rows: %w", err)
	}
	return affected, nil
}
