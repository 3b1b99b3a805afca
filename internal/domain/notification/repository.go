package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines persistence operations for notifications.
type Repository interface {
	// Exists reports whether any notification (active or dismissed, not
	// yet swept) matches the dedup triple.
	Exists(ctx context.Context, userID int64, typ Type, initiatorID int64) (bool, error)
	Create(ctx context.Context, n *Notification) error
	// Deactivate performs the user-facing soft delete.
	Deactivate(ctx context.Context, id uuid.UUID, userID int64) error
	// DeleteExpiredBefore hard-deletes every notification whose expiry
	// instant is at or before the cutoff, returning the number removed.
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
