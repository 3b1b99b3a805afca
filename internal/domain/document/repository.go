package document

import (
	"context"
	"time"

	"medication_notifier/internal/domain/page"
)

// Repository defines the paged near-expiry lookup the batch pipeline
// consumes.
type Repository interface {
	ListExpiringUntil(ctx context.Context, until time.Time, req page.Request) ([]*Document, error)
}
