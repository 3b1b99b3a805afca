package schedule

import (
	"context"
	"time"

	"medication_notifier/internal/domain/page"
)

// Pair is one (user, medication) combination with at least one active
// schedule; the out-of-dose stage pages over these.
type Pair struct {
	UserID       int64
	MedicationID int64
}

// Repository defines the schedule lookups the core consumes. "Active as
// of" a date means the schedule's period contains that date.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Schedule, error)
	ListActivePairs(ctx context.Context, asOf time.Time, req page.Request) ([]Pair, error)
	ListOverlapping(ctx context.Context, from, to time.Time, req page.Request) ([]*Schedule, error)
	ListForUserAndMedication(ctx context.Context, userID, medicationID int64, asOf time.Time) ([]*Schedule, error)
}

// CompletedEventRepository persists occurrence completions.
type CompletedEventRepository interface {
	GetCompletedEvent(ctx context.Context, scheduleID int64, targetAt time.Time) (*CompletedEvent, error)
	CreateCompletedEvent(ctx context.Context, ev *CompletedEvent) error
	DeleteCompletedEvent(ctx context.Context, scheduleID int64, targetAt time.Time) error
}
