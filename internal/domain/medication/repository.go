package medication

import "context"

// Repository defines the lookup operations the core needs for medications.
// Absence is reported as a not-found error, which callers treat as
// recoverable.
type Repository interface {
	GetByIDForUser(ctx context.Context, id int64, userID int64) (*Medication, error)
}
