package medication

import "time"

// Medication identifies one substance owned by a user. Display metadata
// (name, dose unit) is what the batch pipeline needs to compose messages.
type Medication struct {
	ID        int64
	UserID    int64
	Name      string
	DoseUnit  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
