package document

import "time"

// Document is a user-owned paper (prescription, insurance card, ...) with
// an expiry date the pipeline warns about.
type Document struct {
	ID        int64
	UserID    int64
	Name      string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
