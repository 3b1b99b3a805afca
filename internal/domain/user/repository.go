package user

import "context"

// Directory resolves user accounts for the batch pipeline. It is a narrow
// read-only view of whatever identity store the surrounding application
// uses.
type Directory interface {
	GetByID(ctx context.Context, id int64) (*User, error)
}
