package cabinet

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entry is one physical package (lot) of a medication: a remaining-dose
// balance and its own expiry date. A medication's total stock is the sum
// of remaining doses across all its entries.
type Entry struct {
	ID           int64
	MedicationID int64
	UserID       int64
	Remaining    decimal.Decimal
	ExpiresAt    time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
