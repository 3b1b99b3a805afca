package cabinet

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"medication_notifier/internal/domain/page"
)

// EntryRepository persists cabinet entries. WithinTx runs fn against a
// repository view whose reads and writes form one atomic unit, so ledger
// mutations cannot lose updates under concurrent completion and
// un-completion of the same medication.
type EntryRepository interface {
	WithinTx(ctx context.Context, fn func(EntryRepository) error) error
	// ListByMedication returns the medication's entries ordered by expiry
	// date ascending, id ascending.
	ListByMedication(ctx context.Context, medicationID int64) ([]*Entry, error)
	SumRemaining(ctx context.Context, medicationID int64) (decimal.Decimal, error)
	Update(ctx context.Context, e *Entry) error
	Delete(ctx context.Context, id int64) error
	// ListExpiringUntil pages entries with remaining doses > 0 whose
	// expiry date is at or before the cutoff.
	ListExpiringUntil(ctx context.Context, until time.Time, req page.Request) ([]*Entry, error)
}
