package cabinet

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock across cabinet entries")
	ErrNonPositiveAmount = errors.New("amount must be positive")
)

// Ledger is the aggregate behavior over one medication's cabinet entries:
// total-stock queries, ordered consumption, and replenishment.
//
// Consumption drains the soonest-expiring entry first so the stock most
// at risk of expiring is used up before fresher packages. Crossing an
// entry boundary therefore breaks exact consume/replenish symmetry:
// replenishment always lands on the single soonest-expiring entry.
type Ledger struct {
	entries EntryRepository
}

func NewLedger(entries EntryRepository) *Ledger {
	return &Ledger{entries: entries}
}

// TotalRemaining is the sum of remaining doses across all of the
// medication's entries, zero when none exist.
func (l *Ledger) TotalRemaining(ctx context.Context, medicationID int64) (decimal.Decimal, error) {
	total, err := l.entries.SumRemaining(ctx, medicationID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("summing remaining doses for medication %d: %w", medicationID, err)
	}
	return total, nil
}

// Consume removes amount doses from the medication's stock, draining the
// entry with the earliest expiry date first and fully emptying an entry
// before moving to the next. An entry whose balance reaches exactly zero
// is deleted. The operation is all-or-nothing: if total stock is below
// amount it fails with ErrInsufficientStock and no entry is touched.
func (l *Ledger) Consume(ctx context.Context, medicationID int64, amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return ErrNonPositiveAmount
	}

	return l.entries.WithinTx(ctx, func(r EntryRepository) error {
		lots, err := l.loadOrdered(ctx, r, medicationID)
		if err != nil {
			return err
		}

		total := decimal.Zero
		for _, lot := range lots {
			total = total.Add(lot.Remaining)
		}
		if total.LessThan(amount) {
			return ErrInsufficientStock
		}

		left := amount
		for _, lot := range lots {
			if left.Sign() == 0 {
				break
			}
			take := lot.Remaining
			if take.GreaterThan(left) {
				take = left
			}
			left = left.Sub(take)
			lot.Remaining = lot.Remaining.Sub(take)

			if lot.Remaining.Sign() == 0 {
				if err := r.Delete(ctx, lot.ID); err != nil {
					return fmt.Errorf("deleting drained entry %d: %w", lot.ID, err)
				}
				continue
			}
			if err := r.Update(ctx, lot); err != nil {
				return fmt.Errorf("updating entry %d: %w", lot.ID, err)
			}
		}
		return nil
	})
}

// Replenish adds amount doses to the medication's entry with the earliest
// expiry date. When the medication has no entries this is a no-op and
// applied is false: replenishment never creates a new entry, that is a
// separate user-initiated action. Callers that must not lose doses (a
// compensating replenish after a failed write) check applied.
func (l *Ledger) Replenish(ctx context.Context, medicationID int64, amount decimal.Decimal) (applied bool, err error) {
	if amount.Sign() <= 0 {
		return false, ErrNonPositiveAmount
	}

	err = l.entries.WithinTx(ctx, func(r EntryRepository) error {
		lots, err := l.loadOrdered(ctx, r, medicationID)
		if err != nil {
			return err
		}
		if len(lots) == 0 {
			return nil
		}

		lot := lots[0]
		lot.Remaining = lot.Remaining.Add(amount)
		if err := r.Update(ctx, lot); err != nil {
			return fmt.Errorf("updating entry %d: %w", lot.ID, err)
		}
		applied = true
		return nil
	})
	return applied, err
}

func (l *Ledger) loadOrdered(ctx context.Context, r EntryRepository, medicationID int64) ([]*Entry, error) {
	lots, err := r.ListByMedication(ctx, medicationID)
	if err != nil {
		return nil, fmt.Errorf("listing entries for medication %d: %w", medicationID, err)
	}
	// Stable expiry order with id as the tie-break.
	sort.SliceStable(lots, func(i, j int) bool {
		if lots[i].ExpiresAt.Equal(lots[j].ExpiresAt) {
			return lots[i].ID < lots[j].ID
		}
		return lots[i].ExpiresAt.Before(lots[j].ExpiresAt)
	})
	return lots, nil
}
