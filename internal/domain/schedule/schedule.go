package schedule

import (
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNonPositiveInterval = errors.New("schedule interval must be a positive number of days")
	ErrNonPositiveDose     = errors.New("schedule dose must be positive")
	ErrEndBeforeStart      = errors.New("schedule end date must not precede its start date")
)

// Schedule is a recurring plan to take a medication: every IntervalDays
// days at TimeOfDay, starting at StartDate and optionally ending at
// EndDate (inclusive on both sides). Dose is the quantity consumed per
// occurrence.
type Schedule struct {
	ID           int64
	MedicationID int64
	UserID       int64
	StartDate    time.Time
	EndDate      sql.NullTime
	IntervalDays int
	TimeOfDay    time.Duration // offset from local midnight
	Dose         decimal.Decimal
	Description  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate enforces the creation/mutation invariants. A zero-day interval
// is rejected here so the recurrence computations never see one.
func (s *Schedule) Validate() error {
	if s.IntervalDays <= 0 {
		return ErrNonPositiveInterval
	}
	if s.Dose.Sign() <= 0 {
		return ErrNonPositiveDose
	}
	if s.EndDate.Valid && civil(s.EndDate.Time).Before(civil(s.StartDate)) {
		return ErrEndBeforeStart
	}
	return nil
}

// OccurrenceAt is the concrete instant of the schedule's occurrence on
// the given calendar day, in the given zone.
func (s *Schedule) OccurrenceAt(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc).Add(s.TimeOfDay)
}
