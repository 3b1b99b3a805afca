package schedule

import (
	"time"

	"github.com/shopspring/decimal"
)

// civil strips the time-of-day and zone from an instant, leaving the
// calendar date. Normalizing to UTC keeps day arithmetic immune to DST.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween is the number of whole days from one calendar date to
// another, negative when to precedes from.
func daysBetween(from, to time.Time) int {
	return int(civil(to).Sub(civil(from)).Hours() / 24)
}

// PeriodContains reports whether a calendar date falls inside the
// schedule's period. An absent end date means the period is open-ended.
func (s *Schedule) PeriodContains(date time.Time) bool {
	if daysBetween(s.StartDate, date) < 0 {
		return false
	}
	if s.EndDate.Valid && daysBetween(date, s.EndDate.Time) < 0 {
		return false
	}
	return true
}

// IsDueOn reports whether the schedule fires on the given calendar date:
// the date is inside the period and a whole multiple of the interval away
// from the period start.
func (s *Schedule) IsDueOn(date time.Time) bool {
	if s.IntervalDays <= 0 {
		return false
	}
	if !s.PeriodContains(date) {
		return false
	}
	return daysBetween(s.StartDate, date)%s.IntervalDays == 0
}

// DosesConsumed projects how many doses the schedule consumes over the
// inclusive date range. The range is clamped to the schedule's own
// period; a partial final cycle still counts as a full occurrence. The
// computation is a projection only and never yields a negative quantity.
func (s *Schedule) DosesConsumed(rangeStart, rangeEnd time.Time) decimal.Decimal {
	if s.IntervalDays <= 0 {
		return decimal.Zero
	}

	start := rangeStart
	if daysBetween(start, s.StartDate) > 0 {
		start = s.StartDate
	}
	end := rangeEnd
	if s.EndDate.Valid && daysBetween(s.EndDate.Time, end) > 0 {
		end = s.EndDate.Time
	}

	days := daysBetween(start, end) + 1
	if days <= 0 {
		return decimal.Zero
	}

	occurrences := (days + s.IntervalDays - 1) / s.IntervalDays
	return s.Dose.Mul(decimal.NewFromInt(int64(occurrences)))
}
