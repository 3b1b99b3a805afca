package schedule

import (
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newSchedule(start time.Time, intervalDays int, dose string) *Schedule {
	return &Schedule{
		StartDate:    start,
		IntervalDays: intervalDays,
		Dose:         decimal.RequireFromString(dose),
	}
}

func TestIsDueOnModularArithmetic(t *testing.T) {
	start := date(2025, time.June, 1)

	tests := []struct {
		name     string
		interval int
		day      time.Time
		due      bool
	}{
		{"start date itself", 3, start, true},
		{"one interval later", 3, date(2025, time.June, 4), true},
		{"mid cycle", 3, date(2025, time.June, 5), false},
		{"daily fires every day", 1, date(2025, time.June, 19), true},
		{"weekly on the seventh day", 7, date(2025, time.June, 8), true},
		{"weekly off day", 7, date(2025, time.June, 9), false},
		{"six week interval", 42, date(2025, time.July, 13), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newSchedule(start, tc.interval, "1")
			require.Equal(t, tc.due, s.IsDueOn(tc.day))
		})
	}
}

func TestIsDueOnOutsidePeriod(t *testing.T) {
	s := newSchedule(date(2025, time.June, 10), 1, "1")
	s.EndDate = sql.NullTime{Time: date(2025, time.June, 20), Valid: true}

	require.False(t, s.IsDueOn(date(2025, time.June, 9)), "day before start")
	require.True(t, s.IsDueOn(date(2025, time.June, 10)), "start day inclusive")
	require.True(t, s.IsDueOn(date(2025, time.June, 20)), "end day inclusive")
	require.False(t, s.IsDueOn(date(2025, time.June, 21)), "day after end")
}

func TestIsDueOnOpenEndedPeriod(t *testing.T) {
	s := newSchedule(date(2020, time.January, 1), 2, "1")
	require.True(t, s.IsDueOn(date(2030, time.January, 1)))
}

func TestDosesConsumedOutsidePeriodIsZero(t *testing.T) {
	s := newSchedule(date(2025, time.June, 10), 1, "1")
	s.EndDate = sql.NullTime{Time: date(2025, time.June, 20), Valid: true}

	require.True(t, s.DosesConsumed(date(2025, time.May, 1), date(2025, time.May, 31)).IsZero(),
		"range entirely before the period")
	require.True(t, s.DosesConsumed(date(2025, time.July, 1), date(2025, time.July, 31)).IsZero(),
		"range entirely after the period")
}

func TestDosesConsumedInvertedRangeIsZero(t *testing.T) {
	s := newSchedule(date(2025, time.June, 1), 1, "1")
	require.True(t, s.DosesConsumed(date(2025, time.June, 10), date(2025, time.June, 5)).IsZero())
}

func TestDosesConsumedSixWeekInterval(t *testing.T) {
	// Period starts 2025-06-24, one dose every 42 days. The 42nd day of
	// the range is 2025-08-04; one more day crosses into a second cycle.
	s := newSchedule(date(2025, time.June, 24), 42, "1")

	got := s.DosesConsumed(date(2025, time.June, 24), date(2025, time.August, 4))
	require.True(t, decimal.NewFromInt(1).Equal(got), "expected 1, got %s", got)

	got = s.DosesConsumed(date(2025, time.June, 24), date(2025, time.August, 5))
	require.True(t, decimal.NewFromInt(2).Equal(got), "expected 2, got %s", got)
}

func TestDosesConsumedClampsToPeriod(t *testing.T) {
	s := newSchedule(date(2025, time.June, 10), 1, "2")
	s.EndDate = sql.NullTime{Time: date(2025, time.June, 12), Valid: true}

	// Query range covers the whole month but only the three period days
	// count: 3 occurrences of 2 doses each.
	got := s.DosesConsumed(date(2025, time.June, 1), date(2025, time.June, 30))
	require.True(t, decimal.NewFromInt(6).Equal(got), "expected 6, got %s", got)
}

func TestDosesConsumedPartialCycleCountsAsOne(t *testing.T) {
	s := newSchedule(date(2025, time.June, 1), 7, "1.5")

	// Ten inclusive days cover one full and one partial weekly cycle.
	got := s.DosesConsumed(date(2025, time.June, 1), date(2025, time.June, 10))
	require.True(t, decimal.RequireFromString("3").Equal(got), "expected 3, got %s", got)
}

func TestValidate(t *testing.T) {
	base := func() *Schedule {
		return newSchedule(date(2025, time.June, 1), 1, "1")
	}

	t.Run("valid schedule", func(t *testing.T) {
		require.NoError(t, base().Validate())
	})

	t.Run("zero interval rejected", func(t *testing.T) {
		s := base()
		s.IntervalDays = 0
		require.ErrorIs(t, s.Validate(), ErrNonPositiveInterval)
	})

	t.Run("negative dose rejected", func(t *testing.T) {
		s := base()
		s.Dose = decimal.RequireFromString("-1")
		require.ErrorIs(t, s.Validate(), ErrNonPositiveDose)
	})

	t.Run("end before start rejected", func(t *testing.T) {
		s := base()
		s.EndDate = sql.NullTime{Time: date(2025, time.May, 31), Valid: true}
		require.ErrorIs(t, s.Validate(), ErrEndBeforeStart)
	})

	t.Run("end equal to start allowed", func(t *testing.T) {
		s := base()
		s.EndDate = sql.NullTime{Time: s.StartDate, Valid: true}
		require.NoError(t, s.Validate())
	})
}
