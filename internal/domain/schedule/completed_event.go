package schedule

import (
	"time"

	"github.com/shopspring/decimal"
)

// CompletedEvent records that a schedule's occurrence at TargetAt was
// actually taken. At most one event may exist per (schedule, target
// instant) pair; the intake service checks before inserting.
type CompletedEvent struct {
	ID          int64
	ScheduleID  int64
	UserID      int64
	TargetAt    time.Time
	DoseTaken   decimal.Decimal
	CompletedAt time.Time
}
