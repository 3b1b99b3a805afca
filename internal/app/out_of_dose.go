// internal/app/out_of_dose.go
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"medication_notifier/internal/domain/cabinet"
	"medication_notifier/internal/domain/medication"
	"medication_notifier/internal/domain/notification"
	"medication_notifier/internal/domain/page"
	"medication_notifier/internal/domain/schedule"
	"medication_notifier/internal/domain/user"
)

// outOfDoseReader pages (user, medication) pairs that have at least one
// schedule active as of the run date.
type outOfDoseReader struct {
	schedules schedule.Repository
	asOf      time.Time
}

func (r *outOfDoseReader) ReadPage(ctx context.Context, req page.Request) ([]schedule.Pair, error) {
	return r.schedules.ListActivePairs(ctx, r.asOf, req)
}

// outOfDoseProcessor decides whether a pair's stock is exhausted now or
// will not survive the warn period. A medication lookup failure skips
// the pair: no notification and no stage error.
type outOfDoseProcessor struct {
	schedules   schedule.Repository
	medications medication.Repository
	users       user.Directory
	ledger      *cabinet.Ledger
	now         time.Time
	warnDays    int
	ttl         time.Duration
	log         *logrus.Logger
}

func (p *outOfDoseProcessor) Process(ctx context.Context, pair schedule.Pair) (*notification.Notification, error) {
	med, err := p.medications.GetByIDForUser(ctx, pair.MedicationID, pair.UserID)
	if err != nil {
		p.log.Debugf("skipping pair (user %d, medication %d): medication lookup: %v",
			pair.UserID, pair.MedicationID, err)
		return nil, nil
	}

	remaining, err := p.ledger.TotalRemaining(ctx, pair.MedicationID)
	if err != nil {
		return nil, err
	}

	if remaining.Sign() <= 0 {
		return notification.New(
			pair.UserID,
			notification.TypeScheduleOutOfDose,
			pair.MedicationID,
			"Out of doses",
			fmt.Sprintf("You have run out of %s.", med.Name),
			p.now.Add(p.ttl),
		), nil
	}

	owner, err := p.users.GetByID(ctx, pair.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolving user %d: %w", pair.UserID, err)
	}
	today := owner.LocalNow(p.now)
	windowEnd := today.AddDate(0, 0, p.warnDays)

	required, err := p.requiredDoses(ctx, pair, today, windowEnd)
	if err != nil {
		return nil, err
	}

	if remaining.Sub(required).Sign() <= 0 {
		return notification.New(
			pair.UserID,
			notification.TypeScheduleAlmostOutOfDose,
			pair.MedicationID,
			"Almost out of doses",
			fmt.Sprintf("Your stock of %s will not cover the next %d days.", med.Name, p.warnDays),
			p.now.Add(p.ttl),
		), nil
	}
	return nil, nil
}

// requiredDoses sums the projected consumption of every schedule the
// pair has active as of the window start.
func (p *outOfDoseProcessor) requiredDoses(ctx context.Context, pair schedule.Pair, from, to time.Time) (decimal.Decimal, error) {
	required := decimal.Zero
	schedules, err := p.schedules.ListForUserAndMedication(ctx, pair.UserID, pair.MedicationID, from)
	if err != nil {
		return required, fmt.Errorf("listing schedules for pair (user %d, medication %d): %w",
			pair.UserID, pair.MedicationID, err)
	}
	for _, s := range schedules {
		required = required.Add(s.DosesConsumed(from, to))
	}
	return required, nil
}
