// internal/app/intake.go
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"medication_notifier/internal/domain/medication"
	"medication_notifier/internal/domain/notification"
	"medication_notifier/internal/domain/page"
	"medication_notifier/internal/domain/schedule"
	"medication_notifier/internal/domain/user"
)

// intakeReader pages schedules whose period overlaps a one-day buffer
// around the run date, wide enough that no user timezone can push an
// occurrence outside the result set.
type intakeReader struct {
	schedules schedule.Repository
	from, to  time.Time
}

func (r *intakeReader) ReadPage(ctx context.Context, req page.Request) ([]*schedule.Schedule, error) {
	return r.schedules.ListOverlapping(ctx, r.from, r.to, req)
}

// intakeProcessor emits an intake-due notification when the schedule has
// an occurrence inside the warn period centered on the owner's local
// now.
type intakeProcessor struct {
	medications medication.Repository
	users       user.Directory
	now         time.Time
	warnPeriod  time.Duration
	ttl         time.Duration
	log         *logrus.Logger
}

func (p *intakeProcessor) Process(ctx context.Context, s *schedule.Schedule) (*notification.Notification, error) {
	owner, err := p.users.GetByID(ctx, s.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolving user %d: %w", s.UserID, err)
	}

	localNow := owner.LocalNow(p.now)
	windowStart := localNow.Add(-p.warnPeriod / 2)
	windowEnd := localNow.Add(p.warnPeriod / 2)

	if !p.dueWithin(s, owner, windowStart, windowEnd) {
		return nil, nil
	}

	med, err := p.medications.GetByIDForUser(ctx, s.MedicationID, s.UserID)
	if err != nil {
		p.log.Debugf("skipping schedule %d: medication lookup: %v", s.ID, err)
		return nil, nil
	}

	return notification.New(
		s.UserID,
		notification.TypeIntakeDue,
		s.ID,
		"Intake due",
		fmt.Sprintf("Time to take %s %s of %s.", s.Dose.String(), med.DoseUnit, med.Name),
		p.now.Add(p.ttl),
	), nil
}

// dueWithin checks every calendar day the window touches: the schedule
// must fire on that day and the concrete occurrence instant must fall
// inside the window.
func (p *intakeProcessor) dueWithin(s *schedule.Schedule, owner *user.User, windowStart, windowEnd time.Time) bool {
	loc := owner.Location()
	for day := windowStart; !dateOf(day).After(dateOf(windowEnd)); day = day.AddDate(0, 0, 1) {
		if !s.IsDueOn(day) {
			continue
		}
		occurrence := s.OccurrenceAt(day, loc)
		if !occurrence.Before(windowStart) && !occurrence.After(windowEnd) {
			return true
		}
	}
	return false
}
