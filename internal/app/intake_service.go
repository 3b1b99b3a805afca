package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"medication_notifier/internal/domain/cabinet"
	"medication_notifier/internal/domain/schedule"
	idb "medication_notifier/internal/infra/database"
)

var (
	ErrNotScheduleOwner = errors.New("schedule does not belong to this user")
	ErrOccurrenceNotDue = errors.New("schedule has no occurrence on this date")
	ErrAlreadyCompleted = errors.New("occurrence is already marked as taken")
)

// IntakeService records that a schedule occurrence was taken (or undoes
// that), keeping the dose ledger in step: marking consumes the
// schedule's dose, un-marking replenishes it.
type IntakeService struct {
	schedules schedule.Repository
	events    schedule.CompletedEventRepository
	ledger    *cabinet.Ledger
	log       *logrus.Logger
}

func NewIntakeService(
	schedules schedule.Repository,
	events schedule.CompletedEventRepository,
	ledger *cabinet.Ledger,
	log *logrus.Logger,
) *IntakeService {
	return &IntakeService{schedules: schedules, events: events, ledger: ledger, log: log}
}

// MarkTaken fulfils the occurrence at targetAt. The occurrence must
// exist (the schedule fires on that date), must not already be
// completed, and stock must cover the dose; insufficient stock fails the
// call before anything is recorded.
func (s *IntakeService) MarkTaken(ctx context.Context, scheduleID, userID int64, targetAt time.Time) error {
	sched, err := s.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		return fmt.Errorf("loading schedule %d: %w", scheduleID, err)
	}
	if sched.UserID != userID {
		return ErrNotScheduleOwner
	}
	if !sched.IsDueOn(targetAt) {
		return ErrOccurrenceNotDue
	}

	if _, err := s.events.GetCompletedEvent(ctx, scheduleID, targetAt); err == nil {
		return ErrAlreadyCompleted
	} else if err != idb.ErrCompletedEventNotFound {
		return fmt.Errorf("checking existing completion for schedule %d: %w", scheduleID, err)
	}

	if err := s.ledger.Consume(ctx, sched.MedicationID, sched.Dose); err != nil {
		return fmt.Errorf("consuming %s doses of medication %d: %w", sched.Dose, sched.MedicationID, err)
	}

	ev := &schedule.CompletedEvent{
		ScheduleID:  scheduleID,
		UserID:      userID,
		TargetAt:    targetAt,
		DoseTaken:   sched.Dose,
		CompletedAt: time.Now(),
	}
	if err := s.events.CreateCompletedEvent(ctx, ev); err != nil {
		// Hand the consumed doses back so a failed insert leaves the
		// ledger as it was. When the consume drained and deleted the
		// medication's last entry there is nothing left to replenish
		// into and the doses are lost.
		applied, rerr := s.ledger.Replenish(ctx, sched.MedicationID, sched.Dose)
		switch {
		case rerr != nil:
			s.log.Errorf("could not return %s doses of medication %d after failed completion insert: %v",
				sched.Dose, sched.MedicationID, rerr)
		case !applied:
			s.log.Errorf("%s doses of medication %d lost: no cabinet entry left to return them to after failed completion insert",
				sched.Dose, sched.MedicationID)
		}
		return fmt.Errorf("recording completion for schedule %d: %w", scheduleID, err)
	}

	s.log.Infof("occurrence of schedule %d at %s marked as taken", scheduleID, targetAt.Format(time.RFC3339))
	return nil
}

// UnmarkTaken undoes a completion and replenishes the dose that was
// consumed when it was recorded.
func (s *IntakeService) UnmarkTaken(ctx context.Context, scheduleID, userID int64, targetAt time.Time) error {
	sched, err := s.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		return fmt.Errorf("loading schedule %d: %w", scheduleID, err)
	}
	if sched.UserID != userID {
		return ErrNotScheduleOwner
	}

	ev, err := s.events.GetCompletedEvent(ctx, scheduleID, targetAt)
	if err != nil {
		return fmt.Errorf("loading completion for schedule %d at %s: %w",
			scheduleID, targetAt.Format(time.RFC3339), err)
	}

	if err := s.events.DeleteCompletedEvent(ctx, scheduleID, targetAt); err != nil {
		return fmt.Errorf("deleting completion for schedule %d: %w", scheduleID, err)
	}

	applied, err := s.ledger.Replenish(ctx, sched.MedicationID, ev.DoseTaken)
	if err != nil {
		return fmt.Errorf("replenishing %s doses of medication %d: %w", ev.DoseTaken, sched.MedicationID, err)
	}
	if !applied {
		s.log.Warnf("medication %d has no cabinet entries, un-marked dose of %s not returned to stock",
			sched.MedicationID, ev.DoseTaken)
	}

	s.log.Infof("occurrence of schedule %d at %s un-marked", scheduleID, targetAt.Format(time.RFC3339))
	return nil
}
