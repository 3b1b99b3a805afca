// internal/app/batch_service.go
package app

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"medication_notifier/internal/domain/cabinet"
	"medication_notifier/internal/domain/document"
	"medication_notifier/internal/domain/medication"
	"medication_notifier/internal/domain/notification"
	"medication_notifier/internal/domain/push"
	"medication_notifier/internal/domain/schedule"
	"medication_notifier/internal/domain/user"
)

// BatchConfig carries the pipeline tunables.
type BatchConfig struct {
	PageSize          int
	ChunkSize         int
	OutOfDoseWarnDays int
	ExpiryWarnDays    int
	IntakeWarnPeriod  time.Duration
	NotificationTTL   time.Duration
}

// BatchService runs the scheduled notification pipeline: cleanup, then
// the out-of-dose, cabinet-expiry, document-expiry, and intake stages,
// strictly in that order. The invoking scheduler guarantees at most one
// run in flight; within a run stages and chunks execute sequentially.
type BatchService struct {
	schedules     schedule.Repository
	entries       cabinet.EntryRepository
	ledger        *cabinet.Ledger
	medications   medication.Repository
	documents     document.Repository
	users         user.Directory
	notifications notification.Repository
	subscriptions push.SubscriptionRepository
	sender        push.Sender
	cfg           BatchConfig
	log           *logrus.Logger
}

func NewBatchService(
	schedules schedule.Repository,
	entries cabinet.EntryRepository,
	ledger *cabinet.Ledger,
	medications medication.Repository,
	documents document.Repository,
	users user.Directory,
	notifications notification.Repository,
	subscriptions push.SubscriptionRepository,
	sender push.Sender,
	cfg BatchConfig,
	log *logrus.Logger,
) *BatchService {
	return &BatchService{
		schedules:     schedules,
		entries:       entries,
		ledger:        ledger,
		medications:   medications,
		documents:     documents,
		users:         users,
		notifications: notifications,
		subscriptions: subscriptions,
		sender:        sender,
		cfg:           cfg,
		log:           log,
	}
}

// Run executes one full pipeline pass against the given instant. A stage
// failure aborts that stage only; the remaining stages still run and the
// failures are joined into the returned error. There is no cross-stage
// transaction: a partially completed run is reconciled by the dedup
// filter on the next scheduled invocation.
func (s *BatchService) Run(ctx context.Context, now time.Time) error {
	s.log.Infof("notification batch run starting, as of %s", now.Format(time.RFC3339))
	var stageErrs []error

	deleted, err := s.notifications.DeleteExpiredBefore(ctx, now)
	if err != nil {
		s.log.Errorf("cleanup stage failed: %v", err)
		stageErrs = append(stageErrs, err)
	} else {
		s.log.Infof("stage cleanup finished, %d expired notifications purged", deleted)
	}

	filter := &dedupFilter{notifications: s.notifications}
	writer := &compositeWriter{writers: []Writer{
		&storeWriter{notifications: s.notifications},
		&pushWriter{subscriptions: s.subscriptions, sender: s.sender, log: s.log},
	}}

	if err := runStage(ctx, "out-of-dose",
		&outOfDoseReader{schedules: s.schedules, asOf: now},
		&outOfDoseProcessor{
			schedules:   s.schedules,
			medications: s.medications,
			users:       s.users,
			ledger:      s.ledger,
			now:         now,
			warnDays:    s.cfg.OutOfDoseWarnDays,
			ttl:         s.cfg.NotificationTTL,
			log:         s.log,
		},
		filter, writer, s.cfg.PageSize, s.cfg.ChunkSize, s.log,
	); err != nil {
		s.log.Errorf("out-of-dose stage failed: %v", err)
		stageErrs = append(stageErrs, err)
	}

	// The reader cutoff includes one extra day so no user timezone can
	// fall outside the server-side window; the processor re-checks
	// against each owner's local today.
	expiryCutoff := now.AddDate(0, 0, s.cfg.ExpiryWarnDays+1)

	if err := runStage(ctx, "cabinet-expiry",
		&cabinetExpiryReader{entries: s.entries, until: expiryCutoff},
		&cabinetExpiryProcessor{
			medications: s.medications,
			users:       s.users,
			now:         now,
			warnDays:    s.cfg.ExpiryWarnDays,
			ttl:         s.cfg.NotificationTTL,
			log:         s.log,
		},
		filter, writer, s.cfg.PageSize, s.cfg.ChunkSize, s.log,
	); err != nil {
		s.log.Errorf("cabinet-expiry stage failed: %v", err)
		stageErrs = append(stageErrs, err)
	}

	if err := runStage(ctx, "document-expiry",
		&documentExpiryReader{documents: s.documents, until: expiryCutoff},
		&documentExpiryProcessor{
			users:    s.users,
			now:      now,
			warnDays: s.cfg.ExpiryWarnDays,
			ttl:      s.cfg.NotificationTTL,
		},
		filter, writer, s.cfg.PageSize, s.cfg.ChunkSize, s.log,
	); err != nil {
		s.log.Errorf("document-expiry stage failed: %v", err)
		stageErrs = append(stageErrs, err)
	}

	if err := runStage(ctx, "intake",
		&intakeReader{schedules: s.schedules, from: now.AddDate(0, 0, -1), to: now.AddDate(0, 0, 1)},
		&intakeProcessor{
			medications: s.medications,
			users:       s.users,
			now:         now,
			warnPeriod:  s.cfg.IntakeWarnPeriod,
			ttl:         s.cfg.NotificationTTL,
			log:         s.log,
		},
		filter, writer, s.cfg.PageSize, s.cfg.ChunkSize, s.log,
	); err != nil {
		s.log.Errorf("intake stage failed: %v", err)
		stageErrs = append(stageErrs, err)
	}

	s.log.Info("notification batch run finished")
	return errors.Join(stageErrs...)
}
