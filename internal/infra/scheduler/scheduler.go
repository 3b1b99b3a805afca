package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const runTimeout = 15 * time.Minute

// BatchRunner is the pipeline entry point the scheduler triggers.
type BatchRunner interface {
	Run(ctx context.Context, now time.Time) error
}

// NotificationScheduler triggers the batch pipeline on a cron cadence.
// cron launches every trigger in its own goroutine, so the job chain is
// wrapped with SkipIfStillRunning: a trigger that fires while a run is
// still in flight is dropped, keeping at most one run active. The
// pipeline's pre-insert dedup check relies on that.
type NotificationScheduler struct {
	cronEngine       *cron.Cron
	batch            BatchRunner
	logger           *logrus.Logger
	cronSpecDailyRun string
}

func NewNotificationScheduler(
	batch BatchRunner,
	logger *logrus.Logger,
	cronSpecDailyRun string, // e.g. "0 7 * * *" (07:00 daily)
) *NotificationScheduler {
	return &NotificationScheduler{
		cronEngine: cron.New(
			cron.WithLocation(time.Local),
			cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(logger))),
		),
		batch:            batch,
		logger:           logger,
		cronSpecDailyRun: cronSpecDailyRun,
	}
}

func (s *NotificationScheduler) Start() {
	s.logger.Info("Starting notification scheduler...")

	_, err := s.cronEngine.AddFunc(s.cronSpecDailyRun, func() {
		s.logger.Info("Cron job triggered for daily notification batch run.")
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		if err := s.batch.Run(ctx, time.Now()); err != nil {
			s.logger.Errorf("Notification batch run finished with stage failures: %v", err)
		}
	})
	if err != nil {
		s.logger.Fatalf("Could not add daily batch run cron job: %v", err)
	}

	s.cronEngine.Start()
	s.logger.Info("Notification scheduler started with jobs.")
}

func (s *NotificationScheduler) Stop() {
	s.logger.Info("Stopping notification scheduler...")
	ctx := s.cronEngine.Stop() // waits for running jobs
	<-ctx.Done()
	s.logger.Info("Notification scheduler gracefully stopped.")
}
