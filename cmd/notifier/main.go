package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"medication_notifier/internal/app"
	"medication_notifier/internal/domain/cabinet"
	"medication_notifier/internal/infra/config"
	idb "medication_notifier/internal/infra/database"
	"medication_notifier/internal/infra/logger"
	infrapush "medication_notifier/internal/infra/push"
	"medication_notifier/internal/infra/scheduler"
)

func main() {
	fmt.Println("Medication Notifier starting...")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not load application configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.Environment)
	log.Infof("Configuration loaded. LogLevel: %s, Environment: %s", cfg.LogLevel, cfg.Environment)

	// Initialize Database Connection
	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully.")

	// Initialize Repositories
	scheduleRepo := idb.NewPostgresScheduleRepository(db)
	cabinetRepo := idb.NewPostgresCabinetRepository(db)
	medicationRepo := idb.NewPostgresMedicationRepository(db)
	documentRepo := idb.NewPostgresDocumentRepository(db)
	notificationRepo := idb.NewPostgresNotificationRepository(db)
	userRepo := idb.NewPostgresUserRepository(db)
	subscriptionRepo := idb.NewPostgresSubscriptionRepository(db)
	log.Info("Repositories initialized.")

	ledger := cabinet.NewLedger(cabinetRepo)

	sender := infrapush.NewWebPushSender(cfg.VAPIDSubscriber, cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey)
	log.Info("Web push sender initialized.")

	batchService := app.NewBatchService(
		scheduleRepo,
		cabinetRepo,
		ledger,
		medicationRepo,
		documentRepo,
		userRepo,
		notificationRepo,
		subscriptionRepo,
		sender,
		app.BatchConfig{
			PageSize:          cfg.PageSize,
			ChunkSize:         cfg.ChunkSize,
			OutOfDoseWarnDays: cfg.OutOfDoseWarnDays,
			ExpiryWarnDays:    cfg.ExpiryWarnDays,
			IntakeWarnPeriod:  cfg.IntakeWarnPeriod,
			NotificationTTL:   cfg.NotificationTTL,
		},
		log,
	)
	log.Info("Batch service initialized.")

	notifScheduler := scheduler.NewNotificationScheduler(batchService, log, cfg.CronSpecDailyRun)
	notifScheduler.Start()

	log.Info("Application setup complete. Scheduler is running.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down application...")
	notifScheduler.Stop()
	log.Info("Application shut down gracefully.")
}
