package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	DatabaseURL     string
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubscriber string // mailto: contact handed to push services
	LogLevel        string
	Environment     string

	CronSpecDailyRun string // daily pipeline trigger

	PageSize          int
	ChunkSize         int
	OutOfDoseWarnDays int
	ExpiryWarnDays    int
	IntakeWarnPeriod  time.Duration
	NotificationTTL   time.Duration
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.VAPIDPublicKey = os.Getenv("VAPID_PUBLIC_KEY")
	if cfg.VAPIDPublicKey == "" {
		return nil, fmt.Errorf("VAPID_PUBLIC_KEY is not set")
	}
	cfg.VAPIDPrivateKey = os.Getenv("VAPID_PRIVATE_KEY")
	if cfg.VAPIDPrivateKey == "" {
		return nil, fmt.Errorf("VAPID_PRIVATE_KEY is not set")
	}
	cfg.VAPIDSubscriber = os.Getenv("VAPID_SUBSCRIBER")
	if cfg.VAPIDSubscriber == "" {
		cfg.VAPIDSubscriber = "mailto:admin@localhost"
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	cfg.CronSpecDailyRun = os.Getenv("CRON_SPEC_DAILY_RUN")
	if cfg.CronSpecDailyRun == "" {
		cfg.CronSpecDailyRun = "0 7 * * *" // 07:00 every day
	}

	cfg.PageSize, err = intEnv("BATCH_PAGE_SIZE", 100)
	if err != nil {
		return nil, err
	}
	cfg.ChunkSize, err = intEnv("BATCH_CHUNK_SIZE", 25)
	if err != nil {
		return nil, err
	}
	cfg.OutOfDoseWarnDays, err = intEnv("OUT_OF_DOSE_WARN_DAYS", 7)
	if err != nil {
		return nil, err
	}
	cfg.ExpiryWarnDays, err = intEnv("EXPIRY_WARN_DAYS", 14)
	if err != nil {
		return nil, err
	}
	cfg.IntakeWarnPeriod, err = durationEnv("INTAKE_WARN_PERIOD", time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.NotificationTTL, err = durationEnv("NOTIFICATION_TTL", 48*time.Hour)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func intEnv(name string, def int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", name, v)
	}
	return v, nil
}

func durationEnv(name string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", name, v)
	}
	return v, nil
}
