// internal/infra/logger/logger.go
package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New builds the application logger. Production and staging log JSON
// with ISO8601 timestamps; everything else gets colored text output.
func New(level, environment string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		log.Warnf("Invalid log level '%s', defaulting to 'info'. Error: %v", level, err)
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)

	switch strings.ToLower(environment) {
	case "production", "staging":
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	default:
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
			ForceColors:     true,
		})
	}

	return log
}
