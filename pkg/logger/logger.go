package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// InitLogger initializes the structured logger with proper configuration
func InitLogger(logLevel string, isDevelopment bool) *logrus.Logger {
	log := logrus.New()

	if logLevel == "" {
		logLevel = os.Getenv("LOG_LEVEL")
		if logLevel == "" {
			if isDevelopment {
				logLevel = "debug"
			} else {
				logLevel = "info"
			}
		}
	}

	if level, err := logrus.ParseLevel(strings.ToLower(logLevel)); err == nil {
		log.SetLevel(level)
	} else {
		log.SetLevel(logrus.InfoLevel)
		log.WithField("invalid_level", logLevel).Warn("Invalid LOG_LEVEL, using INFO")
	}

	if !isDevelopment || strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
			ForceColors:     true,
		})
	}

	log.SetOutput(os.Stdout)

	return log
}

// WithService tags log lines with the emitting service.
func WithService(log *logrus.Logger, serviceName string) *logrus.Entry {
	return log.WithField("service", serviceName)
}

// WithProvider tags log lines emitted on behalf of an upstream data source.
func WithProvider(log *logrus.Logger, provider string) *logrus.Entry {
	return log.WithField("provider", provider)
}

// WithGameContext scopes a logger to a game and, optionally, a player.
func WithGameContext(log *logrus.Logger, gameID int, playerID int) *logrus.Entry {
	fields := logrus.Fields{"game_id": gameID}
	if playerID != 0 {
		fields["player_id"] = playerID
	}
	return log.WithFields(fields)
}

// Discard returns a logger that drops everything; handy in tests.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
