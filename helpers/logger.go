package helpers

import (
	"sjsage522/dealbite/logger"
)

// LoggerInterface defines the logging surface the worker depends on
type LoggerInterface interface {
	LogError(sourceName string, err error)
	LogInfo(format string, args ...interface{})
}

// Logger forwards to a structured logger
type Logger struct {
	log *logger.Logger
}

// NewLogger creates a logger tagged with component
func NewLogger(component string) *Logger {
	return &Logger{log: logger.ForComponent(component)}
}

// LogError logs an error with the source it came from
func (l *Logger) LogError(sourceName string, err error) {
	l.log.Error().Str("source", sourceName).Err(err).Msg("Source failed")
}

// LogInfo logs an informational message
func (l *Logger) LogInfo(format string, args ...interface{}) {
	l.log.Info().Msgf(format, args...)
}
