package notify

import (
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/focusd/internal/logging"
)

// Severity classifies a notification for display purposes.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// String returns the wire name of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// Sink receives user-facing notifications. Implementations are fire-and-forget
// and must never block the caller on I/O or propagate failures.
type Sink interface {
	Notify(message string, severity Severity, duration time.Duration)
}

// Multi fans a notification out to every sink.
type Multi struct {
	sinks []Sink
}

// NewMulti creates a fan-out sink.
func NewMulti(sinks ...Sink) *Multi {
	return &Multi{sinks: sinks}
}

// Notify forwards to all sinks.
func (m *Multi) Notify(message string, severity Severity, duration time.Duration) {
	for _, s := range m.sinks {
		s.Notify(message, severity, duration)
	}
}

// LogSink writes notifications to the daemon log.
type LogSink struct {
	log *logging.Logger
}

// NewLogSink creates a log-backed sink.
func NewLogSink(log *logging.Logger) *LogSink {
	return &LogSink{log: log}
}

// Notify logs the notification at a level matching its severity.
func (s *LogSink) Notify(message string, severity Severity, duration time.Duration) {
	fields := []zap.Field{zap.Duration("display_duration", duration)}
	switch severity {
	case SeverityError:
		s.log.Error(message, fields...)
	case SeverityWarning:
		s.log.Warn(message, fields...)
	default:
		s.log.Info(message, fields...)
	}
}
