package qurro

import (
	"log/slog"
	"os"

	"github.com/cameronmartino/qurro/model"
)

// Logger wraps slog.Logger with qurro-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithGeneration adds a generation field to the logger.
func (l *Logger) WithGeneration(gen model.Generation) *Logger {
	return &Logger{
		Logger: l.Logger.With("generation", uint64(gen)),
	}
}

// WithSlot adds a slot field to the logger.
func (l *Logger) WithSlot(slot model.Slot) *Logger {
	return &Logger{
		Logger: l.Logger.With("slot", slot.String()),
	}
}

// LogClick logs a feature click event.
func (l *Logger) LogClick(id model.FeatureID, err error) {
	if err != nil {
		l.Warn("click rejected",
			"feature", string(id),
			"error", err,
		)
	} else {
		l.Debug("click handled",
			"feature", string(id),
		)
	}
}

// LogQuery logs a query submission.
func (l *Logger) LogQuery(slot model.Slot, query string, err error) {
	if err != nil {
		l.Warn("query rejected",
			"slot", slot.String(),
			"query", query,
			"error", err,
		)
	} else {
		l.Debug("query applied",
			"slot", slot.String(),
			"query", query,
		)
	}
}

// LogPacket logs an emitted output packet.
func (l *Logger) LogPacket(pkt model.Packet) {
	l.Debug("packet emitted",
		"generation", uint64(pkt.Generation),
		"state", pkt.State.String(),
		"excluded_samples", pkt.ExcludedSampleCount,
	)
}
