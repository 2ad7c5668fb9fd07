// Package logging provides notifier and audit sink implementations that write
// to a structured slog logger. They back local runs and the memory store.
package logging

import (
	"context"
	"log/slog"

	"parcellocker/internal/core/domain/model/audit"
)

// AuditSink writes every event as one structured log record. Warning and
// critical events are logged at WARN and ERROR.
type AuditSink struct {
	logger *slog.Logger
}

func NewAuditSink(logger *slog.Logger) *AuditSink {
	return &AuditSink{logger: logger.With("component", "audit")}
}

func (s *AuditSink) Record(ctx context.Context, event audit.Event) error {
	attrs := make([]any, 0, len(event.Details))
	for key, value := range event.Details {
		attrs = append(attrs, slog.Any(key, value))
	}

	s.logger.Log(ctx, level(event.Severity), string(event.Kind),
		slog.String("event_id", event.ID.String()),
		slog.Time("at", event.Timestamp),
		slog.String("severity", string(event.Severity)),
		slog.Group("details", attrs...),
	)
	return nil
}

func level(severity audit.Severity) slog.Level {
	switch severity {
	case audit.Critical:
		return slog.LevelError
	case audit.Warning:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
