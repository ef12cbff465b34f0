package events

import (
	"context"
	"log/slog"
)

// Compile-time interface check.
var _ Sink = (*LogSink)(nil)

// LogSink writes every event to the structured log. It is always registered,
// so the log is a complete record of emitted events even when no subscriber
// or webhook is configured.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a log sink. If logger is nil, output is discarded.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LogSink{logger: logger}
}

// Name implements Sink.
func (s *LogSink) Name() string {
	return "log"
}

// Deliver implements Sink. It never fails.
func (s *LogSink) Deliver(ctx context.Context, ev Event) error {
	s.logger.InfoContext(ctx, "collaboration event",
		slog.String("event_id", ev.ID),
		slog.String("kind", string(ev.Kind)),
		slog.String("task_id", ev.TaskID),
		slog.String("user_id", ev.UserID),
		slog.Time("occurred_at", ev.OccurredAt),
	)
	return nil
}
