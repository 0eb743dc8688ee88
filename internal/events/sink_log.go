package events

import (
	"context"

	"go.uber.org/zap"
)

// LogSink writes events to the logger. Used when no broker is configured.
type LogSink struct {
	logger *zap.SugaredLogger
}

func NewLogSink(logger *zap.SugaredLogger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Publish(event *Event) {
	s.logger.Infow("state changed",
		"kind", event.Kind,
		"photoID", event.PhotoID,
		"url", event.URL,
		"status", event.Status,
		"error", event.Error,
	)
}

func (s *LogSink) Stop(context.Context) error {
	return nil
}
