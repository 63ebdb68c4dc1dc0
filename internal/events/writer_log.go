package events

import (
	"context"
	"encoding/json"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"go.uber.org/zap"
)

// LogWriter logs submission events instead of publishing them. Used when no brokers are configured.
type LogWriter struct {
	logger *zap.SugaredLogger
}

func NewLogWriter() *LogWriter {
	return &LogWriter{logger: zap.S().Named("event_log_writer")}
}

func (l *LogWriter) Write(_ context.Context, topic string, e cloudevents.Event) error {
	fields := []any{"topic", topic, "event_id", e.ID(), "type", e.Type()}

	var ev SubmissionEvent
	if err := json.Unmarshal(e.Data(), &ev); err != nil {
		l.logger.Warnw("event data is not a submission event", append(fields, "error", err)...)
		return nil
	}

	fields = append(fields, "submission_id", ev.SubmissionID.String(), "status", ev.Status)
	if ev.Error != "" {
		l.logger.Infow("submission event", append(fields, "error_message", ev.Error)...)
		return nil
	}
	l.logger.Infow("submission event", append(fields, "scores", ev.Scores)...)
	return nil
}

func (l *LogWriter) Close(_ context.Context) error {
	return nil
}
