package events

import (
	"context"
	"encoding/json"
	"log/slog"
)

// LoggingPublisher records sync events in the service log. The runtime uses
// it when no kafka brokers are configured, so the outbox still drains.
type LoggingPublisher struct {
	logger *slog.Logger
}

func NewLoggingPublisher(logger *slog.Logger) *LoggingPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingPublisher{logger: logger.With("module", "events.log_publisher", "layer", "adapter")}
}

func (p *LoggingPublisher) Publish(ctx context.Context, eventType string, payload []byte, key string) error {
	attrs := []any{"operation", "publish", "outcome", "success", "event_type", eventType, "key", key}
	var envelope struct {
		EventID string `json:"event_id"`
	}
	if json.Unmarshal(payload, &envelope) == nil && envelope.EventID != "" {
		attrs = append(attrs, "event_id", envelope.EventID)
	}
	p.logger.InfoContext(ctx, "sync event relayed to log", attrs...)
	return nil
}
