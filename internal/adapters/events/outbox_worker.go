package events

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shivamDefault/ChatLive/internal/ports"
)

// OutboxWorker relays committed sync events from the outbox to a publisher.
// Events that keep failing stop being offered after MaxRetries attempts and
// stay in the table for inspection.
type OutboxWorker struct {
	logger    *slog.Logger
	outbox    ports.OutboxRepository
	publisher ports.EventPublisher
	cfg       OutboxConfig
	nowFn     func() time.Time
}

type OutboxConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
}

func NewOutboxWorker(logger *slog.Logger, outbox ports.OutboxRepository, publisher ports.EventPublisher, cfg OutboxConfig) *OutboxWorker {
	if cfg.Interval <= 0 {
		cfg.Interval = 2 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 10
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OutboxWorker{
		logger:    logger.With("module", "events.outbox_worker", "layer", "adapter"),
		outbox:    outbox,
		publisher: publisher,
		cfg:       cfg,
		nowFn:     func() time.Time { return time.Now().UTC() },
	}
}

// Run relays batches until ctx ends. A full batch is followed immediately by
// the next one; otherwise the worker waits for the next tick.
func (w *OutboxWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		relayed, err := w.relay(ctx)
		switch {
		case errors.Is(err, context.Canceled):
		case err != nil:
			w.logger.ErrorContext(ctx, "outbox relay failed", "operation", "relay", "outcome", "failure", "error", err)
		case relayed == w.cfg.BatchSize:
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// relay offers one batch to the publisher and reports how many events were
// marked published.
func (w *OutboxWorker) relay(ctx context.Context) (int, error) {
	pending, err := w.outbox.Pending(ctx, w.cfg.BatchSize, w.cfg.MaxRetries)
	if err != nil {
		return 0, err
	}
	relayed := 0
	for _, ev := range pending {
		pubErr := w.publisher.Publish(ctx, ev.Type, ev.Payload, ev.Key)
		now := w.nowFn()
		if pubErr != nil {
			w.logger.WarnContext(ctx, "sync event not delivered",
				"operation", "publish",
				"outcome", "retry",
				"event_id", ev.ID.String(),
				"event_type", ev.Type,
				"attempt", ev.Attempts+1,
				"error", pubErr,
			)
			if err := w.outbox.RecordFailure(ctx, ev.ID, pubErr.Error(), now); err != nil {
				return relayed, err
			}
			continue
		}
		if err := w.outbox.MarkPublished(ctx, ev.ID, now); err != nil {
			return relayed, err
		}
		relayed++
	}
	return relayed, nil
}
