package event

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/corebank/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultIdempotencyTTL is how long a delivered event id is remembered
const DefaultIdempotencyTTL = 24 * time.Hour

// DeliveryStats is a snapshot of an IdempotentHandler's counters
type DeliveryStats struct {
	Processed  int64 `json:"processed"`
	Duplicates int64 `json:"duplicates"`
	Failed     int64 `json:"failed"`
}

// IdempotentHandler wraps an EventHandler so each event id is handled once,
// which keeps a customer from getting the same alert twice when an event is
// redelivered. A failed delivery releases its key so a later redelivery can
// try again.
type IdempotentHandler struct {
	handler shared.EventHandler
	store   shared.IdempotencyStore
	ttl     time.Duration
	logger  *zap.Logger

	processed  atomic.Int64
	duplicates atomic.Int64
	failed     atomic.Int64
}

// NewIdempotentHandler wraps handler. A zero ttl uses DefaultIdempotencyTTL.
func NewIdempotentHandler(handler shared.EventHandler, store shared.IdempotencyStore, ttl time.Duration, logger *zap.Logger) *IdempotentHandler {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdempotentHandler{handler: handler, store: store, ttl: ttl, logger: logger}
}

// EventTypes returns the wrapped handler's event types
func (h *IdempotentHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

func idempotencyKey(event shared.DomainEvent) string {
	return "event:" + event.EventID().String()
}

// Handle runs the wrapped handler unless the event was already handled. When
// the store is unavailable the event is handled anyway.
func (h *IdempotentHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	key := idempotencyKey(event)

	isNew, err := h.store.MarkProcessed(ctx, key, h.ttl)
	if err != nil {
		h.logger.Warn("Idempotency check failed, handling anyway",
			zap.String("event_id", event.EventID().String()),
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
	} else if !isNew {
		h.duplicates.Add(1)
		h.logger.Debug("Duplicate event skipped",
			zap.String("event_id", event.EventID().String()),
			zap.String("event_type", event.EventType()),
		)
		return nil
	}

	if err := h.handler.Handle(ctx, event); err != nil {
		h.failed.Add(1)
		if relErr := h.store.Release(ctx, key); relErr != nil {
			h.logger.Warn("Failed to release idempotency key",
				zap.String("key", key),
				zap.Error(relErr),
			)
		}
		return err
	}
	h.processed.Add(1)
	return nil
}

// Stats returns the handler's counters
func (h *IdempotentHandler) Stats() DeliveryStats {
	return DeliveryStats{
		Processed:  h.processed.Load(),
		Duplicates: h.duplicates.Load(),
		Failed:     h.failed.Load(),
	}
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)
