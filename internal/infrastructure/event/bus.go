// Package event delivers committed ledger events to their handlers.
package event

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/corebank/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultQueueSize bounds the events waiting for delivery once the bus runs
const DefaultQueueSize = 256

// InMemoryEventBus implements EventBus with in-memory pub/sub. Before Start
// and after Stop events are delivered synchronously; while running they are
// queued and delivered by a single worker in publish order, so a slow
// notifier never holds up the ledger caller.
type InMemoryEventBus struct {
	registry       *HandlerRegistry
	logger         *zap.Logger
	handlerTimeout time.Duration

	mu      sync.RWMutex
	queue   chan envelope
	running atomic.Bool
	wg      sync.WaitGroup
	dropped atomic.Int64
}

type envelope struct {
	ctx   context.Context
	event shared.DomainEvent
}

// BusOption configures an InMemoryEventBus
type BusOption func(*InMemoryEventBus)

// WithHandlerTimeout bounds each handler call
func WithHandlerTimeout(d time.Duration) BusOption {
	return func(b *InMemoryEventBus) {
		b.handlerTimeout = d
	}
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger, opts ...BusOption) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &InMemoryEventBus{
		registry:       NewHandlerRegistry(),
		logger:         logger.Named("event_bus"),
		handlerTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish hands events to their handlers. Handler failures are logged and
// never returned: the events describe work that has already committed.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, event := range events {
		if !b.running.Load() {
			b.deliver(ctx, event)
			continue
		}
		// detach from the caller's deadline; the request may finish first
		env := envelope{ctx: context.WithoutCancel(ctx), event: event}
		select {
		case b.queue <- env:
		default:
			b.dropped.Add(1)
			b.logger.Warn("Event queue full, delivering inline",
				zap.String("event_type", event.EventType()),
				zap.String("event_id", event.EventID().String()),
			)
			b.deliver(ctx, event)
		}
	}
	return nil
}

// Subscribe registers a handler for specific event types
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("Handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
	b.logger.Debug("Handler unsubscribed")
}

// Start switches the bus to queued delivery
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running.Load() {
		return nil
	}

	b.queue = make(chan envelope, DefaultQueueSize)
	b.running.Store(true)
	b.wg.Add(1)
	go b.work(b.queue)
	b.logger.Info("Event bus started")
	return nil
}

// Stop drains the queue and returns to synchronous delivery. It gives up
// waiting when ctx ends.
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.mu.Lock()
	if !b.running.Load() {
		b.mu.Unlock()
		return nil
	}
	b.running.Store(false)
	close(b.queue)
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		b.logger.Info("Event bus stopped", zap.Int64("delivered_inline", b.dropped.Load()))
		return nil
	case <-ctx.Done():
		return fmt.Errorf("event bus drain: %w", ctx.Err())
	}
}

func (b *InMemoryEventBus) work(queue <-chan envelope) {
	defer b.wg.Done()
	for env := range queue {
		b.deliver(env.ctx, env.event)
	}
}

func (b *InMemoryEventBus) deliver(ctx context.Context, event shared.DomainEvent) {
	for _, handler := range b.registry.GetHandlers(event.EventType()) {
		if err := b.dispatchToHandler(ctx, handler, event); err != nil {
			b.logger.Error("Handler failed to process event",
				zap.String("event_type", event.EventType()),
				zap.String("event_id", event.EventID().String()),
				zap.String("aggregate_id", event.AggregateID().String()),
				zap.Error(err),
			)
		}
	}
}

// dispatchToHandler calls one handler, turning a panic into an error
func (b *InMemoryEventBus) dispatchToHandler(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()

	if b.handlerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.handlerTimeout)
		defer cancel()
	}
	return handler.Handle(ctx, event)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
