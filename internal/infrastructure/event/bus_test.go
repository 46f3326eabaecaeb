package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/corebank/backend/internal/domain/banking"
	"github.com/corebank/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestEvent(eventType string) shared.DomainEvent {
	base := shared.NewBaseDomainEvent(eventType, banking.AggregateTypeAccount, uuid.New())
	return &base
}

// testHandler records what it handles
type testHandler struct {
	mu         sync.Mutex
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	panicWith  any
	block      chan struct{}
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.block != nil {
		<-h.block
	}
	if h.panicWith != nil {
		panic(h.panicWith)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) getHandled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.handled...)
}

func TestInMemoryEventBus_SynchronousDelivery(t *testing.T) {
	bus := NewInMemoryEventBus(zaptest.NewLogger(t))
	posted := newTestHandler(banking.EventTypeTransactionPosted)
	matured := newTestHandler(banking.EventTypeDepositMatured)
	all := newTestHandler()
	bus.Subscribe(posted)
	bus.Subscribe(matured)
	bus.Subscribe(all)

	e1 := newTestEvent(banking.EventTypeTransactionPosted)
	e2 := newTestEvent(banking.EventTypeDepositMatured)
	require.NoError(t, bus.Publish(context.Background(), e1, e2))

	assert.Equal(t, []shared.DomainEvent{e1}, posted.getHandled())
	assert.Equal(t, []shared.DomainEvent{e2}, matured.getHandled())
	assert.Equal(t, []shared.DomainEvent{e1, e2}, all.getHandled())
}

func TestInMemoryEventBus_HandlerFailuresAreContained(t *testing.T) {
	bus := NewInMemoryEventBus(zaptest.NewLogger(t))
	failing := newTestHandler(banking.EventTypeTransactionPosted)
	failing.err = errors.New("smtp down")
	panicking := newTestHandler(banking.EventTypeTransactionPosted)
	panicking.panicWith = "boom"
	healthy := newTestHandler(banking.EventTypeTransactionPosted)
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent(banking.EventTypeTransactionPosted))
	assert.NoError(t, err)
	assert.Len(t, healthy.getHandled(), 1)
}

func TestInMemoryEventBus_DispatchReportsPanic(t *testing.T) {
	bus := NewInMemoryEventBus(zaptest.NewLogger(t))
	h := newTestHandler()
	h.panicWith = "boom"

	err := bus.dispatchToHandler(context.Background(), h, newTestEvent("X"))
	assert.ErrorContains(t, err, "boom")
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zaptest.NewLogger(t))
	h := newTestHandler(banking.EventTypeTransactionPosted)
	bus.Subscribe(h)
	bus.Unsubscribe(h)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent(banking.EventTypeTransactionPosted)))
	assert.Empty(t, h.getHandled())
}

func TestInMemoryEventBus_QueuedDelivery(t *testing.T) {
	bus := NewInMemoryEventBus(zaptest.NewLogger(t))
	h := newTestHandler(banking.EventTypeTransactionPosted)
	h.block = make(chan struct{})
	bus.Subscribe(h)

	require.NoError(t, bus.Start(context.Background()))

	events := make([]shared.DomainEvent, 5)
	for i := range events {
		events[i] = newTestEvent(banking.EventTypeTransactionPosted)
	}
	// returns while the handler is still blocked
	require.NoError(t, bus.Publish(context.Background(), events...))
	assert.Empty(t, h.getHandled())

	close(h.block)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(ctx))
	assert.Equal(t, events, h.getHandled(), "delivered in publish order")
}

func TestInMemoryEventBus_CallerCancellationDoesNotReachHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zaptest.NewLogger(t))
	var seen error
	var mu sync.Mutex
	h := &ctxHandler{fn: func(ctx context.Context) {
		mu.Lock()
		seen = ctx.Err()
		mu.Unlock()
	}}
	bus.Subscribe(h, banking.EventTypeTransactionPosted)
	require.NoError(t, bus.Start(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, bus.Publish(ctx, newTestEvent(banking.EventTypeTransactionPosted)))
	cancel()
	require.NoError(t, bus.Stop(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.NoError(t, seen)
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	ctx := context.Background()

	assert.NoError(t, bus.Stop(ctx), "stopping a stopped bus is a no-op")
	require.NoError(t, bus.Start(ctx))
	require.NoError(t, bus.Start(ctx))
	require.NoError(t, bus.Stop(ctx))

	h := newTestHandler()
	bus.Subscribe(h)
	require.NoError(t, bus.Publish(ctx, newTestEvent("X")))
	assert.Len(t, h.getHandled(), 1, "synchronous again after stop")
}

func TestInMemoryEventBus_HandlerTimeout(t *testing.T) {
	bus := NewInMemoryEventBus(zaptest.NewLogger(t), WithHandlerTimeout(10*time.Millisecond))
	h := &ctxHandler{fn: func(ctx context.Context) { <-ctx.Done() }}

	err := bus.dispatchToHandler(context.Background(), h, newTestEvent("X"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// ctxHandler runs fn and returns the context's error
type ctxHandler struct {
	fn func(ctx context.Context)
}

func (h *ctxHandler) Handle(ctx context.Context, _ shared.DomainEvent) error {
	h.fn(ctx)
	return ctx.Err()
}

func (h *ctxHandler) EventTypes() []string { return nil }
