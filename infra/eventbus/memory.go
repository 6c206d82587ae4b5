// Package eventbus provides the in-process event bus implementation.
package eventbus

import (
	"context"
	"log/slog"
	"sync"

	"github.com/duitku/duitku/pkg/domain/events"
	"github.com/duitku/duitku/pkg/eventbus"
)

// MemoryEventBus is a simple in-memory implementation of the Bus interface.
// Handlers run synchronously on the emitting goroutine.
type MemoryEventBus struct {
	handlers  map[string][]eventbus.HandlerFunc
	mu        sync.RWMutex
	logger    *slog.Logger
	published []events.Event // retained for tests
}

// NewWithMemory creates a new in-memory event bus.
func NewWithMemory(logger *slog.Logger) *MemoryEventBus {
	return &MemoryEventBus{
		handlers:  make(map[string][]eventbus.HandlerFunc),
		logger:    logger.With("bus", "memory"),
		published: make([]events.Event, 0),
	}
}

// Register registers a handler for a specific event type.
func (b *MemoryEventBus) Register(eventType string, handler eventbus.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Emit dispatches the event to all registered handlers for its type.
func (b *MemoryEventBus) Emit(ctx context.Context, event events.Event) error {
	eventType := event.Type()
	b.mu.RLock()
	handlers := b.handlers[eventType]
	b.mu.RUnlock()

	b.mu.Lock()
	b.published = append(b.published, event)
	b.mu.Unlock()

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			b.logger.Error("event handler failed",
				"event_type", eventType, "error", err)
		}
	}
	return nil
}

// Published returns the events emitted so far. Test helper.
func (b *MemoryEventBus) Published() []events.Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]events.Event, len(b.published))
	copy(out, b.published)
	return out
}

// ClearPublished clears the list of published events. Test helper.
func (b *MemoryEventBus) ClearPublished() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = b.published[:0]
}

var _ eventbus.Bus = (*MemoryEventBus)(nil)
