// Package eventbus defines the event bus contract used for event-driven
// communication between the core and its observers.
package eventbus

import (
	"context"

	"github.com/duitku/duitku/pkg/domain/events"
)

// HandlerFunc handles a single event.
type HandlerFunc func(ctx context.Context, e events.Event) error

// Bus dispatches domain events to registered handlers.
type Bus interface {
	// Register registers a handler for a specific event type.
	Register(eventType string, handler HandlerFunc)
	// Emit dispatches the event to all registered handlers for its type.
	Emit(ctx context.Context, event events.Event) error
}
