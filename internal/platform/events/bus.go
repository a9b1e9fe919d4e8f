// Package events provides the in-process notification bus shared by the
// storefront gateway and the add-on controller. Dispatch is synchronous:
// every subscriber for a topic runs on the publishing goroutine before
// Publish returns, which keeps event handling cooperative and ordered.
package events

import (
	"context"
	"sync"
)

// Event is one bus message.
type Event struct {
	// Topic routes the event to subscribers.
	Topic string
	// ID is an optional opaque identifier used for at-most-once handling.
	ID string
	// Data carries the topic-specific payload.
	Data any
}

// Handler consumes one published event.
type Handler func(ctx context.Context, evt Event)

// Bus is a topic-keyed synchronous publish/subscribe hub.
type Bus struct {
	mu   sync.Mutex
	subs map[string][]Handler
}

// NewBus constructs an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string][]Handler)}
}

// Subscribe registers handler for every event published on topic.
// Handlers are invoked in subscription order.
func (b *Bus) Subscribe(topic string, handler Handler) {
	if b == nil || topic == "" || handler == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs == nil {
		b.subs = make(map[string][]Handler)
	}
	b.subs[topic] = append(b.subs[topic], handler)
}

// Publish delivers evt to every subscriber of its topic, synchronously.
// Subscribers registered during delivery do not receive the in-flight event.
func (b *Bus) Publish(ctx context.Context, evt Event) {
	if b == nil || evt.Topic == "" {
		return
	}
	b.mu.Lock()
	handlers := make([]Handler, len(b.subs[evt.Topic]))
	copy(handlers, b.subs[evt.Topic])
	b.mu.Unlock()

	for _, handler := range handlers {
		handler(ctx, evt)
	}
}
