package events

import (
	"context"
	"testing"
)

func TestPublishDeliversInSubscriptionOrder(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	var order []string
	bus.Subscribe("cart:update", func(_ context.Context, evt Event) {
		order = append(order, "first")
	})
	bus.Subscribe("cart:update", func(_ context.Context, evt Event) {
		order = append(order, "second")
	})

	bus.Publish(context.Background(), Event{Topic: "cart:update"})

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("expected ordered delivery, got %v", order)
	}
}

func TestPublishSkipsOtherTopics(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	called := false
	bus.Subscribe("cart:updated", func(context.Context, Event) {
		called = true
	})

	bus.Publish(context.Background(), Event{Topic: "cart:update"})

	if called {
		t.Fatal("expected subscriber on a different topic to stay idle")
	}
}

func TestPublishIsSynchronous(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	var got Event
	bus.Subscribe("cart:count-updated", func(_ context.Context, evt Event) {
		got = evt
	})

	bus.Publish(context.Background(), Event{Topic: "cart:count-updated", ID: "evt-1", Data: 3})

	if got.ID != "evt-1" {
		t.Fatalf("expected event delivered before Publish returned, got %+v", got)
	}
	if count, ok := got.Data.(int); !ok || count != 3 {
		t.Fatalf("expected payload 3, got %v", got.Data)
	}
}

func TestSubscribeIgnoresNilHandler(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	bus.Subscribe("cart:update", nil)
	// Publishing must not panic when the only registration was discarded.
	bus.Publish(context.Background(), Event{Topic: "cart:update"})
}
