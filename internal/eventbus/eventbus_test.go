package eventbus

import (
	"testing"
	"time"
)

func TestBus_SubscribeAndPublish(t *testing.T) {
	b := New(0)
	sub := b.Subscribe()
	defer sub.Cancel()

	b.Publish(Event{Type: SessionCreated, SessionID: "WFS-1"})

	select {
	case got := <-sub.Events:
		if got.Type != SessionCreated || got.SessionID != "WFS-1" {
			t.Errorf("unexpected event: %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for published event")
	}
}

func TestBus_MultipleSubscribersEachReceive(t *testing.T) {
	b := New(0)
	sub1 := b.Subscribe()
	defer sub1.Cancel()
	sub2 := b.Subscribe()
	defer sub2.Cancel()

	b.Publish(Event{Type: TaskCreated, SessionID: "WFS-1", EntityID: "IMPL-001"})

	for i, ch := range []<-chan Event{sub1.Events, sub2.Events} {
		select {
		case got := <-ch:
			if got.EntityID != "IMPL-001" {
				t.Errorf("subscriber %d: unexpected event: %+v", i, got)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d: timed out", i)
		}
	}
}

func TestBus_CancelClosesChannel(t *testing.T) {
	b := New(0)
	sub := b.Subscribe()
	sub.Cancel()

	b.Publish(Event{Type: SessionUpdated, SessionID: "WFS-1"})

	select {
	case _, ok := <-sub.Events:
		if ok {
			t.Fatal("channel should be closed after cancel")
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("channel should have been closed immediately, not merely empty")
	}
}

func TestBus_CancelIsIdempotent(t *testing.T) {
	b := New(0)
	sub := b.Subscribe()
	sub.Cancel()
	sub.Cancel() // must not panic on double close
}

func TestBus_SlowSubscriberDropsRatherThanBlocks(t *testing.T) {
	b := New(1)
	sub := b.Subscribe()
	defer sub.Cancel()

	// Fill the single-slot buffer, then publish again: the second publish
	// must not block even though nothing is draining the channel.
	done := make(chan struct{})
	go func() {
		b.Publish(Event{Type: FileWritten, SessionID: "WFS-1"})
		b.Publish(Event{Type: FileWritten, SessionID: "WFS-1"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full subscriber channel")
	}

	if b.Dropped() != 1 {
		t.Errorf("expected 1 dropped event, got %d", b.Dropped())
	}
}

func TestBus_PublishClonesPayload(t *testing.T) {
	b := New(0)
	sub := b.Subscribe()
	defer sub.Cancel()

	payload := map[string]any{"status": "active"}
	b.Publish(Event{Type: SessionUpdated, SessionID: "WFS-1", Payload: payload})

	got := <-sub.Events
	got.Payload["status"] = "mutated"

	if payload["status"] != "active" {
		t.Error("mutating the received event's payload should not affect the published original")
	}
}

func TestBus_PublishClonesPayloadPerSubscriber(t *testing.T) {
	b := New(0)
	subA := b.Subscribe()
	defer subA.Cancel()
	subB := b.Subscribe()
	defer subB.Cancel()

	payload := map[string]any{"status": "active"}
	b.Publish(Event{Type: SessionUpdated, SessionID: "WFS-1", Payload: payload})

	gotA := <-subA.Events
	gotB := <-subB.Events

	gotA.Payload["status"] = "mutated-by-a"

	if gotB.Payload["status"] != "active" {
		t.Error("mutating one subscriber's payload should not affect another subscriber's view")
	}
}

func TestBus_SubscriberCount(t *testing.T) {
	b := New(0)
	if b.SubscriberCount() != 0 {
		t.Fatalf("expected 0 subscribers, got %d", b.SubscriberCount())
	}
	sub := b.Subscribe()
	if b.SubscriberCount() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", b.SubscriberCount())
	}
	sub.Cancel()
	if b.SubscriberCount() != 0 {
		t.Fatalf("expected 0 subscribers after cancel, got %d", b.SubscriberCount())
	}
}
