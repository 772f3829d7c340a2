// Package eventbus provides an in-process publish/subscribe bus carrying
// Session Store mutation events to WebSocket writers and other local
// consumers. Publish never blocks on a slow subscriber: a full subscriber
// channel drops the event rather than stalling the publisher.
package eventbus

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/ccwio/ccw/internal/cwlog"
)

// EventType enumerates the kinds of mutation the Session Store emits.
type EventType string

const (
	SessionCreated  EventType = "SESSION_CREATED"
	SessionUpdated  EventType = "SESSION_UPDATED"
	SessionArchived EventType = "SESSION_ARCHIVED"
	TaskCreated     EventType = "TASK_CREATED"
	TaskUpdated     EventType = "TASK_UPDATED"
	FileWritten     EventType = "FILE_WRITTEN"
)

// Event is published on every successful Session Store mutation.
type Event struct {
	Type      EventType      `json:"type"`
	SessionID string         `json:"sessionId"`
	EntityID  string         `json:"entityId,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// clone returns a deep-enough copy so that one subscriber's view of Payload
// cannot be mutated through another subscriber's reference.
func (e Event) clone() Event {
	if e.Payload == nil {
		return e
	}
	cp := make(map[string]any, len(e.Payload))
	for k, v := range e.Payload {
		cp[k] = v
	}
	e.Payload = cp
	return e
}

// DefaultBufferSize is the default per-subscriber channel capacity.
const DefaultBufferSize = 256

type subscriber struct {
	ch     chan Event
	closed bool
}

// Bus is an in-process many-to-many event distributor.
type Bus struct {
	mu         sync.RWMutex
	subs       map[*subscriber]struct{}
	bufferSize int

	dropped atomic.Int64
}

// New creates an empty Bus. bufferSize configures the per-subscriber
// channel capacity; zero or negative selects DefaultBufferSize.
func New(bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Bus{
		subs:       make(map[*subscriber]struct{}),
		bufferSize: bufferSize,
	}
}

// Subscription is a handle returned by Subscribe.
type Subscription struct {
	Events <-chan Event
	Cancel func()
}

// Subscribe registers a new subscriber and returns its receive channel and
// a cancel function. Cancel removes the subscriber from the set and closes
// its channel; it is safe to call more than once.
func (b *Bus) Subscribe() Subscription {
	sub := &subscriber{ch: make(chan Event, b.bufferSize)}

	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, sub)
			sub.closed = true
			b.mu.Unlock()
			close(sub.ch)
		})
	}

	return Subscription{Events: sub.ch, Cancel: cancel}
}

// Publish enqueues evt onto every current subscriber's channel. It never
// blocks: a subscriber whose channel is full has the event dropped and a
// counter incremented, but publish itself always returns immediately.
func (b *Bus) Publish(evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subs {
		if sub.closed {
			continue
		}
		select {
		case sub.ch <- evt.clone():
		default:
			b.dropped.Add(1)
			droppedEventsTotal.Inc()
			cwlog.Log.Warn("eventbus: dropping event for slow subscriber",
				"type", evt.Type, "sessionId", evt.SessionID)
		}
	}
}

// SubscriberCount returns the number of currently active subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Dropped returns the cumulative number of events dropped for slow
// subscribers since the bus was created.
func (b *Bus) Dropped() int64 {
	return b.dropped.Load()
}
