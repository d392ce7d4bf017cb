// Package eventbus fans trip lifecycle events out to in-process subscribers.
// The tracker publishes from the poll loop, so delivery never blocks: a
// subscriber that falls behind loses events instead of stalling the tick.
package eventbus

import (
	"sync"

	"github.com/pugetops/ferrytrack/core/events"
)

// subscriberBuffer holds one started and one completed event per vessel for
// a full fleet tick with headroom.
const subscriberBuffer = 64

// EventBus is the in-process lifecycle event fan-out.
type EventBus interface {
	Publish(events.Event)
	Subscribe() <-chan events.Event
	Unsubscribe(<-chan events.Event)
	Close()
}

// Bus implements EventBus over per-subscriber buffered channels.
type Bus struct {
	mu     sync.RWMutex
	subs   map[<-chan events.Event]chan events.Event
	closed bool
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{subs: make(map[<-chan events.Event]chan events.Event)}
}

// Publish delivers the event to every subscriber with room in its buffer.
// Publishing on a closed bus is a no-op.
func (b *Bus) Publish(e events.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribe registers a subscriber and returns its receive channel. On a
// closed bus the returned channel is already closed.
func (b *Bus) Subscribe() <-chan events.Event {
	ch := make(chan events.Event, subscriberBuffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subs[ch] = ch
	return ch
}

// Unsubscribe removes the subscriber and closes its channel. Unknown or
// already-removed channels are ignored.
func (b *Bus) Unsubscribe(sub <-chan events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.subs[sub]
	if !ok {
		return
	}
	delete(b.subs, sub)
	if !b.closed {
		close(ch)
	}
}

// Close closes every subscriber channel. Further Publish and Subscribe calls
// are safe no-ops.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
