// Package broadcast is the same-origin, cross-tab event channel. The browser
// original abused a shared localStorage key for this; in-process the same
// contract is a pub/sub bus: the payload is transient, only the most recent
// write matters, and a write never echoes back to the tab that made it.
package broadcast

import (
	"sync"
	"time"
)

type EventType string

const (
	SignedIn  EventType = "signed-in"
	SignedOut EventType = "signed-out"
)

type Event struct {
	Type      EventType `json:"type"`
	Timestamp int64     `json:"timestamp"`
}

type Bus struct {
	mu   sync.Mutex
	next int
	subs map[int]func(Event)
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]func(Event))}
}

// Subscription identifies one listener, so it can stop listening and so its
// own broadcasts are not delivered back to it.
type Subscription struct {
	id  int
	bus *Bus
}

func (b *Bus) Subscribe(fn func(Event)) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.next++
	id := b.next
	b.subs[id] = fn

	return &Subscription{id: id, bus: b}
}

func (s *Subscription) Close() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	delete(s.bus.subs, s.id)
}

// Broadcast delivers the event to every subscriber except the sender,
// mirroring how storage events fire in every tab but the writing one.
// Delivery is synchronous: listeners run before Broadcast returns.
func (s *Subscription) Broadcast(t EventType) {
	s.bus.publish(Event{Type: t, Timestamp: time.Now().UnixMilli()}, s.id)
}

// Publish delivers to every subscriber. Used by senders that are not
// themselves listening.
func (b *Bus) Publish(t EventType) {
	b.publish(Event{Type: t, Timestamp: time.Now().UnixMilli()}, 0)
}

func (b *Bus) publish(e Event, skip int) {
	b.mu.Lock()
	fns := make([]func(Event), 0, len(b.subs))
	for id, fn := range b.subs {
		if id != skip {
			fns = append(fns, fn)
		}
	}
	b.mu.Unlock()

	// Callbacks run outside the lock so a listener may subscribe,
	// unsubscribe, or broadcast in turn.
	for _, fn := range fns {
		fn(e)
	}
}
