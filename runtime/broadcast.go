// Package runtime owns the fan-out machinery: the per-user broadcast
// channels and the concurrent registry that maps users onto them.
// It carries no domain rules beyond delivery.
package runtime

import (
	"sync"
	"sync/atomic"

	"github.com/PY0226H/aicomm/domain/event"
)

// Broadcaster fans one user's events out to every live subscription.
//
// Delivery is best-effort and lossy under pressure: each subscription owns a
// bounded buffer, and when a subscriber falls behind by more than the
// capacity its oldest unread events are discarded rather than blocking the
// publisher or the other subscribers. This is a live feed, not a queue;
// callers that need durability must not build on it.
//
// Broadcaster is safe for concurrent use by multiple goroutines.
type Broadcaster struct {
	mu       sync.Mutex
	capacity int
	nextID   uint64
	subs     map[uint64]*Subscription
}

func NewBroadcaster(capacity int) *Broadcaster {
	if capacity < 1 {
		capacity = 1
	}
	return &Broadcaster{
		capacity: capacity,
		subs:     make(map[uint64]*Subscription),
	}
}

// Subscribe attaches a fresh receiver with its own read position.
// Subscriptions never interfere with each other; a slow one only loses
// its own events.
func (b *Broadcaster) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{
		id: b.nextID,
		b:  b,
		ch: make(chan event.AppEvent, b.capacity),
	}
	b.subs[sub.id] = sub
	return sub
}

// Publish delivers the event to every live subscription in publish order.
// It never blocks: a subscription whose buffer is full has its oldest
// event evicted and its lost counter bumped.
func (b *Broadcaster) Publish(e event.AppEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs {
		select {
		case sub.ch <- e:
			continue
		default:
		}
		// Buffer full: evict the oldest unread event, then retry once.
		// The receiver may have drained concurrently, in which case the
		// eviction read competes with it and both outcomes are fine.
		select {
		case <-sub.ch:
			sub.lost.Add(1)
		default:
		}
		select {
		case sub.ch <- e:
		default:
			sub.lost.Add(1)
		}
	}
}

// Subscribers reports the number of live subscriptions.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Subscription is one receiver's handle into a Broadcaster. It is owned by
// exactly one connection handler and must be closed on every exit path.
type Subscription struct {
	id   uint64
	b    *Broadcaster
	ch   chan event.AppEvent
	lost atomic.Uint64
	once sync.Once
}

// Events is the receive side. It is closed by Close; events arrive in the
// order they were published to this user.
func (s *Subscription) Events() <-chan event.AppEvent {
	return s.ch
}

// Lost reports how many events were discarded because this subscriber
// lagged past the buffer capacity.
func (s *Subscription) Lost() uint64 {
	return s.lost.Load()
}

// Close detaches the subscription from its broadcaster and closes the
// receive channel. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.b.mu.Lock()
		delete(s.b.subs, s.id)
		s.b.mu.Unlock()
		close(s.ch)
	})
}
