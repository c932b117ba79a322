// Package live publishes full immutable snapshots of a collection to any
// number of subscribers. Subscribers always replace their state with the
// newest snapshot; nothing is merged.
package live

import (
	"context"
	"sync"
	"time"
)

// Snapshot is one published state of the collection. Items must be treated
// as read-only by receivers.
type Snapshot[T any] struct {
	Items   []T
	Version uint64
	At      time.Time
}

// Feed fans snapshots out to subscribers. A slow subscriber never blocks
// Publish: its pending snapshot is replaced by the newer one.
type Feed[T any] struct {
	mu      sync.Mutex
	latest  *Snapshot[T]
	version uint64
	nextID  uint64
	subs    map[uint64]*Subscription[T]
}

func NewFeed[T any]() *Feed[T] {
	return &Feed[T]{subs: make(map[uint64]*Subscription[T])}
}

// Subscription receives snapshots on C until Cancel is called or the
// subscribing context ends, after which C is closed.
type Subscription[T any] struct {
	C <-chan Snapshot[T]

	ch   chan Snapshot[T]
	feed *Feed[T]
	id   uint64
	once sync.Once
	stop chan struct{}
}

// Publish stores a copy of items as the latest snapshot and offers it to every subscriber.
func (f *Feed[T]) Publish(items []T) Snapshot[T] {
	cp := make([]T, len(items))
	copy(cp, items)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.version++
	snap := Snapshot[T]{Items: cp, Version: f.version, At: time.Now()}
	f.latest = &snap
	for _, s := range f.subs {
		s.offer(snap)
	}
	return snap
}

// Latest returns the most recent snapshot, if any was published.
func (f *Feed[T]) Latest() (Snapshot[T], bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.latest == nil {
		return Snapshot[T]{}, false
	}
	return *f.latest, true
}

// Subscribe registers a subscriber. If a snapshot was already published it is
// delivered immediately.
func (f *Feed[T]) Subscribe(ctx context.Context) *Subscription[T] {
	ch := make(chan Snapshot[T], 1)
	s := &Subscription[T]{C: ch, ch: ch, feed: f, stop: make(chan struct{})}

	f.mu.Lock()
	f.nextID++
	s.id = f.nextID
	f.subs[s.id] = s
	if f.latest != nil {
		s.offer(*f.latest)
	}
	f.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			s.Cancel()
		case <-s.stop:
		}
	}()
	return s
}

// Subscribers is the number of active subscriptions.
func (f *Feed[T]) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// offer must be called with the feed lock held.
func (s *Subscription[T]) offer(snap Snapshot[T]) {
	select {
	case <-s.ch:
	default:
	}
	s.ch <- snap
}

// Cancel unsubscribes and closes C. Safe to call more than once.
func (s *Subscription[T]) Cancel() {
	s.once.Do(func() {
		s.feed.mu.Lock()
		delete(s.feed.subs, s.id)
		close(s.ch)
		s.feed.mu.Unlock()
		close(s.stop)
	})
}
