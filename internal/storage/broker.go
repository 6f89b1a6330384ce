package storage

import (
	"sync"

	"github.com/nikbrunner/burst/internal/model"
)

const subscriberBuffer = 64

type subscriber struct {
	ch   chan model.Event
	done chan struct{}
}

// broker fans change notifications out to subscribers. Delivery blocks
// until each subscriber receives or unsubscribes, so no event is dropped.
type broker struct {
	mu   sync.Mutex
	next int
	subs map[int]*subscriber
}

// Subscribe returns a channel of change notifications and a function that
// stops delivery. The channel is never closed.
func (b *broker) Subscribe() (<-chan model.Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs == nil {
		b.subs = make(map[int]*subscriber)
	}
	id := b.next
	b.next++
	sub := &subscriber{
		ch:   make(chan model.Event, subscriberBuffer),
		done: make(chan struct{}),
	}
	b.subs[id] = sub

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(sub.done)
		})
	}
	return sub.ch, cancel
}

// publish must be called without holding the store's own lock.
func (b *broker) publish(ev model.Event) {
	b.mu.Lock()
	subs := make([]*subscriber, 0, len(b.subs))
	for _, s := range b.subs {
		subs = append(subs, s)
	}
	b.mu.Unlock()

	for _, s := range subs {
		select {
		case s.ch <- ev:
		case <-s.done:
		}
	}
}
