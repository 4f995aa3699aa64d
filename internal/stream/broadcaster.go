// Package stream fans out notification record transitions to live
// subscribers (the dashboard's SSE feed). Both the pending and the terminal
// state of a record pass through here, so a UI can render in-flight
// dispatches.
package stream

import (
	"sync"
	"sync/atomic"

	"github.com/mr1hm/go-disaster-response/internal/models"
)

const subscriberBuffer = 16

type Broadcaster struct {
	subscribers map[uint64]chan models.NotificationRecord
	nextID      atomic.Uint64
	mu          sync.RWMutex
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[uint64]chan models.NotificationRecord),
	}
}

func (b *Broadcaster) Subscribe() (uint64, chan models.NotificationRecord) {
	id := b.nextID.Add(1)
	ch := make(chan models.NotificationRecord, subscriberBuffer)

	b.mu.Lock()
	b.subscribers[id] = ch
	b.mu.Unlock()

	return id, ch
}

func (b *Broadcaster) Unsubscribe(id uint64) {
	b.mu.Lock()
	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
	b.mu.Unlock()
}

// Broadcast delivers a record snapshot to every subscriber. Subscribers
// that cannot keep up lose events rather than blocking dispatch.
func (b *Broadcaster) Broadcast(rec models.NotificationRecord) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- rec:
		default:
		}
	}
}

func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close closes all subscriber channels, ending their streams gracefully.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
}
