package pubsub

import (
	"context"
	"sync"
	"time"
)

const defaultBufferSize = 64

// Broker fans every published event out to all live subscribers.
// Publishing never blocks: a subscriber whose buffer is full misses the event.
type Broker[T any] struct {
	mu         sync.RWMutex
	subs       map[chan Event[T]]struct{}
	closed     bool
	bufferSize int
	now        func() time.Time
}

// NewBroker creates a broker with a 64-event buffer per subscriber.
func NewBroker[T any]() *Broker[T] {
	return NewBrokerWithBuffer[T](defaultBufferSize)
}

// NewBrokerWithBuffer creates a broker with a custom per-subscriber buffer.
func NewBrokerWithBuffer[T any](size int) *Broker[T] {
	if size < 1 {
		size = 1
	}
	return &Broker[T]{
		subs:       make(map[chan Event[T]]struct{}),
		bufferSize: size,
		now:        time.Now,
	}
}

// Subscribe returns a channel that receives events until ctx is cancelled or
// the broker is closed. Subscribing to a closed broker yields a closed channel.
func (b *Broker[T]) Subscribe(ctx context.Context) <-chan Event[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		ch := make(chan Event[T])
		close(ch)
		return ch
	}

	sub := make(chan Event[T], b.bufferSize)
	b.subs[sub] = struct{}{}

	go func() {
		<-ctx.Done()
		b.unsubscribe(sub)
	}()

	return sub
}

func (b *Broker[T]) unsubscribe(sub chan Event[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	if _, ok := b.subs[sub]; ok {
		delete(b.subs, sub)
		close(sub)
	}
}

// Publish delivers an event to every subscriber with buffer space.
func (b *Broker[T]) Publish(eventType EventType, payload T) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}

	event := Event[T]{Type: eventType, Payload: payload, Timestamp: b.now()}
	for sub := range b.subs {
		select {
		case sub <- event:
		default:
		}
	}
}

// Close closes every subscriber channel. Further publishes are ignored.
func (b *Broker[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for sub := range b.subs {
		close(sub)
	}
	b.subs = nil
}

// SubscriberCount reports the number of live subscriptions.
func (b *Broker[T]) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
