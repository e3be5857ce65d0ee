package session

import (
	"sync"

	"portfolio-admin-backend/internal/domain"
)

// Broker fans auth-state changes out to subscribers.
type Broker struct {
	mu        sync.RWMutex
	listeners map[uint64]func(domain.AuthStateChange)
	nextID    uint64
}

func NewBroker() *Broker {
	return &Broker{listeners: make(map[uint64]func(domain.AuthStateChange))}
}

func (b *Broker) Subscribe(callback func(domain.AuthStateChange)) domain.Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.listeners[id] = callback
	return &subscription{broker: b, id: id}
}

// Publish calls every subscriber on the caller's goroutine.
func (b *Broker) Publish(change domain.AuthStateChange) {
	b.mu.RLock()
	callbacks := make([]func(domain.AuthStateChange), 0, len(b.listeners))
	for _, cb := range b.listeners {
		callbacks = append(callbacks, cb)
	}
	b.mu.RUnlock()

	for _, cb := range callbacks {
		cb(change)
	}
}

// Len reports the live subscriptions.
func (b *Broker) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}

type subscription struct {
	broker *Broker
	id     uint64
	once   sync.Once
}

// Unsubscribe is idempotent.
func (s *subscription) Unsubscribe() {
	s.once.Do(func() {
		s.broker.mu.Lock()
		delete(s.broker.listeners, s.id)
		s.broker.mu.Unlock()
	})
}
