package pubsub

import (
	"context"
	"sync"
)

// InMemoryBus fans out published packs to all handlers subscribed to the
// topic, synchronously, in subscription order. It is the single-process
// stand-in for a broker: the reward settlement publishes on it and any UI
// fragment showing a balance observes it, with no direct coupling between
// the two.
type InMemoryBus struct {
	mutex    sync.RWMutex
	handlers map[string][]SubscribeHandler
}

func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{handlers: make(map[string][]SubscribeHandler)}
}

func (b *InMemoryBus) Publish(ctx context.Context, topic string, pack *Pack) error {
	b.mutex.RLock()
	handlers := append([]SubscribeHandler{}, b.handlers[topic]...)
	b.mutex.RUnlock()

	for _, handler := range handlers {
		handler(ctx, topic, pack)
	}

	return nil
}

func (b *InMemoryBus) Subscribe(topic string, handler SubscribeHandler) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.handlers[topic] = append(b.handlers[topic], handler)
}
