package broker

import (
	"context"
	"sync"
	"time"
)

// InMemoryBroker records published messages in memory. It backs dry runs and
// tests.
type InMemoryBroker struct {
	mu       sync.RWMutex
	messages []Message
	closed   bool
}

// NewInMemoryBroker creates a new InMemoryBroker instance.
func NewInMemoryBroker() *InMemoryBroker {
	return &InMemoryBroker{}
}

// Publish records a copy of the message.
func (b *InMemoryBroker) Publish(ctx context.Context, topic string, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}

	b.messages = append(b.messages, Message{
		Topic:     topic,
		Key:       key,
		Value:     append([]byte(nil), value...),
		Timestamp: time.Now().UnixMilli(),
	})
	return nil
}

// Messages returns every recorded message in publish order.
func (b *InMemoryBroker) Messages() []Message {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return append([]Message(nil), b.messages...)
}

// MessagesFor returns the recorded messages of one topic.
func (b *InMemoryBroker) MessagesFor(topic string) []Message {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []Message
	for _, m := range b.messages {
		if m.Topic == topic {
			out = append(out, m)
		}
	}
	return out
}

// Close marks the broker closed. Recorded messages stay readable.
func (b *InMemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	return nil
}
