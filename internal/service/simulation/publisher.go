package simulation

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	drepo "QuantFuse/internal/domain/repository"
)

var ErrPublisherClosed = errors.New("publisher closed")

// Message is one record captured by MemoryPublisher. Value holds the JSON
// encoding of what was published, as it would appear on the wire.
type Message struct {
	Topic string
	Key   string
	Value json.RawMessage
}

// MemoryPublisher keeps published messages in memory, grouped by topic.
type MemoryPublisher struct {
	mu     sync.RWMutex
	topics map[string][]Message
	closed bool
	// Fail, when set, is returned from every Publish call.
	Fail error
}

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{topics: make(map[string][]Message)}
}

func (p *MemoryPublisher) Publish(ctx context.Context, topic, key string, msg any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPublisherClosed
	}
	if p.Fail != nil {
		return p.Fail
	}
	p.topics[topic] = append(p.topics[topic], Message{Topic: topic, Key: key, Value: b})
	return nil
}

// Messages returns a copy of what was published to topic.
func (p *MemoryPublisher) Messages(topic string) []Message {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]Message(nil), p.topics[topic]...)
}

func (p *MemoryPublisher) Count(topic string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.topics[topic])
}

func (p *MemoryPublisher) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}

var _ drepo.Publisher = (*MemoryPublisher)(nil)
