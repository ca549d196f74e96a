package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"QuantFuse/internal/domain/repository"
	pkgkafka "QuantFuse/pkg/kafka"
)

// DefaultProducerName is stamped on every message as _metadata.producer.
const DefaultProducerName = "quant-platform"

type metadata struct {
	Topic     string `json:"topic"`
	Timestamp string `json:"timestamp"`
	Producer  string `json:"producer"`
}

// KafkaPublisher implements Publisher for Kafka. JSON objects get a
// _metadata block describing where and when they were published.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	name     string
	now      func() time.Time
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, name string) *KafkaPublisher {
	if name == "" {
		name = DefaultProducerName
	}
	return &KafkaPublisher{producer: producer, name: name, now: time.Now}
}

func (p *KafkaPublisher) Publish(ctx context.Context, topic, key string, msg any) error {
	body, err := p.envelope(topic, msg)
	if err != nil {
		return err
	}
	var k []byte
	if key != "" {
		k = []byte(key)
	}
	return p.producer.Publish(ctx, topic, k, body)
}

func (p *KafkaPublisher) envelope(topic string, msg any) ([]byte, error) {
	raw, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode %s message: %w", topic, err)
	}
	if !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
		return raw, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("encode %s message: %w", topic, err)
	}
	meta, err := json.Marshal(metadata{
		Topic:     topic,
		Timestamp: p.now().UTC().Format(time.RFC3339Nano),
		Producer:  p.name,
	})
	if err != nil {
		return nil, err
	}
	fields["_metadata"] = meta
	return json.Marshal(fields)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

var _ repository.Publisher = (*KafkaPublisher)(nil)
