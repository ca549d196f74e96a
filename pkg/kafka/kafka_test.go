package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *captureWriter) Close() error {
	w.closed = true
	return nil
}

func TestProducerPublishEncodesValues(t *testing.T) {
	w := &captureWriter{}
	p := NewProducerWithWriter(w, "gzip")

	require.NoError(t, p.Publish(context.Background(), "quant_insights", []byte("AAPL"), map[string]any{"fused_score": 72.5}))
	require.NoError(t, p.Publish(context.Background(), "raw", nil, "plain"))
	require.NoError(t, p.Publish(context.Background(), "raw", nil, []byte("bytes"), kafka.Header{Key: "source", Value: []byte("test")}))

	require.Len(t, w.msgs, 3)
	assert.Equal(t, "quant_insights", w.msgs[0].Topic)
	assert.Equal(t, []byte("AAPL"), w.msgs[0].Key)
	var decoded map[string]float64
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, 72.5, decoded["fused_score"])
	assert.Equal(t, "plain", string(w.msgs[1].Value))
	assert.Equal(t, "bytes", string(w.msgs[2].Value))
	require.Len(t, w.msgs[2].Headers, 1)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestProducerPublishErrors(t *testing.T) {
	down := errors.New("broker down")
	w := &captureWriter{err: down}
	p := NewProducerWithWriter(w, "snappy")
	err := p.Publish(context.Background(), "t", nil, "x")
	assert.ErrorIs(t, err, down)
	assert.EqualError(t, err, "write t: broker down")

	err = p.Publish(context.Background(), "t", nil, make(chan int))
	assert.ErrorContains(t, err, "marshal value")
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	_, err := NewProducer()
	assert.Error(t, err)

	p, err := NewProducer(WithBrokers([]string{"localhost:9092"}), WithHashByKey(true), WithCompression("lz4"))
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}

func TestNewProducerRejectsBadSettings(t *testing.T) {
	brokers := WithBrokers([]string{"localhost:9092"})

	_, err := NewProducer(brokers, WithCompression("brotli"))
	assert.ErrorContains(t, err, "unknown compression")

	_, err = NewProducer(brokers, WithDelivery(2, 0))
	assert.ErrorContains(t, err, "invalid required acks")

	p, err := NewProducer(brokers, WithCompression("none"), WithDelivery(1, 5), WithClientID("quant-test"))
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}

func TestProducerOptions(t *testing.T) {
	cfg := defaultProducerConfig()
	for _, opt := range []ProducerOption{
		WithBatching(0, 2048, 0),
		WithClientID(""),
		WithDelivery(-1, 0),
	} {
		opt(&cfg)
	}
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 2048, cfg.BatchBytes)
	assert.Equal(t, "quant-platform", cfg.ClientID)
	assert.Equal(t, 3, cfg.MaxAttempts)
}

type fakeAdmin struct {
	created []kafka.TopicConfig
	err     error
	closed  bool
}

func (a *fakeAdmin) CreateTopics(topics ...kafka.TopicConfig) error {
	a.created = append(a.created, topics...)
	return a.err
}

func (a *fakeAdmin) Close() error {
	a.closed = true
	return nil
}

func TestEnsureTopics(t *testing.T) {
	admin := &fakeAdmin{}
	var dialed []string
	dial := func(_ context.Context, broker string) (TopicAdmin, error) {
		dialed = append(dialed, broker)
		if broker == "bad:9092" {
			return nil, errors.New("refused")
		}
		return admin, nil
	}

	specs := []TopicSpec{
		{Name: "raw_market_data", Partitions: 6, ReplicationFactor: 3, Retention: 24 * time.Hour},
		{Name: "trading_signals"},
	}
	err := EnsureTopics(context.Background(), []string{"bad:9092", "good:9092"}, specs, dial)
	require.NoError(t, err)
	assert.Equal(t, []string{"bad:9092", "good:9092"}, dialed)
	assert.True(t, admin.closed)

	require.Len(t, admin.created, 2)
	assert.Equal(t, 6, admin.created[0].NumPartitions)
	assert.Equal(t, 3, admin.created[0].ReplicationFactor)
	require.Len(t, admin.created[0].ConfigEntries, 1)
	assert.Equal(t, "86400000", admin.created[0].ConfigEntries[0].ConfigValue)
	assert.Equal(t, 1, admin.created[1].NumPartitions)
	assert.Empty(t, admin.created[1].ConfigEntries)
}

func TestEnsureTopicsIgnoresExisting(t *testing.T) {
	admin := &fakeAdmin{err: kafka.TopicAlreadyExists}
	dial := func(context.Context, string) (TopicAdmin, error) { return admin, nil }
	assert.NoError(t, EnsureTopics(context.Background(), []string{"b:9092"}, []TopicSpec{{Name: "x"}}, dial))
}

func TestEnsureTopicsNoBroker(t *testing.T) {
	dial := func(context.Context, string) (TopicAdmin, error) { return nil, errors.New("refused") }
	err := EnsureTopics(context.Background(), []string{"a:9092"}, []TopicSpec{{Name: "x"}}, dial)
	assert.ErrorContains(t, err, "no reachable broker")

	assert.Error(t, EnsureTopics(context.Background(), nil, nil, dial))
}
