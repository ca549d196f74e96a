package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	mu      sync.Mutex
	topic   string
	key     string
	digests []LogDigest
}

func (p *capturePublisher) Publish(_ context.Context, topic, key string, msg any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topic = topic
	p.key = key
	p.digests = append(p.digests, msg.(LogDigest))
	return nil
}

func (p *capturePublisher) snapshot() []LogDigest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]LogDigest(nil), p.digests...)
}

func TestCollectorDeduplicatesAndFlushesOnClose(t *testing.T) {
	pub := &capturePublisher{}
	c := NewLogCollector(&CollectionConfig{
		TimeInterval:   time.Hour,
		CountThreshold: 10,
		Topic:          "service_logs",
		Service:        "quantfuse",
		Publisher:      pub,
	})

	fields := map[string]interface{}{"symbol": "AAPL"}
	c.AddLog("error", "provider failed", fields, "gateway/gateway.go:10")
	c.AddLog("error", "other failure", nil, "gateway/gateway.go:20")
	c.AddLog("error", "provider failed", fields, "gateway/gateway.go:10")
	c.AddLog("warn", "not collected", nil, "gateway/gateway.go:30")
	assert.Equal(t, 2, c.Pending())

	c.Close()

	digests := pub.snapshot()
	require.Len(t, digests, 1)
	assert.Equal(t, "service_logs", pub.topic)
	assert.Equal(t, "quantfuse", pub.key)

	d := digests[0]
	assert.Equal(t, "quantfuse", d.Service)
	assert.Equal(t, 3, d.Total)
	require.Len(t, d.Entries, 2)
	assert.Equal(t, "provider failed", d.Entries[0].Message)
	assert.Equal(t, 2, d.Entries[0].Count)
	assert.Equal(t, "other failure", d.Entries[1].Message)
	assert.False(t, d.WindowEnd.Before(d.WindowStart))
}

func TestCollectorFlushesAtThreshold(t *testing.T) {
	pub := &capturePublisher{}
	c := NewLogCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 2, Topic: "t", Publisher: pub})

	c.AddLog("error", "a", nil, "x:1")
	c.AddLog("error", "b", nil, "x:2")
	assert.Equal(t, 0, c.Pending())

	c.Close()
	digests := pub.snapshot()
	require.Len(t, digests, 1)
	assert.Len(t, digests[0].Entries, 2)
}

func TestCollectorEmptyFlushPublishesNothing(t *testing.T) {
	pub := &capturePublisher{}
	c := NewLogCollector(&CollectionConfig{TimeInterval: time.Hour, Topic: "t", Publisher: pub})
	c.Flush()
	c.Close()
	assert.Empty(t, pub.snapshot())
}

func TestLoggerFeedsCollector(t *testing.T) {
	pub := &capturePublisher{}
	l := Nop()
	l.AddCollector(&CollectionConfig{
		TimeInterval: time.Hour,
		Topic:        "t",
		Levels:       []string{"error", "warn"},
		Publisher:    pub,
	})

	child := l.Component("gateway")
	child.Error("fetch failed", Symbol("MSFT"), Error(errors.New("boom")), Duration("took", 1500*time.Millisecond))
	child.Warn("news unavailable", Provider("headlines"))
	child.Info("not collected")

	l.RemoveCollector()
	digests := pub.snapshot()
	require.Len(t, digests, 1)
	require.Len(t, digests[0].Entries, 2)

	byMsg := map[string]AggregatedLogEntry{}
	for _, e := range digests[0].Entries {
		byMsg[e.Message] = e
	}
	failed := byMsg["fetch failed"]
	assert.Equal(t, "MSFT", failed.Fields["symbol"])
	assert.Equal(t, "boom", failed.Fields["error"])
	assert.Equal(t, int64(1500), failed.Fields["took"])
	assert.Contains(t, failed.Caller, "logger/collector_test.go")
	assert.Equal(t, "headlines", byMsg["news unavailable"].Fields["provider"])
}

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, zerolog.InfoLevel, &Config{Format: "json", Service: "quantfuse"})

	l.Debug("hidden")
	l.Info("quote served", Symbol("AAPL"), Float64("price", 190.5), Topic("raw_market_data"))

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "quote served", line["message"])
	assert.Equal(t, "quantfuse", line["service"])
	assert.Equal(t, "AAPL", line["symbol"])
	assert.Equal(t, 190.5, line["price"])
	assert.Equal(t, "raw_market_data", line["topic"])
	assert.Contains(t, line["caller"], "collector_test.go")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud"})
	assert.Error(t, err)
}
