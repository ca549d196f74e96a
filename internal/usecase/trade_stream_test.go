package usecase

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"QuantFuse/internal/domain/models"
	drepo "QuantFuse/internal/domain/repository"
	"QuantFuse/internal/service/ratelimit"
	"QuantFuse/internal/service/simulation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedStream serves one batch of trades per connection and then fails.
type scriptedStream struct {
	mu         sync.Mutex
	batches    [][]*models.Trade
	reads      int
	reconnects atomic.Int32
	connected  atomic.Bool
}

func (s *scriptedStream) Connect(context.Context) error {
	s.connected.Store(true)
	return nil
}

func (s *scriptedStream) Subscribe(context.Context) error { return nil }
func (s *scriptedStream) IsConnected() bool               { return s.connected.Load() }

func (s *scriptedStream) Close() error {
	s.connected.Store(false)
	return nil
}

func (s *scriptedStream) Reconnect(ctx context.Context) error {
	s.reconnects.Add(1)
	return s.Connect(ctx)
}

func (s *scriptedStream) Read(ctx context.Context) (<-chan *models.Trade, <-chan error) {
	s.mu.Lock()
	var batch []*models.Trade
	if s.reads < len(s.batches) {
		batch = s.batches[s.reads]
	}
	s.reads++
	s.mu.Unlock()

	trades := make(chan *models.Trade)
	errs := make(chan error, 1)
	go func() {
		defer close(trades)
		defer close(errs)
		for _, t := range batch {
			select {
			case trades <- t:
			case <-ctx.Done():
				return
			}
		}
		if batch == nil {
			<-ctx.Done()
			return
		}
		errs <- errors.New("connection reset")
	}()
	return trades, errs
}

type recordingRefresher struct {
	mu     sync.Mutex
	prices map[string]float64
}

func (r *recordingRefresher) RefreshQuotePrice(_ context.Context, symbol string, price float64, _ time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.prices == nil {
		r.prices = map[string]float64{}
	}
	r.prices[symbol] = price
	return true
}

func (r *recordingRefresher) price(symbol string) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.prices[symbol]
}

func TestTradeStreamProcess(t *testing.T) {
	pub := simulation.NewMemoryPublisher()
	ref := &recordingRefresher{}
	now := time.Unix(1_700_000_000, 0)
	lim := ratelimit.New().WithClock(func() time.Time { return now })
	ts := NewTradeStream(TradeStreamConfig{MaxRPS: 1}, &scriptedStream{}, lim, ref, pub, nil, "memory", nil)
	ctx := context.Background()

	require.NoError(t, ts.Process(ctx, &models.Trade{Symbol: "AAPL", Price: 190, Volume: 5, Timestamp: now.Unix()}))
	// same second, same symbol: throttled
	require.NoError(t, ts.Process(ctx, &models.Trade{Symbol: "AAPL", Price: 191, Volume: 5, Timestamp: now.Unix()}))
	require.NoError(t, ts.Process(ctx, &models.Trade{Symbol: "MSFT", Price: 410, Volume: 1, Timestamp: now.Unix()}))

	msgs := pub.Messages(drepo.TopicRawMarketData)
	require.Len(t, msgs, 2)
	assert.Equal(t, "AAPL", msgs[0].Key)
	assert.Equal(t, "MSFT", msgs[1].Key)
	assert.Equal(t, 190.0, ref.price("AAPL"))

	assert.Error(t, ts.Process(ctx, &models.Trade{Symbol: "", Price: 1, Timestamp: 1}))
	assert.Error(t, ts.Process(ctx, &models.Trade{Symbol: "X", Price: -1, Timestamp: 1}))
	assert.Error(t, ts.Process(ctx, nil))
}

func TestTradeStreamRejectsNonPositivePrice(t *testing.T) {
	pub := simulation.NewMemoryPublisher()
	ref := &recordingRefresher{}
	ts := NewTradeStream(TradeStreamConfig{}, &scriptedStream{}, ratelimit.New(), ref, pub, nil, "memory", nil)
	ctx := context.Background()

	for _, tr := range []*models.Trade{
		{Symbol: "AAPL", Price: 0, Volume: 3, Timestamp: 1},
		{Symbol: "AAPL", Price: math.NaN(), Volume: 3, Timestamp: 1},
		{Symbol: "AAPL", Price: math.Inf(1), Volume: 3, Timestamp: 1},
		{Symbol: "AAPL", Price: 10, Volume: -1, Timestamp: 1},
	} {
		assert.Error(t, ts.Process(ctx, tr), "trade %+v", *tr)
	}
	assert.Empty(t, pub.Messages(drepo.TopicRawMarketData))
	assert.Zero(t, ref.price("AAPL"))
}

func TestTradeStreamReconnectsAfterFailure(t *testing.T) {
	stream := &scriptedStream{batches: [][]*models.Trade{
		{{Symbol: "AAPL", Price: 1, Timestamp: 1}},
		{{Symbol: "AAPL", Price: 2, Timestamp: 2}},
	}}
	pub := simulation.NewMemoryPublisher()
	ts := NewTradeStream(TradeStreamConfig{ReconnectBackoff: time.Millisecond}, stream, nil, nil, pub, nil, "memory", nil)

	require.NoError(t, ts.Start(context.Background()))
	assert.Eventually(t, func() bool {
		return pub.Count(drepo.TopicRawMarketData) == 2 && stream.reconnects.Load() >= 2
	}, 2*time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, ts.Shutdown(ctx))
	assert.False(t, ts.IsConnected())
}
