package usecase

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"QuantFuse/internal/domain/models"
	drepo "QuantFuse/internal/domain/repository"
	"QuantFuse/internal/service/ratelimit"
	applogger "QuantFuse/pkg/logger"
)

// QuoteRefresher updates cached quotes from live trades.
type QuoteRefresher interface {
	RefreshQuotePrice(ctx context.Context, symbol string, price float64, at time.Time) bool
}

type TradeStreamConfig struct {
	// MaxRPS caps forwarded trades per symbol per second. Zero disables.
	MaxRPS int
	// ReconnectBackoff is the first delay after a stream failure; it doubles
	// up to MaxBackoff.
	ReconnectBackoff time.Duration
	MaxBackoff       time.Duration
}

// TradeStream reads live trades, throttles them per symbol, publishes them
// to raw_market_data and refreshes cached quote prices.
type TradeStream struct {
	cfg       TradeStreamConfig
	stream    drepo.MarketStream
	limiter   *ratelimit.Limiter
	refresher QuoteRefresher
	out       publisher
	metrics   drepo.Metrics
	log       *applogger.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func NewTradeStream(cfg TradeStreamConfig, stream drepo.MarketStream, limiter *ratelimit.Limiter, refresher QuoteRefresher, pub drepo.Publisher, metrics drepo.Metrics, backend string, log *applogger.Logger) *TradeStream {
	if cfg.ReconnectBackoff <= 0 {
		cfg.ReconnectBackoff = time.Second
	}
	if cfg.MaxBackoff < cfg.ReconnectBackoff {
		cfg.MaxBackoff = 30 * time.Second
	}
	if limiter == nil {
		limiter = ratelimit.New()
	}
	if log == nil {
		log = applogger.Nop()
	}
	log = log.Component("trade_stream")
	return &TradeStream{
		cfg:       cfg,
		stream:    stream,
		limiter:   limiter,
		refresher: refresher,
		out:       newPublisher(pub, metrics, backend, log),
		metrics:   metrics,
		log:       log,
	}
}

// IsConnected returns true if the market stream is connected.
func (t *TradeStream) IsConnected() bool { return t.stream.IsConnected() }

// Start connects and consumes in the background until ctx ends or Shutdown
// is called.
func (t *TradeStream) Start(ctx context.Context) error {
	if err := t.stream.Connect(ctx); err != nil {
		return err
	}
	if err := t.stream.Subscribe(ctx); err != nil {
		_ = t.stream.Close()
		return err
	}
	ctx, t.cancel = context.WithCancel(ctx)
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		t.run(ctx)
	}()
	return nil
}

func (t *TradeStream) run(ctx context.Context) {
	backoff := t.cfg.ReconnectBackoff
	for {
		err := t.consume(ctx)
		if ctx.Err() != nil {
			return
		}
		t.recordError("stream")
		t.log.Warn("trade stream interrupted", applogger.Error(err), applogger.Duration("retry_in_ms", backoff))

		for {
			err := t.stream.Reconnect(ctx)
			if err == nil {
				backoff = t.cfg.ReconnectBackoff
				break
			}
			if ctx.Err() != nil {
				return
			}
			t.recordError("stream_reconnect")
			t.log.Error("reconnect failed", applogger.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, t.cfg.MaxBackoff)
		}
	}
}

// consume drains one connection's channels and returns why it ended.
func (t *TradeStream) consume(ctx context.Context) error {
	trCh, errCh := t.stream.Read(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-errCh:
			if ok && err != nil {
				return err
			}
			errCh = nil
		case tr, ok := <-trCh:
			if !ok {
				return fmt.Errorf("trade channel closed")
			}
			_ = t.Process(ctx, tr)
		}
	}
}

// Process validates, throttles and forwards one trade. Throttled trades are
// dropped without error.
func (t *TradeStream) Process(ctx context.Context, tr *models.Trade) error {
	start := time.Now()
	if err := validateTrade(tr); err != nil {
		t.recordError("trade_validate")
		return err
	}
	if t.cfg.MaxRPS > 0 {
		rps := float64(t.cfg.MaxRPS)
		if !t.limiter.Allow("trade:"+tr.Symbol, rps, rps) {
			t.recordError("trade_throttle")
			return nil
		}
	}

	t.out.publish(ctx, drepo.TopicRawMarketData, tr.Symbol, tr)
	if t.refresher != nil {
		t.refresher.RefreshQuotePrice(ctx, tr.Symbol, tr.Price, time.Unix(tr.Timestamp, 0))
	}
	if t.metrics != nil {
		t.metrics.RecordLastPrice(tr.Symbol, tr.Price)
		t.metrics.RecordLatency("trade_process", time.Since(start).Seconds())
	}
	return nil
}

// Shutdown stops consumption and closes the stream.
func (t *TradeStream) Shutdown(ctx context.Context) error {
	if t.cancel != nil {
		t.cancel()
	}
	err := t.stream.Close()

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return err
}

func (t *TradeStream) recordError(kind string) {
	if t.metrics != nil {
		t.metrics.RecordError(kind)
	}
}

func validateTrade(t *models.Trade) error {
	if t == nil {
		return fmt.Errorf("trade nil")
	}
	if t.Symbol == "" {
		return fmt.Errorf("symbol empty")
	}
	if t.Timestamp <= 0 {
		return fmt.Errorf("timestamp invalid")
	}
	if !(t.Price > 0) || math.IsInf(t.Price, 0) {
		return fmt.Errorf("invalid price %v", t.Price)
	}
	if t.Volume < 0 || math.IsNaN(t.Volume) {
		return fmt.Errorf("invalid volume %v", t.Volume)
	}
	return nil
}
