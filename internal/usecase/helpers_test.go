package usecase

import (
	"context"
	"sync"

	"QuantFuse/internal/domain/models"
	drepo "QuantFuse/internal/domain/repository"
	"QuantFuse/internal/service/ratelimit"
	"QuantFuse/internal/services/analytics"
)

type fakeMarket struct {
	quote      func(ctx context.Context, symbol string) (*models.Quote, error)
	indicators func(ctx context.Context, symbol string) (models.IndicatorSet, error)
	feed       func(ctx context.Context, tickers []string) ([]models.NewsItem, error)

	mu        sync.Mutex
	feedLimit int
}

func (f *fakeMarket) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	if f.quote == nil {
		return nil, drepo.ErrNotFound
	}
	return f.quote(ctx, symbol)
}

func (f *fakeMarket) GetIndicators(ctx context.Context, symbol string) (models.IndicatorSet, error) {
	if f.indicators == nil {
		return models.IndicatorSet{}, drepo.ErrNotFound
	}
	return f.indicators(ctx, symbol)
}

func (f *fakeMarket) GetSentimentFeed(ctx context.Context, tickers, _ []string, limit int) ([]models.NewsItem, error) {
	f.mu.Lock()
	f.feedLimit = limit
	f.mu.Unlock()
	if f.feed == nil {
		return nil, drepo.ErrNotFound
	}
	return f.feed(ctx, tickers)
}

func quoteOf(price float64) func(context.Context, string) (*models.Quote, error) {
	return func(_ context.Context, s string) (*models.Quote, error) {
		return &models.Quote{Symbol: s, Price: price}, nil
	}
}

// bullishSet scores 88 technically at a price of 95.
func bullishSet(_ context.Context, symbol string) (models.IndicatorSet, error) {
	return models.IndicatorSet{
		Symbol: symbol, RSI: 25, MACD: 1, MACDSignal: 0.5, ADX: 30,
		BollingerUpper: 110, BollingerMiddle: 103, BollingerLower: 96,
	}, nil
}

func positiveFeed(_ context.Context, tickers []string) ([]models.NewsItem, error) {
	t := tickers[0]
	return []models.NewsItem{
		{ID: "1", Headline: "x", Symbols: []string{t}, TickerSentiment: map[string]float64{t: 0.6}},
		{ID: "2", Headline: "y", Symbols: []string{t}, TickerSentiment: map[string]float64{t: 0.4}},
	}, nil
}

func newInsights(m MarketData, pub drepo.Publisher, cfg InsightConfig) *InsightService {
	return NewInsightService(cfg, m,
		analytics.NewRuleScorer(), analytics.NewLexicalScorer(), analytics.NewWeightedFusion(0.6),
		ratelimit.New(), pub, nil, "memory", nil)
}
