package repository

import (
	"context"

	"QuantFuse/internal/domain/models"
)

// QuoteProvider returns the latest quote for a symbol.
// A provider that has nothing for the symbol returns ErrNoData.
type QuoteProvider interface {
	Name() string
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)
}

// IndicatorProvider computes one technical indicator for a symbol.
type IndicatorProvider interface {
	Name() string
	GetIndicator(ctx context.Context, symbol string, kind models.IndicatorKind, params models.IndicatorParams) (models.IndicatorValue, error)
}

// SentimentProvider returns recent news with upstream sentiment attached when available.
type SentimentProvider interface {
	Name() string
	GetSentimentFeed(ctx context.Context, tickers, topics []string, limit int) ([]models.NewsItem, error)
}

// MarketStream is a live trade feed.
type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Trade, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Publisher delivers messages to the event bus. Delivery is at-most-once:
// callers log failures and move on.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, msg any) error
	Close() error
}

type Metrics interface {
	RecordMessageSent(backend, topic string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
	RecordProviderCall(provider, op, result string)
	RecordCacheLookup(cache string, hit bool)
}
