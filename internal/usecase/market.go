// Package usecase holds the application services: insight and signal
// generation, the news feed, and the live trade stream.
package usecase

import (
	"context"
	"time"

	"QuantFuse/internal/domain/models"
	drepo "QuantFuse/internal/domain/repository"
	applogger "QuantFuse/pkg/logger"
)

// MarketData is the read side of the provider gateway.
type MarketData interface {
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)
	GetIndicators(ctx context.Context, symbol string) (models.IndicatorSet, error)
	GetSentimentFeed(ctx context.Context, tickers, topics []string, limit int) ([]models.NewsItem, error)
}

// publisher wraps a Publisher with the at-most-once policy shared by every
// use case: failures are logged and counted, never returned.
type publisher struct {
	pub     drepo.Publisher
	metrics drepo.Metrics
	backend string
	log     *applogger.Logger
}

func newPublisher(pub drepo.Publisher, metrics drepo.Metrics, backend string, log *applogger.Logger) publisher {
	return publisher{pub: pub, metrics: metrics, backend: backend, log: log}
}

func (p publisher) publish(ctx context.Context, topic, key string, msg any) bool {
	if p.pub == nil {
		return false
	}
	start := time.Now()
	if err := p.pub.Publish(ctx, topic, key, msg); err != nil {
		p.log.Error("publish failed",
			applogger.Topic(topic),
			applogger.String("key", key),
			applogger.Error(err))
		if p.metrics != nil {
			p.metrics.RecordError("publish_" + topic)
		}
		return false
	}
	if p.metrics != nil {
		p.metrics.RecordMessageSent(p.backend, topic)
		p.metrics.RecordLatency("publish", time.Since(start).Seconds())
	}
	return true
}
