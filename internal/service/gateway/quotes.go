package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"QuantFuse/internal/domain/models"
	drepo "QuantFuse/internal/domain/repository"
)

func quoteKey(symbol string) string { return "quote:" + symbol }

// GetQuote returns the latest quote for symbol. A provider answering with a
// non-positive price counts as having no data and the next one is tried.
func (g *Gateway) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("quote: empty symbol: %w", drepo.ErrNotFound)
	}

	q, hit, err := g.quoteMemo.Get(ctx, quoteKey(symbol), func(ctx context.Context) (models.Quote, error) {
		return failover(ctx, g, "quote", symbol, g.cfg.QuoteTimeout, g.providers.Quotes,
			func(ctx context.Context, p drepo.QuoteProvider) (models.Quote, error) {
				q, err := p.GetQuote(ctx, symbol)
				if err != nil {
					return models.Quote{}, err
				}
				if q == nil || !q.Valid() {
					return models.Quote{}, fmt.Errorf("%s quote %s: %w", p.Name(), symbol, drepo.ErrNoData)
				}
				out := *q
				out.Symbol = symbol
				if out.Source == "" {
					out.Source = p.Name()
				}
				return out, nil
			})
	})
	g.recordLookup("quote", hit)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// RefreshQuotePrice moves the price of an already cached quote to a live
// trade price. Symbols without a live cached quote are left alone. The entry
// keeps its original age, so the full quote is still refetched once the
// quote TTL runs out however often trades arrive.
func (g *Gateway) RefreshQuotePrice(ctx context.Context, symbol string, price float64, at time.Time) bool {
	if price <= 0 {
		return false
	}
	key := quoteKey(strings.ToUpper(strings.TrimSpace(symbol)))
	return g.caches.Quotes.Update(ctx, key, func(q models.Quote) models.Quote {
		q.Price = price
		if q.PreviousClose > 0 {
			q.Change = price - q.PreviousClose
			q.ChangePercent = q.Change / q.PreviousClose * 100
		}
		q.High = max(q.High, price)
		if q.Low > 0 {
			q.Low = min(q.Low, price)
		}
		q.Timestamp = at.UTC()
		return q
	})
}
