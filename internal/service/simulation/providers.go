// Package simulation provides deterministic market data and an in-memory
// bus for running the platform without upstream credentials. It is only
// wired when the configured mode is "simulation".
package simulation

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"hash/fnv"
	"time"

	"QuantFuse/internal/domain/models"
	drepo "QuantFuse/internal/domain/repository"
)

const providerName = "simulation"

// Market serves quotes, indicators and news derived from a hash of the
// symbol, so repeated calls return the same figures.
type Market struct {
	now func() time.Time
}

func NewMarket() *Market {
	return &Market{now: func() time.Time { return time.Now().UTC() }}
}

func (m *Market) Name() string { return providerName }

// seed maps a symbol and salt onto [0,1).
func seed(symbol, salt string) float64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(symbol))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(salt))
	return float64(h.Sum64()%10_000) / 10_000
}

func (m *Market) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if symbol == "" {
		return nil, fmt.Errorf("%s: %w", providerName, drepo.ErrNoData)
	}
	price := 20 + seed(symbol, "price")*480
	prev := price * (0.97 + seed(symbol, "prev")*0.06)
	return &models.Quote{
		Symbol:        symbol,
		Price:         price,
		Volume:        float64(int(100_000 + seed(symbol, "vol")*9_900_000)),
		Open:          prev,
		High:          max(price, prev) * 1.01,
		Low:           min(price, prev) * 0.99,
		PreviousClose: prev,
		Change:        price - prev,
		ChangePercent: (price - prev) / prev * 100,
		Source:        providerName,
		Timestamp:     m.now(),
	}, nil
}

func (m *Market) GetIndicator(ctx context.Context, symbol string, kind models.IndicatorKind, _ models.IndicatorParams) (models.IndicatorValue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch kind {
	case models.IndicatorRSI:
		return models.IndicatorValue{models.KeyRSI: 15 + seed(symbol, "rsi")*70}, nil
	case models.IndicatorMACD:
		macd := seed(symbol, "macd")*4 - 2
		sig := seed(symbol, "macd_signal")*4 - 2
		return models.IndicatorValue{
			models.KeyMACD:       macd,
			models.KeyMACDSignal: sig,
			models.KeyMACDHist:   macd - sig,
		}, nil
	case models.IndicatorADX:
		return models.IndicatorValue{models.KeyADX: 10 + seed(symbol, "adx")*40}, nil
	case models.IndicatorBBands:
		q, _ := m.GetQuote(ctx, symbol)
		width := q.Price * (0.02 + seed(symbol, "bb")*0.06)
		mid := q.Price * (0.98 + seed(symbol, "bb_mid")*0.04)
		return models.IndicatorValue{
			models.KeyBBandUpper:  mid + width,
			models.KeyBBandMiddle: mid,
			models.KeyBBandLower:  mid - width,
		}, nil
	}
	return nil, fmt.Errorf("%s %s: %w", providerName, kind, drepo.ErrNoData)
}

var headlines = []string{
	"%s shares surge after strong quarterly earnings beat",
	"Analysts upgrade %s on record growth outlook",
	"%s faces lawsuit as regulators probe accounting",
	"%s holds annual shareholder meeting",
	"Investors weigh %s guidance amid recession concerns",
}

// GetSentimentFeed returns up to limit canned articles per ticker, each with
// a ticker score so both scoring paths are exercised.
func (m *Market) GetSentimentFeed(ctx context.Context, tickers, topics []string, limit int) ([]models.NewsItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(tickers) == 0 {
		tickers = []string{"SPY"}
	}
	if limit <= 0 {
		limit = 20
	}
	now := m.now()
	var out []models.NewsItem
	for _, t := range tickers {
		for i, tmpl := range headlines {
			if len(out) >= limit {
				return out, nil
			}
			title := fmt.Sprintf(tmpl, t)
			overall := seed(t, title)*1.2 - 0.6
			id := sha1.Sum([]byte(title))
			out = append(out, models.NewsItem{
				ID:                hex.EncodeToString(id[:8]),
				Headline:          title,
				Summary:           title + ".",
				Source:            "Simulated Wire",
				URL:               fmt.Sprintf("https://sim.local/%s/%d", t, i),
				PublishedAt:       now.Add(-time.Duration(i) * time.Hour),
				Symbols:           []string{t},
				RelevanceScore:    0.9,
				Topics:            topics,
				ProviderSentiment: &overall,
				TickerSentiment:   map[string]float64{t: overall},
			})
		}
	}
	return out, nil
}

var (
	_ drepo.QuoteProvider     = (*Market)(nil)
	_ drepo.IndicatorProvider = (*Market)(nil)
	_ drepo.SentimentProvider = (*Market)(nil)
)
