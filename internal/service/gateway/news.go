package gateway

import (
	"context"
	"fmt"
	"strings"

	"QuantFuse/internal/domain/models"
	drepo "QuantFuse/internal/domain/repository"
	"QuantFuse/pkg/util"
)

const (
	MinNewsLimit = 1
	MaxNewsLimit = 50
)

// ClampNewsLimit bounds a requested article count to [1, 50].
func ClampNewsLimit(limit int) int {
	return max(MinNewsLimit, min(MaxNewsLimit, limit))
}

func newsKey(tickers, topics []string, limit int) string {
	return fmt.Sprintf("news:%s|%s|%d", strings.Join(tickers, ","), strings.Join(topics, ","), limit)
}

// GetSentimentFeed returns up to limit articles for tickers and topics. An
// empty feed is a valid answer and is cached like any other.
func (g *Gateway) GetSentimentFeed(ctx context.Context, tickers, topics []string, limit int) ([]models.NewsItem, error) {
	tickers = util.SplitSymbols(strings.Join(tickers, ","))
	topics = util.SplitList(strings.Join(topics, ","))
	limit = ClampNewsLimit(limit)
	subject := strings.Join(tickers, ",")

	items, hit, err := g.newsMemo.Get(ctx, newsKey(tickers, topics, limit), func(ctx context.Context) ([]models.NewsItem, error) {
		return failover(ctx, g, "news", subject, g.cfg.NewsTimeout, g.providers.Feeds,
			func(ctx context.Context, p drepo.SentimentProvider) ([]models.NewsItem, error) {
				items, err := p.GetSentimentFeed(ctx, tickers, topics, limit)
				if err != nil {
					return nil, err
				}
				if len(items) > limit {
					items = items[:limit]
				}
				if items == nil {
					items = []models.NewsItem{}
				}
				return items, nil
			})
	})
	g.recordLookup("news", hit)
	return items, err
}
