package usecase

import (
	"context"
	"strings"

	"QuantFuse/internal/domain/models"
	drepo "QuantFuse/internal/domain/repository"
	domsvc "QuantFuse/internal/domain/service"
	"QuantFuse/internal/services/analytics"
	applogger "QuantFuse/pkg/logger"
)

// NewsService serves scored news and sentiment summaries.
type NewsService struct {
	market    MarketData
	sentiment domsvc.SentimentScorer
	out       publisher
	log       *applogger.Logger
}

func NewNewsService(market MarketData, sentiment domsvc.SentimentScorer, pub drepo.Publisher, metrics drepo.Metrics, backend string, log *applogger.Logger) *NewsService {
	if log == nil {
		log = applogger.Nop()
	}
	log = log.Component("news")
	return &NewsService{
		market:    market,
		sentiment: sentiment,
		out:       newPublisher(pub, metrics, backend, log),
		log:       log,
	}
}

// sentimentRecord is what lands on the sentiment_scores topic per article.
type sentimentRecord struct {
	ArticleID string   `json:"article_id"`
	Headline  string   `json:"headline"`
	Score     float64  `json:"sentiment_score"`
	Label     string   `json:"sentiment_label"`
	Symbols   []string `json:"symbols"`
	Source    string   `json:"source"`
}

// Feed fetches articles and scores each one against the first requested
// ticker. Every article is published raw and its score separately.
func (s *NewsService) Feed(ctx context.Context, tickers, topics []string, limit int) ([]models.NewsItem, error) {
	items, err := s.market.GetSentimentFeed(ctx, tickers, topics, limit)
	if err != nil {
		return nil, err
	}

	var ticker string
	if len(tickers) > 0 {
		ticker = strings.ToUpper(tickers[0])
	}
	for i := range items {
		it := &items[i]
		it.SentimentScore = s.sentiment.ScoreArticle(*it, ticker)
		it.SentimentLabel = analytics.BandLabel(it.SentimentScore)

		key := it.ID
		if len(it.Symbols) > 0 {
			key = it.Symbols[0]
		}
		s.out.publish(ctx, drepo.TopicRawNewsArticles, key, it)
		s.out.publish(ctx, drepo.TopicSentimentScores, key, sentimentRecord{
			ArticleID: it.ID,
			Headline:  it.Headline,
			Score:     it.SentimentScore,
			Label:     it.SentimentLabel,
			Symbols:   it.Symbols,
			Source:    it.Source,
		})
	}
	return items, nil
}

// Aggregate summarises recent sentiment for ticker.
func (s *NewsService) Aggregate(ctx context.Context, ticker string, limit int) (models.SentimentAggregate, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	items, err := s.market.GetSentimentFeed(ctx, []string{ticker}, nil, limit)
	if err != nil {
		return models.SentimentAggregate{}, err
	}
	return s.sentiment.Summarize(ticker, items), nil
}

// Analyze scores free text with the lexical model.
func (s *NewsService) Analyze(text string) models.SentimentResult {
	return s.sentiment.Analyze(text)
}
