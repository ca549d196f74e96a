package usecase

import (
	"context"
	"encoding/json"
	"testing"

	"QuantFuse/internal/domain/models"
	drepo "QuantFuse/internal/domain/repository"
	"QuantFuse/internal/service/simulation"
	"QuantFuse/internal/services/analytics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewsFeedScoresAndPublishes(t *testing.T) {
	overall := 0.5
	m := &fakeMarket{feed: func(context.Context, []string) ([]models.NewsItem, error) {
		return []models.NewsItem{
			{ID: "a", Headline: "Stocks surge", Symbols: []string{"AAPL"}, ProviderSentiment: &overall},
			{ID: "b", Headline: "Shares plunge on weak outlook"},
		}, nil
	}}
	pub := simulation.NewMemoryPublisher()
	svc := NewNewsService(m, analytics.NewLexicalScorer(), pub, nil, "memory", nil)

	items, err := svc.Feed(context.Background(), []string{"aapl"}, nil, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 0.62, items[0].SentimentScore)
	assert.Equal(t, models.LabelBullish, items[0].SentimentLabel)
	assert.Equal(t, -0.8, items[1].SentimentScore)
	assert.Equal(t, models.LabelBearish, items[1].SentimentLabel)
	assert.Equal(t, 10, m.feedLimit)

	raw := pub.Messages(drepo.TopicRawNewsArticles)
	require.Len(t, raw, 2)
	assert.Equal(t, "AAPL", raw[0].Key)
	assert.Equal(t, "b", raw[1].Key)

	scores := pub.Messages(drepo.TopicSentimentScores)
	require.Len(t, scores, 2)
	var rec map[string]any
	require.NoError(t, json.Unmarshal(scores[0].Value, &rec))
	assert.Equal(t, "a", rec["article_id"])
	assert.Equal(t, 0.62, rec["sentiment_score"])
}

func TestNewsFeedPropagatesGatewayError(t *testing.T) {
	svc := NewNewsService(&fakeMarket{}, analytics.NewLexicalScorer(), nil, nil, "memory", nil)
	_, err := svc.Feed(context.Background(), []string{"AAPL"}, nil, 10)
	assert.ErrorIs(t, err, drepo.ErrNotFound)
}

func TestNewsAggregate(t *testing.T) {
	m := &fakeMarket{feed: positiveFeed}
	svc := NewNewsService(m, analytics.NewLexicalScorer(), nil, nil, "memory", nil)

	agg, err := svc.Aggregate(context.Background(), " nvda ", 20)
	require.NoError(t, err)
	assert.Equal(t, "NVDA", agg.Ticker)
	assert.Equal(t, 0.5, agg.AvgSentiment)
	assert.Equal(t, 2, agg.ArticleCount)
	assert.Equal(t, models.LabelBullish, agg.OverallLabel)
}

func TestNewsAnalyze(t *testing.T) {
	svc := NewNewsService(&fakeMarket{}, analytics.NewLexicalScorer(), nil, nil, "memory", nil)
	res := svc.Analyze("Analysts see strong growth ahead")
	assert.Equal(t, 0.8, res.Score)
	assert.Equal(t, models.SentimentPositive, res.Label)
}
