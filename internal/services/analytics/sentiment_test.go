package analytics

import (
	"strings"
	"testing"

	"QuantFuse/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexicalScorerAnalyze(t *testing.T) {
	s := NewLexicalScorer()

	tests := []struct {
		name  string
		text  string
		score float64
		label string
		conf  float64
	}{
		{"two positive", "Analysts see strong growth ahead", 0.8, models.SentimentPositive, 0.9},
		{"no keywords", "Markets are open today", 0, models.SentimentNeutral, 0.5},
		{"three negative", "Stocks plunge amid recession fears and weak outlook", -0.8, models.SentimentNegative, 0.9},
		{"mixed leaning positive", "Strong gains but rising risk", 0.267, models.SentimentPositive, 0.633},
		{"balanced", "profit offset by loss", 0, models.SentimentNeutral, 0.5},
		{"case insensitive", "SURGE", 0.8, models.SentimentPositive, 0.9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Analyze(tt.text)
			assert.InDelta(t, tt.score, got.Score, 1e-9)
			assert.Equal(t, tt.label, got.Label)
			assert.InDelta(t, tt.conf, got.Confidence, 1e-9)
		})
	}
}

func TestLexicalScorerCountsPresenceNotFrequency(t *testing.T) {
	s := NewLexicalScorer()
	once := s.Analyze("surge")
	many := s.Analyze("surge surge surge and another surge")
	assert.Equal(t, once.Score, many.Score)
}

func TestLexicalScorerTruncatesText(t *testing.T) {
	s := NewLexicalScorer()
	text := strings.Repeat("é", 150)
	got := s.Analyze(text)
	assert.Equal(t, 100, len([]rune(got.Text)))
}

func TestScoreArticleBlendsUpstream(t *testing.T) {
	s := NewLexicalScorer()
	overall := 0.5
	item := models.NewsItem{Headline: "Stocks surge", ProviderSentiment: &overall}
	assert.InDelta(t, 0.62, s.ScoreArticle(item, ""), 1e-9)

	item.TickerSentiment = map[string]float64{"AAPL": -0.5}
	assert.InDelta(t, 0.02, s.ScoreArticle(item, "AAPL"), 1e-9)

	plain := models.NewsItem{Headline: "Stocks surge"}
	assert.InDelta(t, 0.8, s.ScoreArticle(plain, "AAPL"), 1e-9)
}

func TestAggregate(t *testing.T) {
	s := NewLexicalScorer()

	score, factors := s.Aggregate("AAPL", nil)
	assert.Equal(t, 50.0, score)
	assert.Equal(t, []string{"No sentiment data available"}, factors)

	items := []models.NewsItem{
		{Headline: "Quarterly call scheduled", TickerSentiment: map[string]float64{"AAPL": 0.4}},
		{Headline: "Board meets on Tuesday", TickerSentiment: map[string]float64{"AAPL": 0.2, "MSFT": -0.3}},
		{Headline: "Unrelated", TickerSentiment: map[string]float64{"MSFT": 0.9}},
	}
	score, factors = s.Aggregate("AAPL", items)
	assert.InDelta(t, 65.0, score, 1e-9)
	require.Len(t, factors, 2)
	assert.Equal(t, "Moderately bullish sentiment (0.30)", factors[0])
	assert.Equal(t, "Based on 2 recent articles", factors[1])
}

func TestTickerScoreFallsBackToHeadline(t *testing.T) {
	s := NewLexicalScorer()
	v, ok := s.TickerScore(models.NewsItem{Headline: "Shares plunge after profit warning"}, "AAPL")
	require.True(t, ok)
	assert.InDelta(t, -0.267, v, 1e-9)

	overall := 0.3
	_, ok = s.TickerScore(models.NewsItem{Headline: "x", ProviderSentiment: &overall}, "AAPL")
	assert.False(t, ok)
}

func TestBandLabel(t *testing.T) {
	cases := map[float64]string{
		0.9:    models.LabelBullish,
		0.35:   models.LabelBullish,
		0.2:    models.LabelSomewhatBullish,
		0.15:   models.LabelSomewhatBullish,
		0.149:  models.LabelNeutral,
		-0.15:  models.LabelNeutral,
		-0.2:   models.LabelSomewhatBearish,
		-0.35:  models.LabelSomewhatBearish,
		-0.351: models.LabelBearish,
	}
	for in, want := range cases {
		assert.Equal(t, want, BandLabel(in), "score %v", in)
	}
}

func TestDistribute(t *testing.T) {
	d := Distribute([]float64{0.15, -0.15, 0.1, 0.7})
	assert.Equal(t, models.SentimentDistribution{Bullish: 2, Neutral: 1, Bearish: 1}, d)
}

func TestSummarize(t *testing.T) {
	s := NewLexicalScorer()
	items := []models.NewsItem{
		{Headline: "a", TickerSentiment: map[string]float64{"AAPL": 0.5}},
		{Headline: "b", TickerSentiment: map[string]float64{"AAPL": -0.2}},
		{Headline: "c", TickerSentiment: map[string]float64{"AAPL": 0.0501}},
		{Headline: "Shares surge"},
	}
	agg := s.Summarize("AAPL", items)
	assert.Equal(t, "AAPL", agg.Ticker)
	assert.Equal(t, 4, agg.ArticleCount)
	assert.Equal(t, 0.288, agg.AvgSentiment)
	assert.Equal(t, models.SentimentDistribution{Bullish: 2, Neutral: 1, Bearish: 1}, agg.Distribution)
	assert.Equal(t, models.LabelSomewhatBullish, agg.OverallLabel)

	empty := s.Summarize("MSFT", nil)
	assert.Equal(t, 0, empty.ArticleCount)
	assert.Equal(t, models.LabelNeutral, empty.OverallLabel)
}
