package service

import "QuantFuse/internal/domain/models"

// SentimentScorer scores text and news articles with a lexical heuristic.
type SentimentScorer interface {
	Analyze(text string) models.SentimentResult
	ScoreArticle(item models.NewsItem, ticker string) float64
	TickerScores(ticker string, items []models.NewsItem) []float64
	Aggregate(ticker string, items []models.NewsItem) (score float64, factors []string)
	Summarize(ticker string, items []models.NewsItem) models.SentimentAggregate
}

// TechnicalScorer maps an indicator snapshot to a 0..100 score.
type TechnicalScorer interface {
	Score(ind models.IndicatorSet, price float64) (score float64, factors []string)
}

// FusionEngine combines technical and sentiment scores into an insight.
type FusionEngine interface {
	Fuse(symbol string, technical, sentiment, adx float64) models.Insight
}

// SignalGenerator turns an insight into a bounded trade plan.
type SignalGenerator interface {
	Generate(insight models.Insight, price float64) models.Signal
}
