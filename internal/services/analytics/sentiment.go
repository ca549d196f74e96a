package analytics

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"QuantFuse/internal/domain/models"
	domsvc "QuantFuse/internal/domain/service"
)

var positiveKeywords = []string{
	"surge", "growth", "profit", "bullish", "upgrade", "record", "beat",
	"strong", "soar", "rally", "gain", "boom", "breakthrough", "optimistic",
	"outperform", "exceed", "momentum", "upside", "buy", "accumulate",
}

var negativeKeywords = []string{
	"crash", "loss", "bearish", "downgrade", "miss", "weak", "decline",
	"concern", "fall", "drop", "plunge", "risk", "warning", "sell",
	"underperform", "cut", "layoff", "recession", "default", "bankruptcy",
}

const (
	lexicalScale      = 0.8
	labelThreshold    = 0.15
	externalWeight    = 0.6
	lexicalWeight     = 0.4
	maxTextLen        = 100
	bandStrong        = 0.35
	bandModerate      = 0.15
	sentimentMaxConf  = 0.95
	sentimentBaseConf = 0.5
)

// LexicalScorer is a keyword-presence sentiment model. It is stateless and safe
// for concurrent use.
type LexicalScorer struct{}

func NewLexicalScorer() *LexicalScorer { return &LexicalScorer{} }

// Analyze scores free text. Each keyword counts once no matter how often it occurs.
func (s *LexicalScorer) Analyze(text string) models.SentimentResult {
	lower := strings.ToLower(text)
	pos, neg := 0, 0
	for _, w := range positiveKeywords {
		if strings.Contains(lower, w) {
			pos++
		}
	}
	for _, w := range negativeKeywords {
		if strings.Contains(lower, w) {
			neg++
		}
	}

	res := models.SentimentResult{Text: truncateRunes(text, maxTextLen)}
	if pos == 0 && neg == 0 {
		res.Label = models.SentimentNeutral
		res.Confidence = sentimentBaseConf
		return res
	}

	total := pos + neg
	score := clamp(float64(pos-neg)/float64(max(total, 1))*lexicalScale, -1, 1)

	switch {
	case score > labelThreshold:
		res.Label = models.SentimentPositive
	case score < -labelThreshold:
		res.Label = models.SentimentNegative
	default:
		res.Label = models.SentimentNeutral
	}
	res.Score = round(score, 3)
	res.Confidence = round(min(sentimentMaxConf, sentimentBaseConf+abs(score)*0.5), 3)
	return res
}

// ScoreArticle blends the upstream score for ticker with the lexical score of
// the headline. Without an upstream score the lexical score is returned as-is.
func (s *LexicalScorer) ScoreArticle(item models.NewsItem, ticker string) float64 {
	lexical := s.Analyze(item.Headline).Score
	ext, ok := item.ExternalScore(ticker)
	if !ok {
		return lexical
	}
	return Blend(finiteOr(ext, 0), lexical)
}

// Blend combines an upstream score with a lexical one.
func Blend(external, lexical float64) float64 {
	return round(external*externalWeight+lexical*lexicalWeight, 3)
}

// TickerScore returns the score an article contributes to ticker's aggregate:
// the upstream ticker score when reported, the headline's lexical score when the
// provider reports no sentiment at all, and nothing otherwise.
func (s *LexicalScorer) TickerScore(item models.NewsItem, ticker string) (float64, bool) {
	if v, ok := item.TickerSentiment[ticker]; ok {
		return finiteOr(v, 0), true
	}
	if item.ProviderSentiment == nil && len(item.TickerSentiment) == 0 {
		return s.Analyze(item.Headline).Score, true
	}
	return 0, false
}

// TickerScores collects TickerScore over a feed.
func (s *LexicalScorer) TickerScores(ticker string, items []models.NewsItem) []float64 {
	scores := make([]float64, 0, len(items))
	for _, it := range items {
		if v, ok := s.TickerScore(it, ticker); ok {
			scores = append(scores, v)
		}
	}
	return scores
}

// Aggregate turns the recent articles for ticker into a 0..100 sentiment score.
func (s *LexicalScorer) Aggregate(ticker string, items []models.NewsItem) (float64, []string) {
	scores := s.TickerScores(ticker, items)
	if len(scores) == 0 {
		return 50, []string{"No sentiment data available"}
	}
	avg := Mean(scores)

	var factors []string
	switch {
	case avg >= bandStrong:
		factors = append(factors, fmt.Sprintf("Strong bullish sentiment (%.2f)", avg))
	case avg >= bandModerate:
		factors = append(factors, fmt.Sprintf("Moderately bullish sentiment (%.2f)", avg))
	case avg <= -bandStrong:
		factors = append(factors, fmt.Sprintf("Strong bearish sentiment (%.2f)", avg))
	case avg <= -bandModerate:
		factors = append(factors, fmt.Sprintf("Moderately bearish sentiment (%.2f)", avg))
	default:
		factors = append(factors, fmt.Sprintf("Neutral sentiment (%.2f)", avg))
	}
	factors = append(factors, fmt.Sprintf("Based on %d recent articles", len(scores)))

	return clamp(50+avg*50, 0, 100), factors
}

// Summarize builds the sentiment aggregate for ticker over a feed.
func (s *LexicalScorer) Summarize(ticker string, items []models.NewsItem) models.SentimentAggregate {
	scores := s.TickerScores(ticker, items)
	avg := round(Mean(scores), 3)
	return models.SentimentAggregate{
		Ticker:       ticker,
		AvgSentiment: avg,
		ArticleCount: len(scores),
		Distribution: Distribute(scores),
		OverallLabel: BandLabel(avg),
		Timestamp:    time.Now().UTC(),
	}
}

// Mean is the arithmetic mean, 0 for an empty slice.
func Mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	var sum float64
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}

// BandLabel maps a score in [-1, 1] to the five-band label.
func BandLabel(score float64) string {
	switch {
	case score >= bandStrong:
		return models.LabelBullish
	case score >= bandModerate:
		return models.LabelSomewhatBullish
	case score >= -bandModerate:
		return models.LabelNeutral
	case score >= -bandStrong:
		return models.LabelSomewhatBearish
	default:
		return models.LabelBearish
	}
}

// Distribute buckets per-article scores into bullish, neutral and bearish.
func Distribute(scores []float64) models.SentimentDistribution {
	var d models.SentimentDistribution
	for _, sc := range scores {
		switch {
		case sc >= bandModerate:
			d.Bullish++
		case sc <= -bandModerate:
			d.Bearish++
		default:
			d.Neutral++
		}
	}
	return d
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

var _ domsvc.SentimentScorer = (*LexicalScorer)(nil)
