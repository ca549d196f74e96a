package models

import "time"

// NewsItem is one article from a sentiment feed.
type NewsItem struct {
	ID             string    `json:"id"`
	Headline       string    `json:"headline"`
	Summary        string    `json:"summary"`
	Source         string    `json:"source"`
	URL            string    `json:"url"`
	PublishedAt    time.Time `json:"published_at"`
	Symbols        []string  `json:"symbols"`
	SentimentScore float64   `json:"sentiment_score"`
	SentimentLabel string    `json:"sentiment_label"`
	RelevanceScore float64   `json:"relevance_score"`
	BannerImage    string    `json:"banner_image,omitempty"`
	Topics         []string  `json:"topics,omitempty"`

	// Scores reported by the upstream provider, if it has any.
	ProviderSentiment *float64           `json:"provider_sentiment,omitempty"`
	TickerSentiment   map[string]float64 `json:"ticker_sentiment,omitempty"`
}

// ExternalScore returns the upstream score for ticker, falling back to the
// overall article score. ok is false when the provider reported neither.
func (n NewsItem) ExternalScore(ticker string) (float64, bool) {
	if ticker != "" {
		if s, ok := n.TickerSentiment[ticker]; ok {
			return s, true
		}
	}
	if n.ProviderSentiment != nil {
		return *n.ProviderSentiment, true
	}
	return 0, false
}

// CloneNews deep-copies a feed so cached slices are never shared.
func CloneNews(in []NewsItem) []NewsItem {
	if in == nil {
		return nil
	}
	out := make([]NewsItem, len(in))
	for i, n := range in {
		c := n
		if n.Symbols != nil {
			c.Symbols = append([]string(nil), n.Symbols...)
		}
		if n.Topics != nil {
			c.Topics = append([]string(nil), n.Topics...)
		}
		if n.ProviderSentiment != nil {
			v := *n.ProviderSentiment
			c.ProviderSentiment = &v
		}
		if n.TickerSentiment != nil {
			c.TickerSentiment = make(map[string]float64, len(n.TickerSentiment))
			for k, v := range n.TickerSentiment {
				c.TickerSentiment[k] = v
			}
		}
		out[i] = c
	}
	return out
}

// Sentiment labels for free-text scoring.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// Five-band labels for articles and aggregates.
const (
	LabelBullish         = "Bullish"
	LabelSomewhatBullish = "Somewhat-Bullish"
	LabelNeutral         = "Neutral"
	LabelSomewhatBearish = "Somewhat-Bearish"
	LabelBearish         = "Bearish"
)

// SentimentResult is the lexical score of a piece of text.
type SentimentResult struct {
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// SentimentDistribution counts articles per sentiment bucket.
type SentimentDistribution struct {
	Bullish int `json:"bullish"`
	Neutral int `json:"neutral"`
	Bearish int `json:"bearish"`
}

// SentimentAggregate summarises recent sentiment for one ticker.
type SentimentAggregate struct {
	Ticker       string                `json:"ticker"`
	AvgSentiment float64               `json:"avg_sentiment"`
	ArticleCount int                   `json:"article_count"`
	Distribution SentimentDistribution `json:"sentiment_distribution"`
	OverallLabel string                `json:"overall_sentiment"`
	Timestamp    time.Time             `json:"timestamp"`
}
