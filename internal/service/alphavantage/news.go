package alphavantage

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"QuantFuse/internal/domain/models"
	"QuantFuse/pkg/util"
)

const maxSummaryLen = 500

type newsResp struct {
	Feed []feedItem `json:"feed"`
}

type feedItem struct {
	Title                 string            `json:"title"`
	URL                   string            `json:"url"`
	TimePublished         string            `json:"time_published"`
	Summary               string            `json:"summary"`
	BannerImage           string            `json:"banner_image"`
	Source                string            `json:"source"`
	Topics                []feedTopic       `json:"topics"`
	OverallSentimentScore *float64          `json:"overall_sentiment_score"`
	TickerSentiment       []tickerSentiment `json:"ticker_sentiment"`
}

type feedTopic struct {
	Topic string `json:"topic"`
}

type tickerSentiment struct {
	Ticker         string `json:"ticker"`
	RelevanceScore string `json:"relevance_score"`
	SentimentScore string `json:"ticker_sentiment_score"`
}

// GetSentimentFeed fetches NEWS_SENTIMENT. An empty feed is a valid result.
func (c *Client) GetSentimentFeed(ctx context.Context, tickers, topics []string, limit int) ([]models.NewsItem, error) {
	var resp newsResp
	err := c.query(ctx, "NEWS_SENTIMENT", map[string]string{
		"tickers": strings.Join(tickers, ","),
		"topics":  strings.Join(topics, ","),
		"limit":   strconv.Itoa(limit),
		"sort":    "LATEST",
	}, &resp)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	items := make([]models.NewsItem, 0, len(resp.Feed))
	for _, f := range resp.Feed {
		items = append(items, f.toNewsItem(now))
	}
	return items, nil
}

func (f feedItem) toNewsItem(now time.Time) models.NewsItem {
	n := models.NewsItem{
		ID:                newsID(f.URL, f.Title),
		Headline:          f.Title,
		Summary:           truncate(f.Summary, maxSummaryLen),
		Source:            f.Source,
		URL:               f.URL,
		PublishedAt:       util.ParseTimeDefault(f.TimePublished, now),
		BannerImage:       f.BannerImage,
		RelevanceScore:    0.5,
		ProviderSentiment: f.OverallSentimentScore,
	}
	if n.Source == "" {
		n.Source = "Unknown"
	}
	for _, t := range f.Topics {
		if t.Topic != "" {
			n.Topics = append(n.Topics, t.Topic)
		}
	}
	for i, ts := range f.TickerSentiment {
		sym := strings.ToUpper(ts.Ticker)
		if sym == "" {
			continue
		}
		n.Symbols = append(n.Symbols, sym)
		if v, err := parseNumber(ts.SentimentScore); err == nil {
			if n.TickerSentiment == nil {
				n.TickerSentiment = make(map[string]float64, len(f.TickerSentiment))
			}
			n.TickerSentiment[sym] = v
		}
		if i == 0 {
			if r, err := parseNumber(ts.RelevanceScore); err == nil {
				n.RelevanceScore = r
			}
		}
	}
	if n.Symbols == nil {
		n.Symbols = []string{}
	}
	return n
}

// newsID is stable across fetches so downstream consumers can dedupe.
func newsID(url, title string) string {
	h := sha1.Sum([]byte(url + "\x00" + title))
	return hex.EncodeToString(h[:8])
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

