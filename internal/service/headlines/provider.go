// Package headlines is a sentiment provider backed by public RSS headline
// feeds. It carries no upstream sentiment, so articles are scored lexically.
package headlines

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"QuantFuse/internal/domain/models"
	drepo "QuantFuse/internal/domain/repository"
	"QuantFuse/internal/service/upstream"
	xhttp "QuantFuse/pkg/http"
	"QuantFuse/pkg/util"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	// DefaultFeedURL is a per-ticker feed; %s is replaced by the ticker.
	DefaultFeedURL = "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US"
	providerName   = "headlines"
)

type Provider struct {
	feedURL string
	client  *xhttp.Client
}

func New(feedURL string, timeout time.Duration) *Provider {
	if feedURL == "" {
		feedURL = DefaultFeedURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Provider{feedURL: feedURL, client: xhttp.NewClient(
		xhttp.WithTimeout(timeout),
		// Some feed hosts reject clients without a browser-like agent.
		xhttp.WithUserAgent("Mozilla/5.0 (compatible; quantfuse-headlines/1.0)"),
		xhttp.WithMaxBody(2<<20),
	)}
}

func (p *Provider) Name() string { return providerName }

// GetSentimentFeed reads one feed per ticker and merges the results up to
// limit. Topics are not supported by RSS feeds and are ignored. At least one
// ticker is required.
func (p *Provider) GetSentimentFeed(ctx context.Context, tickers, _ []string, limit int) ([]models.NewsItem, error) {
	if len(tickers) == 0 {
		return nil, fmt.Errorf("%s: ticker required: %w", providerName, drepo.ErrNoData)
	}
	if limit <= 0 {
		limit = 20
	}

	out := make([]models.NewsItem, 0, limit)
	seen := make(map[string]bool)
	for _, ticker := range tickers {
		items, err := p.fetch(ctx, ticker)
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			if seen[it.ID] {
				continue
			}
			seen[it.ID] = true
			out = append(out, it)
			if len(out) >= limit {
				return out, nil
			}
		}
	}
	return out, nil
}

func (p *Provider) fetch(ctx context.Context, ticker string) ([]models.NewsItem, error) {
	var body []byte
	err := p.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf(p.feedURL, ticker),
		Headers: map[string]string{
			"Accept": "application/rss+xml, application/xml, text/xml",
		},
	}, &body)
	if err != nil {
		return nil, upstream.Classify(providerName, err)
	}
	items, err := ParseFeed(body, ticker, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", providerName, ticker, err)
	}
	return items, nil
}

// ParseFeed extracts RSS items with goquery's lenient HTML parser.
func ParseFeed(body []byte, ticker string, now time.Time) ([]models.NewsItem, error) {
	body = bytes.ReplaceAll(body, []byte("<![CDATA["), nil)
	body = bytes.ReplaceAll(body, []byte("]]>"), nil)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	var items []models.NewsItem
	doc.Find("item").Each(func(_ int, s *goquery.Selection) {
		title := strings.TrimSpace(s.Find("title").First().Text())
		if title == "" {
			return
		}
		link := voidText(s, "link")
		if link == "" {
			link = strings.TrimSpace(s.Find("guid").First().Text())
		}
		source := voidText(s, "source")
		if source == "" {
			source = "RSS"
		}
		items = append(items, models.NewsItem{
			ID:             itemID(link, title),
			Headline:       title,
			Summary:        truncate(strings.TrimSpace(s.Find("description").First().Text()), 500),
			Source:         source,
			URL:            link,
			PublishedAt:    util.ParseTimeDefault(strings.TrimSpace(s.Find("pubdate").First().Text()), now),
			Symbols:        []string{strings.ToUpper(ticker)},
			RelevanceScore: 0.5,
		})
	})
	return items, nil
}

// voidText reads an element that HTML parsing treats as void (<link>,
// <source>): its content ends up in the following text node.
func voidText(s *goquery.Selection, tag string) string {
	el := s.Find(tag).First()
	if txt := strings.TrimSpace(el.Text()); txt != "" {
		return txt
	}
	if len(el.Nodes) > 0 {
		if n := el.Nodes[0].NextSibling; n != nil && n.Type == html.TextNode {
			return strings.TrimSpace(n.Data)
		}
	}
	return ""
}

func itemID(url, title string) string {
	h := sha1.Sum([]byte(url + "\x00" + title))
	return hex.EncodeToString(h[:8])
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var _ drepo.SentimentProvider = (*Provider)(nil)
