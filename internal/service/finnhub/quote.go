package finnhub

import (
	"context"
	"fmt"
	"strings"
	"time"

	"QuantFuse/internal/domain/models"
	drepo "QuantFuse/internal/domain/repository"
	"QuantFuse/internal/service/upstream"
	xhttp "QuantFuse/pkg/http"
)

const (
	DefaultRESTURL = "https://finnhub.io/api/v1"
	providerName   = "finnhub"
)

// QuoteClient serves quotes from the Finnhub REST API.
type QuoteClient struct {
	baseURL string
	apiKey  string
	client  *xhttp.Client
}

func NewQuoteClient(apiKey, baseURL string, timeout time.Duration) *QuoteClient {
	if baseURL == "" {
		baseURL = DefaultRESTURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &QuoteClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

func (c *QuoteClient) Name() string { return providerName }

type quoteResp struct {
	C  float64 `json:"c"`
	D  float64 `json:"d"`
	DP float64 `json:"dp"`
	H  float64 `json:"h"`
	L  float64 `json:"l"`
	O  float64 `json:"o"`
	PC float64 `json:"pc"`
	T  int64   `json:"t"`
}

// GetQuote returns ErrNoData when Finnhub answers with a zero price, which is
// how it reports unknown symbols.
func (c *QuoteClient) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%s: api key not configured", providerName)
	}
	var r quoteResp
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/quote",
		QueryParams: map[string][]string{
			"symbol": {symbol},
			"token":  {c.apiKey},
		},
	}, &r)
	if err != nil {
		return nil, upstream.Classify(providerName, err)
	}

	q := &models.Quote{
		Symbol:        symbol,
		Price:         r.C,
		Open:          r.O,
		High:          r.H,
		Low:           r.L,
		PreviousClose: r.PC,
		Change:        r.D,
		ChangePercent: r.DP,
		Source:        providerName,
		Timestamp:     time.Now().UTC(),
	}
	if r.T > 0 {
		q.Timestamp = time.Unix(r.T, 0).UTC()
	}
	if !q.Valid() {
		return nil, fmt.Errorf("%s quote %s: %w", providerName, symbol, drepo.ErrNoData)
	}
	return q, nil
}

var _ drepo.QuoteProvider = (*QuoteClient)(nil)
