package alphavantage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	drepo "QuantFuse/internal/domain/repository"
	"QuantFuse/internal/service/upstream"
	xhttp "QuantFuse/pkg/http"
)

const (
	DefaultBaseURL = "https://www.alphavantage.co/query"
	providerName   = "alphavantage"
)

// Client talks to the Alpha Vantage query API. One client serves quotes,
// indicators and the news sentiment feed.
type Client struct {
	baseURL string
	apiKey  string
	client  *xhttp.Client
}

// New builds a client. An empty baseURL selects the public endpoint.
func New(apiKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

func (c *Client) Name() string { return providerName }

// throttle and error frames share the 200 status with real payloads
type statusProbe struct {
	Note         string `json:"Note"`
	Information  string `json:"Information"`
	ErrorMessage string `json:"Error Message"`
}

// query calls one API function and decodes the JSON body into dest.
func (c *Client) query(ctx context.Context, function string, params map[string]string, dest any) error {
	if c.apiKey == "" {
		return fmt.Errorf("%s: api key not configured", providerName)
	}
	qp := map[string][]string{
		"function": {function},
		"apikey":   {c.apiKey},
	}
	for k, v := range params {
		if v != "" {
			qp[k] = []string{v}
		}
	}

	var body []byte
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL,
		QueryParams: qp,
	}, &body)
	if err != nil {
		return upstream.Classify(providerName, err)
	}

	var probe statusProbe
	if err := json.Unmarshal(body, &probe); err != nil {
		return fmt.Errorf("%s %s: decode: %w", providerName, function, err)
	}
	switch {
	case probe.Note != "" || probe.Information != "":
		return fmt.Errorf("%s %s: %w", providerName, function, drepo.ErrRateLimited)
	case probe.ErrorMessage != "":
		return fmt.Errorf("%s %s: %s: %w", providerName, function, probe.ErrorMessage, drepo.ErrNoData)
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("%s %s: decode: %w", providerName, function, err)
	}
	return nil
}

// errMissingValue marks an empty or placeholder field. Callers skip the field
// rather than reading it as zero.
var errMissingValue = errors.New("missing value")

// parseNumber reads the string-encoded numbers used throughout the API.
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" || s == "-" || strings.EqualFold(s, "None") {
		return 0, errMissingValue
	}
	return strconv.ParseFloat(s, 64)
}

var (
	_ drepo.QuoteProvider     = (*Client)(nil)
	_ drepo.IndicatorProvider = (*Client)(nil)
	_ drepo.SentimentProvider = (*Client)(nil)
)
