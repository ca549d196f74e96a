package alphavantage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"QuantFuse/internal/domain/models"
	drepo "QuantFuse/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New("demo", srv.URL, 5*time.Second)
}

func TestGetQuote(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GLOBAL_QUOTE", r.URL.Query().Get("function"))
		assert.Equal(t, "IBM", r.URL.Query().Get("symbol"))
		assert.Equal(t, "demo", r.URL.Query().Get("apikey"))
		_, _ = w.Write([]byte(`{"Global Quote": {
			"01. symbol": "IBM", "02. open": "160.00", "03. high": "162.50", "04. low": "159.10",
			"05. price": "161.25", "06. volume": "3120000", "07. latest trading day": "2024-01-02",
			"08. previous close": "160.10", "09. change": "1.15", "10. change percent": "0.7183%"}}`))
	})

	q, err := c.GetQuote(context.Background(), "IBM")
	require.NoError(t, err)
	assert.Equal(t, "IBM", q.Symbol)
	assert.Equal(t, 161.25, q.Price)
	assert.Equal(t, 3120000.0, q.Volume)
	assert.Equal(t, 160.10, q.PreviousClose)
	assert.InDelta(t, 0.7183, q.ChangePercent, 1e-9)
	assert.Equal(t, "alphavantage", q.Source)
}

func TestGetQuoteNoData(t *testing.T) {
	for name, body := range map[string]string{
		"empty":      `{"Global Quote": {}}`,
		"zero price": `{"Global Quote": {"01. symbol": "XXX", "05. price": "0.0000"}}`,
		"error":      `{"Error Message": "Invalid API call."}`,
	} {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(body)) })
			_, err := c.GetQuote(context.Background(), "XXX")
			assert.ErrorIs(t, err, drepo.ErrNoData)
		})
	}
}

func TestRateLimitSignals(t *testing.T) {
	for name, h := range map[string]http.HandlerFunc{
		"note": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"Note": "Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute."}`))
		},
		"information": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"Information": "rate limit"}`))
		},
		"status 429": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		},
	} {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, h)
			_, err := c.GetQuote(context.Background(), "IBM")
			assert.ErrorIs(t, err, drepo.ErrRateLimited)
		})
	}
}

func TestServerErrorIsPlainFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	_, err := c.GetQuote(context.Background(), "IBM")
	require.Error(t, err)
	assert.NotErrorIs(t, err, drepo.ErrRateLimited)
	assert.NotErrorIs(t, err, drepo.ErrNoData)
}

func TestTimeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.GetQuote(ctx, "IBM")
	assert.ErrorIs(t, err, drepo.ErrTimeout)
}

func TestMissingAPIKey(t *testing.T) {
	c := New("", "http://127.0.0.1:1", time.Second)
	_, err := c.GetQuote(context.Background(), "IBM")
	assert.ErrorContains(t, err, "api key")
}

func TestGetIndicatorPicksLatestPoint(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "MACD", q.Get("function"))
		assert.Equal(t, "daily", q.Get("interval"))
		assert.Equal(t, "close", q.Get("series_type"))
		assert.Empty(t, q.Get("time_period"))
		_, _ = w.Write([]byte(`{
			"Meta Data": {"1: Symbol": "IBM"},
			"Technical Analysis: MACD": {
				"2024-01-01": {"MACD": "1.0", "MACD_Signal": "2.0", "MACD_Hist": "-1.0"},
				"2024-01-02": {"MACD": "1.5", "MACD_Signal": "1.2", "MACD_Hist": "0.3"}
			}}`))
	})

	v, err := c.GetIndicator(context.Background(), "IBM", models.IndicatorMACD, models.DefaultIndicatorParams(models.IndicatorMACD))
	require.NoError(t, err)
	assert.Equal(t, 1.5, v[models.KeyMACD])
	assert.Equal(t, 1.2, v[models.KeyMACDSignal])
	assert.Equal(t, 0.3, v[models.KeyMACDHist])
}

func TestGetIndicatorSendsPeriod(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "14", r.URL.Query().Get("time_period"))
		assert.Empty(t, r.URL.Query().Get("series_type"))
		_, _ = w.Write([]byte(`{"Technical Analysis: ADX": {"2024-01-02": {"ADX": "31.4"}}}`))
	})
	v, err := c.GetIndicator(context.Background(), "IBM", models.IndicatorADX, models.DefaultIndicatorParams(models.IndicatorADX))
	require.NoError(t, err)
	assert.Equal(t, 31.4, v[models.KeyADX])
}

func TestGetIndicatorMissingSeries(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"Meta Data": {}}`))
	})
	_, err := c.GetIndicator(context.Background(), "IBM", models.IndicatorRSI, models.DefaultIndicatorParams(models.IndicatorRSI))
	assert.ErrorIs(t, err, drepo.ErrNoData)
}

func TestGetIndicatorSkipsBlankFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"Technical Analysis: MACD": {"2024-01-02": {"MACD": "0.8", "MACD_Signal": "", "MACD_Hist": "None"}}}`))
	})
	v, err := c.GetIndicator(context.Background(), "IBM", models.IndicatorMACD, models.DefaultIndicatorParams(models.IndicatorMACD))
	require.NoError(t, err)
	assert.Equal(t, models.IndicatorValue{models.KeyMACD: 0.8}, v)
}

func TestGetIndicatorBlankLatestPointIsNoData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"Technical Analysis: RSI": {"2024-01-02": {"RSI": ""}}}`))
	})
	_, err := c.GetIndicator(context.Background(), "IBM", models.IndicatorRSI, models.DefaultIndicatorParams(models.IndicatorRSI))
	assert.ErrorIs(t, err, drepo.ErrNoData)
}

func TestParseNumber(t *testing.T) {
	v, err := parseNumber(" 1.25% ")
	require.NoError(t, err)
	assert.Equal(t, 1.25, v)

	for _, s := range []string{"", "  ", "-", "None"} {
		_, err := parseNumber(s)
		assert.ErrorIs(t, err, errMissingValue, "input %q", s)
	}

	_, err = parseNumber("abc")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, errMissingValue)
}

func TestGetSentimentFeed(t *testing.T) {
	long := strings.Repeat("x", 600)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "NEWS_SENTIMENT", q.Get("function"))
		assert.Equal(t, "AAPL,NVDA", q.Get("tickers"))
		assert.Equal(t, "technology", q.Get("topics"))
		assert.Equal(t, "10", q.Get("limit"))
		_, _ = w.Write([]byte(`{"items": "1", "feed": [{
			"title": "Apple shares rally on record iPhone sales",
			"url": "https://example.com/a",
			"time_published": "20231215T143000",
			"summary": "` + long + `",
			"source": "Reuters",
			"topics": [{"topic": "Technology", "relevance_score": "1.0"}],
			"overall_sentiment_score": 0.31,
			"ticker_sentiment": [
				{"ticker": "AAPL", "relevance_score": "0.81", "ticker_sentiment_score": "0.42"},
				{"ticker": "NVDA", "relevance_score": "0.10", "ticker_sentiment_score": "-0.05"}
			]}]}`))
	})

	items, err := c.GetSentimentFeed(context.Background(), []string{"AAPL", "NVDA"}, []string{"technology"}, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)

	n := items[0]
	assert.Equal(t, "Apple shares rally on record iPhone sales", n.Headline)
	assert.Equal(t, time.Date(2023, 12, 15, 14, 30, 0, 0, time.UTC), n.PublishedAt)
	assert.Len(t, n.Summary, 500)
	assert.Equal(t, []string{"AAPL", "NVDA"}, n.Symbols)
	assert.Equal(t, 0.81, n.RelevanceScore)
	require.NotNil(t, n.ProviderSentiment)
	assert.Equal(t, 0.31, *n.ProviderSentiment)
	assert.Equal(t, map[string]float64{"AAPL": 0.42, "NVDA": -0.05}, n.TickerSentiment)
	assert.Equal(t, []string{"Technology"}, n.Topics)
	assert.NotEmpty(t, n.ID)
}

func TestGetSentimentFeedEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"items": "0", "feed": []}`))
	})
	items, err := c.GetSentimentFeed(context.Background(), []string{"ZZZZ"}, nil, 5)
	require.NoError(t, err)
	assert.Empty(t, items)
}
