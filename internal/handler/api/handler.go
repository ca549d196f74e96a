// Package api exposes the market data, sentiment, insight and signal
// operations over Echo.
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"QuantFuse/internal/domain/models"
	"QuantFuse/internal/service/metrics"
	xhttp "QuantFuse/pkg/http"
	applogger "QuantFuse/pkg/logger"
	"QuantFuse/pkg/util"

	"github.com/labstack/echo/v4"
)

type Market interface {
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)
	GetIndicators(ctx context.Context, symbol string) (models.IndicatorSet, error)
	ProviderNames() map[string][]string
}

type Insights interface {
	Batch(ctx context.Context, symbols []string) ([]models.Insight, error)
}

type Signals interface {
	Generate(ctx context.Context, symbol string) (models.Signal, models.Insight, error)
}

type News interface {
	Feed(ctx context.Context, tickers, topics []string, limit int) ([]models.NewsItem, error)
	Aggregate(ctx context.Context, ticker string, limit int) (models.SentimentAggregate, error)
	Analyze(text string) models.SentimentResult
}

// StreamStatus reports the live trade feed; nil when streaming is off.
type StreamStatus interface {
	IsConnected() bool
}

type Options struct {
	Mode string
	// MaxSymbols caps a batch insight request; zero means no cap.
	MaxSymbols int
}

type Handler struct {
	market   Market
	insights Insights
	signals  Signals
	news     News
	stream   StreamStatus
	opts     Options
	log      *applogger.Logger
	started  time.Time
}

func NewHandler(opts Options, market Market, insights Insights, signals Signals, news News, stream StreamStatus, log *applogger.Logger) *Handler {
	metrics.Register()
	return &Handler{
		market:   market,
		insights: insights,
		signals:  signals,
		news:     news,
		stream:   stream,
		opts:     opts,
		log:      log.Component("api"),
		started:  time.Now(),
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)

	g := e.Group("/api/v1")
	g.GET("/quote/:symbol", h.Quote)
	g.GET("/indicators/:symbol", h.Indicators)
	g.GET("/news", h.News)
	g.GET("/sentiment/:ticker", h.SentimentAggregate)
	g.POST("/sentiment/analyze", h.AnalyzeSentiment)
	g.GET("/insights", h.Insights)
	g.GET("/signals/:symbol", h.Signal)
}

func (h *Handler) Health(c echo.Context) error {
	body := map[string]interface{}{
		"status":    "healthy",
		"mode":      h.opts.Mode,
		"providers": h.market.ProviderNames(),
		"uptime":    time.Since(h.started).Round(time.Second).String(),
		"timestamp": time.Now().UTC(),
	}
	if h.stream != nil {
		body["stream_connected"] = h.stream.IsConnected()
	}
	return xhttp.SuccessResponse(c, body)
}

func (h *Handler) Quote(c echo.Context) error {
	req := &models.QuoteRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	q, err := h.market.GetQuote(c.Request().Context(), req.Symbol)
	if err != nil {
		return h.fail(c, "quote", err, applogger.Symbol(req.Symbol))
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, q)
}

func (h *Handler) Indicators(c echo.Context) error {
	req := &models.IndicatorsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	set, err := h.market.GetIndicators(c.Request().Context(), req.Symbol)
	if err != nil {
		return h.fail(c, "indicators", err, applogger.Symbol(req.Symbol))
	}
	if len(set.Degraded) > 0 {
		metrics.DegradedResults.WithLabelValues("indicators").Inc()
	}
	return xhttp.SuccessResponse(c, set)
}

func (h *Handler) News(c echo.Context) error {
	req := &models.NewsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	items, err := h.news.Feed(c.Request().Context(), util.SplitSymbols(req.Tickers), util.SplitList(req.Topics), req.Limit)
	if err != nil {
		return h.fail(c, "news", err, applogger.String("tickers", req.Tickers))
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"articles":  items,
		"count":     len(items),
		"timestamp": time.Now().UTC(),
	})
}

func (h *Handler) SentimentAggregate(c echo.Context) error {
	req := &models.SentimentAggregateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	agg, err := h.news.Aggregate(c.Request().Context(), req.Ticker, req.Limit)
	if err != nil {
		return h.fail(c, "sentiment", err, applogger.String("ticker", req.Ticker))
	}
	return xhttp.SuccessResponse(c, agg)
}

func (h *Handler) AnalyzeSentiment(c echo.Context) error {
	req := &models.AnalyzeSentimentRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, h.news.Analyze(req.Text))
}

func (h *Handler) Insights(c echo.Context) error {
	req := &models.InsightsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	symbols := util.SplitSymbols(req.Symbols)
	if len(symbols) == 0 {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("symbols is required").WithParam("field", "symbols"))
	}
	if h.opts.MaxSymbols > 0 && len(symbols) > h.opts.MaxSymbols {
		symbols = symbols[:h.opts.MaxSymbols]
	}

	insights, err := h.insights.Batch(c.Request().Context(), symbols)
	if err != nil && len(insights) == 0 {
		return h.fail(c, "insights", err)
	}
	degraded := 0
	for _, in := range insights {
		if in.Degraded {
			degraded++
		}
	}
	if degraded > 0 {
		metrics.DegradedResults.WithLabelValues("insights").Add(float64(degraded))
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"insights":  insights,
		"count":     len(insights),
		"complete":  err == nil,
		"timestamp": time.Now().UTC(),
	})
}

func (h *Handler) Signal(c echo.Context) error {
	req := &models.SignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	sig, insight, err := h.signals.Generate(c.Request().Context(), req.Symbol)
	if err != nil {
		return h.fail(c, "signal", err, applogger.Symbol(req.Symbol))
	}
	if insight.Degraded {
		metrics.DegradedResults.WithLabelValues("signal").Inc()
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"signal":  sig,
		"insight": insight,
	})
}

func (h *Handler) fail(c echo.Context, endpoint string, err error, fields ...applogger.Field) error {
	appErr := toAppError(err)
	metrics.APIErrors.WithLabelValues(endpoint, strconv.Itoa(appErr.Status)).Inc()

	fields = append(fields, applogger.String("endpoint", endpoint), applogger.Error(err))
	if appErr.Status >= http.StatusInternalServerError {
		h.log.Error("request failed", fields...)
	} else {
		h.log.Warn("request failed", fields...)
	}
	return xhttp.AppErrorResponse(c, appErr)
}
