package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"QuantFuse/internal/domain/models"
	drepo "QuantFuse/internal/domain/repository"
	domsvc "QuantFuse/internal/domain/service"
	"QuantFuse/internal/service/ratelimit"
	applogger "QuantFuse/pkg/logger"
)

type InsightConfig struct {
	// Pacing is the minimum spacing between symbols of any batch. Zero
	// disables pacing.
	Pacing time.Duration
	// NewsLimit is how many recent articles feed the sentiment score.
	NewsLimit int
}

// InsightService computes fused insights from market data and news.
type InsightService struct {
	market    MarketData
	technical domsvc.TechnicalScorer
	sentiment domsvc.SentimentScorer
	fusion    domsvc.FusionEngine
	pacer     *ratelimit.Bucket
	newsLimit int
	out       publisher
	metrics   drepo.Metrics
	log       *applogger.Logger
}

func NewInsightService(
	cfg InsightConfig,
	market MarketData,
	technical domsvc.TechnicalScorer,
	sentiment domsvc.SentimentScorer,
	fusion domsvc.FusionEngine,
	limiter *ratelimit.Limiter,
	pub drepo.Publisher,
	metrics drepo.Metrics,
	backend string,
	log *applogger.Logger,
) *InsightService {
	if log == nil {
		log = applogger.Nop()
	}
	if limiter == nil {
		limiter = ratelimit.New()
	}
	if cfg.NewsLimit <= 0 {
		cfg.NewsLimit = 10
	}
	var rate float64
	if cfg.Pacing > 0 {
		rate = float64(time.Second) / float64(cfg.Pacing)
	}
	log = log.Component("insights")
	return &InsightService{
		market:    market,
		technical: technical,
		sentiment: sentiment,
		fusion:    fusion,
		pacer:     limiter.Bucket("insight_batch", rate, 1),
		newsLimit: cfg.NewsLimit,
		out:       newPublisher(pub, metrics, backend, log),
		metrics:   metrics,
		log:       log,
	}
}

// Generate builds the insight for one symbol. Only a failure to obtain any
// indicator is an error; a missing quote skips the Bollinger rules and a
// missing news feed yields neutral sentiment.
func (s *InsightService) Generate(ctx context.Context, symbol string) (models.Insight, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	start := time.Now()

	ind, err := s.market.GetIndicators(ctx, symbol)
	if err != nil {
		return models.Insight{}, fmt.Errorf("indicators %s: %w", symbol, err)
	}

	var price float64
	if q, err := s.market.GetQuote(ctx, symbol); err == nil {
		price = q.Price
	} else if ctxErr := ctx.Err(); ctxErr != nil {
		return models.Insight{}, ctxErr
	} else {
		s.log.Warn("quote unavailable, bollinger rules skipped", applogger.Symbol(symbol), applogger.Error(err))
	}

	items, err := s.market.GetSentimentFeed(ctx, []string{symbol}, nil, s.newsLimit)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return models.Insight{}, ctxErr
		}
		s.log.Warn("news unavailable, sentiment neutral", applogger.Symbol(symbol), applogger.Error(err))
		items = nil
	}

	techScore, techFactors := s.technical.Score(ind, price)
	sentScore, sentFactors := s.sentiment.Aggregate(symbol, items)

	insight := s.fusion.Fuse(symbol, techScore, sentScore, ind.ADX)
	insight.TechnicalFactors = techFactors
	insight.SentimentFactors = sentFactors
	if len(ind.Degraded) > 0 {
		insight.Degraded = true
		kinds := make([]string, len(ind.Degraded))
		for i, k := range ind.Degraded {
			kinds[i] = string(k)
		}
		insight.TechnicalFactors = append(insight.TechnicalFactors, "Neutral defaults used for "+strings.Join(kinds, ", "))
	}

	s.out.publish(ctx, drepo.TopicQuantInsights, symbol, insight)
	if s.metrics != nil {
		s.metrics.RecordLatency("insight", time.Since(start).Seconds())
	}
	s.log.Debug("insight generated",
		applogger.Symbol(symbol),
		applogger.String("action", string(insight.Action)),
		applogger.Float64("fused_score", insight.FusedScore),
		applogger.Duration("took", time.Since(start)),
	)
	return insight, nil
}

// GenerateOrDegrade never fails for upstream reasons: errors become a
// degraded insight. Only cancellation of ctx is returned.
func (s *InsightService) GenerateOrDegrade(ctx context.Context, symbol string) (models.Insight, error) {
	insight, err := s.Generate(ctx, symbol)
	if err == nil {
		return insight, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return models.Insight{}, ctxErr
	}
	s.log.Warn("insight degraded", applogger.Symbol(symbol), applogger.Error(err))
	if s.metrics != nil {
		s.metrics.RecordError("insight_degraded")
	}
	return models.DegradedInsight(strings.ToUpper(strings.TrimSpace(symbol)), err), nil
}

// Batch generates insights for symbols in input order, one at a time,
// spaced by the pacing bucket. A symbol that fails becomes a degraded
// insight. If ctx ends, the insights finished so far are returned with the
// context error.
func (s *InsightService) Batch(ctx context.Context, symbols []string) ([]models.Insight, error) {
	out := make([]models.Insight, 0, len(symbols))
	for _, sym := range symbols {
		if err := s.pacer.Wait(ctx); err != nil {
			return out, err
		}
		insight, err := s.GenerateOrDegrade(ctx, sym)
		if err != nil {
			return out, err
		}
		out = append(out, insight)
	}
	return out, nil
}
