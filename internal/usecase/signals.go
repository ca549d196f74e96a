package usecase

import (
	"context"
	"strings"

	"QuantFuse/internal/domain/models"
	drepo "QuantFuse/internal/domain/repository"
	domsvc "QuantFuse/internal/domain/service"
	applogger "QuantFuse/pkg/logger"
)

type SignalConfig struct {
	// PublishHold also publishes HOLD signals, which carry no position.
	PublishHold bool
}

// SignalService derives a trade plan from the current insight for a symbol.
type SignalService struct {
	cfg      SignalConfig
	market   MarketData
	insights *InsightService
	gen      domsvc.SignalGenerator
	out      publisher
	log      *applogger.Logger
}

func NewSignalService(cfg SignalConfig, market MarketData, insights *InsightService, gen domsvc.SignalGenerator, pub drepo.Publisher, metrics drepo.Metrics, backend string, log *applogger.Logger) *SignalService {
	if log == nil {
		log = applogger.Nop()
	}
	log = log.Component("signals")
	return &SignalService{
		cfg:      cfg,
		market:   market,
		insights: insights,
		gen:      gen,
		out:      newPublisher(pub, metrics, backend, log),
		log:      log,
	}
}

// Generate returns a signal for symbol. Upstream failures never surface:
// a missing quote falls back to the default entry price and a failed insight
// degrades to HOLD. Only cancellation of ctx is returned as an error.
func (s *SignalService) Generate(ctx context.Context, symbol string) (models.Signal, models.Insight, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	var price float64
	if q, err := s.market.GetQuote(ctx, symbol); err == nil {
		price = q.Price
	} else if ctxErr := ctx.Err(); ctxErr != nil {
		return models.Signal{}, models.Insight{}, ctxErr
	} else {
		s.log.Warn("quote unavailable, using default entry price", applogger.Symbol(symbol), applogger.Error(err))
	}

	insight, err := s.insights.GenerateOrDegrade(ctx, symbol)
	if err != nil {
		return models.Signal{}, models.Insight{}, err
	}

	sig := s.gen.Generate(insight, price)
	if sig.Actionable() || s.cfg.PublishHold {
		s.out.publish(ctx, drepo.TopicTradingSignals, symbol, sig)
	}
	return sig, insight, nil
}
