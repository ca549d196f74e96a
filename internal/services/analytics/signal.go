package analytics

import (
	"time"

	"QuantFuse/internal/domain/models"
	domsvc "QuantFuse/internal/domain/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultEntryPrice is used when no valid quote is available.
const DefaultEntryPrice = 100.0

type bracket struct {
	stop, target, size float64
}

var brackets = map[models.Action]bracket{
	models.ActionStrongBuy:  {stop: 0.95, target: 1.12, size: 5},
	models.ActionBuy:        {stop: 0.95, target: 1.12, size: 3},
	models.ActionStrongSell: {stop: 1.05, target: 0.88, size: 5},
	models.ActionSell:       {stop: 1.05, target: 0.88, size: 3},
	models.ActionHold:       {stop: 0.97, target: 1.05, size: 0},
}

// BracketGenerator places fixed-percentage stop-loss and take-profit levels
// around the entry price.
type BracketGenerator struct {
	newID func() string
}

func NewBracketGenerator() *BracketGenerator {
	return &BracketGenerator{newID: uuid.NewString}
}

// Generate builds a signal for insight at price. Non-positive prices fall back
// to DefaultEntryPrice so a signal is always produced.
func (g *BracketGenerator) Generate(insight models.Insight, price float64) models.Signal {
	price = finiteOr(price, 0)
	if price <= 0 {
		price = DefaultEntryPrice
	}
	b, ok := brackets[insight.Action]
	if !ok {
		b = brackets[models.ActionHold]
	}

	p := decimal.NewFromFloat(price)
	sl := p.Mul(decimal.NewFromFloat(b.stop))
	tp := p.Mul(decimal.NewFromFloat(b.target))

	rr := decimal.Zero
	if risk := p.Sub(sl).Abs(); !risk.IsZero() {
		rr = tp.Sub(p).Abs().Div(risk)
	}

	action := insight.Action
	if !ok {
		action = models.ActionHold
	}

	return models.Signal{
		ID:              g.newID(),
		Symbol:          insight.Symbol,
		Action:          action,
		EntryPrice:      p.Round(2).InexactFloat64(),
		StopLoss:        sl.Round(2).InexactFloat64(),
		TakeProfit:      tp.Round(2).InexactFloat64(),
		PositionSizePct: b.size,
		Confidence:      insight.Confidence,
		RiskRewardRatio: rr.Round(2).InexactFloat64(),
		Reasoning:       insight.Reasoning,
		Timestamp:       time.Now().UTC(),
	}
}

var _ domsvc.SignalGenerator = (*BracketGenerator)(nil)
