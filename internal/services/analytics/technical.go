package analytics

import (
	"fmt"

	"QuantFuse/internal/domain/models"
	domsvc "QuantFuse/internal/domain/service"
)

// RuleScorer scores an indicator snapshot with fixed threshold rules,
// starting from a neutral 50.
type RuleScorer struct{}

func NewRuleScorer() *RuleScorer { return &RuleScorer{} }

// Score applies the RSI, MACD, ADX and Bollinger rules in that order. price is
// the current price; Bollinger rules are skipped when it is not positive.
func (s *RuleScorer) Score(ind models.IndicatorSet, price float64) (float64, []string) {
	rsi := finiteOr(ind.RSI, models.NeutralRSI)
	macd := finiteOr(ind.MACD, 0)
	macdSignal := finiteOr(ind.MACDSignal, 0)
	adx := finiteOr(ind.ADX, models.NeutralADX)
	upper := finiteOr(ind.BollingerUpper, 0)
	lower := finiteOr(ind.BollingerLower, 0)
	price = finiteOr(price, 0)

	score := 50.0
	factors := make([]string, 0, 4)

	switch {
	case rsi < 30:
		score += 15
		factors = append(factors, "RSI oversold (<30) - bullish reversal signal")
	case rsi > 70:
		score -= 15
		factors = append(factors, "RSI overbought (>70) - bearish reversal signal")
	case rsi >= 40 && rsi <= 60:
		factors = append(factors, "RSI neutral zone")
	}

	switch {
	case macd > macdSignal:
		score += 10
		factors = append(factors, "MACD bullish crossover")
	case macd < macdSignal:
		score -= 10
		factors = append(factors, "MACD bearish crossover")
	}

	if adx > 25 {
		switch {
		case score > 50:
			score += 5
			factors = append(factors, fmt.Sprintf("Strong trend confirmed (ADX: %.1f)", adx))
		case score < 50:
			score -= 5
			factors = append(factors, fmt.Sprintf("Strong downtrend (ADX: %.1f)", adx))
		}
	} else {
		factors = append(factors, fmt.Sprintf("Weak trend (ADX: %.1f)", adx))
	}

	switch {
	case price > 0 && lower > 0 && price <= lower:
		score += 8
		factors = append(factors, "Price at lower Bollinger Band - potential bounce")
	case price > 0 && upper > 0 && price >= upper:
		score -= 8
		factors = append(factors, "Price at upper Bollinger Band - potential pullback")
	}

	return clamp(score, 0, 100), factors
}

var _ domsvc.TechnicalScorer = (*RuleScorer)(nil)
