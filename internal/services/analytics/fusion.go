package analytics

import (
	"fmt"
	"math"
	"time"

	"QuantFuse/internal/domain/models"
	domsvc "QuantFuse/internal/domain/service"
)

const defaultTechWeight = 0.6

// WeightedFusion blends technical and sentiment scores with a fixed weight.
type WeightedFusion struct {
	techWeight float64
}

// NewWeightedFusion returns a fusion engine; weights outside (0, 1] fall back to 0.6.
func NewWeightedFusion(techWeight float64) *WeightedFusion {
	if techWeight <= 0 || techWeight > 1 || math.IsNaN(techWeight) {
		techWeight = defaultTechWeight
	}
	return &WeightedFusion{techWeight: techWeight}
}

// FusedScore is the weighted average rounded to 2 decimals.
func (f *WeightedFusion) FusedScore(technical, sentiment float64) float64 {
	technical = clamp(finiteOr(technical, 50), 0, 100)
	sentiment = clamp(finiteOr(sentiment, 50), 0, 100)
	return round(technical*f.techWeight+sentiment*(1-f.techWeight), 2)
}

// ActionFor maps a fused score to an action, checked top-down.
func ActionFor(fused float64) models.Action {
	switch {
	case fused >= 80:
		return models.ActionStrongBuy
	case fused >= 65:
		return models.ActionBuy
	case fused >= 45:
		return models.ActionHold
	case fused >= 30:
		return models.ActionSell
	default:
		return models.ActionStrongSell
	}
}

// RiskFor grades risk from the fused score and trend strength.
func RiskFor(fused, adx float64) models.RiskLevel {
	adx = finiteOr(adx, models.NeutralADX)
	switch {
	case fused >= 45 && fused <= 55:
		return models.RiskHigh
	case adx < 20:
		return models.RiskMedium
	case fused >= 70 || fused <= 30:
		return models.RiskLow
	default:
		return models.RiskMedium
	}
}

// ConfidenceFor grows with distance from the neutral midpoint, capped at 95.
func ConfidenceFor(fused float64) float64 {
	return math.Min(95, math.Abs(fused-50)+50)
}

func reasoning(action models.Action, technical, sentiment float64) string {
	switch {
	case action.IsBuy():
		return fmt.Sprintf("Bullish signals: Technical score %.0f/100, Sentiment %.0f/100", technical, sentiment)
	case action.IsSell():
		return fmt.Sprintf("Bearish signals: Technical score %.0f/100, Sentiment %.0f/100", technical, sentiment)
	default:
		return fmt.Sprintf("Mixed signals: Technical %.0f/100, Sentiment %.0f/100 - Wait for confirmation", technical, sentiment)
	}
}

// Fuse builds an insight without factors; callers attach those.
func (f *WeightedFusion) Fuse(symbol string, technical, sentiment, adx float64) models.Insight {
	technical = clamp(finiteOr(technical, 50), 0, 100)
	sentiment = clamp(finiteOr(sentiment, 50), 0, 100)
	fused := f.FusedScore(technical, sentiment)
	action := ActionFor(fused)

	return models.Insight{
		Symbol:         symbol,
		TechnicalScore: technical,
		SentimentScore: sentiment,
		FusedScore:     fused,
		Action:         action,
		Confidence:     ConfidenceFor(fused),
		RiskLevel:      RiskFor(fused, adx),
		Reasoning:      reasoning(action, technical, sentiment),
		Timestamp:      time.Now().UTC(),
	}
}

var _ domsvc.FusionEngine = (*WeightedFusion)(nil)
