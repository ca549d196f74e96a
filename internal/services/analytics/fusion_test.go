package analytics

import (
	"testing"

	"QuantFuse/internal/domain/models"

	"github.com/stretchr/testify/assert"
)

func TestActionBoundaries(t *testing.T) {
	cases := []struct {
		fused float64
		want  models.Action
	}{
		{100, models.ActionStrongBuy},
		{80.0, models.ActionStrongBuy},
		{79.99, models.ActionBuy},
		{65.0, models.ActionBuy},
		{64.99, models.ActionHold},
		{45.0, models.ActionHold},
		{44.99, models.ActionSell},
		{30.0, models.ActionSell},
		{29.99, models.ActionStrongSell},
		{0, models.ActionStrongSell},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ActionFor(c.fused), "fused %v", c.fused)
	}
}

func TestRiskFor(t *testing.T) {
	assert.Equal(t, models.RiskHigh, RiskFor(50, 5))
	assert.Equal(t, models.RiskHigh, RiskFor(50, 40))
	assert.Equal(t, models.RiskMedium, RiskFor(60, 15))
	assert.Equal(t, models.RiskLow, RiskFor(75, 30))
	assert.Equal(t, models.RiskLow, RiskFor(30, 30))
	assert.Equal(t, models.RiskMedium, RiskFor(60, 30))
}

func TestFusedScoreBounds(t *testing.T) {
	f := NewWeightedFusion(0.6)
	for tech := 0.0; tech <= 100; tech += 12.5 {
		for sent := 0.0; sent <= 100; sent += 12.5 {
			got := f.FusedScore(tech, sent)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 100.0)
		}
	}
	assert.Equal(t, 100.0, f.FusedScore(150, 100))
	assert.Equal(t, 0.0, f.FusedScore(-10, 0))
}

func TestFusedScoreRounding(t *testing.T) {
	f := NewWeightedFusion(0.6)
	assert.Equal(t, 63.33, f.FusedScore(66.666, 58.33))
}

func TestFuse(t *testing.T) {
	f := NewWeightedFusion(0)

	in := f.Fuse("AAPL", 80, 70, 30)
	assert.Equal(t, 76.0, in.FusedScore)
	assert.Equal(t, models.ActionBuy, in.Action)
	assert.Equal(t, 76.0, in.Confidence)
	assert.Equal(t, models.RiskLow, in.RiskLevel)
	assert.Equal(t, "Bullish signals: Technical score 80/100, Sentiment 70/100", in.Reasoning)

	in = f.Fuse("TSLA", 12, 30, 30)
	assert.Equal(t, models.ActionStrongSell, in.Action)
	assert.Equal(t, "Bearish signals: Technical score 12/100, Sentiment 30/100", in.Reasoning)

	in = f.Fuse("MSFT", 50, 50, 25)
	assert.Equal(t, models.ActionHold, in.Action)
	assert.Equal(t, 50.0, in.Confidence)
	assert.Equal(t, models.RiskHigh, in.RiskLevel)
	assert.Equal(t, "Mixed signals: Technical 50/100, Sentiment 50/100 - Wait for confirmation", in.Reasoning)
}

func TestConfidenceCap(t *testing.T) {
	assert.Equal(t, 95.0, ConfidenceFor(100))
	assert.Equal(t, 95.0, ConfidenceFor(0))
	assert.Equal(t, 80.0, ConfidenceFor(80))
}
