package analytics

import (
	"testing"

	"QuantFuse/internal/domain/models"

	"github.com/stretchr/testify/assert"
)

func TestBracketGenerator(t *testing.T) {
	g := NewBracketGenerator()

	tests := []struct {
		name   string
		action models.Action
		price  float64
		entry  float64
		stop   float64
		target float64
		size   float64
		rr     float64
	}{
		{"buy", models.ActionBuy, 100, 100, 95, 112, 3, 2.4},
		{"strong buy", models.ActionStrongBuy, 100, 100, 95, 112, 5, 2.4},
		{"sell", models.ActionSell, 200, 200, 210, 176, 3, 2.4},
		{"strong sell", models.ActionStrongSell, 50, 50, 52.5, 44, 5, 2.4},
		{"hold", models.ActionHold, 100, 100, 97, 105, 0, 1.67},
		{"missing price", models.ActionBuy, 0, 100, 95, 112, 3, 2.4},
		{"negative price", models.ActionBuy, -4, 100, 95, 112, 3, 2.4},
		{"rounds money", models.ActionBuy, 123.456, 123.46, 117.28, 138.27, 3, 2.4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := g.Generate(models.Insight{Symbol: "AAPL", Action: tt.action, Confidence: 76}, tt.price)
			assert.Equal(t, tt.action, sig.Action)
			assert.Equal(t, tt.entry, sig.EntryPrice)
			assert.Equal(t, tt.stop, sig.StopLoss)
			assert.Equal(t, tt.target, sig.TakeProfit)
			assert.Equal(t, tt.size, sig.PositionSizePct)
			assert.Equal(t, tt.rr, sig.RiskRewardRatio)
			assert.Equal(t, 76.0, sig.Confidence)
			assert.NotEmpty(t, sig.ID)
		})
	}
}

func TestBracketGeneratorHoldIsNotActionable(t *testing.T) {
	sig := NewBracketGenerator().Generate(models.Insight{Symbol: "X", Action: models.ActionHold}, 10)
	assert.False(t, sig.Actionable())
}
