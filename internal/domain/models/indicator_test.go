package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyKeepsNeutralForMissingOutputs(t *testing.T) {
	set := NeutralIndicatorSet("AAPL")

	set.Apply(IndicatorRSI, IndicatorValue{"Real RSI": 55})
	set.Apply(IndicatorADX, IndicatorValue{KeyADX: math.NaN()})
	set.Apply(IndicatorMACD, IndicatorValue{KeyMACD: 1.5, KeyMACDHist: math.Inf(-1)})

	assert.Equal(t, NeutralRSI, set.RSI)
	assert.Equal(t, NeutralADX, set.ADX)
	assert.Equal(t, 1.5, set.MACD)
	assert.Zero(t, set.MACDHistogram)

	set.Apply(IndicatorRSI, IndicatorValue{KeyRSI: 0})
	assert.Zero(t, set.RSI, "a present zero reading is still applied")
}

func TestIndicatorValueUsable(t *testing.T) {
	assert.True(t, IndicatorValue{KeyRSI: 41}.Usable(IndicatorRSI))
	assert.True(t, IndicatorValue{KeyBBandLower: 90}.Usable(IndicatorBBands))
	assert.False(t, IndicatorValue{"Real RSI": 55}.Usable(IndicatorRSI))
	assert.False(t, IndicatorValue{KeyADX: math.NaN()}.Usable(IndicatorADX))
	assert.False(t, IndicatorValue(nil).Usable(IndicatorMACD))
	assert.False(t, IndicatorValue{KeyRSI: 41}.Usable(IndicatorADX))
}
