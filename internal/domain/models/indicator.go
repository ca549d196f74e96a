package models

import (
	"math"
	"time"
)

// IndicatorKind names a technical indicator a provider can compute.
type IndicatorKind string

const (
	IndicatorRSI    IndicatorKind = "RSI"
	IndicatorMACD   IndicatorKind = "MACD"
	IndicatorADX    IndicatorKind = "ADX"
	IndicatorBBands IndicatorKind = "BBANDS"
)

// AllIndicators is the set fetched for every IndicatorSet, in fetch order.
var AllIndicators = []IndicatorKind{IndicatorRSI, IndicatorMACD, IndicatorADX, IndicatorBBands}

// Neutral indicator readings used when a provider has nothing.
const (
	NeutralRSI = 50.0
	NeutralADX = 25.0
)

// IndicatorParams are the calculation parameters passed to a provider.
type IndicatorParams struct {
	Interval   string `json:"interval"`
	TimePeriod int    `json:"time_period,omitempty"`
	SeriesType string `json:"series_type,omitempty"`
}

// DefaultIndicatorParams returns the daily parameters used for each kind.
func DefaultIndicatorParams(kind IndicatorKind) IndicatorParams {
	p := IndicatorParams{Interval: "daily", SeriesType: "close"}
	switch kind {
	case IndicatorRSI, IndicatorADX:
		p.TimePeriod = 14
	case IndicatorBBands:
		p.TimePeriod = 20
	}
	if kind == IndicatorADX {
		p.SeriesType = ""
	}
	return p
}

// IndicatorValue holds the named outputs of one indicator reading,
// e.g. {"MACD": 1.2, "MACD_Signal": 0.9, "MACD_Hist": 0.3}.
type IndicatorValue map[string]float64

// Keys used inside IndicatorValue.
const (
	KeyRSI         = "RSI"
	KeyMACD        = "MACD"
	KeyMACDSignal  = "MACD_Signal"
	KeyMACDHist    = "MACD_Hist"
	KeyADX         = "ADX"
	KeyBBandUpper  = "Real Upper Band"
	KeyBBandMiddle = "Real Middle Band"
	KeyBBandLower  = "Real Lower Band"
)

// IndicatorSet is the full technical picture for a symbol.
type IndicatorSet struct {
	Symbol          string          `json:"symbol"`
	RSI             float64         `json:"rsi"`
	MACD            float64         `json:"macd"`
	MACDSignal      float64         `json:"macd_signal"`
	MACDHistogram   float64         `json:"macd_histogram"`
	BollingerUpper  float64         `json:"bollinger_upper"`
	BollingerMiddle float64         `json:"bollinger_middle"`
	BollingerLower  float64         `json:"bollinger_lower"`
	ADX             float64         `json:"adx"`
	Degraded        []IndicatorKind `json:"degraded,omitempty"`
	Timestamp       time.Time       `json:"timestamp"`
}

// NeutralIndicatorSet returns a set populated with neutral defaults.
func NeutralIndicatorSet(symbol string) IndicatorSet {
	return IndicatorSet{
		Symbol:    symbol,
		RSI:       NeutralRSI,
		ADX:       NeutralADX,
		Timestamp: time.Now().UTC(),
	}
}

// indicatorKeys lists the outputs each kind is expected to carry.
var indicatorKeys = map[IndicatorKind][]string{
	IndicatorRSI:    {KeyRSI},
	IndicatorMACD:   {KeyMACD, KeyMACDSignal, KeyMACDHist},
	IndicatorADX:    {KeyADX},
	IndicatorBBands: {KeyBBandUpper, KeyBBandMiddle, KeyBBandLower},
}

// Usable reports whether v carries at least one finite output expected for
// kind. A reading that fails this is treated as no data.
func (v IndicatorValue) Usable(kind IndicatorKind) bool {
	for _, k := range indicatorKeys[kind] {
		if _, ok := v.lookup(k); ok {
			return true
		}
	}
	return false
}

func (v IndicatorValue) lookup(key string) (float64, bool) {
	f, ok := v[key]
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Apply copies the outputs of one indicator reading into the set. Outputs
// that are absent or not finite leave the current value in place, so a set
// started from NeutralIndicatorSet keeps its neutral defaults.
func (s *IndicatorSet) Apply(kind IndicatorKind, v IndicatorValue) {
	set := func(dst *float64, key string) {
		if f, ok := v.lookup(key); ok {
			*dst = f
		}
	}
	switch kind {
	case IndicatorRSI:
		set(&s.RSI, KeyRSI)
	case IndicatorMACD:
		set(&s.MACD, KeyMACD)
		set(&s.MACDSignal, KeyMACDSignal)
		set(&s.MACDHistogram, KeyMACDHist)
	case IndicatorADX:
		set(&s.ADX, KeyADX)
	case IndicatorBBands:
		set(&s.BollingerUpper, KeyBBandUpper)
		set(&s.BollingerMiddle, KeyBBandMiddle)
		set(&s.BollingerLower, KeyBBandLower)
	}
}
