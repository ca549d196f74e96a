package analytics

import (
	"math"

	"github.com/shopspring/decimal"
)

// round rounds half away from zero to the given number of decimal places.
func round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo + (hi-lo)/2
	}
	return math.Max(lo, math.Min(hi, v))
}

// finiteOr replaces NaN and ±Inf with def.
func finiteOr(v, def float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}
