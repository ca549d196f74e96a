package models

import (
	"math"
	"time"
)

// Quote is a point-in-time price snapshot for a symbol.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Volume        float64   `json:"volume"`
	Open          float64   `json:"open"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	PreviousClose float64   `json:"previous_close"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	Source        string    `json:"source"`
	Timestamp     time.Time `json:"timestamp"`
}

// Valid reports whether the quote carries a usable price.
func (q Quote) Valid() bool {
	return q.Price > 0 && !math.IsNaN(q.Price) && !math.IsInf(q.Price, 0)
}

// Trade is a single execution received from a live market stream.
type Trade struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Volume    float64 `json:"volume"`
	Timestamp int64   `json:"t"` // unix seconds
}
