package models

import "time"

// Signal is a bounded trade plan derived from an insight.
type Signal struct {
	ID              string    `json:"id"`
	Symbol          string    `json:"symbol"`
	Action          Action    `json:"action"`
	EntryPrice      float64   `json:"entry_price"`
	StopLoss        float64   `json:"stop_loss"`
	TakeProfit      float64   `json:"take_profit"`
	PositionSizePct float64   `json:"position_size_pct"`
	Confidence      float64   `json:"confidence"`
	RiskRewardRatio float64   `json:"risk_reward_ratio"`
	Reasoning       string    `json:"reasoning,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// Actionable reports whether the signal asks for a non-zero position.
func (s Signal) Actionable() bool { return s.PositionSizePct > 0 }
