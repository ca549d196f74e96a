package models

import "time"

// Action is the recommendation derived from a fused score.
type Action string

const (
	ActionStrongBuy  Action = "STRONG_BUY"
	ActionBuy        Action = "BUY"
	ActionHold       Action = "HOLD"
	ActionSell       Action = "SELL"
	ActionStrongSell Action = "STRONG_SELL"
)

// IsBuy reports whether the action opens a long position.
func (a Action) IsBuy() bool { return a == ActionStrongBuy || a == ActionBuy }

// IsSell reports whether the action opens a short position.
func (a Action) IsSell() bool { return a == ActionStrongSell || a == ActionSell }

// RiskLevel grades how uncertain an insight is.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Insight is the fused technical and sentiment view on one symbol.
type Insight struct {
	Symbol           string    `json:"symbol"`
	TechnicalScore   float64   `json:"technical_score"`
	SentimentScore   float64   `json:"sentiment_score"`
	FusedScore       float64   `json:"fused_score"`
	Action           Action    `json:"action"`
	Confidence       float64   `json:"confidence"`
	RiskLevel        RiskLevel `json:"risk_level"`
	Reasoning        string    `json:"reasoning"`
	TechnicalFactors []string  `json:"technical_factors"`
	SentimentFactors []string  `json:"sentiment_factors"`
	Degraded         bool      `json:"degraded,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
}

// DegradedInsight is the placeholder returned when a symbol's data could not be fetched.
func DegradedInsight(symbol string, cause error) Insight {
	return Insight{
		Symbol:           symbol,
		TechnicalScore:   50,
		SentimentScore:   50,
		FusedScore:       50,
		Action:           ActionHold,
		Confidence:       30,
		RiskLevel:        RiskHigh,
		Reasoning:        "Data unavailable: " + cause.Error(),
		TechnicalFactors: []string{"Data unavailable"},
		SentimentFactors: []string{"Data unavailable"},
		Degraded:         true,
		Timestamp:        time.Now().UTC(),
	}
}
