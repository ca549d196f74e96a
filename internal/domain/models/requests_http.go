package models

// Requests for the HTTP endpoints. Defined in domain for consistency and reuse.

type QuoteRequest struct {
	Symbol string `param:"symbol" validate:"required,ticker"`
}

type IndicatorsRequest struct {
	Symbol string `param:"symbol" validate:"required,ticker"`
}

type NewsRequest struct {
	Tickers string `query:"tickers" json:"tickers" validate:"omitempty,tickers"`
	Topics  string `query:"topics" json:"topics"`
	// Clamped to [1,50] downstream rather than rejected.
	Limit int `query:"limit" json:"limit" default:"20"`
}

type SentimentAggregateRequest struct {
	Ticker string `param:"ticker" validate:"required,ticker"`
	Limit  int    `query:"limit" default:"50"`
}

type AnalyzeSentimentRequest struct {
	Text string `json:"text" validate:"required,max=10000"`
}

type InsightsRequest struct {
	Symbols string `query:"symbols" json:"symbols" default:"AAPL,TSLA,NVDA,MSFT,GOOGL" validate:"required,tickers"`
}

type SignalRequest struct {
	Symbol string `param:"symbol" validate:"required,ticker"`
}
