package repository

// Topics on the event bus.
const (
	TopicRawMarketData   = "raw_market_data"
	TopicRawNewsArticles = "raw_news_articles"
	TopicSentimentScores = "sentiment_scores"
	TopicQuantInsights   = "quant_insights"
	TopicTradingSignals  = "trading_signals"
	TopicServiceLogs     = "service_logs"
)
