package di

import (
	"context"
	"fmt"
	"sort"
	"time"

	"QuantFuse/internal/domain/repository"
	domsvc "QuantFuse/internal/domain/service"
	"QuantFuse/internal/handler/api"
	internalrepo "QuantFuse/internal/repository"
	"QuantFuse/internal/service/alphavantage"
	icache "QuantFuse/internal/service/cache"
	"QuantFuse/internal/service/finnhub"
	"QuantFuse/internal/service/gateway"
	"QuantFuse/internal/service/headlines"
	"QuantFuse/internal/service/ratelimit"
	"QuantFuse/internal/service/simulation"
	"QuantFuse/internal/services/analytics"
	"QuantFuse/internal/usecase"
	"QuantFuse/pkg/config"
	xhttp "QuantFuse/pkg/http"
	pkgkafka "QuantFuse/pkg/kafka"
	applogger "QuantFuse/pkg/logger"
	"QuantFuse/pkg/metrics"
	"QuantFuse/pkg/server"
	"QuantFuse/pkg/tracing"
)

// Version is stamped on traces.
var Version = "dev"

// Backend names the publisher implementation, used as a metrics label.
type Backend string

// Services bundles the use cases for one-shot CLI commands.
type Services struct {
	Gateway  *gateway.Gateway
	Insights *usecase.InsightService
	Signals  *usecase.SignalService
	News     *usecase.NewsService
	Log      *applogger.Logger
}

// ProvideBackend reports which publisher the mode selects.
func ProvideBackend(cfg *config.Config) Backend {
	if cfg.Mode == config.ModeSimulation {
		return "memory"
	}
	return "kafka"
}

// ProvideTopicSpecs converts the configured topics into provisioning specs,
// sorted by name.
func ProvideTopicSpecs(cfg *config.Config) []pkgkafka.TopicSpec {
	specs := make([]pkgkafka.TopicSpec, 0, len(cfg.Kafka.Topics))
	for name, t := range cfg.Kafka.Topics {
		specs = append(specs, pkgkafka.TopicSpec{
			Name:              name,
			Partitions:        t.Partitions,
			ReplicationFactor: t.ReplicationFactor,
			Retention:         t.Retention,
		})
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })
	return specs
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithClientID(cfg.Kafka.ProducerName),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithDelivery(cfg.Kafka.RequiredAcks, cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvidePublisher returns the in-memory publisher in simulation mode and
// the Kafka publisher otherwise. Topics are provisioned first when
// kafka.ensure_topics is set.
func ProvidePublisher(cfg *config.Config) (repository.Publisher, func(), error) {
	if cfg.Mode == config.ModeSimulation {
		pub := simulation.NewMemoryPublisher()
		return pub, func() { _ = pub.Close() }, nil
	}

	if cfg.Kafka.EnsureTopics {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		err := pkgkafka.EnsureTopics(ctx, cfg.Kafka.Brokers, ProvideTopicSpecs(cfg), nil)
		cancel()
		if err != nil {
			return nil, nil, fmt.Errorf("ensure topics: %w", err)
		}
	}

	producer, err := ProvideKafkaProducer(cfg)
	if err != nil {
		return nil, nil, err
	}
	pub := internalrepo.NewKafkaPublisher(producer, cfg.Kafka.ProducerName)
	return pub, func() { _ = pub.Close() }, nil
}

// ProvideLogger builds the application logger. With logger.collect set,
// repeated errors (and warnings with logger.collect_warn) are aggregated and
// shipped to the service_logs topic.
func ProvideLogger(cfg *config.Config, pub repository.Publisher) (*applogger.Logger, func(), error) {
	l, err := applogger.New(&applogger.Config{
		Level:   cfg.Logger.Level,
		Format:  cfg.Logger.Format,
		Output:  cfg.Logger.Output,
		Service: cfg.Tracing.ServiceName,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	if cfg.Logger.Collect {
		levels := []string{"error"}
		if cfg.Logger.CollectWarn {
			levels = append(levels, "warn")
		}
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   cfg.Logger.CollectInterval,
			CountThreshold: cfg.Logger.CollectMax,
			Topic:          repository.TopicServiceLogs,
			Service:        cfg.Tracing.ServiceName,
			Levels:         levels,
			Publisher:      pub,
		})
	}
	return l, l.RemoveCollector, nil
}

// TracingShutdown flushes the tracer provider.
type TracingShutdown func(context.Context) error

// ProvideTracing installs the global tracer provider.
func ProvideTracing(cfg *config.Config) (TracingShutdown, func(), error) {
	shutdown, err := tracing.Init(context.Background(), tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Pretty:      cfg.Tracing.Pretty,
	}, Version)
	if err != nil {
		return nil, nil, fmt.Errorf("tracing: %w", err)
	}
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdown(ctx)
	}
	return shutdown, cleanup, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.NewDefault()
}

func ProvideLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvideCaches builds in-process caches, with a shared redis tier behind
// them when cache.redis.enabled is set.
func ProvideCaches(cfg *config.Config, log *applogger.Logger) (gateway.Caches, func()) {
	ttl := gateway.TTLs{
		Quote:     cfg.Cache.QuoteTTL,
		Indicator: cfg.Cache.IndicatorTTL,
		News:      cfg.Cache.NewsTTL,
	}
	if !cfg.Cache.Redis.Enabled {
		return gateway.NewMemoryCaches(ttl), func() {}
	}

	cli := icache.NewRedisClient(icache.RedisConfig{
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
	})
	l := log.Component("redis")
	onErr := func(op string, err error) {
		l.Warn("redis cache error", applogger.String("op", op), applogger.Error(err))
	}
	return gateway.NewTieredCaches(cli, cfg.Cache.Redis.Prefix, ttl, onErr), func() { _ = cli.Close() }
}

// ProvideProviders builds the ranked provider chains. Simulation mode uses
// the deterministic market for every capability.
func ProvideProviders(cfg *config.Config) (gateway.Providers, error) {
	if cfg.Mode == config.ModeSimulation {
		m := simulation.NewMarket()
		return gateway.Providers{
			Quotes:     []repository.QuoteProvider{m},
			Indicators: []repository.IndicatorProvider{m},
			Feeds:      []repository.SentimentProvider{m},
		}, nil
	}

	pc := cfg.Providers
	av := alphavantage.New(pc.AlphaVantage.APIKey, pc.AlphaVantage.BaseURL, pc.AlphaVantage.Timeout)
	fh := finnhub.NewQuoteClient(pc.Finnhub.APIKey, pc.Finnhub.RESTURL, pc.Finnhub.Timeout)
	hl := headlines.New(pc.Headlines.FeedURL, pc.Headlines.Timeout)

	var out gateway.Providers
	for _, name := range pc.Quotes {
		switch name {
		case "alphavantage":
			out.Quotes = append(out.Quotes, av)
		case "finnhub":
			out.Quotes = append(out.Quotes, fh)
		default:
			return out, fmt.Errorf("provider %s cannot serve quotes", name)
		}
	}
	for _, name := range pc.Indicators {
		switch name {
		case "alphavantage":
			out.Indicators = append(out.Indicators, av)
		default:
			return out, fmt.Errorf("provider %s cannot serve indicators", name)
		}
	}
	for _, name := range pc.News {
		switch name {
		case "alphavantage":
			out.Feeds = append(out.Feeds, av)
		case "headlines":
			out.Feeds = append(out.Feeds, hl)
		default:
			return out, fmt.Errorf("provider %s cannot serve news", name)
		}
	}
	return out, nil
}

// ProvideProviderLimits creates one shared bucket per provider with a
// configured rate.
func ProvideProviderLimits(cfg *config.Config, limiter *ratelimit.Limiter) gateway.Limits {
	limits := gateway.Limits{}
	for name, rl := range map[string]config.RateLimit{
		"alphavantage": cfg.Providers.AlphaVantage.Rate,
		"finnhub":      cfg.Providers.Finnhub.Rate,
		"headlines":    cfg.Providers.Headlines.Rate,
	} {
		if rl.PerSecond > 0 {
			limits[name] = limiter.Bucket("provider:"+name, rl.PerSecond, rl.Burst)
		}
	}
	return limits
}

func ProvideGateway(cfg *config.Config, providers gateway.Providers, caches gateway.Caches, limits gateway.Limits, m repository.Metrics, log *applogger.Logger) *gateway.Gateway {
	return gateway.New(gateway.Config{
		QuoteTimeout:     cfg.Gateway.QuoteTimeout,
		IndicatorTimeout: cfg.Gateway.IndicatorTimeout,
		NewsTimeout:      cfg.Gateway.NewsTimeout,
	}, providers, caches, limits, m, log)
}

func ProvideSentimentScorer() domsvc.SentimentScorer {
	return analytics.NewLexicalScorer()
}

func ProvideTechnicalScorer() domsvc.TechnicalScorer {
	return analytics.NewRuleScorer()
}

func ProvideFusionEngine(cfg *config.Config) domsvc.FusionEngine {
	return analytics.NewWeightedFusion(cfg.Insights.TechWeight)
}

func ProvideSignalGenerator() domsvc.SignalGenerator {
	return analytics.NewBracketGenerator()
}

func ProvideInsightService(
	cfg *config.Config,
	market usecase.MarketData,
	technical domsvc.TechnicalScorer,
	sentiment domsvc.SentimentScorer,
	fusion domsvc.FusionEngine,
	limiter *ratelimit.Limiter,
	pub repository.Publisher,
	m repository.Metrics,
	backend Backend,
	log *applogger.Logger,
) *usecase.InsightService {
	return usecase.NewInsightService(usecase.InsightConfig{
		Pacing:    cfg.Insights.Pacing,
		NewsLimit: cfg.Insights.NewsLimit,
	}, market, technical, sentiment, fusion, limiter, pub, m, string(backend), log)
}

func ProvideSignalService(
	cfg *config.Config,
	market usecase.MarketData,
	insights *usecase.InsightService,
	gen domsvc.SignalGenerator,
	pub repository.Publisher,
	m repository.Metrics,
	backend Backend,
	log *applogger.Logger,
) *usecase.SignalService {
	return usecase.NewSignalService(usecase.SignalConfig{PublishHold: cfg.Signals.PublishHold},
		market, insights, gen, pub, m, string(backend), log)
}

func ProvideNewsService(market usecase.MarketData, sentiment domsvc.SentimentScorer, pub repository.Publisher, m repository.Metrics, backend Backend, log *applogger.Logger) *usecase.NewsService {
	return usecase.NewNewsService(market, sentiment, pub, m, string(backend), log)
}

// ProvideTradeStream returns nil unless stream.enabled is set in live mode.
func ProvideTradeStream(
	cfg *config.Config,
	limiter *ratelimit.Limiter,
	gw *gateway.Gateway,
	pub repository.Publisher,
	m repository.Metrics,
	backend Backend,
	log *applogger.Logger,
) *usecase.TradeStream {
	if !cfg.Stream.Enabled || cfg.Mode == config.ModeSimulation {
		return nil
	}
	fh := cfg.Providers.Finnhub
	stream := finnhub.NewStream(fh.APIKey, fh.WebSocketURL, fh.Symbols, fh.ReconnectDelay, fh.PingInterval, log)
	return usecase.NewTradeStream(usecase.TradeStreamConfig{
		MaxRPS:           cfg.Stream.MaxRPS,
		ReconnectBackoff: cfg.Stream.ReconnectBackoff,
		MaxBackoff:       cfg.Stream.MaxBackoff,
	}, stream, limiter, gw, pub, m, string(backend), log)
}

func ProvideHandler(
	cfg *config.Config,
	gw *gateway.Gateway,
	insights *usecase.InsightService,
	signals *usecase.SignalService,
	news *usecase.NewsService,
	stream *usecase.TradeStream,
	log *applogger.Logger,
) *api.Handler {
	var status api.StreamStatus
	if stream != nil {
		status = stream
	}
	return api.NewHandler(api.Options{Mode: cfg.Mode, MaxSymbols: cfg.Insights.MaxSymbols},
		gw, insights, signals, news, status, log)
}

func ProvideHTTPServer(cfg *config.Config, h *api.Handler, limiter *ratelimit.Limiter, log *applogger.Logger) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithClientRateLimit(limiter, cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst),
		xhttp.WithCORSOrigins(cfg.Server.CORSOrigins),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetricsPath(cfg.Metrics.Path))
	} else {
		opts = append(opts, xhttp.WithMetricsPath(""))
	}
	return xhttp.NewServer(h, log, opts...)
}

// ProvideApp creates the application server.
func ProvideApp(cfg *config.Config, srv *xhttp.Server, stream *usecase.TradeStream, _ TracingShutdown, log *applogger.Logger) *server.App {
	var ts server.Stream
	if stream != nil {
		ts = stream
	}
	return server.New(server.Options{
		Mode:            cfg.Mode,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, srv, ts, log)
}

func ProvideServices(gw *gateway.Gateway, insights *usecase.InsightService, signals *usecase.SignalService, news *usecase.NewsService, _ TracingShutdown, log *applogger.Logger) *Services {
	return &Services{Gateway: gw, Insights: insights, Signals: signals, News: news, Log: log}
}
