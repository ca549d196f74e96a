package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"time"

	"QuantFuse/pkg/util"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

const (
	ModeLive       = "live"
	ModeSimulation = "simulation"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Mode        string `yaml:"mode" default:"live"`

	Server struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"60s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		// Per-client request budget; zero disables limiting.
		RateLimitRPS   float64 `yaml:"rate_limit_rps" default:"20"`
		RateLimitBurst int     `yaml:"rate_limit_burst" default:"40"`
		// Browser origins allowed by CORS; empty disables it.
		CORSOrigins []string `yaml:"cors_origins" default:"[\"*\"]"`
	} `yaml:"server"`

	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`

	Logger struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
		// Aggregate repeated errors and ship them to the service_logs topic.
		Collect         bool          `yaml:"collect"`
		CollectInterval time.Duration `yaml:"collect_interval" default:"30s"`
		CollectMax      int           `yaml:"collect_max" default:"100"`
		CollectWarn     bool          `yaml:"collect_warn" default:"true"`
	} `yaml:"logger"`

	Tracing struct {
		Enabled     bool   `yaml:"enabled"`
		ServiceName string `yaml:"service_name" default:"quantfuse"`
		Pretty      bool   `yaml:"pretty"`
	} `yaml:"tracing"`

	Providers struct {
		// Ranked provider names per capability, first is tried first.
		Quotes     []string `yaml:"quotes" default:"[\"finnhub\",\"alphavantage\"]"`
		Indicators []string `yaml:"indicators" default:"[\"alphavantage\"]"`
		News       []string `yaml:"news" default:"[\"alphavantage\",\"headlines\"]"`

		AlphaVantage struct {
			APIKey  string        `yaml:"api_key"`
			BaseURL string        `yaml:"base_url" default:"https://www.alphavantage.co/query"`
			Timeout time.Duration `yaml:"timeout" default:"30s"`
			Rate    RateLimit     `yaml:"rate_limit"`
		} `yaml:"alphavantage"`

		Finnhub struct {
			APIKey         string        `yaml:"api_key"`
			RESTURL        string        `yaml:"rest_url" default:"https://finnhub.io/api/v1"`
			WebSocketURL   string        `yaml:"websocket_url" default:"wss://ws.finnhub.io"`
			Timeout        time.Duration `yaml:"timeout" default:"5s"`
			Rate           RateLimit     `yaml:"rate_limit"`
			Symbols        []string      `yaml:"symbols"`
			ReconnectDelay time.Duration `yaml:"reconnect_delay" default:"5s"`
			PingInterval   time.Duration `yaml:"ping_interval" default:"30s"`
		} `yaml:"finnhub"`

		Headlines struct {
			FeedURL string        `yaml:"feed_url" default:"https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US"`
			Timeout time.Duration `yaml:"timeout" default:"10s"`
			Rate    RateLimit     `yaml:"rate_limit"`
		} `yaml:"headlines"`
	} `yaml:"providers"`

	Gateway struct {
		QuoteTimeout     time.Duration `yaml:"quote_timeout" default:"5s"`
		IndicatorTimeout time.Duration `yaml:"indicator_timeout" default:"30s"`
		NewsTimeout      time.Duration `yaml:"news_timeout" default:"30s"`
	} `yaml:"gateway"`

	Cache struct {
		QuoteTTL     time.Duration `yaml:"quote_ttl" default:"30s"`
		IndicatorTTL time.Duration `yaml:"indicator_ttl" default:"300s"`
		NewsTTL      time.Duration `yaml:"news_ttl" default:"300s"`
		Redis        struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix" default:"quantfuse:"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	Insights struct {
		Pacing     time.Duration `yaml:"pacing" default:"1s"`
		NewsLimit  int           `yaml:"news_limit" default:"10"`
		MaxSymbols int           `yaml:"max_symbols" default:"5"`
		TechWeight float64       `yaml:"tech_weight" default:"0.6"`
	} `yaml:"insights"`

	Signals struct {
		PublishHold bool `yaml:"publish_hold"`
	} `yaml:"signals"`

	Stream struct {
		Enabled          bool          `yaml:"enabled"`
		MaxRPS           int           `yaml:"max_rps" default:"5"`
		ReconnectBackoff time.Duration `yaml:"reconnect_backoff" default:"1s"`
		MaxBackoff       time.Duration `yaml:"max_backoff" default:"30s"`
	} `yaml:"stream"`

	Kafka struct {
		Brokers      []string `yaml:"brokers" default:"[\"localhost:9092\"]"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"gzip"`
		ProducerName string   `yaml:"producer_name" default:"quant-platform"`
		// Create configured topics on startup.
		EnsureTopics bool `yaml:"ensure_topics"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"1s"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Topics map[string]Topic `yaml:"topics"`
	} `yaml:"kafka"`
}

// RateLimit is a token bucket budget. Zero PerSecond means unlimited.
type RateLimit struct {
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst" default:"1"`
}

// Topic is handed to topic provisioning as-is.
type Topic struct {
	Partitions        int           `yaml:"partitions" default:"3"`
	ReplicationFactor int           `yaml:"replication_factor" default:"1"`
	Retention         time.Duration `yaml:"retention" default:"24h"`
}

// DefaultTopics mirrors the platform's standard bus layout.
func DefaultTopics() map[string]Topic {
	day, week := 24*time.Hour, 7*24*time.Hour
	return map[string]Topic{
		"raw_market_data":   {Partitions: 6, ReplicationFactor: 3, Retention: day},
		"raw_news_articles": {Partitions: 3, ReplicationFactor: 3, Retention: week},
		"sentiment_scores":  {Partitions: 3, ReplicationFactor: 3, Retention: week},
		"quant_insights":    {Partitions: 6, ReplicationFactor: 3, Retention: day},
		"trading_signals":   {Partitions: 6, ReplicationFactor: 3, Retention: day},
		"service_logs":      {Partitions: 1, ReplicationFactor: 3, Retention: week},
	}
}

// Default returns a config with every default applied and no file.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := c.finishTopics(); err != nil {
		return nil, err
	}
	return &c, nil
}

// finishTopics fills in the standard topics when none are configured and
// applies per-topic defaults.
func (c *Config) finishTopics() error {
	if len(c.Kafka.Topics) == 0 {
		c.Kafka.Topics = DefaultTopics()
	}
	for name, t := range c.Kafka.Topics {
		if err := defaults.Set(&t); err != nil {
			return fmt.Errorf("apply defaults for topic %s: %w", name, err)
		}
		c.Kafka.Topics[name] = t
	}
	return nil
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Parse decodes YAML over the defaults. It does not validate.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.finishTopics(); err != nil {
		return nil, err
	}
	return &c, nil
}

func read(path string) (*Config, error) {
	if path == "" {
		return Default()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// LoadWithEnv loads config from YAML (or defaults when path is empty),
// overrides with environment variables, then validates.
func LoadWithEnv(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}

	if err := c.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// ApplyEnv overrides fields from environment variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("QUANTFUSE_MODE"); v != "" {
		c.Mode = v
	}
	if v := getenv("ALPHA_VANTAGE_API_KEY"); v != "" {
		c.Providers.AlphaVantage.APIKey = v
	}
	if v := getenv("FINNHUB_API_KEY"); v != "" {
		c.Providers.Finnhub.APIKey = v
	}
	if v := getenv("SYMBOLS"); v != "" {
		c.Providers.Finnhub.Symbols = util.SplitList(v)
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = util.SplitList(v)
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
		c.Cache.Redis.Enabled = true
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Logger.Level = v
	}
	if v := getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = p
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Mode != ModeLive && c.Mode != ModeSimulation {
		return fmt.Errorf("mode must be '%s' or '%s', got '%s'", ModeLive, ModeSimulation, c.Mode)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Insights.Pacing < 0 {
		return fmt.Errorf("insights.pacing cannot be negative")
	}
	if c.Insights.TechWeight < 0 || c.Insights.TechWeight > 1 {
		return fmt.Errorf("insights.tech_weight must be within [0,1]")
	}
	if c.Mode == ModeSimulation {
		return nil
	}

	known := map[string]bool{"alphavantage": true, "finnhub": true, "headlines": true}
	for capName, names := range map[string][]string{
		"quotes":     c.Providers.Quotes,
		"indicators": c.Providers.Indicators,
		"news":       c.Providers.News,
	} {
		if len(names) == 0 {
			return fmt.Errorf("providers.%s cannot be empty", capName)
		}
		for _, n := range names {
			if !known[n] {
				return fmt.Errorf("providers.%s: unknown provider '%s'", capName, n)
			}
		}
	}
	if c.uses("alphavantage") && c.Providers.AlphaVantage.APIKey == "" {
		return fmt.Errorf("providers.alphavantage.api_key is required")
	}
	if (c.uses("finnhub") || c.Stream.Enabled) && c.Providers.Finnhub.APIKey == "" {
		return fmt.Errorf("providers.finnhub.api_key is required")
	}
	if c.Stream.Enabled && len(c.Providers.Finnhub.Symbols) == 0 {
		return fmt.Errorf("providers.finnhub.symbols cannot be empty when stream is enabled")
	}
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty")
	}
	return nil
}

func (c *Config) uses(provider string) bool {
	return slices.Contains(c.Providers.Quotes, provider) ||
		slices.Contains(c.Providers.Indicators, provider) ||
		slices.Contains(c.Providers.News, provider)
}
