package gateway

import (
	"maps"
	"time"

	"QuantFuse/internal/domain/models"
	"QuantFuse/internal/service/cache"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultQuoteTTL     = 30 * time.Second
	DefaultIndicatorTTL = 300 * time.Second
	DefaultNewsTTL      = 300 * time.Second
)

// TTLs sets the lifetime of each cached capability.
type TTLs struct {
	Quote     time.Duration
	Indicator time.Duration
	News      time.Duration
}

func (t TTLs) withDefaults() TTLs {
	if t.Quote <= 0 {
		t.Quote = DefaultQuoteTTL
	}
	if t.Indicator <= 0 {
		t.Indicator = DefaultIndicatorTTL
	}
	if t.News <= 0 {
		t.News = DefaultNewsTTL
	}
	return t
}

// Caches are the stores behind each capability. Nil members get an
// in-memory cache with the default TTL.
type Caches struct {
	Quotes     cache.Cache[string, models.Quote]
	Indicators cache.Cache[string, models.IndicatorValue]
	News       cache.Cache[string, []models.NewsItem]
}

func cloneIndicator(v models.IndicatorValue) models.IndicatorValue { return maps.Clone(v) }

// NewMemoryCaches builds process-local caches.
func NewMemoryCaches(ttl TTLs) Caches {
	ttl = ttl.withDefaults()
	return Caches{
		Quotes:     cache.NewTTLCache[string, models.Quote](ttl.Quote),
		Indicators: cache.NewTTLCache[string, models.IndicatorValue](ttl.Indicator).WithCloner(cloneIndicator),
		News:       cache.NewTTLCache[string, []models.NewsItem](ttl.News).WithCloner(models.CloneNews),
	}
}

// NewTieredCaches puts each memory cache in front of a redis tier shared by
// all instances. onErr receives redis failures, which are otherwise misses.
func NewTieredCaches(cli *redis.Client, prefix string, ttl TTLs, onErr func(op string, err error)) Caches {
	ttl = ttl.withDefaults()

	quotes := cache.NewRedisCache[models.Quote](cli, prefix, ttl.Quote)
	indicators := cache.NewRedisCache[models.IndicatorValue](cli, prefix, ttl.Indicator)
	news := cache.NewRedisCache[[]models.NewsItem](cli, prefix, ttl.News)
	quotes.OnError, indicators.OnError, news.OnError = onErr, onErr, onErr

	return Caches{
		Quotes: cache.NewTiered(cache.NewTTLCache[string, models.Quote](ttl.Quote), quotes),
		Indicators: cache.NewTiered(
			cache.NewTTLCache[string, models.IndicatorValue](ttl.Indicator).WithCloner(cloneIndicator), indicators),
		News: cache.NewTiered(
			cache.NewTTLCache[string, []models.NewsItem](ttl.News).WithCloner(models.CloneNews), news),
	}
}

func (c Caches) withDefaults() Caches {
	if c.Quotes != nil && c.Indicators != nil && c.News != nil {
		return c
	}
	mem := NewMemoryCaches(TTLs{})
	if c.Quotes == nil {
		c.Quotes = mem.Quotes
	}
	if c.Indicators == nil {
		c.Indicators = mem.Indicators
	}
	if c.News == nil {
		c.News = mem.News
	}
	return c
}
