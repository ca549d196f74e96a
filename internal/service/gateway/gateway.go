// Package gateway fronts the upstream data providers. Each capability has a
// ranked provider list; reads go through a time-bounded cache and then fail
// over down the list until one provider answers.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"QuantFuse/internal/domain/models"
	drepo "QuantFuse/internal/domain/repository"
	"QuantFuse/internal/service/cache"
	"QuantFuse/internal/service/ratelimit"
	applogger "QuantFuse/pkg/logger"
	"QuantFuse/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Config holds per-call upstream timeouts.
type Config struct {
	QuoteTimeout     time.Duration
	IndicatorTimeout time.Duration
	NewsTimeout      time.Duration
}

func DefaultConfig() Config {
	return Config{
		QuoteTimeout:     5 * time.Second,
		IndicatorTimeout: 30 * time.Second,
		NewsTimeout:      30 * time.Second,
	}
}

// Providers lists upstreams per capability, highest priority first.
type Providers struct {
	Quotes     []drepo.QuoteProvider
	Indicators []drepo.IndicatorProvider
	Feeds      []drepo.SentimentProvider
}

// Limits maps provider names to their shared token bucket.
type Limits map[string]*ratelimit.Bucket

type Gateway struct {
	cfg       Config
	providers Providers
	caches    Caches
	limits    Limits

	quoteMemo     *cache.Memo[models.Quote]
	indicatorMemo *cache.Memo[models.IndicatorValue]
	newsMemo      *cache.Memo[[]models.NewsItem]

	metrics drepo.Metrics
	log     *applogger.Logger
}

// New builds a gateway. Providers without an entry in limits are not
// throttled locally.
func New(cfg Config, providers Providers, caches Caches, limits Limits, metrics drepo.Metrics, log *applogger.Logger) *Gateway {
	def := DefaultConfig()
	if cfg.QuoteTimeout <= 0 {
		cfg.QuoteTimeout = def.QuoteTimeout
	}
	if cfg.IndicatorTimeout <= 0 {
		cfg.IndicatorTimeout = def.IndicatorTimeout
	}
	if cfg.NewsTimeout <= 0 {
		cfg.NewsTimeout = def.NewsTimeout
	}
	if log == nil {
		log = applogger.Nop()
	}
	caches = caches.withDefaults()
	return &Gateway{
		cfg:           cfg,
		providers:     providers,
		caches:        caches,
		limits:        limits,
		metrics:       metrics,
		log:           log.Component("gateway"),
		quoteMemo:     cache.NewMemo(caches.Quotes),
		indicatorMemo: cache.NewMemo(caches.Indicators).WithCloner(cloneIndicator),
		newsMemo:      cache.NewMemo(caches.News).WithCloner(models.CloneNews),
	}
}

// ProviderNames reports the configured chains, for health output.
func (g *Gateway) ProviderNames() map[string][]string {
	out := map[string][]string{}
	for _, p := range g.providers.Quotes {
		out["quotes"] = append(out["quotes"], p.Name())
	}
	for _, p := range g.providers.Indicators {
		out["indicators"] = append(out["indicators"], p.Name())
	}
	for _, p := range g.providers.Feeds {
		out["news"] = append(out["news"], p.Name())
	}
	return out
}

type named interface {
	Name() string
}

// failover tries providers in order and returns the first success. When all
// fail the result matches ErrRateLimited if any provider throttled, otherwise
// ErrNotFound; if every attempt timed out it matches ErrTimeout as well.
// Cancellation of ctx ends the loop with ctx.Err().
func failover[P named, T any](ctx context.Context, g *Gateway, op, subject string, timeout time.Duration, providers []P, call func(context.Context, P) (T, error)) (T, error) {
	var zero T
	if len(providers) == 0 {
		return zero, fmt.Errorf("%s %s: no providers configured: %w", op, subject, drepo.ErrNotFound)
	}

	var (
		throttled bool
		timeouts  int
		causes    []error
	)
	for _, p := range providers {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		v, err := attempt(ctx, g, op, subject, timeout, p, call)
		if err == nil {
			return v, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}
		switch {
		case errors.Is(err, drepo.ErrRateLimited):
			throttled = true
		case errors.Is(err, drepo.ErrTimeout):
			timeouts++
		}
		g.log.Warn("provider failed",
			applogger.Provider(p.Name()),
			applogger.String("op", op),
			applogger.String("subject", subject),
			applogger.Error(err))
		causes = append(causes, err)
	}

	// causes are reported as text only so errors.Is sees the verdict alone
	cause := errors.Join(causes...)
	switch {
	case throttled:
		return zero, fmt.Errorf("%s %s: %w: %v", op, subject, drepo.ErrRateLimited, cause)
	case timeouts == len(providers):
		return zero, fmt.Errorf("%s %s: %w: %w", op, subject, drepo.ErrNotFound, drepo.ErrTimeout)
	default:
		return zero, fmt.Errorf("%s %s: %w: %v", op, subject, drepo.ErrNotFound, cause)
	}
}

// attempt makes one rate-limited, time-bounded, traced provider call.
func attempt[P named, T any](ctx context.Context, g *Gateway, op, subject string, timeout time.Duration, p P, call func(context.Context, P) (T, error)) (T, error) {
	var zero T
	name := p.Name()

	if b := g.limits[name]; b != nil {
		if err := b.Wait(ctx); err != nil {
			return zero, err
		}
	}

	ctx, span := tracing.StartSpan(ctx, "gateway."+op, trace.WithAttributes(
		attribute.String("provider", name),
		attribute.String("subject", subject),
	))
	defer span.End()

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	v, err := call(callCtx, p)
	if err != nil && ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, drepo.ErrTimeout) {
		err = fmt.Errorf("%s: %w: %v", name, drepo.ErrTimeout, err)
	}

	if g.metrics != nil {
		g.metrics.RecordLatency("provider_"+op, time.Since(start).Seconds())
		g.metrics.RecordProviderCall(name, op, outcome(err))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome(err))
		return zero, err
	}
	return v, nil
}

func (g *Gateway) recordLookup(name string, hit bool) {
	if g.metrics != nil {
		g.metrics.RecordCacheLookup(name, hit)
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, drepo.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, drepo.ErrTimeout):
		return "timeout"
	case errors.Is(err, drepo.ErrNoData):
		return "no_data"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}
	return "error"
}
