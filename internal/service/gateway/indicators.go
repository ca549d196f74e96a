package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"QuantFuse/internal/domain/models"
	drepo "QuantFuse/internal/domain/repository"
	applogger "QuantFuse/pkg/logger"

	"golang.org/x/sync/errgroup"
)

func indicatorKey(symbol string, kind models.IndicatorKind, p models.IndicatorParams) string {
	return fmt.Sprintf("indicator:%s:%s:%s:%d:%s", kind, symbol, p.Interval, p.TimePeriod, p.SeriesType)
}

// GetIndicator fetches the latest value of one indicator with failover.
func (g *Gateway) GetIndicator(ctx context.Context, symbol string, kind models.IndicatorKind, params models.IndicatorParams) (models.IndicatorValue, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("indicator: empty symbol: %w", drepo.ErrNotFound)
	}
	op := "indicator_" + strings.ToLower(string(kind))

	v, hit, err := g.indicatorMemo.Get(ctx, indicatorKey(symbol, kind, params), func(ctx context.Context) (models.IndicatorValue, error) {
		return failover(ctx, g, op, symbol, g.cfg.IndicatorTimeout, g.providers.Indicators,
			func(ctx context.Context, p drepo.IndicatorProvider) (models.IndicatorValue, error) {
				v, err := p.GetIndicator(ctx, symbol, kind, params)
				if err != nil {
					return nil, err
				}
				if !v.Usable(kind) {
					return nil, fmt.Errorf("%s %s %s: no usable output: %w", p.Name(), kind, symbol, drepo.ErrNoData)
				}
				return v, nil
			})
	})
	g.recordLookup("indicator", hit)
	return v, err
}

// GetIndicators assembles RSI, MACD, ADX and Bollinger Bands for symbol. The
// kinds are fetched concurrently; provider pacing is left to the token
// buckets. A kind that fails on every provider keeps its neutral value and is
// listed in Degraded. Only when every kind fails is an error returned, the
// rate-limit failure if there was one.
func (g *Gateway) GetIndicators(ctx context.Context, symbol string) (models.IndicatorSet, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	kinds := models.AllIndicators
	values := make([]models.IndicatorValue, len(kinds))
	errs := make([]error, len(kinds))

	var eg errgroup.Group
	for i, kind := range kinds {
		eg.Go(func() error {
			values[i], errs[i] = g.GetIndicator(ctx, symbol, kind, models.DefaultIndicatorParams(kind))
			return nil
		})
	}
	_ = eg.Wait()

	if err := ctx.Err(); err != nil {
		return models.IndicatorSet{}, err
	}

	set := models.NeutralIndicatorSet(symbol)
	var terminal error
	for i, kind := range kinds {
		if errs[i] != nil {
			set.Degraded = append(set.Degraded, kind)
			if terminal == nil || errors.Is(errs[i], drepo.ErrRateLimited) {
				terminal = errs[i]
			}
			continue
		}
		set.Apply(kind, values[i])
	}
	if len(set.Degraded) == len(kinds) {
		return models.IndicatorSet{}, terminal
	}
	if len(set.Degraded) > 0 {
		g.log.Warn("indicators degraded to neutral values",
			applogger.Symbol(symbol),
			applogger.Any("kinds", set.Degraded))
	}
	return set, nil
}
