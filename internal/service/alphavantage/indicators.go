package alphavantage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"QuantFuse/internal/domain/models"
	drepo "QuantFuse/internal/domain/repository"
)

// GetIndicator fetches one indicator series and returns its latest point.
func (c *Client) GetIndicator(ctx context.Context, symbol string, kind models.IndicatorKind, params models.IndicatorParams) (models.IndicatorValue, error) {
	q := map[string]string{
		"symbol":      symbol,
		"interval":    params.Interval,
		"series_type": params.SeriesType,
	}
	if params.TimePeriod > 0 {
		q["time_period"] = strconv.Itoa(params.TimePeriod)
	}

	// the "Meta Data" block has a different shape, so only the series key is decoded
	var raw map[string]json.RawMessage
	if err := c.query(ctx, string(kind), q, &raw); err != nil {
		return nil, err
	}
	series, ok := raw["Technical Analysis: "+string(kind)]
	if !ok {
		return nil, fmt.Errorf("%s %s %s: %w", providerName, kind, symbol, drepo.ErrNoData)
	}
	var points map[string]map[string]string
	if err := json.Unmarshal(series, &points); err != nil {
		return nil, fmt.Errorf("%s %s %s: decode: %w", providerName, kind, symbol, err)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%s %s %s: %w", providerName, kind, symbol, drepo.ErrNoData)
	}

	// dates are ISO formatted, so the greatest key is the latest point
	dates := make([]string, 0, len(points))
	for d := range points {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	latest := points[dates[len(dates)-1]]

	out := make(models.IndicatorValue, len(latest))
	for name, s := range latest {
		v, err := parseNumber(s)
		if errors.Is(err, errMissingValue) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s %s %s: field %q: %w", providerName, kind, symbol, name, err)
		}
		out[name] = v
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s %s %s: empty latest point: %w", providerName, kind, symbol, drepo.ErrNoData)
	}
	return out, nil
}
