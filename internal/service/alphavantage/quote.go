package alphavantage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"QuantFuse/internal/domain/models"
	drepo "QuantFuse/internal/domain/repository"
)

type globalQuoteResp struct {
	GlobalQuote map[string]string `json:"Global Quote"`
}

// GetQuote fetches GLOBAL_QUOTE. An empty payload or zero price is ErrNoData.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	var resp globalQuoteResp
	if err := c.query(ctx, "GLOBAL_QUOTE", map[string]string{"symbol": symbol}, &resp); err != nil {
		return nil, err
	}
	gq := resp.GlobalQuote
	if len(gq) == 0 {
		return nil, fmt.Errorf("%s quote %s: %w", providerName, symbol, drepo.ErrNoData)
	}

	fields := map[string]*float64{}
	q := models.Quote{Symbol: strings.ToUpper(symbol), Source: providerName, Timestamp: time.Now().UTC()}
	fields["02. open"] = &q.Open
	fields["03. high"] = &q.High
	fields["04. low"] = &q.Low
	fields["05. price"] = &q.Price
	fields["06. volume"] = &q.Volume
	fields["08. previous close"] = &q.PreviousClose
	fields["09. change"] = &q.Change
	fields["10. change percent"] = &q.ChangePercent
	for k, dst := range fields {
		v, err := parseNumber(gq[k])
		if errors.Is(err, errMissingValue) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s quote %s: field %q: %w", providerName, symbol, k, err)
		}
		*dst = v
	}
	if s := gq["01. symbol"]; s != "" {
		q.Symbol = s
	}
	if !q.Valid() {
		return nil, fmt.Errorf("%s quote %s: %w", providerName, symbol, drepo.ErrNoData)
	}
	return &q, nil
}
