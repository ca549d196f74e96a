package upstream

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	drepo "QuantFuse/internal/domain/repository"
	xhttp "QuantFuse/pkg/http"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	assert.NoError(t, Classify("p", nil))
	assert.ErrorIs(t, Classify("p", &xhttp.StatusError{Code: 429}), drepo.ErrRateLimited)
	assert.ErrorIs(t, Classify("p", &xhttp.StatusError{Code: 404}), drepo.ErrNoData)
	assert.ErrorIs(t, Classify("p", &xhttp.StatusError{Code: 504}), drepo.ErrTimeout)

	throttled := Classify("alphavantage", &xhttp.StatusError{Code: 429, RetryAfter: 30 * time.Second})
	assert.ErrorIs(t, throttled, drepo.ErrRateLimited)
	assert.Contains(t, throttled.Error(), "retry after 30s")
	assert.ErrorIs(t, Classify("p", fmt.Errorf("request failed: %w", context.DeadlineExceeded)), drepo.ErrTimeout)

	other := errors.New("connection refused")
	err := Classify("finnhub", other)
	assert.ErrorIs(t, err, other)
	assert.Contains(t, err.Error(), "finnhub")
	assert.NotErrorIs(t, err, drepo.ErrRateLimited)
}
