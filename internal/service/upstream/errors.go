// Package upstream maps transport failures from provider clients onto the
// domain error taxonomy.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	drepo "QuantFuse/internal/domain/repository"
	xhttp "QuantFuse/pkg/http"
)

// Classify wraps err so that errors.Is matches ErrRateLimited, ErrTimeout or
// ErrNoData where the failure indicates one. Other errors are returned with
// the provider name prefixed.
func Classify(provider string, err error) error {
	if err == nil {
		return nil
	}
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case http.StatusTooManyRequests:
			if se.RetryAfter > 0 {
				return fmt.Errorf("%s: retry after %s: %w", provider, se.RetryAfter, drepo.ErrRateLimited)
			}
			return fmt.Errorf("%s: %w", provider, drepo.ErrRateLimited)
		case http.StatusNotFound:
			return fmt.Errorf("%s: %w", provider, drepo.ErrNoData)
		case http.StatusGatewayTimeout, http.StatusRequestTimeout:
			return fmt.Errorf("%s: %w", provider, drepo.ErrTimeout)
		}
		return fmt.Errorf("%s: %w", provider, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", provider, drepo.ErrTimeout)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%s: %w", provider, drepo.ErrTimeout)
	}
	return fmt.Errorf("%s: %w", provider, err)
}
