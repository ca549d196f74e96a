package api

import (
	"context"
	"errors"

	drepo "QuantFuse/internal/domain/repository"
	xhttp "QuantFuse/pkg/http"
)

// toAppError maps domain errors to HTTP outcomes. An exhausted failover
// where every provider timed out matches ErrNotFound and is reported as 404.
func toAppError(err error) *xhttp.AppError {
	switch {
	case errors.Is(err, drepo.ErrRateLimited):
		return xhttp.TooManyRequestsError("upstream rate limit reached, retry later").WithError(err)
	case errors.Is(err, drepo.ErrNotFound):
		return xhttp.NotFoundError(err.Error()).WithError(err)
	case errors.Is(err, drepo.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return xhttp.GatewayTimeoutError("upstream timed out").WithError(err)
	default:
		return xhttp.InternalError("internal error").WithError(err)
	}
}
