package repository

import "errors"

var (
	// ErrNotFound means no provider could supply data for the request.
	ErrNotFound = errors.New("not found")
	// ErrRateLimited means an upstream provider throttled the request.
	ErrRateLimited = errors.New("rate limited")
	// ErrTimeout means the upstream call did not finish in time.
	ErrTimeout = errors.New("upstream timeout")
	// ErrNoData is returned by a provider that answered but had nothing usable.
	ErrNoData = errors.New("no data")
)

