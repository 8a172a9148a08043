package domain

import "errors"

// Error kinds shared by the acquisition engine. Callers classify with errors.Is.
var (
	// ErrInvalidInput marks malformed requests: bad coordinates, unsupported
	// travel modes, or a query with nothing to fetch. Never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCostRejected is returned when the cost policy declines a query.
	ErrCostRejected = errors.New("cost rejected")

	// ErrRateLimited signals that the routing provider throttled the request.
	ErrRateLimited = errors.New("rate limited")

	// ErrUpstream covers every other provider failure.
	ErrUpstream = errors.New("upstream failure")

	// ErrNoCandidate means reverse geocoding returned nothing usable.
	ErrNoCandidate = errors.New("no matching candidate")
)
