package ports

import (
	"context"
	"spacetime-service/internal/domain"
)

// Contract for the external routing service computing travel durations
// between every origin and destination in a single request.
type RouteMatrixProvider interface {
	// Return one element per (origin, destination) pair with indices local
	// to the given lists. A throttled request must fail with an error
	// wrapping domain.ErrRateLimited; any other failure wraps domain.ErrUpstream.
	ComputeRouteMatrix(
		ctx context.Context,
		origins []domain.Location,
		destinations []domain.Location,
		mode domain.TravelMode,
	) (domain.SparseMatrix, error)
}
