package ports

import (
	"context"
	"spacetime-service/internal/domain"
)

// Contract for resolving a coordinate to the nearest routable feature.
type ReverseGeocoder interface {
	// Return the best candidate for the location, or an error wrapping
	// domain.ErrNoCandidate when nothing matched.
	ReverseGeocode(ctx context.Context, location domain.Location) (domain.ResolvedLocation, error)
}
