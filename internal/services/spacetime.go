package services

import (
	"context"
	"fmt"
	"math"
	"spacetime-service/internal/domain"
	"spacetime-service/internal/platform/obs"
)

type SpacetimeSpec struct {
	Center      domain.Location
	RadiusKm    float64
	GridSize    int
	Mode        domain.TravelMode
	SnapToRoads bool
}

func (s SpacetimeSpec) Validate() error {
	if s.RadiusKm <= 0 || math.IsNaN(s.RadiusKm) || math.IsInf(s.RadiusKm, 0) {
		return fmt.Errorf("spacetime: %w: radius_km must be positive", domain.ErrInvalidInput)
	}
	if s.GridSize < 2 {
		return fmt.Errorf("spacetime: %w: grid_size must be at least 2", domain.ErrInvalidInput)
	}
	if !s.Mode.Valid() {
		return fmt.Errorf("spacetime: %w: travel mode %q", domain.ErrInvalidInput, s.Mode)
	}
	return nil
}

// Spacetime measures the travel time from the center to every point of a
// lattice spanning RadiusKm around it.
func (b *GridBuilder) Spacetime(ctx context.Context, spec SpacetimeSpec) (_ *domain.SpacetimeGrid, err error) {
	defer obs.Time(ctx, "grid.Spacetime")(&err)

	if err := spec.Validate(); err != nil {
		return nil, err
	}

	raw := domain.RadiusLattice(spec.Center, spec.RadiusKm, spec.GridSize)
	locs := make([]domain.GridLocation, len(raw))
	for i, l := range raw {
		locs[i] = domain.GridLocation{
			RawLocation:     l,
			SnappedLocation: l,
			GridX:           i / spec.GridSize,
			GridY:           i % spec.GridSize,
		}
	}

	if spec.SnapToRoads {
		// Displacement relative to the lattice extent.
		extent := 2 * spec.RadiusKm * 1000
		err := b.snapAll(ctx, locs, func(raw, snapped domain.Location) float64 {
			return domain.HaversineMeters(raw, snapped) / extent
		})
		if err != nil {
			return nil, err
		}
	}

	points := domain.SnappedLocations(locs)
	measured, err := b.sparsifier.QuerySparse(ctx, []domain.Location{spec.Center}, points, spec.Mode, IncludeAll)
	if err != nil {
		return nil, fmt.Errorf("spacetime: %w", err)
	}

	// Index 0 is the center, point i is i+1.
	shifted := make(domain.SparseMatrix, 0, len(measured))
	for _, e := range measured {
		e.DestinationIndex++
		shifted = append(shifted, e)
	}

	dense, err := Complete(shifted, len(points)+1)
	if err != nil {
		return nil, fmt.Errorf("spacetime: %w", err)
	}

	out := &domain.SpacetimeGrid{
		Center:      spec.Center,
		TravelMode:  spec.Mode,
		Points:      make([]domain.SpacetimePoint, 0, len(points)),
		TotalPoints: len(points),
	}
	for i, l := range locs {
		p := domain.SpacetimePoint{
			OriginalLat: l.RawLocation.Lat,
			OriginalLng: l.RawLocation.Lng,
			Lat:         l.SnappedLocation.Lat,
			Lng:         l.SnappedLocation.Lng,
		}
		if secs, ok := dense.At(0, i+1); ok {
			s := int64(secs)
			m := float64(secs) / 60
			p.TravelTimeSeconds = &s
			p.TravelTimeMinutes = &m
			p.Reachable = true
			out.ReachablePoints++
		}
		out.Points = append(out.Points, p)
	}
	return out, nil
}
