package services

import (
	"context"
	"fmt"
	"log"
	"spacetime-service/internal/domain"
	"spacetime-service/internal/platform/obs"
	"spacetime-service/internal/ports"

	"golang.org/x/sync/errgroup"
)

// DefaultMaxNormalizedDistance bounds which grid pairs are measured directly.
const DefaultMaxNormalizedDistance = 0.3

type GridSpec struct {
	Center      domain.Location
	Zoom        int
	Size        int
	SizePixels  int
	SnapToRoads bool
	Mode        domain.TravelMode
}

func (s GridSpec) Viewport() domain.Viewport {
	return domain.Viewport{Center: s.Center, Zoom: s.Zoom, SizePixels: s.SizePixels}
}

func (s GridSpec) Validate() error {
	if s.Size < 1 {
		return fmt.Errorf("grid: %w: size must be positive", domain.ErrInvalidInput)
	}
	if !s.Mode.Valid() {
		return fmt.Errorf("grid: %w: travel mode %q", domain.ErrInvalidInput, s.Mode)
	}
	return s.Viewport().Validate()
}

// Grid is a built lattice. Locations are ordered row by row.
type Grid struct {
	Spec      GridSpec
	Locations []domain.GridLocation
}

// GridTravelTimes is the measured sparse matrix of a grid and its completion.
type GridTravelTimes struct {
	RouteMatrix domain.SparseMatrix
	Dense       *domain.DenseMatrix
}

// GridBuilder lays out location lattices, snaps them to roads and measures
// travel times between them.
type GridBuilder struct {
	geocoder    ports.ReverseGeocoder
	sparsifier  *Sparsifier
	concurrency int
}

func NewGridBuilder(geocoder ports.ReverseGeocoder, sparsifier *Sparsifier, concurrency int) *GridBuilder {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &GridBuilder{geocoder: geocoder, sparsifier: sparsifier, concurrency: concurrency}
}

// Build lays out Size×Size locations over the map area. With SnapToRoads
// each point is moved to the nearest routable feature unless snapping fails
// or moves it further than MaxSnapNormalizedDistance.
func (b *GridBuilder) Build(ctx context.Context, spec GridSpec) (_ *Grid, err error) {
	defer obs.Time(ctx, "grid.Build")(&err)

	if err := spec.Validate(); err != nil {
		return nil, err
	}

	vp := spec.Viewport()
	grid := &Grid{Spec: spec, Locations: make([]domain.GridLocation, 0, spec.Size*spec.Size)}
	for y, row := range vp.Lattice(spec.Size) {
		for x, loc := range row {
			grid.Locations = append(grid.Locations, domain.GridLocation{
				RawLocation:     loc,
				SnappedLocation: loc,
				GridX:           x,
				GridY:           y,
			})
		}
	}

	if spec.SnapToRoads {
		err := b.snapAll(ctx, grid.Locations, func(raw, snapped domain.Location) float64 {
			return vp.NormalizedDistance(raw, snapped)
		})
		if err != nil {
			return nil, err
		}
	}

	return grid, nil
}

// snapAll snaps every location in place. Per-point failures keep the raw
// location; only cancellation aborts.
func (b *GridBuilder) snapAll(
	ctx context.Context,
	locs []domain.GridLocation,
	displacement func(raw, snapped domain.Location) float64,
) error {
	if b.geocoder == nil {
		return fmt.Errorf("grid: %w: snap to roads needs a reverse geocoder", domain.ErrInvalidInput)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i := range locs {
		i := i
		g.Go(func() error {
			p := &locs[i]

			res, err := b.geocoder.ReverseGeocode(gctx, p.RawLocation)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				log.Printf("req_id=%s op=grid.snap loc=%s skipped=true err=%v", obs.RequestID(ctx), p.RawLocation, err)
				return nil
			}

			if d := displacement(p.RawLocation, res.Location); d > domain.MaxSnapNormalizedDistance {
				log.Printf("req_id=%s op=grid.snap loc=%s skipped=true displacement=%.3f", obs.RequestID(ctx), p.RawLocation, d)
				return nil
			}

			p.SnappedLocation = res.Location
			p.SnapTypes = res.Types
			p.SnapPlaceID = res.PlaceID
			return nil
		})
	}
	return g.Wait()
}

// TravelTimes measures travel times between nearby grid locations and
// completes them into a dense matrix. Pairs whose normalized distance is at
// least maxNormalizedDistance are left to completion.
func (b *GridBuilder) TravelTimes(
	ctx context.Context,
	grid *Grid,
	maxNormalizedDistance float64,
) (_ *GridTravelTimes, err error) {
	defer obs.Time(ctx, "grid.TravelTimes")(&err)

	if maxNormalizedDistance <= 0 {
		return nil, fmt.Errorf("grid travel times: %w: max normalized distance must be positive", domain.ErrInvalidInput)
	}

	vp := grid.Spec.Viewport()
	locs := domain.SnappedLocations(grid.Locations)

	include := func(a, b domain.Location) bool {
		return a != b && vp.NormalizedDistance(a, b) < maxNormalizedDistance
	}

	measured, err := b.sparsifier.QuerySparse(ctx, locs, locs, grid.Spec.Mode, include)
	if err != nil {
		return nil, fmt.Errorf("grid travel times: %w", err)
	}

	routable := measured.Routable()
	if dropped := len(measured) - len(routable); dropped > 0 {
		log.Printf("req_id=%s op=grid.TravelTimes dropped_unroutable=%d remaining=%d", obs.RequestID(ctx), dropped, len(routable))
	}

	dense, err := Complete(routable, len(locs))
	if err != nil {
		return nil, fmt.Errorf("grid travel times: %w", err)
	}

	return &GridTravelTimes{RouteMatrix: routable, Dense: dense}, nil
}
