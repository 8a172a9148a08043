package main

import (
	"spacetime-service/internal/api/dto"
	"spacetime-service/internal/app"
	"spacetime-service/internal/domain"
	"spacetime-service/internal/services"

	"github.com/spf13/cobra"
)

var matrixOpts struct {
	origins      []string
	destinations []string
	mode         string
}

var matrixCmd = &cobra.Command{
	Use:   "matrix --origins lat,lng ... --destinations lat,lng ...",
	Short: "queries travel times between two location lists",
	Long: `
Queries the route matrix for every origin and destination pair, splitting
large requests into provider-sized tiles. Results are cached.
`,
	Args: cobra.NoArgs,
	RunE: runMatrix,
}

var gridOpts struct {
	center      string
	zoom        int
	size        int
	sizePixels  int
	snap        bool
	mode        string
	maxDistance float64
}

var gridCmd = &cobra.Command{
	Use:   "grid --center lat,lng",
	Short: "builds a map grid and its completed travel time matrix",
	Args:  cobra.NoArgs,
	RunE:  runGrid,
}

var spacetimeOpts struct {
	center   string
	radiusKm float64
	gridSize int
	mode     string
	snap     bool
}

var spacetimeCmd = &cobra.Command{
	Use:   "spacetime --center lat,lng",
	Short: "measures travel times from a center to a lattice around it",
	Args:  cobra.NoArgs,
	RunE:  runSpacetime,
}

func init() {
	f := matrixCmd.Flags()
	f.StringArrayVar(&matrixOpts.origins, "origins", nil, "origin as lat,lng (repeatable)")
	f.StringArrayVar(&matrixOpts.destinations, "destinations", nil, "destination as lat,lng (repeatable)")
	f.StringVar(&matrixOpts.mode, "mode", "DRIVE", "travel mode: DRIVE, WALK or TRANSIT")

	f = gridCmd.Flags()
	f.StringVar(&gridOpts.center, "center", "", "grid center as lat,lng")
	f.IntVar(&gridOpts.zoom, "zoom", 13, "map zoom level")
	f.IntVar(&gridOpts.size, "size", 5, "points per grid side")
	f.IntVar(&gridOpts.sizePixels, "size-pixels", 400, "map size in pixels")
	f.BoolVar(&gridOpts.snap, "snap", true, "snap grid points to roads")
	f.StringVar(&gridOpts.mode, "mode", "DRIVE", "travel mode: DRIVE, WALK or TRANSIT")
	f.Float64Var(&gridOpts.maxDistance, "max-distance", services.DefaultMaxNormalizedDistance, "largest normalized distance measured directly")
	_ = gridCmd.MarkFlagRequired("center")

	f = spacetimeCmd.Flags()
	f.StringVar(&spacetimeOpts.center, "center", "", "center as lat,lng")
	f.Float64Var(&spacetimeOpts.radiusKm, "radius-km", 5, "lattice radius in kilometers")
	f.IntVar(&spacetimeOpts.gridSize, "grid-size", 20, "points per lattice side")
	f.StringVar(&spacetimeOpts.mode, "mode", "WALK", "travel mode: DRIVE, WALK or TRANSIT")
	f.BoolVar(&spacetimeOpts.snap, "snap", false, "snap lattice points to roads")
	_ = spacetimeCmd.MarkFlagRequired("center")
}

func parseLocations(raw []string) ([]domain.Location, error) {
	out := make([]domain.Location, 0, len(raw))
	for _, s := range raw {
		l, err := domain.ParseLocation(s)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

func runMatrix(cmd *cobra.Command, args []string) error {
	origins, err := parseLocations(matrixOpts.origins)
	if err != nil {
		return err
	}
	destinations, err := parseLocations(matrixOpts.destinations)
	if err != nil {
		return err
	}
	mode, err := domain.ParseTravelMode(matrixOpts.mode)
	if err != nil {
		return err
	}

	engine, err := app.New(cmd.Context(), cfg, costPolicy())
	if err != nil {
		return err
	}
	defer engine.Close()

	matrix, err := engine.Batcher.QueryDense(cmd.Context(), origins, destinations, mode)
	if err != nil {
		return err
	}
	return printJSON(cmd, dto.DistanceMatrixResponse{
		Origins:      origins,
		Destinations: destinations,
		TravelMode:   mode,
		Matrix:       matrix,
	})
}

func runGrid(cmd *cobra.Command, args []string) error {
	center, err := domain.ParseLocation(gridOpts.center)
	if err != nil {
		return err
	}
	mode, err := domain.ParseTravelMode(gridOpts.mode)
	if err != nil {
		return err
	}

	engine, err := app.New(cmd.Context(), cfg, costPolicy())
	if err != nil {
		return err
	}
	defer engine.Close()

	spec := services.GridSpec{
		Center:      center,
		Zoom:        gridOpts.zoom,
		Size:        gridOpts.size,
		SizePixels:  gridOpts.sizePixels,
		SnapToRoads: gridOpts.snap,
		Mode:        mode,
	}
	grid, err := engine.Grids.Build(cmd.Context(), spec)
	if err != nil {
		return err
	}
	tt, err := engine.Grids.TravelTimes(cmd.Context(), grid, gridOpts.maxDistance)
	if err != nil {
		return err
	}

	return printJSON(cmd, dto.GridResponse{
		Center:           spec.Center,
		Zoom:             spec.Zoom,
		Size:             spec.Size,
		SizePixels:       spec.SizePixels,
		TravelMode:       spec.Mode,
		Locations:        grid.Locations,
		RouteMatrix:      tt.RouteMatrix,
		DenseTravelTimes: tt.Dense,
	})
}

func runSpacetime(cmd *cobra.Command, args []string) error {
	center, err := domain.ParseLocation(spacetimeOpts.center)
	if err != nil {
		return err
	}
	mode, err := domain.ParseTravelMode(spacetimeOpts.mode)
	if err != nil {
		return err
	}

	engine, err := app.New(cmd.Context(), cfg, costPolicy())
	if err != nil {
		return err
	}
	defer engine.Close()

	res, err := engine.Grids.Spacetime(cmd.Context(), services.SpacetimeSpec{
		Center:      center,
		RadiusKm:    spacetimeOpts.radiusKm,
		GridSize:    spacetimeOpts.gridSize,
		Mode:        mode,
		SnapToRoads: spacetimeOpts.snap,
	})
	if err != nil {
		return err
	}
	return printJSON(cmd, res)
}
