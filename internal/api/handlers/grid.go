package handlers

import (
	"context"
	"net/http"
	"spacetime-service/internal/api/dto"
	"spacetime-service/internal/domain"
	"spacetime-service/internal/services"
)

type GridService interface {
	Build(ctx context.Context, spec services.GridSpec) (*services.Grid, error)
	TravelTimes(ctx context.Context, grid *services.Grid, maxNormalizedDistance float64) (*services.GridTravelTimes, error)
	Spacetime(ctx context.Context, spec services.SpacetimeSpec) (*domain.SpacetimeGrid, error)
}

// Request defaults.
const (
	defaultRadiusKm   = 5.0
	defaultGridSize   = 20
	maxGridSize       = 50
	defaultZoom       = 13
	defaultMapSize    = 5
	defaultSizePixels = 400
)

type GridHandler struct {
	Grids GridService
}

// Spacetime returns travel times from a center to a lattice around it.
func (h *GridHandler) Spacetime(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.SpacetimeGridRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if _, err := domain.NewLocation(req.Center.Lat, req.Center.Lng); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	mode, err := parseMode(req.TravelMode, domain.TravelModeWalk)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	spec := services.SpacetimeSpec{
		Center:      req.Center,
		RadiusKm:    defaultRadiusKm,
		GridSize:    defaultGridSize,
		Mode:        mode,
		SnapToRoads: req.SnapToRoads,
	}
	if req.RadiusKm != nil {
		spec.RadiusKm = *req.RadiusKm
	}
	if req.GridSize != nil {
		spec.GridSize = *req.GridSize
	}
	if spec.GridSize > maxGridSize {
		writeError(w, r, http.StatusBadRequest, "grid_size must be at most 50")
		return
	}

	res, err := h.Grids.Spacetime(r.Context(), spec)
	if err != nil {
		writeServiceError(w, r, "spacetime grid", err)
		return
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Grid builds a map-aligned grid and its completed travel time matrix.
func (h *GridHandler) Grid(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.GridRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if _, err := domain.NewLocation(req.Center.Lat, req.Center.Lng); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	mode, err := parseMode(req.TravelMode, domain.TravelModeDrive)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	spec := services.GridSpec{
		Center:      req.Center,
		Zoom:        valueOr(req.Zoom, defaultZoom),
		Size:        valueOr(req.Size, defaultMapSize),
		SizePixels:  valueOr(req.SizePixels, defaultSizePixels),
		SnapToRoads: valueOr(req.SnapToRoads, true),
		Mode:        mode,
	}
	if spec.Size > maxGridSize {
		writeError(w, r, http.StatusBadRequest, "size must be at most 50")
		return
	}
	maxDist := valueOr(req.MaxNormalizedDistance, services.DefaultMaxNormalizedDistance)

	grid, err := h.Grids.Build(r.Context(), spec)
	if err != nil {
		writeServiceError(w, r, "grid build", err)
		return
	}
	tt, err := h.Grids.TravelTimes(r.Context(), grid, maxDist)
	if err != nil {
		writeServiceError(w, r, "grid travel times", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.GridResponse{
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

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
