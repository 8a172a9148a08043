package dto

import "spacetime-service/internal/domain"

// Optional fields are pointers so that explicit zeros can be rejected
// instead of silently replaced by defaults.
type SpacetimeGridRequest struct {
	Center      domain.Location `json:"center"`
	RadiusKm    *float64        `json:"radius_km"`
	GridSize    *int            `json:"grid_size"`
	TravelMode  string          `json:"travel_mode"`
	SnapToRoads bool            `json:"snap_to_roads"`
}

type GridRequest struct {
	Center                domain.Location `json:"center"`
	Zoom                  *int            `json:"zoom"`
	Size                  *int            `json:"size"`
	SizePixels            *int            `json:"size_pixels"`
	SnapToRoads           *bool           `json:"snap_to_roads"`
	TravelMode            string          `json:"travel_mode"`
	MaxNormalizedDistance *float64        `json:"max_normalized_distance"`
}

type GridResponse struct {
	Center           domain.Location       `json:"center"`
	Zoom             int                   `json:"zoom"`
	Size             int                   `json:"size"`
	SizePixels       int                   `json:"size_pixels"`
	TravelMode       domain.TravelMode     `json:"travel_mode"`
	Locations        []domain.GridLocation `json:"locations"`
	RouteMatrix      domain.SparseMatrix   `json:"route_matrix"`
	DenseTravelTimes *domain.DenseMatrix   `json:"dense_travel_times"`
}
