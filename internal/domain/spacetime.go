package domain

// SpacetimePoint is the travel time from a center to one lattice point.
// Unreachable points have Reachable false and no travel time.
type SpacetimePoint struct {
	OriginalLat       float64  `json:"original_lat"`
	OriginalLng       float64  `json:"original_lng"`
	Lat               float64  `json:"lat"`
	Lng               float64  `json:"lng"`
	TravelTimeSeconds *int64   `json:"travel_time_seconds"`
	TravelTimeMinutes *float64 `json:"travel_time_minutes"`
	Reachable         bool     `json:"reachable"`
}

type SpacetimeGrid struct {
	Center          Location         `json:"center"`
	TravelMode      TravelMode       `json:"travel_mode"`
	Points          []SpacetimePoint `json:"points"`
	TotalPoints     int              `json:"total_points"`
	ReachablePoints int              `json:"reachable_points"`
}
