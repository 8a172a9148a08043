package domain

// GridLocation is one lattice point of a grid. RawLocation never changes;
// SnappedLocation starts equal to it and is replaced at most once, when a
// road snap succeeds within the allowed displacement.
type GridLocation struct {
	RawLocation     Location `json:"raw_location"`
	SnappedLocation Location `json:"snapped_location"`
	GridX           int      `json:"grid_x"`
	GridY           int      `json:"grid_y"`
	SnapTypes       []string `json:"snap_result_types"`
	SnapPlaceID     string   `json:"snap_result_place_id,omitempty"`
}

// Snapped reports whether a road snap was accepted for this point.
func (g GridLocation) Snapped() bool { return g.SnapPlaceID != "" }

// ResolvedLocation is a reverse-geocoding candidate chosen for a point.
type ResolvedLocation struct {
	Location Location `json:"location"`
	PlaceID  string   `json:"place_id"`
	Types    []string `json:"types"`
}

func SnappedLocations(g []GridLocation) []Location {
	out := make([]Location, 0, len(g))
	for _, p := range g {
		out = append(out, p.SnappedLocation)
	}
	return out
}
