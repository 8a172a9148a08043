package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Immutable geographic coordinates (latitude, longitude).
// Two Locations are equal only when both coordinates match exactly.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NewLocation validates the coordinate ranges.
func NewLocation(lat, lng float64) (Location, error) {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return Location{}, fmt.Errorf("location %v,%v: %w: coordinates must be finite", lat, lng, ErrInvalidInput)
	}
	if lat < -90 || lat > 90 {
		return Location{}, fmt.Errorf("location %v,%v: %w: latitude out of range", lat, lng, ErrInvalidInput)
	}
	if lng < -180 || lng > 180 {
		return Location{}, fmt.Errorf("location %v,%v: %w: longitude out of range", lat, lng, ErrInvalidInput)
	}
	return Location{Lat: lat, Lng: lng}, nil
}

// ParseLocation parses the canonical "lat,lng" form.
func ParseLocation(s string) (Location, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 2 {
		return Location{}, fmt.Errorf("parse location %q: %w: expected lat,lng", s, ErrInvalidInput)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Location{}, fmt.Errorf("parse location %q: %w: latitude: %v", s, ErrInvalidInput, err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Location{}, fmt.Errorf("parse location %q: %w: longitude: %v", s, ErrInvalidInput, err)
	}
	return NewLocation(lat, lng)
}

// String returns the canonical "lat,lng" form used for cache keys and API payloads.
// The shortest representation that round-trips is used so distinct coordinates
// never collapse to the same string.
func (l Location) String() string {
	return strconv.FormatFloat(l.Lat, 'g', -1, 64) + "," + strconv.FormatFloat(l.Lng, 'g', -1, 64)
}

// SameLocations reports whether a and b are the identical ordered sequence.
func SameLocations(a, b []Location) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// HaversineMeters is the great-circle distance in meters between two WGS84 points.
func HaversineMeters(a, b Location) float64 {
	const earthRadiusM = 6_371_000.0
	const deg2rad = math.Pi / 180.0

	dLat := (b.Lat - a.Lat) * deg2rad
	dLng := (b.Lng - a.Lng) * deg2rad

	sinDLat := math.Sin(dLat / 2)
	sinDLng := math.Sin(dLng / 2)
	h := sinDLat*sinDLat + math.Cos(a.Lat*deg2rad)*math.Cos(b.Lat*deg2rad)*sinDLng*sinDLng
	return earthRadiusM * 2 * math.Asin(math.Sqrt(h))
}
