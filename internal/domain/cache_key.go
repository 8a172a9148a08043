package domain

import (
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// CacheKey fingerprints the exact inputs that produced a cached result.
type CacheKey string

// matrixKeyInputs is serialized with fields in lexical order so the canonical
// form is stable across releases.
type matrixKeyInputs struct {
	Destinations []string `json:"destinations"`
	Origins      []string `json:"origins"`
	TravelMode   string   `json:"travel_mode"`
}

// NewMatrixCacheKey derives the key for a route matrix query.
// The key is order-sensitive: reordering either list yields a different key.
func NewMatrixCacheKey(origins, destinations []Location, mode TravelMode) CacheKey {
	in := matrixKeyInputs{
		Destinations: locationStrings(destinations),
		Origins:      locationStrings(origins),
		TravelMode:   mode.String(),
	}
	return hashKey("", in)
}

// NewGeocodeCacheKey derives the key for a reverse-geocoding lookup.
func NewGeocodeCacheKey(l Location) CacheKey {
	return hashKey("geo_", struct {
		Location string `json:"location"`
	}{Location: l.String()})
}

func hashKey(prefix string, v any) CacheKey {
	// Marshalling plain strings and slices cannot fail.
	b, _ := json.Marshal(v)
	return CacheKey(fmt.Sprintf("%s%016x", prefix, xxhash.Sum64(b)))
}

func locationStrings(locs []Location) []string {
	out := make([]string, 0, len(locs))
	for _, l := range locs {
		out = append(out, l.String())
	}
	return out
}
