package domain

import "testing"

func TestMatrixCacheKeyDeterminism(t *testing.T) {
	origins := []Location{{Lat: 1, Lng: 2}, {Lat: 3, Lng: 4}}
	destinations := []Location{{Lat: 5, Lng: 6}, {Lat: 7, Lng: 8}}

	base := NewMatrixCacheKey(origins, destinations, TravelModeDrive)
	if again := NewMatrixCacheKey(origins, destinations, TravelModeDrive); again != base {
		t.Fatalf("key changed between calls: %s vs %s", base, again)
	}

	changed := []struct {
		name string
		key  CacheKey
	}{
		{
			name: "moved coordinate",
			key:  NewMatrixCacheKey([]Location{{Lat: 1, Lng: 2.000001}, {Lat: 3, Lng: 4}}, destinations, TravelModeDrive),
		},
		{
			name: "reordered destinations",
			key:  NewMatrixCacheKey(origins, []Location{destinations[1], destinations[0]}, TravelModeDrive),
		},
		{
			name: "other mode",
			key:  NewMatrixCacheKey(origins, destinations, TravelModeTransit),
		},
		{
			name: "swapped roles",
			key:  NewMatrixCacheKey(destinations, origins, TravelModeDrive),
		},
	}
	for _, c := range changed {
		if c.key == base {
			t.Fatalf("%s: key unchanged", c.name)
		}
	}
}

func TestGeocodeCacheKeyNamespace(t *testing.T) {
	l := Location{Lat: 1, Lng: 2}
	k := NewGeocodeCacheKey(l)
	if k[:4] != "geo_" {
		t.Fatalf("geocode key %q lacks the geo_ prefix", k)
	}
	if k == NewGeocodeCacheKey(Location{Lat: 2, Lng: 1}) {
		t.Fatalf("distinct locations share a geocode key")
	}
}
