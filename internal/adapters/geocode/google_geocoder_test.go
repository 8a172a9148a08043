package geocode

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"spacetime-service/internal/adapters/cache"
	"spacetime-service/internal/domain"
	"sync/atomic"
	"testing"
)

var lakeShore = domain.Location{Lat: 41.8902, Lng: -87.6094}

const geocodeBody = `{
  "status": "OK",
  "results": [
    {"place_id": "poi", "types": ["point_of_interest"], "geometry": {"location": {"lat": 41.9, "lng": -87.6}}},
    {"place_id": "addr", "types": ["street_address"], "geometry": {"location": {"lat": 41.891, "lng": -87.611}}},
    {"place_id": "road", "types": ["route"], "geometry": {"location": {"lat": 41.8905, "lng": -87.6101}}}
  ]
}`

func newTestGeocoder(t *testing.T, h http.HandlerFunc) *GoogleGeocoder {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	g, err := NewGoogleGeocoder("test-key", WithURL(srv.URL))
	if err != nil {
		t.Fatalf("new geocoder: %v", err)
	}
	return g
}

func TestReverseGeocodePrefersRoute(t *testing.T) {
	g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("latlng"); got != lakeShore.String() {
			t.Errorf("latlng = %q, want %q", got, lakeShore.String())
		}
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("key = %q, want test-key", got)
		}
		io.WriteString(w, geocodeBody)
	})

	got, err := g.ReverseGeocode(context.Background(), lakeShore)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.PlaceID != "road" {
		t.Fatalf("place_id = %q, want road", got.PlaceID)
	}
	if got.Location.Lat != 41.8905 || got.Location.Lng != -87.6101 {
		t.Fatalf("location = %v", got.Location)
	}
}

func TestReverseGeocodeFailures(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "zero results", status: 200, body: `{"status":"ZERO_RESULTS","results":[]}`, wantErr: domain.ErrNoCandidate},
		{name: "no matching type", status: 200, body: `{"status":"OK","results":[{"place_id":"x","types":["country"]}]}`, wantErr: domain.ErrNoCandidate},
		{name: "over query limit", status: 200, body: `{"status":"OVER_QUERY_LIMIT"}`, wantErr: domain.ErrRateLimited},
		{name: "denied", status: 200, body: `{"status":"REQUEST_DENIED","error_message":"bad key"}`, wantErr: domain.ErrUpstream},
		{name: "bad request", status: 400, body: `nope`, wantErr: domain.ErrUpstream},
		{name: "too many requests", status: 429, body: `slow down`, wantErr: domain.ErrRateLimited},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				io.WriteString(w, tc.body)
			})

			_, err := g.ReverseGeocode(context.Background(), lakeShore)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestReverseGeocodeRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, geocodeBody)
	})

	if _, err := g.ReverseGeocode(context.Background(), lakeShore); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("calls = %d, want 2", calls.Load())
	}
}

func TestCachedGeocoder(t *testing.T) {
	var calls atomic.Int32
	g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		io.WriteString(w, geocodeBody)
	})

	c := NewCachedGeocoder(g, cache.NewResultCache(cache.NewMemoryStore()), 0)

	for i := 0; i < 3; i++ {
		got, err := c.ReverseGeocode(context.Background(), lakeShore)
		if err != nil {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
		if got.PlaceID != "road" {
			t.Fatalf("call %d: place_id = %q, want road", i, got.PlaceID)
		}
	}
	if calls.Load() != 1 {
		t.Fatalf("upstream calls = %d, want 1", calls.Load())
	}
}

func TestCachedGeocoderDoesNotCacheFailures(t *testing.T) {
	var calls atomic.Int32
	g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		io.WriteString(w, `{"status":"ZERO_RESULTS"}`)
	})

	c := NewCachedGeocoder(g, cache.NewResultCache(cache.NewMemoryStore()), 0)
	for i := 0; i < 2; i++ {
		if _, err := c.ReverseGeocode(context.Background(), lakeShore); !errors.Is(err, domain.ErrNoCandidate) {
			t.Fatalf("err = %v, want ErrNoCandidate", err)
		}
	}
	if calls.Load() != 2 {
		t.Fatalf("upstream calls = %d, want 2", calls.Load())
	}
}
