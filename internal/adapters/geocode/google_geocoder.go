package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"spacetime-service/internal/adapters/googleapi"
	"spacetime-service/internal/domain"
	"spacetime-service/internal/platform/obs"
	"time"
)

const reverseGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

// SnapTypes is the feature type priority used when choosing among candidates.
// "route" ranks first: street addresses sometimes resolve into water.
var SnapTypes = []string{"route", "street_address", "point_of_interest"}

// GoogleGeocoder implements ports.ReverseGeocoder with the Google Geocoding API.
// It is safe for concurrent use.
type GoogleGeocoder struct {
	session *http.Client
	apiKey  string
	url     string
}

type Option func(*GoogleGeocoder)

// WithURL overrides the endpoint. Used by tests.
func WithURL(u string) Option {
	return func(g *GoogleGeocoder) { g.url = u }
}

func NewGoogleGeocoder(apiKey string, opts ...Option) (*GoogleGeocoder, error) {
	if apiKey == "" {
		return nil, errors.New("google geocoding api key is empty")
	}

	g := &GoogleGeocoder{
		session: &http.Client{Timeout: 10 * time.Second},
		apiKey:  apiKey,
		url:     reverseGeocodeURL,
	}
	for _, o := range opts {
		o(g)
	}
	return g, nil
}

type geocodeResponse struct {
	Status       string          `json:"status"`
	ErrorMessage string          `json:"error_message"`
	Results      []geocodeResult `json:"results"`
}

type geocodeResult struct {
	PlaceID  string   `json:"place_id"`
	Types    []string `json:"types"`
	Geometry struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}

// ReverseGeocode resolves loc to the closest routable feature.
func (g *GoogleGeocoder) ReverseGeocode(
	ctx context.Context,
	loc domain.Location,
) (_ domain.ResolvedLocation, err error) {
	defer obs.Time(ctx, "geocode.ReverseGeocode")(&err)

	resp, err := googleapi.DoWithRetry(ctx, g.session, googleapi.DefaultBackoff, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.url, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		q := url.Values{}
		q.Set("latlng", loc.String())
		q.Set("key", g.apiKey)
		req.URL.RawQuery = q.Encode()
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return domain.ResolvedLocation{}, googleapi.Classify("reverse geocode "+loc.String(), err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.ResolvedLocation{}, fmt.Errorf("decode geocode response: %w: %v", domain.ErrUpstream, err)
	}

	switch decoded.Status {
	case "OK":
	case "ZERO_RESULTS":
		return domain.ResolvedLocation{}, fmt.Errorf("reverse geocode %s: %w", loc, domain.ErrNoCandidate)
	case "OVER_QUERY_LIMIT":
		return domain.ResolvedLocation{}, fmt.Errorf("reverse geocode %s: %w", loc, domain.ErrRateLimited)
	default:
		return domain.ResolvedLocation{}, fmt.Errorf(
			"reverse geocode %s: %w: status %s %s", loc, domain.ErrUpstream, decoded.Status, decoded.ErrorMessage,
		)
	}

	best, ok := pick(decoded.Results)
	if !ok {
		return domain.ResolvedLocation{}, fmt.Errorf("reverse geocode %s: %w", loc, domain.ErrNoCandidate)
	}

	return domain.ResolvedLocation{
		Location: domain.Location{Lat: best.Geometry.Location.Lat, Lng: best.Geometry.Location.Lng},
		PlaceID:  best.PlaceID,
		Types:    best.Types,
	}, nil
}

// pick returns the first candidate of the highest priority type present.
func pick(results []geocodeResult) (geocodeResult, bool) {
	for _, t := range SnapTypes {
		for _, r := range results {
			if slices.Contains(r.Types, t) {
				return r, true
			}
		}
	}
	return geocodeResult{}, false
}
