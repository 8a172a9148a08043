package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"spacetime-service/internal/adapters/googleapi"
	"spacetime-service/internal/domain"
	"spacetime-service/internal/platform/obs"
	"time"

	"golang.org/x/time/rate"
)

const (
	// routeMatrixURL is the Google Routes API v2 matrix endpoint.
	routeMatrixURL = "https://routes.googleapis.com/distanceMatrix/v2:computeRouteMatrix"

	// fieldMask restricts the response to the fields the engine reads.
	fieldMask = "originIndex,destinationIndex,duration,distanceMeters,status,condition"

	requestTimeout = 60 * time.Second
)

// GoogleProvider implements ports.RouteMatrixProvider with the Google Routes API.
//
// It issues exactly one HTTP request per call and classifies the outcome;
// retrying on rate limits is the caller's job. It is safe for concurrent use.
type GoogleProvider struct {
	session *http.Client
	apiKey  string
	url     string
	limiter *rate.Limiter
}

type Option func(*GoogleProvider)

// WithURL overrides the endpoint. Used by tests.
func WithURL(url string) Option {
	return func(p *GoogleProvider) { p.url = url }
}

func WithHTTPClient(c *http.Client) Option {
	return func(p *GoogleProvider) { p.session = c }
}

// WithQPS paces outgoing requests to at most qps per second. Zero disables pacing.
func WithQPS(qps float64) Option {
	return func(p *GoogleProvider) {
		if qps > 0 {
			p.limiter = rate.NewLimiter(rate.Limit(qps), 1)
		}
	}
}

func NewGoogleProvider(apiKey string, opts ...Option) (*GoogleProvider, error) {
	if apiKey == "" {
		return nil, errors.New("google routes api key is empty")
	}

	p := &GoogleProvider{
		session: &http.Client{Timeout: requestTimeout},
		apiKey:  apiKey,
		url:     routeMatrixURL,
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

type matrixRequest struct {
	Origins           []matrixWaypoint `json:"origins"`
	Destinations      []matrixWaypoint `json:"destinations"`
	TravelMode        string           `json:"travelMode"`
	RoutingPreference string           `json:"routingPreference,omitempty"`
}

type matrixWaypoint struct {
	Waypoint waypoint `json:"waypoint"`
}

type waypoint struct {
	Location waypointLocation `json:"location"`
}

type waypointLocation struct {
	LatLng latLng `json:"latLng"`
}

type latLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func toWaypoints(locs []domain.Location) []matrixWaypoint {
	out := make([]matrixWaypoint, 0, len(locs))
	for _, l := range locs {
		out = append(out, matrixWaypoint{
			Waypoint: waypoint{Location: waypointLocation{LatLng: latLng{Latitude: l.Lat, Longitude: l.Lng}}},
		})
	}
	return out
}

// newMatrixRequest builds the request body. Driving uses the traffic-unaware
// preference; the traffic-aware ones bill at a higher tier. The preference
// does not apply to transit or walking.
func newMatrixRequest(origins, destinations []domain.Location, mode domain.TravelMode) matrixRequest {
	req := matrixRequest{
		Origins:      toWaypoints(origins),
		Destinations: toWaypoints(destinations),
		TravelMode:   mode.String(),
	}
	if mode == domain.TravelModeDrive {
		req.RoutingPreference = "TRAFFIC_UNAWARE"
	}
	return req
}

// ComputeRouteMatrix requests durations for every origin × destination pair.
func (g *GoogleProvider) ComputeRouteMatrix(
	ctx context.Context,
	origins []domain.Location,
	destinations []domain.Location,
	mode domain.TravelMode,
) (_ domain.SparseMatrix, err error) {
	defer obs.Time(ctx, "routes.ComputeRouteMatrix")(&err)

	if len(origins) == 0 || len(destinations) == 0 {
		return nil, fmt.Errorf("compute route matrix: %w: origins and destinations must be non-empty", domain.ErrInvalidInput)
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("compute route matrix: %w: travel mode %q", domain.ErrInvalidInput, mode)
	}

	payload, err := json.Marshal(newMatrixRequest(origins, destinations, mode))
	if err != nil {
		return nil, fmt.Errorf("marshal matrix request: %w", err)
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("matrix request pacing: %w", err)
		}
	}

	req, err := g.newRequest(ctx, http.MethodPost, g.url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	resp, err := googleapi.Do(g.session, req)
	if err != nil {
		return nil, googleapi.Classify("matrix request", err)
	}
	defer resp.Body.Close()

	var elements domain.SparseMatrix
	if err := json.NewDecoder(resp.Body).Decode(&elements); err != nil {
		return nil, fmt.Errorf("decode matrix response: %w: %v", domain.ErrUpstream, err)
	}

	for _, e := range elements {
		if e.OriginIndex < 0 || e.OriginIndex >= len(origins) ||
			e.DestinationIndex < 0 || e.DestinationIndex >= len(destinations) {
			return nil, fmt.Errorf(
				"matrix response element (%d,%d) out of range for %dx%d request: %w",
				e.OriginIndex, e.DestinationIndex, len(origins), len(destinations), domain.ErrUpstream,
			)
		}
	}

	return elements, nil
}
