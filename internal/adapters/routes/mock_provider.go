package routes

import (
	"context"
	"fmt"
	"math"
	"spacetime-service/internal/domain"
	"sync"
)

// MockCall records one ComputeRouteMatrix invocation.
type MockCall struct {
	Origins      []domain.Location
	Destinations []domain.Location
	Mode         domain.TravelMode
}

// MockProvider answers route matrix requests from straight-line distances at
// the travel mode's nominal speed. It backs local runs without an API key and
// the engine tests.
type MockProvider struct {
	mu    sync.Mutex
	calls []MockCall

	// RateLimitFirst makes the first N calls fail as rate limited.
	RateLimitFirst int
	// Fail, when set, is returned by every call after the rate-limited ones.
	Fail error
	// Unreachable marks pairs that have no route.
	Unreachable func(a, b domain.Location) bool
}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (p *MockProvider) ComputeRouteMatrix(
	ctx context.Context,
	origins []domain.Location,
	destinations []domain.Location,
	mode domain.TravelMode,
) (domain.SparseMatrix, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.calls = append(p.calls, MockCall{
		Origins:      append([]domain.Location(nil), origins...),
		Destinations: append([]domain.Location(nil), destinations...),
		Mode:         mode,
	})
	n := len(p.calls)
	p.mu.Unlock()

	if n <= p.RateLimitFirst {
		return nil, fmt.Errorf("mock matrix call %d: %w", n, domain.ErrRateLimited)
	}
	if p.Fail != nil {
		return nil, p.Fail
	}

	speed := float64(mode.NominalSpeedKmh()) / 3.6
	out := make(domain.SparseMatrix, 0, len(origins)*len(destinations))
	for i, o := range origins {
		for j, d := range destinations {
			e := domain.RouteMatrixElement{OriginIndex: i, DestinationIndex: j}
			if p.Unreachable != nil && p.Unreachable(o, d) {
				e.Condition = domain.ConditionRouteNotFound
				out = append(out, e)
				continue
			}
			meters := domain.HaversineMeters(o, d)
			e.DistanceMeters = int(math.Round(meters))
			e.Duration = domain.Seconds(math.Round(meters / speed))
			e.Condition = domain.ConditionRouteExists
			out = append(out, e)
		}
	}
	return out, nil
}

// Calls returns the recorded invocations.
func (p *MockProvider) Calls() []MockCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]MockCall(nil), p.calls...)
}
