package services

import (
	"context"
	"spacetime-service/internal/adapters/cache"
	"spacetime-service/internal/adapters/routes"
	"spacetime-service/internal/domain"
	"spacetime-service/internal/ports"
	"sync"
)

// countingPolicy approves or declines every query and records estimates.
type countingPolicy struct {
	mu        sync.Mutex
	approve   bool
	estimates []ports.CostEstimate
}

func (p *countingPolicy) Decide(_ context.Context, est ports.CostEstimate) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.estimates = append(p.estimates, est)
	return p.approve, nil
}

func (p *countingPolicy) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.estimates)
}

// line returns n distinct locations about 100 m apart going east.
func line(n int) []domain.Location {
	out := make([]domain.Location, n)
	for i := range out {
		out[i] = domain.Location{Lat: 47.6062, Lng: -122.3321 + 0.0013*float64(i)}
	}
	return out
}

func newTestClient(provider ports.RouteMatrixProvider, policy ports.CostPolicy) (*MatrixClient, *cache.ResultCache) {
	rc := cache.NewResultCache(cache.NewMemoryStore())
	c := NewMatrixClient(provider, rc, NewCostGuard(policy), WithRetry(DefaultMaxAttempts, 0))
	return c, rc
}

// pairCounts tallies how many elements cover each (origin, destination) pair.
func pairCounts(m domain.SparseMatrix) map[[2]int]int {
	out := make(map[[2]int]int, len(m))
	for _, e := range m {
		out[[2]int{e.OriginIndex, e.DestinationIndex}]++
	}
	return out
}

var _ ports.RouteMatrixProvider = (*routes.MockProvider)(nil)
