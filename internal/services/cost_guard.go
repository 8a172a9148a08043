package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"spacetime-service/internal/domain"
	"spacetime-service/internal/platform/obs"
	"spacetime-service/internal/ports"
)

const (
	// DefaultCostPerElement is the provider price of one matrix element in dollars.
	DefaultCostPerElement = 0.005

	// DefaultCostThreshold is the estimated cost at which queries need approval.
	DefaultCostThreshold = 1.0
)

// CostGuard estimates the billable size of a query and asks its policy for
// approval once the estimate reaches the threshold. Callers gate once per
// logical request, never per tile or row.
type CostGuard struct {
	Rate      float64
	Threshold float64
	Policy    ports.CostPolicy
}

func NewCostGuard(policy ports.CostPolicy) *CostGuard {
	return &CostGuard{
		Rate:      DefaultCostPerElement,
		Threshold: DefaultCostThreshold,
		Policy:    policy,
	}
}

// Estimate prices a query of the given element count. The cost is rounded
// to micro-dollars so that exact multiples of the rate compare exactly.
func (g *CostGuard) Estimate(elements int) ports.CostEstimate {
	cost := math.Round(float64(elements)*g.Rate*1e6) / 1e6
	return ports.CostEstimate{Elements: elements, Cost: cost}
}

// Check returns nil when the query may proceed and an ErrCostRejected error
// when the policy declines it.
func (g *CostGuard) Check(ctx context.Context, elements int) error {
	est := g.Estimate(elements)
	if est.Cost < g.Threshold {
		obs.CostDecisions.WithLabelValues("below_threshold").Inc()
		return nil
	}

	if g.Policy == nil {
		obs.CostDecisions.WithLabelValues("rejected").Inc()
		return fmt.Errorf("cost guard: %d elements at $%.2f: %w: no approval policy", est.Elements, est.Cost, domain.ErrCostRejected)
	}

	ok, err := g.Policy.Decide(ctx, est)
	if err != nil {
		obs.CostDecisions.WithLabelValues("rejected").Inc()
		return fmt.Errorf("cost guard: decide: %w: %v", domain.ErrCostRejected, err)
	}
	if !ok {
		obs.CostDecisions.WithLabelValues("rejected").Inc()
		return fmt.Errorf("cost guard: %d elements at $%.2f: %w", est.Elements, est.Cost, domain.ErrCostRejected)
	}

	obs.CostDecisions.WithLabelValues("approved").Inc()
	log.Printf("req_id=%s cost=approved elements=%d dollars=%.2f", obs.RequestID(ctx), est.Elements, est.Cost)
	return nil
}
