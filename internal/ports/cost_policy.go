package ports

import "context"

// CostEstimate describes the billable size of a prospective query.
type CostEstimate struct {
	Elements int
	Cost     float64
}

// CostPolicy decides whether an expensive query may proceed.
// A CLI binds it to a terminal prompt; the service binds it to a hard limit.
type CostPolicy interface {
	Decide(ctx context.Context, estimate CostEstimate) (bool, error)
}
