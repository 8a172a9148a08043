package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheLookups counts result cache reads by outcome: hit, miss, expired, corrupt.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "spacetime",
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Result cache lookups by outcome.",
	}, []string{"outcome"})

	// CacheWrites counts result cache writes by outcome: ok, error.
	CacheWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "spacetime",
		Subsystem: "cache",
		Name:      "writes_total",
		Help:      "Result cache writes by outcome.",
	}, []string{"outcome"})

	CacheSwept = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "spacetime",
		Subsystem: "cache",
		Name:      "swept_entries_total",
		Help:      "Entries removed by cache sweeps.",
	})

	// ProviderAttempts counts routing provider calls by travel mode and outcome:
	// ok, rate_limited, error.
	ProviderAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "spacetime",
		Subsystem: "provider",
		Name:      "attempts_total",
		Help:      "Route matrix provider attempts.",
	}, []string{"mode", "outcome"})

	ProviderElements = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "spacetime",
		Subsystem: "provider",
		Name:      "elements_total",
		Help:      "Billable matrix elements successfully fetched.",
	}, []string{"mode"})

	// CostDecisions counts cost gate outcomes: below_threshold, approved, rejected.
	CostDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "spacetime",
		Subsystem: "cost",
		Name:      "decisions_total",
		Help:      "Cost guard decisions.",
	}, []string{"decision"})
)
