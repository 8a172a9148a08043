package services

import (
	"context"
	"errors"
	"spacetime-service/internal/adapters/routes"
	"spacetime-service/internal/domain"
	"testing"
)

func TestSparsifierSelfMatrixQueriesUpperTriangle(t *testing.T) {
	provider := routes.NewMockProvider()
	c, _ := newTestClient(provider, AutoApprove{})
	s := NewSparsifier(c, 3)

	const n = 8
	locs := line(n)

	got, err := s.QuerySparse(context.Background(), locs, locs, domain.TravelModeWalk, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) != n*(n-1)/2 {
		t.Fatalf("elements = %d, want %d", len(got), n*(n-1)/2)
	}
	for pair, count := range pairCounts(got) {
		if pair[0] >= pair[1] {
			t.Fatalf("pair (%d,%d) is not above the diagonal", pair[0], pair[1])
		}
		if count != 1 {
			t.Fatalf("pair (%d,%d) covered %d times, want 1", pair[0], pair[1], count)
		}
	}

	// The last row has nothing above the diagonal and is skipped.
	calls := provider.Calls()
	if len(calls) != n-1 {
		t.Fatalf("provider calls = %d, want %d", len(calls), n-1)
	}
	for _, call := range calls {
		if len(call.Origins) != 1 {
			t.Fatalf("row call has %d origins, want 1", len(call.Origins))
		}
	}
}

func TestSparsifierRebasesIndices(t *testing.T) {
	provider := routes.NewMockProvider()
	c, _ := newTestClient(provider, AutoApprove{})
	s := NewSparsifier(c, 2)

	origins, destinations := line(4), line(9)
	// Every third destination only.
	include := func(a, b domain.Location) bool {
		for j, d := range destinations {
			if d == b {
				return j%3 == 0
			}
		}
		return false
	}

	got, err := s.QuerySparse(context.Background(), origins, destinations, domain.TravelModeDrive, include)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 4*3 {
		t.Fatalf("elements = %d, want 12", len(got))
	}
	for _, e := range got {
		if e.DestinationIndex%3 != 0 {
			t.Fatalf("unexpected destination %d", e.DestinationIndex)
		}
		meters := domain.HaversineMeters(origins[e.OriginIndex], destinations[e.DestinationIndex])
		if diff := float64(e.DistanceMeters) - meters; diff > 1 || diff < -1 {
			t.Fatalf("element (%d,%d) distance = %d, want %.0f", e.OriginIndex, e.DestinationIndex, e.DistanceMeters, meters)
		}
	}
}

func TestSparsifierNothingSelected(t *testing.T) {
	provider := routes.NewMockProvider()
	c, _ := newTestClient(provider, AutoApprove{})
	s := NewSparsifier(c, 1)

	none := func(a, b domain.Location) bool { return false }
	_, err := s.QuerySparse(context.Background(), line(3), line(3), domain.TravelModeWalk, none)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}

	// A single location paired with itself has nothing above the diagonal.
	_, err = s.QuerySparse(context.Background(), line(1), line(1), domain.TravelModeWalk, nil)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if n := len(provider.Calls()); n != 0 {
		t.Fatalf("provider calls = %d, want 0", n)
	}
}

func TestSparsifierGatesOnceOnIncludedCount(t *testing.T) {
	provider := routes.NewMockProvider()
	policy := &countingPolicy{approve: true}
	c, _ := newTestClient(provider, policy)
	s := NewSparsifier(c, 4)

	// 21 locations: 210 pairs above the diagonal, enough to reach $1.
	locs := line(21)
	if _, err := s.QuerySparse(context.Background(), locs, locs, domain.TravelModeDrive, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if policy.calls() != 1 {
		t.Fatalf("cost decisions = %d, want 1", policy.calls())
	}
	if policy.estimates[0].Elements != 210 {
		t.Fatalf("gated elements = %d, want 210", policy.estimates[0].Elements)
	}
}

func TestSparsifierSplitsLongRows(t *testing.T) {
	provider := routes.NewMockProvider()
	c, _ := newTestClient(provider, AutoApprove{})
	s := NewSparsifier(c, 2)

	origins, destinations := line(1), line(250)
	got, err := s.QuerySparse(context.Background(), origins, destinations, domain.TravelModeTransit, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	counts := pairCounts(got)
	if len(counts) != 250 {
		t.Fatalf("distinct pairs = %d, want 250", len(counts))
	}
	for j := 0; j < 250; j++ {
		if counts[[2]int{0, j}] != 1 {
			t.Fatalf("pair (0,%d) covered %d times, want 1", j, counts[[2]int{0, j}])
		}
	}

	calls := provider.Calls()
	if len(calls) != 3 {
		t.Fatalf("provider calls = %d, want 3", len(calls))
	}
	for _, call := range calls {
		if n := len(call.Origins) * len(call.Destinations); n > domain.TravelModeTransit.MaxElements() {
			t.Fatalf("call carries %d elements, want at most %d", n, domain.TravelModeTransit.MaxElements())
		}
	}
}
