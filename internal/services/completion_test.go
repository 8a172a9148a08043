package services

import (
	"errors"
	"spacetime-service/internal/domain"
	"testing"
)

func edge(i, j int, secs domain.Seconds) domain.RouteMatrixElement {
	return domain.RouteMatrixElement{
		OriginIndex:      i,
		DestinationIndex: j,
		Duration:         secs,
		Condition:        domain.ConditionRouteExists,
	}
}

func mustAt(t *testing.T, m *domain.DenseMatrix, i, j int) domain.Seconds {
	t.Helper()
	v, ok := m.At(i, j)
	if !ok {
		t.Fatalf("m[%d][%d] unset, want a value", i, j)
	}
	return v
}

func TestCompleteDerivesMultiHopPaths(t *testing.T) {
	m, err := Complete(domain.SparseMatrix{edge(0, 1, 10), edge(1, 2, 10)}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := mustAt(t, m, 0, 2); got != 20 {
		t.Fatalf("m[0][2] = %d, want 20", got)
	}
	for i := 0; i < 3; i++ {
		if got := mustAt(t, m, i, i); got != 0 {
			t.Fatalf("m[%d][%d] = %d, want 0", i, i, got)
		}
		for j := 0; j < 3; j++ {
			a, aok := m.At(i, j)
			b, bok := m.At(j, i)
			if a != b || aok != bok {
				t.Fatalf("m[%d][%d] and m[%d][%d] differ", i, j, j, i)
			}
		}
	}
}

func TestCompleteLeavesDisconnectedPairsUnset(t *testing.T) {
	m, err := Complete(domain.SparseMatrix{edge(0, 1, 5)}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := mustAt(t, m, 1, 0); got != 5 {
		t.Fatalf("m[1][0] = %d, want 5", got)
	}
	for _, p := range [][2]int{{0, 2}, {1, 2}, {2, 0}, {2, 1}} {
		if _, ok := m.At(p[0], p[1]); ok {
			t.Fatalf("m[%d][%d] set, want unset", p[0], p[1])
		}
	}
	if m.Unreachable() != 4 {
		t.Fatalf("unreachable = %d, want 4", m.Unreachable())
	}
}

func TestCompletePrefersShorterPaths(t *testing.T) {
	sparse := domain.SparseMatrix{
		edge(0, 3, 100),
		edge(0, 1, 10),
		edge(1, 2, 10),
		edge(2, 3, 10),
		// Measured twice; the smaller duration wins.
		edge(1, 0, 8),
	}

	m, err := Complete(sparse, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := mustAt(t, m, 0, 3); got != 28 {
		t.Fatalf("m[0][3] = %d, want 28", got)
	}
	if got := mustAt(t, m, 0, 1); got != 8 {
		t.Fatalf("m[0][1] = %d, want 8", got)
	}
}

func TestCompleteIgnoresUnroutableElements(t *testing.T) {
	sparse := domain.SparseMatrix{
		{OriginIndex: 0, DestinationIndex: 1, Duration: 7, Condition: domain.ConditionRouteNotFound},
		{OriginIndex: 1, DestinationIndex: 2, Duration: 7, Condition: domain.ConditionRouteExists, Status: domain.ElementStatus{Code: 5}},
	}

	m, err := Complete(sparse, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Unreachable() != 6 {
		t.Fatalf("unreachable = %d, want 6", m.Unreachable())
	}
}

func TestCompleteRejectsOutOfRangeIndices(t *testing.T) {
	_, err := Complete(domain.SparseMatrix{edge(0, 3, 1)}, 3)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}
