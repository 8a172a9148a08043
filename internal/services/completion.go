package services

import (
	"fmt"
	"spacetime-service/internal/domain"
)

// Complete fills an n×n travel time matrix from sparse measurements.
//
// Every routable element is recorded in both directions, keeping the
// smaller duration when a pair was measured more than once. Missing pairs
// are then derived by Floyd-Warshall relaxation. Pairs with no connecting
// path stay unset.
func Complete(sparse domain.SparseMatrix, n int) (*domain.DenseMatrix, error) {
	if n < 0 {
		return nil, fmt.Errorf("complete: %w: negative size %d", domain.ErrInvalidInput, n)
	}

	m := domain.NewDenseMatrix(n)

	for _, e := range sparse {
		if !e.Routable() {
			continue
		}
		i, j := e.OriginIndex, e.DestinationIndex
		if i < 0 || i >= n || j < 0 || j >= n {
			return nil, fmt.Errorf("complete: %w: element (%d,%d) outside %dx%d matrix", domain.ErrInvalidInput, i, j, n, n)
		}
		if i == j {
			continue
		}
		if cur, ok := m.At(i, j); ok && cur <= e.Duration {
			continue
		}
		m.Set(i, j, e.Duration)
		m.Set(j, i, e.Duration)
	}

	for k := 0; k < n; k++ {
		for i := 0; i < n; i++ {
			ik, ok := m.At(i, k)
			if !ok {
				continue
			}
			for j := 0; j < n; j++ {
				kj, ok := m.At(k, j)
				if !ok {
					continue
				}
				if cur, ok := m.At(i, j); !ok || ik+kj < cur {
					m.Set(i, j, ik+kj)
				}
			}
		}
	}

	return m, nil
}
