package domain

import (
	"encoding/json"
	"fmt"
)

// DenseMatrix is an n×n table of optional travel durations in seconds.
// Unset cells denote "no known path" and are distinct from 0.
type DenseMatrix struct {
	n     int
	cells []Seconds
	known []bool
}

// NewDenseMatrix returns a matrix with a zero diagonal and every other cell unset.
func NewDenseMatrix(n int) *DenseMatrix {
	m := &DenseMatrix{
		n:     n,
		cells: make([]Seconds, n*n),
		known: make([]bool, n*n),
	}
	for i := 0; i < n; i++ {
		m.known[i*n+i] = true
	}
	return m
}

func (m *DenseMatrix) Size() int { return m.n }

// At returns the duration between i and j and whether it is known.
func (m *DenseMatrix) At(i, j int) (Seconds, bool) {
	k := i*m.n + j
	return m.cells[k], m.known[k]
}

func (m *DenseMatrix) Set(i, j int, v Seconds) {
	k := i*m.n + j
	m.cells[k] = v
	m.known[k] = true
}

// Rows returns the matrix as nested slices with nil for unset cells.
func (m *DenseMatrix) Rows() [][]*int64 {
	out := make([][]*int64, m.n)
	for i := 0; i < m.n; i++ {
		row := make([]*int64, m.n)
		for j := 0; j < m.n; j++ {
			if v, ok := m.At(i, j); ok {
				s := int64(v)
				row[j] = &s
			}
		}
		out[i] = row
	}
	return out
}

// Unreachable counts the off-diagonal cells that remain unset.
func (m *DenseMatrix) Unreachable() int {
	c := 0
	for _, ok := range m.known {
		if !ok {
			c++
		}
	}
	return c
}

func (m *DenseMatrix) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Rows())
}

func (m *DenseMatrix) UnmarshalJSON(b []byte) error {
	var rows [][]*int64
	if err := json.Unmarshal(b, &rows); err != nil {
		return err
	}
	d := NewDenseMatrix(len(rows))
	for i, row := range rows {
		if len(row) != len(rows) {
			return fmt.Errorf("dense matrix: row %d has %d cells, want %d", i, len(row), len(rows))
		}
		for j, v := range row {
			if v != nil {
				d.Set(i, j, Seconds(*v))
			}
		}
	}
	*m = *d
	return nil
}
