package network

import (
	"fmt"
	"strings"

	apperr "github.com/matzehuels/routesim/pkg/errors"
)

// Matrix is a dense square adjacency matrix indexed by NodeID.
// A zero entry means no edge; a positive entry is the edge weight.
type Matrix [][]int

// NewMatrix returns an n×n matrix of zeros.
func NewMatrix(n int) Matrix {
	m := make(Matrix, n)
	for i := range m {
		m[i] = make([]int, n)
	}
	return m
}

// MatrixFromEdges derives the adjacency matrix of the given undirected edges.
// Edges with an endpoint outside [0, size) are ignored.
func MatrixFromEdges(size int, edges []Edge) Matrix {
	m := NewMatrix(size)
	for _, e := range edges {
		if !inRange(e.Source, size) || !inRange(e.Target, size) {
			continue
		}
		m[e.Source][e.Target] = e.Weight
		m[e.Target][e.Source] = e.Weight
	}
	return m
}

// Size returns the matrix dimension.
func (m Matrix) Size() int { return len(m) }

// Clone returns a deep copy of m.
func (m Matrix) Clone() Matrix {
	if m == nil {
		return nil
	}
	out := make(Matrix, len(m))
	for i, row := range m {
		out[i] = append([]int(nil), row...)
	}
	return out
}

// Equal reports whether m and o have the same shape and entries.
func (m Matrix) Equal(o Matrix) bool {
	if len(m) != len(o) {
		return false
	}
	for i := range m {
		if len(m[i]) != len(o[i]) {
			return false
		}
		for j := range m[i] {
			if m[i][j] != o[i][j] {
				return false
			}
		}
	}
	return true
}

// Symmetric reports whether m[i][j] == m[j][i] for every cell.
// A non-square matrix is never symmetric.
func (m Matrix) Symmetric() bool {
	if m.Validate() != nil {
		return false
	}
	for i := range m {
		for j := i + 1; j < len(m); j++ {
			if m[i][j] != m[j][i] {
				return false
			}
		}
	}
	return true
}

// Validate checks that m is square with entries in [0, MaxWeight].
func (m Matrix) Validate() error {
	n := len(m)
	for i, row := range m {
		if len(row) != n {
			return apperr.New(apperr.ErrCodeInvalidInput, "matrix row %d has %d columns, want %d", i, len(row), n)
		}
		for j, w := range row {
			if w < 0 {
				return apperr.New(apperr.ErrCodeInvalidInput, "negative weight %d at [%d][%d]", w, i, j)
			}
			if w > MaxWeight {
				return apperr.New(apperr.ErrCodeInvalidInput, "weight %d at [%d][%d] exceeds %d", w, i, j, MaxWeight)
			}
		}
	}
	return nil
}

// String renders the matrix as rows of space-separated weights.
func (m Matrix) String() string {
	var b strings.Builder
	for _, row := range m {
		for j, w := range row {
			if j > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%2d", w)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func inRange(id NodeID, size int) bool {
	return id >= 0 && int(id) < size
}
