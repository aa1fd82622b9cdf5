// SPDX-License-Identifier: MIT

// Package matrix: the public Matrix interface and shared numeric defaults.
package matrix

// DefaultEpsilon is the structural tolerance used by symmetry checks when
// callers have no better estimate of the data scale.
const DefaultEpsilon = 1e-9

// Default Jacobi policy used by EigenSym when it falls back to Eigen.
const (
	DefaultJacobiTol     = 1e-13
	DefaultJacobiMaxIter = 200000
)

// Matrix represents a two-dimensional mutable array of float64 values.
//
// Complexity notes: all methods are expected O(1) except Clone (O(r*c)).
type Matrix interface {
	// Rows returns the number of rows in the matrix.
	Rows() int

	// Cols returns the number of columns in the matrix.
	Cols() int

	// At retrieves the element at position (i, j).
	// Returns ErrOutOfRange if i<0, i>=Rows(), j<0 or j>=Cols().
	At(i, j int) (float64, error)

	// Set assigns the value v at position (i, j).
	// Returns ErrOutOfRange if indices are invalid.
	Set(i, j int, v float64) error

	// Clone returns a deep copy of the matrix.
	// The returned Matrix is independent of the original.
	Clone() Matrix
}
