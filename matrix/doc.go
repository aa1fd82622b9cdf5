// SPDX-License-Identifier: MIT

// Package matrix provides the small dense linear-algebra core used by the
// substitution models and the likelihood engine.
//
// The matrix package provides:
//
//   - Dense, a row-major float64 matrix with bounds-checked At/Set and raw
//     Data/Row access for hot loops.
//   - Products and element-wise kernels (Mul, MulTo, Transpose, Hadamard,
//     Scale, MatVec) with strict fail-fast shape validation.
//   - Symmetric eigen-decomposition: EigenSym (LAPACK-style via gonum) and
//     Eigen (cyclic Jacobi rotations, kept as a dependency-free fallback).
//   - Numeric comparison helpers (AllClose, RowSums) used throughout tests.
//
// Matrices here are small (at most 64×64 for codon alphabets) and are
// rebuilt often, so kernels favour flat-slice loops over abstraction.
//
// See example_test.go for usage patterns.
package matrix
