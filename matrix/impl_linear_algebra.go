// SPDX-License-Identifier: MIT
// Package matrix provides universal operations on Dense matrices:
// products, transpose, element-wise kernels and scalar scaling. All functions
// perform strict fail-fast validation and return clear errors on dimension
// mismatches.
//
// Notes:
//   - Kernels operate on the flat row-major slice; loop orders are fixed
//     (i→k→j for products) so results are reproducible bit-for-bit.
//   - All kernels wrap validator sentinels with matrixErrorf(op*, err).

package matrix

import (
	"fmt"
	"math"
)

// Operation name constants for unified error wrapping and reducing magic strings.
const (
	opMul       = "Mul"
	opMulTo     = "MulTo"
	opTranspose = "Transpose"
	opScale     = "Scale"
	opHadamard  = "Hadamard"
	opMatVec    = "MatVec"
	opAllClose  = "AllClose"
	opIdentity  = "NewIdentity"
)

// matrixErrorf wraps err with an operation tag, preserving the original error via %w.
// Use only when err != nil.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// NewIdentity returns I_n (n×n identity).
// Complexity: O(n²) zeroing + O(n) diagonal writes.
func NewIdentity(n int) (*Dense, error) {
	I, err := NewDense(n, n)
	if err != nil {
		return nil, matrixErrorf(opIdentity, err)
	}
	for i := 0; i < n; i++ {
		I.data[i*n+i] = 1.0
	}

	return I, nil
}

// Mul returns the matrix product a × b as a fresh Dense.
//
// Implementation:
//   - Stage 1: ValidateMulCompatible(a, b); allocate out (a.Rows × b.Cols).
//   - Stage 2: MulTo(out, a, b).
//
// Complexity:
//   - Time O(r*n*c), Space O(r*c).
func Mul(a, b *Dense) (*Dense, error) {
	if err := ValidateMulCompatible(a, b); err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	out, err := NewDense(a.r, b.c)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	mulInto(out, a, b)

	return out, nil
}

// MulTo computes dst = a × b without allocating. dst must not alias a or b.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch (wrapped with "MulTo").
//
// Complexity:
//   - Time O(r*n*c), Space O(1).
func MulTo(dst, a, b *Dense) error {
	if err := ValidateMulCompatible(a, b); err != nil {
		return matrixErrorf(opMulTo, err)
	}
	if err := ValidateNotNil(dst); err != nil {
		return matrixErrorf(opMulTo, err)
	}
	if dst.r != a.r || dst.c != b.c {
		return matrixErrorf(opMulTo, ErrDimensionMismatch)
	}
	mulInto(dst, a, b)

	return nil
}

// mulInto is the shared i→k→j product loop; shapes are pre-validated.
func mulInto(dst, a, b *Dense) {
	n, c := a.c, b.c
	dst.Zero()
	var aik float64
	for i := 0; i < a.r; i++ {
		out := dst.data[i*c : (i+1)*c]
		for k := 0; k < n; k++ {
			aik = a.data[i*n+k]
			if aik == 0 {
				continue // sparse rows are common in rate matrices
			}
			row := b.data[k*c : (k+1)*c]
			for j, bkj := range row {
				out[j] += aik * bkj
			}
		}
	}
}

// Transpose returns mᵀ as a fresh Dense.
// Complexity: O(r*c).
func Transpose(m *Dense) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}
	out, err := NewDense(m.c, m.r)
	if err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}
	for i := 0; i < m.r; i++ {
		for j := 0; j < m.c; j++ {
			out.data[j*m.r+i] = m.data[i*m.c+j]
		}
	}

	return out, nil
}

// Scale returns alpha*m as a fresh Dense.
// Complexity: O(r*c).
func Scale(m *Dense, alpha float64) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opScale, err)
	}
	out := m.CloneDense()
	for i := range out.data {
		out.data[i] *= alpha
	}

	return out, nil
}

// Hadamard returns the element-wise product a ⊙ b.
// Complexity: O(r*c).
func Hadamard(a, b *Dense) (*Dense, error) {
	if err := ValidateBinarySameShape(a, b); err != nil {
		return nil, matrixErrorf(opHadamard, err)
	}
	out := a.CloneDense()
	for i, v := range b.data {
		out.data[i] *= v
	}

	return out, nil
}

// MatVec returns y = m·x.
// Complexity: O(r*c).
func MatVec(m *Dense, x []float64) ([]float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	if err := ValidateVecLen(x, m.c); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	y := make([]float64, m.r)
	var sum float64
	for i := 0; i < m.r; i++ {
		sum = 0
		for j, v := range m.data[i*m.c : (i+1)*m.c] {
			sum += v * x[j]
		}
		y[i] = sum
	}

	return y, nil
}

// RowSums returns r where r[i] = Σ_j m[i,j].
// Used by Markov-generator and stochastic-matrix invariants.
// Complexity: O(r*c).
func RowSums(m *Dense) ([]float64, error) {
	ones := make([]float64, m.c)
	for j := range ones {
		ones[j] = 1.0
	}

	return MatVec(m, ones)
}

// AllClose checks element-wise |a-b| ≤ atol + rtol*|b| for identical shapes.
// NaN never compares close. Negative tolerances are normalized to |tol|.
// Complexity: O(r*c).
//
// AI-Hints:
//   - AllClose with small atol/rtol is ideal for invariance tests in unit tests.
func AllClose(a, b *Dense, rtol, atol float64) (bool, error) {
	if math.IsNaN(rtol) || math.IsNaN(atol) || math.IsInf(rtol, 0) || math.IsInf(atol, 0) {
		return false, matrixErrorf(opAllClose, ErrNaNInf)
	}
	if err := ValidateBinarySameShape(a, b); err != nil {
		return false, matrixErrorf(opAllClose, err)
	}
	rtol, atol = math.Abs(rtol), math.Abs(atol)
	for i, av := range a.data {
		bv := b.data[i]
		if !(math.Abs(av-bv) <= atol+rtol*math.Abs(bv)) {
			return false, nil // early-exit on first violation (NaN lands here too)
		}
	}

	return true, nil
}
