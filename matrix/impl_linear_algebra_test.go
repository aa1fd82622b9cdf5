// SPDX-License-Identifier: MIT

// Package matrix_test contains unit tests for the dense linear algebra kernels.
package matrix_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etetoolkit/ete-sub002/matrix"
)

func TestMul_Correctness(t *testing.T) {
	a := MustFrom(t, [][]float64{{1, 2, 3}, {4, 5, 6}})
	b := MustFrom(t, [][]float64{{7, 8}, {9, 10}, {11, 12}})
	got, err := matrix.Mul(a, b)
	require.NoError(t, err)
	assert.Equal(t, []float64{58, 64, 139, 154}, got.Data())
}

func TestMul_DimensionMismatch(t *testing.T) {
	a := MustDense(t, 2, 3)
	_, err := matrix.Mul(a, a)
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

func TestMulTo_ShapeChecks(t *testing.T) {
	a := MustFrom(t, [][]float64{{1, 2}, {3, 4}})
	dst := MustDense(t, 2, 2)
	require.NoError(t, matrix.MulTo(dst, a, a))
	assert.Equal(t, []float64{7, 10, 15, 22}, dst.Data())

	wrong := MustDense(t, 3, 2)
	assert.ErrorIs(t, matrix.MulTo(wrong, a, a), matrix.ErrDimensionMismatch)
}

func TestTranspose_Involution(t *testing.T) {
	m := MustFrom(t, [][]float64{{1, 2, 3}, {4, 5, 6}})
	mt, err := matrix.Transpose(m)
	require.NoError(t, err)
	assert.Equal(t, 3, mt.Rows())
	mtt, err := matrix.Transpose(mt)
	require.NoError(t, err)
	assert.Equal(t, m.Data(), mtt.Data())
}

func TestScaleHadamardMatVec(t *testing.T) {
	m := MustFrom(t, [][]float64{{1, -2}, {3, 4}})

	s, err := matrix.Scale(m, -0.5)
	require.NoError(t, err)
	assert.Equal(t, []float64{-0.5, 1, -1.5, -2}, s.Data())

	h, err := matrix.Hadamard(m, m)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 4, 9, 16}, h.Data())

	y, err := matrix.MatVec(m, []float64{1, 1})
	require.NoError(t, err)
	assert.Equal(t, []float64{-1, 7}, y)

	_, err = matrix.MatVec(m, []float64{1})
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)

	rs, err := matrix.RowSums(m)
	require.NoError(t, err)
	assert.Equal(t, []float64{-1, 7}, rs)
}

func TestAllClose(t *testing.T) {
	a := MustFrom(t, [][]float64{{1, 2}, {3, 4}})
	b := MustFrom(t, [][]float64{{1 + 1e-12, 2}, {3, 4 - 1e-12}})
	ok, err := matrix.AllClose(a, b, 0, 1e-10)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, b.Set(0, 0, math.NaN()))
	ok, err = matrix.AllClose(a, b, 0, 1e-10)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = matrix.AllClose(a, b, math.Inf(1), 0)
	assert.ErrorIs(t, err, matrix.ErrNaNInf)
}

func TestEigen_Jacobi_Reconstructs(t *testing.T) {
	A := RandomSymmetric(t, 6, 7)
	vals, V, err := matrix.Eigen(A, 1e-12, 10000)
	require.NoError(t, err)
	ok, err := matrix.AllClose(Reconstruct(t, vals, V), A, 0, 1e-9)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEigen_FallbackPath_ViaHiddenType(t *testing.T) {
	A := RandomSymmetric(t, 4, 3)
	vals, V, err := matrix.Eigen(hide{A}, 1e-12, 10000)
	require.NoError(t, err)
	ok, _ := matrix.AllClose(Reconstruct(t, vals, V), A, 0, 1e-9)
	assert.True(t, ok)
}

func TestEigen_Asymmetric(t *testing.T) {
	A := MustFrom(t, [][]float64{{1, 2}, {0, 1}})
	_, _, err := matrix.Eigen(A, 1e-12, 100)
	assert.ErrorIs(t, err, matrix.ErrAsymmetry)
	_, _, err = matrix.EigenSym(A, 1e-12)
	assert.ErrorIs(t, err, matrix.ErrAsymmetry)
}

func TestEigenSym_MatchesJacobi(t *testing.T) {
	const n = 20
	A := RandomSymmetric(t, n, 11)

	vals, V, err := matrix.EigenSym(A, matrix.DefaultEpsilon)
	require.NoError(t, err)
	for i := 1; i < n; i++ {
		assert.LessOrEqual(t, vals[i-1], vals[i], "eigenvalues must be ascending")
	}
	ok, err := matrix.AllClose(Reconstruct(t, vals, V), A, 0, 1e-9)
	require.NoError(t, err)
	assert.True(t, ok)

	jvals, _, err := matrix.Eigen(A, 1e-13, 100000)
	require.NoError(t, err)
	sum, jsum := 0.0, 0.0
	for i := range vals {
		sum += vals[i]
		jsum += jvals[i]
	}
	assert.InDelta(t, jsum, sum, 1e-9, "trace must agree between backends")
}

func TestEigenSym_Orthonormal(t *testing.T) {
	A := RandomSymmetric(t, 8, 5)
	_, V, err := matrix.EigenSym(A, matrix.DefaultEpsilon)
	require.NoError(t, err)
	Vt, err := matrix.Transpose(V)
	require.NoError(t, err)
	VtV, err := matrix.Mul(Vt, V)
	require.NoError(t, err)
	I, err := matrix.NewIdentity(8)
	require.NoError(t, err)
	ok, _ := matrix.AllClose(VtV, I, 0, 1e-10)
	assert.True(t, ok)
}
