// SPDX-License-Identifier: MIT
// Package matrix_test contains test helpers
//
// Purpose:
//   • Provide small, deterministic test fixtures and utilities for kernels.
//   • Keep all data finite and well-formed.

package matrix_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/etetoolkit/ete-sub002/matrix"
)

// hide wraps any Matrix to hide its concrete type from type assertions.
type hide struct{ matrix.Matrix }

// MustDense allocates an r×c *Dense or fails the test.
func MustDense(t *testing.T, r, c int) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDense(r, c)
	require.NoError(t, err)

	return m
}

// MustFrom builds a Dense from literal rows or fails the test.
func MustFrom(t *testing.T, rows [][]float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDenseFrom(rows)
	require.NoError(t, err)

	return m
}

// RandomSymmetric fills an n×n symmetric matrix from a fixed seed.
func RandomSymmetric(t *testing.T, n int, seed int64) *matrix.Dense {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	m := MustDense(t, n, n)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := rng.Float64()*2 - 1
			require.NoError(t, m.Set(i, j, v))
			require.NoError(t, m.Set(j, i, v))
		}
	}

	return m
}

// Reconstruct returns V·diag(vals)·Vᵀ.
func Reconstruct(t *testing.T, vals []float64, V *matrix.Dense) *matrix.Dense {
	t.Helper()
	n := len(vals)
	D := MustDense(t, n, n)
	for i, v := range vals {
		require.NoError(t, D.Set(i, i, v))
	}
	VD, err := matrix.Mul(V, D)
	require.NoError(t, err)
	Vt, err := matrix.Transpose(V)
	require.NoError(t, err)
	out, err := matrix.Mul(VD, Vt)
	require.NoError(t, err)

	return out
}
