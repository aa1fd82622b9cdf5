// SPDX-License-Identifier: MIT

package linesearch_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etetoolkit/ete-sub002/linesearch"
)

func TestMinimize_Quadratic(t *testing.T) {
	res, err := linesearch.Minimize(func(x float64) float64 { return (x - 3) * (x - 3) }, 0, 10)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, res.X, 1e-6)
	assert.InDelta(t, 0.0, res.F, 1e-10)
	assert.Greater(t, res.Evaluations, 1)
}

func TestMinimize_NonQuadraticUnimodal(t *testing.T) {
	// f(x) = x·log(x) has its minimum at 1/e.
	f := func(x float64) float64 { return x * math.Log(x) }
	res, err := linesearch.Minimize(f, 1e-6, 2)
	require.NoError(t, err)
	assert.InDelta(t, 1/math.E, res.X, 1e-6)
	assert.InDelta(t, -1/math.E, res.F, 1e-10)
}

func TestMinimize_MinimumAtBoundary(t *testing.T) {
	// Monotone increasing: the minimizer creeps to the lower end.
	res, err := linesearch.Minimize(func(x float64) float64 { return x }, 0, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, res.X, 1e-6)
}

func TestMinimize_NaNRegionIsAvoided(t *testing.T) {
	f := func(x float64) float64 {
		if x > 5 {
			return math.NaN()
		}
		return (x - 2) * (x - 2)
	}
	res, err := linesearch.Minimize(f, 0, 10)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, res.X, 1e-6)
}

func TestMinimize_BadBracket(t *testing.T) {
	_, err := linesearch.Minimize(func(x float64) float64 { return x }, 1, 1)
	assert.ErrorIs(t, err, linesearch.ErrBadBracket)
	_, err = linesearch.MinimizeBracket(func(x float64) float64 { return x }, 0, 2, 1, 0)
	assert.ErrorIs(t, err, linesearch.ErrBadBracket)
	_, err = linesearch.Minimize(func(x float64) float64 { return x }, math.Inf(-1), 1)
	assert.ErrorIs(t, err, linesearch.ErrBadBracket)
}

func TestMinimize_MaxIterReturnsBest(t *testing.T) {
	f := func(x float64) float64 { return (x - 3) * (x - 3) }
	res, err := linesearch.Minimize(f, 0, 10, linesearch.WithMaxIter(2), linesearch.WithRelTol(1e-15), linesearch.WithAbsTol(1e-15))
	assert.ErrorIs(t, err, linesearch.ErrMaxIter)
	assert.Equal(t, 2, res.Iterations)
	assert.Less(t, res.F, f(0))
}

func TestRoot_Sqrt2(t *testing.T) {
	x, err := linesearch.Root(func(x float64) float64 { return x*x - 2 }, 0, 2)
	require.NoError(t, err)
	assert.InDelta(t, 1.41421356, x, 1e-8)
}

func TestRoot_ReversedBracketAndDecreasing(t *testing.T) {
	x, err := linesearch.Root(func(x float64) float64 { return math.Cos(x) }, 3, 0)
	require.NoError(t, err)
	assert.InDelta(t, math.Pi/2, x, 1e-8)
}

func TestRoot_ExactEndpoint(t *testing.T) {
	x, err := linesearch.Root(func(x float64) float64 { return x - 1 }, 1, 4)
	require.NoError(t, err)
	assert.Equal(t, 1.0, x)
}

func TestRoot_NotBracketed(t *testing.T) {
	_, err := linesearch.Root(func(x float64) float64 { return x*x + 1 }, -1, 1)
	assert.ErrorIs(t, err, linesearch.ErrNotBracketed)
}

func TestRoot_FinalIterationInterpolates(t *testing.T) {
	// One iteration budget: the answer comes from linear interpolation.
	f := func(x float64) float64 { return x - 0.25 }
	x, err := linesearch.Root(f, 0, 1, linesearch.WithMaxIter(1))
	require.NoError(t, err)
	assert.InDelta(t, 0.25, x, 1e-12)
}
