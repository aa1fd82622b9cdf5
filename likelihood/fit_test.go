// SPDX-License-Identifier: MIT

package likelihood_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etetoolkit/ete-sub002/alignment"
	"github.com/etetoolkit/ete-sub002/likelihood"
	"github.com/etetoolkit/ete-sub002/model"
	"github.com/etetoolkit/ete-sub002/optim"
)

// twentySites differ at columns 1, 13, 15, 17 and 19, so the JC distance is
// −¾·ln(1 − 4/3·¼).
var twentySites = [2]string{
	"ACGTACGTACGTACGTACGT",
	"AAGTACGTACGTAAGAAGGG",
}

func jcDistance(p float64) float64 { return -0.75 * math.Log(1-4*p/3) }

func TestFit_BranchFreeRecoversJCDistance(t *testing.T) {
	pats := nucPatterns(t, []string{"a", "b"}, twentySites[0], twentySites[1])
	tr := pair(t, 0.1, 0.1)
	e := mustEngine(t, tr, jc(t), pats)

	res, err := likelihood.Fit(context.Background(), e, likelihood.BranchFree)
	require.NoError(t, err)

	d := jcDistance(0.25)
	assert.InDelta(t, d, res.Lengths[0]+res.Lengths[1], 1e-4)
	want := 15*math.Log(jcPair(true, d)) + 5*math.Log(jcPair(false, d))
	assert.InDelta(t, want, res.LogLikelihood, 1e-7)
	assert.InDelta(t, mustLL(t, e), res.LogLikelihood, 1e-12)
}

func TestFit_ProportionalScalesAllBranches(t *testing.T) {
	pats := nucPatterns(t, []string{"a", "b"}, twentySites[0], twentySites[1])
	tr := pair(t, 0.05, 0.15)
	e := mustEngine(t, tr, jc(t), pats)

	res, err := likelihood.Fit(context.Background(), e, likelihood.BranchProportional)
	require.NoError(t, err)
	f := jcDistance(0.25) / 0.2
	assert.InDelta(t, 0.05*f, res.Lengths[0], 1e-4)
	assert.InDelta(t, 0.15*f, res.Lengths[1], 1e-4)
	assert.InDelta(t, f, res.Optim.X[0], 1e-3)
}

func TestFit_NothingFreeEvaluatesOnly(t *testing.T) {
	pats := nucPatterns(t, []string{"a", "b"}, twentySites[0], twentySites[1])
	e := mustEngine(t, pair(t, 0.1, 0.2), jc(t), pats)
	before := mustLL(t, e)

	res, err := likelihood.Fit(context.Background(), e, likelihood.BranchFixed)
	require.NoError(t, err)
	assert.True(t, res.Optim.Converged)
	assert.InDelta(t, before, res.LogLikelihood, 1e-12)
	assert.Equal(t, []float64{0.1, 0.2}, res.Lengths)
	assert.Empty(t, res.Params)
}

func TestFit_ModelParameters(t *testing.T) {
	rows := randomRows(4, 200, 4, 0, 9)
	pats, err := alignment.Compress([]string{"a", "b", "c", "d"}, rows, 4, alignment.Gap)
	require.NoError(t, err)
	m, err := model.New(model.K80(), model.FreqEqual, nil)
	require.NoError(t, err)
	e := mustEngine(t, quartet(t), m, pats)
	before := mustLL(t, e)

	res, err := likelihood.Fit(context.Background(), e, likelihood.BranchFixed, optim.WithMaxIter(200))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.LogLikelihood, before)
	assert.Len(t, res.Params, 1)
	assert.Equal(t, res.Params, m.Params())

	// At an interior optimum the kappa derivative vanishes.
	grad := make([]float64, e.GradientLen(false))
	_, err = e.Gradient(false, grad)
	require.NoError(t, err)
	lo, hi := m.Bounds()
	if res.Params[0] > lo[0] && res.Params[0] < hi[0] {
		assert.InDelta(t, 0, grad[0], 1e-3)
	}
}

func TestObjective_PackUnpackAndGradient(t *testing.T) {
	rows := randomRows(4, 30, 4, 0.1, 4)
	pats, err := alignment.Compress([]string{"a", "b", "c", "d"}, rows, 4, alignment.Gap)
	require.NoError(t, err)

	for _, layout := range []likelihood.Layout{likelihood.BranchFixed, likelihood.BranchFree, likelihood.BranchProportional} {
		t.Run(layout.String(), func(t *testing.T) {
			m, err := model.New(model.GTR(), model.FreqTarget, []float64{0.1, 0.2, 0.3, 0.4})
			require.NoError(t, err)
			e := mustEngine(t, quartet(t), m, pats)
			obj := likelihood.NewObjective(e, layout)

			x := obj.Pack()
			require.Len(t, x, obj.Dim())
			lo, hi := obj.Bounds()
			require.Len(t, lo, obj.Dim())
			require.Len(t, hi, obj.Dim())

			grad := make([]float64, obj.Dim())
			f := obj.Eval(x, grad)
			assert.InDelta(t, -mustLL(t, e), f, 1e-12)
			require.NoError(t, obj.Err())

			for i := range x {
				h := 1e-6 * math.Max(1, math.Abs(x[i]))
				xp := append([]float64(nil), x...)
				xm := append([]float64(nil), x...)
				xp[i] += h
				xm[i] -= h
				fd := (obj.Eval(xp, nil) - obj.Eval(xm, nil)) / (2 * h)
				assert.InDelta(t, fd, grad[i], 1e-5*math.Max(1, math.Abs(fd)), "coordinate %d", i)
			}
		})
	}
}

func TestObjective_UnattainableIsInf(t *testing.T) {
	pats := nucPatterns(t, []string{"a", "b"}, "AC", "AG")
	e := mustEngine(t, pair(t, 0.1, 0.1), jc(t), pats)
	obj := likelihood.NewObjective(e, likelihood.BranchFree)
	assert.True(t, math.IsInf(obj.Eval([]float64{0, 0}, nil), 1))
	assert.True(t, math.IsInf(obj.Eval([]float64{-1, 0}, nil), 1))
	assert.Error(t, obj.Err())
}

func TestFit_CancelledContext(t *testing.T) {
	pats := nucPatterns(t, []string{"a", "b"}, twentySites[0], twentySites[1])
	e := mustEngine(t, pair(t, 0.1, 0.1), jc(t), pats)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := likelihood.Fit(ctx, e, likelihood.BranchFree)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []float64{0.1, 0.1}, res.Lengths)
}
