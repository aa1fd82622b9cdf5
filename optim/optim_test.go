// SPDX-License-Identifier: MIT

package optim_test

import (
	"context"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/optimize"

	"github.com/etetoolkit/ete-sub002/metrics"
	"github.com/etetoolkit/ete-sub002/optim"
)

// quadratic is ½(x−c)ᵀA(x−c) with a fixed SPD A, i.e. the negation of a
// strictly concave objective.
func quadratic(c []float64) optim.Func {
	A := [][]float64{{4, 1, 0}, {1, 3, 0.5}, {0, 0.5, 2}}
	return func(x, grad []float64) float64 {
		var f float64
		for i := range x {
			var row float64
			for k := range x {
				row += A[i][k] * (x[k] - c[k])
			}
			f += 0.5 * (x[i] - c[i]) * row
			if grad != nil {
				grad[i] = row
			}
		}
		return f
	}
}

func rosenbrock(x, grad []float64) float64 {
	a, b := 1-x[0], x[1]-x[0]*x[0]
	if grad != nil {
		grad[0] = -2*a - 400*x[0]*b
		grad[1] = 200 * b
	}
	return a*a + 100*b*b
}

// guarded records whether f was ever called outside [lo, hi].
func guarded(f optim.Func, lo, hi []float64, violated *bool) optim.Func {
	return func(x, grad []float64) float64 {
		for i := range x {
			if x[i] < lo[i] || x[i] > hi[i] {
				*violated = true
			}
		}
		return f(x, grad)
	}
}

func TestMinimize_ConcaveQuadraticInterior(t *testing.T) {
	c := []float64{1, -2, 0.5}
	lo, hi := []float64{-10, -10, -10}, []float64{10, 10, 10}
	var violated bool
	res, err := optim.New().Minimize(context.Background(), optim.Problem{
		Func:  guarded(quadratic(c), lo, hi, &violated),
		Lower: lo,
		Upper: hi,
	}, []float64{5, 5, 5})
	require.NoError(t, err)

	assert.True(t, res.Converged)
	assert.False(t, violated)
	assert.Less(t, res.Iterations, 100)
	for i := range c {
		assert.InDelta(t, c[i], res.X[i], 1e-4)
		assert.False(t, res.ActiveSet[i])
	}
	assert.InDelta(t, 0, res.F, 1e-10)
}

func TestMinimize_BindingBounds(t *testing.T) {
	f := func(x, grad []float64) float64 {
		if grad != nil {
			grad[0] = 2 * (x[0] - 3)
			grad[1] = 2 * (x[1] + 2)
		}
		return (x[0]-3)*(x[0]-3) + (x[1]+2)*(x[1]+2)
	}
	lo, hi := []float64{0, -1}, []float64{1, 1}
	var violated bool
	res, err := optim.New().Minimize(context.Background(), optim.Problem{
		Func: guarded(f, lo, hi, &violated), Lower: lo, Upper: hi,
	}, []float64{0.5, 0})
	require.NoError(t, err)

	assert.True(t, res.Converged)
	assert.False(t, violated)
	assert.Equal(t, 1.0, res.X[0])
	assert.Equal(t, -1.0, res.X[1])
	assert.Equal(t, []bool{true, true}, res.ActiveSet)
}

func TestMinimize_StartClippedIntoBox(t *testing.T) {
	f := func(x, grad []float64) float64 {
		if grad != nil {
			grad[0] = 2 * (x[0] - 0.25)
		}
		return (x[0] - 0.25) * (x[0] - 0.25)
	}
	res, err := optim.New().Minimize(context.Background(), optim.Problem{
		Func: f, Lower: []float64{0}, Upper: []float64{1},
	}, []float64{7})
	require.NoError(t, err)
	assert.InDelta(t, 0.25, res.X[0], 1e-6)
}

func TestMinimize_FixedParameter(t *testing.T) {
	c := []float64{1, -2, 0.5}
	res, err := optim.New().Minimize(context.Background(), optim.Problem{
		Func:  quadratic(c),
		Lower: []float64{-10, 3, -10},
		Upper: []float64{10, 3, 10},
	}, []float64{0, 3, 0})
	require.NoError(t, err)
	assert.Equal(t, 3.0, res.X[1])
	assert.True(t, res.ActiveSet[1])
	assert.True(t, res.Converged)
}

func TestMinimize_MatchesGonumOnRosenbrock(t *testing.T) {
	x0 := []float64{-1.2, 1}
	ref, err := optimize.Minimize(optimize.Problem{
		Func: func(x []float64) float64 { return rosenbrock(x, nil) },
		Grad: func(grad, x []float64) { rosenbrock(x, grad) },
	}, x0, nil, &optimize.BFGS{})
	require.NoError(t, err)

	res, err := optim.New(optim.WithMaxIter(1000), optim.WithTolerance(1e-12, 1e-7)).
		Minimize(context.Background(), optim.Problem{
			Func:  rosenbrock,
			Lower: []float64{-2, -2},
			Upper: []float64{2, 2},
		}, x0)
	require.NoError(t, err)
	assert.InDelta(t, ref.X[0], res.X[0], 1e-3)
	assert.InDelta(t, ref.X[1], res.X[1], 1e-3)
	assert.InDelta(t, ref.F, res.F, 1e-6)
}

func TestMinimize_BudgetReturnsBest(t *testing.T) {
	x0 := []float64{-1.2, 1}
	res, err := optim.New(optim.WithMaxIter(3)).Minimize(context.Background(), optim.Problem{
		Func: rosenbrock, Lower: []float64{-2, -2}, Upper: []float64{2, 2},
	}, x0)
	require.NoError(t, err)
	assert.False(t, res.Converged)
	assert.Equal(t, 3, res.Iterations)
	assert.Less(t, res.F, rosenbrock(x0, nil))
}

func TestMinimize_UnattainableRegionRejected(t *testing.T) {
	// The unconstrained optimum x = 3 lies inside a region where f is +Inf.
	f := func(x, grad []float64) float64 {
		if x[0] > 2 {
			return math.Inf(1)
		}
		if grad != nil {
			grad[0] = 2 * (x[0] - 3)
		}
		return (x[0] - 3) * (x[0] - 3)
	}
	res, err := optim.New().Minimize(context.Background(), optim.Problem{
		Func: f, Lower: []float64{0}, Upper: []float64{5},
	}, []float64{0})
	require.NoError(t, err)
	assert.LessOrEqual(t, res.X[0], 2.0)
	assert.InDelta(t, 2.0, res.X[0], 1e-3)
	assert.False(t, math.IsInf(res.F, 0))
}

func TestMinimize_Errors(t *testing.T) {
	o := optim.New()
	ctx := context.Background()
	f := quadratic([]float64{0, 0, 0})

	_, err := o.Minimize(ctx, optim.Problem{Func: f, Lower: []float64{0}, Upper: []float64{1}}, []float64{0, 0, 0})
	assert.ErrorIs(t, err, optim.ErrDimension)

	_, err = o.Minimize(ctx, optim.Problem{Lower: []float64{0}, Upper: []float64{1}}, []float64{0})
	assert.ErrorIs(t, err, optim.ErrDimension)

	_, err = o.Minimize(ctx, optim.Problem{Func: f, Lower: []float64{1, 0, 0}, Upper: []float64{0, 1, 1}}, []float64{0, 0, 0})
	assert.ErrorIs(t, err, optim.ErrBounds)

	inf := func(x, grad []float64) float64 { return math.NaN() }
	_, err = o.Minimize(ctx, optim.Problem{Func: inf, Lower: []float64{0}, Upper: []float64{1}}, []float64{0.5})
	assert.ErrorIs(t, err, optim.ErrInfeasible)
}

func TestMinimize_EmptyProblemIsEvaluatedOnce(t *testing.T) {
	calls := 0
	f := func(x, grad []float64) float64 {
		calls++
		return 3.5
	}
	res, err := optim.New().Minimize(context.Background(), optim.Problem{Func: f, Lower: []float64{}, Upper: []float64{}}, nil)
	require.NoError(t, err)
	assert.True(t, res.Converged)
	assert.Equal(t, 3.5, res.F)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, res.Iterations)
	assert.Empty(t, res.X)

	inf := func(x, grad []float64) float64 { return math.Inf(1) }
	_, err = optim.New().Minimize(context.Background(), optim.Problem{Func: inf}, nil)
	assert.ErrorIs(t, err, optim.ErrInfeasible)
}

func TestMinimize_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	x0 := []float64{-1.2, 1}
	res, err := optim.New().Minimize(ctx, optim.Problem{
		Func: rosenbrock, Lower: []float64{-2, -2}, Upper: []float64{2, 2},
	}, x0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, x0, res.X)
	assert.False(t, res.Converged)
}

func TestOptimizer_StateReuse(t *testing.T) {
	o := optim.New()
	assert.Nil(t, o.State())
	p := optim.Problem{Func: quadratic([]float64{0, 0, 0}), Lower: []float64{-1, -1, -1}, Upper: []float64{1, 1, 1}}
	_, err := o.Minimize(context.Background(), p, []float64{0.5, 0.5, 0.5})
	require.NoError(t, err)
	st := o.State()
	H := st.H

	_, err = o.Minimize(context.Background(), p, []float64{-0.5, 0.5, 0})
	require.NoError(t, err)
	assert.Same(t, H, o.State().H)

	_, err = o.Minimize(context.Background(), optim.Problem{
		Func: rosenbrock, Lower: []float64{-2, -2}, Upper: []float64{2, 2},
	}, []float64{0, 0})
	require.NoError(t, err)
	assert.Equal(t, 2, o.State().N)
	assert.NotSame(t, H, o.State().H)
}

func TestMinimize_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := metrics.NewRecorder(reg, "test")
	res, err := optim.New(optim.WithRecorder(rec)).Minimize(context.Background(), optim.Problem{
		Func: rosenbrock, Lower: []float64{-2, -2}, Upper: []float64{2, 2},
	}, []float64{-1.2, 1})
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)
	got := map[string]float64{}
	for _, f := range families {
		m := f.GetMetric()[0]
		if c := m.GetCounter(); c != nil {
			got[f.GetName()] = c.GetValue()
		}
		if h := m.GetHistogram(); h != nil {
			got[f.GetName()] = h.GetSampleSum()
		}
	}
	assert.Equal(t, float64(res.Iterations), got["test_fit_iterations"])
	assert.Positive(t, got["test_optimizer_iterations_total"])
}
