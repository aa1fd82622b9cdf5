// SPDX-License-Identifier: MIT

package optim

import (
	"context"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/etetoolkit/ete-sub002/linesearch"
)

// Optimizer runs bounded quasi-Newton minimizations and keeps its State
// between runs.
type Optimizer struct {
	opts  Options
	state *State
}

// New returns an Optimizer with DefaultOptions overridden by opts.
func New(opts ...Option) *Optimizer {
	o := DefaultOptions()
	for _, fn := range opts {
		fn(&o)
	}

	return &Optimizer{opts: o}
}

// Options returns the effective options.
func (o *Optimizer) Options() Options { return o.opts }

// State returns the state of the last run, nil before the first.
func (o *Optimizer) State() *State { return o.state }

// run carries one minimization.
type run struct {
	opts  Options
	st    *State
	f     Func
	evals int
	log   logrus.FieldLogger
}

func (r *run) eval(x, grad []float64) float64 {
	r.evals++
	v := r.f(x, grad)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return math.Inf(1)
	}

	return v
}

// Minimize minimizes p.Func from x0, which is first clipped into the box.
//
// Implementation:
//   - Stage 1: validate shapes and bounds, size the State, evaluate f(x0).
//     An empty problem stops here, converged.
//   - Stage 2: per iteration refresh the active set, test convergence
//     (|Δf| < FTol and free-gradient norm < GTol), then take one step.
//   - Stage 3: a step that makes no progress ends the run, converged when the
//     free gradient is already below GTol; otherwise H is reset to I once
//     before giving up.
//
// Context cancellation is checked between iterations; the best point so far
// is returned with the context error.
//
// Errors: ErrDimension, ErrBounds, ErrInfeasible, ctx.Err().
//
// Complexity: O(N²) per iteration plus the cost of the evaluations.
func (o *Optimizer) Minimize(ctx context.Context, p Problem, x0 []float64) (Result, error) {
	const tag = "Minimize"
	n := len(x0)
	if p.Func == nil || len(p.Lower) != n || len(p.Upper) != n {
		return Result{}, optimErrorf(tag, ErrDimension)
	}
	if n == 0 {
		return evaluateOnly(tag, p.Func)
	}
	for i := range x0 {
		if math.IsNaN(p.Lower[i]) || math.IsNaN(p.Upper[i]) || p.Lower[i] > p.Upper[i] {
			return Result{}, optimErrorf(tag, ErrBounds)
		}
	}

	if o.state == nil {
		o.state = newState(n)
	}
	st := o.state
	st.resize(n)
	copy(st.Lower, p.Lower)
	copy(st.Upper, p.Upper)
	for i := range st.X {
		st.X[i] = math.Min(math.Max(x0[i], st.Lower[i]), st.Upper[i])
		st.OnBound[i] = false
	}
	st.Radius = o.opts.Radius
	st.resetHessian()

	r := &run{opts: o.opts, st: st, f: p.Func, log: o.opts.Logger}
	st.F = r.eval(st.X, st.G)
	if math.IsInf(st.F, 1) {
		return Result{}, optimErrorf(tag, ErrInfeasible)
	}

	var (
		iter      int
		converged bool
		df        = math.Inf(1)
		stalled   bool
		err       error
	)
	for ; iter < o.opts.MaxIter; iter++ {
		if err = ctx.Err(); err != nil {
			err = optimErrorf(tag, err)
			break
		}
		r.updateActiveSet()
		gnorm := r.freeNorm()
		r.log.WithFields(logrus.Fields{
			"iter":   iter,
			"f":      st.F,
			"gnorm":  gnorm,
			"radius": st.Radius,
			"active": r.activeCount(),
		}).Debug("optim: iteration")
		if gnorm < o.opts.GTol && (iter == 0 || df < o.opts.FTol) {
			converged = true
			break
		}

		fPrev := st.F
		if !r.step() {
			if gnorm < o.opts.GTol {
				converged = true
				break
			}
			if stalled || st.identity {
				break
			}
			stalled = true
			st.resetHessian()
			o.opts.Recorder.HessianReset()
			continue
		}
		stalled = false
		df = math.Abs(fPrev - st.F)
		o.opts.Recorder.Iteration()
	}
	o.opts.Recorder.FitFinished(iter)
	r.log.WithFields(logrus.Fields{
		"iterations":  iter,
		"evaluations": r.evals,
		"f":           st.F,
		"converged":   converged,
	}).Info("optim: finished")

	return Result{
		X:           append([]float64(nil), st.X...),
		F:           st.F,
		Grad:        append([]float64(nil), st.G...),
		Iterations:  iter,
		Evaluations: r.evals,
		Converged:   converged,
		ActiveSet:   append([]bool(nil), st.OnBound...),
	}, err
}

// evaluateOnly handles a problem with nothing free: f is evaluated once at
// the empty point.
func evaluateOnly(tag string, f Func) (Result, error) {
	v := f([]float64{}, []float64{})
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Result{}, optimErrorf(tag, ErrInfeasible)
	}

	return Result{
		X:           []float64{},
		F:           v,
		Grad:        []float64{},
		Evaluations: 1,
		Converged:   true,
		ActiveSet:   []bool{},
	}, nil
}

// updateActiveSet freezes parameters on a bound whose gradient pushes out of
// the box and releases frozen ones whose gradient points back inside.
// Parameters with lower == upper stay frozen.
func (r *run) updateActiveSet() {
	st, eps := r.st, r.opts.BoundaryEps
	for i, x := range st.X {
		atLo := x-st.Lower[i] <= eps
		atHi := st.Upper[i]-x <= eps
		frozen := st.Lower[i] == st.Upper[i] || (atLo && st.G[i] > 0) || (atHi && st.G[i] < 0)
		if frozen != st.OnBound[i] {
			st.OnBound[i] = frozen
			st.resetRowCol(i)
		}
	}
}

func (r *run) freeNorm() float64 {
	var s float64
	for i, g := range r.st.G {
		if !r.st.OnBound[i] {
			s += g * g
		}
	}

	return math.Sqrt(s)
}

func (r *run) activeCount() int {
	var n int
	for _, b := range r.st.OnBound {
		if b {
			n++
		}
	}

	return n
}

// propose writes d = −H·g over the free parameters, dropping components that
// push a parameter already on its bound outwards. A non-descent direction
// falls back to the projected steepest descent with H reset. It returns
// false when no direction is left.
func (r *run) propose() bool {
	st := r.st
	for i := range st.d {
		st.d[i] = 0
		if st.OnBound[i] {
			continue
		}
		h := st.H.Row(i)
		var v float64
		for k, g := range st.G {
			if !st.OnBound[k] {
				v -= h[k] * g
			}
		}
		st.d[i] = v
	}
	r.blockOutward()
	if floats.Dot(st.d, st.G) >= 0 {
		if !st.identity {
			r.opts.Recorder.HessianReset()
		}
		st.resetHessian()
		for i, g := range st.G {
			st.d[i] = 0
			if !st.OnBound[i] {
				st.d[i] = -g
			}
		}
		r.blockOutward()
	}

	return floats.Dot(st.d, st.G) < 0
}

func (r *run) blockOutward() {
	st, eps := r.st, r.opts.BoundaryEps
	for i, di := range st.d {
		if (di < 0 && st.X[i]-st.Lower[i] <= eps) || (di > 0 && st.Upper[i]-st.X[i] <= eps) {
			st.d[i] = 0
		}
	}
}

// step performs propose, trust-region scaling, trim and classify. It reports
// whether the point moved.
func (r *run) step() bool {
	st := r.st
	if !r.propose() {
		return false
	}
	if n := floats.Norm(st.d, 2); n > st.Radius {
		floats.Scale(st.Radius/n, st.d)
	}
	amax := st.maxStep()
	if amax >= 1 {
		return r.interior(amax)
	}

	return r.boundary(amax)
}

// interior handles an untrimmed step that stays inside the box.
func (r *run) interior(amax float64) bool {
	st := r.st
	st.clampTo(st.xt, 1)
	ft := r.eval(st.xt, st.gt)
	if ft > st.F {
		return r.search(1)
	}

	ext := math.Min(2, amax*(1-r.opts.TrimMargin))
	if ext > 1 {
		st.clampTo(st.xe, ext)
		if fe := r.eval(st.xe, st.ge); fe < ft {
			st.Radius = math.Min(2*st.Radius, r.opts.RadiusMax)
			r.accept(st.xe, st.ge, fe)
			return true
		}
	}
	r.accept(st.xt, st.gt, ft)

	return true
}

// boundary handles a step trimmed by the box. The boundary point is taken
// when it improves on the current point and on a point just short of it;
// the parameters that reached their bound are then frozen.
func (r *run) boundary(amax float64) bool {
	st := r.st
	if amax <= 0 {
		return r.search(0)
	}
	hit := st.boundaryPoint(st.xe, amax)
	fb := r.eval(st.xe, st.ge)

	short := amax - r.opts.BoundaryEps/floats.Norm(st.d, math.Inf(1))
	short = math.Max(short, 0.5*amax)
	st.clampTo(st.xt, short)
	fn := r.eval(st.xt, nil)

	if fb <= st.F && fb <= fn {
		r.accept(st.xe, st.ge, fb)
		for _, i := range hit {
			if !st.OnBound[i] {
				st.OnBound[i] = true
				st.resetRowCol(i)
			}
		}
		return true
	}

	return r.search(amax * (1 - r.opts.TrimMargin))
}

// search runs a Brent line search along d on [0, hi] and halves the trust
// radius.
func (r *run) search(hi float64) bool {
	st := r.st
	r.opts.Recorder.StepRejected()
	st.Radius = math.Max(st.Radius/2, r.opts.RadiusMin)
	if !(hi > 0) {
		return false
	}
	phi := func(a float64) float64 {
		st.clampTo(st.xt, a)
		return r.eval(st.xt, nil)
	}
	res, err := linesearch.Minimize(phi, 0, hi,
		linesearch.WithMaxIter(r.opts.LineSearchIter),
		linesearch.WithRelTol(1e-6),
	)
	if err != nil && res.Evaluations == 0 {
		return false
	}
	if !(res.F < st.F) {
		return false
	}
	st.clampTo(st.xt, res.X)
	ft := r.eval(st.xt, st.gt)
	if !(ft < st.F) {
		return false
	}
	r.accept(st.xt, st.gt, ft)

	return true
}

// accept moves to (x, g, f) and applies the BFGS update
// H ← H + ((sᵀy + yᵀHy)/(sᵀy)²)·ssᵀ − (Hy·sᵀ + s·(Hy)ᵀ)/(sᵀy)
// over the free parameters. sᵀy ≤ CurvatureMin resets H to I instead.
func (r *run) accept(x, g []float64, f float64) {
	st := r.st
	for i := range st.X {
		st.s[i], st.y[i] = 0, 0
		if !st.OnBound[i] {
			st.s[i] = x[i] - st.X[i]
			st.y[i] = g[i] - st.G[i]
		}
	}
	copy(st.X, x)
	copy(st.G, g)
	st.F = f

	sy := floats.Dot(st.s, st.y)
	if !(sy > r.opts.CurvatureMin) {
		if !st.identity {
			r.opts.Recorder.HessianReset()
		}
		st.resetHessian()
		return
	}
	n := st.N
	for i := 0; i < n; i++ {
		st.hy[i] = floats.Dot(st.H.Row(i), st.y)
	}
	yhy := floats.Dot(st.y, st.hy)
	a := (sy + yhy) / (sy * sy)
	for i := 0; i < n; i++ {
		row := st.H.Row(i)
		for k := 0; k < n; k++ {
			row[k] += a*st.s[i]*st.s[k] - (st.hy[i]*st.s[k]+st.s[i]*st.hy[k])/sy
		}
	}
	st.identity = false
}
