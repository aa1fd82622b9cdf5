// SPDX-License-Identifier: MIT

package linesearch

import "math"

// Minimize locates a local minimum of f inside (lo, hi).
// The interior starting point is placed at the golden section of the interval.
// See MinimizeBracket for the algorithm and error contract.
func Minimize(f Func, lo, hi float64, opts ...Option) (Result, error) {
	if !finite(lo) || !finite(hi) || lo >= hi {
		return Result{}, ErrBadBracket
	}
	mid := lo + goldenRatio*(hi-lo)

	res, err := MinimizeBracket(f, lo, mid, hi, eval(f, mid), opts...)
	res.Evaluations++ // the golden starting point

	return res, err
}

// MinimizeBracket runs Brent's method from the bracket (lo, mid, hi) where
// fmid = f(mid) is already known.
//
// Implementation:
//   - Stage 1: keep a ≤ x ≤ b plus the two previous best points w, v.
//   - Stage 2: propose the vertex of the parabola through (x, w, v). Reject it
//     and take a golden-section step into the larger half when the proposal is
//     NaN, falls outside (a, b), or would not move less than half the
//     step-before-last. Steps shorter than tol are pushed out to tol so the
//     new point is never too close to x.
//   - Stage 3: re-bracket on which side of x the new point falls and whether
//     it improved.
//   - Stop when |x − m| ≤ 2·tol − (b−a)/2, tol = RelTol·|x| + AbsTol, m = (a+b)/2.
//
// Behavior highlights:
//   - NaN function values are treated as +Inf, never as improvements.
//   - ErrMaxIter is returned together with the best point found.
//
// Complexity: O(MaxIter) evaluations; O(1) memory.
func MinimizeBracket(f Func, lo, mid, hi, fmid float64, opts ...Option) (Result, error) {
	if !finite(lo) || !finite(hi) || !(lo < mid && mid < hi) {
		return Result{}, ErrBadBracket
	}
	o := gatherOptions(opts)
	if math.IsNaN(fmid) {
		fmid = math.Inf(1)
	}

	var (
		a, b       = lo, hi
		x, w, v    = mid, mid, mid
		fx, fw, fv = fmid, fmid, fmid
		d, e       float64 // last step and step-before-last
		u, fu      float64
		xm         float64
		tol1, tol2 float64
		res        = Result{}
	)
	for iter := 0; iter < o.MaxIter; iter++ {
		res.Iterations = iter + 1
		xm = 0.5 * (a + b)
		tol1 = o.RelTol*math.Abs(x) + o.AbsTol
		tol2 = 2 * tol1
		if math.Abs(x-xm) <= tol2-0.5*(b-a) {
			res.X, res.F = x, fx
			return res, nil
		}

		golden := true
		if math.Abs(e) > tol1 {
			// Parabola through (x,fx), (w,fw), (v,fv).
			r := (x - w) * (fx - fv)
			q := (x - v) * (fx - fw)
			p := (x-v)*q - (x-w)*r
			q = 2 * (q - r)
			if q > 0 {
				p = -p
			} else {
				q = -q
			}
			etemp := e
			e = d
			step := p / q
			if !math.IsNaN(step) && math.Abs(p) < math.Abs(0.5*q*etemp) && p > q*(a-x) && p < q*(b-x) {
				d = step
				u = x + d
				if u-a < tol2 || b-u < tol2 {
					d = math.Copysign(tol1, xm-x)
				}
				golden = false
			}
		}
		if golden {
			if x >= xm {
				e = a - x
			} else {
				e = b - x
			}
			d = goldenRatio * e
		}

		if math.Abs(d) >= tol1 {
			u = x + d
		} else {
			u = x + math.Copysign(tol1, d)
		}
		fu = eval(f, u)
		res.Evaluations++

		if fu <= fx {
			if u >= x {
				a = x
			} else {
				b = x
			}
			v, fv = w, fw
			w, fw = x, fx
			x, fx = u, fu
			continue
		}
		if u < x {
			a = u
		} else {
			b = u
		}
		if fu <= fw || w == x {
			v, fv = w, fw
			w, fw = u, fu
		} else if fu <= fv || v == x || v == w {
			v, fv = u, fu
		}
	}
	res.X, res.F = x, fx

	return res, ErrMaxIter
}

// eval calls f and maps NaN to +Inf.
func eval(f Func, x float64) float64 {
	y := f(x)
	if math.IsNaN(y) {
		return math.Inf(1)
	}

	return y
}
