// SPDX-License-Identifier: MIT

package linesearch

import "math"

// Root finds x in [lo, hi] with f(x) ≈ 0 using Ridders' method.
//
// Implementation:
//   - Stage 1: evaluate both ends; an exact zero is returned immediately;
//     equal signs yield ErrNotBracketed.
//   - Stage 2: each iteration evaluates the midpoint m and the exponential
//     correction x = m + (m−lo)·sign(f(lo)−f(hi))·f(m)/√(f(m)²−f(lo)f(hi)),
//     then keeps whichever pair among {lo, m, x, hi} straddles the root most
//     tightly.
//   - Stage 3: stop when the bracket or the change in x is within tolerance.
//     If the budget is exhausted, the final answer is the linear
//     interpolation of the last bracket.
//
// Errors:
//   - ErrBadBracket (non-finite or empty interval), ErrNotBracketed.
//
// Complexity: two evaluations per iteration; O(1) memory.
func Root(f Func, lo, hi float64, opts ...Option) (float64, error) {
	if !finite(lo) || !finite(hi) || lo == hi {
		return math.NaN(), ErrBadBracket
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	o := gatherOptions(opts)

	fl, fh := f(lo), f(hi)
	switch {
	case fl == 0:
		return lo, nil
	case fh == 0:
		return hi, nil
	case math.IsNaN(fl) || math.IsNaN(fh) || (fl > 0) == (fh > 0):
		return math.NaN(), ErrNotBracketed
	}

	ans := math.NaN()
	for iter := 0; iter < o.MaxIter-1; iter++ {
		xm := 0.5 * (lo + hi)
		fm := f(xm)
		s := math.Sqrt(fm*fm - fl*fh)
		if s == 0 {
			return xm, nil
		}
		sign := 1.0
		if fl < fh {
			sign = -1.0
		}
		xnew := xm + (xm-lo)*sign*fm/s
		tol := o.RelTol*math.Abs(xnew) + o.AbsTol
		if !math.IsNaN(ans) && math.Abs(xnew-ans) <= tol {
			return xnew, nil
		}
		ans = xnew
		fnew := f(ans)
		if fnew == 0 {
			return ans, nil
		}

		switch {
		case math.Copysign(fm, fnew) != fm:
			lo, fl = xm, fm
			hi, fh = ans, fnew
			if lo > hi {
				lo, fl, hi, fh = hi, fh, lo, fl
			}
		case math.Copysign(fl, fnew) != fl:
			hi, fh = ans, fnew
		case math.Copysign(fh, fnew) != fh:
			lo, fl = ans, fnew
		default:
			return ans, nil // fnew is NaN; the best estimate so far stands
		}
		if math.Abs(hi-lo) <= tol {
			return ans, nil
		}
	}

	// Final iteration: linear interpolation within the last bracket.
	return lo - fl*(hi-lo)/(fh-fl), nil
}
