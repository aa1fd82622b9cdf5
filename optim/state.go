// SPDX-License-Identifier: MIT

package optim

import (
	"math"

	"github.com/etetoolkit/ete-sub002/matrix"
)

// State is the mutable optimizer state of one run. Its buffers are sized to
// N and reallocated only when N changes.
type State struct {
	N       int
	X, G    []float64
	F       float64
	H       *matrix.Dense // inverse-Hessian approximation
	Lower   []float64
	Upper   []float64
	OnBound []bool
	Radius  float64

	identity bool // H is exactly I

	d, s, y, hy []float64
	xt, gt      []float64
	xe, ge      []float64
}

func newState(n int) *State {
	st := &State{}
	st.resize(n)

	return st
}

func (st *State) resize(n int) {
	if st.N == n && st.H != nil {
		return
	}
	st.N = n
	st.H = matrix.NewSquare(n)
	bufs := []*[]float64{&st.X, &st.G, &st.Lower, &st.Upper, &st.d, &st.s, &st.y, &st.hy, &st.xt, &st.gt, &st.xe, &st.ge}
	for _, b := range bufs {
		*b = make([]float64, n)
	}
	st.OnBound = make([]bool, n)
}

func (st *State) resetHessian() {
	st.H.SetIdentity()
	st.identity = true
}

// resetRowCol makes row and column i of H those of the identity.
func (st *State) resetRowCol(i int) {
	for k := 0; k < st.N; k++ {
		st.H.Row(i)[k] = 0
		st.H.Row(k)[i] = 0
	}
	st.H.Row(i)[i] = 1
}

// clampTo writes x + a·d into dst, clipped into the box.
func (st *State) clampTo(dst []float64, a float64) {
	for i, x := range st.X {
		dst[i] = math.Min(math.Max(x+a*st.d[i], st.Lower[i]), st.Upper[i])
	}
}

// maxStep returns the largest a ≥ 0 with X + a·d inside the box.
func (st *State) maxStep() float64 {
	amax := math.Inf(1)
	for i, di := range st.d {
		var r float64
		switch {
		case di > 0:
			r = (st.Upper[i] - st.X[i]) / di
		case di < 0:
			r = (st.Lower[i] - st.X[i]) / di
		default:
			continue
		}
		amax = math.Min(amax, math.Max(r, 0))
	}

	return amax
}

// boundaryPoint writes X + a·d into dst with every coordinate that reaches
// its bound at a set exactly onto it, and returns those coordinates.
func (st *State) boundaryPoint(dst []float64, a float64) []int {
	st.clampTo(dst, a)
	var hit []int
	for i, di := range st.d {
		var r, b float64
		switch {
		case di > 0:
			r, b = (st.Upper[i]-st.X[i])/di, st.Upper[i]
		case di < 0:
			r, b = (st.Lower[i]-st.X[i])/di, st.Lower[i]
		default:
			continue
		}
		if r <= a*(1+1e-12) {
			dst[i] = b
			hit = append(hit, i)
		}
	}

	return hit
}
