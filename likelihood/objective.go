// SPDX-License-Identifier: MIT

package likelihood

import "math"

// Objective exposes an Engine as a minimization problem over a packed vector:
// the branch block of the layout first (all edge lengths, one common factor,
// or nothing), then the model parameters.
type Objective struct {
	eng    *Engine
	layout Layout
	base   []float64 // edge lengths the proportional factor multiplies
	factor float64
	grad   []float64
	err    error
}

// NewObjective wraps e under layout. The proportional layout takes the
// current branch lengths as its base, with factor 1.
func NewObjective(e *Engine, layout Layout) *Objective {
	return &Objective{
		eng:    e,
		layout: layout,
		base:   e.tree.Lengths(),
		factor: 1,
		grad:   make([]float64, e.GradientLen(layout == BranchFree || layout == BranchProportional)),
	}
}

func (o *Objective) branchDim() int {
	switch o.layout {
	case BranchFree:
		return o.eng.tree.NumEdges()
	case BranchProportional:
		return 1
	}

	return 0
}

// Dim is the length of the packed vector.
func (o *Objective) Dim() int { return o.branchDim() + o.eng.model.NumParams() }

// Bounds returns the box of the packed vector.
func (o *Objective) Bounds() (lower, upper []float64) {
	nb := o.branchDim()
	lower, upper = make([]float64, nb), make([]float64, nb)
	for i := 0; i < nb; i++ {
		if o.layout == BranchProportional {
			lower[i], upper[i] = FactorMin, FactorMax
		} else {
			lower[i], upper[i] = BranchMin, BranchMax
		}
	}
	lo, hi := o.eng.model.Bounds()

	return append(lower, lo...), append(upper, hi...)
}

// Pack returns the current packed vector.
func (o *Objective) Pack() []float64 {
	var x []float64
	switch o.layout {
	case BranchFree:
		x = o.eng.tree.Lengths()
	case BranchProportional:
		x = []float64{o.factor}
	}

	return append(x, o.eng.model.Params()...)
}

// Unpack writes x into the tree and the model.
func (o *Objective) Unpack(x []float64) error {
	const tag = "Unpack"
	nb := o.branchDim()
	switch o.layout {
	case BranchFree:
		if err := o.eng.tree.SetLengths(x[:nb]); err != nil {
			return likelihoodErrorf(tag, err)
		}
	case BranchProportional:
		o.factor = x[0]
		scaled := make([]float64, len(o.base))
		for i, b := range o.base {
			scaled[i] = b * x[0]
		}
		if err := o.eng.tree.SetLengths(scaled); err != nil {
			return likelihoodErrorf(tag, err)
		}
	}
	if err := o.eng.model.SetParams(x[nb:]); err != nil {
		return likelihoodErrorf(tag, err)
	}

	return nil
}

// Eval returns −ℓ(x) and, when grad is non-nil, writes −∇ℓ(x). Unattainable
// points and evaluation errors give +Inf; the last error is kept in Err.
func (o *Objective) Eval(x, grad []float64) float64 {
	if err := o.Unpack(x); err != nil {
		o.err = err
		return math.Inf(1)
	}
	if grad == nil {
		ll, err := o.eng.LogLikelihood()
		if err != nil {
			o.err = err
			return math.Inf(1)
		}
		return -ll
	}

	branch := o.layout != BranchFixed
	ll, err := o.eng.Gradient(branch, o.grad)
	if err != nil {
		o.err = err
		return math.Inf(1)
	}
	nb, ne := o.branchDim(), 0
	if branch {
		ne = o.eng.tree.NumEdges()
	}
	switch o.layout {
	case BranchFree:
		for i := 0; i < nb; i++ {
			grad[i] = -o.grad[i]
		}
	case BranchProportional:
		var g float64
		for i, b := range o.base {
			g += b * o.grad[i]
		}
		grad[0] = -g
	}
	for p := 0; p < o.eng.model.NumParams(); p++ {
		grad[nb+p] = -o.grad[ne+p]
	}

	return -ll
}

// Err returns the last error met by Eval.
func (o *Objective) Err() error { return o.err }
