// SPDX-License-Identifier: MIT

package likelihood

import (
	"context"
	"math"

	"github.com/etetoolkit/ete-sub002/optim"
)

// FitResult is the outcome of Fit. The tree and model are left at the
// fitted values.
type FitResult struct {
	LogLikelihood float64
	Params        []float64 // model parameters
	Lengths       []float64 // branch lengths in edge order
	Optim         optim.Result
}

// Fit maximizes the log-likelihood over the model parameters and the branch
// block of layout.
//
// Errors: optim errors (ErrInfeasible when the start is unattainable) and
// context errors; on a context error the best point found is still applied.
func Fit(ctx context.Context, e *Engine, layout Layout, opts ...optim.Option) (FitResult, error) {
	obj := NewObjective(e, layout)
	lo, hi := obj.Bounds()
	x0 := obj.Pack()
	for i := range x0 {
		x0[i] = math.Min(math.Max(x0[i], lo[i]), hi[i])
	}

	res, err := optim.New(opts...).Minimize(ctx, optim.Problem{
		Func:  obj.Eval,
		Lower: lo,
		Upper: hi,
	}, x0)
	if res.X == nil {
		return FitResult{}, likelihoodErrorf("Fit", err)
	}
	if uerr := obj.Unpack(res.X); uerr != nil {
		return FitResult{}, uerr
	}
	out := FitResult{
		LogLikelihood: -res.F,
		Params:        e.model.Params(),
		Lengths:       e.tree.Lengths(),
		Optim:         res,
	}
	if err != nil {
		return out, likelihoodErrorf("Fit", err)
	}

	return out, nil
}
