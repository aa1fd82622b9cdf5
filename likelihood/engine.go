// SPDX-License-Identifier: MIT

package likelihood

import (
	"fmt"
	"math"

	"github.com/etetoolkit/ete-sub002/alignment"
	"github.com/etetoolkit/ete-sub002/matrix"
	"github.com/etetoolkit/ete-sub002/model"
	"github.com/etetoolkit/ete-sub002/tree"
)

// degenerate is a pattern with a single observed state; all-gap patterns
// contribute log 1 and are not listed.
type degenerate struct {
	pattern int
	state   int
}

// Engine evaluates the log-likelihood and gradient of Patterns on a Tree
// under a Model. Branch lengths are read from the tree and parameters from
// the model on every evaluation.
type Engine struct {
	tree  *tree.Tree
	model *model.Model
	pats  *alignment.Patterns
	opts  Options

	B    int
	post []int // post-order node ids
	pre  []int // pre-order node ids
	rows []int // pattern row of each node, −1 without data

	full   []int // patterns needing pruning
	single []degenerate

	// arena, indexed by node id; buffers span the full patterns only
	F []partial // inside likelihood
	M []partial // P·F, message to the parent
	G []partial // outside likelihood over the parent's states
	U []partial // outside likelihood over the node's own states
	P []*matrix.Dense // transition matrix of the edge above each node
	D *matrix.Dense   // derivative scratch

	run partial // running sibling product

	pi, dpi []float64
	site    []float64 // per-pattern log-likelihood
}

// New binds t, m and pats. Every pattern row must name a distinct node of t
// and every leaf must have a row.
//
// Errors: ErrStates, ErrUnknownTaxon, ErrDuplicateTaxon, ErrMissingTaxon.
//
// Complexity: O(nodes·patterns·B) memory.
func New(t *tree.Tree, m *model.Model, pats *alignment.Patterns, opts ...Option) (*Engine, error) {
	o := DefaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	n := t.Len()
	e := &Engine{
		tree:  t,
		model: m,
		opts:  o,
		B:     m.States(),
		post:  t.PostOrder(),
		pre:   t.PreOrder(),
		F:     make([]partial, n),
		M:     make([]partial, n),
		G:     make([]partial, n),
		U:     make([]partial, n),
		P:     make([]*matrix.Dense, n),
		pi:    make([]float64, m.States()),
		dpi:   make([]float64, m.States()),
	}
	e.D = matrix.NewSquare(e.B)
	for id := 1; id < n; id++ {
		e.P[id] = matrix.NewSquare(e.B)
	}
	if err := e.SetPatterns(pats); err != nil {
		return nil, err
	}

	return e, nil
}

// SetPatterns switches to a new pattern set over the same taxa layout rules,
// reusing buffers where they are large enough.
func (e *Engine) SetPatterns(pats *alignment.Patterns) error {
	const tag = "SetPatterns"
	if pats.States != e.B {
		return likelihoodErrorf(tag, ErrStates)
	}
	n := e.tree.Len()
	rows := make([]int, n)
	for i := range rows {
		rows[i] = -1
	}
	for k, name := range pats.Taxa {
		id, ok := e.tree.Lookup(name)
		if !ok {
			return likelihoodErrorf(fmt.Sprintf("%s(%q)", tag, name), ErrUnknownTaxon)
		}
		if rows[id] >= 0 {
			return likelihoodErrorf(fmt.Sprintf("%s(%q)", tag, name), ErrDuplicateTaxon)
		}
		rows[id] = k
	}
	for _, leaf := range e.tree.Leaves() {
		if rows[leaf] < 0 {
			return likelihoodErrorf(fmt.Sprintf("%s(%q)", tag, e.tree.Name(leaf)), ErrMissingTaxon)
		}
	}

	e.pats, e.rows = pats, rows
	e.full, e.single = e.full[:0], e.single[:0]
	for i := 0; i < pats.Len(); i++ {
		switch class, state := pats.Classify(i); class {
		case alignment.Full:
			e.full = append(e.full, i)
		case alignment.SingleObserved:
			e.single = append(e.single, degenerate{pattern: i, state: state})
		}
	}
	e.site = make([]float64, pats.Len())

	npat, root := len(e.full), e.tree.Root()
	for id := 0; id < n; id++ {
		e.F[id].resize(npat, e.B)
		if id != root {
			e.M[id].resize(npat, e.B)
			e.G[id].resize(npat, e.B)
		}
		if !e.tree.IsLeaf(id) {
			e.U[id].resize(npat, e.B)
		}
	}
	e.run.resize(npat, e.B)

	return nil
}

// Tree returns the bound tree.
func (e *Engine) Tree() *tree.Tree { return e.tree }

// Model returns the bound model.
func (e *Engine) Model() *model.Model { return e.model }

// Patterns returns the bound patterns.
func (e *Engine) Patterns() *alignment.Patterns { return e.pats }

// GradientLen is the length Gradient expects: the edge count when branch is
// set, plus the model parameter count.
func (e *Engine) GradientLen(branch bool) int {
	n := e.model.NumParams()
	if branch {
		n += e.tree.NumEdges()
	}

	return n
}

// LogLikelihood returns Σ_p w_p·ℓ_p. It is −Inf when some pattern with
// positive weight is unattainable under the current parameters.
func (e *Engine) LogLikelihood() (float64, error) {
	if err := e.forward(); err != nil {
		return math.NaN(), err
	}
	e.opts.Recorder.LikelihoodEvaluated()

	return e.total(), nil
}

// SiteLogLikelihoods returns the unweighted log-likelihood of every pattern.
func (e *Engine) SiteLogLikelihoods() ([]float64, error) {
	if err := e.forward(); err != nil {
		return nil, err
	}
	e.opts.Recorder.LikelihoodEvaluated()

	return append([]float64(nil), e.site...), nil
}

// Gradient returns the log-likelihood and writes its gradient into grad:
// branch-length derivatives first in tree.Edges order when branch is set,
// then one entry per model parameter.
//
// Implementation:
//   - Stage 1: forward pass and per-pattern log-likelihoods.
//   - Stage 2: backward pass filling the outside buffers G and U.
//   - Stage 3: branch entries contract G, Q·P(t) and F on their edge; model
//     entries sum the contraction of ∂P/∂θ over all edges, plus the root term
//     ∂π·F/π·F and ∂π_s/π_s for single-state patterns.
//
// Patterns whose likelihood underflowed contribute nothing to the gradient.
//
// Errors: ErrGradientLen, model errors.
//
// Complexity: O(edges·P·(B³ + patterns·B²)).
func (e *Engine) Gradient(branch bool, grad []float64) (float64, error) {
	const tag = "Gradient"
	if len(grad) != e.GradientLen(branch) {
		return math.NaN(), likelihoodErrorf(tag, ErrGradientLen)
	}
	if err := e.forward(); err != nil {
		return math.NaN(), err
	}
	e.opts.Recorder.LikelihoodEvaluated()
	e.opts.Recorder.GradientEvaluated()
	ll := e.total()
	e.backward()

	edges := e.tree.Edges()
	off := 0
	if branch {
		for _, c := range edges {
			if err := e.model.RateTimesTransitionTo(e.D, e.tree.Length(c)); err != nil {
				return math.NaN(), likelihoodErrorf(tag, err)
			}
			grad[off] = e.contract(c, e.D)
			off++
		}
	}
	for p := 0; p < e.model.NumParams(); p++ {
		var g float64
		for _, c := range edges {
			if err := e.model.DerivativeTo(e.D, p, e.tree.Length(c)); err != nil {
				return math.NaN(), likelihoodErrorf(tag, err)
			}
			g += e.contract(c, e.D)
		}
		g += e.rootTerm(p)
		grad[off+p] = g
	}

	return ll, nil
}
