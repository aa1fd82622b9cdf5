// SPDX-License-Identifier: MIT

package likelihood

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/etetoolkit/ete-sub002/matrix"
)

// forward refreshes the transition matrices and runs pruning in post-order,
// then fills the per-pattern log-likelihoods.
func (e *Engine) forward() error {
	root := e.tree.Root()
	for id := range e.P {
		if id == root {
			continue
		}
		if err := e.model.TransitionMatrixTo(e.P[id], e.tree.Length(id)); err != nil {
			return likelihoodErrorf("forward", err)
		}
	}
	copy(e.pi, e.model.Freqs())

	B, every := e.B, e.opts.RescaleEvery
	for _, v := range e.post {
		F := &e.F[v]
		F.fill(1)
		for _, c := range e.tree.Children(v) {
			F.mul(&e.M[c])
			F.rescale(B, every)
		}
		e.applyData(F, v)
		if v != root {
			e.message(v)
		}
	}

	Fr := &e.F[root]
	for k, p := range e.full {
		e.site[p] = siteLog(floats.Dot(e.pi, Fr.row(k, B)), Fr.scale[k])
	}
	for _, d := range e.single {
		e.site[d.pattern] = siteLog(e.pi[d.state], 0)
	}

	return nil
}

// siteLog clamps a negative or non-finite likelihood to zero and maps
// anything not above the smallest positive float to −Inf.
func siteLog(l, scale float64) float64 {
	if l < 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		l = 0
	}
	if l <= math.SmallestNonzeroFloat64 {
		return math.Inf(-1)
	}

	return math.Log(l) + scale
}

func (e *Engine) total() float64 {
	var ll float64
	for p, w := range e.pats.Weights {
		if w == 0 {
			continue
		}
		if math.IsInf(e.site[p], -1) {
			return math.Inf(-1)
		}
		ll += w * e.site[p]
	}

	return ll
}

// applyData zeroes every state but the observed one in the rows of a node
// that carries data.
func (e *Engine) applyData(buf *partial, v int) {
	r := e.rows[v]
	if r < 0 {
		return
	}
	B := e.B
	for k, p := range e.full {
		s := e.pats.Columns[p][r]
		if s == e.pats.Gap {
			continue
		}
		row := buf.row(k, B)
		x := row[s]
		for i := range row {
			row[i] = 0
		}
		row[s] = x
	}
}

// message computes M_v = P_v·F_v.
func (e *Engine) message(v int) {
	B := e.B
	P, F, M := e.P[v], &e.F[v], &e.M[v]
	for k := range e.full {
		f, m := F.row(k, B), M.row(k, B)
		for a := 0; a < B; a++ {
			m[a] = floats.Dot(P.Row(a), f)
		}
	}
	copy(M.scale, F.scale)
	M.pending = F.pending + 1
	M.rescale(B, e.opts.RescaleEvery)
}

// outside computes U_v[b] = Σ_a G_v[a]·P_v[a][b] for a non-root v.
func (e *Engine) outside(v int) {
	B := e.B
	P, G, U := e.P[v], &e.G[v], &e.U[v]
	for k := range e.full {
		g, u := G.row(k, B), U.row(k, B)
		for i := range u {
			u[i] = 0
		}
		for a, ga := range g {
			if ga != 0 {
				floats.AddScaled(u, ga, P.Row(a))
			}
		}
	}
	copy(U.scale, G.scale)
	U.pending = G.pending + 1
}

// backward fills G for every non-root node in pre-order.
//
// Implementation:
//   - Stage 1: U_root = π over every pattern; U_v = (G_v·P_v) otherwise;
//     both restricted to the node's observed state.
//   - Stage 2: G_c = U_v ∘ Π_{siblings s ≠ c} M_s, built with one forward
//     sweep of prefix products and one backward sweep of suffix products.
func (e *Engine) backward() {
	B, every, root := e.B, e.opts.RescaleEvery, e.tree.Root()
	for _, v := range e.pre {
		kids := e.tree.Children(v)
		if len(kids) == 0 {
			continue
		}
		U := &e.U[v]
		if v == root {
			for k := range e.full {
				copy(U.row(k, B), e.pi)
				U.scale[k] = 0
			}
			U.pending = 0
		} else {
			e.outside(v)
		}
		e.applyData(U, v)
		U.rescale(B, every)

		run := &e.run
		run.copyFrom(U)
		for _, c := range kids {
			e.G[c].copyFrom(run)
			run.mul(&e.M[c])
			run.rescale(B, every)
		}
		run.fill(1)
		for j := len(kids) - 1; j >= 0; j-- {
			c := kids[j]
			if j < len(kids)-1 {
				e.G[c].mul(run)
				e.G[c].rescale(B, every)
			}
			run.mul(&e.M[c])
			run.rescale(B, every)
		}
	}
}

// contract returns Σ_p w_p·(Gᵀ·D·F)/(Gᵀ·M) on edge c. M and F may carry
// different scales after M was rescaled on its own.
func (e *Engine) contract(c int, D *matrix.Dense) float64 {
	B := e.B
	G, F, M := &e.G[c], &e.F[c], &e.M[c]
	var sum float64
	for k, p := range e.full {
		w := e.pats.Weights[p]
		if w == 0 || math.IsInf(e.site[p], -1) {
			continue
		}
		g, f, m := G.row(k, B), F.row(k, B), M.row(k, B)
		den := floats.Dot(g, m)
		if !(den > 0) || math.IsInf(den, 0) {
			continue
		}
		var num float64
		for a, ga := range g {
			if ga != 0 {
				num += ga * floats.Dot(D.Row(a), f)
			}
		}
		sum += w * num / den * math.Exp(F.scale[k]-M.scale[k])
	}

	return sum
}

// rootTerm returns the contribution of ∂π/∂θ_p: Σ_p w_p·(∂π·F_root)/(π·F_root)
// over pruned patterns and w·∂π_s/π_s over single-state ones.
func (e *Engine) rootTerm(p int) float64 {
	e.model.FreqDerivativeTo(e.dpi, p)
	zero := true
	for _, d := range e.dpi {
		if d != 0 {
			zero = false
			break
		}
	}
	if zero {
		return 0
	}

	B := e.B
	Fr := &e.F[e.tree.Root()]
	var sum float64
	for k, pat := range e.full {
		w := e.pats.Weights[pat]
		if w == 0 || math.IsInf(e.site[pat], -1) {
			continue
		}
		f := Fr.row(k, B)
		den := floats.Dot(e.pi, f)
		if !(den > 0) {
			continue
		}
		sum += w * floats.Dot(e.dpi, f) / den
	}
	for _, d := range e.single {
		w := e.pats.Weights[d.pattern]
		if w == 0 || !(e.pi[d.state] > 0) {
			continue
		}
		sum += w * e.dpi[d.state] / e.pi[d.state]
	}

	return sum
}
