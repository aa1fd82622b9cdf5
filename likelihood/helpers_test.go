// SPDX-License-Identifier: MIT

package likelihood_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/etetoolkit/ete-sub002/alignment"
	"github.com/etetoolkit/ete-sub002/likelihood"
	"github.com/etetoolkit/ete-sub002/model"
	"github.com/etetoolkit/ete-sub002/tree"
)

// pair builds root → (a:t1, b:t2).
func pair(t *testing.T, t1, t2 float64) *tree.Tree {
	t.Helper()
	tr := tree.New("root")
	_, err := tr.AddChild(0, "a", t1)
	require.NoError(t, err)
	_, err = tr.AddChild(0, "b", t2)
	require.NoError(t, err)

	return tr
}

// quartet builds root → (x:0.1 → (a:0.15, b:0.05), c:0.3, d:0.2), with a
// trifurcating root.
func quartet(t *testing.T) *tree.Tree {
	t.Helper()
	tr := tree.New("root")
	x, err := tr.AddChild(0, "x", 0.1)
	require.NoError(t, err)
	for _, leaf := range []struct {
		parent int
		name   string
		length float64
	}{{x, "a", 0.15}, {x, "b", 0.05}, {0, "c", 0.3}, {0, "d", 0.2}} {
		_, err = tr.AddChild(leaf.parent, leaf.name, leaf.length)
		require.NoError(t, err)
	}

	return tr
}

func nucPatterns(t *testing.T, taxa []string, seqs ...string) *alignment.Patterns {
	t.Helper()
	rows := make([][]int, len(seqs))
	for i, s := range seqs {
		rows[i] = alignment.EncodeNucleotides(s)
	}
	p, err := alignment.Compress(taxa, rows, 4, alignment.Gap)
	require.NoError(t, err)

	return p
}

// randomRows draws states in [0, states), with gaps at rate gap.
func randomRows(ntaxa, nsite, states int, gap float64, seed int64) [][]int {
	rng := rand.New(rand.NewSource(seed))
	rows := make([][]int, ntaxa)
	for i := range rows {
		rows[i] = make([]int, nsite)
		for s := range rows[i] {
			if rng.Float64() < gap {
				rows[i][s] = alignment.Gap
				continue
			}
			rows[i][s] = rng.Intn(states)
		}
	}

	return rows
}

func randomFreqs(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	var sum float64
	for i := range out {
		out[i] = 0.2 + rng.Float64()
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}

	return out
}

func mustEngine(t *testing.T, tr *tree.Tree, m *model.Model, p *alignment.Patterns, opts ...likelihood.Option) *likelihood.Engine {
	t.Helper()
	e, err := likelihood.New(tr, m, p, opts...)
	require.NoError(t, err)

	return e
}

func mustLL(t *testing.T, e *likelihood.Engine) float64 {
	t.Helper()
	ll, err := e.LogLikelihood()
	require.NoError(t, err)

	return ll
}

// jcPair is the Jukes-Cantor probability of seeing (x, y) at the ends of a
// path of length d.
func jcPair(same bool, d float64) float64 {
	e := math.Exp(-4 * d / 3)
	if same {
		return 0.25 * (0.25 + 0.75*e)
	}

	return 0.25 * (0.25 - 0.25*e)
}

// checkGradient compares Engine.Gradient with central differences of
// LogLikelihood over branch lengths and model parameters.
func checkGradient(t *testing.T, e *likelihood.Engine, tol float64) {
	t.Helper()
	grad := make([]float64, e.GradientLen(true))
	ll, err := e.Gradient(true, grad)
	require.NoError(t, err)
	require.InDelta(t, mustLL(t, e), ll, 1e-10)

	tr, m := e.Tree(), e.Model()
	k := 0
	for _, c := range tr.Edges() {
		t0 := tr.Length(c)
		h := 1e-6 * math.Max(1, t0)
		require.NoError(t, tr.SetLength(c, t0+h))
		up := mustLL(t, e)
		require.NoError(t, tr.SetLength(c, t0-h))
		down := mustLL(t, e)
		require.NoError(t, tr.SetLength(c, t0))
		fd := (up - down) / (2 * h)
		require.InDelta(t, fd, grad[k], tol*math.Max(1, math.Abs(fd)), "edge %d", c)
		k++
	}
	for p := 0; p < m.NumParams(); p++ {
		x0 := m.Param(p)
		h := 1e-6 * math.Max(1, math.Abs(x0))
		require.NoError(t, m.Update(p, x0+h))
		up := mustLL(t, e)
		require.NoError(t, m.Update(p, x0-h))
		down := mustLL(t, e)
		require.NoError(t, m.Update(p, x0))
		fd := (up - down) / (2 * h)
		require.InDelta(t, fd, grad[k], tol*math.Max(1, math.Abs(fd)), "param %s", m.ParamNames()[p])
		k++
	}
}
