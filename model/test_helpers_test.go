// SPDX-License-Identifier: MIT

package model_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"

	"github.com/etetoolkit/ete-sub002/gencode"
	"github.com/etetoolkit/ete-sub002/matrix"
	"github.com/etetoolkit/ete-sub002/model"
)

// randomFreqs returns a normalised vector bounded away from zero.
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

func mustModel(t *testing.T, fam model.Family, s model.FreqScheme, freqs []float64, opts ...model.Option) *model.Model {
	t.Helper()
	m, err := model.New(fam, s, freqs, opts...)
	require.NoError(t, err)

	return m
}

func mustP(t *testing.T, m *model.Model, bl float64) *matrix.Dense {
	t.Helper()
	P, err := m.TransitionMatrix(bl)
	require.NoError(t, err)

	return P
}

func maxAbsDiff(a, b *matrix.Dense) float64 {
	var d float64
	for i, v := range a.Data() {
		d = math.Max(d, math.Abs(v-b.Data()[i]))
	}

	return d
}

// fdDerivative estimates ∂P(bl)/∂θ_p entrywise with a central difference.
func fdDerivative(t *testing.T, m *model.Model, p int, bl float64) *matrix.Dense {
	t.Helper()
	B := m.States()
	out := matrix.NewSquare(B)
	x0 := m.Param(p)
	plus, minus := m.Clone(), m.Clone()
	h := 1e-6 * math.Max(1, math.Abs(x0))
	require.NoError(t, plus.Update(p, x0+h))
	require.NoError(t, minus.Update(p, x0-h))
	Pp, Pm := mustP(t, plus, bl), mustP(t, minus, bl)
	for k, v := range Pp.Data() {
		out.Data()[k] = (v - Pm.Data()[k]) / (2 * h)
	}

	return out
}

// scalarFD differentiates one scalar function with gonum's central formula.
func scalarFD(f func(float64) float64, x float64) float64 {
	return fd.Derivative(f, x, &fd.Settings{Formula: fd.Central, Step: 1e-6})
}

// fixtures enumerates representative models.
func fixtures(t *testing.T) map[string]*model.Model {
	t.Helper()
	code := gencode.Standard()
	nf := randomFreqs(4, 1)
	cf := randomFreqs(code.NumSense(), 2)

	return map[string]*model.Model{
		"jc69":          mustModel(t, model.JC69(), model.FreqEqual, nil),
		"k80":           mustModel(t, model.K80(), model.FreqEqual, nil),
		"gtr/target":    mustModel(t, model.GTR(), model.FreqTarget, nf),
		"gtr/sqrt":      mustModel(t, model.GTR(), model.FreqSqrt, nf),
		"gtr/fixation":  mustModel(t, model.GTR(), model.FreqFixation, nf),
		"m0/target":     mustModel(t, model.NewCodonM0(code), model.FreqTarget, cf),
		"codongtr/fix":  mustModel(t, model.NewCodonGTR(code), model.FreqFixation, cf),
		"gtr/freqparam": mustModel(t, model.GTR(), model.FreqTarget, nf, model.WithFreqParams()),
	}
}
