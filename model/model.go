// SPDX-License-Identifier: MIT

package model

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/etetoolkit/ete-sub002/matrix"
)

// Model is one substitution process: a Family, its parameter vector, the
// equilibrium distribution π and the cached factorisation of Q.
//
// Parameters are ordered family parameters first, then (with WithFreqParams)
// one ratio θ_k = π_k/π_ref per non-reference state.
type Model struct {
	id     uuid.UUID
	fam    Family
	scheme FreqScheme
	opts   Options

	nfam         int
	params       []float64
	lower, upper []float64
	names        []string

	ref    int   // reference state of the frequency parameters, −1 without
	others []int // state of each frequency parameter
	pi     []float64

	rate       float64
	fixedScale float64 // > 0 overrides the natural Scale

	// lazily rebuilt state
	dirty      bool
	factorized bool
	basisOK    []bool

	S, Q    *matrix.Dense // exchangeabilities, unnormalised rate matrix
	scale   float64       // natural Scale of Q
	live    []bool        // π_i ≥ FreqEpsilon
	eval    []float64     // eigenvalues of Q (slot order)
	V, Vinv *matrix.Dense
	basis   []*matrix.Dense // V⁻¹·∂Q_norm/∂θ_p·V

	// scratch
	dS, dQ, tmp, tmp2 *matrix.Dense
	ex                []float64
	dpi               []float64
}

// New builds a Model for fam under scheme.
//
// freqs is the equilibrium distribution (normalised here). It is ignored for
// FreqEqual, where π is uniform, and may be nil for any scheme to request a
// uniform π.
//
// Errors: ErrUnknownScheme, ErrBadFrequencies, ErrFreqParams.
func New(fam Family, scheme FreqScheme, freqs []float64, opts ...Option) (*Model, error) {
	const tag = "New"
	if !scheme.valid() {
		return nil, modelErrorf(tag, ErrUnknownScheme)
	}
	o := DefaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	if o.FreqParams && scheme == FreqEqual {
		return nil, modelErrorf(tag, ErrFreqParams)
	}

	B := fam.States()
	pi, err := normaliseFreqs(freqs, B, scheme)
	if err != nil {
		return nil, modelErrorf(tag, err)
	}

	lo, hi := fam.Bounds()
	m := &Model{
		id:     uuid.New(),
		fam:    fam,
		scheme: scheme,
		opts:   o,
		nfam:   fam.NumParams(),
		params: fam.Defaults(),
		lower:  lo,
		upper:  hi,
		names:  fam.ParamNames(),
		ref:    -1,
		pi:     pi,
		rate:   o.Rate,
		dirty:  true,
	}
	if o.FreqParams {
		m.initFreqParams()
	}
	m.alloc()

	return m, nil
}

func normaliseFreqs(freqs []float64, B int, scheme FreqScheme) ([]float64, error) {
	pi := make([]float64, B)
	if freqs == nil || scheme == FreqEqual {
		for i := range pi {
			pi[i] = 1 / float64(B)
		}
		return pi, nil
	}
	if len(freqs) != B {
		return nil, ErrBadFrequencies
	}
	var sum float64
	for _, f := range freqs {
		if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, ErrBadFrequencies
		}
		sum += f
	}
	if sum <= 0 {
		return nil, ErrBadFrequencies
	}
	for i, f := range freqs {
		pi[i] = f / sum
	}

	return pi, nil
}

// initFreqParams picks the most frequent state as reference and appends one
// clamped ratio parameter per other state.
func (m *Model) initFreqParams() {
	B := len(m.pi)
	m.ref = 0
	for k := 1; k < B; k++ {
		if m.pi[k] > m.pi[m.ref] {
			m.ref = k
		}
	}
	for k := 0; k < B; k++ {
		if k == m.ref {
			continue
		}
		theta := math.Min(math.Max(m.pi[k]/m.pi[m.ref], FreqParamMin), FreqParamMax)
		m.others = append(m.others, k)
		m.params = append(m.params, theta)
		m.lower = append(m.lower, FreqParamMin)
		m.upper = append(m.upper, FreqParamMax)
		m.names = append(m.names, fmt.Sprintf("pi%d", k))
	}
	m.syncFreqs()
}

// syncFreqs recomputes π from the ratio parameters: π_k = θ_k / Σθ, θ_ref = 1.
func (m *Model) syncFreqs() {
	if m.ref < 0 {
		return
	}
	sum := 1.0
	for _, th := range m.params[m.nfam:] {
		sum += th
	}
	m.pi[m.ref] = 1 / sum
	for p, k := range m.others {
		m.pi[k] = m.params[m.nfam+p] / sum
	}
}

func (m *Model) alloc() {
	B := len(m.pi)
	m.S = matrix.NewSquare(B)
	m.Q = matrix.NewSquare(B)
	m.V = matrix.NewSquare(B)
	m.Vinv = matrix.NewSquare(B)
	m.dS = matrix.NewSquare(B)
	m.dQ = matrix.NewSquare(B)
	m.tmp = matrix.NewSquare(B)
	m.tmp2 = matrix.NewSquare(B)
	m.live = make([]bool, B)
	m.eval = make([]float64, B)
	m.ex = make([]float64, B)
	m.dpi = make([]float64, B)
	m.basis = make([]*matrix.Dense, len(m.params))
	m.basisOK = make([]bool, len(m.params))
}

// ID is the identity used by ScaleCache. Clones share it.
func (m *Model) ID() uuid.UUID { return m.id }

// Family returns the model family.
func (m *Model) Family() Family { return m.fam }

// Scheme returns the frequency-weighting scheme.
func (m *Model) Scheme() FreqScheme { return m.scheme }

// States is the alphabet size B.
func (m *Model) States() int { return len(m.pi) }

// NumParams is the total parameter count P.
func (m *Model) NumParams() int { return len(m.params) }

// NumFamilyParams is the count of family parameters (before frequencies).
func (m *Model) NumFamilyParams() int { return m.nfam }

// HasFreqParams reports whether π is parameterised.
func (m *Model) HasFreqParams() bool { return m.ref >= 0 }

// ParamNames returns a copy of the parameter names.
func (m *Model) ParamNames() []string { return append([]string(nil), m.names...) }

// Bounds returns copies of the parameter box.
func (m *Model) Bounds() (lower, upper []float64) {
	return append([]float64(nil), m.lower...), append([]float64(nil), m.upper...)
}

// Param returns parameter i. It panics when i is out of range.
func (m *Model) Param(i int) float64 { return m.params[i] }

// Params returns a copy of the parameter vector.
func (m *Model) Params() []float64 { return append([]float64(nil), m.params...) }

// Freqs returns a copy of π.
func (m *Model) Freqs() []float64 { return append([]float64(nil), m.pi...) }

// Update sets parameter i to v and marks the model dirty.
func (m *Model) Update(i int, v float64) error {
	if i < 0 || i >= len(m.params) {
		return modelErrorf(fmt.Sprintf("Update(%d)", i), ErrParamIndex)
	}
	m.params[i] = v
	if i >= m.nfam {
		m.syncFreqs()
	}
	m.invalidate()

	return nil
}

// SetParams replaces the whole parameter vector.
func (m *Model) SetParams(vals []float64) error {
	if len(vals) != len(m.params) {
		return modelErrorf("SetParams", ErrParamIndex)
	}
	copy(m.params, vals)
	m.syncFreqs()
	m.invalidate()

	return nil
}

func (m *Model) invalidate() {
	m.dirty = true
	m.factorized = false
	for i := range m.basisOK {
		m.basisOK[i] = false
	}
}

// Rate returns the rate multiplier.
func (m *Model) Rate() float64 { return m.rate }

// SetRate sets the rate multiplier applied to branch lengths. The multiplier
// is a constant for derivatives and does not invalidate the factorisation.
func (m *Model) SetRate(r float64) { m.rate = r }

// FixScale pins Scale to s (> 0); derivatives then treat it as constant.
func (m *Model) FixScale(s float64) {
	if s <= 0 || math.IsNaN(s) || math.IsInf(s, 0) {
		return
	}
	m.fixedScale = s
	for i := range m.basisOK {
		m.basisOK[i] = false
	}
}

// ReleaseScale returns to the natural Scale of Q.
func (m *Model) ReleaseScale() {
	if m.fixedScale == 0 {
		return
	}
	m.fixedScale = 0
	for i := range m.basisOK {
		m.basisOK[i] = false
	}
}

// ScaleFixed reports whether FixScale is in effect.
func (m *Model) ScaleFixed() bool { return m.fixedScale > 0 }

// Scale returns the normaliser applied to Q: the fixed value if any,
// otherwise 1/(−Σ π_i Q_ii).
func (m *Model) Scale() float64 {
	m.rebuild()
	if m.fixedScale > 0 {
		return m.fixedScale
	}

	return m.scale
}

// NaturalScale returns 1/(−Σ π_i Q_ii) regardless of FixScale.
func (m *Model) NaturalScale() float64 {
	m.rebuild()

	return m.scale
}

// Clone returns an independent copy sharing Family and identity.
func (m *Model) Clone() *Model {
	c := &Model{
		id:         m.id,
		fam:        m.fam,
		scheme:     m.scheme,
		opts:       m.opts,
		nfam:       m.nfam,
		params:     append([]float64(nil), m.params...),
		lower:      append([]float64(nil), m.lower...),
		upper:      append([]float64(nil), m.upper...),
		names:      append([]string(nil), m.names...),
		ref:        m.ref,
		others:     append([]int(nil), m.others...),
		pi:         append([]float64(nil), m.pi...),
		rate:       m.rate,
		fixedScale: m.fixedScale,
		dirty:      true,
	}
	c.alloc()

	return c
}

// RateMatrix returns a copy of the unnormalised rate matrix Q. Rows sum to
// zero and Σ π_i Q_ii = −1/NaturalScale().
func (m *Model) RateMatrix() *matrix.Dense {
	m.rebuild()

	return m.Q.CloneDense()
}

// FreqDerivative returns ∂π/∂θ_i; zero for family parameters.
func (m *Model) FreqDerivative(i int) []float64 {
	out := make([]float64, len(m.pi))
	m.freqDerivativeTo(out, i)

	return out
}

// FreqDerivativeTo writes ∂π/∂θ_i into dst (len B).
func (m *Model) FreqDerivativeTo(dst []float64, i int) {
	m.freqDerivativeTo(dst, i)
}

// freqDerivativeTo uses ∂π_k/∂θ_p = (δ_{k,s(p)} − π_k)·π_ref.
func (m *Model) freqDerivativeTo(dst []float64, i int) {
	for k := range dst {
		dst[k] = 0
	}
	if i < m.nfam || m.ref < 0 {
		return
	}
	target := m.others[i-m.nfam]
	piRef := m.pi[m.ref]
	for k := range dst {
		dst[k] = -m.pi[k] * piRef
	}
	dst[target] += piRef
}
