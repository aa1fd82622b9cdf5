// SPDX-License-Identifier: MIT

package model

import (
	"errors"
	"fmt"
	"math"

	"github.com/etetoolkit/ete-sub002/matrix"
)

const symTol = 1e-9

// factorize caches Q = V·diag(λ)·V⁻¹.
//
// Implementation:
//   - Stage 1: over the present states L, A = Π^{1/2}·Q·Π^{−1/2}; reversibility
//     makes A symmetric, and it is symmetrised exactly before solving.
//   - Stage 2: A = U·diag(λ)·Uᵀ by matrix.EigenSym.
//   - Stage 3: V = Π^{−1/2}·U and V⁻¹ = Uᵀ·Π^{1/2} on L. Each absent state gets
//     its own slot with λ = 0 and unit rows in V and V⁻¹, so P keeps it fixed.
//
// Complexity: O(B³).
func (m *Model) factorize() error {
	m.rebuild()
	if m.factorized {
		return nil
	}
	B := len(m.pi)
	present := make([]int, 0, B)
	for i := 0; i < B; i++ {
		if m.live[i] {
			present = append(present, i)
		}
	}
	n := len(present)
	if n == 0 {
		return modelErrorf("factorize", ErrFactorize)
	}
	sq := make([]float64, n)
	for a, i := range present {
		sq[a] = math.Sqrt(m.pi[i])
	}

	A := matrix.NewSquare(n)
	for a, i := range present {
		row := A.Row(a)
		for b, j := range present {
			row[b] = 0.5 * (sq[a]*m.Q.Row(i)[j]/sq[b] + sq[b]*m.Q.Row(j)[i]/sq[a])
		}
	}
	vals, U, err := matrix.EigenSym(A, symTol)
	if err != nil {
		return modelErrorf("factorize", errors.Join(ErrFactorize, err))
	}

	m.V.Zero()
	m.Vinv.Zero()
	for k := 0; k < n; k++ {
		m.eval[k] = math.Min(vals[k], 0)
		for a, i := range present {
			u := U.Row(a)[k]
			m.V.Row(i)[k] = u / sq[a]
			m.Vinv.Row(k)[i] = u * sq[a]
		}
	}
	slot := n
	for i := 0; i < B; i++ {
		if m.live[i] {
			continue
		}
		m.eval[slot] = 0
		m.V.Row(i)[slot] = 1
		m.Vinv.Row(slot)[i] = 1
		slot++
	}
	m.factorized = true

	return nil
}

// tau returns branchLength·rate·Scale, rejecting negative values beyond
// rounding.
func (m *Model) tau(tag string, t float64) (float64, error) {
	tau := t * m.rate * m.Scale()
	if tau < -NegativeTimeTolerance || math.IsNaN(tau) {
		return 0, modelErrorf(fmt.Sprintf("%s(%g)", tag, t), ErrNegativeTime)
	}

	return math.Max(tau, 0), nil
}

// TransitionMatrix returns P(t) as a fresh matrix.
func (m *Model) TransitionMatrix(t float64) (*matrix.Dense, error) {
	out := matrix.NewSquare(len(m.pi))
	if err := m.TransitionMatrixTo(out, t); err != nil {
		return nil, err
	}

	return out, nil
}

// TransitionMatrixTo writes P(t) = V·diag(exp(λ·Scale·rate·t))·V⁻¹ into dst.
// P(0) is exactly the identity.
//
// Errors: ErrNegativeTime, ErrFactorize, matrix shape errors.
//
// Complexity: O(B³).
func (m *Model) TransitionMatrixTo(dst *matrix.Dense, t float64) error {
	const tag = "TransitionMatrix"
	tau, err := m.tau(tag, t)
	if err != nil {
		return err
	}
	if tau == 0 {
		if err = matrix.ValidateSameShape(dst, m.Q); err != nil {
			return modelErrorf(tag, err)
		}
		dst.SetIdentity()
		return nil
	}
	if err = m.factorize(); err != nil {
		return err
	}
	for k, l := range m.eval {
		m.ex[k] = math.Exp(l * tau)
	}

	return m.expand(tag, dst, m.ex)
}

// RateTimesTransitionTo writes Q_eff·P(t) = ∂P/∂t into dst, where
// Q_eff = Scale·rate·Q.
func (m *Model) RateTimesTransitionTo(dst *matrix.Dense, t float64) error {
	const tag = "RateTimesTransition"
	tau, err := m.tau(tag, t)
	if err != nil {
		return err
	}
	if err = m.factorize(); err != nil {
		return err
	}
	f := m.rate * m.Scale()
	for k, l := range m.eval {
		m.ex[k] = l * f * math.Exp(l*tau)
	}

	return m.expand(tag, dst, m.ex)
}

// expand writes V·diag(d)·V⁻¹ into dst.
func (m *Model) expand(tag string, dst *matrix.Dense, d []float64) error {
	B := len(d)
	for i := 0; i < B; i++ {
		src, out := m.V.Row(i), m.tmp.Row(i)
		for k, v := range src {
			out[k] = v * d[k]
		}
	}
	if err := matrix.MulTo(dst, m.tmp, m.Vinv); err != nil {
		return modelErrorf(tag, err)
	}

	return nil
}

// Derivative returns ∂P(t)/∂θ_p as a fresh matrix.
func (m *Model) Derivative(p int, t float64) (*matrix.Dense, error) {
	out := matrix.NewSquare(len(m.pi))
	if err := m.DerivativeTo(out, p, t); err != nil {
		return nil, err
	}

	return out, nil
}

// DerivativeTo writes ∂P(t)/∂θ_p into dst.
//
// Implementation:
//   - Stage 1: X = V⁻¹·∂(Scale·Q)/∂θ_p·V, cached per parameter until the next
//     Update.
//   - Stage 2: with μ = λ·Scale·rate, F_kl = (e^{μ_k t} − e^{μ_l t})/(μ_k − μ_l),
//     or t·e^{μ_k t} when μ_k = μ_l, evaluated through expm1 for accuracy.
//   - Stage 3: ∂P = V·(rate·F∘X)·V⁻¹.
//
// The rate multiplier is a constant here.
//
// Errors: ErrParamIndex, ErrNegativeTime, ErrFactorize.
//
// Complexity: O(B³) per call, plus O(B³) once per parameter for X.
func (m *Model) DerivativeTo(dst *matrix.Dense, p int, t float64) error {
	const tag = "Derivative"
	if p < 0 || p >= len(m.params) {
		return modelErrorf(fmt.Sprintf("%s(%d)", tag, p), ErrParamIndex)
	}
	tau, err := m.tau(tag, t)
	if err != nil {
		return err
	}
	if err = m.factorize(); err != nil {
		return err
	}
	X, err := m.derivBasis(p)
	if err != nil {
		return modelErrorf(tag, err)
	}

	// μ_k·t = λ_k·tau.
	B := len(m.eval)
	for k := 0; k < B; k++ {
		lk := m.eval[k] * tau
		xrow, yrow := X.Row(k), m.tmp2.Row(k)
		for l := 0; l < B; l++ {
			ll := m.eval[l] * tau
			diff := lk - ll
			var F float64
			if diff == 0 {
				F = t * math.Exp(lk)
			} else {
				F = t * math.Exp(ll) * math.Expm1(diff) / diff
			}
			yrow[l] = m.rate * F * xrow[l]
		}
	}
	if err = matrix.MulTo(m.tmp, m.V, m.tmp2); err != nil {
		return modelErrorf(tag, err)
	}
	if err = matrix.MulTo(dst, m.tmp, m.Vinv); err != nil {
		return modelErrorf(tag, err)
	}

	return nil
}

// derivBasis returns the cached V⁻¹·∂(Scale·Q)/∂θ_p·V.
func (m *Model) derivBasis(p int) (*matrix.Dense, error) {
	if m.basisOK[p] {
		return m.basis[p], nil
	}
	if m.basis[p] == nil {
		m.basis[p] = matrix.NewSquare(len(m.pi))
	}
	m.rateDerivativeTo(m.dQ, p)
	if err := matrix.MulTo(m.tmp, m.Vinv, m.dQ); err != nil {
		return nil, err
	}
	if err := matrix.MulTo(m.basis[p], m.tmp, m.V); err != nil {
		return nil, err
	}
	m.basisOK[p] = true

	return m.basis[p], nil
}
