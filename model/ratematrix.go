// SPDX-License-Identifier: MIT

package model

import "github.com/etetoolkit/ete-sub002/matrix"

// rebuild recomputes S, Q and the natural Scale when the model is dirty.
//
// Implementation:
//   - Stage 1: S ← Family.Exchange(θ); mark states with π < FreqEpsilon absent.
//   - Stage 2: Q_ij ← S_ij·w(π_i, π_j) between present states, 0 otherwise;
//     Q_ii ← −Σ_{j≠i} Q_ij.
//   - Stage 3: Scale ← 1/(−Σ π_i Q_ii); a degenerate Q (no substitutions)
//     keeps Scale = 1.
//
// Complexity: O(B²).
func (m *Model) rebuild() {
	if !m.dirty {
		return
	}
	B := len(m.pi)
	m.fam.Exchange(m.params[:m.nfam], m.S)
	for i, p := range m.pi {
		m.live[i] = p >= m.opts.FreqEpsilon
	}

	m.Q.Zero()
	var d float64
	for i := 0; i < B; i++ {
		if !m.live[i] {
			continue
		}
		srow, qrow := m.S.Row(i), m.Q.Row(i)
		var sum float64
		for j := 0; j < B; j++ {
			if j == i || !m.live[j] || srow[j] == 0 {
				continue
			}
			qrow[j] = srow[j] * weight(m.scheme, m.pi[i], m.pi[j])
			sum += qrow[j]
		}
		qrow[i] = -sum
		d += m.pi[i] * sum
	}
	m.scale = 1
	if d > 0 {
		m.scale = 1 / d
	}
	m.dirty = false
	m.factorized = false
}

// rateDerivativeTo writes ∂(Scale·Q)/∂θ_p into dst.
//
// Implementation:
//   - Stage 1: ∂Q_raw off-diagonals: ∂S_ij·w_ij for family parameters,
//     S_ij·∂w_ij for frequency parameters; diagonal fix-up as in rebuild.
//   - Stage 2: ∂Scale = Scale²·Σ(∂π_i·Q_ii + π_i·∂Q_ii), zero when Scale is
//     fixed.
//   - Stage 3: dst = Scale·∂Q_raw + ∂Scale·Q_raw.
//
// Complexity: O(B²).
func (m *Model) rateDerivativeTo(dst *matrix.Dense, p int) {
	m.rebuild()
	B := len(m.pi)
	freq := p >= m.nfam
	if freq {
		m.freqDerivativeTo(m.dpi, p)
	} else {
		m.fam.ExchangeDeriv(m.params[:m.nfam], p, m.dS)
		for k := range m.dpi {
			m.dpi[k] = 0
		}
	}

	dst.Zero()
	for i := 0; i < B; i++ {
		if !m.live[i] {
			continue
		}
		row := dst.Row(i)
		srow, dsrow := m.S.Row(i), m.dS.Row(i)
		var sum float64
		for j := 0; j < B; j++ {
			if j == i || !m.live[j] {
				continue
			}
			var v float64
			if freq {
				if srow[j] == 0 {
					continue
				}
				v = srow[j] * weightDeriv(m.scheme, m.pi[i], m.pi[j], m.dpi[i], m.dpi[j])
			} else {
				if dsrow[j] == 0 {
					continue
				}
				v = dsrow[j] * weight(m.scheme, m.pi[i], m.pi[j])
			}
			row[j] = v
			sum += v
		}
		row[i] = -sum
	}

	s, ds := m.scale, 0.0
	if m.fixedScale > 0 {
		s = m.fixedScale
	} else {
		for i := 0; i < B; i++ {
			ds += m.dpi[i]*m.Q.Row(i)[i] + m.pi[i]*dst.Row(i)[i]
		}
		ds *= s * s
	}
	q, out := m.Q.Data(), dst.Data()
	for k := range out {
		out[k] = s*out[k] + ds*q[k]
	}
}

// RateDerivative returns ∂(Scale·Q)/∂θ_p, the derivative of the normalised
// rate matrix.
func (m *Model) RateDerivative(p int) (*matrix.Dense, error) {
	if p < 0 || p >= len(m.params) {
		return nil, modelErrorf("RateDerivative", ErrParamIndex)
	}
	out := matrix.NewSquare(len(m.pi))
	m.rateDerivativeTo(out, p)

	return out, nil
}
