// SPDX-License-Identifier: MIT

// Package model implements continuous-time Markov substitution models.
//
// A Model couples a Family, which supplies the symmetric exchangeability
// matrix S(θ) and ∂S/∂θ, with an equilibrium distribution π and one of four
// frequency-weighting schemes. From these it builds the instantaneous rate
// matrix
//
//	Q_ij = S_ij · w(π_i, π_j)   (i ≠ j),   Q_ii = −Σ_{j≠i} Q_ij,
//
// the normalising Scale = 1 / (−Σ π_i Q_ii), the eigen-decomposition of Q and
// from it the transition matrices
//
//	P(t) = V · diag(exp(λ·Scale·rate·t)) · V⁻¹
//
// together with their analytic derivatives with respect to every parameter.
//
// Families:
//   - CodonM0:  κ (transition/transversion) and ω (dN/dS) over sense codons.
//   - CodonGTR: five nucleotide exchangeabilities (GT fixed at 1) and ω.
//   - Table:    position→parameter lookup; JC69, K80, GTR, Poisson20, GTR20.
//
// Weighting schemes (FreqScheme):
//   - FreqEqual:    w = 1 (π is uniform).
//   - FreqTarget:   w = π_j.
//   - FreqSqrt:     w = √(π_j/π_i).
//   - FreqFixation: w = x/(1−e^{−x}), x = ln(π_j/π_i).
//
// Every scheme keeps π stationary and the chain reversible, which lets Q be
// symmetrised as Π^{1/2}·Q·Π^{−1/2} and handed to matrix.EigenSym.
//
// Laziness: Update only marks the model dirty. The rate matrix is rebuilt and
// re-factorised on the next RateMatrix, TransitionMatrix or Derivative call.
// A Model is not safe for concurrent mutation; Clone one per goroutine.
//
// ScaleCache memoises Scale keyed by (model identity, parameter digest). It is
// owned by the caller and safe for concurrent use.
package model
