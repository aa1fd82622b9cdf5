// SPDX-License-Identifier: MIT

// Package likelihood evaluates the log-likelihood of site patterns on a tree
// under a substitution model, together with its analytic gradient.
//
// The forward pass is Felsenstein pruning in post-order; the backward pass
// runs in pre-order and builds, for every edge, the likelihood of everything
// outside the subtree below it. Each gradient entry is then a contraction of
// the outside buffer, a derivative matrix and the inside buffer:
//
//	∂ℓ/∂θ = Σ_p w_p · (Gᵀ·∂P·F)_p / (Gᵀ·P·F)_p
//
// with ∂P = Q·P(t) for a branch length and the model's analytic ∂P/∂θ for a
// model parameter. Partial likelihoods are rescaled per pattern every few
// multiplications and the log of the factor carried in a log-scale
// accumulator, so deep trees do not underflow.
//
// Patterns with a single observed state or none are handled in closed form:
// their likelihood is π_s and 1 respectively.
//
// Objective and Fit expose the engine as a minimization problem for package
// optim, with branch lengths fixed, free, or scaled by one common factor.
//
// An Engine owns its buffers and is not safe for concurrent use; clone the
// model and build one engine per goroutine.
package likelihood
