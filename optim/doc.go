// SPDX-License-Identifier: MIT

// Package optim minimizes a smooth function of N variables inside a box
// [lower, upper] with a trust-region quasi-Newton method.
//
// Each iteration proposes a Newton step from the BFGS inverse-Hessian
// approximation, trims it so no parameter leaves its box, and then either
// accepts it (possibly extended up to 2×), lands exactly on the boundary, or
// falls back to a Brent line search (package linesearch) with a shrunk trust
// radius. Parameters sitting on a bound with the gradient pushing outwards
// form the active set; they are frozen and their inverse-Hessian row and
// column reset to the identity.
//
// Bounds are never violated, even by rounding. Running out of iterations is
// not an error: Result carries the best point with Converged = false.
//
// The Optimizer owns its State, sized to N and reused across runs; it is not
// safe for concurrent use.
package optim
