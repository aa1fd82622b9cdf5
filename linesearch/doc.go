// SPDX-License-Identifier: MIT

// Package linesearch implements the bracketed one-dimensional primitives the
// optimizer and the per-site confidence search depend on.
//
// Key features:
//   - Minimize / MinimizeBracket: Brent's method, parabolic interpolation
//     through the three best points, with a golden-section step whenever the
//     parabolic proposal is unusable.
//   - Root: Ridders' method for a function whose values at the bracket ends
//     differ in sign, with a linear-interpolation answer on the final
//     iteration.
//
// Options:
//
//   - WithRelTol(r)    relative tolerance on x (default 3e-8).
//   - WithAbsTol(a)    absolute tolerance on x (default 1e-10).
//   - WithMaxIter(n)   iteration cap (default 100).
//
// Errors:
//
//   - ErrBadBracket    if lo ≥ hi, a bound is not finite, or mid is outside (lo, hi).
//   - ErrNotBracketed  if Root receives endpoint values of equal sign.
//   - ErrMaxIter       if Minimize runs out of iterations (best point still returned).
package linesearch
