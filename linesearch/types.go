// SPDX-License-Identifier: MIT

// Package linesearch defines options, results and sentinel errors shared by
// the minimizer and the root finder.
package linesearch

import (
	"errors"
	"math"
)

var (
	// ErrBadBracket is returned when the supplied interval is empty, not finite,
	// or the interior point lies outside it.
	ErrBadBracket = errors.New("linesearch: invalid bracket")

	// ErrNotBracketed indicates that f(lo) and f(hi) have the same sign, so
	// the interval is not known to contain a root.
	ErrNotBracketed = errors.New("linesearch: root not bracketed")

	// ErrMaxIter indicates the iteration budget ran out before the tolerance
	// was met. Results accompanying this error are still the best found.
	ErrMaxIter = errors.New("linesearch: maximum iterations exceeded")
)

// Defaults (single source of truth).
const (
	// DefaultRelTol is about √ε for float64: parabolic minimization cannot
	// locate x more precisely than that.
	DefaultRelTol = 3e-8

	// DefaultAbsTol guards the relative test when the minimum sits at x≈0.
	DefaultAbsTol = 1e-10

	// DefaultMaxIter caps iterations of both primitives.
	DefaultMaxIter = 100
)

// goldenRatio is the golden-section fraction (3 − √5)/2.
var goldenRatio = 0.5 * (3 - math.Sqrt(5))

// Func is a scalar function of one variable.
type Func func(x float64) float64

// Option configures the 1-D primitives.
type Option func(*Options)

// Options holds tolerances and budgets for Minimize and Root.
type Options struct {
	RelTol  float64 // relative x tolerance
	AbsTol  float64 // absolute x tolerance
	MaxIter int     // iteration cap
}

// DefaultOptions returns Options with documented defaults.
func DefaultOptions() Options {
	return Options{
		RelTol:  DefaultRelTol,
		AbsTol:  DefaultAbsTol,
		MaxIter: DefaultMaxIter,
	}
}

// WithRelTol sets the relative tolerance; non-positive or NaN values are ignored.
func WithRelTol(r float64) Option {
	return func(o *Options) {
		if r > 0 {
			o.RelTol = r
		}
	}
}

// WithAbsTol sets the absolute tolerance; non-positive or NaN values are ignored.
func WithAbsTol(a float64) Option {
	return func(o *Options) {
		if a > 0 {
			o.AbsTol = a
		}
	}
}

// WithMaxIter sets the iteration cap; values < 1 are ignored.
func WithMaxIter(n int) Option {
	return func(o *Options) {
		if n >= 1 {
			o.MaxIter = n
		}
	}
}

func gatherOptions(opts []Option) Options {
	o := DefaultOptions()
	for _, fn := range opts {
		fn(&o)
	}

	return o
}

// Result reports the minimizer outcome.
type Result struct {
	X           float64 // abscissa of the best point
	F           float64 // f(X)
	Iterations  int     // iterations performed
	Evaluations int     // calls to f
}

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }
