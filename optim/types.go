// SPDX-License-Identifier: MIT

package optim

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/etetoolkit/ete-sub002/config"
	"github.com/etetoolkit/ete-sub002/metrics"
)

var (
	// ErrDimension indicates that x0, Lower and Upper differ in length or
	// Func is nil.
	ErrDimension = errors.New("optim: dimension mismatch")

	// ErrBounds indicates lower > upper or a NaN bound.
	ErrBounds = errors.New("optim: invalid bounds")

	// ErrInfeasible indicates that the objective is not finite at the start.
	ErrInfeasible = errors.New("optim: objective not finite at start point")
)

// Func evaluates the objective at x. When grad is non-nil it also writes the
// gradient into it. Non-finite values mark x as unattainable.
type Func func(x, grad []float64) float64

// Problem is a box-constrained minimization. Infinite bounds are allowed.
type Problem struct {
	Func  Func
	Lower []float64
	Upper []float64
}

// Result reports the outcome of Minimize.
type Result struct {
	X           []float64
	F           float64
	Grad        []float64
	Iterations  int
	Evaluations int
	Converged   bool
	ActiveSet   []bool // parameters frozen on a bound at exit
}

// Options tunes the optimizer. DefaultOptions mirrors config.Default().
type Options struct {
	MaxIter      int
	FTol         float64
	GTol         float64
	Radius       float64
	RadiusMin    float64
	RadiusMax    float64
	BoundaryEps  float64
	TrimMargin   float64
	CurvatureMin float64

	// LineSearchIter caps the Brent fallback.
	LineSearchIter int

	Logger   logrus.FieldLogger
	Recorder *metrics.Recorder
}

// Option mutates Options.
type Option func(*Options)

// DefaultOptions returns the tuned constants of config.Default().
func DefaultOptions() Options {
	o := Options{LineSearchIter: 40, Logger: config.Discard()}
	applyConfig(&o, config.Default().Optimizer)

	return o
}

func applyConfig(o *Options, c config.Optimizer) {
	o.MaxIter = c.MaxIter
	o.FTol = c.FTol
	o.GTol = c.GTol
	o.Radius = c.Radius
	o.RadiusMin = c.RadiusMin
	o.RadiusMax = c.RadiusMax
	o.BoundaryEps = c.BoundaryEps
	o.TrimMargin = c.TrimMargin
	o.CurvatureMin = c.CurvatureMin
}

// FromConfig turns a validated config section into Options.
func FromConfig(c config.Optimizer) []Option {
	return []Option{func(o *Options) { applyConfig(o, c) }}
}

// WithMaxIter sets the iteration budget; values < 1 are ignored.
func WithMaxIter(n int) Option {
	return func(o *Options) {
		if n >= 1 {
			o.MaxIter = n
		}
	}
}

// WithTolerance sets the |Δf| and free-gradient thresholds; non-positive
// values are ignored.
func WithTolerance(ftol, gtol float64) Option {
	return func(o *Options) {
		if ftol > 0 {
			o.FTol = ftol
		}
		if gtol > 0 {
			o.GTol = gtol
		}
	}
}

// WithLogger routes per-iteration Debug entries and the termination Info
// entry to l.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithRecorder counts iterations, rejected steps and Hessian resets.
func WithRecorder(r *metrics.Recorder) Option {
	return func(o *Options) { o.Recorder = r }
}

func optimErrorf(tag string, err error) error {
	return fmt.Errorf("optim.%s: %w", tag, err)
}
