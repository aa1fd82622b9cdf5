// SPDX-License-Identifier: MIT

package model

import (
	"errors"
	"fmt"

	"github.com/etetoolkit/ete-sub002/matrix"
)

var (
	// ErrParamIndex is returned for a parameter index outside [0, NumParams).
	ErrParamIndex = errors.New("model: parameter index out of range")

	// ErrBadFrequencies indicates an equilibrium vector of the wrong length,
	// with negative or non-finite entries, or summing to zero.
	ErrBadFrequencies = errors.New("model: invalid equilibrium frequencies")

	// ErrUnknownScheme is returned by New for an unsupported FreqScheme.
	ErrUnknownScheme = errors.New("model: unknown frequency scheme")

	// ErrFreqParams indicates frequency parameters requested with FreqEqual,
	// where π carries no information.
	ErrFreqParams = errors.New("model: frequency parameters need a non-uniform scheme")

	// ErrNegativeTime is returned when branchLength·rate·Scale is negative.
	ErrNegativeTime = errors.New("model: negative evolutionary time")

	// ErrBadTable indicates an inconsistent Table family definition.
	ErrBadTable = errors.New("model: invalid parameter table")

	// ErrSnapshot indicates a snapshot that does not match the model.
	ErrSnapshot = errors.New("model: snapshot mismatch")

	// ErrFactorize wraps an eigensolver failure.
	ErrFactorize = errors.New("model: eigen-decomposition failed")
)

// FreqScheme selects how equilibrium frequencies weight exchangeabilities.
type FreqScheme int

const (
	FreqEqual FreqScheme = iota
	FreqTarget
	FreqSqrt
	FreqFixation
)

// String implements fmt.Stringer.
func (s FreqScheme) String() string {
	switch s {
	case FreqEqual:
		return "equal"
	case FreqTarget:
		return "target"
	case FreqSqrt:
		return "sqrt"
	case FreqFixation:
		return "fixation"
	default:
		return fmt.Sprintf("FreqScheme(%d)", int(s))
	}
}

// ParseFreqScheme maps a scheme name to its value.
func ParseFreqScheme(name string) (FreqScheme, error) {
	for s := FreqEqual; s <= FreqFixation; s++ {
		if s.String() == name {
			return s, nil
		}
	}

	return 0, modelErrorf(fmt.Sprintf("ParseFreqScheme(%q)", name), ErrUnknownScheme)
}

func (s FreqScheme) valid() bool { return s >= FreqEqual && s <= FreqFixation }

// Family supplies the parameter-dependent exchangeabilities of one model
// family. Implementations are immutable and may be shared between Models.
type Family interface {
	// Name identifies the family in snapshots and cache keys.
	Name() string
	// States is the alphabet size B.
	States() int
	// NumParams is the number of family parameters.
	NumParams() int
	// ParamNames returns one name per family parameter.
	ParamNames() []string
	// Defaults returns starting values for the family parameters.
	Defaults() []float64
	// Bounds returns box constraints for the family parameters.
	Bounds() (lower, upper []float64)
	// Exchange writes the symmetric exchangeability matrix into S (B×B,
	// zero diagonal).
	Exchange(params []float64, S *matrix.Dense)
	// ExchangeDeriv writes ∂S/∂params[p] into dS.
	ExchangeDeriv(params []float64, p int, dS *matrix.Dense)
}

// Selective is implemented by families with a selection ratio ω.
type Selective interface {
	// OmegaIndex returns the family parameter index of ω.
	OmegaIndex() int
}

// Defaults (single source of truth).
const (
	// DefaultFreqEpsilon: states with π below this are treated as absent.
	DefaultFreqEpsilon = 1e-10

	// NegativeTimeTolerance is the rounding slack for negative branch times.
	NegativeTimeTolerance = 1e-12

	// Frequency-parameter box (ratios to the reference state).
	FreqParamMin = 1e-4
	FreqParamMax = 1e4
)

// Option configures a Model at construction.
type Option func(*Options)

// Options holds construction-time settings.
type Options struct {
	FreqEpsilon float64 // threshold for absent states
	FreqParams  bool    // optimise π via ratio parameters
	Rate        float64 // initial rate multiplier
}

// DefaultOptions returns Options with documented defaults.
func DefaultOptions() Options {
	return Options{FreqEpsilon: DefaultFreqEpsilon, Rate: 1}
}

// WithFreqEpsilon sets the absent-state threshold; negative values are ignored.
func WithFreqEpsilon(eps float64) Option {
	return func(o *Options) {
		if eps >= 0 {
			o.FreqEpsilon = eps
		}
	}
}

// WithFreqParams appends B−1 frequency parameters θ_k = π_k/π_ref to the
// family parameters. The reference is the most frequent state.
func WithFreqParams() Option {
	return func(o *Options) { o.FreqParams = true }
}

// WithRate sets the initial rate multiplier; non-positive values are ignored.
func WithRate(r float64) Option {
	return func(o *Options) {
		if r > 0 {
			o.Rate = r
		}
	}
}

func modelErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
