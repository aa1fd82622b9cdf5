// SPDX-License-Identifier: MIT

package likelihood

import (
	"errors"
	"fmt"
	"strings"

	"github.com/etetoolkit/ete-sub002/config"
	"github.com/etetoolkit/ete-sub002/metrics"
)

var (
	// ErrStates indicates an alphabet size that differs between model and
	// patterns.
	ErrStates = errors.New("likelihood: model and patterns disagree on alphabet size")

	// ErrUnknownTaxon indicates a pattern row with no node of that name.
	ErrUnknownTaxon = errors.New("likelihood: taxon not found in tree")

	// ErrDuplicateTaxon indicates two pattern rows naming the same node.
	ErrDuplicateTaxon = errors.New("likelihood: taxon appears twice")

	// ErrMissingTaxon indicates a leaf with no pattern row.
	ErrMissingTaxon = errors.New("likelihood: leaf has no data")

	// ErrGradientLen indicates a gradient slice of the wrong length.
	ErrGradientLen = errors.New("likelihood: gradient length mismatch")

	// ErrLayout indicates an unknown branch-length layout.
	ErrLayout = errors.New("likelihood: unknown branch layout")
)

// DefaultRescaleEvery is the number of buffer multiplications between
// rescalings.
const DefaultRescaleEvery = 4

// Bounds applied to branch lengths and to the proportional factor by
// Objective.
const (
	BranchMin = 0.0
	BranchMax = 50.0
	FactorMin = 1e-4
	FactorMax = 1e4
)

// Layout selects how branch lengths enter the optimization vector.
type Layout int

const (
	// BranchFixed keeps the tree's branch lengths constant.
	BranchFixed Layout = iota
	// BranchFree makes every branch length a parameter.
	BranchFree
	// BranchProportional multiplies all initial lengths by one factor.
	BranchProportional
)

// String returns the config spelling of l.
func (l Layout) String() string {
	switch l {
	case BranchFixed:
		return config.LayoutFixed
	case BranchFree:
		return config.LayoutFree
	case BranchProportional:
		return config.LayoutProportional
	}

	return fmt.Sprintf("Layout(%d)", int(l))
}

// ParseLayout is the inverse of Layout.String.
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(s) {
	case config.LayoutFixed:
		return BranchFixed, nil
	case config.LayoutFree:
		return BranchFree, nil
	case config.LayoutProportional:
		return BranchProportional, nil
	}

	return BranchFixed, likelihoodErrorf(fmt.Sprintf("ParseLayout(%q)", s), ErrLayout)
}

// Options configures an Engine.
type Options struct {
	RescaleEvery int
	Recorder     *metrics.Recorder
}

// Option mutates Options.
type Option func(*Options)

// DefaultOptions returns Options with RescaleEvery = DefaultRescaleEvery.
func DefaultOptions() Options {
	return Options{RescaleEvery: DefaultRescaleEvery}
}

// WithRescaleEvery sets the rescaling period; values < 1 are ignored.
func WithRescaleEvery(k int) Option {
	return func(o *Options) {
		if k >= 1 {
			o.RescaleEvery = k
		}
	}
}

// WithRecorder counts likelihood and gradient evaluations.
func WithRecorder(r *metrics.Recorder) Option {
	return func(o *Options) { o.Recorder = r }
}

// FromConfig turns a validated config section into Options.
func FromConfig(c config.Likelihood) []Option {
	return []Option{WithRescaleEvery(c.RescaleEvery)}
}

func likelihoodErrorf(tag string, err error) error {
	return fmt.Errorf("likelihood.%s: %w", tag, err)
}
