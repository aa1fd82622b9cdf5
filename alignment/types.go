// SPDX-License-Identifier: MIT

package alignment

import (
	"errors"
	"fmt"
)

var (
	// ErrShape indicates ragged rows or a taxa/rows count mismatch.
	ErrShape = errors.New("alignment: inconsistent shape")

	// ErrState indicates an entry outside [0, States) that is not the gap.
	ErrState = errors.New("alignment: state out of range")

	// ErrGap indicates a gap sentinel inside [0, States).
	ErrGap = errors.New("alignment: gap sentinel collides with a state")

	// ErrPattern is returned for a pattern index out of range.
	ErrPattern = errors.New("alignment: pattern index out of range")

	// ErrWeight indicates a negative or non-finite weight.
	ErrWeight = errors.New("alignment: invalid weight")
)

// Gap is the default missing-data sentinel.
const Gap = -1

// Class labels a pattern for the likelihood engine.
type Class int

const (
	// Full patterns need the pruning algorithm.
	Full Class = iota
	// SingleObserved patterns have exactly one non-gap entry; the likelihood
	// is π of that state.
	SingleObserved
	// AllGap patterns carry no information; the likelihood is 1.
	AllGap
)

// String implements fmt.Stringer.
func (c Class) String() string {
	switch c {
	case Full:
		return "full"
	case SingleObserved:
		return "single"
	case AllGap:
		return "gap"
	default:
		return fmt.Sprintf("Class(%d)", int(c))
	}
}

func alignmentErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
