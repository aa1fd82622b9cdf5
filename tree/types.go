// SPDX-License-Identifier: MIT

package tree

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUnknownNode is returned for a node id outside the arena.
	ErrUnknownNode = errors.New("tree: unknown node")

	// ErrNegativeLength indicates a negative or non-finite branch length.
	ErrNegativeLength = errors.New("tree: invalid branch length")

	// ErrDuplicateName indicates a node name that is already taken.
	ErrDuplicateName = errors.New("tree: duplicate node name")
)

// None is the parent id of the root.
const None = -1

// Node is one arena entry. Length is the length of the edge to Parent.
type Node struct {
	ID       int
	Name     string
	Parent   int
	Children []int
	Length   float64
}

// Option configures Walk.
type Option func(*WalkOptions)

// WalkOptions holds Walk parameters.
type WalkOptions struct {
	// Ctx allows cancellation; defaults to context.Background().
	Ctx context.Context

	// Start is the node the walk begins at; defaults to the root.
	Start int

	// OnVisit, if non-nil, runs when a node is first reached (pre-order).
	OnVisit func(id int) error

	// OnExit, if non-nil, runs after all descendants are done (post-order).
	OnExit func(id int) error

	// MaxDepth, if non-negative, stops descent below that depth.
	MaxDepth int
}

// DefaultOptions returns WalkOptions starting at the root with no hooks and
// no depth limit.
func DefaultOptions() WalkOptions {
	return WalkOptions{Ctx: context.Background(), Start: 0, MaxDepth: -1}
}

// WithContext sets the cancellation context; nil is ignored.
func WithContext(ctx context.Context) Option {
	return func(o *WalkOptions) {
		if ctx != nil {
			o.Ctx = ctx
		}
	}
}

// WithStart begins the walk at id.
func WithStart(id int) Option {
	return func(o *WalkOptions) { o.Start = id }
}

// WithOnVisit installs a pre-order hook.
func WithOnVisit(fn func(id int) error) Option {
	return func(o *WalkOptions) { o.OnVisit = fn }
}

// WithOnExit installs a post-order hook.
func WithOnExit(fn func(id int) error) Option {
	return func(o *WalkOptions) { o.OnExit = fn }
}

// WithMaxDepth limits descent; 0 visits only the start node.
func WithMaxDepth(limit int) Option {
	return func(o *WalkOptions) { o.MaxDepth = limit }
}

// WalkResult records what a Walk reached.
type WalkResult struct {
	// Order lists nodes in finishing (post-order) sequence.
	Order []int

	// Depth maps node id to its distance in edges from the start; −1 if
	// the node was not reached.
	Depth []int
}

func treeErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
