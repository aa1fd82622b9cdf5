// SPDX-License-Identifier: MIT

// Package tree is an arena-allocated phylogenetic tree with explicit-stack
// traversals.
//
// Nodes live in one slice and are addressed by their index (node id). The
// root has id 0; every other node owns the edge to its parent together with
// that edge's length. Trees may be multifurcating; an unrooted tree is
// represented by an arbitrary node of degree ≥ 3 acting as root.
//
// Traversals never recurse on the call stack, so depth is bounded only by
// memory:
//
//   - PostOrder / PreOrder return node ids (children in insertion order).
//   - Walk(opts...) runs a depth-first walk with OnVisit (pre-order) and
//     OnExit (post-order) hooks, a depth limit and context cancellation.
//
// Options:
//
//   - WithContext(ctx)     cancellation, checked once per node.
//   - WithStart(id)        start below a node other than the root.
//   - WithOnVisit(fn)      pre-order hook; an error aborts the walk.
//   - WithOnExit(fn)       post-order hook; an error aborts the walk.
//   - WithMaxDepth(limit)  do not descend below limit (root depth 0).
//
// Errors:
//
//   - ErrUnknownNode       id outside [0, Len()).
//   - ErrNegativeLength    branch length < 0 or not finite.
//   - ErrDuplicateName     two nodes with the same non-empty name.
//
// Complexity: every traversal is O(V) time and O(depth) extra space.
package tree
