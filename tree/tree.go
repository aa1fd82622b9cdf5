// SPDX-License-Identifier: MIT

package tree

import (
	"fmt"
	"math"
)

// Tree is an arena of nodes rooted at id 0.
// It is not safe for concurrent mutation; readers may share it.
type Tree struct {
	nodes []Node
	names map[string]int
}

// New returns a tree holding only the root.
func New(rootName string) *Tree {
	t := &Tree{
		nodes: []Node{{ID: 0, Name: rootName, Parent: None}},
		names: make(map[string]int),
	}
	if rootName != "" {
		t.names[rootName] = 0
	}

	return t
}

// Root returns the root id.
func (t *Tree) Root() int { return 0 }

// Len is the number of nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// NumEdges is the number of branches, Len()−1.
func (t *Tree) NumEdges() int { return len(t.nodes) - 1 }

func (t *Tree) check(tag string, id int) error {
	if id < 0 || id >= len(t.nodes) {
		return treeErrorf(fmt.Sprintf("%s(%d)", tag, id), ErrUnknownNode)
	}

	return nil
}

func validLength(v float64) bool { return v >= 0 && !math.IsInf(v, 0) }

// AddChild attaches a new node under parent with the given branch length and
// returns its id.
//
// Errors: ErrUnknownNode, ErrNegativeLength, ErrDuplicateName.
func (t *Tree) AddChild(parent int, name string, length float64) (int, error) {
	const tag = "AddChild"
	if err := t.check(tag, parent); err != nil {
		return None, err
	}
	if !validLength(length) {
		return None, treeErrorf(tag, ErrNegativeLength)
	}
	if _, dup := t.names[name]; dup && name != "" {
		return None, treeErrorf(fmt.Sprintf("%s(%q)", tag, name), ErrDuplicateName)
	}
	id := len(t.nodes)
	t.nodes = append(t.nodes, Node{ID: id, Name: name, Parent: parent, Length: length})
	t.nodes[parent].Children = append(t.nodes[parent].Children, id)
	if name != "" {
		t.names[name] = id
	}

	return id, nil
}

// Node returns a copy of node id.
func (t *Tree) Node(id int) (Node, error) {
	if err := t.check("Node", id); err != nil {
		return Node{}, err
	}
	n := t.nodes[id]
	n.Children = append([]int(nil), n.Children...)

	return n, nil
}

// Parent returns the parent id, None for the root. It panics on a bad id.
func (t *Tree) Parent(id int) int { return t.nodes[id].Parent }

// Children returns the child ids of id. The slice is owned by the tree and
// must not be modified. It panics on a bad id.
func (t *Tree) Children(id int) []int { return t.nodes[id].Children }

// IsLeaf reports whether id has no children.
func (t *Tree) IsLeaf(id int) bool { return len(t.nodes[id].Children) == 0 }

// Name returns the name of id.
func (t *Tree) Name(id int) string { return t.nodes[id].Name }

// Lookup returns the id of the node called name.
func (t *Tree) Lookup(name string) (int, bool) {
	id, ok := t.names[name]

	return id, ok
}

// Leaf returns the id of the leaf called name.
func (t *Tree) Leaf(name string) (int, bool) {
	id, ok := t.names[name]
	if !ok || !t.IsLeaf(id) {
		return None, false
	}

	return id, true
}

// Leaves returns the leaf ids in id order.
func (t *Tree) Leaves() []int {
	out := make([]int, 0, len(t.nodes)/2+1)
	for id := range t.nodes {
		if len(t.nodes[id].Children) == 0 {
			out = append(out, id)
		}
	}

	return out
}

// Edges returns the ids of all non-root nodes in id order; edge k is the
// branch above Edges()[k].
func (t *Tree) Edges() []int {
	out := make([]int, 0, len(t.nodes)-1)
	for id := 1; id < len(t.nodes); id++ {
		out = append(out, id)
	}

	return out
}

// Length returns the branch length above id (0 for the root).
func (t *Tree) Length(id int) float64 { return t.nodes[id].Length }

// SetLength sets the branch length above id.
func (t *Tree) SetLength(id int, v float64) error {
	const tag = "SetLength"
	if err := t.check(tag, id); err != nil {
		return err
	}
	if id == 0 {
		return treeErrorf(tag, ErrUnknownNode)
	}
	if !validLength(v) {
		return treeErrorf(fmt.Sprintf("%s(%d, %g)", tag, id, v), ErrNegativeLength)
	}
	t.nodes[id].Length = v

	return nil
}

// Lengths returns branch lengths in edge order.
func (t *Tree) Lengths() []float64 {
	out := make([]float64, len(t.nodes)-1)
	for id := 1; id < len(t.nodes); id++ {
		out[id-1] = t.nodes[id].Length
	}

	return out
}

// SetLengths assigns branch lengths in edge order. Nothing changes on error.
func (t *Tree) SetLengths(v []float64) error {
	const tag = "SetLengths"
	if len(v) != len(t.nodes)-1 {
		return treeErrorf(tag, ErrUnknownNode)
	}
	for _, x := range v {
		if !validLength(x) {
			return treeErrorf(tag, ErrNegativeLength)
		}
	}
	for k, x := range v {
		t.nodes[k+1].Length = x
	}

	return nil
}

// TotalLength is the sum of branch lengths.
func (t *Tree) TotalLength() float64 {
	var s float64
	for id := 1; id < len(t.nodes); id++ {
		s += t.nodes[id].Length
	}

	return s
}

// Clone returns a deep copy.
func (t *Tree) Clone() *Tree {
	c := &Tree{nodes: make([]Node, len(t.nodes)), names: make(map[string]int, len(t.names))}
	for i, n := range t.nodes {
		n.Children = append([]int(nil), n.Children...)
		c.nodes[i] = n
	}
	for k, v := range t.names {
		c.names[k] = v
	}

	return c
}
