// SPDX-License-Identifier: MIT

package tree

import "fmt"

// PostOrder returns every node with children before parents, children in
// insertion order. The root is last.
func (t *Tree) PostOrder() []int {
	order := make([]int, 0, len(t.nodes))
	type frame struct{ id, next int }
	stack := []frame{{id: 0}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		ch := t.nodes[top.id].Children
		if top.next < len(ch) {
			c := ch[top.next]
			top.next++
			stack = append(stack, frame{id: c})
			continue
		}
		order = append(order, top.id)
		stack = stack[:len(stack)-1]
	}

	return order
}

// PreOrder returns every node with parents before children, children in
// insertion order. The root is first.
func (t *Tree) PreOrder() []int {
	order := make([]int, 0, len(t.nodes))
	stack := []int{0}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		order = append(order, id)
		ch := t.nodes[id].Children
		for i := len(ch) - 1; i >= 0; i-- {
			stack = append(stack, ch[i])
		}
	}

	return order
}

// Walk performs a depth-first walk from the start node.
//
// Implementation:
//   - Stage 1: apply options, validate Start.
//   - Stage 2: keep an explicit stack of (node, next child) frames. On push:
//     check ctx, record depth, call OnVisit. When a frame has no more
//     children within MaxDepth: call OnExit, append to Order, pop.
//
// A hook error aborts the walk; the partial result is returned alongside it.
//
// Complexity: O(V) time, O(depth) stack.
func (t *Tree) Walk(opts ...Option) (*WalkResult, error) {
	o := DefaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	if err := t.check("Walk", o.Start); err != nil {
		return nil, err
	}

	res := &WalkResult{Order: make([]int, 0, len(t.nodes)), Depth: make([]int, len(t.nodes))}
	for i := range res.Depth {
		res.Depth[i] = -1
	}

	type frame struct{ id, depth, next int }
	var stack []frame
	push := func(id, depth int) error {
		select {
		case <-o.Ctx.Done():
			return o.Ctx.Err()
		default:
		}
		res.Depth[id] = depth
		if o.OnVisit != nil {
			if err := o.OnVisit(id); err != nil {
				return fmt.Errorf("tree: OnVisit hook for %d: %w", id, err)
			}
		}
		stack = append(stack, frame{id: id, depth: depth})

		return nil
	}

	if err := push(o.Start, 0); err != nil {
		return res, err
	}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		ch := t.nodes[top.id].Children
		if top.next < len(ch) && (o.MaxDepth < 0 || top.depth < o.MaxDepth) {
			c := ch[top.next]
			top.next++
			if err := push(c, top.depth+1); err != nil {
				return res, err
			}
			continue
		}
		id := top.id
		stack = stack[:len(stack)-1]
		if o.OnExit != nil {
			if err := o.OnExit(id); err != nil {
				return res, fmt.Errorf("tree: OnExit hook for %d: %w", id, err)
			}
		}
		res.Order = append(res.Order, id)
	}

	return res, nil
}
