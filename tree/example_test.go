// SPDX-License-Identifier: MIT

package tree_test

import (
	"fmt"

	"github.com/etetoolkit/ete-sub002/tree"
)

func ExampleTree_PostOrder() {
	t := tree.New("root")
	x, _ := t.AddChild(t.Root(), "x", 0.1)
	_, _ = t.AddChild(x, "a", 0.2)
	_, _ = t.AddChild(x, "b", 0.3)
	_, _ = t.AddChild(t.Root(), "c", 0.4)
	for _, id := range t.PostOrder() {
		fmt.Print(t.Name(id), " ")
	}
	fmt.Println()
	// Output: a b x c root
}
