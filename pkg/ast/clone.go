package ast

import (
	"fmt"

	"github.com/mitchellh/copystructure"
)

// Clone returns a deep copy of n. Editors clone every query they insert so
// that a tree never shares a node by accident; use a CTE to share a query
// between several positions on purpose.
func Clone[T Node](n T) T {
	c, err := copystructure.Copy(n)
	if err != nil {
		// Nodes are plain data; a failure here is a programming error.
		panic(fmt.Sprintf("ast: clone %T: %v", n, err))
	}
	return c.(T)
}
