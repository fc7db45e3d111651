package rewrite

import (
	"github.com/leapstack-labs/leapquery/pkg/ast"
)

// Roles of a QueryNode.
const (
	RoleRoot     = "root"
	RoleCTE      = "cte"
	RoleFrom     = "from"
	RoleLeft     = "left"
	RoleRight    = "right"
	RoleSubquery = "subquery"
)

// QueryNode is a navigation view over a query and the queries nested in
// it. It lets callers walk into CTE bodies, FROM subqueries and set
// operation branches and edit them in place without re-parsing.
type QueryNode struct {
	Query ast.Query
	// Role says how the parent uses the query; one of the Role constants.
	Role string
	// Name is the CTE name or source alias, when there is one.
	Name     string
	Parent   *QueryNode
	Children []*QueryNode
}

// Navigate builds the navigation view rooted at q.
func Navigate(q ast.Query) *QueryNode {
	return buildNode(q, RoleRoot, "", nil)
}

func buildNode(q ast.Query, role, name string, parent *QueryNode) *QueryNode {
	n := &QueryNode{Query: q, Role: role, Name: name, Parent: parent}

	if w := q.Base().With; w != nil {
		for _, c := range w.CTEs {
			n.Children = append(n.Children, buildNode(c.Query, RoleCTE, c.Name, n))
		}
	}

	switch q := q.(type) {
	case *ast.SetQuery:
		n.Children = append(n.Children,
			buildNode(q.Left, RoleLeft, "", n),
			buildNode(q.Right, RoleRight, "", n))
		return n
	case *ast.SelectQuery:
		for _, src := range q.From.Sources() {
			if sub, ok := src.Source.(*ast.SubquerySource); ok {
				n.Children = append(n.Children, buildNode(sub.Query, RoleFrom, src.Name(), n))
			}
		}
	}

	// Remaining nested queries sit in expressions.
	for _, child := range ast.ChildQueries(q) {
		if !n.has(child) {
			n.Children = append(n.Children, buildNode(child, RoleSubquery, "", n))
		}
	}
	return n
}

func (n *QueryNode) has(q ast.Query) bool {
	for _, c := range n.Children {
		if c.Query == q {
			return true
		}
	}
	return false
}

// CTE returns the body of the common table expression visible from n under
// name, searching n and its ancestors.
func (n *QueryNode) CTE(name string) *QueryNode {
	for cur := n; cur != nil; cur = cur.Parent {
		for _, c := range cur.Children {
			if c.Role == RoleCTE && ast.SameName(c.Name, name) {
				return c
			}
		}
	}
	return nil
}

// Source returns the FROM subquery of n visible under alias.
func (n *QueryNode) Source(alias string) *QueryNode {
	for _, c := range n.Children {
		if c.Role == RoleFrom && ast.SameName(c.Name, alias) {
			return c
		}
	}
	return nil
}

// Walk calls fn for n and every node below it, depth first. Returning
// false skips the node's children.
func (n *QueryNode) Walk(fn func(*QueryNode) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Root returns the top of the navigation tree.
func (n *QueryNode) Root() *QueryNode {
	for n.Parent != nil {
		n = n.Parent
	}
	return n
}

// Where adds a predicate on column, starting the lookup at this node. CTEs
// declared by ancestors are visible, so the predicate is pushed down just
// as Where on the root query would push it.
func (n *QueryNode) Where(column string, cond Condition) error {
	return where(n.Root().Query, n.Query, column, cond)
}

// Resolve lists the targets for column, starting at this node.
func (n *QueryNode) Resolve(column string) ([]*Target, error) {
	targets, err := resolveWithin(n.Root().Query, n.Query, column, true)
	if err != nil {
		return nil, editError("resolve", column, err)
	}
	return targets, nil
}
