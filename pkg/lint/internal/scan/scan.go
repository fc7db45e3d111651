// Package scan collects the nodes lint rules look at.
package scan

import (
	"github.com/leapstack-labs/leapquery/pkg/ast"
)

// maxSnippet bounds the SQL attached to a diagnostic.
const maxSnippet = 80

// Selects returns every SELECT in the tree rooted at q, including CTE
// bodies and subqueries, in pre-order.
func Selects(q ast.Query) []*ast.SelectQuery {
	var out []*ast.SelectQuery
	ast.Inspect(q, func(n ast.Node) bool {
		if s, ok := n.(*ast.SelectQuery); ok {
			out = append(out, s)
		}
		return true
	})
	return out
}

// SetQueries returns every set operation in the tree rooted at q.
func SetQueries(q ast.Query) []*ast.SetQuery {
	var out []*ast.SetQuery
	ast.Inspect(q, func(n ast.Node) bool {
		if s, ok := n.(*ast.SetQuery); ok {
			out = append(out, s)
		}
		return true
	})
	return out
}

// Exprs calls fn for every expression node under n that belongs to n's own
// scope. Nested queries are not entered.
func Exprs(n ast.Node, fn func(ast.Expr)) {
	ast.Inspect(n, func(x ast.Node) bool {
		switch x := x.(type) {
		case *ast.WithClause:
			return false
		case ast.Query:
			return x == n
		case ast.Expr:
			fn(x)
		}
		return true
	})
}

// Snippet returns the SQL of q without its WITH clause, shortened for
// display.
func Snippet(q ast.Query) string {
	s := ast.SQL(q)
	if len(s) > maxSnippet {
		return s[:maxSnippet-3] + "..."
	}
	return s
}

// Unparen strips redundant parentheses.
func Unparen(e ast.Expr) ast.Expr {
	for {
		p, ok := e.(*ast.ParenExpr)
		if !ok {
			return e
		}
		e = p.Expr
	}
}
