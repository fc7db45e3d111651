package ambiguous

import (
	"github.com/leapstack-labs/leapquery/pkg/ast"
	"github.com/leapstack-labs/leapquery/pkg/lint"
	"github.com/leapstack-labs/leapquery/pkg/lint/internal/scan"
	"github.com/leapstack-labs/leapquery/pkg/rewrite"
)

func init() {
	lint.Register(OrderByWithoutLimit)
}

// OrderByWithoutLimit flags ORDER BY in CTEs and FROM subqueries that have
// no LIMIT or FETCH. The outer query does not keep that order.
var OrderByWithoutLimit = lint.RuleDef{
	ID:          "AM09",
	Name:        "ambiguous.order_by_limit",
	Group:       "ambiguous",
	Description: "ORDER BY in a subquery or CTE without LIMIT has no effect.",
	Severity:    lint.SeverityWarning,
	Check:       checkOrderByWithoutLimit,
	BadExample:  "select * from (select a from t order by a) as s",
	GoodExample: "select * from (select a from t) as s order by a",
}

func checkOrderByWithoutLimit(q ast.Query) []lint.Diagnostic {
	var diags []lint.Diagnostic
	rewrite.Navigate(q).Walk(func(n *rewrite.QueryNode) bool {
		if n.Role != rewrite.RoleCTE && n.Role != rewrite.RoleFrom {
			return true
		}
		if orderedWithoutPaging(n.Query) {
			diags = append(diags, lint.Diagnostic{
				Severity: lint.SeverityWarning,
				Message:  "ORDER BY in " + describe(n) + " is not preserved by the outer query",
				Query:    scan.Snippet(n.Query),
			})
		}
		return true
	})
	return diags
}

func orderedWithoutPaging(q ast.Query) bool {
	switch q := q.(type) {
	case *ast.SelectQuery:
		return len(q.OrderBy) > 0 && q.Paging == nil
	case *ast.SetQuery:
		return len(q.OrderBy) > 0 && q.Paging == nil
	case *ast.ValuesQuery:
		return len(q.OrderBy) > 0 && q.Paging == nil
	}
	return false
}

func describe(n *rewrite.QueryNode) string {
	if n.Role == rewrite.RoleCTE {
		return "CTE " + n.Name
	}
	if n.Name != "" {
		return "subquery " + n.Name
	}
	return "subquery"
}
