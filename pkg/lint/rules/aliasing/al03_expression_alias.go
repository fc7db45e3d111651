package aliasing

import (
	"fmt"

	"github.com/leapstack-labs/leapquery/pkg/ast"
	"github.com/leapstack-labs/leapquery/pkg/lint"
	"github.com/leapstack-labs/leapquery/pkg/lint/internal/scan"
)

func init() {
	lint.Register(ExpressionAlias)
}

// ExpressionAlias flags computed select items without an alias. Their
// output column has no name, so outer queries and editors cannot refer to
// it.
var ExpressionAlias = lint.RuleDef{
	ID:          "AL03",
	Name:        "aliasing.expression",
	Group:       "aliasing",
	Description: "Column expression without alias.",
	Severity:    lint.SeverityWarning,
	Check:       checkExpressionAlias,
	BadExample:  "select a + b from t",
	GoodExample: "select a + b as total from t",
}

func checkExpressionAlias(q ast.Query) []lint.Diagnostic {
	var diags []lint.Diagnostic
	for _, sel := range scan.Selects(q) {
		if sel.Select == nil {
			continue
		}
		for i, item := range sel.Select.Items {
			if item.Name() != "" {
				continue
			}
			// Constants such as "select 1" in EXISTS are fine.
			if _, ok := scan.Unparen(item.Expr).(*ast.Literal); ok {
				continue
			}
			diags = append(diags, lint.Diagnostic{
				Severity: lint.SeverityWarning,
				Message:  fmt.Sprintf("column %d (%s) has no alias", i+1, ast.SQL(item.Expr)),
				Query:    scan.Snippet(sel),
			})
		}
	}
	return diags
}
