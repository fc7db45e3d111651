package convention

import (
	"strings"

	"github.com/leapstack-labs/leapquery/pkg/ast"
	"github.com/leapstack-labs/leapquery/pkg/lint"
	"github.com/leapstack-labs/leapquery/pkg/lint/internal/scan"
)

func init() {
	lint.Register(CountRows)
}

// CountRows prefers count(*) over count(1) and count(0).
var CountRows = lint.RuleDef{
	ID:          "CV04",
	Name:        "convention.count_rows",
	Group:       "convention",
	Description: "Use count(*) to count rows.",
	Severity:    lint.SeverityHint,
	Check:       checkCountRows,
	BadExample:  "select count(1) from t",
	GoodExample: "select count(*) from t",
}

func checkCountRows(q ast.Query) []lint.Diagnostic {
	var diags []lint.Diagnostic
	for _, sel := range scan.Selects(q) {
		scan.Exprs(sel, func(e ast.Expr) {
			f, ok := e.(*ast.FuncCall)
			if !ok || !strings.EqualFold(f.Name, "count") || f.Distinct || len(f.Args) != 1 {
				return
			}
			lit, ok := scan.Unparen(f.Args[0]).(*ast.Literal)
			if !ok || lit.Kind != ast.NumberLit {
				return
			}
			diags = append(diags, lint.Diagnostic{
				Severity: lint.SeverityHint,
				Message:  "use count(*) instead of " + ast.SQL(f),
				Query:    scan.Snippet(sel),
			})
		})
	}
	return diags
}
