package references

import (
	"fmt"

	"github.com/leapstack-labs/leapquery/pkg/ast"
	"github.com/leapstack-labs/leapquery/pkg/lint"
	"github.com/leapstack-labs/leapquery/pkg/lint/internal/scan"
)

func init() {
	lint.Register(Qualification)
}

// Qualification flags unqualified column references in queries that read
// from more than one source.
var Qualification = lint.RuleDef{
	ID:          "RF02",
	Name:        "references.qualification",
	Group:       "references",
	Description: "References should be qualified if select has more than one source.",
	Severity:    lint.SeverityWarning,
	Check:       checkQualification,
	BadExample:  "select id, name from a join b on a.id = b.a_id",
	GoodExample: "select a.id, b.name from a join b on a.id = b.a_id",
}

func checkQualification(q ast.Query) []lint.Diagnostic {
	var diags []lint.Diagnostic
	for _, sel := range scan.Selects(q) {
		sources := sel.From.Sources()
		if len(sources) < 2 {
			continue
		}

		// ORDER BY may name output aliases, so only these clauses count.
		var exprs []ast.Expr
		if sel.Select != nil {
			for _, item := range sel.Select.Items {
				exprs = append(exprs, item.Expr)
			}
		}
		exprs = append(exprs, sel.Where, sel.Having)
		exprs = append(exprs, sel.GroupBy...)
		for _, j := range sel.From.Joins {
			exprs = append(exprs, j.On)
		}

		seen := map[string]bool{}
		for _, e := range exprs {
			if e == nil {
				continue
			}
			for _, ref := range ast.ColumnRefs(e) {
				if ref.Table != "" || ref.IsWildcard() || seen[ref.Column] {
					continue
				}
				seen[ref.Column] = true
				diags = append(diags, lint.Diagnostic{
					Severity: lint.SeverityWarning,
					Message:  fmt.Sprintf("column %s is not qualified in a query with %d sources", ref.Column, len(sources)),
					Query:    scan.Snippet(sel),
				})
			}
		}
	}
	return diags
}
