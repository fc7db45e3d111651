package structure

import (
	"github.com/leapstack-labs/leapquery/pkg/ast"
	"github.com/leapstack-labs/leapquery/pkg/lint"
	"github.com/leapstack-labs/leapquery/pkg/lint/internal/scan"
)

func init() {
	lint.Register(NestedCase)
}

// NestedCase flags a CASE whose ELSE is another CASE; the arms can be
// merged into one expression.
var NestedCase = lint.RuleDef{
	ID:          "ST04",
	Name:        "structure.nested_case",
	Group:       "structure",
	Description: "Nested CASE in ELSE can be flattened.",
	Severity:    lint.SeverityHint,
	Check:       checkNestedCase,
	BadExample:  "case when a then 1 else case when b then 2 end end",
	GoodExample: "case when a then 1 when b then 2 end",
}

func checkNestedCase(q ast.Query) []lint.Diagnostic {
	var diags []lint.Diagnostic
	for _, sel := range scan.Selects(q) {
		scan.Exprs(sel, func(e ast.Expr) {
			outer, ok := e.(*ast.CaseExpr)
			if !ok || outer.Else == nil {
				return
			}
			inner, ok := scan.Unparen(outer.Else).(*ast.CaseExpr)
			if !ok || !sameOperand(outer.Operand, inner.Operand) {
				return
			}
			diags = append(diags, lint.Diagnostic{
				Severity: lint.SeverityHint,
				Message:  "CASE in ELSE can be merged into the outer CASE",
				Query:    scan.Snippet(sel),
			})
		})
	}
	return diags
}

// sameOperand reports whether two CASE forms test the same operand, so
// that their WHEN arms can be combined.
func sameOperand(a, b ast.Expr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return ast.SQL(a) == ast.SQL(b)
}
