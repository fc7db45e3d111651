package ambiguous

import (
	"fmt"
	"slices"

	"github.com/leapstack-labs/leapquery/pkg/ast"
	"github.com/leapstack-labs/leapquery/pkg/lint"
	"github.com/leapstack-labs/leapquery/pkg/lint/internal/scan"
)

func init() {
	lint.Register(ColumnCountMismatch)
}

// ColumnCountMismatch flags set operations whose operands produce a
// different number of columns.
var ColumnCountMismatch = lint.RuleDef{
	ID:          "AM04",
	Name:        "ambiguous.column_count",
	Group:       "ambiguous",
	Description: "Mismatched column counts in set operation.",
	Severity:    lint.SeverityError,
	Check:       checkColumnCountMismatch,
	BadExample:  "select a, b from t union select a from u",
	GoodExample: "select a, b from t union select a, null from u",
}

func checkColumnCountMismatch(q ast.Query) []lint.Diagnostic {
	var diags []lint.Diagnostic
	for _, set := range scan.SetQueries(q) {
		left, right := countColumns(set.Left), countColumns(set.Right)
		if left < 0 || right < 0 || left == right {
			continue
		}
		diags = append(diags, lint.Diagnostic{
			Severity: lint.SeverityError,
			Message:  fmt.Sprintf("%s operands have %d and %d columns", set.Op, left, right),
			Query:    scan.Snippet(set),
		})
	}
	return diags
}

// countColumns returns the number of output columns, or -1 when a
// wildcard makes it unknown.
func countColumns(q ast.Query) int {
	cols := ast.OutputColumns(q)
	if slices.Contains(cols, "*") {
		return -1
	}
	return len(cols)
}
