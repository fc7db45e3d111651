package ambiguous

import (
	"github.com/leapstack-labs/leapquery/pkg/ast"
	"github.com/leapstack-labs/leapquery/pkg/lint"
	"github.com/leapstack-labs/leapquery/pkg/lint/internal/scan"
)

func init() {
	lint.Register(DistinctWithGroupBy)
}

// DistinctWithGroupBy flags SELECT DISTINCT combined with GROUP BY.
var DistinctWithGroupBy = lint.RuleDef{
	ID:          "AM01",
	Name:        "ambiguous.distinct",
	Group:       "ambiguous",
	Description: "DISTINCT used with GROUP BY.",
	Severity:    lint.SeverityWarning,
	Check:       checkDistinctWithGroupBy,
	BadExample:  "select distinct a from t group by a",
	GoodExample: "select a from t group by a",
}

func checkDistinctWithGroupBy(q ast.Query) []lint.Diagnostic {
	var diags []lint.Diagnostic
	for _, sel := range scan.Selects(q) {
		if sel.Select == nil || !sel.Select.Distinct || len(sel.GroupBy) == 0 {
			continue
		}
		diags = append(diags, lint.Diagnostic{
			Severity: lint.SeverityWarning,
			Message:  "DISTINCT is redundant or misleading together with GROUP BY",
			Query:    scan.Snippet(sel),
		})
	}
	return diags
}
