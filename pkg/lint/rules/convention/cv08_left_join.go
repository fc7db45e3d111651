package convention

import (
	"github.com/leapstack-labs/leapquery/pkg/ast"
	"github.com/leapstack-labs/leapquery/pkg/lint"
	"github.com/leapstack-labs/leapquery/pkg/lint/internal/scan"
)

func init() {
	lint.Register(LeftJoin)
}

// LeftJoin prefers LEFT JOIN over RIGHT JOIN.
var LeftJoin = lint.RuleDef{
	ID:          "CV08",
	Name:        "convention.left_join",
	Group:       "convention",
	Description: "Use LEFT JOIN instead of RIGHT JOIN.",
	Severity:    lint.SeverityHint,
	Check:       checkLeftJoin,
	BadExample:  "select * from a right join b on a.id = b.id",
	GoodExample: "select * from b left join a on a.id = b.id",
}

func checkLeftJoin(q ast.Query) []lint.Diagnostic {
	var diags []lint.Diagnostic
	for _, sel := range scan.Selects(q) {
		if sel.From == nil {
			continue
		}
		for _, j := range sel.From.Joins {
			switch j.Type {
			case "right join", "right outer join", "natural right join", "natural right outer join":
				diags = append(diags, lint.Diagnostic{
					Severity: lint.SeverityHint,
					Message:  "RIGHT JOIN " + j.Source.Name() + " can be written as a LEFT JOIN",
					Query:    scan.Snippet(sel),
				})
			}
		}
	}
	return diags
}
