package ambiguous

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapquery/pkg/ast"
	"github.com/leapstack-labs/leapquery/pkg/lint"
	"github.com/leapstack-labs/leapquery/pkg/lint/internal/scan"
)

func init() {
	lint.Register(JoinCondition)
}

// JoinCondition flags keyword joins without ON or USING. Without a
// condition they silently produce a cross product.
var JoinCondition = lint.RuleDef{
	ID:          "AM08",
	Name:        "ambiguous.join_condition",
	Group:       "ambiguous",
	Description: "Join without a join condition.",
	Severity:    lint.SeverityWarning,
	Check:       checkJoinCondition,
	BadExample:  "select * from a join b",
	GoodExample: "select * from a cross join b",
}

func checkJoinCondition(q ast.Query) []lint.Diagnostic {
	var diags []lint.Diagnostic
	for _, sel := range scan.Selects(q) {
		if sel.From == nil {
			continue
		}
		for _, j := range sel.From.Joins {
			if j.On != nil || len(j.Using) > 0 || !needsCondition(j) {
				continue
			}
			diags = append(diags, lint.Diagnostic{
				Severity: lint.SeverityWarning,
				Message:  fmt.Sprintf("%s %s has no ON or USING condition", strings.ToUpper(j.Type), j.Source.Name()),
				Query:    scan.Snippet(sel),
			})
		}
	}
	return diags
}

func needsCondition(j *ast.Join) bool {
	switch {
	case j.Type == ",", j.Type == "cross join":
		return false
	case strings.HasPrefix(j.Type, "natural"):
		return false
	case j.Source.Lateral:
		return false
	}
	return true
}
