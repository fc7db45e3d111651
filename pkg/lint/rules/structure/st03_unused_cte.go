package structure

import (
	"slices"

	"github.com/leapstack-labs/leapquery/pkg/ast"
	"github.com/leapstack-labs/leapquery/pkg/lint"
	"github.com/leapstack-labs/leapquery/pkg/lint/internal/scan"
)

func init() {
	lint.Register(UnusedCTE)
}

// UnusedCTE warns about CTEs that are defined but never used.
var UnusedCTE = lint.RuleDef{
	ID:          "ST03",
	Name:        "structure.unused_cte",
	Group:       "structure",
	Description: "CTE is defined but never referenced.",
	Severity:    lint.SeverityWarning,
	Check:       checkUnusedCTE,
	BadExample:  "with a as (select 1 as x), b as (select 2 as y) select x from a",
	GoodExample: "with a as (select 1 as x) select x from a",
}

func checkUnusedCTE(q ast.Query) []lint.Diagnostic {
	var diags []lint.Diagnostic
	ast.Inspect(q, func(n ast.Node) bool {
		owner, ok := n.(ast.Query)
		if !ok || owner.Base().With == nil {
			return true
		}
		ctes := owner.Base().With.CTEs

		// Names read by the query body and by the other CTEs.
		used := ast.TableNames(withoutWith(owner))
		for _, c := range ctes {
			for _, name := range ast.TableNames(c.Query) {
				if !ast.SameName(name, c.Name) {
					used = append(used, name)
				}
			}
		}

		for _, c := range ctes {
			if slices.ContainsFunc(used, func(name string) bool { return ast.SameName(name, c.Name) }) {
				continue
			}
			diags = append(diags, lint.Diagnostic{
				Severity: lint.SeverityWarning,
				Message:  "CTE " + c.Name + " is defined but never referenced",
				Query:    scan.Snippet(owner),
			})
		}
		return true
	})
	return diags
}

// withoutWith returns a shallow copy of q with its WITH clause removed.
func withoutWith(q ast.Query) ast.Query {
	switch q := q.(type) {
	case *ast.SelectQuery:
		c := *q
		c.With = nil
		return &c
	case *ast.SetQuery:
		c := *q
		c.With = nil
		return &c
	case *ast.ValuesQuery:
		c := *q
		c.With = nil
		return &c
	}
	return q
}
