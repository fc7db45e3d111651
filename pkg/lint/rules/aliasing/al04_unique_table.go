package aliasing

import (
	"fmt"

	"github.com/leapstack-labs/leapquery/pkg/ast"
	"github.com/leapstack-labs/leapquery/pkg/lint"
	"github.com/leapstack-labs/leapquery/pkg/lint/internal/scan"
)

func init() {
	lint.Register(UniqueTable)
}

// UniqueTable flags two sources of one FROM clause that share a name.
var UniqueTable = lint.RuleDef{
	ID:          "AL04",
	Name:        "aliasing.unique_table",
	Group:       "aliasing",
	Description: "Table aliases should be unique within a FROM clause.",
	Severity:    lint.SeverityError,
	Check:       checkUniqueTable,
	BadExample:  "select * from users join users on users.id = users.parent_id",
	GoodExample: "select * from users as u join users as p on u.parent_id = p.id",
}

func checkUniqueTable(q ast.Query) []lint.Diagnostic {
	var diags []lint.Diagnostic
	for _, sel := range scan.Selects(q) {
		var seen []string
		for _, src := range sel.From.Sources() {
			name := src.Name()
			if name == "" {
				continue
			}
			for _, prev := range seen {
				if ast.SameName(prev, name) {
					diags = append(diags, lint.Diagnostic{
						Severity: lint.SeverityError,
						Message:  fmt.Sprintf("source name %q is used more than once in the same FROM", name),
						Query:    scan.Snippet(sel),
					})
					break
				}
			}
			seen = append(seen, name)
		}
	}
	return diags
}
