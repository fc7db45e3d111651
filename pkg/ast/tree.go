package ast

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss/tree"
)

// TreeString returns an indented dump of a query and its datasources: the
// query kind, its SQL without CTEs, its output columns, and each source
// with the query it reads from. It is meant for debugging and tests, not
// for round-tripping.
func TreeString(q Query) string {
	return queryTree(q, "").String()
}

func queryTree(q Query, label string) *tree.Tree {
	t := tree.Root(label + queryKind(q))
	t.Child("sql: " + SQL(q))
	if cols := OutputColumns(q); len(cols) > 0 {
		t.Child("columns: " + strings.Join(cols, ", "))
	}

	if w := q.Base().With; w != nil && len(w.CTEs) > 0 {
		with := tree.Root("with")
		for _, c := range w.CTEs {
			with.Child(queryTree(c.Query, "cte "+c.Name+": "))
		}
		t.Child(with)
	}

	switch q := q.(type) {
	case *SelectQuery:
		if q.From != nil {
			from := tree.Root("from")
			for _, s := range q.From.Sources() {
				from.Child(sourceTree(s))
			}
			t.Child(from)
		}
	case *SetQuery:
		t.Child(queryTree(q.Left, "left: "))
		t.Child(queryTree(q.Right, q.Op+": "))
	case *ValuesQuery:
		t.Child(fmt.Sprintf("rows: %d", len(q.Rows)))
	}
	return t
}

func sourceTree(s *SourceExpr) any {
	label := fmt.Sprintf("%s: %s", s.Name(), datasourceKind(s.Source))
	switch d := s.Source.(type) {
	case *SubquerySource:
		return tree.Root(label).Child(queryTree(d.Query, ""))
	case *ValuesSource:
		return tree.Root(label).Child(queryTree(d.Query, ""))
	case *TableSource:
		return label + " " + d.Name
	case *FunctionSource:
		return label + " " + SQL(d.Func)
	}
	return label
}

func queryKind(q Query) string {
	switch q.(type) {
	case *SelectQuery:
		return "SelectQuery"
	case *SetQuery:
		return "SetQuery"
	case *ValuesQuery:
		return "ValuesQuery"
	}
	return fmt.Sprintf("%T", q)
}

func datasourceKind(d Datasource) string {
	switch d.(type) {
	case *TableSource:
		return "TableSource"
	case *SubquerySource:
		return "SubquerySource"
	case *FunctionSource:
		return "FunctionSource"
	case *ValuesSource:
		return "ValuesSource"
	}
	return fmt.Sprintf("%T", d)
}
