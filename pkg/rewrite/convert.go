package rewrite

import (
	"fmt"
	"slices"

	"github.com/leapstack-labs/leapquery/pkg/ast"
)

// ---------- Statement Converters ----------

// Aliases used by the generated UPDATE and DELETE statements.
const (
	targetAlias = "d"
	sourceAlias = "q"
)

// ToCreateTable wraps a copy of q as CREATE [TEMPORARY] TABLE name AS q.
func ToCreateTable(q ast.Query, name string, temporary bool) *ast.CreateTableStmt {
	return &ast.CreateTableStmt{Name: name, Temporary: temporary, Query: ast.Clone(q)}
}

// ToInsert wraps a copy of q as INSERT INTO table q. The column list is
// filled in when every output column of q has a name.
func ToInsert(q ast.Query, table string) *ast.InsertStmt {
	stmt := &ast.InsertStmt{Table: table, Query: ast.Clone(q)}
	if cols, err := namedColumns(q); err == nil {
		stmt.Columns = cols
	}
	return stmt
}

// ToUpdate builds an UPDATE of table from the rows of q, matching rows on
// keys and setting every other output column:
//
//	update table as d set c = q.c from (q) as q where d.k = q.k
func ToUpdate(q ast.Query, table string, keys []string) (*ast.UpdateStmt, error) {
	cols, err := keyedColumns(q, keys)
	if err != nil {
		return nil, editError("to update", table, err)
	}

	stmt := &ast.UpdateStmt{
		Table: table,
		Alias: targetAlias,
		From:  ast.Subquery(ast.Clone(q), sourceAlias),
	}
	for _, c := range cols {
		if containsName(keys, c) {
			continue
		}
		stmt.Set = append(stmt.Set, &ast.Assignment{
			Column: c,
			Value:  &ast.ColumnRef{Table: sourceAlias, Column: c},
		})
	}
	if len(stmt.Set) == 0 {
		return nil, editError("to update", table, fmt.Errorf("%w: every column is a key", ErrInvalidOperand))
	}
	for _, k := range keys {
		stmt.Where = ast.And(stmt.Where, ast.Binary(
			&ast.ColumnRef{Table: targetAlias, Column: k}, "=",
			&ast.ColumnRef{Table: sourceAlias, Column: k},
		))
	}
	return stmt, nil
}

// ToDelete builds a DELETE from table of the rows whose keys appear in q:
//
//	delete from table as d where d.k in (select q.k from (q) as q)
//
// Several keys are compared as a row.
func ToDelete(q ast.Query, table string, keys []string) (*ast.DeleteStmt, error) {
	if _, err := keyedColumns(q, keys); err != nil {
		return nil, editError("to delete", table, err)
	}

	sub := &ast.SelectQuery{
		Select: &ast.SelectClause{},
		From:   &ast.FromClause{Source: ast.Subquery(ast.Clone(q), sourceAlias)},
	}
	left := make([]ast.Expr, len(keys))
	for i, k := range keys {
		left[i] = &ast.ColumnRef{Table: targetAlias, Column: k}
		sub.Select.Items = append(sub.Select.Items, &ast.SelectItem{
			Expr: &ast.ColumnRef{Table: sourceAlias, Column: k},
		})
	}

	var lhs ast.Expr = left[0]
	if len(left) > 1 {
		lhs = &ast.RowExpr{Items: left}
	}
	return &ast.DeleteStmt{
		Table: table,
		Alias: targetAlias,
		Where: &ast.InExpr{Expr: lhs, Query: sub},
	}, nil
}

// namedColumns returns the output columns of q, failing when any of them
// is unnamed or a wildcard.
func namedColumns(q ast.Query) ([]string, error) {
	cols := ast.OutputColumns(q)
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: query has no output columns", ErrNotSupported)
	}
	for i, c := range cols {
		if c == "" || c == "*" {
			return nil, fmt.Errorf("%w: output column %d has no name", ErrNotSupported, i+1)
		}
	}
	return cols, nil
}

func keyedColumns(q ast.Query, keys []string) ([]string, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: no key columns", ErrInvalidOperand)
	}
	cols, err := namedColumns(q)
	if err != nil {
		return nil, err
	}
	for _, k := range keys {
		if !containsName(cols, k) {
			return nil, fmt.Errorf("%w: key %q is not an output column", ErrUnresolvedColumn, k)
		}
	}
	return cols, nil
}

func containsName(names []string, name string) bool {
	return slices.ContainsFunc(names, func(n string) bool { return ast.SameName(n, name) })
}
