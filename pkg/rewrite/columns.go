package rewrite

import (
	"fmt"
	"slices"
	"strings"

	"github.com/leapstack-labs/leapquery/pkg/ast"
)

// AddColumn appends expr as alias to the output of q. Each branch of a set
// operation gets its own copy so the row shape stays aligned.
func AddColumn(q ast.Query, expr ast.Expr, alias string) error {
	if err := addColumn(q, expr, alias); err != nil {
		return editError("add column", alias, err)
	}
	return nil
}

func addColumn(q ast.Query, expr ast.Expr, alias string) error {
	switch q := q.(type) {
	case *ast.SelectQuery:
		if q.Select == nil {
			q.Select = &ast.SelectClause{}
		}
		q.Select.Items = append(q.Select.Items, &ast.SelectItem{Expr: expr, Alias: alias})
		return nil
	case *ast.SetQuery:
		if err := addColumn(q.Left, ast.Clone(expr), alias); err != nil {
			return err
		}
		return addColumn(q.Right, ast.Clone(expr), alias)
	}
	return fmt.Errorf("%w: cannot add a column to %T", ErrNotSupported, q)
}

// ModifyColumn replaces the expression of the output column named column
// with fn applied to a copy of it. The output name is kept.
func ModifyColumn(q ast.Query, column string, fn func(old ast.Expr) ast.Expr) error {
	err := eachItem(q, column, func(s *ast.SelectQuery, i int) {
		item := s.Select.Items[i]
		name := item.Name()
		item.Expr = fn(ast.Clone(item.Expr))
		if item.Alias == "" && ast.DefaultName(item.Expr) != name {
			item.Alias = name
		}
	})
	if err != nil {
		return editError("modify column", column, err)
	}
	return nil
}

// RemoveColumn drops the output column named column from q.
func RemoveColumn(q ast.Query, column string) error {
	err := eachItem(q, column, func(s *ast.SelectQuery, i int) {
		s.Select.Items = slices.Delete(s.Select.Items, i, i+1)
	})
	if err != nil {
		return editError("remove column", column, err)
	}
	return nil
}

// eachItem calls fn on the select item producing column, in every branch
// of a set operation.
func eachItem(q ast.Query, column string, fn func(s *ast.SelectQuery, i int)) error {
	switch q := q.(type) {
	case *ast.SelectQuery:
		item := findItem(q, column)
		if item == nil {
			return fmt.Errorf("%w: no select item named %q", ErrUnresolvedColumn, column)
		}
		fn(q, slices.Index(q.Select.Items, item))
		return nil
	case *ast.SetQuery:
		idx := indexOf(ast.OutputColumns(q), column)
		if idx < 0 {
			return fmt.Errorf("%w: no output column named %q", ErrUnresolvedColumn, column)
		}
		return eachItemAt(q, idx, fn)
	}
	return fmt.Errorf("%w: cannot edit columns of %T", ErrNotSupported, q)
}

// eachItemAt matches set operation branches by position, since only the
// leftmost branch names the columns.
func eachItemAt(q ast.Query, idx int, fn func(s *ast.SelectQuery, i int)) error {
	switch q := q.(type) {
	case *ast.SelectQuery:
		if q.Select == nil || idx >= len(q.Select.Items) {
			return fmt.Errorf("%w: branch has no column %d", ErrUnresolvedColumn, idx+1)
		}
		fn(q, idx)
		return nil
	case *ast.SetQuery:
		if err := eachItemAt(q.Left, idx, fn); err != nil {
			return err
		}
		return eachItemAt(q.Right, idx, fn)
	}
	return fmt.Errorf("%w: cannot edit columns of %T", ErrNotSupported, q)
}

// AddParameter binds a named parameter on q. Names without a prefix get
// a leading colon.
func AddParameter(q ast.Query, name string, value any) {
	if !strings.ContainsAny(name[:min(1, len(name))], ":@$?") {
		name = ":" + name
	}
	q.AddParameter(name, value)
}
