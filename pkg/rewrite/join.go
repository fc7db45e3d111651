package rewrite

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapquery/pkg/ast"
)

// Join calls build for every query that produces column. With currentOnly
// the lookup stays in the queries named directly by q, so a join is added
// where the caller sees the column; set operations still fan out.
func Join(q ast.Query, column string, currentOnly bool, build func(t *Target) error) error {
	targets, err := resolveTargets(q, column, !currentOnly)
	if err != nil {
		return editError("join", column, err)
	}
	for _, t := range targets {
		if err := build(t); err != nil {
			return editError("join", column, err)
		}
	}
	return nil
}

// AddJoin appends src to the target query's FROM with the given join type.
// on receives a copy of the target column and returns the join condition;
// it may be nil for cross joins. When the query reads from a single source,
// its unqualified column references are first qualified with that source's
// name so they stay unambiguous next to the joined one.
func (t *Target) AddJoin(joinType string, src *ast.SourceExpr, on func(col ast.Expr) ast.Expr) (*ast.Join, error) {
	if t.Query.From == nil {
		return nil, fmt.Errorf("%w: query has no from clause to join to", ErrNotSupported)
	}
	qualifyRefs(t.Query)
	j := &ast.Join{Type: joinType, Source: src}
	if on != nil {
		j.On = on(t.Expr())
	}
	t.Query.From.Joins = append(t.Query.From.Joins, j)
	return j, nil
}

// InnerJoin joins a table under alias.
func (t *Target) InnerJoin(table, alias string, on func(col ast.Expr) ast.Expr) (*ast.Join, error) {
	return t.AddJoin("inner join", ast.Table(table, alias), on)
}

// LeftJoin left-joins a table under alias.
func (t *Target) LeftJoin(table, alias string, on func(col ast.Expr) ast.Expr) (*ast.Join, error) {
	return t.AddJoin("left join", ast.Table(table, alias), on)
}

// JoinQuery joins a copy of sub as a subquery source.
func (t *Target) JoinQuery(joinType string, sub ast.Query, alias string, on func(col ast.Expr) ast.Expr) (*ast.Join, error) {
	return t.AddJoin(joinType, ast.Subquery(ast.Clone(sub), alias), on)
}

// AddColumn appends a select item to the target query.
func (t *Target) AddColumn(expr ast.Expr, alias string) {
	t.Query.Select.Items = append(t.Query.Select.Items, &ast.SelectItem{Expr: expr, Alias: alias})
}

// qualifyRefs prefixes the unqualified column references in q's own scope
// with the name of its only source. Wildcards are qualified only as whole
// select items, so count(*) keeps its meaning. ORDER BY names that match an
// output alias are left alone.
func qualifyRefs(q *ast.SelectQuery) {
	if q.From == nil || len(q.From.Joins) > 0 {
		return
	}
	name := q.From.Source.Name()
	if name == "" {
		return
	}

	qualify := func(e ast.Expr) {
		if e == nil {
			return
		}
		for _, ref := range ast.ColumnRefs(e) {
			if ref.Table == "" && !ref.IsWildcard() {
				ref.Table = name
			}
		}
	}

	aliases := map[string]bool{}
	if q.Select != nil {
		for _, item := range q.Select.Items {
			if ref, ok := item.Expr.(*ast.ColumnRef); ok && ref.IsWildcard() && ref.Table == "" {
				ref.Table = name
				continue
			}
			qualify(item.Expr)
			if item.Alias != "" {
				aliases[strings.ToLower(item.Alias)] = true
			}
		}
		for _, e := range q.Select.DistinctOn {
			qualify(e)
		}
	}
	qualify(q.Where)
	qualify(q.Having)
	for _, e := range q.GroupBy {
		qualify(e)
	}
	for _, o := range q.OrderBy {
		if ref, ok := o.Expr.(*ast.ColumnRef); ok && ref.Table == "" && aliases[strings.ToLower(ref.Column)] {
			continue
		}
		qualify(o.Expr)
	}
}
