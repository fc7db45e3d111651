// Package rewrite edits parsed queries by column name.
//
// Editors locate the query that produces a named output column and mutate
// that query. A column that passes unchanged through subqueries and CTEs is
// followed down to the deepest query that computes or reads it, so a
// predicate added on the outside lands as close to the data as possible.
// Set operations fan an edit out to every branch.
//
// Usage:
//
//	q, _ := parser.Parse("select a.id, a.value from table_a as a")
//	err := rewrite.Where(q, "value", rewrite.Equal(1))
//	// select a.id, a.value from table_a as a where a.value = 1
package rewrite

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapquery/pkg/ast"
)

// Target is a place where an edit for a column applies: a SELECT query and
// the expression that yields the column inside it.
type Target struct {
	Query *ast.SelectQuery
	// Column computes the requested column in Query's scope. It is shared
	// with the tree; use Expr for a copy to build new nodes from.
	Column ast.Expr
	// Having is set when Column aggregates, so predicates on it belong in
	// HAVING rather than WHERE.
	Having bool
}

// Expr returns a fresh copy of the target column.
func (t *Target) Expr() ast.Expr {
	return ast.Clone(t.Column)
}

// AddWhere appends a predicate to the target's WHERE clause, or to HAVING
// when the column aggregates.
func (t *Target) AddWhere(pred ast.Expr) {
	if t.Having {
		t.Query.Having = ast.And(t.Query.Having, pred)
		return
	}
	t.Query.Where = ast.And(t.Query.Where, pred)
}

// errStopHere tells the caller that the column exists in the inner query
// but must be edited at the referencing layer.
var errStopHere = errors.New("stop at referencing layer")

type resolver struct {
	ctes     []*ast.CommonTable
	visiting map[ast.Query]bool
	descend  bool
}

func newResolver(root ast.Query, descend bool) *resolver {
	return &resolver{
		ctes:     ast.CommonTables(root),
		visiting: map[ast.Query]bool{},
		descend:  descend,
	}
}

// Resolve returns every place an edit on column applies, following
// pass-through columns into subqueries and CTEs and fanning out over set
// operations.
func Resolve(q ast.Query, column string) ([]*Target, error) {
	targets, err := resolveTargets(q, column, true)
	if err != nil {
		return nil, editError("resolve", column, err)
	}
	return targets, nil
}

func resolveTargets(q ast.Query, column string, descend bool) ([]*Target, error) {
	return resolveWithin(q, q, column, descend)
}

// resolveWithin starts the lookup at start, a query inside root. CTE names
// resolve against everything declared in root.
func resolveWithin(root, start ast.Query, column string, descend bool) ([]*Target, error) {
	r := newResolver(root, descend)
	targets, err := r.resolve(start, column)
	if errors.Is(err, errStopHere) {
		return nil, fmt.Errorf("%w: column %q is computed by a window function", ErrNotSupported, column)
	}
	if err != nil {
		return nil, err
	}
	return dedupTargets(targets), nil
}

func (r *resolver) resolve(q ast.Query, name string) ([]*Target, error) {
	if r.visiting[q] {
		return nil, fmt.Errorf("%w: %q refers back to itself", ErrUnresolvedColumn, name)
	}
	r.visiting[q] = true
	defer delete(r.visiting, q)

	switch q := q.(type) {
	case *ast.SelectQuery:
		return r.resolveSelect(q, name)
	case *ast.SetQuery:
		return r.resolveSet(q, name)
	case *ast.ValuesQuery:
		return nil, fmt.Errorf("%w: values list has no where clause", ErrNotSupported)
	}
	return nil, fmt.Errorf("%w: unknown query type %T", ErrNotSupported, q)
}

// resolveSet applies the lookup to each branch. Branch columns are matched
// by position, since the set operation takes its names from the left.
func (r *resolver) resolveSet(q *ast.SetQuery, name string) ([]*Target, error) {
	idx := indexOf(ast.OutputColumns(q), name)

	var out []*Target
	for _, branch := range []ast.Query{q.Left, q.Right} {
		targets, err := r.resolveBranch(branch, name, idx)
		if err != nil {
			return nil, err
		}
		out = append(out, targets...)
	}
	return out, nil
}

func (r *resolver) resolveBranch(branch ast.Query, name string, idx int) ([]*Target, error) {
	if sq, ok := branch.(*ast.SelectQuery); ok && idx >= 0 && sq.Select != nil && idx < len(sq.Select.Items) {
		fixed := true
		for _, item := range sq.Select.Items[:idx+1] {
			if ref, ok := item.Expr.(*ast.ColumnRef); ok && ref.IsWildcard() {
				fixed = false
			}
		}
		if fixed {
			return r.resolveItem(sq, sq.Select.Items[idx])
		}
	}
	branchName := name
	if cols := ast.OutputColumns(branch); idx >= 0 && idx < len(cols) && cols[idx] != "" && cols[idx] != "*" {
		branchName = cols[idx]
	}
	return r.resolve(branch, branchName)
}

func (r *resolver) resolveSelect(q *ast.SelectQuery, name string) ([]*Target, error) {
	if item := findItem(q, name); item != nil {
		return r.resolveItem(q, item)
	}
	if targets, ok, err := r.resolveWildcard(q, name); ok || err != nil {
		return targets, err
	}
	return nil, fmt.Errorf("%w: no select item named %q", ErrUnresolvedColumn, name)
}

// findItem matches select items by alias first, then by default name.
func findItem(q *ast.SelectQuery, name string) *ast.SelectItem {
	if q.Select == nil || name == "" {
		return nil
	}
	for _, item := range q.Select.Items {
		if item.Alias != "" && ast.SameName(item.Alias, name) {
			return item
		}
	}
	for _, item := range q.Select.Items {
		if item.Alias == "" && ast.SameName(ast.DefaultName(item.Expr), name) {
			return item
		}
	}
	return nil
}

func (r *resolver) resolveItem(q *ast.SelectQuery, item *ast.SelectItem) ([]*Target, error) {
	expr := item.Expr
	if ast.ContainsWindowFunc(expr) {
		return nil, errStopHere
	}

	ref, ok := unparen(expr).(*ast.ColumnRef)
	if !ok {
		return []*Target{{Query: q, Column: expr, Having: ast.ContainsAggregate(expr)}}, nil
	}

	local := []*Target{{Query: q, Column: ref}}
	src := sourceFor(q, ref)
	if src == nil {
		return local, nil
	}
	if targets, ok := r.descendInto(q, src, ref.Column); ok {
		return targets, nil
	}
	return local, nil
}

// resolveWildcard handles columns that only exist behind * or t.*.
func (r *resolver) resolveWildcard(q *ast.SelectQuery, name string) ([]*Target, bool, error) {
	if q.Select == nil || q.From == nil {
		return nil, false, nil
	}
	sources := q.From.Sources()

	var candidates []*ast.SourceExpr
	for _, item := range q.Select.Items {
		ref, ok := item.Expr.(*ast.ColumnRef)
		if !ok || !ref.IsWildcard() {
			continue
		}
		if ref.Table == "" {
			candidates = append(candidates, sources...)
			continue
		}
		if s := sourceNamed(sources, ref.Table); s != nil {
			candidates = append(candidates, s)
		}
	}
	if len(candidates) == 0 {
		return nil, false, nil
	}

	// A source that lists its columns and has the name wins.
	for _, s := range candidates {
		if indexOf(s.ColumnNames(), name) < 0 {
			continue
		}
		ref := &ast.ColumnRef{Table: s.Name(), Column: name}
		if targets, ok := r.descendInto(q, s, name); ok {
			return targets, true, nil
		}
		return []*Target{{Query: q, Column: ref}}, true, nil
	}

	// Otherwise only a single source with unknown columns is unambiguous.
	var opaque []*ast.SourceExpr
	for _, s := range candidates {
		if len(s.ColumnNames()) == 0 {
			opaque = append(opaque, s)
		}
	}
	if len(opaque) != 1 {
		return nil, false, nil
	}
	s := opaque[0]
	if targets, ok := r.descendInto(q, s, name); ok {
		return targets, true, nil
	}
	ref := &ast.ColumnRef{Column: name}
	if len(sources) > 1 {
		ref.Table = s.Name()
	}
	return []*Target{{Query: q, Column: ref}}, true, nil
}

// descendInto follows column into the query behind src. It reports false
// when the edit has to stay in q.
func (r *resolver) descendInto(q *ast.SelectQuery, src *ast.SourceExpr, column string) ([]*Target, bool) {
	if !r.descend || nullSupplying(q.From, src) {
		return nil, false
	}

	inner, aliases := r.innerQuery(src)
	if inner == nil || blocksPushdown(inner) {
		return nil, false
	}

	name, ok := innerName(column, aliases, inner)
	if !ok {
		return nil, false
	}
	targets, err := r.resolve(inner, name)
	if err != nil || len(targets) == 0 {
		return nil, false
	}
	return targets, true
}

// innerQuery returns the query a source reads from, plus the column alias
// lists that rename its output.
func (r *resolver) innerQuery(src *ast.SourceExpr) (ast.Query, [][]string) {
	aliases := [][]string{src.Columns}
	switch d := src.Source.(type) {
	case *ast.SubquerySource:
		return d.Query, aliases
	case *ast.TableSource:
		cte := r.lookupCTE(d.Name)
		if cte == nil || selfReferencing(cte) {
			return nil, nil
		}
		return cte.Query, append(aliases, cte.Columns)
	}
	return nil, nil
}

func (r *resolver) lookupCTE(name string) *ast.CommonTable {
	for _, c := range r.ctes {
		if ast.SameName(c.Name, name) {
			return c
		}
	}
	return nil
}

func selfReferencing(cte *ast.CommonTable) bool {
	for _, t := range ast.TableNames(cte.Query) {
		if ast.SameName(t, cte.Name) {
			return true
		}
	}
	return false
}

// innerName maps an outer column name through column alias lists to the
// inner query's own output name.
func innerName(column string, aliases [][]string, inner ast.Query) (string, bool) {
	name := column
	for _, list := range aliases {
		if len(list) == 0 {
			continue
		}
		idx := indexOf(list, name)
		if idx < 0 {
			continue
		}
		cols := ast.OutputColumns(inner)
		if idx >= len(cols) || cols[idx] == "" || cols[idx] == "*" {
			return "", false
		}
		name = cols[idx]
	}
	return name, true
}

// blocksPushdown reports whether filtering inside q would change which rows
// it returns before the outer filter sees them.
func blocksPushdown(q ast.Query) bool {
	switch q := q.(type) {
	case *ast.SelectQuery:
		if q.Paging != nil || (q.Select != nil && len(q.Select.DistinctOn) > 0) {
			return true
		}
		if q.Select != nil {
			for _, item := range q.Select.Items {
				if ast.ContainsWindowFunc(item.Expr) {
					return true
				}
			}
		}
	case *ast.SetQuery:
		return q.Paging != nil || blocksPushdown(q.Left) || blocksPushdown(q.Right)
	case *ast.ValuesQuery:
		return true
	}
	return false
}

// nullSupplying reports whether src sits on the side of an outer join that
// is padded with nulls. Filtering such a source early would turn a
// filtered-out row into a null-padded one.
func nullSupplying(from *ast.FromClause, src *ast.SourceExpr) bool {
	if from == nil {
		return false
	}
	pos := -1
	if from.Source == src {
		pos = 0
	}
	for i, j := range from.Joins {
		if j.Source == src {
			pos = i + 1
		}
	}
	for i, j := range from.Joins {
		right := i + 1
		switch {
		case strings.Contains(j.Type, "full"):
			if pos <= right {
				return true
			}
		case strings.Contains(j.Type, "left"):
			if pos == right {
				return true
			}
		case strings.Contains(j.Type, "right"):
			if pos < right {
				return true
			}
		}
	}
	return false
}

// sourceFor finds the FROM source a column reference reads from: by
// qualifier, else the only source, else the one subquery source that lists
// the column.
func sourceFor(q *ast.SelectQuery, ref *ast.ColumnRef) *ast.SourceExpr {
	if q.From == nil {
		return nil
	}
	sources := q.From.Sources()
	if ref.Table != "" {
		return sourceNamed(sources, ref.Table)
	}
	if len(sources) == 1 {
		return sources[0]
	}
	var found *ast.SourceExpr
	for _, s := range sources {
		if indexOf(s.ColumnNames(), ref.Column) >= 0 {
			if found != nil {
				return nil
			}
			found = s
		}
	}
	return found
}

func sourceNamed(sources []*ast.SourceExpr, name string) *ast.SourceExpr {
	for _, s := range sources {
		if ast.SameName(s.Name(), name) {
			return s
		}
	}
	// schema.table qualifiers on an unaliased table
	for _, s := range sources {
		if t, ok := s.Source.(*ast.TableSource); ok && s.Alias == "" && ast.SameName(t.Name, name) {
			return s
		}
	}
	return nil
}

func unparen(e ast.Expr) ast.Expr {
	for {
		p, ok := e.(*ast.ParenExpr)
		if !ok {
			return e
		}
		e = p.Expr
	}
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if ast.SameName(n, name) {
			return i
		}
	}
	return -1
}

// dedupTargets drops repeated targets, which arise when one CTE is reached
// through several references.
func dedupTargets(targets []*Target) []*Target {
	type key struct {
		q      *ast.SelectQuery
		sql    string
		having bool
	}
	seen := map[key]bool{}
	out := targets[:0:0]
	for _, t := range targets {
		k := key{t.Query, ast.SQL(t.Column), t.Having}
		if !seen[k] {
			seen[k] = true
			out = append(out, t)
		}
	}
	return out
}
