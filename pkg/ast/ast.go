// Package ast defines the query model produced by the parser and consumed by
// the rewrite editors.
//
// Every node supports the same contract through central functions in this
// package: Tokens renders a node as tokens without any CTE text, SQL prints
// those tokens, NestedQueries enumerates queries inside a node and ColumnRefs
// enumerates the column references in a node's own scope. ToSQL is the only
// place a WITH clause is produced: it collects every CTE reachable from the
// root, removes duplicates and orders them by dependency.
//
// Trees are mutable after parsing. A tree has a single writer; mutating one
// tree from several goroutines is the caller's responsibility.
package ast

// Node is the base interface for all AST nodes.
type Node interface {
	node()
}

// Expr is a marker interface for value expressions.
type Expr interface {
	Node
	exprNode()
}

// Datasource is a marker interface for the things FROM and JOIN read from.
type Datasource interface {
	Node
	datasourceNode()
}

// Query is implemented by SelectQuery, SetQuery and ValuesQuery. All three
// may appear wherever a query is allowed.
type Query interface {
	Node
	queryNode()
	// Base returns the WITH clause and parameters owned by the query.
	Base() *QueryBase
	// AddParameter binds a named parameter on this query.
	AddParameter(name string, value any)
}

// Statement is a marker interface for the DDL/DML shapes built from a query.
type Statement interface {
	Node
	stmtNode()
}

// QueryBase holds what every query kind owns regardless of shape.
type QueryBase struct {
	With   *WithClause
	Params Params
}

// Base implements Query.
func (b *QueryBase) Base() *QueryBase { return b }

// AddParameter implements Query.
func (b *QueryBase) AddParameter(name string, value any) { b.Params.Set(name, value) }

// ---------- Queries ----------

// SelectQuery is a plain SELECT with all of its optional clauses.
type SelectQuery struct {
	QueryBase
	Select  *SelectClause
	From    *FromClause
	Where   Expr
	GroupBy []Expr
	Having  Expr
	Windows []*NamedWindow
	OrderBy []*OrderItem
	Paging  *Paging
	Lock    *LockClause
}

// SetQuery combines two queries with UNION, INTERSECT or EXCEPT. Chains of
// more than two operands nest on the left.
type SetQuery struct {
	QueryBase
	Left  Query
	Op    string // "union", "union all", "intersect", "except all", ...
	Right Query
	// LeftParen and RightParen record operands written in parentheses.
	LeftParen  bool
	RightParen bool
	OrderBy    []*OrderItem
	Paging     *Paging
}

// ValuesQuery is a VALUES list used as a query.
type ValuesQuery struct {
	QueryBase
	Rows    [][]Expr
	OrderBy []*OrderItem
	Paging  *Paging
}

func (*SelectQuery) node()      {}
func (*SelectQuery) queryNode() {}
func (*SetQuery) node()         {}
func (*SetQuery) queryNode()    {}
func (*ValuesQuery) node()      {}
func (*ValuesQuery) queryNode() {}

// ---------- Clauses ----------

// WithClause is the ordered CTE list of a query.
type WithClause struct {
	Recursive bool
	CTEs      []*CommonTable
}

// Materialized is the optional CTE materialization hint.
type Materialized int

// Materialization hints.
const (
	MaterializedDefault Materialized = iota
	MaterializedAlways
	MaterializedNever
)

// CommonTable is one named query in a WITH clause.
type CommonTable struct {
	Name         string
	Columns      []string
	Materialized Materialized
	Recursive    bool
	Query        Query
}

// SelectClause is the projection list.
type SelectClause struct {
	Distinct   bool
	DistinctOn []Expr
	All        bool
	Items      []*SelectItem
}

// SelectItem is one projected expression.
type SelectItem struct {
	Expr  Expr
	Alias string
}

// Name returns the output column name: the alias if set, otherwise the
// expression's default name.
func (s *SelectItem) Name() string {
	if s.Alias != "" {
		return s.Alias
	}
	return DefaultName(s.Expr)
}

// FromClause holds the root source and its joins.
type FromClause struct {
	Source *SourceExpr
	Joins  []*Join
}

// Sources returns the root source followed by every joined source.
func (f *FromClause) Sources() []*SourceExpr {
	if f == nil {
		return nil
	}
	out := []*SourceExpr{f.Source}
	for _, j := range f.Joins {
		out = append(out, j.Source)
	}
	return out
}

// Join is one JOIN (or comma) entry.
type Join struct {
	Type   string // ",", "join", "inner join", "left outer join", "cross join", ...
	Source *SourceExpr
	On     Expr
	Using  []string
}

// OrderItem is one ORDER BY entry.
type OrderItem struct {
	Expr  Expr
	Dir   string // "", "asc", "desc"
	Nulls string // "", "nulls first", "nulls last"
}

// NamedWindow is one entry of a WINDOW clause.
type NamedWindow struct {
	Name string
	Spec *WindowSpec
}

// Paging holds LIMIT, OFFSET and FETCH.
type Paging struct {
	Limit      Expr // nil when absent
	LimitAll   bool
	Offset     Expr
	OffsetWord string // "", "row", "rows"
	Fetch      *Fetch
}

// Fetch is FETCH {FIRST|NEXT} [n] {ROW|ROWS} {ONLY|WITH TIES}.
type Fetch struct {
	Word     string // "first" or "next"
	Count    Expr
	RowWord  string // "row" or "rows"
	WithTies bool
}

// LockClause is a row-locking FOR clause.
type LockClause struct {
	Strength string // "for update", "for share", "for no key update", "for key share"
	Of       []string
	Wait     string // "", "nowait", "skip locked"
}

func (*WithClause) node()   {}
func (*CommonTable) node()  {}
func (*SelectClause) node() {}
func (*SelectItem) node()   {}
func (*FromClause) node()   {}
func (*Join) node()         {}
func (*OrderItem) node()    {}
func (*NamedWindow) node()  {}
func (*Paging) node()       {}
func (*LockClause) node()   {}
