package ast

// ---------- Datasource Types ----------

// TableSource is a named table, view or CTE reference. Name may be dotted.
type TableSource struct {
	Name string
}

// SubquerySource is a parenthesized query in FROM. The query may be a
// SELECT or a set operation.
type SubquerySource struct {
	Query Query
}

// FunctionSource is a set-returning function in FROM.
type FunctionSource struct {
	Func           *FuncCall
	WithOrdinality bool
}

// ValuesSource is a parenthesized VALUES list in FROM.
type ValuesSource struct {
	Query *ValuesQuery
}

func (*TableSource) node()              {}
func (*TableSource) datasourceNode()    {}
func (*SubquerySource) node()           {}
func (*SubquerySource) datasourceNode() {}
func (*FunctionSource) node()           {}
func (*FunctionSource) datasourceNode() {}
func (*ValuesSource) node()             {}
func (*ValuesSource) datasourceNode()   {}

// SourceExpr is a datasource with its alias, column aliases and sampling
// clause. It is the unit held by FROM and JOIN.
type SourceExpr struct {
	Source  Datasource
	Alias   string
	Columns []string
	Lateral bool
	Sample  *TableSample
}

// TableSample is TABLESAMPLE method (args) [REPEATABLE (seed)].
type TableSample struct {
	Method     string
	Args       []Expr
	Repeatable Expr
}

func (*SourceExpr) node()  {}
func (*TableSample) node() {}

// Name returns the name the source is visible under: its alias, or the
// datasource's default name.
func (s *SourceExpr) Name() string {
	if s.Alias != "" {
		return s.Alias
	}
	return DatasourceName(s.Source)
}

// ColumnNames returns the columns the source exposes. Explicit column
// aliases win over the datasource's own output names. Tables and functions
// without aliases return nil.
func (s *SourceExpr) ColumnNames() []string {
	own := DatasourceColumns(s.Source)
	if len(s.Columns) == 0 {
		return own
	}
	out := append([]string(nil), s.Columns...)
	if len(own) > len(out) {
		out = append(out, own[len(out):]...)
	}
	return out
}

// DatasourceName returns the default alias of a datasource.
func DatasourceName(d Datasource) string {
	switch d := d.(type) {
	case *TableSource:
		return lastPart(d.Name)
	case *FunctionSource:
		return lastPart(d.Func.Name)
	}
	return ""
}

// DatasourceColumns returns the selectable output names of a datasource.
// Tables and functions have none; subqueries and VALUES derive them from
// their inner query.
func DatasourceColumns(d Datasource) []string {
	switch d := d.(type) {
	case *SubquerySource:
		return OutputColumns(d.Query)
	case *ValuesSource:
		return OutputColumns(d.Query)
	}
	return nil
}
