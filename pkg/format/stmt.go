package format

import (
	"github.com/leapstack-labs/leapquery/pkg/ast"
)

func (p *Printer) formatNode(n ast.Node) {
	switch n := n.(type) {
	case ast.Query:
		p.formatWithClause(n)
		p.formatQuery(n)
	case *ast.CreateTableStmt:
		p.formatCreateTable(n)
	case *ast.InsertStmt:
		p.formatWithClause(n)
		p.formatInsert(n)
	case *ast.UpdateStmt:
		p.formatWithClause(n)
		p.formatUpdate(n)
	case *ast.DeleteStmt:
		p.formatWithClause(n)
		p.formatDelete(n)
	case ast.Expr:
		p.formatExpr(n)
	default:
		p.inline(n)
	}
}

// ---------- WITH ----------

// formatWithClause prints every CTE reachable from n once, in dependency
// order.
func (p *Printer) formatWithClause(n ast.Node) {
	ctes := ast.CommonTables(n)
	if len(ctes) == 0 {
		return
	}

	p.keyword("with")
	for _, c := range ctes {
		if c.Recursive {
			p.space()
			p.keyword("recursive")
			break
		}
	}
	p.writeln()

	p.indent()
	p.formatList(len(ctes), func(i int) {
		cte := ctes[i]
		p.write(cte.Name)
		if len(cte.Columns) > 0 {
			p.names(cte.Columns)
		}
		p.space()
		p.keyword("as")
		switch cte.Materialized {
		case ast.MaterializedAlways:
			p.space()
			p.keyword("materialized")
		case ast.MaterializedNever:
			p.space()
			p.keyword("not materialized")
		}
		p.write(" (")
		p.writeln()

		p.indent()
		p.formatQuery(cte.Query)
		p.dedent()

		p.write(")")
	}, ",", true)
	p.writeln()
	p.dedent()
}

// ---------- Queries ----------

func (p *Printer) formatQuery(q ast.Query) {
	switch q := q.(type) {
	case *ast.SelectQuery:
		p.formatSelect(q)
	case *ast.SetQuery:
		p.formatSetOperand(q.Left, q.LeftParen || needsParens(q.Left, false))
		p.keyword(q.Op)
		p.writeln()
		p.formatSetOperand(q.Right, q.RightParen || needsParens(q.Right, true))
		p.formatOrderBy(q.OrderBy)
		p.formatPaging(q.Paging)
	case *ast.ValuesQuery:
		p.keyword("values")
		p.writeln()
		p.indent()
		p.formatList(len(q.Rows), func(i int) { p.inline(&ast.RowExpr{Items: q.Rows[i]}) }, ",", true)
		p.writeln()
		p.dedent()
		p.formatOrderBy(q.OrderBy)
		p.formatPaging(q.Paging)
	}
}

func needsParens(q ast.Query, right bool) bool {
	switch q := q.(type) {
	case *ast.SelectQuery:
		return len(q.OrderBy) > 0 || q.Paging != nil || q.Lock != nil
	case *ast.SetQuery:
		return right || len(q.OrderBy) > 0 || q.Paging != nil
	case *ast.ValuesQuery:
		return len(q.OrderBy) > 0 || q.Paging != nil
	}
	return false
}

func (p *Printer) formatSetOperand(q ast.Query, paren bool) {
	if !paren {
		p.formatQuery(q)
		return
	}
	p.write("(")
	p.writeln()
	p.indent()
	p.formatQuery(q)
	p.dedent()
	p.write(")")
	p.writeln()
}

func (p *Printer) formatSelect(q *ast.SelectQuery) {
	p.keyword("select")
	if sc := q.Select; sc != nil {
		switch {
		case len(sc.DistinctOn) > 0:
			p.space()
			p.keyword("distinct on")
			p.write(" (")
			p.formatList(len(sc.DistinctOn), func(i int) { p.inline(sc.DistinctOn[i]) }, ",", false)
			p.write(")")
		case sc.Distinct:
			p.space()
			p.keyword("distinct")
		case sc.All:
			p.space()
			p.keyword("all")
		}
		p.writeln()

		p.indent()
		p.formatList(len(sc.Items), func(i int) { p.formatSelectItem(sc.Items[i]) }, ",", true)
		p.writeln()
		p.dedent()
	}

	if q.From != nil {
		p.keyword("from")
		p.space()
		p.formatFromClause(q.From)
		p.writeln()
	}

	p.formatBlock("where", q.Where)
	if len(q.GroupBy) > 0 {
		p.keyword("group by")
		p.writeln()
		p.indent()
		p.formatList(len(q.GroupBy), func(i int) { p.formatExpr(q.GroupBy[i]) }, ",", true)
		p.writeln()
		p.dedent()
	}
	p.formatBlock("having", q.Having)
	if len(q.Windows) > 0 {
		p.keyword("window")
		p.writeln()
		p.indent()
		p.formatList(len(q.Windows), func(i int) { p.inline(q.Windows[i]) }, ",", true)
		p.writeln()
		p.dedent()
	}
	p.formatOrderBy(q.OrderBy)
	p.formatPaging(q.Paging)
	if q.Lock != nil {
		p.inline(q.Lock)
		p.writeln()
	}
}

// formatBlock prints a clause keyword with its predicate indented below.
func (p *Printer) formatBlock(kw string, e ast.Expr) {
	if e == nil {
		return
	}
	p.keyword(kw)
	p.writeln()
	p.indent()
	p.formatExpr(e)
	p.writeln()
	p.dedent()
}

func (p *Printer) formatOrderBy(items []*ast.OrderItem) {
	if len(items) == 0 {
		return
	}
	p.keyword("order by")
	p.writeln()
	p.indent()
	p.formatList(len(items), func(i int) { p.inline(items[i]) }, ",", true)
	p.writeln()
	p.dedent()
}

func (p *Printer) formatPaging(pg *ast.Paging) {
	if pg == nil {
		return
	}
	p.inline(pg)
	p.writeln()
}

func (p *Printer) formatSelectItem(item *ast.SelectItem) {
	p.formatExpr(item.Expr)
	if item.Alias != "" {
		p.space()
		p.keyword("as")
		p.space()
		p.write(item.Alias)
	}
}

// ---------- FROM ----------

func (p *Printer) formatFromClause(from *ast.FromClause) {
	p.formatSource(from.Source)

	for _, j := range from.Joins {
		p.formatJoin(j)
	}
}

func (p *Printer) formatJoin(j *ast.Join) {
	if j.Type == "," {
		p.write(",")
		p.writeln()
		p.indent()
		p.formatSource(j.Source)
		p.dedent()
		return
	}

	p.writeln()
	p.keyword(j.Type)
	p.space()
	p.formatSource(j.Source)
	if j.On != nil {
		p.writeln()
		p.indent()
		p.keyword("on")
		p.space()
		p.formatExpr(j.On)
		p.dedent()
	}
	if len(j.Using) > 0 {
		p.writeln()
		p.indent()
		p.keyword("using")
		p.space()
		p.names(j.Using)
		p.dedent()
	}
}

func (p *Printer) formatSource(s *ast.SourceExpr) {
	if s.Lateral {
		p.keyword("lateral")
		p.space()
	}

	switch d := s.Source.(type) {
	case *ast.SubquerySource:
		p.formatSubquery(d.Query)
	case *ast.ValuesSource:
		p.formatSubquery(d.Query)
	default:
		p.inline(d)
	}

	if s.Alias != "" {
		p.space()
		p.keyword("as")
		p.space()
		p.write(s.Alias)
		if len(s.Columns) > 0 {
			p.names(s.Columns)
		}
	}
	if s.Sample != nil {
		p.space()
		p.inline(s.Sample)
	}
}

func (p *Printer) formatSubquery(q ast.Query) {
	p.write("(")
	p.writeln()
	p.indent()
	p.formatQuery(q)
	p.dedent()
	p.write(")")
}

// ---------- Statements ----------

func (p *Printer) formatCreateTable(s *ast.CreateTableStmt) {
	p.keyword("create")
	if s.Temporary {
		p.space()
		p.keyword("temporary")
	}
	p.space()
	p.keyword("table")
	p.space()
	p.write(s.Name)
	p.space()
	p.keyword("as")
	p.writeln()
	p.formatWithClause(s.Query)
	p.formatQuery(s.Query)
}

func (p *Printer) formatInsert(s *ast.InsertStmt) {
	p.keyword("insert into")
	p.space()
	p.write(s.Table)
	if len(s.Columns) > 0 {
		p.space()
		p.names(s.Columns)
	}
	p.writeln()
	p.formatQuery(s.Query)
}

func (p *Printer) formatUpdate(s *ast.UpdateStmt) {
	p.keyword("update")
	p.space()
	p.write(s.Table)
	if s.Alias != "" {
		p.space()
		p.keyword("as")
		p.space()
		p.write(s.Alias)
	}
	p.writeln()

	p.keyword("set")
	p.writeln()
	p.indent()
	p.formatList(len(s.Set), func(i int) { p.inline(s.Set[i]) }, ",", true)
	p.writeln()
	p.dedent()

	if s.From != nil {
		p.keyword("from")
		p.space()
		p.formatSource(s.From)
		p.writeln()
	}
	p.formatBlock("where", s.Where)
}

func (p *Printer) formatDelete(s *ast.DeleteStmt) {
	p.keyword("delete from")
	p.space()
	p.write(s.Table)
	if s.Alias != "" {
		p.space()
		p.keyword("as")
		p.space()
		p.write(s.Alias)
	}
	p.writeln()
	p.formatBlock("where", s.Where)
}
