package ast

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapquery/pkg/token"
)

// Tokens renders a node as a token sequence. WITH clauses are never part of
// the output; ToSQL hoists them.
func Tokens(n Node) []token.Token {
	e := &emitter{}
	e.node(n)
	return e.toks
}

// SQL renders a node as single-line SQL without any WITH clause.
func SQL(n Node) string {
	return Print(Tokens(n))
}

// ToSQLWithoutCTE renders the body of a query for embedding inside a parent
// that emits the consolidated WITH clause.
func ToSQLWithoutCTE(q Query) string {
	return SQL(q)
}

// QuoteString returns s as a single-quoted SQL string literal.
func QuoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

type emitter struct {
	toks []token.Token
}

func (e *emitter) add(kind token.Kind, text string) {
	e.toks = append(e.toks, token.New(kind, text))
}

func (e *emitter) kw(cmds ...string) {
	for _, c := range cmds {
		e.add(token.Keyword, c)
	}
}

func (e *emitter) ident(text string) { e.add(token.Ident, text) }
func (e *emitter) op(text string)    { e.add(token.Operator, text) }
func (e *emitter) lparen()           { e.add(token.LParen, "(") }
func (e *emitter) rparen()           { e.add(token.RParen, ")") }
func (e *emitter) comma()            { e.add(token.Comma, ",") }

func (e *emitter) exprs(list []Expr) {
	for i, x := range list {
		if i > 0 {
			e.comma()
		}
		e.node(x)
	}
}

func (e *emitter) names(list []string) {
	for i, n := range list {
		if i > 0 {
			e.comma()
		}
		e.ident(n)
	}
}

func (e *emitter) paren(fn func()) {
	e.lparen()
	fn()
	e.rparen()
}

// operand renders a child expression, adding parentheses when the child
// binds looser than its parent. Parsed trees keep their own ParenExpr nodes,
// so this only affects trees assembled in code.
func (e *emitter) operand(x Expr, parent int, right bool) {
	p := Precedence(x)
	if p < parent || (right && p == parent && p != PrecAnd && p != PrecOr) {
		e.paren(func() { e.node(x) })
		return
	}
	e.node(x)
}

func isWordOp(op string) bool {
	return op != "" && (op[0] >= 'a' && op[0] <= 'z')
}

func (e *emitter) orderBy(items []*OrderItem) {
	if len(items) == 0 {
		return
	}
	e.kw("order by")
	e.orderItems(items)
}

func (e *emitter) orderItems(items []*OrderItem) {
	for i, o := range items {
		if i > 0 {
			e.comma()
		}
		e.node(o)
	}
}

func (e *emitter) node(n Node) {
	switch n := n.(type) {
	case nil:
		return

	// queries
	case *SelectQuery:
		e.selectQuery(n)
	case *SetQuery:
		e.setOperand(n.Left, n.LeftParen, false)
		e.kw(n.Op)
		e.setOperand(n.Right, n.RightParen, true)
		e.orderBy(n.OrderBy)
		e.node(n.Paging)
	case *ValuesQuery:
		e.kw("values")
		for i, row := range n.Rows {
			if i > 0 {
				e.comma()
			}
			e.paren(func() { e.exprs(row) })
		}
		e.orderBy(n.OrderBy)
		e.node(n.Paging)

	// clauses
	case *WithClause:
		if n == nil {
			return
		}
		if len(n.CTEs) == 0 {
			return
		}
		e.kw("with")
		if n.Recursive {
			e.kw("recursive")
		}
		for i, c := range n.CTEs {
			if i > 0 {
				e.comma()
			}
			e.node(c)
		}
	case *CommonTable:
		e.ident(n.Name)
		if len(n.Columns) > 0 {
			e.paren(func() { e.names(n.Columns) })
		}
		e.kw("as")
		switch n.Materialized {
		case MaterializedAlways:
			e.kw("materialized")
		case MaterializedNever:
			e.kw("not materialized")
		}
		e.paren(func() { e.node(n.Query) })
	case *SelectClause:
		if n == nil {
			return
		}
		e.kw("select")
		switch {
		case len(n.DistinctOn) > 0:
			e.kw("distinct on")
			e.paren(func() { e.exprs(n.DistinctOn) })
		case n.Distinct:
			e.kw("distinct")
		case n.All:
			e.kw("all")
		}
		for i, item := range n.Items {
			if i > 0 {
				e.comma()
			}
			e.node(item)
		}
	case *SelectItem:
		e.node(n.Expr)
		if n.Alias != "" {
			e.kw("as")
			e.ident(n.Alias)
		}
	case *FromClause:
		if n == nil {
			return
		}
		e.kw("from")
		e.node(n.Source)
		for _, j := range n.Joins {
			e.node(j)
		}
	case *Join:
		if n.Type == "," {
			e.comma()
		} else {
			e.kw(n.Type)
		}
		e.node(n.Source)
		if n.On != nil {
			e.kw("on")
			e.node(n.On)
		}
		if len(n.Using) > 0 {
			e.kw("using")
			e.paren(func() { e.names(n.Using) })
		}
	case *OrderItem:
		e.node(n.Expr)
		if n.Dir != "" {
			e.kw(n.Dir)
		}
		if n.Nulls != "" {
			e.kw(n.Nulls)
		}
	case *NamedWindow:
		e.ident(n.Name)
		e.kw("as")
		e.paren(func() { e.node(n.Spec) })
	case *Paging:
		if n == nil {
			return
		}
		if n.Limit != nil || n.LimitAll {
			e.kw("limit")
			if n.LimitAll {
				e.kw("all")
			} else {
				e.node(n.Limit)
			}
		}
		if n.Offset != nil {
			e.kw("offset")
			e.node(n.Offset)
			if n.OffsetWord != "" {
				e.kw(n.OffsetWord)
			}
		}
		if f := n.Fetch; f != nil {
			e.kw("fetch", f.Word)
			e.node(f.Count)
			e.kw(f.RowWord)
			if f.WithTies {
				e.kw("with ties")
			} else {
				e.kw("only")
			}
		}
	case *LockClause:
		if n == nil {
			return
		}
		e.kw(n.Strength)
		if len(n.Of) > 0 {
			e.kw("of")
			e.names(n.Of)
		}
		if n.Wait != "" {
			e.kw(n.Wait)
		}

	// datasources
	case *SourceExpr:
		if n == nil {
			return
		}
		if n.Lateral {
			e.kw("lateral")
		}
		e.node(n.Source)
		if n.Alias != "" {
			e.kw("as")
			e.ident(n.Alias)
			if len(n.Columns) > 0 {
				e.paren(func() { e.names(n.Columns) })
			}
		}
		e.node(n.Sample)
	case *TableSample:
		if n == nil {
			return
		}
		e.kw("tablesample")
		e.ident(n.Method)
		e.paren(func() { e.exprs(n.Args) })
		if n.Repeatable != nil {
			e.kw("repeatable")
			e.paren(func() { e.node(n.Repeatable) })
		}
	case *TableSource:
		e.ident(n.Name)
	case *SubquerySource:
		e.paren(func() { e.node(n.Query) })
	case *FunctionSource:
		e.node(n.Func)
		if n.WithOrdinality {
			e.kw("with ordinality")
		}
	case *ValuesSource:
		e.paren(func() { e.node(n.Query) })

	// expressions
	case *ColumnRef:
		if n.Table != "" {
			e.ident(n.Table)
			e.add(token.Dot, ".")
		}
		e.ident(n.Column)
	case *Literal:
		switch n.Kind {
		case NumberLit:
			e.add(token.Number, n.Value)
		case StringLit:
			if n.Raw != "" {
				e.add(token.String, n.Raw)
			} else {
				e.add(token.String, QuoteString(n.Value))
			}
		case BoolLit:
			e.kw(strings.ToLower(n.Value))
		case NullLit:
			e.kw("null")
		}
	case *Param:
		e.add(token.Param, n.Name)
	case *BinaryExpr:
		p := BinaryPrecedence(n.Op)
		e.operand(n.Left, p, false)
		if isWordOp(n.Op) {
			e.kw(n.Op)
		} else {
			e.op(n.Op)
		}
		e.operand(n.Right, p, true)
	case *UnaryExpr:
		if n.Op == "not" {
			e.kw("not")
			e.operand(n.Expr, PrecNot, false)
		} else {
			e.op(n.Op)
			e.operand(n.Expr, PrecUnary, false)
		}
	case *BetweenExpr:
		e.operand(n.Expr, PrecComparison, false)
		if n.Not {
			e.kw("not between")
		} else {
			e.kw("between")
		}
		if n.Symmetric {
			e.kw("symmetric")
		}
		e.operand(n.Low, PrecOther, false)
		e.kw("and")
		e.operand(n.High, PrecOther, false)
	case *LikeExpr:
		e.operand(n.Expr, PrecComparison, false)
		e.kw(n.Op)
		e.operand(n.Pattern, PrecComparison, true)
		if n.Escape != nil {
			e.kw("escape")
			e.node(n.Escape)
		}
	case *InExpr:
		e.operand(n.Expr, PrecComparison, false)
		if n.Not {
			e.kw("not in")
		} else {
			e.kw("in")
		}
		e.paren(func() {
			if n.Query != nil {
				e.node(n.Query)
			} else {
				e.exprs(n.List)
			}
		})
	case *ExistsExpr:
		e.kw("exists")
		e.paren(func() { e.node(n.Query) })
	case *CaseExpr:
		e.kw("case")
		e.node(n.Operand)
		for _, w := range n.Whens {
			e.node(w)
		}
		if n.Else != nil {
			e.kw("else")
			e.node(n.Else)
		}
		e.kw("end")
	case *WhenClause:
		e.kw("when")
		e.node(n.Cond)
		e.kw("then")
		e.node(n.Result)
	case *FuncCall:
		e.ident(n.Name)
		e.paren(func() {
			switch {
			case n.Distinct:
				e.kw("distinct")
			case n.All:
				e.kw("all")
			}
			e.exprs(n.Args)
			e.orderBy(n.OrderBy)
		})
		if len(n.WithinGroup) > 0 {
			e.kw("within group")
			e.paren(func() { e.orderBy(n.WithinGroup) })
		}
		if n.Filter != nil {
			e.kw("filter")
			e.paren(func() {
				e.kw("where")
				e.node(n.Filter)
			})
		}
		switch {
		case n.Over != nil:
			e.kw("over")
			e.paren(func() { e.node(n.Over) })
		case n.OverName != "":
			e.kw("over")
			e.ident(n.OverName)
		}
	case *SpecialFunc:
		e.ident(n.Name)
		e.paren(func() {
			for _, p := range n.Parts {
				e.node(p)
			}
		})
	case *SpecialPart:
		if n.Keyword != "" {
			e.kw(n.Keyword)
		}
		e.node(n.Expr)
	case *CastExpr:
		if n.Colons {
			e.operand(n.Expr, PrecPostfix, false)
			e.op("::")
			e.node(n.Type)
			return
		}
		e.ident("cast")
		e.paren(func() {
			e.node(n.Expr)
			e.kw("as")
			e.node(n.Type)
		})
	case *TypeName:
		if n == nil {
			return
		}
		e.ident(n.Name)
		if len(n.Args) > 0 {
			e.paren(func() { e.exprs(n.Args) })
		}
		for i := 0; i < n.ArrayDims; i++ {
			e.add(token.LBracket, "[")
			e.add(token.RBracket, "]")
		}
	case *ArrayExpr:
		e.ident("array")
		if n.Query != nil {
			e.paren(func() { e.node(n.Query) })
			return
		}
		e.add(token.LBracket, "[")
		e.exprs(n.Elems)
		e.add(token.RBracket, "]")
	case *GroupingExpr:
		if n.Kind == "grouping sets" {
			e.kw(n.Kind)
		} else {
			e.ident(n.Kind)
		}
		e.paren(func() { e.exprs(n.Items) })
	case *ModifierExpr:
		e.ident(n.Modifier)
		e.node(n.Expr)
	case *ParenExpr:
		e.paren(func() { e.node(n.Expr) })
	case *RowExpr:
		if n.Explicit {
			e.ident("row")
		}
		e.paren(func() { e.exprs(n.Items) })
	case *SubqueryExpr:
		e.paren(func() { e.node(n.Query) })
	case *SubscriptExpr:
		e.operand(n.Expr, PrecPostfix, false)
		e.add(token.LBracket, "[")
		e.node(n.Index)
		if n.Slice {
			e.op(":")
			e.node(n.Upper)
		}
		e.add(token.RBracket, "]")

	// windows
	case *WindowSpec:
		if n == nil {
			return
		}
		if n.Base != "" {
			e.ident(n.Base)
		}
		if len(n.PartitionBy) > 0 {
			e.kw("partition by")
			e.exprs(n.PartitionBy)
		}
		e.orderBy(n.OrderBy)
		e.node(n.Frame)
	case *Frame:
		if n == nil {
			return
		}
		e.kw(n.Unit)
		if n.End != nil {
			e.kw("between")
			e.node(n.Start)
			e.kw("and")
			e.node(n.End)
		} else {
			e.node(n.Start)
		}
		if n.Exclude != "" {
			e.kw(n.Exclude)
		}
	case *FrameBound:
		if n == nil {
			return
		}
		switch n.Kind {
		case UnboundedPreceding:
			e.kw("unbounded preceding")
		case Preceding:
			e.node(n.Offset)
			e.kw("preceding")
		case CurrentRow:
			e.kw("current row")
		case Following:
			e.node(n.Offset)
			e.kw("following")
		case UnboundedFollowing:
			e.kw("unbounded following")
		}

	// statements
	case *CreateTableStmt:
		e.kw("create")
		if n.Temporary {
			e.kw("temporary")
		}
		e.kw("table")
		e.ident(n.Name)
		e.kw("as")
		e.node(n.Query)
	case *InsertStmt:
		e.kw("insert", "into")
		e.ident(n.Table)
		if len(n.Columns) > 0 {
			e.paren(func() { e.names(n.Columns) })
		}
		e.node(n.Query)
	case *UpdateStmt:
		e.kw("update")
		e.ident(n.Table)
		if n.Alias != "" {
			e.kw("as")
			e.ident(n.Alias)
		}
		e.kw("set")
		for i, a := range n.Set {
			if i > 0 {
				e.comma()
			}
			e.node(a)
		}
		if n.From != nil {
			e.kw("from")
			e.node(n.From)
		}
		if n.Where != nil {
			e.kw("where")
			e.node(n.Where)
		}
	case *Assignment:
		e.ident(n.Column)
		e.op("=")
		e.node(n.Value)
	case *DeleteStmt:
		e.kw("delete", "from")
		e.ident(n.Table)
		if n.Alias != "" {
			e.kw("as")
			e.ident(n.Alias)
		}
		if n.Where != nil {
			e.kw("where")
			e.node(n.Where)
		}

	default:
		panic(fmt.Sprintf("ast: unhandled node type %T", n))
	}
}

func (e *emitter) selectQuery(q *SelectQuery) {
	e.node(q.Select)
	if q.From != nil {
		e.node(q.From)
	}
	if q.Where != nil {
		e.kw("where")
		e.node(q.Where)
	}
	if len(q.GroupBy) > 0 {
		e.kw("group by")
		e.exprs(q.GroupBy)
	}
	if q.Having != nil {
		e.kw("having")
		e.node(q.Having)
	}
	if len(q.Windows) > 0 {
		e.kw("window")
		for i, w := range q.Windows {
			if i > 0 {
				e.comma()
			}
			e.node(w)
		}
	}
	e.orderBy(q.OrderBy)
	e.node(q.Paging)
	e.node(q.Lock)
}

// setOperand renders one side of a set operation. Operands with their own
// ORDER BY or paging, and right-nested set operations, need parentheses.
func (e *emitter) setOperand(q Query, paren, right bool) {
	if paren || needsSetParens(q, right) {
		e.paren(func() { e.node(q) })
		return
	}
	e.node(q)
}

func needsSetParens(q Query, right bool) bool {
	switch q := q.(type) {
	case *SelectQuery:
		return len(q.OrderBy) > 0 || q.Paging != nil || q.Lock != nil
	case *SetQuery:
		return right || len(q.OrderBy) > 0 || q.Paging != nil
	case *ValuesQuery:
		return len(q.OrderBy) > 0 || q.Paging != nil
	}
	return false
}
