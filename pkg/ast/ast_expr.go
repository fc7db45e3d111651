package ast

// ---------- Expression Types ----------

// ColumnRef is a possibly qualified column reference. Column is "*" for
// wildcards. Quoted identifiers keep their double quotes.
type ColumnRef struct {
	Table  string // optional qualifier, may itself be dotted (schema.table)
	Column string
}

// IsWildcard reports whether the reference is * or t.*.
func (c *ColumnRef) IsWildcard() bool { return c.Column == "*" }

// LiteralKind is the type of a Literal.
type LiteralKind int

// Literal kinds.
const (
	NumberLit LiteralKind = iota
	StringLit
	BoolLit
	NullLit
)

// Literal is a constant value. String literals hold their unquoted value;
// Raw keeps the source spelling of escape and dollar-quoted strings.
type Literal struct {
	Kind  LiteralKind
	Value string
	Raw   string
}

// Param is a bind parameter such as :id, @id, $1 or ?.
type Param struct {
	Name string
}

// BinaryExpr is a binary operation. Op holds the normalized operator or
// keyword: "=", "and", "||", "is not", "is distinct from", "at time zone".
type BinaryExpr struct {
	Left  Expr
	Op    string
	Right Expr
}

// UnaryExpr is a prefix operation: not, -, +, ~.
type UnaryExpr struct {
	Op   string
	Expr Expr
}

// BetweenExpr is x [NOT] BETWEEN [SYMMETRIC] low AND high.
type BetweenExpr struct {
	Expr      Expr
	Not       bool
	Symmetric bool
	Low       Expr
	High      Expr
}

// LikeExpr covers like, ilike and similar to, negated or not.
type LikeExpr struct {
	Expr    Expr
	Op      string // "like", "not like", "ilike", "not ilike", "similar to", "not similar to"
	Pattern Expr
	Escape  Expr
}

// InExpr is x [NOT] IN (list) or x [NOT] IN (query). Exactly one of List
// and Query is set.
type InExpr struct {
	Expr  Expr
	Not   bool
	List  []Expr
	Query Query
}

// ExistsExpr is EXISTS (query). Negation is a UnaryExpr around it.
type ExistsExpr struct {
	Query Query
}

// CaseExpr is a searched (Operand nil) or simple CASE.
type CaseExpr struct {
	Operand Expr
	Whens   []*WhenClause
	Else    Expr
}

// WhenClause is one WHEN ... THEN ... arm.
type WhenClause struct {
	Cond   Expr
	Result Expr
}

// FuncCall is a function call with its optional aggregate and window parts.
type FuncCall struct {
	Name        string
	Distinct    bool
	All         bool
	Args        []Expr
	OrderBy     []*OrderItem // ordered-set argument: array_agg(x order by y)
	WithinGroup []*OrderItem
	Filter      Expr
	Over        *WindowSpec
	OverName    string // OVER w, without parentheses
}

// SpecialFunc is a function whose arguments are separated by keywords:
// trim(both 'x' from s), substring(s from 1 for 2), position('a' in s),
// overlay(s placing 'x' from 2), extract(year from d), normalize(s, nfc).
type SpecialFunc struct {
	Name  string
	Parts []*SpecialPart
}

// SpecialPart is one keyword-led argument. The first part usually has no
// keyword; trim modes have a keyword and no expression.
type SpecialPart struct {
	Keyword string
	Expr    Expr
}

// CastExpr is cast(x as t) or x::t.
type CastExpr struct {
	Expr   Expr
	Type   *TypeName
	Colons bool
}

// TypeName is a data type reference such as varchar(20), numeric(10, 2),
// int[] or timestamp with time zone.
type TypeName struct {
	Name      string
	Args      []Expr
	ArrayDims int
}

// ArrayExpr is array[...] or array(query).
type ArrayExpr struct {
	Elems []Expr
	Query Query
}

// GroupingExpr is cube(...), rollup(...) or grouping sets (...).
type GroupingExpr struct {
	Kind  string // "cube", "rollup", "grouping sets"
	Items []Expr
}

// ModifierExpr is a typed constant: interval '1 day', date '2020-01-01',
// timestamp '2020-01-01 00:00:00'.
type ModifierExpr struct {
	Modifier string
	Expr     Expr
}

// ParenExpr is an expression in parentheses.
type ParenExpr struct {
	Expr Expr
}

// RowExpr is a tuple: (a, b) or row(a, b).
type RowExpr struct {
	Items    []Expr
	Explicit bool // written with the ROW keyword
}

// SubqueryExpr is a query used as a scalar value.
type SubqueryExpr struct {
	Query Query
}

// SubscriptExpr is x[i] or x[lo:hi].
type SubscriptExpr struct {
	Expr  Expr
	Index Expr
	Upper Expr
	Slice bool
}

// ---------- Window Types ----------

// WindowSpec is the body of OVER (...) or of a WINDOW clause entry.
type WindowSpec struct {
	Base        string // existing window name the spec extends
	PartitionBy []Expr
	OrderBy     []*OrderItem
	Frame       *Frame
}

// Frame is the frame clause of a window.
type Frame struct {
	Unit    string // "rows", "range", "groups"
	Start   *FrameBound
	End     *FrameBound // nil when written without BETWEEN
	Exclude string      // "", "exclude current row", "exclude group", ...
}

// BoundKind enumerates frame boundary forms.
type BoundKind int

// Frame boundary kinds.
const (
	UnboundedPreceding BoundKind = iota
	Preceding
	CurrentRow
	Following
	UnboundedFollowing
)

// FrameBound is one end of a window frame. Offset is set for Preceding and
// Following.
type FrameBound struct {
	Kind   BoundKind
	Offset Expr
}

func (*ColumnRef) node()         {}
func (*ColumnRef) exprNode()     {}
func (*Literal) node()           {}
func (*Literal) exprNode()       {}
func (*Param) node()             {}
func (*Param) exprNode()         {}
func (*BinaryExpr) node()        {}
func (*BinaryExpr) exprNode()    {}
func (*UnaryExpr) node()         {}
func (*UnaryExpr) exprNode()     {}
func (*BetweenExpr) node()       {}
func (*BetweenExpr) exprNode()   {}
func (*LikeExpr) node()          {}
func (*LikeExpr) exprNode()      {}
func (*InExpr) node()            {}
func (*InExpr) exprNode()        {}
func (*ExistsExpr) node()        {}
func (*ExistsExpr) exprNode()    {}
func (*CaseExpr) node()          {}
func (*CaseExpr) exprNode()      {}
func (*WhenClause) node()        {}
func (*FuncCall) node()          {}
func (*FuncCall) exprNode()      {}
func (*SpecialFunc) node()       {}
func (*SpecialFunc) exprNode()   {}
func (*SpecialPart) node()       {}
func (*CastExpr) node()          {}
func (*CastExpr) exprNode()      {}
func (*TypeName) node()          {}
func (*ArrayExpr) node()         {}
func (*ArrayExpr) exprNode()     {}
func (*GroupingExpr) node()      {}
func (*GroupingExpr) exprNode()  {}
func (*ModifierExpr) node()      {}
func (*ModifierExpr) exprNode()  {}
func (*ParenExpr) node()         {}
func (*ParenExpr) exprNode()     {}
func (*RowExpr) node()           {}
func (*RowExpr) exprNode()       {}
func (*SubqueryExpr) node()      {}
func (*SubqueryExpr) exprNode()  {}
func (*SubscriptExpr) node()     {}
func (*SubscriptExpr) exprNode() {}
func (*WindowSpec) node()        {}
func (*Frame) node()             {}
func (*FrameBound) node()        {}
