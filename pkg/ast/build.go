package ast

import (
	"strconv"
	"strings"
)

// Col builds a column reference from a possibly qualified name such as
// "a.value".
func Col(name string) *ColumnRef {
	if i := strings.LastIndexByte(name, '.'); i > 0 && !strings.HasSuffix(name, `"`) {
		return &ColumnRef{Table: name[:i], Column: name[i+1:]}
	}
	return &ColumnRef{Column: name}
}

// Number builds an integer literal.
func Number(n int64) *Literal {
	return &Literal{Kind: NumberLit, Value: strconv.FormatInt(n, 10)}
}

// String builds a string literal.
func String(s string) *Literal {
	return &Literal{Kind: StringLit, Value: s}
}

// Null builds the NULL literal.
func Null() *Literal {
	return &Literal{Kind: NullLit, Value: "null"}
}

// Binary builds left op right.
func Binary(left Expr, op string, right Expr) *BinaryExpr {
	return &BinaryExpr{Left: left, Op: op, Right: right}
}

// And joins two predicates. A nil side yields the other side. Operands that
// bind looser than AND are parenthesized when rendered.
func And(left, right Expr) Expr {
	switch {
	case left == nil:
		return right
	case right == nil:
		return left
	}
	return &BinaryExpr{Left: left, Op: "and", Right: right}
}

// Or joins two predicates with OR.
func Or(left, right Expr) Expr {
	switch {
	case left == nil:
		return right
	case right == nil:
		return left
	}
	return &BinaryExpr{Left: left, Op: "or", Right: right}
}

// Not negates a predicate.
func Not(e Expr) *UnaryExpr {
	return &UnaryExpr{Op: "not", Expr: e}
}

// Call builds a plain function call.
func Call(name string, args ...Expr) *FuncCall {
	return &FuncCall{Name: name, Args: args}
}

// Table builds a FROM source for a named table with an optional alias.
func Table(name, alias string) *SourceExpr {
	return &SourceExpr{Source: &TableSource{Name: name}, Alias: alias}
}

// Subquery builds a FROM source for a query with an alias.
func Subquery(q Query, alias string) *SourceExpr {
	return &SourceExpr{Source: &SubquerySource{Query: q}, Alias: alias}
}
