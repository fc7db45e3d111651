package ast

import (
	"fmt"
	"strings"
)

// DefaultName returns the column name an expression gets when selected
// without an alias. Only column references, casts of them and function
// calls have one; everything else returns "".
func DefaultName(e Expr) string {
	switch e := e.(type) {
	case *ColumnRef:
		return e.Column
	case *CastExpr:
		return DefaultName(e.Expr)
	case *ParenExpr:
		return DefaultName(e.Expr)
	case *FuncCall:
		return lastPart(e.Name)
	case *SpecialFunc:
		return e.Name
	}
	return ""
}

// OutputColumns returns the names a query produces, in order. Set queries
// take the names of their leftmost operand; VALUES lists are named
// column1, column2, ... like PostgreSQL does.
func OutputColumns(q Query) []string {
	switch q := q.(type) {
	case *SelectQuery:
		if q.Select == nil {
			return nil
		}
		out := make([]string, len(q.Select.Items))
		for i, item := range q.Select.Items {
			out[i] = item.Name()
		}
		return out
	case *SetQuery:
		return OutputColumns(q.Left)
	case *ValuesQuery:
		if len(q.Rows) == 0 {
			return nil
		}
		out := make([]string, len(q.Rows[0]))
		for i := range out {
			out[i] = fmt.Sprintf("column%d", i+1)
		}
		return out
	}
	return nil
}

// Unquote strips the double quotes of a quoted identifier.
func Unquote(name string) string {
	if len(name) >= 2 && name[0] == '"' && name[len(name)-1] == '"' {
		return strings.ReplaceAll(name[1:len(name)-1], `""`, `"`)
	}
	return name
}

// SameName compares identifiers the way the database does: unquoted names
// fold to lower case, quoted names compare exactly.
func SameName(a, b string) bool {
	return foldName(a) == foldName(b)
}

func foldName(s string) string {
	if strings.HasPrefix(s, `"`) {
		return Unquote(s)
	}
	return strings.ToLower(s)
}

// lastPart returns the last segment of a dotted name, honoring quotes.
func lastPart(name string) string {
	inQuote := false
	cut := -1
	for i := 0; i < len(name); i++ {
		switch name[i] {
		case '"':
			inQuote = !inQuote
		case '.':
			if !inQuote {
				cut = i
			}
		}
	}
	return name[cut+1:]
}

// ---------- Precedence ----------

// Operator precedence levels, lowest first.
const (
	PrecLowest = iota
	PrecOr
	PrecAnd
	PrecNot
	PrecComparison
	PrecOther
	PrecAddition
	PrecMultiply
	PrecExponent
	PrecUnary
	PrecPostfix
	PrecPrimary
)

// BinaryPrecedence returns the precedence of a binary operator.
func BinaryPrecedence(op string) int {
	switch op {
	case "or":
		return PrecOr
	case "and":
		return PrecAnd
	case "=", "<>", "!=", "<", ">", "<=", ">=",
		"is", "is not", "is distinct from", "is not distinct from":
		return PrecComparison
	case "+", "-":
		return PrecAddition
	case "*", "/", "%":
		return PrecMultiply
	case "^":
		return PrecExponent
	case "::", "at time zone", "collate":
		return PrecPostfix
	}
	return PrecOther
}

// Precedence returns the binding strength of an expression's top operator.
func Precedence(e Expr) int {
	switch e := e.(type) {
	case *BinaryExpr:
		return BinaryPrecedence(e.Op)
	case *UnaryExpr:
		if e.Op == "not" {
			return PrecNot
		}
		return PrecUnary
	case *BetweenExpr, *LikeExpr, *InExpr:
		return PrecComparison
	case *CastExpr:
		if e.Colons {
			return PrecPostfix
		}
	case *SubscriptExpr:
		return PrecPostfix
	}
	return PrecPrimary
}
