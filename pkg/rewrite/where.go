package rewrite

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapquery/pkg/ast"
)

// Condition builds a predicate for one target. It is called once per
// target, so set operations get an independent predicate per branch.
type Condition func(t *Target) (ast.Expr, error)

// Where adds a predicate on column to every query that produces it. The
// predicate lands as deep as the column passes through unchanged.
func Where(q ast.Query, column string, cond Condition) error {
	return where(q, q, column, cond)
}

func where(root, start ast.Query, column string, cond Condition) error {
	targets, err := resolveWithin(root, start, column, true)
	if err != nil {
		return editError("where", column, err)
	}
	for _, t := range targets {
		pred, err := cond(t)
		if err != nil {
			return editError("where", column, err)
		}
		t.AddWhere(pred)
	}
	return nil
}

// ---------- Comparisons ----------

func compare(op string, v any) Condition {
	return func(t *Target) (ast.Expr, error) {
		return ast.Binary(t.Expr(), op, ast.Clone(ast.Value(v))), nil
	}
}

// Equal builds column = v.
func Equal(v any) Condition { return compare("=", v) }

// NotEqual builds column <> v.
func NotEqual(v any) Condition { return compare("<>", v) }

// GreaterThan builds column > v.
func GreaterThan(v any) Condition { return compare(">", v) }

// GreaterOrEqual builds column >= v.
func GreaterOrEqual(v any) Condition { return compare(">=", v) }

// LessThan builds column < v.
func LessThan(v any) Condition { return compare("<", v) }

// LessOrEqual builds column <= v.
func LessOrEqual(v any) Condition { return compare("<=", v) }

// ---------- Patterns ----------

func like(op string, pattern any) Condition {
	return func(t *Target) (ast.Expr, error) {
		return &ast.LikeExpr{Expr: t.Expr(), Op: op, Pattern: ast.Clone(ast.Value(pattern))}, nil
	}
}

// Like builds column like pattern.
func Like(pattern any) Condition { return like("like", pattern) }

// NotLike builds column not like pattern.
func NotLike(pattern any) Condition { return like("not like", pattern) }

// ILike builds column ilike pattern.
func ILike(pattern any) Condition { return like("ilike", pattern) }

// ---------- Sets ----------

func in(not bool, values []any) Condition {
	return func(t *Target) (ast.Expr, error) {
		if len(values) == 0 {
			return nil, fmt.Errorf("%w: empty in list", ErrInvalidOperand)
		}
		list := make([]ast.Expr, len(values))
		for i, v := range values {
			list[i] = ast.Clone(ast.Value(v))
		}
		return &ast.InExpr{Expr: t.Expr(), Not: not, List: list}, nil
	}
}

// In builds column in (values...).
func In(values ...any) Condition { return in(false, values) }

// NotIn builds column not in (values...).
func NotIn(values ...any) Condition { return in(true, values) }

// InQuery builds column in (sub). The subquery must be a plain SELECT; each
// target gets its own copy.
func InQuery(sub ast.Query) Condition {
	return func(t *Target) (ast.Expr, error) {
		sq, ok := sub.(*ast.SelectQuery)
		if !ok {
			return nil, fmt.Errorf("%w: in subquery must be a select, got %T", ErrInvalidOperand, sub)
		}
		return &ast.InExpr{Expr: t.Expr(), Query: ast.Clone(sq)}, nil
	}
}

// Exists builds exists (sub). correlate, when not nil, receives the target
// column and returns a predicate added to the copied subquery's WHERE.
func Exists(sub ast.Query, correlate func(col ast.Expr) ast.Expr) Condition {
	return func(t *Target) (ast.Expr, error) {
		sq, ok := sub.(*ast.SelectQuery)
		if !ok {
			return nil, fmt.Errorf("%w: exists subquery must be a select, got %T", ErrInvalidOperand, sub)
		}
		sq = ast.Clone(sq)
		if correlate != nil {
			sq.Where = ast.And(sq.Where, correlate(t.Expr()))
		}
		return &ast.ExistsExpr{Query: sq}, nil
	}
}

// ---------- Nulls and ranges ----------

// IsNull builds column is null.
func IsNull() Condition {
	return func(t *Target) (ast.Expr, error) {
		return ast.Binary(t.Expr(), "is", ast.Null()), nil
	}
}

// IsNotNull builds column is not null.
func IsNotNull() Condition {
	return func(t *Target) (ast.Expr, error) {
		return ast.Binary(t.Expr(), "is not", ast.Null()), nil
	}
}

// Between builds column between low and high.
func Between(low, high any) Condition {
	return func(t *Target) (ast.Expr, error) {
		return &ast.BetweenExpr{
			Expr: t.Expr(),
			Low:  ast.Clone(ast.Value(low)),
			High: ast.Clone(ast.Value(high)),
		}, nil
	}
}

// ---------- Parameters ----------

// EqualParam builds column = :name and binds value on the query that
// receives the predicate.
func EqualParam(name string, value any) Condition {
	if !strings.HasPrefix(name, ":") {
		name = ":" + name
	}
	return func(t *Target) (ast.Expr, error) {
		t.Query.AddParameter(name, value)
		return ast.Binary(t.Expr(), "=", &ast.Param{Name: name}), nil
	}
}

// ---------- Composition ----------

// Custom wraps a predicate builder that only needs the column.
func Custom(build func(col ast.Expr) ast.Expr) Condition {
	return func(t *Target) (ast.Expr, error) {
		return build(t.Expr()), nil
	}
}

// AnyOf joins conditions with OR.
func AnyOf(conds ...Condition) Condition {
	return func(t *Target) (ast.Expr, error) {
		var out ast.Expr
		for _, c := range conds {
			e, err := c(t)
			if err != nil {
				return nil, err
			}
			out = ast.Or(out, e)
		}
		if out == nil {
			return nil, fmt.Errorf("%w: no conditions", ErrInvalidOperand)
		}
		return out, nil
	}
}
