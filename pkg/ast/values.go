package ast

import (
	"fmt"
	"strconv"
	"time"
)

// TimestampLayout is the text form of time.Time values turned into literals.
const TimestampLayout = "2006-01-02 15:04:05"

// Value converts a Go value into a literal expression. Expressions are
// returned unchanged.
func Value(v any) Expr {
	switch v := v.(type) {
	case nil:
		return Null()
	case Expr:
		return v
	case bool:
		return &Literal{Kind: BoolLit, Value: strconv.FormatBool(v)}
	case int:
		return Number(int64(v))
	case int8:
		return Number(int64(v))
	case int16:
		return Number(int64(v))
	case int32:
		return Number(int64(v))
	case int64:
		return Number(v)
	case uint:
		return &Literal{Kind: NumberLit, Value: strconv.FormatUint(uint64(v), 10)}
	case uint8:
		return Number(int64(v))
	case uint16:
		return Number(int64(v))
	case uint32:
		return Number(int64(v))
	case uint64:
		return &Literal{Kind: NumberLit, Value: strconv.FormatUint(v, 10)}
	case float32:
		return &Literal{Kind: NumberLit, Value: strconv.FormatFloat(float64(v), 'f', -1, 32)}
	case float64:
		return &Literal{Kind: NumberLit, Value: strconv.FormatFloat(v, 'f', -1, 64)}
	case string:
		return String(v)
	case []byte:
		return String(string(v))
	case time.Time:
		return String(v.Format(TimestampLayout))
	case *time.Time:
		if v == nil {
			return Null()
		}
		return String(v.Format(TimestampLayout))
	case fmt.Stringer:
		return String(v.String())
	}
	return String(fmt.Sprint(v))
}

// Values builds a VALUES query from rows of Go values.
func Values(rows ...[]any) *ValuesQuery {
	q := &ValuesQuery{}
	for _, row := range rows {
		exprs := make([]Expr, len(row))
		for i, v := range row {
			exprs[i] = Value(v)
		}
		q.Rows = append(q.Rows, exprs)
	}
	return q
}
