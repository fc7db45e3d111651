package ast

import "strings"

// children returns the direct child nodes of n in source order. It is the
// single place that knows the shape of every node; every traversal in this
// package goes through it.
func children(n Node) []Node {
	var out []Node
	add := func(nodes ...Node) {
		for _, c := range nodes {
			if c != nil {
				out = append(out, c)
			}
		}
	}
	addExprs := func(list []Expr) {
		for _, x := range list {
			add(x)
		}
	}
	addOrder := func(list []*OrderItem) {
		for _, o := range list {
			add(o)
		}
	}

	switch n := n.(type) {
	case *SelectQuery:
		if n.With != nil {
			add(n.With)
		}
		if n.Select != nil {
			add(n.Select)
		}
		if n.From != nil {
			add(n.From)
		}
		add(n.Where)
		addExprs(n.GroupBy)
		add(n.Having)
		for _, w := range n.Windows {
			add(w)
		}
		addOrder(n.OrderBy)
		if n.Paging != nil {
			add(n.Paging)
		}
	case *SetQuery:
		if n.With != nil {
			add(n.With)
		}
		add(n.Left, n.Right)
		addOrder(n.OrderBy)
		if n.Paging != nil {
			add(n.Paging)
		}
	case *ValuesQuery:
		if n.With != nil {
			add(n.With)
		}
		for _, row := range n.Rows {
			addExprs(row)
		}
		addOrder(n.OrderBy)
		if n.Paging != nil {
			add(n.Paging)
		}
	case *WithClause:
		for _, c := range n.CTEs {
			add(c)
		}
	case *CommonTable:
		add(n.Query)
	case *SelectClause:
		addExprs(n.DistinctOn)
		for _, item := range n.Items {
			add(item)
		}
	case *SelectItem:
		add(n.Expr)
	case *FromClause:
		if n.Source != nil {
			add(n.Source)
		}
		for _, j := range n.Joins {
			add(j)
		}
	case *Join:
		if n.Source != nil {
			add(n.Source)
		}
		add(n.On)
	case *OrderItem:
		add(n.Expr)
	case *NamedWindow:
		if n.Spec != nil {
			add(n.Spec)
		}
	case *Paging:
		add(n.Limit, n.Offset)
		if n.Fetch != nil {
			add(n.Fetch.Count)
		}
	case *SourceExpr:
		add(n.Source)
		if n.Sample != nil {
			add(n.Sample)
		}
	case *TableSample:
		addExprs(n.Args)
		add(n.Repeatable)
	case *SubquerySource:
		add(n.Query)
	case *FunctionSource:
		if n.Func != nil {
			add(n.Func)
		}
	case *ValuesSource:
		if n.Query != nil {
			add(n.Query)
		}
	case *BinaryExpr:
		add(n.Left, n.Right)
	case *UnaryExpr:
		add(n.Expr)
	case *BetweenExpr:
		add(n.Expr, n.Low, n.High)
	case *LikeExpr:
		add(n.Expr, n.Pattern, n.Escape)
	case *InExpr:
		add(n.Expr)
		addExprs(n.List)
		add(n.Query)
	case *ExistsExpr:
		add(n.Query)
	case *CaseExpr:
		add(n.Operand)
		for _, w := range n.Whens {
			add(w)
		}
		add(n.Else)
	case *WhenClause:
		add(n.Cond, n.Result)
	case *FuncCall:
		addExprs(n.Args)
		addOrder(n.OrderBy)
		addOrder(n.WithinGroup)
		add(n.Filter)
		if n.Over != nil {
			add(n.Over)
		}
	case *SpecialFunc:
		for _, p := range n.Parts {
			add(p)
		}
	case *SpecialPart:
		add(n.Expr)
	case *CastExpr:
		add(n.Expr)
		if n.Type != nil {
			add(n.Type)
		}
	case *TypeName:
		addExprs(n.Args)
	case *ArrayExpr:
		addExprs(n.Elems)
		add(n.Query)
	case *GroupingExpr:
		addExprs(n.Items)
	case *ModifierExpr:
		add(n.Expr)
	case *ParenExpr:
		add(n.Expr)
	case *RowExpr:
		addExprs(n.Items)
	case *SubqueryExpr:
		add(n.Query)
	case *SubscriptExpr:
		add(n.Expr, n.Index, n.Upper)
	case *WindowSpec:
		addExprs(n.PartitionBy)
		addOrder(n.OrderBy)
		if n.Frame != nil {
			add(n.Frame)
		}
	case *Frame:
		if n.Start != nil {
			add(n.Start)
		}
		if n.End != nil {
			add(n.End)
		}
	case *FrameBound:
		add(n.Offset)
	case *CreateTableStmt:
		add(n.Query)
	case *InsertStmt:
		add(n.Query)
	case *UpdateStmt:
		for _, a := range n.Set {
			add(a)
		}
		if n.From != nil {
			add(n.From)
		}
		add(n.Where)
	case *Assignment:
		add(n.Value)
	case *DeleteStmt:
		add(n.Where)
	}
	return out
}

// Inspect traverses the tree rooted at n depth first, calling f for every
// node. When f returns false the children of that node are skipped.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}
	for _, c := range children(n) {
		Inspect(c, f)
	}
}

// NestedQueries returns every query nested anywhere inside n, in pre-order,
// including CTE bodies. n itself is not included.
func NestedQueries(n Node) []Query {
	var out []Query
	for _, c := range children(n) {
		Inspect(c, func(x Node) bool {
			if q, ok := x.(Query); ok {
				out = append(out, q)
			}
			return true
		})
	}
	return out
}

// ChildQueries returns the queries directly nested in n: subqueries in its
// clauses and set-operation operands, but not the bodies of its own WITH
// clause and not queries nested inside those children.
func ChildQueries(n Node) []Query {
	var out []Query
	for _, c := range children(n) {
		if _, ok := c.(*WithClause); ok {
			continue
		}
		Inspect(c, func(x Node) bool {
			if q, ok := x.(Query); ok {
				out = append(out, q)
				return false
			}
			return true
		})
	}
	return out
}

// ColumnRefs returns the column references in n's own scope. References
// inside nested queries belong to those queries and are not returned.
func ColumnRefs(n Node) []*ColumnRef {
	var out []*ColumnRef
	Inspect(n, func(x Node) bool {
		switch x := x.(type) {
		case *ColumnRef:
			out = append(out, x)
		case *WithClause:
			return false
		case Query:
			return x == n
		}
		return true
	})
	return out
}

// TableNames returns the names of all table sources reachable from n,
// including those inside nested queries and CTE bodies, without duplicates.
func TableNames(n Node) []string {
	var out []string
	seen := map[string]bool{}
	Inspect(n, func(x Node) bool {
		if t, ok := x.(*TableSource); ok && !seen[t.Name] {
			seen[t.Name] = true
			out = append(out, t.Name)
		}
		return true
	})
	return out
}

var aggregates = map[string]bool{
	"count": true, "sum": true, "avg": true, "min": true, "max": true,
	"array_agg": true, "string_agg": true, "bool_and": true, "bool_or": true,
	"every": true, "bit_and": true, "bit_or": true, "json_agg": true,
	"jsonb_agg": true, "json_object_agg": true, "jsonb_object_agg": true,
	"stddev": true, "stddev_pop": true, "stddev_samp": true, "variance": true,
	"var_pop": true, "var_samp": true, "corr": true, "covar_pop": true,
	"covar_samp": true, "percentile_cont": true, "percentile_disc": true,
	"mode": true, "xmlagg": true,
}

// IsAggregate reports whether a call aggregates rows without being a
// window function.
func IsAggregate(f *FuncCall) bool {
	if f.Over != nil || f.OverName != "" {
		return false
	}
	return aggregates[strings.ToLower(lastPart(f.Name))] || len(f.WithinGroup) > 0 || f.Filter != nil
}

// IsWindowFunc reports whether a call has an OVER clause.
func IsWindowFunc(f *FuncCall) bool {
	return f.Over != nil || f.OverName != ""
}

// ContainsAggregate reports whether e aggregates rows in its own scope.
func ContainsAggregate(e Expr) bool {
	return containsCall(e, IsAggregate)
}

// ContainsWindowFunc reports whether e uses a window function in its own
// scope.
func ContainsWindowFunc(e Expr) bool {
	return containsCall(e, IsWindowFunc)
}

func containsCall(e Expr, match func(*FuncCall) bool) bool {
	found := false
	Inspect(e, func(x Node) bool {
		if found {
			return false
		}
		switch x := x.(type) {
		case *FuncCall:
			if match(x) {
				found = true
				return false
			}
		case Query:
			return false
		}
		return true
	})
	return found
}

// forEachQueryByDepth visits the queries reachable from n breadth first:
// n itself (when it is a query), then everything one level down, and so on.
// CTE bodies count as one level below the query that declares them. A CTE
// shadowed by a same-named declaration visited earlier is skipped together
// with its body.
func forEachQueryByDepth(n Node, fn func(Query) bool) {
	seen := map[string]bool{}
	var queue []Query
	if q, ok := n.(Query); ok {
		queue = append(queue, q)
	} else {
		queue = append(queue, ChildQueries(n)...)
	}
	for len(queue) > 0 {
		q := queue[0]
		queue = queue[1:]
		if !fn(q) {
			continue
		}
		if w := q.Base().With; w != nil {
			for _, c := range w.CTEs {
				key := foldName(c.Name)
				if seen[key] {
					continue
				}
				seen[key] = true
				queue = append(queue, c.Query)
			}
		}
		queue = append(queue, ChildQueries(q)...)
	}
}
