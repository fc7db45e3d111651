package parser

import (
	"fmt"

	"github.com/leapstack-labs/leapquery/pkg/ast"
	"github.com/leapstack-labs/leapquery/pkg/token"
)

// Query parsing: WITH clause, set operations, SELECT core, VALUES, and the
// trailing ORDER BY / paging / locking clauses.
//
// Grammar:
//
//	query         → [WITH [RECURSIVE] cte_list] set_expr [ORDER BY order_list] [paging] [lock]
//	cte_list      → cte ("," cte)*
//	cte           → identifier ["(" name_list ")"] AS [[NOT] MATERIALIZED] "(" query ")"
//	set_expr      → set_operand (set_op set_operand)*
//	set_op        → UNION [ALL] | INTERSECT [ALL] | EXCEPT [ALL]
//	set_operand   → select_core | values | "(" query ")"
//	select_core   → SELECT [ALL | DISTINCT | DISTINCT ON "(" expr_list ")"] select_list
//	                [FROM from_clause] [WHERE expr] [GROUP BY expr_list]
//	                [HAVING expr] [WINDOW window_def ("," window_def)*]
//	select_item   → "*" | name "." "*" | expr [[AS] identifier]
//	values        → VALUES "(" expr_list ")" ("," "(" expr_list ")")*
//	order_item    → expr [ASC|DESC] [NULLS FIRST|NULLS LAST]
//	paging        → LIMIT (expr|ALL) | OFFSET expr [ROW|ROWS]
//	                | FETCH (FIRST|NEXT) [expr] (ROW|ROWS) (ONLY|WITH TIES)
//	lock          → FOR (UPDATE|SHARE|NO KEY UPDATE|KEY SHARE) [OF name_list] [NOWAIT|SKIP LOCKED]
//
// Trailing ORDER BY and paging after a set-operation chain belong to the
// whole chain, not to its last operand.

var setOperators = map[string]bool{
	"union":         true,
	"union all":     true,
	"intersect":     true,
	"intersect all": true,
	"except":        true,
	"except all":    true,
}

// ParseQuery parses a complete query starting at the current token.
func (p *Parser) ParseQuery() (ast.Query, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	var with *ast.WithClause
	if tok := p.cur.Peek(); tok.Is("with") || tok.Is("with recursive") {
		w, err := p.parseWithClause()
		if err != nil {
			return nil, err
		}
		with = w
	}

	q, err := p.parseSetExpr()
	if err != nil {
		return nil, err
	}

	if err := p.parseTrailingClauses(q); err != nil {
		return nil, err
	}

	if with != nil {
		base := q.Base()
		if base.With != nil {
			// (with a as (...) select ...) written inside another WITH;
			// keep both lists, outer first.
			with.CTEs = append(with.CTEs, base.With.CTEs...)
			with.Recursive = with.Recursive || base.With.Recursive
		}
		base.With = with
	}
	return q, nil
}

// parseWithClause parses a WITH clause with CTEs.
func (p *Parser) parseWithClause() (*ast.WithClause, error) {
	w := &ast.WithClause{}
	if p.cur.Accept("with recursive") {
		w.Recursive = true
	} else if _, err := p.cur.Expect("with"); err != nil {
		return nil, err
	}

	for {
		cte, err := p.parseCTE()
		if err != nil {
			return nil, err
		}
		cte.Recursive = w.Recursive
		w.CTEs = append(w.CTEs, cte)
		if !p.cur.AcceptKind(token.Comma) {
			return w, nil
		}
	}
}

// parseCTE parses a single CTE definition.
func (p *Parser) parseCTE() (*ast.CommonTable, error) {
	name, err := p.parseName(false)
	if err != nil {
		return nil, err
	}
	cte := &ast.CommonTable{Name: name}

	if p.cur.Peek().Kind == token.LParen {
		cols, err := p.parseParenNameList()
		if err != nil {
			return nil, err
		}
		cte.Columns = cols
	}

	if _, err := p.cur.Expect("as"); err != nil {
		return nil, err
	}

	switch {
	case p.cur.AcceptWord("materialized"):
		cte.Materialized = ast.MaterializedAlways
	case p.cur.Accept("not materialized"):
		cte.Materialized = ast.MaterializedNever
	}

	if err := p.expectLParen(); err != nil {
		return nil, err
	}
	body, err := p.ParseQuery()
	if err != nil {
		return nil, err
	}
	cte.Query = body
	return cte, p.expectRParen()
}

// parseSetExpr parses a left-associative chain of set operations.
func (p *Parser) parseSetExpr() (ast.Query, error) {
	left, leftParen, err := p.parseSetOperand()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.cur.Peek()
		if tok.Kind != token.Keyword || !setOperators[tok.Command] {
			break
		}
		p.cur.Read()

		right, rightParen, err := p.parseSetOperand()
		if err != nil {
			return nil, err
		}
		left = &ast.SetQuery{
			Left:       left,
			Op:         tok.Command,
			Right:      right,
			LeftParen:  leftParen,
			RightParen: rightParen,
		}
		leftParen = false
	}
	return left, nil
}

// parseSetOperand parses one operand of a set operation and reports
// whether it was parenthesized.
func (p *Parser) parseSetOperand() (ast.Query, bool, error) {
	tok := p.cur.Peek()
	switch {
	case tok.Is("select"):
		q, err := p.parseSelectCore()
		return q, false, err
	case tok.Is("values"):
		q, err := p.parseValues()
		return q, false, err
	case tok.Kind == token.LParen:
		p.cur.Read()
		q, err := p.ParseQuery()
		if err != nil {
			return nil, false, err
		}
		return q, true, p.expectRParen()
	}
	return nil, false, newUnexpected(tok, `"select"`, `"values"`, `"("`)
}

// parseSelectCore parses SELECT through WINDOW.
func (p *Parser) parseSelectCore() (*ast.SelectQuery, error) {
	if _, err := p.cur.Expect("select"); err != nil {
		return nil, err
	}

	sel := &ast.SelectClause{}
	switch {
	case p.cur.Accept("distinct on"):
		if err := p.expectLParen(); err != nil {
			return nil, err
		}
		exprs, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		sel.DistinctOn = exprs
		if err := p.expectRParen(); err != nil {
			return nil, err
		}
	case p.cur.Accept("distinct"):
		sel.Distinct = true
	case p.cur.Accept("all"):
		sel.All = true
	}

	for {
		item, err := p.parseSelectItem()
		if err != nil {
			return nil, err
		}
		sel.Items = append(sel.Items, item)
		if !p.cur.AcceptKind(token.Comma) {
			break
		}
	}

	q := &ast.SelectQuery{Select: sel}

	if p.cur.Accept("from") {
		from, err := p.parseFromClause()
		if err != nil {
			return nil, err
		}
		q.From = from
	}

	if p.cur.Accept("where") {
		e, err := p.ParseExpr()
		if err != nil {
			return nil, err
		}
		q.Where = e
	}

	if p.cur.Accept("group by") {
		exprs, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		q.GroupBy = exprs
	}

	if p.cur.Accept("having") {
		e, err := p.ParseExpr()
		if err != nil {
			return nil, err
		}
		q.Having = e
	}

	if p.cur.Accept("window") {
		for {
			w, err := p.parseNamedWindow()
			if err != nil {
				return nil, err
			}
			q.Windows = append(q.Windows, w)
			if !p.cur.AcceptKind(token.Comma) {
				break
			}
		}
	}

	return q, nil
}

// parseSelectItem parses a single SELECT list item.
func (p *Parser) parseSelectItem() (*ast.SelectItem, error) {
	e, err := p.ParseExpr()
	if err != nil {
		return nil, err
	}
	item := &ast.SelectItem{Expr: e}

	if p.cur.Accept("as") {
		alias, err := p.parseName(true)
		if err != nil {
			return nil, err
		}
		item.Alias = alias
	} else if p.cur.Peek().Kind == token.Ident {
		item.Alias = p.cur.Read().Text
	}
	return item, nil
}

// parseValues parses VALUES (...), (...).
func (p *Parser) parseValues() (*ast.ValuesQuery, error) {
	if _, err := p.cur.Expect("values"); err != nil {
		return nil, err
	}
	q := &ast.ValuesQuery{}
	for {
		if err := p.expectLParen(); err != nil {
			return nil, err
		}
		row, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		if err := p.expectRParen(); err != nil {
			return nil, err
		}
		q.Rows = append(q.Rows, row)
		if !p.cur.AcceptKind(token.Comma) {
			return q, nil
		}
	}
}

// parseTrailingClauses parses ORDER BY, paging and locking after a set
// expression and attaches them to q.
func (p *Parser) parseTrailingClauses(q ast.Query) error {
	start := p.cur.Peek()

	var order []*ast.OrderItem
	if p.cur.Accept("order by") {
		items, err := p.parseOrderList()
		if err != nil {
			return err
		}
		order = items
	}

	paging, lock, err := p.parsePagingAndLock()
	if err != nil {
		return err
	}
	if order == nil && paging == nil && lock == nil {
		return nil
	}

	conflict := func() error {
		return &ParseError{
			Kind:    ErrKindUnexpectedToken,
			Pos:     start.Pos,
			Token:   start,
			Message: fmt.Sprintf("unexpected token %s, query already has ORDER BY or paging", start),
		}
	}

	switch q := q.(type) {
	case *ast.SelectQuery:
		if (order != nil && q.OrderBy != nil) || (paging != nil && q.Paging != nil) || (lock != nil && q.Lock != nil) {
			return conflict()
		}
		if order != nil {
			q.OrderBy = order
		}
		if paging != nil {
			q.Paging = paging
		}
		if lock != nil {
			q.Lock = lock
		}
	case *ast.SetQuery:
		if lock != nil || (order != nil && q.OrderBy != nil) || (paging != nil && q.Paging != nil) {
			return conflict()
		}
		if order != nil {
			q.OrderBy = order
		}
		if paging != nil {
			q.Paging = paging
		}
	case *ast.ValuesQuery:
		if lock != nil || (order != nil && q.OrderBy != nil) || (paging != nil && q.Paging != nil) {
			return conflict()
		}
		if order != nil {
			q.OrderBy = order
		}
		if paging != nil {
			q.Paging = paging
		}
	}
	return nil
}

// parseOrderList parses order_item ("," order_item)*.
func (p *Parser) parseOrderList() ([]*ast.OrderItem, error) {
	var items []*ast.OrderItem
	for {
		e, err := p.ParseExpr()
		if err != nil {
			return nil, err
		}
		item := &ast.OrderItem{Expr: e}
		switch {
		case p.cur.Accept("asc"):
			item.Dir = "asc"
		case p.cur.Accept("desc"):
			item.Dir = "desc"
		}
		switch {
		case p.cur.Accept("nulls first"):
			item.Nulls = "nulls first"
		case p.cur.Accept("nulls last"):
			item.Nulls = "nulls last"
		}
		items = append(items, item)
		if !p.cur.AcceptKind(token.Comma) {
			return items, nil
		}
	}
}

var lockStrengths = map[string]bool{
	"for update":        true,
	"for share":         true,
	"for no key update": true,
	"for key share":     true,
}

// parsePagingAndLock parses LIMIT, OFFSET, FETCH and FOR in any order.
func (p *Parser) parsePagingAndLock() (*ast.Paging, *ast.LockClause, error) {
	var paging *ast.Paging
	var lock *ast.LockClause
	pg := func() *ast.Paging {
		if paging == nil {
			paging = &ast.Paging{}
		}
		return paging
	}

	for {
		tok := p.cur.Peek()
		switch {
		case tok.Is("limit"):
			p.cur.Read()
			if p.cur.Accept("all") {
				pg().LimitAll = true
				continue
			}
			e, err := p.ParseExpr()
			if err != nil {
				return nil, nil, err
			}
			pg().Limit = e

		case tok.Is("offset"):
			p.cur.Read()
			e, err := p.ParseExpr()
			if err != nil {
				return nil, nil, err
			}
			pg().Offset = e
			if w := p.cur.Peek().Word(); w == "row" || w == "rows" {
				p.cur.Read()
				pg().OffsetWord = w
			}

		case tok.Is("fetch"):
			p.cur.Read()
			f, err := p.parseFetch()
			if err != nil {
				return nil, nil, err
			}
			pg().Fetch = f

		case tok.Kind == token.Keyword && lockStrengths[tok.Command]:
			p.cur.Read()
			lock = &ast.LockClause{Strength: tok.Command}
			if p.cur.AcceptWord("of") {
				names, err := p.parseNameList()
				if err != nil {
					return nil, nil, err
				}
				lock.Of = names
			}
			switch {
			case p.cur.AcceptWord("nowait"):
				lock.Wait = "nowait"
			case p.cur.Accept("skip locked"):
				lock.Wait = "skip locked"
			}

		default:
			return paging, lock, nil
		}
	}
}

// parseFetch parses the rest of FETCH {FIRST|NEXT} [n] {ROW|ROWS} {ONLY|WITH TIES}.
func (p *Parser) parseFetch() (*ast.Fetch, error) {
	word, err := p.cur.Expect("first", "next")
	if err != nil {
		return nil, err
	}
	f := &ast.Fetch{Word: word.Word()}

	if w := p.cur.Peek().Word(); w != "row" && w != "rows" {
		e, err := p.ParseExpr()
		if err != nil {
			return nil, err
		}
		f.Count = e
	}

	rows, err := p.cur.Expect("row", "rows")
	if err != nil {
		return nil, err
	}
	f.RowWord = rows.Word()

	switch {
	case p.cur.AcceptWord("only"):
	case p.cur.Accept("with ties"):
		f.WithTies = true
	default:
		return nil, newUnexpected(p.cur.Peek(), `"only"`, `"with ties"`)
	}
	return f, nil
}
