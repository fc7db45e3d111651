package parser

import (
	"strings"

	"github.com/leapstack-labs/leapquery/pkg/ast"
	"github.com/leapstack-labs/leapquery/pkg/token"
)

// Primary expressions: literals, parameters, column references, function
// calls, CASE, EXISTS, casts, arrays, rows and parenthesized forms.
//
// Grammar:
//
//	primary       → literal | param | "*" | case_expr | EXISTS "(" query ")"
//	              | GROUPING SETS "(" expr_list ")"
//	              | "(" query ")" | "(" [expr_list] ")"
//	              | ARRAY "[" [expr_list] "]" | ARRAY "(" query ")"
//	              | CAST "(" expr AS type ")" | ROW "(" [expr_list] ")"
//	              | (CUBE | ROLLUP) "(" expr_list ")"
//	              | (INTERVAL | DATE | TIME | TIMESTAMP) string
//	              | special_func | func_call | column_ref
//	column_ref    → name ("." name)* ["." "*"]
//	func_call     → qualified_name "(" [DISTINCT | ALL] [args] [ORDER BY order_list] ")"
//	                [WITHIN GROUP "(" ORDER BY order_list ")"]
//	                [FILTER "(" WHERE expr ")"] [OVER ("(" window_spec ")" | name)]
//	case_expr     → CASE [expr] (WHEN expr THEN expr)+ [ELSE expr] END

// typedConstants are the type words that prefix a string constant.
var typedConstants = map[string]bool{
	"interval":                    true,
	"date":                        true,
	"time":                        true,
	"timestamp":                   true,
	"timestamptz":                 true,
	"timestamp with time zone":    true,
	"timestamp without time zone": true,
	"time with time zone":         true,
	"time without time zone":      true,
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.cur.Peek()

	switch tok.Kind {
	case token.Number:
		p.cur.Read()
		return &ast.Literal{Kind: ast.NumberLit, Value: tok.Text}, nil

	case token.String:
		p.cur.Read()
		return stringLiteral(tok.Text), nil

	case token.Param:
		p.cur.Read()
		return &ast.Param{Name: tok.Text}, nil

	case token.Operator:
		if tok.Command == "*" {
			p.cur.Read()
			return &ast.ColumnRef{Column: "*"}, nil
		}

	case token.LParen:
		return p.parseParenExpr()

	case token.Keyword:
		return p.parseKeywordPrimary(tok)

	case token.Ident:
		return p.parseIdentPrimary(tok)
	}

	return nil, newUnexpected(tok, "expression")
}

// stringLiteral builds a Literal from the raw text of a string token.
// Plain quoted strings are unescaped; escape and dollar-quoted strings keep
// their raw spelling for printing.
func stringLiteral(raw string) *ast.Literal {
	if strings.HasPrefix(raw, "'") {
		inner := raw[1 : len(raw)-1]
		return &ast.Literal{Kind: ast.StringLit, Value: strings.ReplaceAll(inner, "''", "'")}
	}
	lit := &ast.Literal{Kind: ast.StringLit, Raw: raw}
	switch {
	case strings.HasPrefix(raw, "$"):
		tag := raw[:strings.Index(raw[1:], "$")+2]
		lit.Value = strings.TrimSuffix(strings.TrimPrefix(raw, tag), tag)
	case len(raw) >= 3:
		lit.Value = strings.ReplaceAll(raw[2:len(raw)-1], "''", "'")
	}
	return lit
}

func (p *Parser) parseKeywordPrimary(tok token.Token) (ast.Expr, error) {
	switch tok.Command {
	case "null":
		p.cur.Read()
		return &ast.Literal{Kind: ast.NullLit, Value: "null"}, nil
	case "true", "false":
		p.cur.Read()
		return &ast.Literal{Kind: ast.BoolLit, Value: tok.Command}, nil
	case "case":
		return p.parseCase()
	case "exists":
		p.cur.Read()
		if err := p.expectLParen(); err != nil {
			return nil, err
		}
		q, err := p.ParseQuery()
		if err != nil {
			return nil, err
		}
		return &ast.ExistsExpr{Query: q}, p.expectRParen()
	case "grouping sets":
		p.cur.Read()
		items, err := p.parseParenExprList()
		if err != nil {
			return nil, err
		}
		return &ast.GroupingExpr{Kind: "grouping sets", Items: items}, nil
	case "all":
		// x = all (array) is a call of the all() comparison function.
		if p.cur.PeekN(1).Kind == token.LParen {
			p.cur.Read()
			return p.parseFuncCall(tok.Text)
		}
	}

	if typedConstants[tok.Command] && p.cur.PeekN(1).Kind == token.String {
		p.cur.Read()
		lit := stringLiteral(p.cur.Read().Text)
		return &ast.ModifierExpr{Modifier: tok.Text, Expr: lit}, nil
	}
	return nil, newUnexpected(tok, "expression")
}

func (p *Parser) parseIdentPrimary(tok token.Token) (ast.Expr, error) {
	next := p.cur.PeekN(1)
	word := tok.Word()

	switch {
	case word == "array" && next.Kind == token.LBracket:
		p.cur.Read()
		p.cur.Read()
		arr := &ast.ArrayExpr{}
		if p.cur.Peek().Kind != token.RBracket {
			elems, err := p.parseExprList()
			if err != nil {
				return nil, err
			}
			arr.Elems = elems
		}
		if _, err := p.cur.ExpectKind(token.RBracket); err != nil {
			return nil, err
		}
		return arr, nil

	case word == "array" && next.Kind == token.LParen && startsQuery(p.cur.PeekN(2)):
		p.cur.Read()
		p.cur.Read()
		q, err := p.ParseQuery()
		if err != nil {
			return nil, err
		}
		return &ast.ArrayExpr{Query: q}, p.expectRParen()

	case word == "cast" && next.Kind == token.LParen:
		return p.parseCast()

	case (word == "cube" || word == "rollup") && next.Kind == token.LParen:
		p.cur.Read()
		items, err := p.parseParenExprList()
		if err != nil {
			return nil, err
		}
		return &ast.GroupingExpr{Kind: word, Items: items}, nil

	case word == "row" && next.Kind == token.LParen:
		p.cur.Read()
		items, err := p.parseParenExprList()
		if err != nil {
			return nil, err
		}
		return &ast.RowExpr{Items: items, Explicit: true}, nil

	case typedConstants[word] && next.Kind == token.String:
		p.cur.Read()
		lit := stringLiteral(p.cur.Read().Text)
		return &ast.ModifierExpr{Modifier: tok.Text, Expr: lit}, nil

	case specialFuncs[word] && next.Kind == token.LParen:
		return p.parseSpecialFunc()
	}

	return p.parseColumnOrCall()
}

// parseColumnOrCall parses a dotted name and decides between a column
// reference, a qualified wildcard and a function call.
func (p *Parser) parseColumnOrCall() (ast.Expr, error) {
	first := p.cur.Read()
	parts := []string{first.Text}

	for p.cur.Peek().Kind == token.Dot {
		p.cur.Read()
		if p.cur.Peek().Is("*") {
			p.cur.Read()
			return &ast.ColumnRef{Table: strings.Join(parts, "."), Column: "*"}, nil
		}
		part, err := p.parseName(true)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}

	if p.cur.Peek().Kind == token.LParen {
		return p.parseFuncCall(strings.Join(parts, "."))
	}

	last := len(parts) - 1
	return &ast.ColumnRef{
		Table:  strings.Join(parts[:last], "."),
		Column: parts[last],
	}, nil
}

// parseParenExpr parses a parenthesized subquery, expression or row.
func (p *Parser) parseParenExpr() (ast.Expr, error) {
	if startsQuery(p.cur.PeekN(1)) {
		p.cur.Read()
		q, err := p.ParseQuery()
		if err != nil {
			return nil, err
		}
		return &ast.SubqueryExpr{Query: q}, p.expectRParen()
	}

	items, err := p.parseParenExprList()
	if err != nil {
		return nil, err
	}
	if len(items) == 1 {
		return &ast.ParenExpr{Expr: items[0]}, nil
	}
	return &ast.RowExpr{Items: items}, nil
}

// parseParenExprList parses "(" [expr_list] ")".
func (p *Parser) parseParenExprList() ([]ast.Expr, error) {
	if err := p.expectLParen(); err != nil {
		return nil, err
	}
	if p.cur.AcceptKind(token.RParen) {
		return nil, nil
	}
	items, err := p.parseExprList()
	if err != nil {
		return nil, err
	}
	return items, p.expectRParen()
}

// parseCase parses CASE [operand] WHEN ... THEN ... [ELSE ...] END.
func (p *Parser) parseCase() (ast.Expr, error) {
	p.cur.Read()
	c := &ast.CaseExpr{}

	if !p.cur.Peek().Is("when") {
		operand, err := p.ParseExpr()
		if err != nil {
			return nil, err
		}
		c.Operand = operand
	}

	for p.cur.Accept("when") {
		cond, err := p.ParseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.cur.Expect("then"); err != nil {
			return nil, err
		}
		result, err := p.ParseExpr()
		if err != nil {
			return nil, err
		}
		c.Whens = append(c.Whens, &ast.WhenClause{Cond: cond, Result: result})
	}
	if len(c.Whens) == 0 {
		return nil, newUnexpected(p.cur.Peek(), `"when"`)
	}

	if p.cur.Accept("else") {
		e, err := p.ParseExpr()
		if err != nil {
			return nil, err
		}
		c.Else = e
	}
	if _, err := p.cur.Expect("end"); err != nil {
		return nil, err
	}
	return c, nil
}

// parseCast parses CAST(expr AS type).
func (p *Parser) parseCast() (ast.Expr, error) {
	p.cur.Read()
	if err := p.expectLParen(); err != nil {
		return nil, err
	}
	e, err := p.ParseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.cur.Expect("as"); err != nil {
		return nil, err
	}
	typ, err := p.parseTypeName()
	if err != nil {
		return nil, err
	}
	return &ast.CastExpr{Expr: e, Type: typ}, p.expectRParen()
}

// parseFuncCall parses the argument list and trailing clauses of a call
// whose name has been consumed.
func (p *Parser) parseFuncCall(name string) (*ast.FuncCall, error) {
	if err := p.expectLParen(); err != nil {
		return nil, err
	}
	fn := &ast.FuncCall{Name: name}

	switch {
	case p.cur.Accept("distinct"):
		fn.Distinct = true
	case p.cur.Accept("all"):
		fn.All = true
	}

	if p.cur.Peek().Kind != token.RParen {
		args, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		fn.Args = args
	}
	if p.cur.Accept("order by") {
		items, err := p.parseOrderList()
		if err != nil {
			return nil, err
		}
		fn.OrderBy = items
	}
	if err := p.expectRParen(); err != nil {
		return nil, err
	}

	if p.cur.Accept("within group") {
		if err := p.expectLParen(); err != nil {
			return nil, err
		}
		if _, err := p.cur.Expect("order by"); err != nil {
			return nil, err
		}
		items, err := p.parseOrderList()
		if err != nil {
			return nil, err
		}
		fn.WithinGroup = items
		if err := p.expectRParen(); err != nil {
			return nil, err
		}
	}

	if p.cur.Peek().IsWord("filter") && p.cur.PeekN(1).Kind == token.LParen {
		p.cur.Read()
		p.cur.Read()
		if _, err := p.cur.Expect("where"); err != nil {
			return nil, err
		}
		cond, err := p.ParseExpr()
		if err != nil {
			return nil, err
		}
		fn.Filter = cond
		if err := p.expectRParen(); err != nil {
			return nil, err
		}
	}

	if p.cur.Accept("over") {
		if p.cur.Peek().Kind == token.LParen {
			spec, err := p.parseWindowSpec()
			if err != nil {
				return nil, err
			}
			fn.Over = spec
		} else {
			name, err := p.parseName(false)
			if err != nil {
				return nil, err
			}
			fn.OverName = name
		}
	}
	return fn, nil
}

// parseTypeName parses a data type: name [(args)] ([])*.
func (p *Parser) parseTypeName() (*ast.TypeName, error) {
	tok := p.cur.Peek()
	var name string
	switch {
	case tok.Kind == token.Ident:
		n, err := p.parseQualifiedName()
		if err != nil {
			return nil, err
		}
		name = n
	case tok.Kind == token.Keyword && strings.Contains(tok.Command, " "):
		// merged type names: double precision, timestamp with time zone
		p.cur.Read()
		name = tok.Text
	default:
		return nil, newUnexpected(tok, "type name")
	}
	typ := &ast.TypeName{Name: name}

	if p.cur.Peek().Kind == token.LParen {
		args, err := p.parseParenExprList()
		if err != nil {
			return nil, err
		}
		typ.Args = args
	}
	for p.cur.Peek().Kind == token.LBracket && p.cur.PeekN(1).Kind == token.RBracket {
		p.cur.Read()
		p.cur.Read()
		typ.ArrayDims++
	}
	return typ, nil
}
