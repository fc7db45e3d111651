package parser

import (
	"github.com/leapstack-labs/leapquery/pkg/ast"
	"github.com/leapstack-labs/leapquery/pkg/token"
)

// FROM clause parsing: datasources, aliases and joins.
//
// Grammar:
//
//	from_clause   → source_expr (join)*
//	join          → "," source_expr
//	              | join_type source_expr [ON expr | USING "(" name_list ")"]
//	join_type     → [NATURAL] [INNER | CROSS | LEFT [OUTER] | RIGHT [OUTER] | FULL [OUTER]] JOIN
//	source_expr   → [LATERAL] datasource [[AS] alias ["(" name_list ")"]] [tablesample]
//	datasource    → qualified_name
//	              | qualified_name "(" args ")" [WITH ORDINALITY]
//	              | "(" query ")"
//	              | "(" values ")"
//	tablesample   → TABLESAMPLE name "(" expr_list ")" [REPEATABLE "(" expr ")"]

// joinTypes is the set of merged join commands.
var joinTypes = map[string]bool{
	"join":                     true,
	"inner join":               true,
	"cross join":               true,
	"left join":                true,
	"left outer join":          true,
	"right join":               true,
	"right outer join":         true,
	"full join":                true,
	"full outer join":          true,
	"natural join":             true,
	"natural inner join":       true,
	"natural left join":        true,
	"natural left outer join":  true,
	"natural right join":       true,
	"natural right outer join": true,
	"natural full join":        true,
	"natural full outer join":  true,
}

// parseFromClause parses the FROM clause body.
func (p *Parser) parseFromClause() (*ast.FromClause, error) {
	src, err := p.parseSourceExpr()
	if err != nil {
		return nil, err
	}
	from := &ast.FromClause{Source: src}

	for {
		tok := p.cur.Peek()
		switch {
		case tok.Kind == token.Comma:
			p.cur.Read()
			src, err := p.parseSourceExpr()
			if err != nil {
				return nil, err
			}
			from.Joins = append(from.Joins, &ast.Join{Type: ",", Source: src})

		case tok.Kind == token.Keyword && joinTypes[tok.Command]:
			j, err := p.parseJoin()
			if err != nil {
				return nil, err
			}
			from.Joins = append(from.Joins, j)

		default:
			return from, nil
		}
	}
}

// parseJoin parses a keyword join and its condition.
func (p *Parser) parseJoin() (*ast.Join, error) {
	tok := p.cur.Read()
	src, err := p.parseSourceExpr()
	if err != nil {
		return nil, err
	}
	j := &ast.Join{Type: tok.Command, Source: src}

	switch {
	case p.cur.Accept("on"):
		cond, err := p.ParseExpr()
		if err != nil {
			return nil, err
		}
		j.On = cond
	case p.cur.Accept("using"):
		cols, err := p.parseParenNameList()
		if err != nil {
			return nil, err
		}
		j.Using = cols
	}
	return j, nil
}

// parseSourceExpr parses a datasource with its alias and sampling clause.
func (p *Parser) parseSourceExpr() (*ast.SourceExpr, error) {
	se := &ast.SourceExpr{}
	if p.cur.Accept("lateral") {
		se.Lateral = true
	}

	ds, err := p.parseDatasource()
	if err != nil {
		return nil, err
	}
	se.Source = ds

	if p.cur.Accept("as") {
		alias, err := p.parseName(true)
		if err != nil {
			return nil, err
		}
		se.Alias = alias
	} else if p.cur.Peek().Kind == token.Ident {
		se.Alias = p.cur.Read().Text
	}

	if se.Alias != "" && p.cur.Peek().Kind == token.LParen {
		cols, err := p.parseParenNameList()
		if err != nil {
			return nil, err
		}
		se.Columns = cols
	}

	if p.cur.Accept("tablesample") {
		sample, err := p.parseTableSample()
		if err != nil {
			return nil, err
		}
		se.Sample = sample
	}
	return se, nil
}

// parseDatasource parses a table, function, subquery or VALUES source.
func (p *Parser) parseDatasource() (ast.Datasource, error) {
	if p.cur.Peek().Kind == token.LParen {
		p.cur.Read()
		if p.cur.Peek().Is("values") {
			// (values ...) as v(a, b); a trailing ORDER BY makes it a
			// general query.
			q, err := p.ParseQuery()
			if err != nil {
				return nil, err
			}
			if err := p.expectRParen(); err != nil {
				return nil, err
			}
			if v, ok := q.(*ast.ValuesQuery); ok && v.OrderBy == nil && v.Paging == nil {
				return &ast.ValuesSource{Query: v}, nil
			}
			return &ast.SubquerySource{Query: q}, nil
		}
		if !startsQuery(p.cur.Peek()) && p.cur.Peek().Kind != token.LParen {
			return nil, newUnexpected(p.cur.Peek(), `"select"`, `"values"`, `"with"`)
		}
		q, err := p.ParseQuery()
		if err != nil {
			return nil, err
		}
		if err := p.expectRParen(); err != nil {
			return nil, err
		}
		return &ast.SubquerySource{Query: q}, nil
	}

	name, err := p.parseQualifiedName()
	if err != nil {
		return nil, err
	}
	if p.cur.Peek().Kind != token.LParen {
		return &ast.TableSource{Name: name}, nil
	}

	fn, err := p.parseFuncCall(name)
	if err != nil {
		return nil, err
	}
	fs := &ast.FunctionSource{Func: fn}
	if p.cur.Accept("with ordinality") {
		fs.WithOrdinality = true
	}
	return fs, nil
}

// parseTableSample parses the part after TABLESAMPLE.
func (p *Parser) parseTableSample() (*ast.TableSample, error) {
	method, err := p.parseName(false)
	if err != nil {
		return nil, err
	}
	ts := &ast.TableSample{Method: method}

	if err := p.expectLParen(); err != nil {
		return nil, err
	}
	args, err := p.parseExprList()
	if err != nil {
		return nil, err
	}
	ts.Args = args
	if err := p.expectRParen(); err != nil {
		return nil, err
	}

	if p.cur.AcceptWord("repeatable") {
		if err := p.expectLParen(); err != nil {
			return nil, err
		}
		seed, err := p.ParseExpr()
		if err != nil {
			return nil, err
		}
		ts.Repeatable = seed
		if err := p.expectRParen(); err != nil {
			return nil, err
		}
	}
	return ts, nil
}
