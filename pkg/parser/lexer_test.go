package parser_test

import (
	"testing"

	"github.com/leapstack-labs/leapquery/pkg/parser"
	"github.com/leapstack-labs/leapquery/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tokSpec struct {
	kind token.Kind
	text string
}

func kinds(toks []token.Token) []tokSpec {
	out := make([]tokSpec, 0, len(toks))
	for _, t := range toks {
		if t.Kind == token.EOF {
			break
		}
		text := t.Text
		if t.Kind == token.Keyword || t.Kind == token.Operator {
			text = t.Command
		}
		out = append(out, tokSpec{t.Kind, text})
	}
	return out
}

// ---------- Lexer Tests ----------

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []tokSpec
	}{
		{
			name:  "simple select",
			input: "SELECT a, b FROM t",
			want: []tokSpec{
				{token.Keyword, "select"},
				{token.Ident, "a"},
				{token.Comma, ","},
				{token.Ident, "b"},
				{token.Keyword, "from"},
				{token.Ident, "t"},
			},
		},
		{
			name:  "merged commands",
			input: "order  BY x nulls LAST",
			want: []tokSpec{
				{token.Keyword, "order by"},
				{token.Ident, "x"},
				{token.Keyword, "nulls last"},
			},
		},
		{
			name:  "longest command wins",
			input: "a is not distinct from b",
			want: []tokSpec{
				{token.Ident, "a"},
				{token.Keyword, "is not distinct from"},
				{token.Ident, "b"},
			},
		},
		{
			name:  "join variants",
			input: "natural left outer join u",
			want: []tokSpec{
				{token.Keyword, "natural left outer join"},
				{token.Ident, "u"},
			},
		},
		{
			name:  "strings and quoted identifiers",
			input: `'it''s' E'a\'b' $$x$$ "My Col"`,
			want: []tokSpec{
				{token.String, `'it''s'`},
				{token.String, `E'a\'b'`},
				{token.String, `$$x$$`},
				{token.Ident, `"My Col"`},
			},
		},
		{
			name:  "parameters",
			input: ":id @name $1 ?",
			want: []tokSpec{
				{token.Param, ":id"},
				{token.Param, "@name"},
				{token.Param, "$1"},
				{token.Param, "?"},
			},
		},
		{
			name:  "operators longest match",
			input: "a::int ->> b <> c >= d",
			want: []tokSpec{
				{token.Ident, "a"},
				{token.Operator, "::"},
				{token.Ident, "int"},
				{token.Operator, "->>"},
				{token.Ident, "b"},
				{token.Operator, "<>"},
				{token.Ident, "c"},
				{token.Operator, ">="},
				{token.Ident, "d"},
			},
		},
		{
			name:  "numbers",
			input: "1 2.5 .5 1e10 3E-2",
			want: []tokSpec{
				{token.Number, "1"},
				{token.Number, "2.5"},
				{token.Number, ".5"},
				{token.Number, "1e10"},
				{token.Number, "3E-2"},
			},
		},
		{
			name:  "comments are skipped",
			input: "select -- trailing\n1 /* block */ + 2",
			want: []tokSpec{
				{token.Keyword, "select"},
				{token.Number, "1"},
				{token.Operator, "+"},
				{token.Number, "2"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := parser.Tokenize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, kinds(toks))
			assert.Equal(t, token.EOF, toks[len(toks)-1].Kind)
		})
	}
}

func TestTokenizePositions(t *testing.T) {
	toks, err := parser.Tokenize("select a\n  from t")
	require.NoError(t, err)

	assert.Equal(t, token.Position{Line: 1, Column: 1, Offset: 0}, toks[0].Pos)
	assert.Equal(t, token.Position{Line: 1, Column: 8, Offset: 7}, toks[1].Pos)
	assert.Equal(t, token.Position{Line: 2, Column: 3, Offset: 11}, toks[2].Pos)
}

func TestTokenizeMergedKeepsSourceText(t *testing.T) {
	toks, err := parser.Tokenize("GROUP   By x")
	require.NoError(t, err)
	assert.Equal(t, "group by", toks[0].Command)
	assert.Equal(t, "GROUP By", toks[0].Text)
}

func TestTokenizeErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"unterminated string", "select 'abc", parser.ErrUnterminatedString},
		{"unterminated identifier", `select "abc`, parser.ErrUnterminatedIdent},
		{"unterminated comment", "select 1 /* oops", parser.ErrUnterminatedComment},
		{"illegal character", "select 1 ` 2", "illegal character '`'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Tokenize(tt.input)
			require.Error(t, err)

			var perr *parser.ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, parser.ErrKindIllegalToken, perr.Kind)
			assert.Contains(t, perr.Message, tt.message)
		})
	}
}
