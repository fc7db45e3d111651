package token_test

import (
	"strings"
	"testing"

	"github.com/leapstack-labs/leapquery/pkg/token"
	"github.com/stretchr/testify/assert"
)

func words(s string) func(i int) string {
	parts := strings.Fields(s)
	return func(i int) string {
		if i >= len(parts) {
			return ""
		}
		return parts[i]
	}
}

func TestMatchCommand(t *testing.T) {
	tests := []struct {
		input string
		want  string
		n     int
	}{
		{"order by x", "order by", 2},
		{"is not distinct from b", "is not distinct from", 4},
		{"is not null", "is not", 2},
		{"is null", "", 0},
		{"natural left outer join t", "natural left outer join", 4},
		{"left x", "", 0},
		{"timestamp with time zone", "timestamp with time zone", 4},
		{"", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, n := token.MatchCommand(words(tt.input))
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.n, n)
		})
	}
}

func TestIsKeyword(t *testing.T) {
	assert.True(t, token.IsKeyword("select"))
	assert.True(t, token.IsKeyword("returning"))
	assert.False(t, token.IsKeyword("table_a"))
	assert.False(t, token.IsKeyword("left"), "join sides are only keywords inside merged commands")
}

func TestTokenWord(t *testing.T) {
	kw := token.New(token.Keyword, "SELECT")
	assert.Equal(t, "select", kw.Command)
	assert.True(t, kw.Is("select"))
	assert.Equal(t, "select", kw.Word())

	id := token.Token{Kind: token.Ident, Text: "Region"}
	assert.True(t, id.IsWord("region"))
	assert.False(t, id.Is("region"), "identifiers have no command")

	quoted := token.Token{Kind: token.Ident, Text: `"Region"`}
	assert.Empty(t, quoted.Word())
}

func TestTokenString(t *testing.T) {
	assert.Equal(t, "end of input", token.Token{Kind: token.EOF}.String())
	assert.Equal(t, `"order by"`, token.New(token.Keyword, "order by").String())
	assert.Equal(t, `IDENT "a"`, token.Token{Kind: token.Ident, Text: "a"}.String())
	assert.Equal(t, "3:7", token.Position{Line: 3, Column: 7}.String())
	assert.False(t, token.Position{}.IsValid())
}
