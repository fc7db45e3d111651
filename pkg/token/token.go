// Package token defines the lexical tokens produced by the SQL tokenizer.
//
// A token carries its kind, the normalized command text used by the parser
// for keyword and operator dispatch, and the raw source text used when the
// token is printed back.
package token

import (
	"fmt"
	"strings"
)

// Kind classifies a token.
type Kind int

const (
	EOF Kind = iota
	Illegal

	Ident    // table_a, "Quoted Name"
	Keyword  // select, order by, is not distinct from
	Number   // 123, 45.67, 1e10
	String   // 'text', E'text', $$text$$
	Param    // :name, @name, $1, ?
	Operator // =, <>, ::, ||, +

	Comma     // ,
	Dot       // .
	LParen    // (
	RParen    // )
	LBracket  // [
	RBracket  // ]
	Semicolon // ;
)

var kindNames = [...]string{
	EOF:       "EOF",
	Illegal:   "ILLEGAL",
	Ident:     "IDENT",
	Keyword:   "KEYWORD",
	Number:    "NUMBER",
	String:    "STRING",
	Param:     "PARAM",
	Operator:  "OPERATOR",
	Comma:     ",",
	Dot:       ".",
	LParen:    "(",
	RParen:    ")",
	LBracket:  "[",
	RBracket:  "]",
	Semicolon: ";",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Position represents a location in the source text.
type Position struct {
	Line   int // 1-based line number
	Column int // 1-based column number
	Offset int // 0-based byte offset
}

// IsValid returns true if the position points into real source text.
func (p Position) IsValid() bool {
	return p.Line > 0
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is a single lexical unit.
type Token struct {
	Kind Kind
	// Command is the lowercased, single-spaced form of keywords, merged
	// multi-word commands and operators. Empty for identifiers and literals.
	Command string
	// Text is the source spelling. Quoted identifiers keep their quotes.
	Text string
	Pos  Position
}

// Is reports whether the token is a keyword or operator with the given command.
func (t Token) Is(command string) bool {
	return t.Command != "" && t.Command == command
}

// Word returns the lowercased text of an unquoted word token (keyword or
// identifier). It returns "" for anything else.
func (t Token) Word() string {
	switch t.Kind {
	case Keyword:
		return t.Command
	case Ident:
		if strings.HasPrefix(t.Text, `"`) {
			return ""
		}
		return strings.ToLower(t.Text)
	}
	return ""
}

// IsWord reports whether the token is an unquoted word spelled w.
func (t Token) IsWord(w string) bool {
	return t.Word() == w
}

func (t Token) String() string {
	switch t.Kind {
	case EOF:
		return "end of input"
	case Keyword, Operator:
		return fmt.Sprintf("%q", t.Command)
	case Ident, Number, String, Param:
		return fmt.Sprintf("%s %q", t.Kind, t.Text)
	}
	return fmt.Sprintf("%q", t.Text)
}

// New builds a token for rendering. Keywords and operators get their command
// set from text; other kinds keep text verbatim.
func New(kind Kind, text string) Token {
	t := Token{Kind: kind, Text: text}
	if kind == Keyword || kind == Operator {
		t.Command = strings.ToLower(text)
	}
	return t
}
