package token

import "strings"

// keywords are reserved words. They are lexed as Keyword tokens and can
// never be used as bare aliases. Everything else that looks like a word is
// an identifier, including context words such as "rows", "first" or
// "materialized", which the parser recognizes by spelling.
var keywords = map[string]struct{}{
	"all":         {},
	"and":         {},
	"as":          {},
	"asc":         {},
	"between":     {},
	"by":          {},
	"case":        {},
	"collate":     {},
	"cross":       {},
	"desc":        {},
	"distinct":    {},
	"else":        {},
	"end":         {},
	"escape":      {},
	"except":      {},
	"exists":      {},
	"false":       {},
	"fetch":       {},
	"for":         {},
	"from":        {},
	"group":       {},
	"having":      {},
	"ilike":       {},
	"in":          {},
	"inner":       {},
	"intersect":   {},
	"is":          {},
	"join":        {},
	"lateral":     {},
	"like":        {},
	"limit":       {},
	"natural":     {},
	"not":         {},
	"null":        {},
	"offset":      {},
	"on":          {},
	"or":          {},
	"order":       {},
	"outer":       {},
	"over":        {},
	"recursive":   {},
	"returning":   {},
	"select":      {},
	"tablesample": {},
	"then":        {},
	"true":        {},
	"union":       {},
	"using":       {},
	"values":      {},
	"when":        {},
	"where":       {},
	"window":      {},
	"with":        {},
}

// IsKeyword reports whether the lowercased word is reserved.
func IsKeyword(word string) bool {
	_, ok := keywords[word]
	return ok
}

// commands lists the multi-word commands merged into a single token.
// Matching is greedy: the longest sequence wins.
var commands = [][]string{
	{"order", "by"},
	{"group", "by"},
	{"partition", "by"},
	{"union", "all"},
	{"intersect", "all"},
	{"except", "all"},
	{"distinct", "on"},
	{"not", "between"},
	{"not", "like"},
	{"not", "ilike"},
	{"not", "in"},
	{"similar", "to"},
	{"not", "similar", "to"},
	{"is", "not"},
	{"is", "distinct", "from"},
	{"is", "not", "distinct", "from"},
	{"at", "time", "zone"},
	{"nulls", "first"},
	{"nulls", "last"},
	{"within", "group"},
	{"not", "materialized"},
	{"with", "recursive"},
	{"with", "ordinality"},
	{"with", "ties"},
	{"grouping", "sets"},
	{"inner", "join"},
	{"cross", "join"},
	{"left", "join"},
	{"left", "outer", "join"},
	{"right", "join"},
	{"right", "outer", "join"},
	{"full", "join"},
	{"full", "outer", "join"},
	{"natural", "join"},
	{"natural", "inner", "join"},
	{"natural", "left", "join"},
	{"natural", "left", "outer", "join"},
	{"natural", "right", "join"},
	{"natural", "right", "outer", "join"},
	{"natural", "full", "join"},
	{"natural", "full", "outer", "join"},
	{"for", "update"},
	{"for", "share"},
	{"for", "no", "key", "update"},
	{"for", "key", "share"},
	{"skip", "locked"},
	{"current", "row"},
	{"unbounded", "preceding"},
	{"unbounded", "following"},
	{"exclude", "current", "row"},
	{"exclude", "group"},
	{"exclude", "ties"},
	{"exclude", "no", "others"},
	{"double", "precision"},
	{"character", "varying"},
	{"timestamp", "with", "time", "zone"},
	{"timestamp", "without", "time", "zone"},
	{"time", "with", "time", "zone"},
	{"time", "without", "time", "zone"},
}

// commandIndex maps a leading word to the candidate sequences that start
// with it, longest first.
var commandIndex = func() map[string][][]string {
	idx := make(map[string][][]string)
	for _, c := range commands {
		idx[c[0]] = append(idx[c[0]], c)
	}
	for _, list := range idx {
		for i := 1; i < len(list); i++ {
			for j := i; j > 0 && len(list[j]) > len(list[j-1]); j-- {
				list[j], list[j-1] = list[j-1], list[j]
			}
		}
	}
	return idx
}()

// MatchCommand finds the longest multi-word command at the start of words.
// word(i) returns the lowercased word at offset i or "" when the token at
// that offset is not a plain word. It returns the joined command and the
// number of words it spans, or ("", 0) when nothing matches.
func MatchCommand(word func(i int) string) (string, int) {
	first := word(0)
	if first == "" {
		return "", 0
	}
	for _, cand := range commandIndex[first] {
		ok := true
		for i := 1; i < len(cand); i++ {
			if word(i) != cand[i] {
				ok = false
				break
			}
		}
		if ok {
			return strings.Join(cand, " "), len(cand)
		}
	}
	return "", 0
}
