package ast

import "github.com/leapstack-labs/leapquery/pkg/token"

// CommonTables returns the consolidated CTE list for the tree rooted at n.
//
// Every WITH clause reachable from n contributes: the root's own, those of
// subqueries in any clause, of set-operation operands and of CTE bodies.
// Names are unique in the result. When two declarations share a name, the
// one closest to the root wins and the other is dropped together with
// anything only its body declared; declarations at the same depth are
// taken left to right. The result is ordered so that a CTE comes after
// every CTE its body references.
func CommonTables(n Node) []*CommonTable {
	var found []*CommonTable
	forEachQueryByDepth(n, func(q Query) bool {
		if w := q.Base().With; w != nil {
			found = append(found, w.CTEs...)
		}
		return true
	})
	return orderByDependency(dedupByName(found))
}

// dedupByName keeps the first CTE of each name.
func dedupByName(ctes []*CommonTable) []*CommonTable {
	seen := make(map[string]bool, len(ctes))
	out := ctes[:0:0]
	for _, c := range ctes {
		key := foldName(c.Name)
		if !seen[key] {
			seen[key] = true
			out = append(out, c)
		}
	}
	return out
}

// orderByDependency sorts CTEs so that dependencies come first. The sort is
// stable: among CTEs whose dependencies are satisfied, declaration order is
// kept. Self references (recursive CTEs) are ignored. A cycle between
// distinct CTEs leaves the remaining entries in declaration order.
func orderByDependency(ctes []*CommonTable) []*CommonTable {
	index := make(map[string]int, len(ctes))
	for i, c := range ctes {
		index[foldName(c.Name)] = i
	}
	deps := make([][]int, len(ctes))
	for i, c := range ctes {
		for _, name := range TableNames(c.Query) {
			if j, ok := index[foldName(name)]; ok && j != i {
				deps[i] = append(deps[i], j)
			}
		}
	}

	out := make([]*CommonTable, 0, len(ctes))
	done := make([]bool, len(ctes))
	for len(out) < len(ctes) {
		progressed := false
		for i, c := range ctes {
			if done[i] {
				continue
			}
			ready := true
			for _, j := range deps[i] {
				if !done[j] {
					ready = false
					break
				}
			}
			if ready {
				done[i] = true
				out = append(out, c)
				progressed = true
				break
			}
		}
		if !progressed {
			for i, c := range ctes {
				if !done[i] {
					done[i] = true
					out = append(out, c)
				}
			}
		}
	}
	return out
}

// WithTokens renders the consolidated WITH clause of n, or nothing when no
// CTE is reachable.
func WithTokens(n Node) []token.Token {
	ctes := CommonTables(n)
	if len(ctes) == 0 {
		return nil
	}
	w := &WithClause{CTEs: ctes}
	for _, c := range ctes {
		if c.Recursive {
			w.Recursive = true
		}
	}
	return Tokens(w)
}

// SQLTokens renders n with its consolidated WITH clause. For CREATE TABLE
// AS the clause goes after AS, for the other statements and for queries it
// leads.
func SQLTokens(n Node) []token.Token {
	if ct, ok := n.(*CreateTableStmt); ok {
		// create [temporary] table name as
		head := Tokens(&CreateTableStmt{Name: ct.Name, Temporary: ct.Temporary})
		return append(head, SQLTokens(ct.Query)...)
	}
	return append(WithTokens(n), Tokens(n)...)
}

// ToSQL renders n as complete SQL with exactly one WITH clause at the top
// holding every CTE reachable from n.
func ToSQL(n Node) string {
	return Print(SQLTokens(n))
}
