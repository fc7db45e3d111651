package parser_test

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/leapstack-labs/leapquery/pkg/ast"
	"github.com/leapstack-labs/leapquery/pkg/parser"
	pg_query "github.com/pganalyze/pg_query_go/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type roundTripCase struct {
	Name     string `yaml:"name"`
	SQL      string `yaml:"sql"`
	Want     string `yaml:"want"`
	Postgres *bool  `yaml:"postgres"`
}

func loadRoundTrip(t *testing.T) []roundTripCase {
	t.Helper()
	data, err := os.ReadFile("testdata/roundtrip.yaml")
	require.NoError(t, err)

	var cases []roundTripCase
	require.NoError(t, yaml.Unmarshal(data, &cases))
	require.NotEmpty(t, cases)
	return cases
}

// ---------- Round Trip Tests ----------

func TestRoundTrip(t *testing.T) {
	for _, tc := range loadRoundTrip(t) {
		t.Run(tc.Name, func(t *testing.T) {
			want := tc.Want
			if want == "" {
				want = tc.SQL
			}

			q, err := parser.Parse(tc.SQL)
			require.NoError(t, err)
			got := ast.ToSQL(q)
			assert.Equal(t, want, got)

			// Printing is a fixed point: parse(print(q)) prints the same.
			again, err := parser.Parse(got)
			require.NoError(t, err)
			if diff := cmp.Diff(kinds(ast.SQLTokens(q)), kinds(ast.SQLTokens(again)), cmp.AllowUnexported(tokSpec{})); diff != "" {
				t.Errorf("token stream changed on reparse (-first +second):\n%s", diff)
			}
		})
	}
}

// TestRoundTripPostgres checks printed SQL against the PostgreSQL parser:
// the output must be valid and parse to the same tree shape as the input.
func TestRoundTripPostgres(t *testing.T) {
	for _, tc := range loadRoundTrip(t) {
		if tc.Postgres != nil && !*tc.Postgres {
			continue
		}
		t.Run(tc.Name, func(t *testing.T) {
			q, err := parser.Parse(tc.SQL)
			require.NoError(t, err)
			out := ast.ToSQL(q)

			_, err = pg_query.Parse(out)
			require.NoError(t, err, "postgres rejects %q", out)

			before, err := pg_query.Fingerprint(tc.SQL)
			require.NoError(t, err)
			after, err := pg_query.Fingerprint(out)
			require.NoError(t, err)
			assert.Equal(t, before, after, "fingerprint changed: %q -> %q", tc.SQL, out)
		})
	}
}
