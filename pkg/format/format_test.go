package format_test

import (
	"os"
	"testing"

	"github.com/leapstack-labs/leapquery/pkg/ast"
	"github.com/leapstack-labs/leapquery/pkg/format"
	"github.com/leapstack-labs/leapquery/pkg/parser"
	"github.com/leapstack-labs/leapquery/pkg/rewrite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func runFormatTests(t *testing.T, tests []struct {
	name     string
	input    string
	expected string
}) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := parser.Parse(tt.input)
			require.NoError(t, err)

			assert.Equal(t, tt.expected, format.Format(q))
		})
	}
}

// ---------- Query Layout Tests ----------

func TestFormat_BasicSelect(t *testing.T) {
	runFormatTests(t, []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:  "simple select",
			input: "select a, b from t",
			expected: `SELECT
  a,
  b
FROM t
`,
		},
		{
			name:  "select with where",
			input: "select a from t where x = 1",
			expected: `SELECT
  a
FROM t
WHERE
  x = 1
`,
		},
		{
			name:  "select with alias",
			input: "select a as col1, b as col2 from t",
			expected: `SELECT
  a AS col1,
  b AS col2
FROM t
`,
		},
		{
			name:  "distinct on",
			input: "select distinct on (a, b) a from t",
			expected: `SELECT DISTINCT ON (a, b)
  a
FROM t
`,
		},
		{
			name:  "all clauses",
			input: "select a, count(*) from t group by a having count(*) > 1 order by a desc limit 10",
			expected: `SELECT
  a,
  count(*)
FROM t
GROUP BY
  a
HAVING
  count(*) > 1
ORDER BY
  a DESC
LIMIT 10
`,
		},
		{
			name:  "values",
			input: "values (1, 'a'), (2, 'b')",
			expected: `VALUES
  (1, 'a'),
  (2, 'b')
`,
		},
	})
}

func TestFormat_Joins(t *testing.T) {
	runFormatTests(t, []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:  "inner join",
			input: "select * from a join b on a.id = b.id",
			expected: `SELECT
  *
FROM a
JOIN b
  ON a.id = b.id
`,
		},
		{
			name:  "multiple joins",
			input: "select * from a join b on a.id = b.id left join c using (id)",
			expected: `SELECT
  *
FROM a
JOIN b
  ON a.id = b.id
LEFT JOIN c
  USING (id)
`,
		},
		{
			name:  "comma join",
			input: "select * from a, b",
			expected: `SELECT
  *
FROM a,
  b
`,
		},
		{
			name:  "subquery source",
			input: "select x.a from (select a from t) as x",
			expected: `SELECT
  x.a
FROM (
  SELECT
    a
  FROM t
) AS x
`,
		},
	})
}

func TestFormat_CTEAndSets(t *testing.T) {
	runFormatTests(t, []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:  "cte",
			input: "with cte as (select a from t) select * from cte",
			expected: `WITH
  cte AS (
    SELECT
      a
    FROM t
  )
SELECT
  *
FROM cte
`,
		},
		{
			name:  "nested cte is hoisted",
			input: "select * from (with c as (select 1 as x) select x from c) as s",
			expected: `WITH
  c AS (
    SELECT
      1 AS x
  )
SELECT
  *
FROM (
  SELECT
    x
  FROM c
) AS s
`,
		},
		{
			name:  "union all",
			input: "select a from t union all select a from u",
			expected: `SELECT
  a
FROM t
UNION ALL
SELECT
  a
FROM u
`,
		},
	})
}

func TestFormat_Expressions(t *testing.T) {
	runFormatTests(t, []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:  "case expression",
			input: "select case when x = 1 then 'a' else 'b' end from t",
			expected: `SELECT
  CASE
    WHEN x = 1 THEN 'a'
    ELSE 'b'
  END
FROM t
`,
		},
		{
			name:  "in expression",
			input: "select * from t where x in (1, 2, 3)",
			expected: `SELECT
  *
FROM t
WHERE
  x IN (1, 2, 3)
`,
		},
		{
			name:  "and chain breaks",
			input: "select a from t where x = 1 and y = 2",
			expected: `SELECT
  a
FROM t
WHERE
  x = 1
  AND y = 2
`,
		},
		{
			name:  "or under and keeps parens",
			input: "select a from t where (a = 1 or b = 2) and c = 3",
			expected: `SELECT
  a
FROM t
WHERE
  (a = 1 OR b = 2)
  AND c = 3
`,
		},
	})
}

// ---------- Option Tests ----------

func TestFormat_LowerKeywords(t *testing.T) {
	q, err := parser.Parse("SELECT a FROM t")
	require.NoError(t, err)

	assert.Equal(t, "select\n    a\nfrom t\n",
		format.Format(q, format.WithKeywordCase(format.Lower), format.WithIndent(4)))
}

func TestInline(t *testing.T) {
	q, err := parser.Parse("with c as (select 1 as id) select id from c where id in (1, 2)")
	require.NoError(t, err)

	assert.Equal(t, "WITH c AS (SELECT 1 AS id) SELECT id FROM c WHERE id IN (1, 2)", format.Inline(q))
	assert.Equal(t, ast.ToSQL(q), format.Inline(q, format.WithKeywordCase(format.Lower)))
}

func TestParseKeywordCase(t *testing.T) {
	c, err := format.ParseKeywordCase("LOWER")
	require.NoError(t, err)
	assert.Equal(t, format.Lower, c)
	assert.Equal(t, "lower", c.String())

	_, err = format.ParseKeywordCase("title")
	assert.Error(t, err)
}

// ---------- Statement Tests ----------

func TestFormat_Statements(t *testing.T) {
	q, err := parser.Parse("with c as (select 1 as x) select x from c")
	require.NoError(t, err)

	assert.Equal(t, `CREATE TEMPORARY TABLE t AS
WITH
  c AS (
    SELECT
      1 AS x
  )
SELECT
  x
FROM c
`, format.Format(rewrite.ToCreateTable(q, "t", true)))

	del := &ast.DeleteStmt{Table: "t", Alias: "d", Where: ast.Binary(ast.Col("d.id"), "=", ast.Number(1))}
	assert.Equal(t, "DELETE FROM t AS d\nWHERE\n  d.id = 1\n", format.Format(del))

	src, err := parser.Parse("select id, name from users")
	require.NoError(t, err)
	upd, err := rewrite.ToUpdate(src, "users", []string{"id"})
	require.NoError(t, err)
	assert.Equal(t, `UPDATE users AS d
SET
  name = q.name
FROM (
  SELECT
    id,
    name
  FROM users
) AS q
WHERE
  d.id = q.id
`, format.Format(upd))
}

// ---------- Round Trip Tests ----------

// TestFormatPreservesMeaning parses the pretty output of every round-trip
// corpus query and checks that it prints the same as the original.
func TestFormatPreservesMeaning(t *testing.T) {
	data, err := os.ReadFile("../parser/testdata/roundtrip.yaml")
	require.NoError(t, err)

	var cases []struct {
		Name string `yaml:"name"`
		SQL  string `yaml:"sql"`
	}
	require.NoError(t, yaml.Unmarshal(data, &cases))
	require.NotEmpty(t, cases)

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			q, err := parser.Parse(tc.SQL)
			require.NoError(t, err)

			for _, kc := range []format.KeywordCase{format.Upper, format.Lower} {
				pretty := format.Format(q, format.WithKeywordCase(kc))
				back, err := parser.Parse(pretty)
				require.NoError(t, err, pretty)
				assert.Equal(t, ast.ToSQL(q), ast.ToSQL(back), pretty)
			}
		})
	}
}
