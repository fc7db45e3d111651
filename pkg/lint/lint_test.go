package lint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapquery/pkg/lint"
	_ "github.com/leapstack-labs/leapquery/pkg/lint/rules"
	"github.com/leapstack-labs/leapquery/pkg/parser"
)

func analyze(t *testing.T, sql string, cfg *lint.Config) []lint.Diagnostic {
	t.Helper()
	q, err := parser.Parse(sql)
	require.NoError(t, err)
	return lint.NewAnalyzer(cfg).Analyze(q)
}

func byRule(diags []lint.Diagnostic, id string) []lint.Diagnostic {
	var out []lint.Diagnostic
	for _, d := range diags {
		if d.RuleID == id {
			out = append(out, d)
		}
	}
	return out
}

// ---------- Rule Tests ----------

func TestRules(t *testing.T) {
	tests := []struct {
		name    string
		rule    string
		sql     string
		wantMsg []string // one entry per expected diagnostic
	}{
		// AL03
		{"expression without alias", "AL03", "select a + b from t", []string{"column 1 (a + b) has no alias"}},
		{"named expressions", "AL03", "select a + b as total, count(*), 1 from t", nil},

		// AL04
		{"duplicate source", "AL04", "select * from users join users on users.id = users.parent_id", []string{`source name "users" is used more than once`}},
		{"aliased self join", "AL04", "select * from users as u join users as p on u.parent_id = p.id", nil},

		// AM01
		{"distinct with group by", "AM01", "select distinct a from t group by a", []string{"DISTINCT is redundant"}},
		{"plain group by", "AM01", "select a from t group by a", nil},

		// AM04
		{"column count mismatch", "AM04", "select a, b from t union select a from u", []string{"union operands have 2 and 1 columns"}},
		{"wildcard count unknown", "AM04", "select * from t union select a from u", nil},
		{"matching counts", "AM04", "select a, b from t union all select c, d from u", nil},

		// AM08
		{"join without condition", "AM08", "select * from a join b", []string{"JOIN b has no ON or USING condition"}},
		{"cross join", "AM08", "select * from a cross join b", nil},
		{"comma join", "AM08", "select * from a, b", nil},
		{"natural join", "AM08", "select * from a natural join b", nil},
		{"using", "AM08", "select * from a join b using (id)", nil},

		// AM09
		{"ordered subquery", "AM09", "select * from (select a from t order by a) as s", []string{"ORDER BY in subquery s"}},
		{"ordered cte", "AM09", "with c as (select a from t order by a) select a from c", []string{"ORDER BY in CTE c"}},
		{"ordered with limit", "AM09", "select * from (select a from t order by a limit 5) as s", nil},
		{"ordered root", "AM09", "select a from t order by a", nil},

		// CV04
		{"count one", "CV04", "select count(1) as n from t", []string{"use count(*) instead of count(1)"}},
		{"count star", "CV04", "select count(*) as n from t", nil},

		// CV08
		{"right join", "CV08", "select * from a right join b on a.id = b.id", []string{"RIGHT JOIN b can be written as a LEFT JOIN"}},
		{"left join", "CV08", "select * from b left join a on a.id = b.id", nil},

		// RF02
		{"unqualified with two sources", "RF02", "select id, b.name from a join b on a.id = b.a_id", []string{"column id is not qualified in a query with 2 sources"}},
		{"single source", "RF02", "select id from a where x = 1", nil},

		// ST03
		{"unused cte", "ST03", "with a as (select 1 as x), b as (select 2 as y) select x from a", []string{"CTE b is defined but never referenced"}},
		{"cte used by cte", "ST03", "with a as (select 1 as x), b as (select x from a) select x from b", nil},
		{"recursive cte only references itself", "ST03", "with recursive r as (select 1 as n union all select n + 1 from r) select 1 as one", []string{"CTE r"}},

		// ST04
		{"nested case", "ST04", "select case when a then 1 else case when b then 2 end end as c from t", []string{"CASE in ELSE can be merged"}},
		{"different operands", "ST04", "select case x when 1 then 'a' else case y when 2 then 'b' end end as c from t", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := byRule(analyze(t, tt.sql, nil), tt.rule)
			require.Len(t, diags, len(tt.wantMsg), "diagnostics: %v", diags)
			for i, want := range tt.wantMsg {
				assert.Contains(t, diags[i].Message, want)
				assert.NotEmpty(t, diags[i].Query)
			}
		})
	}
}

func TestCleanQueryHasNoDiagnostics(t *testing.T) {
	diags := analyze(t, `with recent as (
		select o.customer_id, sum(o.amount) as total
		from orders as o
		where o.created_at > now() - interval '30 days'
		group by o.customer_id
	)
	select c.id, c.name, r.total
	from customers as c
	left join recent as r on r.customer_id = c.id
	order by r.total desc
	limit 10`, nil)
	assert.Empty(t, diags)
}

// ---------- Analyzer Tests ----------

func TestAnalyzerConfig(t *testing.T) {
	sql := "select count(1), a + b from t join u"

	all := analyze(t, sql, nil)
	assert.NotEmpty(t, byRule(all, "AL03"))
	assert.NotEmpty(t, byRule(all, "AM08"))
	assert.False(t, lint.HasErrors(all))

	cfg := lint.NewConfig()
	require.NoError(t, cfg.Disable("al03", "RF02"))
	require.NoError(t, cfg.ParseOverride("am08 = error"))
	diags := analyze(t, sql, cfg)

	assert.Empty(t, byRule(diags, "AL03"))
	assert.Empty(t, byRule(diags, "RF02"))
	require.Len(t, byRule(diags, "AM08"), 1)
	assert.Equal(t, lint.SeverityError, byRule(diags, "AM08")[0].Severity)
	assert.True(t, lint.HasErrors(diags))

	// Diagnostics come in rule order.
	for i := 1; i < len(diags); i++ {
		assert.LessOrEqual(t, diags[i-1].RuleID, diags[i].RuleID)
	}

	assert.Nil(t, lint.NewAnalyzer(nil).Analyze(nil))
}

func TestConfigErrors(t *testing.T) {
	cfg := lint.NewConfig()
	assert.ErrorContains(t, cfg.Disable("XX99"), `unknown rule "XX99"`)
	assert.ErrorContains(t, cfg.SetSeverity("XX99", lint.SeverityHint), "unknown rule")
	assert.ErrorContains(t, cfg.ParseOverride("AM08"), "expected ID=level")
	assert.ErrorContains(t, cfg.ParseOverride("AM08=fatal"), "unknown severity")

	// The zero value and a nil config run everything at default severity.
	var zero lint.Config
	require.NoError(t, zero.Disable("CV08"))
	assert.False(t, zero.Enabled("cv08"))
	assert.True(t, (*lint.Config)(nil).Enabled("CV08"))
	assert.Equal(t, lint.SeverityHint, (*lint.Config)(nil).Severity("CV08", lint.SeverityHint))
}

// ---------- Registry Tests ----------

func TestRegistry(t *testing.T) {
	rules := lint.GetAll()
	require.NotEmpty(t, rules)
	for i, r := range rules {
		assert.NotEmpty(t, r.Name, r.ID)
		assert.NotEmpty(t, r.Description, r.ID)
		assert.NotNil(t, r.Check, r.ID)
		if i > 0 {
			assert.Less(t, rules[i-1].ID, r.ID)
		}
	}

	r, ok := lint.GetByID("st03")
	require.True(t, ok)
	assert.Equal(t, "structure.unused_cte", r.Name)

	_, ok = lint.GetByID("XX99")
	assert.False(t, ok)

	assert.Panics(t, func() { lint.Register(r) }, "duplicate ID")
	assert.Panics(t, func() { lint.Register(lint.RuleDef{ID: "ZZ01"}) }, "missing check")

	for _, r := range lint.GetByGroup("ambiguous") {
		assert.Equal(t, "ambiguous", r.Group)
	}
	assert.Len(t, lint.GetByGroup("ambiguous"), 4)
}

// ---------- Severity Tests ----------

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		in      string
		want    lint.Severity
		wantErr bool
	}{
		{"error", lint.SeverityError, false},
		{"WARN", lint.SeverityWarning, false},
		{"warning", lint.SeverityWarning, false},
		{"info", lint.SeverityInfo, false},
		{"hint", lint.SeverityHint, false},
		{"fatal", lint.SeverityWarning, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := lint.ParseSeverity(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, mustParse(t, got.String()))
		})
	}
}

func mustParse(t *testing.T, s string) lint.Severity {
	t.Helper()
	sev, err := lint.ParseSeverity(s)
	require.NoError(t, err)
	return sev
}
