package rewrite_test

import (
	"errors"
	"testing"

	"github.com/leapstack-labs/leapquery/pkg/ast"
	"github.com/leapstack-labs/leapquery/pkg/parser"
	"github.com/leapstack-labs/leapquery/pkg/rewrite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, sql string) ast.Query {
	t.Helper()
	q, err := parser.Parse(sql)
	require.NoError(t, err)
	return q
}

// ---------- Where Tests ----------

func TestWhereSimple(t *testing.T) {
	q := mustParse(t, "select a.table_a_id, a.value from table_a as a")

	require.NoError(t, rewrite.Where(q, "value", rewrite.Equal(1)))

	assert.Equal(t, "select a.table_a_id, a.value from table_a as a where a.value = 1", ast.ToSQL(q))
}

func TestWherePushesIntoCTE(t *testing.T) {
	q := mustParse(t, `with regional_sales as (
		select region, sum(amount) as total_sales from orders group by region
	), top_regions as (
		select region from regional_sales
		where total_sales > (select sum(total_sales) / 10 from regional_sales)
	)
	select region from top_regions`)

	require.NoError(t, rewrite.Where(q, "region", rewrite.Equal("east")))

	assert.Equal(t,
		"with regional_sales as (select region, sum(amount) as total_sales from orders where region = 'east' group by region), "+
			"top_regions as (select region from regional_sales where total_sales > (select sum(total_sales) / 10 from regional_sales)) "+
			"select region from top_regions",
		ast.ToSQL(q))
}

func TestWhereFansOutOverSetOperations(t *testing.T) {
	tests := []struct {
		name   string
		sql    string
		column string
		cond   rewrite.Condition
		want   string
	}{
		{
			name:   "union",
			sql:    "select id, name from users union select id, name from admins",
			column: "name",
			cond:   rewrite.Like("%mike%"),
			want:   "select id, name from users where name like '%mike%' union select id, name from admins where name like '%mike%'",
		},
		{
			name:   "branches named by position",
			sql:    "select id, name from users union all select uid, nick from admins",
			column: "name",
			cond:   rewrite.Equal("bob"),
			want:   "select id, name from users where name = 'bob' union all select uid, nick from admins where nick = 'bob'",
		},
		{
			name:   "shared cte reached twice",
			sql:    "with c as (select id from t) select id from c union all select id from c",
			column: "id",
			cond:   rewrite.Equal(1),
			want:   "with c as (select id from t where id = 1) select id from c union all select id from c",
		},
		{
			name:   "subquery over union",
			sql:    "select x.id from (select id from a union select id from b) as x",
			column: "id",
			cond:   rewrite.Equal(1),
			want:   "select x.id from (select id from a where id = 1 union select id from b where id = 1) as x",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := mustParse(t, tt.sql)
			require.NoError(t, rewrite.Where(q, tt.column, tt.cond))
			assert.Equal(t, tt.want, ast.ToSQL(q))
		})
	}
}

func TestWherePlacement(t *testing.T) {
	tests := []struct {
		name   string
		sql    string
		column string
		want   string
	}{
		{
			name:   "nested subqueries",
			sql:    "select x.v from (select y.v from (select t.v from t) as y) as x",
			column: "v",
			want:   "select x.v from (select y.v from (select t.v from t where t.v = 1) as y) as x",
		},
		{
			name:   "alias takes precedence",
			sql:    "select x.w as v, x.v as other from (select w, v from t) as x",
			column: "v",
			want:   "select x.w as v, x.v as other from (select w, v from t where w = 1) as x",
		},
		{
			name:   "cte column list",
			sql:    "with c(k) as (select id from t) select k from c",
			column: "k",
			want:   "with c(k) as (select id from t where id = 1) select k from c",
		},
		{
			name:   "source column list",
			sql:    "select x.k from (select id from t) as x(k)",
			column: "k",
			want:   "select x.k from (select id from t where id = 1) as x(k)",
		},
		{
			name:   "computed column",
			sql:    "select a + b as v from t",
			column: "v",
			want:   "select a + b as v from t where a + b = 1",
		},
		{
			name:   "aggregate goes to having",
			sql:    "select region, sum(amount) as v from orders group by region",
			column: "v",
			want:   "select region, sum(amount) as v from orders group by region having sum(amount) = 1",
		},
		{
			name:   "existing predicate is kept",
			sql:    "select v from t where b = 1 or c = 2",
			column: "v",
			want:   "select v from t where (b = 1 or c = 2) and v = 1",
		},
		{
			name:   "inner join side",
			sql:    "select b.v from a inner join (select id, v from t) as b on a.id = b.id",
			column: "v",
			want:   "select b.v from a inner join (select id, v from t where v = 1) as b on a.id = b.id",
		},
		{
			name:   "preserved side of left join",
			sql:    "select a.v from (select v from t) as a left join b on true",
			column: "v",
			want:   "select a.v from (select v from t where v = 1) as a left join b on true",
		},
		{
			name:   "null supplying side of left join",
			sql:    "select b.v from a left join (select id, v from t) as b on a.id = b.id",
			column: "v",
			want:   "select b.v from a left join (select id, v from t) as b on a.id = b.id where b.v = 1",
		},
		{
			name:   "full join",
			sql:    "select a.v from (select v from t) as a full join b on true",
			column: "v",
			want:   "select a.v from (select v from t) as a full join b on true where a.v = 1",
		},
		{
			name:   "paging stops pushdown",
			sql:    "select x.v from (select v from t limit 10) as x",
			column: "v",
			want:   "select x.v from (select v from t limit 10) as x where x.v = 1",
		},
		{
			name:   "window function stops pushdown",
			sql:    "select x.rn from (select row_number() over (order by v) as rn from t) as x",
			column: "rn",
			want:   "select x.rn from (select row_number() over (order by v) as rn from t) as x where x.rn = 1",
		},
		{
			name:   "distinct on stops pushdown",
			sql:    "select x.v from (select distinct on (k) v from t) as x",
			column: "v",
			want:   "select x.v from (select distinct on (k) v from t) as x where x.v = 1",
		},
		{
			name:   "recursive cte stays outside",
			sql:    "with recursive r as (select 1 as n union all select n + 1 from r where n < 5) select n from r",
			column: "n",
			want:   "with recursive r as (select 1 as n union all select n + 1 from r where n < 5) select n from r where n = 1",
		},
		{
			name:   "wildcard over subquery",
			sql:    "select * from (select id, v from t) as x",
			column: "v",
			want:   "select * from (select id, v from t where v = 1) as x",
		},
		{
			name:   "wildcard over table",
			sql:    "select * from t",
			column: "v",
			want:   "select * from t where v = 1",
		},
		{
			name:   "qualified wildcard",
			sql:    "select u.* from users as u join orders as o on u.id = o.uid",
			column: "v",
			want:   "select u.* from users as u join orders as o on u.id = o.uid where u.v = 1",
		},
		{
			name:   "same cte under two aliases",
			sql:    "with c as (select id, v from t) select a.v from c as a join c as b on a.id = b.id",
			column: "v",
			want:   "with c as (select id, v from t where v = 1) select a.v from c as a join c as b on a.id = b.id",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := mustParse(t, tt.sql)
			require.NoError(t, rewrite.Where(q, tt.column, rewrite.Equal(1)))
			assert.Equal(t, tt.want, ast.ToSQL(q))
		})
	}
}

func TestConditions(t *testing.T) {
	sub := mustParse(t, "select id from u")

	tests := []struct {
		name string
		cond rewrite.Condition
		want string
	}{
		{"not equal", rewrite.NotEqual(1), "a <> 1"},
		{"greater than", rewrite.GreaterThan(1), "a > 1"},
		{"greater or equal", rewrite.GreaterOrEqual(1.5), "a >= 1.5"},
		{"less than", rewrite.LessThan(1), "a < 1"},
		{"less or equal", rewrite.LessOrEqual(1), "a <= 1"},
		{"quoted string", rewrite.Equal("O'Brien"), "a = 'O''Brien'"},
		{"expression value", rewrite.Equal(ast.Col("t.b")), "a = t.b"},
		{"not like", rewrite.NotLike("x%"), "a not like 'x%'"},
		{"ilike", rewrite.ILike("x%"), "a ilike 'x%'"},
		{"in", rewrite.In(1, 2), "a in (1, 2)"},
		{"not in", rewrite.NotIn("x", "y"), "a not in ('x', 'y')"},
		{"in query", rewrite.InQuery(sub), "a in (select id from u)"},
		{"is null", rewrite.IsNull(), "a is null"},
		{"is not null", rewrite.IsNotNull(), "a is not null"},
		{"between", rewrite.Between(1, 5), "a between 1 and 5"},
		{
			"exists",
			rewrite.Exists(mustParse(t, "select 1 from u"), func(col ast.Expr) ast.Expr {
				return ast.Binary(ast.Col("u.id"), "=", col)
			}),
			"exists (select 1 from u where u.id = a)",
		},
		{
			"custom",
			rewrite.Custom(func(col ast.Expr) ast.Expr {
				return ast.Binary(ast.Call("lower", col), "=", ast.String("x"))
			}),
			"lower(a) = 'x'",
		},
		{"any of", rewrite.AnyOf(rewrite.Equal(1), rewrite.IsNull()), "a = 1 or a is null"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := mustParse(t, "select a from t")
			require.NoError(t, rewrite.Where(q, "a", tt.cond))
			assert.Equal(t, "select a from t where "+tt.want, ast.ToSQL(q))
		})
	}

	assert.Equal(t, "select id from u", ast.ToSQL(sub), "subquery operand must not be modified")
}

func TestInQueryIsCopiedPerTarget(t *testing.T) {
	q := mustParse(t, "select id from a union all select id from b")
	sub := mustParse(t, "select id from allowed")

	require.NoError(t, rewrite.Where(q, "id", rewrite.InQuery(sub)))

	set := q.(*ast.SetQuery)
	left := set.Left.(*ast.SelectQuery).Where.(*ast.InExpr)
	right := set.Right.(*ast.SelectQuery).Where.(*ast.InExpr)
	assert.NotSame(t, left.Query, right.Query)
	assert.NotSame(t, sub, left.Query)
}

func TestEqualParam(t *testing.T) {
	q := mustParse(t, "select x.id from (select id from t) as x")

	require.NoError(t, rewrite.Where(q, "id", rewrite.EqualParam("id", 5)))

	assert.Equal(t, "select x.id from (select id from t where id = :id) as x", ast.ToSQL(q))
	v, ok := ast.Parameters(q).Get(":id")
	require.True(t, ok)
	assert.Equal(t, 5, v)
}

func TestWhereErrors(t *testing.T) {
	tests := []struct {
		name    string
		sql     string
		column  string
		cond    rewrite.Condition
		wantErr error
	}{
		{"values query", "values (1, 2)", "column1", rewrite.Equal(1), rewrite.ErrNotSupported},
		{"unknown column", "select a from t", "b", rewrite.Equal(1), rewrite.ErrUnresolvedColumn},
		{"ambiguous wildcard", "select * from a join b on true", "v", rewrite.Equal(1), rewrite.ErrUnresolvedColumn},
		{"window at root", "select row_number() over () as rn from t", "rn", rewrite.Equal(1), rewrite.ErrNotSupported},
		{"in with set query", "select a from t", "a", rewrite.InQuery(&ast.SetQuery{}), rewrite.ErrInvalidOperand},
		{"exists with values", "select a from t", "a", rewrite.Exists(ast.Values([]any{1}), nil), rewrite.ErrInvalidOperand},
		{"empty in list", "select a from t", "a", rewrite.In(), rewrite.ErrInvalidOperand},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := mustParse(t, tt.sql)
			before := ast.ToSQL(q)

			err := rewrite.Where(q, tt.column, tt.cond)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var ee *rewrite.EditError
			require.True(t, errors.As(err, &ee))
			assert.Equal(t, "where", ee.Op)
			assert.Equal(t, tt.column, ee.Column)
			assert.Equal(t, before, ast.ToSQL(q))
		})
	}
}

func TestEditErrorMessage(t *testing.T) {
	err := rewrite.Where(mustParse(t, "values (1)"), "column1", rewrite.Equal(1))
	assert.EqualError(t, err, `rewrite where "column1": not supported: values list has no where clause`)
}

// ---------- Resolve Tests ----------

func TestResolve(t *testing.T) {
	q := mustParse(t, "with c as (select id, sum(v) as total from t group by id) select x.total from c as x")

	targets, err := rewrite.Resolve(q, "total")
	require.NoError(t, err)
	require.Len(t, targets, 1)

	body := ast.CommonTables(q)[0].Query
	assert.Same(t, body, targets[0].Query)
	assert.True(t, targets[0].Having)
	assert.Equal(t, "sum(v)", ast.SQL(targets[0].Column))
	assert.NotSame(t, targets[0].Column, targets[0].Expr())
}

// ---------- Join Tests ----------

func TestJoin(t *testing.T) {
	onID := func(alias string) func(col ast.Expr) ast.Expr {
		return func(col ast.Expr) ast.Expr {
			return ast.Binary(col, "=", &ast.ColumnRef{Table: alias, Column: "id"})
		}
	}

	tests := []struct {
		name        string
		sql         string
		column      string
		currentOnly bool
		build       func(t *rewrite.Target) error
		want        string
	}{
		{
			name:   "left join",
			sql:    "select o.customer_id, o.total from orders as o",
			column: "customer_id",
			build: func(t *rewrite.Target) error {
				_, err := t.LeftJoin("customers", "c", onID("c"))
				return err
			},
			want: "select o.customer_id, o.total from orders as o left join customers as c on o.customer_id = c.id",
		},
		{
			name:        "current query only",
			sql:         "select x.id from (select id from t) as x",
			column:      "id",
			currentOnly: true,
			build: func(t *rewrite.Target) error {
				_, err := t.InnerJoin("u", "v", onID("v"))
				return err
			},
			want: "select x.id from (select id from t) as x inner join u as v on x.id = v.id",
		},
		{
			name:   "deepest query",
			sql:    "select x.id from (select id from t) as x",
			column: "id",
			build: func(t *rewrite.Target) error {
				_, err := t.InnerJoin("u", "v", onID("v"))
				return err
			},
			want: "select x.id from (select t.id from t inner join u as v on t.id = v.id) as x",
		},
		{
			name:        "set operation fans out",
			sql:         "select id from a union select id from b",
			column:      "id",
			currentOnly: true,
			build: func(t *rewrite.Target) error {
				_, err := t.AddJoin("cross join", ast.Table("flags", "f"), nil)
				return err
			},
			want: "select a.id from a cross join flags as f union select b.id from b cross join flags as f",
		},
		{
			name:   "join a query and select from it",
			sql:    "select id from t",
			column: "id",
			build: func(t *rewrite.Target) error {
				sub, err := parser.Parse("select id, name from u")
				if err != nil {
					return err
				}
				if _, err := t.JoinQuery("left join", sub, "n", onID("n")); err != nil {
					return err
				}
				t.AddColumn(ast.Col("n.name"), "")
				return nil
			},
			want: "select t.id, n.name from t left join (select id, name from u) as n on t.id = n.id",
		},
		{
			name:   "pushed join qualifies the inner query",
			sql:    "select s.v from (select v from base) as s",
			column: "v",
			build: func(t *rewrite.Target) error {
				_, err := t.InnerJoin("other", "o", func(col ast.Expr) ast.Expr {
					return ast.Binary(col, "=", ast.Col("o.v"))
				})
				return err
			},
			want: "select s.v from (select base.v from base inner join other as o on base.v = o.v) as s",
		},
		{
			name:        "every clause is qualified except output aliases",
			sql:         "select v, count(*) as n from base where v > 1 group by v order by n, v",
			column:      "v",
			currentOnly: true,
			build: func(t *rewrite.Target) error {
				_, err := t.LeftJoin("other", "o", func(col ast.Expr) ast.Expr {
					return ast.Binary(col, "=", ast.Col("o.v"))
				})
				return err
			},
			want: "select base.v, count(*) as n from base left join other as o on base.v = o.v where base.v > 1 group by base.v order by n, base.v",
		},
		{
			name:        "bare wildcard keeps the original columns",
			sql:         "select *, v from base",
			column:      "v",
			currentOnly: true,
			build: func(t *rewrite.Target) error {
				_, err := t.AddJoin("cross join", ast.Table("flags", "f"), nil)
				return err
			},
			want: "select base.*, base.v from base cross join flags as f",
		},
		{
			name:        "already joined queries are left as written",
			sql:         "select a.id, b.x from a join b on a.id = b.id",
			column:      "id",
			currentOnly: true,
			build: func(t *rewrite.Target) error {
				_, err := t.AddJoin("cross join", ast.Table("flags", "f"), nil)
				return err
			},
			want: "select a.id, b.x from a join b on a.id = b.id cross join flags as f",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := mustParse(t, tt.sql)
			require.NoError(t, rewrite.Join(q, tt.column, tt.currentOnly, tt.build))
			assert.Equal(t, tt.want, ast.ToSQL(q))
		})
	}
}

func TestJoinErrors(t *testing.T) {
	q := mustParse(t, "select 1 as id")
	err := rewrite.Join(q, "id", true, func(t *rewrite.Target) error {
		_, err := t.InnerJoin("u", "u", nil)
		return err
	})
	assert.ErrorIs(t, err, rewrite.ErrNotSupported)

	err = rewrite.Join(mustParse(t, "select a from t"), "b", true, func(*rewrite.Target) error { return nil })
	assert.ErrorIs(t, err, rewrite.ErrUnresolvedColumn)
}

// ---------- Column Editor Tests ----------

func TestAddColumn(t *testing.T) {
	q := mustParse(t, "select a from t union select a from u")

	require.NoError(t, rewrite.AddColumn(q, ast.Number(1), "src"))

	assert.Equal(t, "select a, 1 as src from t union select a, 1 as src from u", ast.ToSQL(q))
	set := q.(*ast.SetQuery)
	left := set.Left.(*ast.SelectQuery).Select.Items[1].Expr
	right := set.Right.(*ast.SelectQuery).Select.Items[1].Expr
	assert.NotSame(t, left, right)

	err := rewrite.AddColumn(mustParse(t, "values (1)"), ast.Number(2), "b")
	assert.ErrorIs(t, err, rewrite.ErrNotSupported)
}

func TestModifyColumn(t *testing.T) {
	tests := []struct {
		name   string
		sql    string
		column string
		fn     func(old ast.Expr) ast.Expr
		want   string
	}{
		{
			name:   "keeps default name",
			sql:    "select a, b from t",
			column: "b",
			fn:     func(old ast.Expr) ast.Expr { return ast.Call("upper", old) },
			want:   "select a, upper(b) as b from t",
		},
		{
			name:   "keeps alias",
			sql:    "select a as x from t",
			column: "x",
			fn:     func(old ast.Expr) ast.Expr { return ast.Call("coalesce", old, ast.Number(0)) },
			want:   "select coalesce(a, 0) as x from t",
		},
		{
			name:   "set branches by position",
			sql:    "select a from t union select c from u",
			column: "a",
			fn:     func(old ast.Expr) ast.Expr { return ast.Binary(old, "+", ast.Number(1)) },
			want:   "select a + 1 as a from t union select c + 1 as c from u",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := mustParse(t, tt.sql)
			require.NoError(t, rewrite.ModifyColumn(q, tt.column, tt.fn))
			assert.Equal(t, tt.want, ast.ToSQL(q))
		})
	}
}

func TestRemoveColumn(t *testing.T) {
	q := mustParse(t, "select a, b, c from t")
	require.NoError(t, rewrite.RemoveColumn(q, "b"))
	assert.Equal(t, "select a, c from t", ast.ToSQL(q))

	q = mustParse(t, "select a, b from t union select c, d from u")
	require.NoError(t, rewrite.RemoveColumn(q, "b"))
	assert.Equal(t, "select a from t union select c from u", ast.ToSQL(q))

	err := rewrite.RemoveColumn(q, "zzz")
	assert.ErrorIs(t, err, rewrite.ErrUnresolvedColumn)
}

func TestAddParameter(t *testing.T) {
	q := mustParse(t, "select a from t where a = :id and b = @name")

	rewrite.AddParameter(q, "id", 1)
	rewrite.AddParameter(q, "@name", "x")

	assert.Equal(t, []string{":id", "@name"}, ast.Parameters(q).Names())
}

// ---------- Converter Tests ----------

func TestConverters(t *testing.T) {
	src := "select id, name from users where active = true"

	tests := []struct {
		name    string
		convert func(q ast.Query) (ast.Node, error)
		want    string
	}{
		{
			name: "create temporary table",
			convert: func(q ast.Query) (ast.Node, error) {
				return rewrite.ToCreateTable(q, "tmp_users", true), nil
			},
			want: "create temporary table tmp_users as select id, name from users where active = true",
		},
		{
			name: "insert",
			convert: func(q ast.Query) (ast.Node, error) {
				return rewrite.ToInsert(q, "archive"), nil
			},
			want: "insert into archive(id, name) select id, name from users where active = true",
		},
		{
			name: "update",
			convert: func(q ast.Query) (ast.Node, error) {
				return rewrite.ToUpdate(q, "users", []string{"id"})
			},
			want: "update users as d set name = q.name from (select id, name from users where active = true) as q where d.id = q.id",
		},
		{
			name: "delete",
			convert: func(q ast.Query) (ast.Node, error) {
				return rewrite.ToDelete(q, "users", []string{"id"})
			},
			want: "delete from users as d where d.id in (select q.id from (select id, name from users where active = true) as q)",
		},
		{
			name: "delete with composite key",
			convert: func(q ast.Query) (ast.Node, error) {
				return rewrite.ToDelete(q, "users", []string{"id", "name"})
			},
			want: "delete from users as d where (d.id, d.name) in (select q.id, q.name from (select id, name from users where active = true) as q)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := mustParse(t, src)
			stmt, err := tt.convert(q)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ast.ToSQL(stmt))
			assert.Equal(t, src, ast.ToSQL(q))
		})
	}
}

func TestConvertersHoistCTEs(t *testing.T) {
	q := mustParse(t, "with c as (select id from t) select id from c")

	assert.Equal(t,
		"create table x as with c as (select id from t) select id from c",
		ast.ToSQL(rewrite.ToCreateTable(q, "x", false)))
	assert.Equal(t,
		"with c as (select id from t) insert into y(id) select id from c",
		ast.ToSQL(rewrite.ToInsert(q, "y")))
}

func TestConverterErrors(t *testing.T) {
	q := mustParse(t, "select id, name from users")

	_, err := rewrite.ToUpdate(q, "users", []string{"nope"})
	assert.ErrorIs(t, err, rewrite.ErrUnresolvedColumn)

	_, err = rewrite.ToUpdate(q, "users", []string{"id", "name"})
	assert.ErrorIs(t, err, rewrite.ErrInvalidOperand)

	_, err = rewrite.ToDelete(q, "users", nil)
	assert.ErrorIs(t, err, rewrite.ErrInvalidOperand)

	_, err = rewrite.ToDelete(mustParse(t, "select * from users"), "users", []string{"id"})
	assert.ErrorIs(t, err, rewrite.ErrNotSupported)

	ins := rewrite.ToInsert(mustParse(t, "select * from users"), "archive")
	assert.Empty(t, ins.Columns)
	assert.Equal(t, "insert into archive select * from users", ast.ToSQL(ins))
}

// ---------- QueryNode Tests ----------

func TestNavigate(t *testing.T) {
	q := mustParse(t, "with c as (select a from t) select x.a from (select a from c) as x where x.a in (select a from u)")

	root := rewrite.Navigate(q)
	require.Len(t, root.Children, 3)
	assert.Equal(t, "cte", root.Children[0].Role)
	assert.Equal(t, "from", root.Children[1].Role)
	assert.Equal(t, "subquery", root.Children[2].Role)

	x := root.Source("x")
	require.NotNil(t, x)
	cte := x.CTE("c")
	require.NotNil(t, cte)
	assert.Same(t, root, cte.Parent)

	require.NoError(t, cte.Where("a", rewrite.Equal(1)))
	assert.Equal(t,
		"with c as (select a from t where a = 1) select x.a from (select a from c) as x where x.a in (select a from u)",
		ast.ToSQL(q))

	count := 0
	root.Walk(func(*rewrite.QueryNode) bool { count++; return true })
	assert.Equal(t, 4, count)
}

func TestNavigateEditsSeeAncestorCTEs(t *testing.T) {
	const sql = "with a as (select id, v from t), b as (select id, v from a) select id, v from b"
	const want = "with a as (select id, v from t where v = 1), b as (select id, v from a) select id, v from b"

	fromRoot := mustParse(t, sql)
	require.NoError(t, rewrite.Where(fromRoot, "v", rewrite.Equal(1)))
	assert.Equal(t, want, ast.ToSQL(fromRoot))

	q := mustParse(t, sql)
	b := rewrite.Navigate(q).CTE("b")
	require.NotNil(t, b)
	assert.Same(t, q, b.Root().Query)

	targets, err := b.Resolve("v")
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Same(t, q.Base().With.CTEs[0].Query, targets[0].Query)

	require.NoError(t, b.Where("v", rewrite.Equal(1)))
	assert.Equal(t, want, ast.ToSQL(q))

	_, err = b.Resolve("missing")
	assert.ErrorIs(t, err, rewrite.ErrUnresolvedColumn)
}

func TestNavigateSetBranches(t *testing.T) {
	root := rewrite.Navigate(mustParse(t, "select a from t union select a from u"))
	require.Len(t, root.Children, 2)
	assert.Equal(t, "left", root.Children[0].Role)
	assert.Equal(t, "right", root.Children[1].Role)
}
