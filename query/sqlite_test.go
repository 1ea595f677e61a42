package query_test

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IBM/firepit/internal/sqltest"
	"github.com/IBM/firepit/query"
)

// These tests execute rendered SQL against an in-memory SQLite fixture, so
// the output is checked by a real engine rather than by string comparison.

func openFixture(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sqltest.Open()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func pred(t *testing.T, lhs, op string, rhs query.Operand) query.Predicate {
	t.Helper()
	p, err := query.NewPredicate(lhs, op, rhs)
	require.NoError(t, err)
	return p
}

func countRows(t *testing.T, db *sql.DB, q *query.Query) int {
	t.Helper()
	sqlText, values, err := q.Render("?")
	require.NoError(t, err)
	rows, err := db.Query(sqlText, values...)
	require.NoError(t, err)
	defer rows.Close()
	n := 0
	for rows.Next() {
		n++
	}
	require.NoError(t, rows.Err())
	return n
}

func scanOne[T any](t *testing.T, db *sql.DB, q *query.Query) T {
	t.Helper()
	sqlText, values, err := q.Render("?")
	require.NoError(t, err)
	var out T
	require.NoError(t, db.QueryRow(sqlText, values...).Scan(&out))
	return out
}

func TestSQLite_FilterComparison(t *testing.T) {
	db := openFixture(t)
	q := must(query.NewQuery("people"))
	require.NoError(t, q.Append(must(query.NewFilter(query.And,
		pred(t, "age", ">", query.Lit(30))))))
	assert.Equal(t, 2, countRows(t, db, q)) // alice 34, carol 41
}

func TestSQLite_FilterIn(t *testing.T) {
	db := openFixture(t)
	q := must(query.NewQuery("people"))
	require.NoError(t, q.Append(must(query.NewFilter(query.And,
		pred(t, "city", "IN", query.List("lyon", "nice"))))))
	assert.Equal(t, 3, countRows(t, db, q)) // alice, carol, dave
}

func TestSQLite_FilterNull(t *testing.T) {
	db := openFixture(t)
	q := must(query.NewQuery("people"))
	require.NoError(t, q.Append(must(query.NewFilter(query.And,
		pred(t, "labels", "=", query.Null())))))
	assert.Equal(t, 1, countRows(t, db, q)) // carol
}

func TestSQLite_FilterNotNull(t *testing.T) {
	db := openFixture(t)
	q := must(query.NewQuery("people"))
	require.NoError(t, q.Append(must(query.NewFilter(query.And,
		pred(t, "labels", "!=", query.Null())))))
	assert.Equal(t, 3, countRows(t, db, q))
}

func TestSQLite_MultiValuedMatch(t *testing.T) {
	db := openFixture(t)
	q := must(query.NewQuery("people"))
	require.NoError(t, q.Append(must(query.NewFilter(query.And,
		pred(t, "labels[*]", "=", query.Lit("ops"))))))
	assert.Equal(t, 2, countRows(t, db, q)) // alice "admin,ops", dave "dev,ops"
}

func TestSQLite_JoinFilter(t *testing.T) {
	db := openFixture(t)
	q := must(query.NewQuery("people"))
	require.NoError(t, q.Extend(
		must(query.NewJoin(query.JoinSpec{
			Table: "events", LeftCol: "id", Op: "=", RightCol: "person_id",
		})),
		must(query.NewFilter(query.And, pred(t, "type", "=", query.Lit("login")))),
	))
	assert.Equal(t, 4, countRows(t, db, q))
}

func TestSQLite_GroupAggregate(t *testing.T) {
	db := openFixture(t)
	q := must(query.NewQuery("events"))
	require.NoError(t, q.Extend(
		must(query.NewGroup(query.ColumnName("type"))),
		must(query.NewAggregation(query.AggSpec{Func: "COUNT", Alias: "n"})),
	))
	assert.Equal(t, 3, countRows(t, db, q)) // login, logout, purchase
}

func TestSQLite_Having(t *testing.T) {
	db := openFixture(t)
	q := must(query.NewQuery("events"))
	require.NoError(t, q.Extend(
		must(query.NewGroup(query.ColumnName("type"))),
		must(query.NewAggregation(query.AggSpec{Func: "COUNT", Alias: "n"})),
		must(query.NewFilter(query.And, pred(t, "n", ">", query.Lit(2)))),
	))
	assert.Equal(t, 1, countRows(t, db, q)) // login occurs 4 times
}

func TestSQLite_DistinctCount(t *testing.T) {
	db := openFixture(t)
	q := must(query.NewQuery("events"))
	require.NoError(t, q.Extend(
		must(query.NewProjection(query.ColumnName("type"))),
		query.NewUnique(),
		query.NewCount(),
	))
	assert.Equal(t, 3, scanOne[int](t, db, q))
}

func TestSQLite_CountUniqueWholeRows(t *testing.T) {
	db := openFixture(t)
	q := must(query.NewQuery("events"))
	require.NoError(t, q.Extend(query.NewUnique(), query.NewCount()))
	assert.Equal(t, 6, scanOne[int](t, db, q))
}

func TestSQLite_NUniqueAggregate(t *testing.T) {
	db := openFixture(t)
	q := must(query.NewQuery("people"))
	require.NoError(t, q.Append(must(query.NewAggregation(
		query.AggSpec{Func: "NUNIQUE", Col: "city", Alias: "cities"}))))
	assert.Equal(t, 3, scanOne[int](t, db, q)) // lyon, paris, nice
}

func TestSQLite_OrderLimitOffset(t *testing.T) {
	db := openFixture(t)
	q := must(query.NewQuery("people"))
	require.NoError(t, q.Extend(
		must(query.NewProjection(query.ColumnName("name"))),
		must(query.NewOrder(query.OrderDesc("age"))),
		must(query.NewLimit(2)),
		must(query.NewOffset(1)),
	))
	sqlText, values, err := q.Render("?")
	require.NoError(t, err)
	rows, err := db.Query(sqlText, values...)
	require.NoError(t, err)
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	// Ages descending: carol 41, alice 34, bob 28, dave 19.
	assert.Equal(t, []string{"alice", "bob"}, names)
}

func TestSQLite_CoalescedProjection(t *testing.T) {
	db := openFixture(t)
	q := must(query.NewQuery("people"))
	require.NoError(t, q.Extend(
		must(query.NewFilter(query.And, pred(t, "name", "=", query.Lit("carol")))),
		must(query.NewProjection(must(query.NewCoalescedColumn(
			[]string{"labels", "city"}, "tag")))),
	))
	assert.Equal(t, "lyon", scanOne[string](t, db, q)) // carol's labels are NULL
}
