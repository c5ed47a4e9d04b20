package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

/*
Package-level test helpers (TB-aware)
*/

func newFileRepo(tb testing.TB) *Repository {
	tb.Helper()
	dsn := "file:" + filepath.Join(tb.TempDir(), "etl_test.db")
	r, err := Open(context.Background(), dsn)
	if err != nil {
		tb.Fatalf("open sqlite %s: %v", dsn, err)
	}
	tb.Cleanup(func() { _ = r.Close() })
	return r
}

func mustExec(tb testing.TB, r *Repository, stmt string) {
	tb.Helper()
	if err := r.Exec(context.Background(), stmt); err != nil {
		tb.Fatalf("exec %q: %v", stmt, err)
	}
}

/*
Unit tests
*/

func TestOpenRejectsEmptyDSN(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), "  "); err == nil {
		t.Fatal("Open succeeded with blank DSN")
	}
}

func TestInsertRowsAndQuery(t *testing.T) {
	t.Parallel()

	r := newFileRepo(t)
	ctx := context.Background()
	mustExec(t, r, `CREATE TABLE actors (actor_id INTEGER, first_name TEXT, total REAL)`)

	rows := [][]any{
		{int64(1), "PENELOPE", 123.5},
		{int64(2), "NICK", 67.25},
		{int64(3), "ED", 12.0},
	}
	n, err := r.InsertRows(ctx, "actors", []string{"actor_id", "first_name", "total"}, rows)
	if err != nil {
		t.Fatalf("InsertRows: %v", err)
	}
	if n != 3 {
		t.Fatalf("inserted = %d, want 3", n)
	}

	got, err := r.Query(ctx, `SELECT actor_id, first_name, total FROM actors ORDER BY actor_id`)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("rows = %d, want 3", len(got))
	}
	if got[0][0].(int64) != 1 {
		t.Errorf("first actor_id = %v", got[0][0])
	}
}

func TestInsertRowsEmptyIsNoop(t *testing.T) {
	t.Parallel()

	r := newFileRepo(t)
	mustExec(t, r, `CREATE TABLE empty_load (v INTEGER)`)

	n, err := r.InsertRows(context.Background(), "empty_load", []string{"v"}, nil)
	if err != nil {
		t.Fatalf("InsertRows: %v", err)
	}
	if n != 0 {
		t.Fatalf("inserted = %d, want 0", n)
	}
}

// TestInsertRowsRollsBackOnBadRow verifies the single-transaction contract:
// a failed row mid-load must leave the table in its prior state.
func TestInsertRowsRollsBackOnBadRow(t *testing.T) {
	t.Parallel()

	r := newFileRepo(t)
	ctx := context.Background()
	mustExec(t, r, `CREATE TABLE strict_load (v INTEGER NOT NULL)`)

	rows := [][]any{
		{int64(1)},
		{nil}, // violates NOT NULL
		{int64(3)},
	}
	if _, err := r.InsertRows(ctx, "strict_load", []string{"v"}, rows); err == nil {
		t.Fatal("InsertRows succeeded, want NOT NULL violation")
	}

	got, err := r.Query(ctx, `SELECT v FROM strict_load`)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("table has %d rows after failed load, want 0", len(got))
	}
}

func TestInsertRowsRejectsArityMismatch(t *testing.T) {
	t.Parallel()

	r := newFileRepo(t)
	mustExec(t, r, `CREATE TABLE two_cols (a INTEGER, b INTEGER)`)

	rows := [][]any{{int64(1), int64(2)}, {int64(3)}}
	if _, err := r.InsertRows(context.Background(), "two_cols", []string{"a", "b"}, rows); err == nil {
		t.Fatal("InsertRows succeeded on short row")
	}
}

// TestExecBatchAtomic verifies that a failing statement rolls back the whole
// batch, including statements that had already executed.
func TestExecBatchAtomic(t *testing.T) {
	t.Parallel()

	r := newFileRepo(t)
	ctx := context.Background()

	err := r.ExecBatch(ctx, []string{
		`CREATE TABLE batch_a (v INTEGER)`,
		`CREATE TABLE batch_a (v INTEGER)`, // duplicate; fails
	})
	if err == nil {
		t.Fatal("ExecBatch succeeded, want duplicate-table error")
	}

	// First create must have been rolled back.
	if _, err := r.Query(ctx, `SELECT v FROM batch_a`); err == nil {
		t.Fatal("batch_a exists after failed batch")
	}
}

func TestExecBatchCommits(t *testing.T) {
	t.Parallel()

	r := newFileRepo(t)
	ctx := context.Background()

	err := r.ExecBatch(ctx, []string{
		`CREATE TABLE batch_ok (v INTEGER)`,
		`INSERT INTO batch_ok (v) VALUES (42)`,
	})
	if err != nil {
		t.Fatalf("ExecBatch: %v", err)
	}

	got, err := r.Query(ctx, `SELECT v FROM batch_ok`)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 1 || got[0][0].(int64) != 42 {
		t.Fatalf("rows = %v", got)
	}
}

func TestInsertSQLPlaceholders(t *testing.T) {
	t.Parallel()

	got := insertSQL("t", []string{"a", "b", "c"})
	want := "INSERT INTO t (a, b, c) VALUES (?, ?, ?)"
	if got != want {
		t.Errorf("insertSQL = %q, want %q", got, want)
	}
}
