package postgres

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"
)

func TestInsertSQLPlaceholders(t *testing.T) {
	t.Parallel()

	got := insertSQL("payment_summary_table", []string{"Records", "Minimum", "Maximum", "Total", "Average"})
	want := "INSERT INTO payment_summary_table (Records, Minimum, Maximum, Total, Average) VALUES ($1, $2, $3, $4, $5)"
	if got != want {
		t.Errorf("insertSQL = %q, want %q", got, want)
	}
}

// closedPort returns a localhost port with nothing listening on it.
func closedPort(tb testing.TB) int {
	tb.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		tb.Fatalf("listen: %v", err)
	}
	port := l.Addr().(*net.TCPAddr).Port
	l.Close()
	return port
}

// Open must fail fast on an unreachable server even when the caller passes
// a context without a deadline.
func TestOpenUnreachableServerFailsFast(t *testing.T) {
	t.Parallel()

	dsn := fmt.Sprintf("postgresql://etl:pw@127.0.0.1:%d/sakila", closedPort(t))
	start := time.Now()
	_, err := Open(context.Background(), dsn)
	if err == nil {
		t.Fatal("Open succeeded against a closed port")
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Fatalf("Open took %s to fail", elapsed)
	}
}
