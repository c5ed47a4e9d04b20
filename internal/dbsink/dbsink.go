// Package dbsink persists query results into destination tables.
package dbsink

import (
	"context"
	"fmt"
	"log"

	"sakilaetl/internal/storage"
	"sakilaetl/internal/tabular"
)

// Writer inserts tabular results into the configured storage backend.
// Each Write opens its own session and runs a single transaction.
type Writer struct {
	open storage.Factory
}

func NewWriter(open storage.Factory) *Writer {
	return &Writer{open: open}
}

// Write inserts every row of res into table. The insert is atomic:
// on failure no rows from res remain in the table.
func (w *Writer) Write(ctx context.Context, res *tabular.Result, table string) (int64, error) {
	if table == "" {
		return 0, fmt.Errorf("dbsink: empty table name")
	}
	repo, err := w.open(ctx)
	if err != nil {
		return 0, fmt.Errorf("dbsink: open session for table %q: %w", table, err)
	}
	defer repo.Close()

	n, err := repo.InsertRows(ctx, table, res.Columns, res.Rows)
	if err != nil {
		return 0, fmt.Errorf("dbsink: insert into %q: %w", table, err)
	}
	log.Printf("dbsink: table=%s rows=%d", table, n)
	return n, nil
}
