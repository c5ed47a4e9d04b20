// Package query executes analytic SQL queries and materializes their result
// sets as schema-labeled tabular results.
//
// Result sets are fetched eagerly: the queries are small aggregate summaries,
// so there is no value in cursoring or streaming, and an eager fetch lets the
// session be released before either sink runs.
package query

import (
	"context"
	"fmt"

	"sakilaetl/internal/config"
	"sakilaetl/internal/scripts"
	"sakilaetl/internal/storage"
	"sakilaetl/internal/tabular"
)

// Executor runs configured queries through its own database sessions.
type Executor struct {
	open storage.Factory
}

// NewExecutor returns an Executor that acquires sessions from open.
func NewExecutor(open storage.Factory) *Executor {
	return &Executor{open: open}
}

// Run loads the query text for spec, executes it, and labels the fetched
// rows with the spec's declared columns. The declared schema is positional:
// the query's SELECT order must match it by convention, and only the arity
// is validated (a mismatch fails fast rather than truncating or padding).
// The session is released on every exit path.
func (e *Executor) Run(ctx context.Context, spec config.QuerySpec) (*tabular.Result, error) {
	text, err := scripts.Load(spec.Script)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", spec.Name, err)
	}

	repo, err := e.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", spec.Name, err)
	}
	defer repo.Close()

	rows, err := repo.Query(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", spec.Name, err)
	}
	normalizeRows(rows)

	res, err := tabular.New(spec.Columns, rows)
	if err != nil {
		return nil, fmt.Errorf("query %s: declared schema mismatch: %w", spec.Name, err)
	}
	return res, nil
}

// normalizeRows converts driver byte slices to strings so that results are
// stable value types for both sinks regardless of backend.
func normalizeRows(rows [][]any) {
	for _, row := range rows {
		for i, v := range row {
			if b, ok := v.([]byte); ok {
				row[i] = string(b)
			}
		}
	}
}
