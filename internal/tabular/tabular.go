// Package tabular defines the in-memory result model shared by the query
// executor and the two sinks (database table, report file).
//
// A Result is a schema-labeled, ordered collection of rows. The column names
// are a static contract declared per query in the pipeline config; they are
// assigned once when the result is built and are never inferred from the
// data. Consumers treat a Result as read-only.
package tabular

import "fmt"

// Result holds the materialized output of one analytic query.
type Result struct {
	// Columns are the declared column names, in output order.
	Columns []string

	// Rows are the fetched values, positionally aligned to Columns.
	// Every row has exactly len(Columns) values.
	Rows [][]any
}

// ArityError reports a row whose value count does not match the declared
// column schema. It corresponds to a query whose SELECT list drifted away
// from the configured columns.
type ArityError struct {
	Row  int // zero-based index of the offending row
	Got  int
	Want int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("row %d has %d values, schema declares %d columns", e.Row, e.Got, e.Want)
}

// New builds a Result from declared columns and fetched rows, validating that
// every row matches the schema arity. Mismatches fail fast with *ArityError;
// rows are never truncated or padded.
func New(columns []string, rows [][]any) (*Result, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("tabular: at least one column required")
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, &ArityError{Row: i, Got: len(row), Want: len(columns)}
		}
	}
	return &Result{Columns: columns, Rows: rows}, nil
}

// Len returns the number of data rows.
func (r *Result) Len() int { return len(r.Rows) }
