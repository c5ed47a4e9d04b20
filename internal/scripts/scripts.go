// Package scripts loads SQL text from files on disk.
//
// The pipeline treats SQL as an opaque payload: table-reset DDL lives under a
// table-management directory and analytic queries under a queries directory,
// one file per statement. This package only reads and lightly sanity-checks
// the text; it never parses SQL.
package scripts

import (
	"fmt"
	"os"
	"strings"
)

// NotFoundError reports a referenced script file that does not exist.
// It unwraps to os.ErrNotExist so callers can use errors.Is.
type NotFoundError struct {
	Path string
	err  error
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("sql script not found: %s", e.Path) }

func (e *NotFoundError) Unwrap() error { return e.err }

// Load reads the SQL text at path. A missing file yields *NotFoundError;
// a file containing only whitespace is rejected, since executing it would
// silently do nothing while the config suggests otherwise.
func Load(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &NotFoundError{Path: path, err: err}
		}
		return "", fmt.Errorf("read sql script %s: %w", path, err)
	}
	text := string(b)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("sql script %s is empty", path)
	}
	return text, nil
}
