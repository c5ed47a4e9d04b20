// Package report writes tabular results to local tab-delimited text files
// and manages the lifecycle of the report directory.
//
// The directory is cleared (contents only, directory preserved) at the start
// of every run so artifacts never accumulate across runs; individual writes
// then recreate missing directories on demand, so Write never fails merely
// because the target directory does not exist yet.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/zeebo/xxh3"

	"sakilaetl/internal/tabular"
)

// WriteResult describes one written report artifact.
type WriteResult struct {
	// Path is the resolved path of the written file.
	Path string

	// Rows is the number of data rows written (excluding the header).
	Rows int

	// Checksum is the xxh3 hash of the file contents. Two runs over the
	// same source data produce the same checksum, which makes byte-for-byte
	// reproducibility checkable from the logs alone.
	Checksum uint64
}

// Clear removes every entry directly inside dir (files, symbolic links,
// subdirectories and their contents), leaving the directory itself intact.
// It fails if dir does not exist or an entry cannot be removed; callers must
// not proceed as if clearing succeeded when it did not.
func Clear(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("clear report dir %s: %w", dir, err)
	}
	for _, e := range entries {
		p := filepath.Join(dir, e.Name())
		// RemoveAll unlinks symlinks rather than following them.
		if err := os.RemoveAll(p); err != nil {
			return fmt.Errorf("clear report dir %s: remove %s: %w", dir, e.Name(), err)
		}
	}
	return nil
}

// Write serializes res as tab-delimited text (header row of column names, no
// index column) into dir/fileName, creating intermediate directories as
// needed and overwriting any existing file of the same name.
func Write(res *tabular.Result, dir, fileName string) (WriteResult, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return WriteResult{}, fmt.Errorf("create report dir %s: %w", dir, err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = '\t'

	if err := w.Write(res.Columns); err != nil {
		return WriteResult{}, fmt.Errorf("serialize report %s: %w", fileName, err)
	}
	record := make([]string, len(res.Columns))
	for _, row := range res.Rows {
		for i, v := range row {
			record[i] = formatValue(v)
		}
		if err := w.Write(record); err != nil {
			return WriteResult{}, fmt.Errorf("serialize report %s: %w", fileName, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return WriteResult{}, fmt.Errorf("serialize report %s: %w", fileName, err)
	}

	path := filepath.Join(dir, fileName)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return WriteResult{}, fmt.Errorf("write report %s: %w", path, err)
	}

	return WriteResult{
		Path:     path,
		Rows:     res.Len(),
		Checksum: xxh3.Hash(buf.Bytes()),
	}, nil
}

// formatValue renders a scalar query value as report text. NULLs become the
// empty string; everything else uses a compact, locale-independent form.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", x)
	}
}
