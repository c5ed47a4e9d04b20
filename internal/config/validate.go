// Package config provides configuration models and helpers for ETL pipelines.
//
// This file adds a lightweight linter/validator for Pipeline values. It
// performs static checks over a decoded Pipeline and returns a list of issues
// (errors and warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// knownStorageKinds are the storage backends this binary is built with.
// Unknown kinds are warnings (forward compatibility), missing kinds errors.
var knownStorageKinds = map[string]bool{
	"mssql":    true,
	"postgres": true,
	"mysql":    true,
	"sqlite":   true,
}

// Issue describes a single validation/lint finding for a Pipeline.
//
// Path is a dotted path into the config (e.g. "storage.kind",
// "queries[1].columns"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Validate performs static validation / linting of a Pipeline.
//
// It does not mutate the pipeline. Instead it returns a slice of Issue values;
// callers may decide whether to treat warnings as fatal or not.
func Validate(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it is used for metrics labeling and identifying runs",
		})
	}

	issues = append(issues, validateStorage(p.Storage)...)

	if strings.TrimSpace(p.Reports.Dir) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "reports.dir",
			Message:  "reports.dir must not be empty",
		})
	}

	issues = append(issues, validateTables(p.Tables)...)
	issues = append(issues, validateQueries(p.Queries, p.Tables)...)

	return issues
}

func validateStorage(s Storage) []Issue {
	var issues []Issue

	kind := strings.TrimSpace(s.Kind)
	if kind == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  "storage.kind must not be empty",
		})
	} else if !knownStorageKinds[kind] {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; known kinds: mssql, postgres, mysql, sqlite", kind),
		})
	}

	if strings.TrimSpace(s.DB.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.dsn",
			Message:  "storage.db.dsn must not be empty",
		})
	}

	return issues
}

func validateTables(tables []TableSpec) []Issue {
	var issues []Issue

	if len(tables) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "tables",
			Message:  "at least one table reset spec is required",
		})
		return issues
	}

	seen := map[string]int{}
	for i, t := range tables {
		path := fmt.Sprintf("tables[%d]", i)
		if strings.TrimSpace(t.Name) == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: path + ".name", Message: "table name must not be empty"})
		}
		if strings.TrimSpace(t.DropScript) == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: path + ".drop_script", Message: "drop_script must not be empty"})
		}
		if strings.TrimSpace(t.CreateScript) == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: path + ".create_script", Message: "create_script must not be empty"})
		}
		if prev, dup := seen[t.Name]; dup {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".name",
				Message:  fmt.Sprintf("table %q already declared at tables[%d]", t.Name, prev),
			})
		} else {
			seen[t.Name] = i
		}
	}

	return issues
}

func validateQueries(queries []QuerySpec, tables []TableSpec) []Issue {
	var issues []Issue

	if len(queries) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "queries",
			Message:  "at least one query spec is required",
		})
		return issues
	}

	resetTables := map[string]bool{}
	for _, t := range tables {
		resetTables[t.Name] = true
	}

	seenFiles := map[string]int{}
	for i, q := range queries {
		path := fmt.Sprintf("queries[%d]", i)
		if strings.TrimSpace(q.Name) == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: path + ".name", Message: "query name must not be empty"})
		}
		if strings.TrimSpace(q.Script) == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: path + ".script", Message: "script must not be empty"})
		}
		if strings.TrimSpace(q.Table) == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: path + ".table", Message: "destination table must not be empty"})
		} else if len(resetTables) > 0 && !resetTables[q.Table] {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     path + ".table",
				Message:  fmt.Sprintf("destination table %q has no reset spec; it will not be dropped/recreated before loading", q.Table),
			})
		}
		if strings.TrimSpace(q.ReportFile) == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: path + ".report_file", Message: "report_file must not be empty"})
		} else if strings.ContainsAny(q.ReportFile, `/\`) {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".report_file",
				Message:  "report_file must be a bare file name, not a path",
			})
		}
		if len(q.Columns) == 0 {
			issues = append(issues, Issue{Severity: SeverityError, Path: path + ".columns", Message: "at least one output column must be declared"})
		}
		for j, c := range q.Columns {
			if strings.TrimSpace(c) == "" {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     fmt.Sprintf("%s.columns[%d]", path, j),
					Message:  "column name must not be empty",
				})
			}
		}
		if prev, dup := seenFiles[q.ReportFile]; dup && q.ReportFile != "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".report_file",
				Message:  fmt.Sprintf("report file %q already used by queries[%d]; the later write would overwrite it", q.ReportFile, prev),
			})
		} else {
			seenFiles[q.ReportFile] = i
		}
	}

	return issues
}

// HasErrors reports whether any issue in the slice has SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}
