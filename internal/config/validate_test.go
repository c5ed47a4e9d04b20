package config

import (
	"strings"
	"testing"
)

// validPipeline returns a Pipeline that passes validation; tests mutate one
// field at a time to exercise individual checks.
func validPipeline() Pipeline {
	return Pipeline{
		Job:     "sakila_summaries",
		Storage: Storage{Kind: "sqlite", DB: DBConfig{DSN: "file:etl.db"}},
		Reports: Reports{Dir: "reports"},
		Tables: []TableSpec{
			{
				Name:         "payment_summary_table",
				DropScript:   "sql/table_management/drop_payment_summary_table.sql",
				CreateScript: "sql/table_management/create_payment_summary_table.sql",
			},
		},
		Queries: []QuerySpec{
			{
				Name:       "payments",
				Script:     "sql/queries/payments.sql",
				Table:      "payment_summary_table",
				ReportFile: "payment_summary.txt",
				Columns:    []string{"Records", "Minimum", "Maximum", "Total", "Average"},
			},
		},
	}
}

func findIssue(issues []Issue, pathPrefix string) *Issue {
	for i := range issues {
		if strings.HasPrefix(issues[i].Path, pathPrefix) {
			return &issues[i]
		}
	}
	return nil
}

func TestValidateAcceptsValidPipeline(t *testing.T) {
	t.Parallel()

	issues := Validate(validPipeline())
	if len(issues) != 0 {
		t.Fatalf("Validate returned issues for valid pipeline: %v", issues)
	}
}

func TestValidateRequiredFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Pipeline)
		path    string
		wantSev IssueSeverity
	}{
		{"empty job", func(p *Pipeline) { p.Job = "" }, "job", SeverityError},
		{"empty storage kind", func(p *Pipeline) { p.Storage.Kind = "" }, "storage.kind", SeverityError},
		{"unknown storage kind", func(p *Pipeline) { p.Storage.Kind = "oracle" }, "storage.kind", SeverityWarning},
		{"empty dsn", func(p *Pipeline) { p.Storage.DB.DSN = "" }, "storage.db.dsn", SeverityError},
		{"empty reports dir", func(p *Pipeline) { p.Reports.Dir = "" }, "reports.dir", SeverityError},
		{"no tables", func(p *Pipeline) { p.Tables = nil }, "tables", SeverityError},
		{"no queries", func(p *Pipeline) { p.Queries = nil }, "queries", SeverityError},
		{"empty drop script", func(p *Pipeline) { p.Tables[0].DropScript = "" }, "tables[0].drop_script", SeverityError},
		{"empty query columns", func(p *Pipeline) { p.Queries[0].Columns = nil }, "queries[0].columns", SeverityError},
		{"report file is a path", func(p *Pipeline) { p.Queries[0].ReportFile = "sub/dir.txt" }, "queries[0].report_file", SeverityError},
		{"unreset destination table", func(p *Pipeline) { p.Queries[0].Table = "other_table" }, "queries[0].table", SeverityWarning},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := validPipeline()
			tt.mutate(&p)
			issues := Validate(p)
			iss := findIssue(issues, tt.path)
			if iss == nil {
				t.Fatalf("no issue at %q, got: %v", tt.path, issues)
			}
			if iss.Severity != tt.wantSev {
				t.Errorf("severity = %s, want %s (%v)", iss.Severity, tt.wantSev, iss)
			}
		})
	}
}

func TestValidateDuplicateReportFile(t *testing.T) {
	t.Parallel()

	p := validPipeline()
	dup := p.Queries[0]
	dup.Name = "payments_again"
	p.Queries = append(p.Queries, dup)

	issues := Validate(p)
	iss := findIssue(issues, "queries[1].report_file")
	if iss == nil || iss.Severity != SeverityError {
		t.Fatalf("expected duplicate report_file error, got: %v", issues)
	}
}

func TestHasErrors(t *testing.T) {
	t.Parallel()

	warn := []Issue{{Severity: SeverityWarning, Path: "x", Message: "m"}}
	if HasErrors(warn) {
		t.Error("HasErrors(warnings only) = true")
	}
	if !HasErrors(append(warn, Issue{Severity: SeverityError, Path: "y", Message: "m"})) {
		t.Error("HasErrors with error = false")
	}
}
