// Package pipeline runs a configured summary job end to end: clear the
// report directory, reset destination tables, then execute each query
// spec and deliver its result to the database and the report sink.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"sakilaetl/internal/config"
	"sakilaetl/internal/dbsink"
	"sakilaetl/internal/metrics"
	"sakilaetl/internal/query"
	"sakilaetl/internal/report"
	"sakilaetl/internal/storage"
	"sakilaetl/internal/tables"
)

// SpecResult records the outcome of one query spec.
type SpecResult struct {
	Name     string
	Rows     int
	Checksum uint64
	Err      error
}

// Summary is the outcome of a full run.
type Summary struct {
	RunID     string
	Completed []SpecResult
	Failed    []SpecResult
	Elapsed   time.Duration
}

// OK reports whether every spec completed.
func (s Summary) OK() bool { return len(s.Failed) == 0 }

// Runner executes a pipeline configuration.
type Runner struct {
	cfg  config.Pipeline
	open storage.Factory
}

func NewRunner(cfg config.Pipeline) *Runner {
	return &Runner{
		cfg: cfg,
		open: storage.FactoryFor(storage.Config{
			Kind: cfg.Storage.Kind,
			DSN:  cfg.Storage.DB.DSN,
		}),
	}
}

// Run executes the job. The setup stages are fatal: a failure clearing
// the report directory or resetting the destination tables aborts the
// run before any query executes. Query specs are isolated from each
// other; a failing spec is recorded and the run moves on.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	sum := Summary{RunID: uuid.NewString()}
	log.Printf("pipeline: job=%s run=%s specs=%d", r.cfg.Job, sum.RunID, len(r.cfg.Queries))

	if err := r.clearReports(); err != nil {
		sum.Elapsed = time.Since(start)
		return sum, err
	}
	if err := r.resetTables(ctx); err != nil {
		sum.Elapsed = time.Since(start)
		return sum, err
	}

	exec := query.NewExecutor(r.open)
	sink := dbsink.NewWriter(r.open)
	for _, spec := range r.cfg.Queries {
		res := r.runSpec(ctx, exec, sink, spec)
		if res.Err != nil {
			log.Printf("pipeline: spec=%s failed: %v", spec.Name, res.Err)
			sum.Failed = append(sum.Failed, res)
			continue
		}
		log.Printf("pipeline: spec=%s rows=%d checksum=%016x", spec.Name, res.Rows, res.Checksum)
		sum.Completed = append(sum.Completed, res)
	}

	sum.Elapsed = time.Since(start)
	log.Printf("pipeline: job=%s done completed=%d failed=%d elapsed=%s",
		r.cfg.Job, len(sum.Completed), len(sum.Failed), sum.Elapsed.Round(time.Millisecond))
	if !sum.OK() {
		return sum, fmt.Errorf("pipeline: %d of %d specs failed", len(sum.Failed), len(r.cfg.Queries))
	}
	return sum, nil
}

func (r *Runner) clearReports() error {
	t := time.Now()
	err := report.Clear(r.cfg.Reports.Dir)
	metrics.RecordStage(r.cfg.Job, "clear_output", err, time.Since(t))
	if err != nil {
		return fmt.Errorf("pipeline: clear report directory: %w", err)
	}
	return nil
}

func (r *Runner) resetTables(ctx context.Context) error {
	t := time.Now()
	err := tables.NewManager(r.open).Reset(ctx, r.cfg.Tables)
	metrics.RecordStage(r.cfg.Job, "reset_tables", err, time.Since(t))
	if err != nil {
		return fmt.Errorf("pipeline: reset tables: %w", err)
	}
	return nil
}

// runSpec carries one query spec through its three stages. The same
// result instance feeds both the database sink and the report file.
func (r *Runner) runSpec(ctx context.Context, exec *query.Executor, sink *dbsink.Writer, spec config.QuerySpec) SpecResult {
	out := SpecResult{Name: spec.Name}

	t := time.Now()
	res, err := exec.Run(ctx, spec)
	metrics.RecordStage(r.cfg.Job, "query:"+spec.Name, err, time.Since(t))
	if err != nil {
		out.Err = fmt.Errorf("run query: %w", err)
		return out
	}
	metrics.RecordRows(r.cfg.Job, "fetched", int64(res.Len()))

	t = time.Now()
	n, err := sink.Write(ctx, res, spec.Table)
	metrics.RecordStage(r.cfg.Job, "write_db:"+spec.Name, err, time.Since(t))
	if err != nil {
		out.Err = fmt.Errorf("write db: %w", err)
		return out
	}
	metrics.RecordRows(r.cfg.Job, "inserted", n)

	t = time.Now()
	wr, err := report.Write(res, r.cfg.Reports.Dir, spec.ReportFile)
	metrics.RecordStage(r.cfg.Job, "write_file:"+spec.Name, err, time.Since(t))
	if err != nil {
		out.Err = fmt.Errorf("write file: %w", err)
		return out
	}
	metrics.RecordRows(r.cfg.Job, "reported", int64(wr.Rows))

	out.Rows = res.Len()
	out.Checksum = wr.Checksum
	return out
}
