// Package tables manages the lifecycle of the destination summary tables.
//
// A reset returns every destination table to an empty state matching its
// declared schema: all drop scripts run first (in config order) in one
// committed transaction, then all create scripts (in config order) in a
// second committed transaction. Running drops as a complete phase avoids a
// half-reset schema where a later create could observe a partially dropped
// earlier table, and keeps the failure story simple: if the drop phase
// fails, no create has run yet.
//
// The two phases are atomic within themselves but not across each other: a
// failure in the create phase does not roll back the committed drops. A
// stale or missing table left behind by an aborted reset is recovered by
// simply re-running the pipeline.
package tables

import (
	"context"
	"fmt"
	"log"

	"sakilaetl/internal/config"
	"sakilaetl/internal/scripts"
	"sakilaetl/internal/storage"
)

// Manager resets destination tables through its own database sessions.
type Manager struct {
	open storage.Factory
}

// NewManager returns a Manager that acquires sessions from open.
func NewManager(open storage.Factory) *Manager {
	return &Manager{open: open}
}

// Reset drops and recreates every table in specs. All scripts are loaded
// before any statement executes, so a missing or empty script file aborts
// the reset without touching the database. The session is released on every
// exit path.
func (m *Manager) Reset(ctx context.Context, specs []config.TableSpec) error {
	if len(specs) == 0 {
		return fmt.Errorf("reset tables: no table specs configured")
	}

	drops := make([]string, 0, len(specs))
	creates := make([]string, 0, len(specs))
	for _, s := range specs {
		d, err := scripts.Load(s.DropScript)
		if err != nil {
			return fmt.Errorf("reset tables: table %s: %w", s.Name, err)
		}
		c, err := scripts.Load(s.CreateScript)
		if err != nil {
			return fmt.Errorf("reset tables: table %s: %w", s.Name, err)
		}
		drops = append(drops, d)
		creates = append(creates, c)
	}

	repo, err := m.open(ctx)
	if err != nil {
		return fmt.Errorf("reset tables: %w", err)
	}
	defer repo.Close()

	if err := repo.ExecBatch(ctx, drops); err != nil {
		return fmt.Errorf("reset tables: drop phase: %w", err)
	}
	if err := repo.ExecBatch(ctx, creates); err != nil {
		return fmt.Errorf("reset tables: create phase: %w", err)
	}

	for _, s := range specs {
		log.Printf("tables: reset %s", s.Name)
	}
	return nil
}
