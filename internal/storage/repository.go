// Package storage contains the storage-agnostic database contracts and the
// backend factory.
//
// Concrete backends (mssql, postgres, mysql, sqlite) live in subpackages and
// register themselves with the factory at init time; importing
// sakilaetl/internal/storage/all (even blankly) makes every built-in backend
// available. The rest of the application depends only on the Repository
// interface and never imports database drivers directly.
package storage

import (
	"context"
	"fmt"
	"sync"
)

// Repository is one open database session. Components acquire a Repository,
// use it for a single operation (a reset phase, a query, a table load), and
// release it with Close on every exit path.
type Repository interface {
	// Exec executes a single statement (typically DDL) with implicit commit.
	Exec(ctx context.Context, stmt string) error

	// ExecBatch executes the statements in order inside one transaction and
	// commits once. If any statement fails, the transaction is rolled back
	// and none of the batch's effects persist.
	ExecBatch(ctx context.Context, stmts []string) error

	// Query executes the query text and fetches every row eagerly. Each row
	// carries the driver's natural column arity; callers validate it against
	// their declared schema.
	Query(ctx context.Context, query string) ([][]any, error)

	// InsertRows inserts the rows into table using a parameterized positional
	// INSERT per row, all inside one transaction committed at the end. A
	// failed row aborts the whole load, leaving the table as it was. Returns
	// the number of rows inserted.
	InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)

	// Close releases the session.
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	// Kind names a registered backend: "mssql", "postgres", "mysql", "sqlite".
	Kind string

	// DSN is the backend-specific connection string.
	DSN string
}

// OpenFn opens one Repository for a backend. Implementations should fail
// fast on unreachable databases (ping) so a broken connection surfaces at
// acquisition time, not mid-operation.
type OpenFn func(ctx context.Context, cfg Config) (Repository, error)

var (
	regMu    sync.RWMutex
	backends = map[string]OpenFn{}
)

// Register registers (or replaces) the OpenFn for a storage kind. It is
// typically called from backend packages' init() functions.
func Register(kind string, fn OpenFn) {
	regMu.Lock()
	defer regMu.Unlock()
	backends[kind] = fn
}

// New opens a Repository for cfg.Kind using the registered backend.
func New(ctx context.Context, cfg Config) (Repository, error) {
	regMu.RLock()
	fn, ok := backends[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no storage backend registered for kind=%q (missing import of storage/all?)", cfg.Kind)
	}
	repo, err := fn(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Kind, err)
	}
	return repo, nil
}

// Factory mints a fresh Repository per call. Pipeline components hold a
// Factory rather than a shared session so that every operation acquires and
// releases its own connection deterministically.
type Factory func(ctx context.Context) (Repository, error)

// FactoryFor returns a Factory bound to cfg.
func FactoryFor(cfg Config) Factory {
	return func(ctx context.Context) (Repository, error) {
		return New(ctx, cfg)
	}
}
