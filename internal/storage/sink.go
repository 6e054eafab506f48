// Package storage lets a run load the augmented dataset into a database
// table in addition to the CSV dump. Backends register themselves under a
// kind string; the CLI picks one by config.
//
// The sink is deliberately dumb: every column is text, exactly mirroring
// the CSV output, because the CSV file remains the system of record and
// the table exists for ad-hoc querying.
package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Config is the minimal configuration needed to create a sink.
type Config struct {
	// Kind must match a registered backend kind ("postgres", "sqlite",
	// "mssql").
	Kind string
	// DSN is passed through to the backend; validation is backend-specific.
	DSN string
	// Table is the destination table name.
	Table string
}

// Sink receives augmented output rows.
type Sink interface {
	// EnsureTable creates the destination table if needed. columns are
	// already sanitized identifiers; all of them are text.
	EnsureTable(ctx context.Context, columns []string) error

	// InsertRows appends rows. Every row has exactly len(columns) fields;
	// the pipeline guarantees that with the same integrity check used for
	// the CSV dump.
	InsertRows(ctx context.Context, columns []string, rows [][]string) (int64, error)

	// Close releases backend resources. Call once at end of run.
	Close()
}

type factory func(ctx context.Context, cfg Config) (Sink, error)

var (
	mu        sync.RWMutex
	factories = map[string]factory{}
)

// Register registers a sink backend under a kind. Call from an init()
// function in a backend package. Registering the same kind twice panics:
// fail fast rather than allow ambiguous backend selection.
func Register(kind string, f factory) {
	if kind == "" {
		panic("storage: Register called with empty kind")
	}
	if f == nil {
		panic("storage: Register called with nil factory")
	}
	mu.Lock()
	defer mu.Unlock()
	if _, dup := factories[kind]; dup {
		panic("storage: Register called twice for kind " + kind)
	}
	factories[kind] = f
}

// New creates a sink for cfg.Kind.
func New(ctx context.Context, cfg Config) (Sink, error) {
	if cfg.Kind == "" {
		return nil, fmt.Errorf("storage: kind is required")
	}
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unsupported kind %q", cfg.Kind)
	}
	return f(ctx, cfg)
}

// Kinds returns the registered backend kinds, for error messages and
// flag help.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	kinds := make([]string, 0, len(factories))
	for k := range factories {
		kinds = append(kinds, k)
	}
	return kinds
}

// ColumnNames converts output header names to safe SQL identifiers:
// lower-cased, with every non-alphanumeric rune replaced by '_', and a
// leading underscore when the name would start with a digit.
func ColumnNames(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		var b strings.Builder
		for _, r := range strings.ToLower(h) {
			switch {
			case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
				b.WriteRune(r)
			default:
				b.WriteByte('_')
			}
		}
		name := b.String()
		if name == "" || (name[0] >= '0' && name[0] <= '9') {
			name = "_" + name
		}
		out[i] = name
	}
	return out
}
