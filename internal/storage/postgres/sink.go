package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tennisetl/internal/storage"
)

// Sink implements storage.Sink for Postgres. Rows go in via COPY, which is
// the right shape for a bounded bulk load of an analysis table.
type Sink struct {
	pool  *pgxpool.Pool
	table string
}

func init() {
	storage.Register("postgres", New)
}

// New creates a Postgres-backed sink.
func New(ctx context.Context, cfg storage.Config) (storage.Sink, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &Sink{pool: pool, table: cfg.Table}, nil
}

// Close closes the connection pool.
func (s *Sink) Close() { s.pool.Close() }

// EnsureTable creates the destination table if needed. All columns are
// TEXT; the CSV file remains the typed system of record.
func (s *Sink) EnsureTable(ctx context.Context, columns []string) error {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(pgx.Identifier{s.table}.Sanitize())
	b.WriteString(" (")
	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(pgx.Identifier{c}.Sanitize())
		b.WriteString(" TEXT")
	}
	b.WriteString(")")

	if _, err := s.pool.Exec(ctx, b.String()); err != nil {
		return fmt.Errorf("postgres: create table %s: %w", s.table, err)
	}
	return nil
}

// InsertRows bulk-loads rows with CopyFrom.
func (s *Sink) InsertRows(ctx context.Context, columns []string, rows [][]string) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	src := make([][]any, len(rows))
	for i, row := range rows {
		vals := make([]any, len(row))
		for j, v := range row {
			vals[j] = v
		}
		src[i] = vals
	}

	n, err := s.pool.CopyFrom(ctx, pgx.Identifier{s.table}, columns, pgx.CopyFromRows(src))
	if err != nil {
		return n, fmt.Errorf("postgres: copy into %s: %w", s.table, err)
	}
	return n, nil
}
