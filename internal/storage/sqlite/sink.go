package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"tennisetl/internal/storage"
)

// maxBindVars keeps multi-row inserts under SQLite's default host
// parameter limit (999 in older builds).
const maxBindVars = 900

// Sink implements storage.Sink for SQLite via the CGo-free modernc
// driver. Handy for local analysis: one file, no server.
type Sink struct {
	db    *sql.DB
	table string
}

func init() {
	storage.Register("sqlite", New)
}

// New creates a SQLite-backed sink.
func New(ctx context.Context, cfg storage.Config) (storage.Sink, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	return &Sink{db: db, table: cfg.Table}, nil
}

// Close closes the database handle.
func (s *Sink) Close() { _ = s.db.Close() }

// EnsureTable creates the destination table if needed. SQLite gives every
// column TEXT affinity here, which matches the CSV-mirroring contract.
func (s *Sink) EnsureTable(ctx context.Context, columns []string) error {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(quoteIdent(s.table))
	b.WriteString(" (")
	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quoteIdent(c))
		b.WriteString(" TEXT")
	}
	b.WriteString(")")

	if _, err := s.db.ExecContext(ctx, b.String()); err != nil {
		return fmt.Errorf("sqlite: create table %s: %w", s.table, err)
	}
	return nil
}

// InsertRows appends rows with chunked multi-row INSERTs inside one
// transaction per call.
func (s *Sink) InsertRows(ctx context.Context, columns []string, rows [][]string) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	chunkRows := maxBindVars / len(columns)
	if chunkRows < 1 {
		chunkRows = 1
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var total int64
	for start := 0; start < len(rows); start += chunkRows {
		end := start + chunkRows
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]

		sqlText, args := buildInsert(s.table, columns, chunk)
		res, err := tx.ExecContext(ctx, sqlText, args...)
		if err != nil {
			return total, fmt.Errorf("sqlite: insert into %s: %w", s.table, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			total += n
		}
	}

	if err := tx.Commit(); err != nil {
		return total, fmt.Errorf("sqlite: commit: %w", err)
	}
	return total, nil
}

func buildInsert(table string, columns []string, rows [][]string) (string, []any) {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(quoteIdent(table))
	b.WriteString(" (")
	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quoteIdent(c))
	}
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for j, v := range row {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteByte('?')
			args = append(args, v)
		}
		b.WriteByte(')')
	}
	return b.String(), args
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
