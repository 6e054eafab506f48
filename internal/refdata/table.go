// Package refdata loads the OnCourt dictionary tables and resolves opaque
// numeric IDs to attributes.
//
// The building block is Table, a generic single-column ID→value lookup
// that locates its key and value columns by header NAME (never position).
// The player and tournament providers are composed on top of the same
// loader with entity-specific post-processing (date-of-birth parsing,
// court-surface dereferencing).
//
// Failure policy: header and duplicate-key problems are fatal for the
// whole run (the dictionary itself is broken); an unknown ID at resolve
// time is a typed NotFoundError the pipeline downgrades to a per-record
// skip during the join.
package refdata

import (
	"errors"
	"fmt"
	"os"

	parsecsv "tennisetl/internal/parser/csv"
)

// HeaderError means a dictionary file's header lacks a required column.
type HeaderError struct {
	File    string
	Missing []string
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("refdata: %s: header is missing columns %v", e.File, e.Missing)
}

// DuplicateKeyError means the same ID appears twice in a dictionary file.
type DuplicateKeyError struct {
	File string
	Key  string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("refdata: %s: duplicate key %q", e.File, e.Key)
}

// NotFoundError means an ID has no entry in a loaded dictionary.
type NotFoundError struct {
	File string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("refdata: %s: no entry for id %q", e.File, e.ID)
}

// Logger is the minimal logging interface used by providers.
// *log.Logger satisfies it.
type Logger interface {
	Printf(format string, v ...any)
}

// Table is a generic keyed lookup over one dictionary file: one key
// column, one value column, both found by name in the header. Load once,
// then Resolve; a Table is read-only after Load and safe to share across
// pipeline runs.
type Table struct {
	path   string
	keyCol string
	valCol string

	// Encoding selects input decoding; see internal/parser/csv.
	Encoding string

	m map[string]string
}

// NewTable prepares a lookup over the file at path, keyed by keyCol with
// values from valCol.
func NewTable(path, keyCol, valCol string) *Table {
	return &Table{path: path, keyCol: keyCol, valCol: valCol}
}

// Load reads the file and populates the mapping. Rows with an empty key or
// value are ignored (the export pads deleted entries that way).
func (t *Table) Load() error {
	rows, err := loadColumns(t.path, t.keyCol, []string{t.valCol}, t.Encoding)
	if err != nil {
		return err
	}
	t.m = make(map[string]string, len(rows))
	for id, vals := range rows {
		if vals[0] != "" {
			t.m[id] = vals[0]
		}
	}
	return nil
}

// Resolve maps an ID to its value. Unknown IDs produce a *NotFoundError.
func (t *Table) Resolve(id string) (string, error) {
	v, ok := t.m[id]
	if !ok {
		return "", &NotFoundError{File: t.path, ID: id}
	}
	return v, nil
}

// Len reports the number of loaded entries.
func (t *Table) Len() int { return len(t.m) }

// loadColumns reads a dictionary file and returns key → values for the
// requested value columns, all resolved by header name. Rows with an
// empty key are skipped; a repeated key is a *DuplicateKeyError; missing
// header columns are a *HeaderError.
func loadColumns(path, keyCol string, valCols []string, encoding string) (map[string][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("refdata: open %s: %w", path, err)
	}
	defer f.Close()

	columns := append([]string{keyCol}, valCols...)
	opt := parsecsv.Options{TrimSpace: true, LazyQuotes: true, Encoding: encoding}

	out := make(map[string][]string)
	err = parsecsv.StreamNamedRows(f, columns, opt, func(line int, fields []string) error {
		id := fields[0]
		if id == "" {
			return nil
		}
		if _, dup := out[id]; dup {
			return &DuplicateKeyError{File: path, Key: id}
		}
		out[id] = append([]string(nil), fields[1:]...)
		return nil
	})
	if err != nil {
		var missing *parsecsv.MissingColumnsError
		if errors.As(err, &missing) {
			return nil, &HeaderError{File: path, Missing: missing.Columns}
		}
		return nil, err
	}
	return out, nil
}
