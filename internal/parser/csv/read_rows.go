// Package csv reads the OnCourt export files row by row.
//
// Two access modes:
//   - StreamRows: positional fields, for the summary and statistics tables
//     whose layout is fixed by the export.
//   - StreamNamedRows: fields resolved by header column NAME (never by
//     position), for the dictionary tables whose column order is not
//     guaranteed.
//
// Both modes strip a UTF-8 BOM off the first header cell, optionally trim
// edge whitespace, and can decode Windows-1252 input (the export comes
// from a Windows toolchain; accented player names are not UTF-8).
//
// This is a bounded, sequential batch reader: each run fits in memory and
// rows are handed to a callback in file order. Malformed records go to the
// OnError hook (when set) and are skipped; without a hook they fail the
// read.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// EncodingCP1252 selects Windows-1252 input decoding in Options.Encoding.
const EncodingCP1252 = "cp1252"

// Options tunes the reader. The zero value reads comma-separated UTF-8
// without trimming.
type Options struct {
	// Comma is the field delimiter; 0 means ','.
	Comma rune
	// TrimSpace trims edge whitespace from every field.
	TrimSpace bool
	// LazyQuotes tolerates stray quotes inside fields, which the OnCourt
	// export produces.
	LazyQuotes bool
	// Encoding is "" (UTF-8 passthrough) or EncodingCP1252.
	Encoding string
	// OnError, when non-nil, receives per-record read errors; the record
	// is skipped and the stream continues. When nil a record error ends
	// the stream.
	OnError func(line int, err error)
}

// RowFunc receives one row. line is the 1-based record number including
// the header. The fields slice is reused between calls; copy any value
// that must outlive the call. A non-nil return stops the stream and is
// returned as-is.
type RowFunc func(line int, fields []string) error

// MissingColumnsError reports header columns StreamNamedRows could not
// locate. Reference providers wrap it into their fatal header error.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("csv: header is missing columns %v", e.Columns)
}

// StreamRows reads positional rows, skipping the header record when
// skipHeader is set.
func StreamRows(r io.Reader, opt Options, skipHeader bool, fn RowFunc) error {
	cr, line := newReader(r, opt)

	if skipHeader {
		*line++
		if _, err := cr.Read(); err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("csv: read header: %w", err)
		}
	}

	for {
		*line++
		rec, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			if opt.OnError != nil {
				opt.OnError(*line, fmt.Errorf("csv read: %w", err))
				continue
			}
			return fmt.Errorf("csv: record %d: %w", *line, err)
		}
		if err := fn(*line, cleanFields(rec, opt)); err != nil {
			return err
		}
	}
}

// StreamNamedRows locates the wanted columns in the header by exact name
// and passes each row's values to fn in wanted order. A column absent from
// the row yields "". Columns absent from the header fail the stream with
// *MissingColumnsError before any row is delivered.
func StreamNamedRows(r io.Reader, columns []string, opt Options, fn RowFunc) error {
	cr, line := newReader(r, opt)

	*line++
	hdr, err := cr.Read()
	if err != nil {
		return fmt.Errorf("csv: read header: %w", err)
	}

	srcIdx := make(map[string]int, len(hdr))
	for i, h := range hdr {
		if opt.TrimSpace {
			h = strings.TrimSpace(h)
		}
		if i == 0 {
			h = strings.TrimPrefix(h, "\uFEFF")
		}
		srcIdx[h] = i
	}

	colIx := make([]int, len(columns))
	var missing []string
	for i, want := range columns {
		si, ok := srcIdx[want]
		if !ok {
			missing = append(missing, want)
			si = -1
		}
		colIx[i] = si
	}
	if len(missing) > 0 {
		return &MissingColumnsError{Columns: missing}
	}

	out := make([]string, len(columns))
	for {
		*line++
		rec, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			if opt.OnError != nil {
				opt.OnError(*line, fmt.Errorf("csv read: %w", err))
				continue
			}
			return fmt.Errorf("csv: record %d: %w", *line, err)
		}
		rec = cleanFields(rec, opt)
		for i, si := range colIx {
			if si >= len(rec) {
				out[i] = ""
				continue
			}
			out[i] = rec[si]
		}
		if err := fn(*line, out); err != nil {
			return err
		}
	}
}

func newReader(r io.Reader, opt Options) (*csv.Reader, *int) {
	if opt.Encoding == EncodingCP1252 {
		r = transform.NewReader(r, charmap.Windows1252.NewDecoder())
	}
	cr := csv.NewReader(r)
	if opt.Comma != 0 {
		cr.Comma = opt.Comma
	}
	cr.ReuseRecord = true
	cr.LazyQuotes = opt.LazyQuotes
	cr.FieldsPerRecord = -1
	line := 0
	return cr, &line
}

func cleanFields(rec []string, opt Options) []string {
	if !opt.TrimSpace {
		return rec
	}
	for i, v := range rec {
		if hasEdgeSpace(v) {
			rec[i] = strings.TrimSpace(v)
		}
	}
	return rec
}

// hasEdgeSpace avoids TrimSpace allocations on the common already-clean
// case.
func hasEdgeSpace(s string) bool {
	if s == "" {
		return false
	}
	return s[0] == ' ' || s[0] == '\t' || s[len(s)-1] == ' ' || s[len(s)-1] == '\t'
}
