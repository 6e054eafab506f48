// Package augment is the join-and-repair pipeline: it reads the
// games_<division>.csv summary table and the stat_<division>.csv
// statistics table, resolves every foreign key through the reference
// providers, correlates the two tables by composite match key, and emits
// one flat analysis-ready row per singles match.
//
// A run is three sequential stages over fully in-memory state:
//
//	LOAD_SUMMARIES  resolve and repair summary rows, in file order
//	LOAD_STATS      build and validate statistics, joined by key
//	MERGE_AND_WRITE emit rows, asserting column parity on every one
//
// Failure policy: anything wrong with one record (unresolvable ID, doubles
// pairing, unparseable score, undatable match) drops that record with a
// diagnostic naming its composite key; the run continues. A row whose
// rendered field count disagrees with the header is a schema defect, not a
// data defect, and aborts the dump (*IntegrityError).
package augment

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"tennisetl/internal/match"
	"tennisetl/internal/metrics"
	parsecsv "tennisetl/internal/parser/csv"
	"tennisetl/internal/refdata"
)

// Logger is the minimal logging interface used by the pipeline.
// *log.Logger satisfies this interface.
type Logger interface {
	Printf(format string, v ...any)
}

// IntegrityError reports an output row whose field count disagrees with
// the header. This guards against a future schema change silently
// producing malformed rows; it always aborts the dump.
type IntegrityError struct {
	HeaderFields int
	RowFields    int
	Key          match.Key
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("augment: header has %d columns but row %s has %d",
		e.HeaderFields, e.Key, e.RowFields)
}

// Positional columns of the summary table. The export's layout is fixed;
// these never move.
const (
	sumWinnerID = iota
	sumLoserID
	sumTourID
	sumRoundID
	sumScore
	sumDate
	summaryMinFields = sumDate + 1
)

// Positional columns of the statistics table, per side, in
// match.ParsePlayerStats order. The receive-point pair sits at the far end
// of the row in the export, hence the jump to 40+.
var (
	winnerStatCols = []int{4, 5, 6, 7, 8, 9, 11, 13, 14, 15, 40, 41, 16, 17, 18, 19, 20, 21}
	loserStatCols  = []int{22, 23, 24, 25, 26, 27, 29, 31, 32, 33, 42, 43, 34, 35, 36, 37, 38, 39}
)

const (
	statDurationCol = 44
	statsMinFields  = statDurationCol + 1
)

// Generator owns all Match and MatchStats state for one division's run.
// Reference providers are shared read-only inputs; the Generator never
// mutates them. Build one per run, call Load, then Dump.
type Generator struct {
	division string

	players *refdata.Players
	tours   *refdata.Tours
	rounds  *refdata.Table

	logger Logger

	// keys preserves original summary-file order; matches and stats are
	// keyed lookups alongside it.
	keys    []match.Key
	matches map[match.Key]*match.Match
	stats   map[match.Key]*match.MatchStats

	// approxDates marks matches whose date was defaulted from the
	// tournament start; their statistics get a "Date" suspect flag.
	approxDates map[match.Key]bool
}

// New builds a Generator over loaded reference providers. logger may be
// nil for silence.
func New(division string, players *refdata.Players, tours *refdata.Tours, rounds *refdata.Table, logger Logger) *Generator {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Generator{
		division:    division,
		players:     players,
		tours:       tours,
		rounds:      rounds,
		logger:      logger,
		matches:     map[match.Key]*match.Match{},
		stats:       map[match.Key]*match.MatchStats{},
		approxDates: map[match.Key]bool{},
	}
}

// Header returns the output header: summary columns, statistics columns,
// trailing MatchKey.
func Header() []string {
	h := match.SummaryHeader()
	h = append(h, match.StatsHeader()...)
	return append(h, "MatchKey")
}

// Load runs LOAD_SUMMARIES then LOAD_STATS over the two source tables.
func (g *Generator) Load(summaries, stats io.Reader) error {
	start := time.Now()
	if err := g.LoadSummaries(summaries); err != nil {
		return err
	}
	g.logger.Printf("stage=load_summaries ok duration=%s", durMS(start))

	start = time.Now()
	if err := g.LoadStats(stats); err != nil {
		return err
	}
	g.logger.Printf("stage=load_stats ok duration=%s", durMS(start))
	return nil
}

// LoadSummaries reads the summary table in file order, resolving foreign
// keys and applying the drop/fallback rules. Every skip is logged with the
// composite key so the source row can be found again.
func (g *Generator) LoadSummaries(r io.Reader) error {
	opt := parsecsv.Options{
		TrimSpace:  true,
		LazyQuotes: true,
		OnError: func(line int, err error) {
			g.logger.Printf("WARN: summary record %d unreadable: %v", line, err)
		},
	}

	total := 0
	err := parsecsv.StreamRows(r, opt, true, func(line int, fields []string) error {
		total++
		g.loadSummaryRow(line, fields)
		return nil
	})
	if err != nil {
		return fmt.Errorf("augment: load summaries: %w", err)
	}

	loaded := len(g.keys)
	pct := 0.0
	if total > 0 {
		pct = float64(loaded) * 100.0 / float64(total)
	}
	g.logger.Printf("augment: loaded %d/%d (%.1f%%) matches for %s", loaded, total, pct, g.division)
	metrics.IncCounter("augment_summary_rows_total", float64(total), "division:"+g.division)
	metrics.IncCounter("augment_matches_loaded_total", float64(loaded), "division:"+g.division)
	return nil
}

func (g *Generator) loadSummaryRow(line int, fields []string) {
	skip := func(key match.Key, reason string, v ...any) {
		g.logger.Printf("WARN: skipping match %s: %s", key, fmt.Sprintf(reason, v...))
		metrics.IncCounter("augment_records_skipped_total", 1, "division:"+g.division, "table:summary")
	}

	if len(fields) < summaryMinFields {
		g.logger.Printf("WARN: summary record %d has %d fields, need %d; skipped",
			line, len(fields), summaryMinFields)
		metrics.IncCounter("augment_records_skipped_total", 1, "division:"+g.division, "table:summary")
		return
	}

	key, err := match.NewKey(fields[sumWinnerID], fields[sumLoserID], fields[sumTourID], fields[sumRoundID])
	if err != nil {
		g.logger.Printf("WARN: summary record %d: %v; skipped", line, err)
		metrics.IncCounter("augment_records_skipped_total", 1, "division:"+g.division, "table:summary")
		return
	}
	if _, dup := g.matches[key]; dup {
		skip(key, "duplicate summary row")
		return
	}

	tour, err := g.tours.TourInfo(fields[sumTourID])
	if err != nil {
		skip(key, "unknown tournament: %v", err)
		return
	}
	round, err := g.rounds.Resolve(fields[sumRoundID])
	if err != nil {
		skip(key, "unknown round: %v", err)
		return
	}
	winner, err := g.players.PlayerInfo(fields[sumWinnerID])
	if err != nil {
		skip(key, "incomplete winner info: %v", err)
		return
	}
	loser, err := g.players.PlayerInfo(fields[sumLoserID])
	if err != nil {
		skip(key, "incomplete loser info: %v", err)
		return
	}

	// Doubles pairings share one dictionary entry per pair, names joined
	// by the separator. Doubles matches are always excluded.
	if isPairing(winner.Name) && isPairing(loser.Name) {
		skip(key, "doubles match")
		return
	}

	rawDate := fields[sumDate]
	dateApprox := false
	if rawDate == "" {
		if tour.Date == "" {
			skip(key, "no match or tournament date")
			return
		}
		rawDate = tour.Date
		dateApprox = true
		g.logger.Printf("INFO: match date for %s missing, using tournament date %s", key, rawDate)
	}

	m, err := match.New(winner, loser, tour, round, fields[sumScore], rawDate, dateApprox)
	if err != nil {
		skip(key, "%v", err)
		return
	}
	if !m.Valid() {
		skip(key, "incomplete match attributes")
		return
	}

	g.keys = append(g.keys, key)
	g.matches[key] = m
	if dateApprox {
		g.approxDates[key] = true
	}
}

// LoadStats reads the statistics table, building and validating a
// MatchStats per composite key. Statistics with no corresponding summary
// are silently ignored; summaries with no statistics keep their place and
// get the placeholder block at dump time.
func (g *Generator) LoadStats(r io.Reader) error {
	opt := parsecsv.Options{
		TrimSpace:  true,
		LazyQuotes: true,
		OnError: func(line int, err error) {
			g.logger.Printf("WARN: stats record %d unreadable: %v", line, err)
		},
	}

	err := parsecsv.StreamRows(r, opt, true, func(line int, fields []string) error {
		return g.loadStatsRow(line, fields)
	})
	if err != nil {
		return fmt.Errorf("augment: load stats: %w", err)
	}

	g.logger.Printf("augment: loaded %d stats for %s", len(g.stats), g.division)
	metrics.IncCounter("augment_stats_loaded_total", float64(len(g.stats)), "division:"+g.division)
	return nil
}

func (g *Generator) loadStatsRow(line int, fields []string) error {
	if len(fields) < statsMinFields {
		g.logger.Printf("WARN: stats record %d has %d fields, need %d; skipped",
			line, len(fields), statsMinFields)
		metrics.IncCounter("augment_records_skipped_total", 1, "division:"+g.division, "table:stats")
		return nil
	}

	key, err := match.NewKey(fields[0], fields[1], fields[2], fields[3])
	if err != nil {
		g.logger.Printf("WARN: stats record %d: %v; skipped", line, err)
		metrics.IncCounter("augment_records_skipped_total", 1, "division:"+g.division, "table:stats")
		return nil
	}
	if _, ok := g.matches[key]; !ok {
		// statistics for a summary we dropped (or never had)
		return nil
	}

	winner, err := match.ParsePlayerStats(pick(fields, winnerStatCols))
	if err != nil {
		return fmt.Errorf("augment: stats record %d (%s): %w", line, key, err)
	}
	loser, err := match.ParsePlayerStats(pick(fields, loserStatCols))
	if err != nil {
		return fmt.Errorf("augment: stats record %d (%s): %w", line, key, err)
	}

	ms := match.NewMatchStats(winner, loser, fields[statDurationCol])
	if g.approxDates[key] {
		ms.AddSuspect("Date")
	}
	// A Validate error here is the repeated-call contract violation: a
	// programming error, never a data condition, so it fails the run.
	if err := ms.Validate(); err != nil {
		return fmt.Errorf("augment: stats for %s: %w", key, err)
	}
	if n := ms.SuspectCount(); n > 0 {
		metrics.IncCounter("augment_suspect_columns_total", float64(n), "division:"+g.division)
	}
	g.stats[key] = ms
	return nil
}

// Dump writes the merged dataset: the fixed header, then one row per
// loaded match in original summary-file order. Returns the number of data
// rows written.
//
// Rows pass through encoding/csv with a buffered writer underneath, so
// output is chunked for I/O efficiency without affecting order. Before any
// row is written its field count is checked against the header's; a
// mismatch aborts with *IntegrityError.
func (g *Generator) Dump(w io.Writer) (int, error) {
	start := time.Now()
	header := Header()

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return 0, fmt.Errorf("augment: write header: %w", err)
	}

	written := 0
	for _, key := range g.keys {
		row, err := g.rowFields(key)
		if err != nil {
			return written, err
		}
		if len(row) != len(header) {
			return written, &IntegrityError{
				HeaderFields: len(header),
				RowFields:    len(row),
				Key:          key,
			}
		}
		if err := cw.Write(row); err != nil {
			return written, fmt.Errorf("augment: write row %s: %w", key, err)
		}
		written++
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return written, fmt.Errorf("augment: flush: %w", err)
	}

	g.logger.Printf("stage=dump ok rows=%d duration=%s", written, durMS(start))
	metrics.IncCounter("augment_rows_written_total", float64(written), "division:"+g.division)
	return written, nil
}

// Rows renders the merged dataset without writing it, in output order,
// one []string per match. Used by the optional database sink; fields are
// identical to the CSV dump's.
func (g *Generator) Rows() ([][]string, error) {
	header := Header()
	rows := make([][]string, 0, len(g.keys))
	for _, key := range g.keys {
		row, err := g.rowFields(key)
		if err != nil {
			return nil, err
		}
		if len(row) != len(header) {
			return nil, &IntegrityError{
				HeaderFields: len(header),
				RowFields:    len(row),
				Key:          key,
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (g *Generator) rowFields(key match.Key) ([]string, error) {
	m := g.matches[key]
	summary, err := m.Fields()
	if err != nil {
		return nil, fmt.Errorf("augment: render %s: %w", key, err)
	}

	row := make([]string, 0, len(summary)+2*match.PlayerStatsCount+3)
	row = append(row, summary...)
	if ms, ok := g.stats[key]; ok {
		row = append(row, ms.Fields()...)
	} else {
		row = append(row, match.PlaceholderStatsFields()...)
	}
	return append(row, key.String()), nil
}

func isPairing(name string) bool {
	return strings.Contains(name, match.DoublesSeparator)
}

func pick(fields []string, idx []int) []string {
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = fields[j]
	}
	return out
}

func durMS(start time.Time) time.Duration { return time.Since(start).Truncate(time.Millisecond) }
