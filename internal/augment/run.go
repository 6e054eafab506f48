package augment

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tennisetl/internal/refdata"
	"tennisetl/internal/storage"
)

// Source file naming convention of the OnCourt export. The player, tour,
// summary, and statistics tables are per division; rounds and courts are
// shared.
const (
	PlayersFilePattern = "players_%s.csv"
	ToursFilePattern   = "tours_%s.csv"
	GamesFilePattern   = "games_%s.csv"
	StatsFilePattern   = "stat_%s.csv"

	RoundsFile = "rounds.csv"
	CourtsFile = "courts.csv"

	// OutFilePattern names the augmented output per division.
	OutFilePattern = "augmented_games_%s.csv"
)

// Dictionary column names in the export.
var (
	DefaultPlayerColumns = refdata.PlayerColumns{ID: "ID_P", Name: "NAME_P", DOB: "DATE_P"}
	DefaultTourColumns   = refdata.TourColumns{ID: "ID_T", Name: "NAME_T", Surface: "ID_C_T", Date: "DATE_T", Country: "COUNTRY_T"}
)

const (
	RoundIDColumn   = "ID_R"
	RoundNameColumn = "NAME_R"
	CourtIDColumn   = "ID_C"
	CourtNameColumn = "NAME_C"
)

// sinkBatchSize bounds one InsertRows call.
const sinkBatchSize = 1000

// RunOptions parameterizes one division's run. Rounds and Courts are the
// shared, already-loaded dictionaries; the per-division providers are
// built and loaded inside Run so divisions share no mutable state.
type RunOptions struct {
	Division  string
	SourceDir string
	OutPath   string

	// Encoding selects input decoding for all source files; see
	// internal/parser/csv.
	Encoding string

	Rounds *refdata.Table
	Courts *refdata.Table

	Logger Logger

	// Sink, when non-nil, additionally receives every output row.
	Sink storage.Sink
}

// Run executes one full division run: load the per-division dictionaries,
// join the summary and statistics tables, dump the augmented CSV, and
// optionally load the rows into the sink.
func Run(ctx context.Context, opts RunOptions) error {
	start := time.Now()

	players := refdata.NewPlayers(
		filepath.Join(opts.SourceDir, fmt.Sprintf(PlayersFilePattern, opts.Division)),
		DefaultPlayerColumns)
	players.Encoding = opts.Encoding
	players.Logger = opts.Logger
	if err := players.Load(); err != nil {
		return fmt.Errorf("augment: %s: %w", opts.Division, err)
	}

	tours := refdata.NewTours(
		filepath.Join(opts.SourceDir, fmt.Sprintf(ToursFilePattern, opts.Division)),
		DefaultTourColumns, opts.Courts)
	tours.Encoding = opts.Encoding
	tours.Logger = opts.Logger
	if err := tours.Load(); err != nil {
		return fmt.Errorf("augment: %s: %w", opts.Division, err)
	}

	g := New(opts.Division, players, tours, opts.Rounds, opts.Logger)

	summaries, err := os.Open(filepath.Join(opts.SourceDir, fmt.Sprintf(GamesFilePattern, opts.Division)))
	if err != nil {
		return fmt.Errorf("augment: %s: %w", opts.Division, err)
	}
	defer summaries.Close()

	stats, err := os.Open(filepath.Join(opts.SourceDir, fmt.Sprintf(StatsFilePattern, opts.Division)))
	if err != nil {
		return fmt.Errorf("augment: %s: %w", opts.Division, err)
	}
	defer stats.Close()

	if err := g.Load(summaries, stats); err != nil {
		return err
	}

	out, err := os.Create(opts.OutPath)
	if err != nil {
		return fmt.Errorf("augment: %s: %w", opts.Division, err)
	}
	written, err := g.Dump(out)
	if err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("augment: close %s: %w", opts.OutPath, err)
	}

	if opts.Sink != nil {
		if err := loadSink(ctx, opts.Sink, g); err != nil {
			return err
		}
	}

	if opts.Logger != nil {
		opts.Logger.Printf("stage=division_%s ok rows=%d duration=%s",
			opts.Division, written, durMS(start))
	}
	return nil
}

// loadSink pushes the merged rows into the database sink in bounded
// batches.
func loadSink(ctx context.Context, sink storage.Sink, g *Generator) error {
	columns := storage.ColumnNames(Header())
	if err := sink.EnsureTable(ctx, columns); err != nil {
		return fmt.Errorf("augment: sink: %w", err)
	}

	rows, err := g.Rows()
	if err != nil {
		return err
	}

	var total int64
	for start := 0; start < len(rows); start += sinkBatchSize {
		end := start + sinkBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		n, err := sink.InsertRows(ctx, columns, rows[start:end])
		total += n
		if err != nil {
			return fmt.Errorf("augment: sink insert: %w", err)
		}
	}

	g.logger.Printf("stage=sink ok rows=%d", total)
	return nil
}
