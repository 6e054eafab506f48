package augment

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tennisetl/internal/refdata"
)

type fakeSink struct {
	columns []string
	rows    [][]string
	inserts int
	closed  bool
}

func (s *fakeSink) EnsureTable(_ context.Context, columns []string) error {
	s.columns = columns
	return nil
}

func (s *fakeSink) InsertRows(_ context.Context, _ []string, rows [][]string) (int64, error) {
	s.inserts++
	s.rows = append(s.rows, rows...)
	return int64(len(rows)), nil
}

func (s *fakeSink) Close() { s.closed = true }

func TestRunEndToEnd(t *testing.T) {
	srcDir := t.TempDir()
	write := func(name, content string) {
		if err := os.WriteFile(filepath.Join(srcDir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	write("players_atp.csv", playersCSV)
	write("tours_atp.csv", toursCSV)
	write("rounds.csv", roundsCSV)
	write("courts.csv", courtsCSV)
	write("games_atp.csv", summaryCSV(
		"1,2,10,7,6-4 3-6 7-6(4),07/06/14 00:00:00",
		"3,1,11,8,6-4 6-4,06/06/14 00:00:00",
	))
	write("stat_atp.csv", statsCSV(statsRow("1", "2", "10", "7", "01:32:00")))

	rounds := refdata.NewTable(filepath.Join(srcDir, RoundsFile), RoundIDColumn, RoundNameColumn)
	if err := rounds.Load(); err != nil {
		t.Fatalf("rounds: %v", err)
	}
	courts := refdata.NewTable(filepath.Join(srcDir, CourtsFile), CourtIDColumn, CourtNameColumn)
	if err := courts.Load(); err != nil {
		t.Fatalf("courts: %v", err)
	}

	outPath := filepath.Join(t.TempDir(), "augmented_games_atp.csv")
	sink := &fakeSink{}
	logger := &captureLogger{}

	err := Run(context.Background(), RunOptions{
		Division:  "atp",
		SourceDir: srcDir,
		OutPath:   outPath,
		Rounds:    rounds,
		Courts:    courts,
		Logger:    logger,
		Sink:      sink,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	out, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("output has %d lines, want header + 2 rows", len(lines))
	}
	if !strings.HasPrefix(lines[0], "WName,") {
		t.Errorf("header starts %q", lines[0])
	}

	// The sink sees the same rows the CSV got, with sanitized column names.
	if len(sink.rows) != 2 {
		t.Fatalf("sink received %d rows, want 2", len(sink.rows))
	}
	if sink.inserts != 1 {
		t.Errorf("sink saw %d batches, want 1", sink.inserts)
	}
	if len(sink.columns) != 56 || sink.columns[0] != "wname" || sink.columns[55] != "matchkey" {
		t.Errorf("sink columns wrong: first=%q last=%q n=%d",
			sink.columns[0], sink.columns[len(sink.columns)-1], len(sink.columns))
	}
	if got := sink.rows[0][len(sink.rows[0])-1]; got != "1/2/10/7" {
		t.Errorf("sink row key = %q", got)
	}

	if !logger.contains("stage=division_atp ok") {
		t.Errorf("missing division stage log: %v", logger.lines)
	}
}

func TestRunMissingSourceFile(t *testing.T) {
	srcDir := t.TempDir()
	write := func(name, content string) {
		if err := os.WriteFile(filepath.Join(srcDir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	write("rounds.csv", roundsCSV)
	write("courts.csv", courtsCSV)

	rounds := refdata.NewTable(filepath.Join(srcDir, RoundsFile), RoundIDColumn, RoundNameColumn)
	if err := rounds.Load(); err != nil {
		t.Fatalf("rounds: %v", err)
	}
	courts := refdata.NewTable(filepath.Join(srcDir, CourtsFile), CourtIDColumn, CourtNameColumn)
	if err := courts.Load(); err != nil {
		t.Fatalf("courts: %v", err)
	}

	err := Run(context.Background(), RunOptions{
		Division:  "atp",
		SourceDir: srcDir,
		OutPath:   filepath.Join(t.TempDir(), "out.csv"),
		Rounds:    rounds,
		Courts:    courts,
	})
	if err == nil {
		t.Fatal("expected an error when players_atp.csv is absent")
	}
	if !strings.Contains(err.Error(), "atp") {
		t.Errorf("error %q does not name the division", err)
	}
}
