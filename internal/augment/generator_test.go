package augment

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tennisetl/internal/refdata"
)

type captureLogger struct {
	lines []string
}

func (l *captureLogger) Printf(format string, v ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, v...))
}

func (l *captureLogger) contains(substr string) bool {
	for _, line := range l.lines {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

const (
	playersCSV = "ID_P,NAME_P,DATE_P\n" +
		"1,Federer R.,08/08/81 00:00:00\n" +
		"2,Nadal R.,06/03/86 00:00:00\n" +
		"3,Djokovic N.,05/22/87 00:00:00\n" +
		"4,No Birthday,\n" +
		"5,Bryan B./Bryan M.,04/29/78 00:00:00\n" +
		"6,Herbert P./Mahut N.,01/01/82 00:00:00\n"

	toursCSV = "ID_T,NAME_T,ID_C_T,DATE_T,COUNTRY_T\n" +
		"10,Wimbledon,2,06/23/14 00:00:00,Great Britain\n" +
		"11,Roland Garros,1,05/25/14 00:00:00,France\n" +
		"12,Dateless Open,1,,Nowhere\n"

	roundsCSV = "ID_R,NAME_R\n7,Final\n8,Semi-Final\n"
	courtsCSV = "ID_C,NAME_C\n1,Clay\n2,Grass\n"
)

// fixtureRefs loads the reference providers over a temp copy of the
// dictionaries above.
func fixtureRefs(t *testing.T) (*refdata.Players, *refdata.Tours, *refdata.Table) {
	t.Helper()
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return path
	}

	players := refdata.NewPlayers(write("players_atp.csv", playersCSV), DefaultPlayerColumns)
	if err := players.Load(); err != nil {
		t.Fatalf("players: %v", err)
	}

	courts := refdata.NewTable(write("courts.csv", courtsCSV), CourtIDColumn, CourtNameColumn)
	if err := courts.Load(); err != nil {
		t.Fatalf("courts: %v", err)
	}

	tours := refdata.NewTours(write("tours_atp.csv", toursCSV), DefaultTourColumns, courts)
	if err := tours.Load(); err != nil {
		t.Fatalf("tours: %v", err)
	}

	rounds := refdata.NewTable(write("rounds.csv", roundsCSV), RoundIDColumn, RoundNameColumn)
	if err := rounds.Load(); err != nil {
		t.Fatalf("rounds: %v", err)
	}

	return players, tours, rounds
}

func summaryCSV(rows ...string) string {
	return "ID1,ID2,ID_T,ID_R,RESULT,DATE_G\n" + strings.Join(rows, "\n") + "\n"
}

// statsRow builds one 45-field statistics record with the composite key
// in front and plausible values in every mapped statistic column.
func statsRow(winnerID, loserID, tourID, roundID, duration string) string {
	fields := make([]string, statsMinFields)
	fields[0], fields[1], fields[2], fields[3] = winnerID, loserID, tourID, roundID

	winnerVals := []string{"40", "60", "5", "3", "20", "30", "10", "25", "3", "8", "20", "60", "10", "15", "70", "210", "185", "150"}
	loserVals := []string{"35", "55", "4", "4", "25", "25", "9", "20", "2", "7", "18", "65", "8", "12", "60", "205", "180", "145"}
	for i, col := range winnerStatCols {
		fields[col] = winnerVals[i]
	}
	for i, col := range loserStatCols {
		fields[col] = loserVals[i]
	}
	fields[statDurationCol] = duration
	return strings.Join(fields, ",")
}

func statsCSV(rows ...string) string {
	header := make([]string, statsMinFields)
	for i := range header {
		header[i] = fmt.Sprintf("C%d", i)
	}
	return strings.Join(header, ",") + "\n" + strings.Join(rows, "\n") + "\n"
}

func newFixtureGenerator(t *testing.T) (*Generator, *captureLogger) {
	t.Helper()
	players, tours, rounds := fixtureRefs(t)
	logger := &captureLogger{}
	return New("atp", players, tours, rounds, logger), logger
}

func TestLoadAndDumpJoinsByKey(t *testing.T) {
	g, _ := newFixtureGenerator(t)

	summaries := summaryCSV(
		"1,2,10,7,6-4 3-6 7-6(4),07/06/14 00:00:00",
		"3,1,11,8,6-4 6-4,06/06/14 00:00:00",
	)
	stats := statsCSV(statsRow("1", "2", "10", "7", "01:32:00"))

	if err := g.Load(strings.NewReader(summaries), strings.NewReader(stats)); err != nil {
		t.Fatalf("Load: %v", err)
	}

	var buf bytes.Buffer
	written, err := g.Dump(&buf)
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if written != 2 {
		t.Fatalf("wrote %d rows, want 2", written)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("output has %d lines, want header + 2 rows", len(lines))
	}

	header := strings.Split(lines[0], ",")
	for i, line := range lines[1:] {
		if got := len(strings.Split(line, ",")); got != len(header) {
			t.Errorf("row %d has %d fields, header has %d", i, got, len(header))
		}
	}

	// Original file order is preserved and the key lands in the last column.
	if !strings.HasSuffix(lines[1], "1/2/10/7") {
		t.Errorf("first row key suffix wrong: %q", lines[1])
	}
	if !strings.HasSuffix(lines[2], "3/1/11/8") {
		t.Errorf("second row key suffix wrong: %q", lines[2])
	}

	// The first match has statistics, the second gets the placeholder.
	if !strings.Contains(lines[1], ",92,") {
		t.Errorf("first row missing 92-minute duration: %q", lines[1])
	}
	if !strings.Contains(lines[2], "n/a") {
		t.Errorf("second row missing placeholder block: %q", lines[2])
	}
}

func TestLoadSummariesSkipsDoubles(t *testing.T) {
	g, logger := newFixtureGenerator(t)

	summaries := summaryCSV(
		"5,6,10,7,6-4 6-4,07/06/14 00:00:00", // both names are pairings
		"5,1,10,8,6-4 6-4,07/05/14 00:00:00", // only one side is a pairing
	)
	if err := g.LoadSummaries(strings.NewReader(summaries)); err != nil {
		t.Fatalf("LoadSummaries: %v", err)
	}

	if len(g.keys) != 1 {
		t.Fatalf("loaded %d matches, want 1 (doubles dropped)", len(g.keys))
	}
	if g.keys[0].String() != "5/1/10/8" {
		t.Errorf("kept key = %s, want the one-sided pairing row", g.keys[0])
	}
	if !logger.contains("doubles match") {
		t.Errorf("expected a doubles diagnostic, got %v", logger.lines)
	}
}

func TestLoadSummariesSkipRules(t *testing.T) {
	cases := []struct {
		name string
		row  string
		diag string
	}{
		{"unknown winner", "99,2,10,7,6-4 6-4,07/06/14 00:00:00", "incomplete winner info"},
		{"winner without dob", "4,2,10,7,6-4 6-4,07/06/14 00:00:00", "incomplete winner info"},
		{"unknown tournament", "1,2,404,7,6-4 6-4,07/06/14 00:00:00", "unknown tournament"},
		{"unknown round", "1,2,10,404,6-4 6-4,07/06/14 00:00:00", "unknown round"},
		{"single-set score", "1,2,10,7,6-4,07/06/14 00:00:00", "fewer than 2 sets"},
		{"implausible set", "1,2,10,7,4-5 6-4,07/06/14 00:00:00", "implausible set"},
		{"no date anywhere", "1,2,12,7,6-4 6-4,", "no match or tournament date"},
		{"blank key field", ",2,10,7,6-4 6-4,07/06/14 00:00:00", "bad key"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g, logger := newFixtureGenerator(t)
			if err := g.LoadSummaries(strings.NewReader(summaryCSV(tc.row))); err != nil {
				t.Fatalf("LoadSummaries: %v", err)
			}
			if len(g.keys) != 0 {
				t.Fatalf("loaded %d matches, want 0", len(g.keys))
			}
			if !logger.contains(tc.diag) {
				t.Errorf("diagnostics %v missing %q", logger.lines, tc.diag)
			}
		})
	}
}

func TestDateFallbackFlagsStats(t *testing.T) {
	g, logger := newFixtureGenerator(t)

	// Blank match date, tournament 10 has a start date.
	summaries := summaryCSV("1,2,10,7,6-4 6-4,")
	stats := statsCSV(statsRow("1", "2", "10", "7", "01:30:00"))

	if err := g.Load(strings.NewReader(summaries), strings.NewReader(stats)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !logger.contains("using tournament date") {
		t.Errorf("expected the fallback notice, got %v", logger.lines)
	}

	var buf bytes.Buffer
	if _, err := g.Dump(&buf); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	row := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")[1]
	if !strings.Contains(row, "Date") {
		t.Errorf("row %q missing Date suspect flag", row)
	}
	// The defaulted date is the tournament start.
	if !strings.Contains(row, "2014/06/23") {
		t.Errorf("row %q missing defaulted date 2014/06/23", row)
	}
}

func TestUnmatchedStatsAreIgnored(t *testing.T) {
	g, _ := newFixtureGenerator(t)

	summaries := summaryCSV("1,2,10,7,6-4 6-4,07/06/14 00:00:00")
	stats := statsCSV(
		statsRow("1", "2", "10", "7", "01:30:00"),
		statsRow("3", "1", "11", "8", "01:10:00"), // no matching summary
	)

	if err := g.Load(strings.NewReader(summaries), strings.NewReader(stats)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(g.stats) != 1 {
		t.Errorf("kept %d stats, want 1", len(g.stats))
	}
}

func TestAllPlaceholdersWhenNoStatsMatch(t *testing.T) {
	g, _ := newFixtureGenerator(t)

	summaries := summaryCSV(
		"1,2,10,7,6-4 3-6 7-6(4),07/06/14 00:00:00",
		"3,1,11,8,6-4 6-4,06/06/14 00:00:00",
		"2,3,10,8,7-6(2) 6-4,07/04/14 00:00:00",
	)
	stats := statsCSV(statsRow("9", "9", "9", "9", "01:00:00"))

	if err := g.Load(strings.NewReader(summaries), strings.NewReader(stats)); err != nil {
		t.Fatalf("Load: %v", err)
	}

	var buf bytes.Buffer
	written, err := g.Dump(&buf)
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if written != 3 {
		t.Fatalf("wrote %d rows, want 3", written)
	}
	for i, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")[1:] {
		if !strings.Contains(line, "n/a,n/a") {
			t.Errorf("row %d missing placeholder block: %q", i, line)
		}
	}
}

func TestDumpIsDeterministic(t *testing.T) {
	summaries := summaryCSV(
		"1,2,10,7,6-4 3-6 7-6(4),07/06/14 00:00:00",
		"3,1,11,8,6-4 6-4,06/06/14 00:00:00",
	)
	stats := statsCSV(statsRow("1", "2", "10", "7", "01:32:00"))

	var outputs [2]string
	for i := range outputs {
		g, _ := newFixtureGenerator(t)
		if err := g.Load(strings.NewReader(summaries), strings.NewReader(stats)); err != nil {
			t.Fatalf("Load: %v", err)
		}
		var buf bytes.Buffer
		if _, err := g.Dump(&buf); err != nil {
			t.Fatalf("Dump: %v", err)
		}
		outputs[i] = buf.String()
	}
	if outputs[0] != outputs[1] {
		t.Error("two runs over identical inputs produced different bytes")
	}
}

func TestDuplicateSummaryRowIsSkipped(t *testing.T) {
	g, logger := newFixtureGenerator(t)

	summaries := summaryCSV(
		"1,2,10,7,6-4 6-4,07/06/14 00:00:00",
		"1,2,10,7,6-4 6-4,07/06/14 00:00:00",
	)
	if err := g.LoadSummaries(strings.NewReader(summaries)); err != nil {
		t.Fatalf("LoadSummaries: %v", err)
	}
	if len(g.keys) != 1 {
		t.Errorf("loaded %d matches, want 1", len(g.keys))
	}
	if !logger.contains("duplicate summary row") {
		t.Errorf("expected a duplicate diagnostic, got %v", logger.lines)
	}
}

func TestHeaderShape(t *testing.T) {
	h := Header()
	if len(h) != 56 {
		t.Fatalf("header has %d columns, want 56", len(h))
	}
	if h[0] != "WName" || h[16] != "Date" || h[len(h)-1] != "MatchKey" {
		t.Errorf("header landmarks wrong: first=%q, 17th=%q, last=%q", h[0], h[16], h[len(h)-1])
	}
	if h[len(h)-2] != "SuspectColumns" || h[len(h)-3] != "Duration" {
		t.Errorf("header tail wrong: %v", h[len(h)-3:])
	}
}

func TestIntegrityErrorMessage(t *testing.T) {
	e := &IntegrityError{HeaderFields: 56, RowFields: 55}
	if !strings.Contains(e.Error(), "56") || !strings.Contains(e.Error(), "55") {
		t.Errorf("unhelpful integrity message: %q", e.Error())
	}
}
