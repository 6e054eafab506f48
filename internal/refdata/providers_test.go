package refdata

import (
	"errors"
	"fmt"
	"strings"
	"testing"
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

var playerCols = PlayerColumns{ID: "ID_P", Name: "NAME_P", DOB: "DATE_P"}

func TestPlayersLoad(t *testing.T) {
	path := writeFile(t, t.TempDir(), "players_atp.csv",
		"ID_P,NAME_P,DATE_P,COUNTRY_P\n"+
			"1,Federer R.,08/08/81 00:00:00,SUI\n"+
			"2,No Birthday,,USA\n"+
			"3,Bryan B./Bryan M.,04/29/78 00:00:00,USA\n")

	logger := &captureLogger{}
	p := NewPlayers(path, playerCols)
	p.Logger = logger
	if err := p.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	info, err := p.PlayerInfo("1")
	if err != nil {
		t.Fatalf("PlayerInfo(1): %v", err)
	}
	if info.Name != "Federer R." || info.DOB != "1981/08/08" {
		t.Errorf("info = %+v", info)
	}

	// Missing date-of-birth: excluded, with a warning.
	if _, err := p.PlayerInfo("2"); err == nil {
		t.Error("player without date-of-birth must be unresolvable")
	}
	if !logger.contains("no date-of-birth") {
		t.Errorf("expected a missing-DOB warning, got %v", logger.lines)
	}

	// Doubles pairings keep their entry; the pipeline drops pairs later.
	pair, err := p.PlayerInfo("3")
	if err != nil {
		t.Fatalf("PlayerInfo(3): %v", err)
	}
	if !strings.Contains(pair.Name, "/") {
		t.Errorf("pairing name = %q", pair.Name)
	}

	if p.Len() != 2 {
		t.Errorf("Len() = %d, want 2", p.Len())
	}
}

func TestPlayersLoadBadHeader(t *testing.T) {
	path := writeFile(t, t.TempDir(), "players_atp.csv", "ID,NAME\n1,A\n")

	p := NewPlayers(path, playerCols)
	var he *HeaderError
	if err := p.Load(); !errors.As(err, &he) {
		t.Fatalf("err = %v, want *HeaderError", err)
	}
}

func TestToursLoadDereferencesSurface(t *testing.T) {
	dir := t.TempDir()
	courtsPath := writeFile(t, dir, "courts.csv", "ID_C,NAME_C\n1,Clay\n2,Grass\n")
	toursPath := writeFile(t, dir, "tours_atp.csv",
		"ID_T,NAME_T,ID_C_T,DATE_T,COUNTRY_T\n"+
			"10,Roland Garros,1,05/25/14 00:00:00,France\n"+
			"11,Mystery Open,9,01/01/14 00:00:00,Nowhere\n")

	courts := NewTable(courtsPath, "ID_C", "NAME_C")
	if err := courts.Load(); err != nil {
		t.Fatalf("courts: %v", err)
	}

	logger := &captureLogger{}
	tours := NewTours(toursPath, TourColumns{
		ID: "ID_T", Name: "NAME_T", Surface: "ID_C_T", Date: "DATE_T", Country: "COUNTRY_T",
	}, courts)
	tours.Logger = logger
	if err := tours.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	info, err := tours.TourInfo("10")
	if err != nil {
		t.Fatalf("TourInfo(10): %v", err)
	}
	if info.Surface != "Clay" || info.Country != "France" {
		t.Errorf("info = %+v", info)
	}

	// Unknown court ID: surface is left empty, load continues, warning logged.
	mystery, err := tours.TourInfo("11")
	if err != nil {
		t.Fatalf("TourInfo(11): %v", err)
	}
	if mystery.Surface != "" {
		t.Errorf("Surface = %q, want empty", mystery.Surface)
	}
	if !logger.contains("cannot dereference court") {
		t.Errorf("expected a court warning, got %v", logger.lines)
	}

	if _, err := tours.TourInfo("404"); err == nil {
		t.Error("unknown tournament must be unresolvable")
	}
}
