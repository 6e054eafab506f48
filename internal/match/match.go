package match

import (
	"fmt"
	"strconv"
)

// summaryHeader is the fixed set of summary-side output columns, in the
// order Fields renders them.
var summaryHeader = []string{
	"WName", "Wage", "LName", "Lage",
	"TourName", "Surface", "Country", "Round",
	"WSets", "LSets", "WGames", "LGames", "TotalGames",
	"WTieBreaks", "LTieBreaks", "TotalTieBreaks",
	"Date",
}

// Match is the fully dereferenced summary of one singles match: all the
// foreign keys of a games_<division>.csv row resolved to attributes, plus
// the parsed result.
type Match struct {
	Winner PlayerInfo
	Loser  PlayerInfo

	Tour    string
	Round   string
	Surface string
	Country string

	Result *Result

	// Date is the match date in YYYY/MM/DD form. DateApprox marks dates
	// defaulted from the tournament start because the match's own date was
	// blank; such matches stay in the output but their statistics get a
	// "Date" suspect flag.
	Date       string
	DateApprox bool
}

// New builds a Match from resolved attributes and the raw score and date
// strings. rawDate is the already-chosen source date (the row's own, or
// the tournament fallback indicated by dateApprox); an unparseable date or
// score fails construction and the caller skips the record.
func New(winner, loser PlayerInfo, tour TourInfo, round, score, rawDate string, dateApprox bool) (*Match, error) {
	date, err := ToYMD(rawDate)
	if err != nil {
		return nil, err
	}
	result, err := ParseResult(score)
	if err != nil {
		return nil, err
	}
	return &Match{
		Winner:     winner,
		Loser:      loser,
		Tour:       tour.Name,
		Round:      round,
		Surface:    tour.Surface,
		Country:    tour.Country,
		Result:     result,
		Date:       date,
		DateApprox: dateApprox,
	}, nil
}

// Valid reports whether the match has every attribute the output schema
// needs. New guarantees Result and Date; the remaining fields come from
// dictionary lookups that can individually produce empty values.
func (m *Match) Valid() bool {
	return m.Winner.Name != "" && m.Winner.DOB != "" &&
		m.Loser.Name != "" && m.Loser.DOB != "" &&
		m.Tour != "" && m.Round != "" && m.Surface != "" && m.Country != "" &&
		m.Result != nil
}

// Fields renders the summary-side output columns, aligned with
// summaryHeader.
func (m *Match) Fields() ([]string, error) {
	wAge, err := m.Winner.AgeAsOf(m.Date)
	if err != nil {
		return nil, err
	}
	lAge, err := m.Loser.AgeAsOf(m.Date)
	if err != nil {
		return nil, err
	}
	fields := make([]string, 0, len(summaryHeader))
	fields = append(fields,
		m.Winner.Name,
		strconv.FormatFloat(wAge, 'f', 1, 64),
		m.Loser.Name,
		strconv.FormatFloat(lAge, 'f', 1, 64),
		m.Tour,
		m.Surface,
		m.Country,
		m.Round,
	)
	fields = append(fields, m.Result.Fields()...)
	fields = append(fields, m.Date)
	if len(fields) != len(summaryHeader) {
		return nil, fmt.Errorf("match: rendered %d summary fields, header has %d",
			len(fields), len(summaryHeader))
	}
	return fields, nil
}

// SummaryHeader returns a copy of the summary-side output columns.
func SummaryHeader() []string {
	return append([]string(nil), summaryHeader...)
}
