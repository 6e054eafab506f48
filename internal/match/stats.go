package match

import (
	"errors"
	"strconv"
	"strings"
)

// ErrAlreadyValidated is returned by (*MatchStats).Validate on a second
// call. Validation mutates the suspect list, so calling it twice is a
// programming error and is surfaced rather than swallowed.
var ErrAlreadyValidated = errors.New("match: repeated call to MatchStats.Validate")

// statNames are the 18 per-side statistic columns, in both struct-field
// and output order. The output header carries them twice, W- and
// L-prefixed.
var statNames = []string{
	"firstSvIn", "firstSvTot", "aces", "doubleFaults", "unforcedErrs",
	"firstSvPtsWon", "secondSvPtsWon", "winners", "breakPtsWon",
	"breakPtsTot", "recvPtsWon", "recvPtsTot", "netApproachWon",
	"netApproachTot", "totPtsWon", "fastestServeKph", "avgFirstSvKph",
	"avgSecondSvKph",
}

// PlayerStatsCount is the number of per-side statistic columns.
const PlayerStatsCount = 18

// maxPlausibleDuration is the longest match duration, in minutes, that
// validation accepts without flagging. Longer recorded durations exist but
// are overwhelmingly data errors in this export.
const maxPlausibleDuration = 300

// PlayerStats holds the serve/return/point statistics for one side of a
// match. A blank source field means "not recorded" and becomes zero.
type PlayerStats struct {
	FirstServesIn     int
	FirstServes       int
	Aces              int
	DoubleFaults      int
	UnforcedErrs      int
	FirstServePtsWon  int
	SecondServePtsWon int
	Winners           int
	BreakPtsWon       int
	BreakPts          int
	RecvPtsWon        int
	RecvPts           int
	NetApproachesWon  int
	NetApproaches     int
	TotPtsWon         int
	FastestServeKph   int
	AvgFirstServeKph  int
	AvgSecondServeKph int
}

// ParsePlayerStats builds a PlayerStats from 18 raw source fields in
// statNames order. Blank or unparseable fields default to zero.
func ParsePlayerStats(raw []string) (PlayerStats, error) {
	if len(raw) != PlayerStatsCount {
		return PlayerStats{}, errors.New("match: player stats need exactly 18 fields")
	}
	v := func(i int) int {
		n, _ := strconv.Atoi(strings.TrimSpace(raw[i]))
		return n
	}
	return PlayerStats{
		FirstServesIn:     v(0),
		FirstServes:       v(1),
		Aces:              v(2),
		DoubleFaults:      v(3),
		UnforcedErrs:      v(4),
		FirstServePtsWon:  v(5),
		SecondServePtsWon: v(6),
		Winners:           v(7),
		BreakPtsWon:       v(8),
		BreakPts:          v(9),
		RecvPtsWon:        v(10),
		RecvPts:           v(11),
		NetApproachesWon:  v(12),
		NetApproaches:     v(13),
		TotPtsWon:         v(14),
		FastestServeKph:   v(15),
		AvgFirstServeKph:  v(16),
		AvgSecondServeKph: v(17),
	}, nil
}

// Validate cross-checks the statistics against each other and returns the
// names of columns that cannot all be right. These are heuristics: a
// flagged column is internally inconsistent, not proven wrong, so related
// columns deserve a look too.
func (p PlayerStats) Validate() []string {
	var issues []string
	if p.FirstServesIn >= p.FirstServes {
		issues = append(issues, "firstSvIn", "firstSvTot")
	}
	if p.Aces >= p.FirstServesIn {
		issues = append(issues, "aces")
	}
	if p.DoubleFaults > p.FirstServes {
		issues = append(issues, "doubleFaults")
	}
	if p.FirstServePtsWon > p.FirstServesIn {
		issues = append(issues, "firstSvPtsWon")
	}
	if p.SecondServePtsWon > p.FirstServes-p.FirstServesIn {
		issues = append(issues, "secondSvPtsWon")
	}
	if p.Winners > p.TotPtsWon {
		issues = append(issues, "winners")
	}
	if p.BreakPtsWon > p.BreakPts || p.BreakPtsWon >= p.TotPtsWon {
		issues = append(issues, "breakPtsWon")
	}
	if p.RecvPtsWon > p.RecvPts || p.RecvPtsWon >= p.TotPtsWon {
		issues = append(issues, "recvPtsWon")
	}
	if p.NetApproachesWon > p.NetApproaches || p.NetApproachesWon >= p.TotPtsWon {
		issues = append(issues, "netApproachWon")
	}
	if p.AvgFirstServeKph >= p.FastestServeKph {
		issues = append(issues, "avgFirstSvKph", "fastestServeKph")
	}
	if p.AvgSecondServeKph >= p.FastestServeKph || p.AvgSecondServeKph > p.AvgFirstServeKph {
		issues = append(issues, "avgSecondSvKph", "fastestServeKph")
	}
	return issues
}

// Fields renders the 18 statistic columns in statNames order.
func (p PlayerStats) Fields() []string {
	return []string{
		strconv.Itoa(p.FirstServesIn),
		strconv.Itoa(p.FirstServes),
		strconv.Itoa(p.Aces),
		strconv.Itoa(p.DoubleFaults),
		strconv.Itoa(p.UnforcedErrs),
		strconv.Itoa(p.FirstServePtsWon),
		strconv.Itoa(p.SecondServePtsWon),
		strconv.Itoa(p.Winners),
		strconv.Itoa(p.BreakPtsWon),
		strconv.Itoa(p.BreakPts),
		strconv.Itoa(p.RecvPtsWon),
		strconv.Itoa(p.RecvPts),
		strconv.Itoa(p.NetApproachesWon),
		strconv.Itoa(p.NetApproaches),
		strconv.Itoa(p.TotPtsWon),
		strconv.Itoa(p.FastestServeKph),
		strconv.Itoa(p.AvgFirstServeKph),
		strconv.Itoa(p.AvgSecondServeKph),
	}
}

// MatchStats pairs both sides' statistics with the match duration and the
// suspect-column list produced by validation. It is keyed by the same Key
// as its Match; the join happens in internal/augment.
type MatchStats struct {
	Winner PlayerStats
	Loser  PlayerStats

	// duration in minutes; nil when the source field was blank or
	// undecodable.
	duration *int

	suspects  []string
	validated bool
}

// NewMatchStats builds a MatchStats, decoding rawTime. The export encodes
// duration as an Access time value: an optional literal "12/30/99 " epoch
// date followed by HH:MM:SS. A blank or undecodable value means the
// duration was not recorded.
func NewMatchStats(winner, loser PlayerStats, rawTime string) *MatchStats {
	s := &MatchStats{Winner: winner, Loser: loser}
	raw := strings.TrimSpace(strings.ReplaceAll(rawTime, `"`, ""))
	raw = strings.TrimPrefix(raw, "12/30/99 ")
	if raw == "" {
		return s
	}
	parts := strings.Split(raw, ":")
	if len(parts) < 2 {
		return s
	}
	hours, err1 := strconv.Atoi(parts[0])
	minutes, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return s
	}
	total := hours*60 + minutes
	s.duration = &total
	return s
}

// Duration returns the match duration in minutes, or ok=false when it was
// not recorded.
func (s *MatchStats) Duration() (minutes int, ok bool) {
	if s.duration == nil {
		return 0, false
	}
	return *s.duration, true
}

// AddSuspect records an externally known suspect column (e.g. "Date" when
// the match date was defaulted from the tournament). Must be called before
// Validate, which folds these into its own findings.
func (s *MatchStats) AddSuspect(column string) {
	s.suspects = append(s.suspects, column)
}

// Validate runs both sides' consistency checks, prefixes the findings by
// side, checks the duration, and rewrites the suspect list to either a
// count-prefixed list ("3: WfirstSvIn ...") or the literal "0" marker.
// It may be called at most once per instance; a second call returns
// ErrAlreadyValidated.
func (s *MatchStats) Validate() error {
	if s.validated {
		return ErrAlreadyValidated
	}
	s.validated = true

	// Externally added suspects come first, then per-side findings.
	suspects := s.suspects
	s.suspects = nil

	for _, c := range s.Winner.Validate() {
		suspects = append(suspects, "W"+c)
	}
	for _, c := range s.Loser.Validate() {
		suspects = append(suspects, "L"+c)
	}
	if s.duration == nil || *s.duration > maxPlausibleDuration {
		suspects = append(suspects, "Duration")
	}

	if len(suspects) > 0 {
		s.suspects = append([]string{strconv.Itoa(len(suspects)) + ":"}, suspects...)
	} else {
		s.suspects = []string{"0"}
	}
	return nil
}

// SuspectCount reports how many columns validation flagged. Zero before
// Validate runs and for a clean record.
func (s *MatchStats) SuspectCount() int {
	if !s.validated || len(s.suspects) == 0 || s.suspects[0] == "0" {
		return 0
	}
	return len(s.suspects) - 1
}

// Fields renders the statistics-side output columns: both sides' 18 stats,
// the duration, and the space-joined suspect list. Aligned with
// StatsHeader.
func (s *MatchStats) Fields() []string {
	fields := make([]string, 0, 2*PlayerStatsCount+2)
	fields = append(fields, s.Winner.Fields()...)
	fields = append(fields, s.Loser.Fields()...)
	if s.duration != nil {
		fields = append(fields, strconv.Itoa(*s.duration))
	} else {
		fields = append(fields, missingField)
	}
	fields = append(fields, strings.Join(s.suspects, " "))
	return fields
}

// missingField is the textual rendering of an unrecorded value.
const missingField = "n/a"

// StatsHeader returns the statistics-side output columns: W- and
// L-prefixed stat names plus Duration and SuspectColumns.
func StatsHeader() []string {
	header := make([]string, 0, 2*PlayerStatsCount+2)
	for _, n := range statNames {
		header = append(header, "W"+n)
	}
	for _, n := range statNames {
		header = append(header, "L"+n)
	}
	return append(header, "Duration", "SuspectColumns")
}

// PlaceholderStatsFields renders the absent-statistics variant: a summary
// row with no matching statistics record keeps its place in the output
// with every statistics column set to "n/a".
func PlaceholderStatsFields() []string {
	fields := make([]string, 2*PlayerStatsCount+2)
	for i := range fields {
		fields[i] = missingField
	}
	return fields
}
