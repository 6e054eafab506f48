package match

import "fmt"

// DoublesSeparator joins the two names of a doubles pairing in the OnCourt
// player dictionary (e.g. "Bryan B./Bryan M."). Its presence in both
// resolved names of a summary row marks a doubles match, which this
// pipeline always drops. Known to be a proxy with an unknown
// false-negative rate; do not strengthen without new data.
const DoublesSeparator = "/"

// PlayerInfo carries the resolved attributes of one player. DOB is in
// canonical YYYY/MM/DD form; construction fails when the source
// date-of-birth does not parse, which excludes the player (and every
// match referencing them) from age computation.
type PlayerInfo struct {
	ID   string
	Name string
	DOB  string
}

// NewPlayerInfo builds a PlayerInfo, converting dob from the OnCourt
// source form.
func NewPlayerInfo(id, name, dob string) (PlayerInfo, error) {
	ymd, err := ToYMD(dob)
	if err != nil {
		return PlayerInfo{}, fmt.Errorf("match: player %s (%s): %w", id, name, err)
	}
	return PlayerInfo{ID: id, Name: name, DOB: ymd}, nil
}

// AgeAsOf returns the player's age on asOfYMD (a YYYY/MM/DD date) in
// fractional years.
func (p PlayerInfo) AgeAsOf(asOfYMD string) (float64, error) {
	return yearsBetween(p.DOB, asOfYMD)
}

// TourInfo carries the resolved attributes of one tournament edition
// (tournament IDs are per-edition: Wimbledon 2014 and 2015 have distinct
// IDs). Surface is already dereferenced through the court dictionary.
// Date stays in raw source form; it is only converted when used as a
// fallback match date.
type TourInfo struct {
	ID      string
	Name    string
	Surface string
	Date    string
	Country string
}
