// Package match holds the domain model for one augmented tennis match:
// the composite key that correlates the OnCourt summary and statistics
// tables, the parsed set-score result, player and tournament attributes,
// and the per-side statistics with their consistency heuristics.
//
// Everything in this package is plain value logic; file I/O and foreign-key
// resolution live in internal/refdata and internal/augment.
package match

import "fmt"

// Key uniquely identifies a match across the OnCourt export tables.
// The same four IDs start every row of both games_<division>.csv and
// stat_<division>.csv, which is what makes the summary/statistics join
// possible.
//
// Key is an immutable value type: it is comparable, usable as a map key,
// and its String form is the trailing MatchKey column of the output, kept
// so augmented rows can be traced back to the raw export.
type Key struct {
	name string
}

// NewKey builds a Key from the four ID fields. All four are mandatory;
// an empty component means the source row is unusable.
func NewKey(winnerID, loserID, tourID, roundID string) (Key, error) {
	if winnerID == "" || loserID == "" || tourID == "" || roundID == "" {
		return Key{}, fmt.Errorf("match: bad key formed: %q/%q/%q/%q",
			winnerID, loserID, tourID, roundID)
	}
	return Key{name: winnerID + "/" + loserID + "/" + tourID + "/" + roundID}, nil
}

func (k Key) String() string { return k.name }

// IsZero reports whether k is the zero Key (never produced by NewKey).
func (k Key) IsZero() bool { return k.name == "" }
