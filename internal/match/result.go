package match

import (
	"fmt"
	"strconv"
	"strings"
)

// Result accumulates a match's set-by-set game counts from the winner's
// perspective. Build one with ParseResult, or incrementally with AddSet
// when the caller already knows who won the match (true here: the summary
// table lists the winner first, which is also why this type cannot be
// reused for in-progress scores).
type Result struct {
	winnerSets int
	loserSets  int

	// nth element = games won in the nth set, winner resp. loser of the match.
	winnerGames []int
	loserGames  []int
}

// ParseResult parses a whitespace-separated set-score string such as
// "6-4 3-6 7-6(4)". Rules:
//
//   - each token must split on "-" into exactly two game counts
//   - at least one side of every set must reach 6 games
//   - a tie-break annotation like "(4)" on the second count is stripped;
//     the point detail is not retained
//   - fewer than two sets means the match is incomplete and is rejected
func ParseResult(s string) (*Result, error) {
	tokens := strings.Fields(s)
	if len(tokens) < 2 {
		return nil, fmt.Errorf("match: fewer than 2 sets in result %q", s)
	}

	r := &Result{}
	for _, tok := range tokens {
		ws, ls, ok := strings.Cut(tok, "-")
		if !ok || strings.Contains(ls, "-") {
			return nil, fmt.Errorf("match: bad set token %q in result %q", tok, s)
		}
		// tie-break sets look like 7-6(4); keep only the game count
		if i := strings.IndexByte(ls, '('); i >= 0 {
			ls = ls[:i]
		}
		wg, err := strconv.Atoi(ws)
		if err != nil {
			return nil, fmt.Errorf("match: bad game count %q in result %q", ws, s)
		}
		lg, err := strconv.Atoi(ls)
		if err != nil {
			return nil, fmt.Errorf("match: bad game count %q in result %q", ls, s)
		}
		if wg < 6 && lg < 6 {
			return nil, fmt.Errorf("match: implausible set %q in result %q", tok, s)
		}
		r.AddSet(wg, lg)
	}
	return r, nil
}

// AddSet records one completed set: winnerGames went to the winner of the
// match, loserGames to the loser of the match.
func (r *Result) AddSet(winnerGames, loserGames int) {
	if winnerGames > loserGames {
		r.winnerSets++
	} else {
		r.loserSets++
	}
	r.winnerGames = append(r.winnerGames, winnerGames)
	r.loserGames = append(r.loserGames, loserGames)
}

func (r *Result) WinnerSetsWon() int { return r.winnerSets }
func (r *Result) LoserSetsWon() int  { return r.loserSets }

func (r *Result) WinnerGamesWon() int { return sum(r.winnerGames) }
func (r *Result) LoserGamesWon() int  { return sum(r.loserGames) }

func (r *Result) TotalGamesPlayed() int {
	return r.WinnerGamesWon() + r.LoserGamesWon()
}

// WinnerTieBreaksWon counts sets the match winner took 7-6. The 7-6 pair
// is the fixed tie-break signature; nothing else qualifies.
func (r *Result) WinnerTieBreaksWon() int {
	n := 0
	for i := range r.winnerGames {
		if r.winnerGames[i] == 7 && r.loserGames[i] == 6 {
			n++
		}
	}
	return n
}

// LoserTieBreaksWon counts sets the match loser took 7-6 (i.e. 6-7 from
// the winner's perspective).
func (r *Result) LoserTieBreaksWon() int {
	n := 0
	for i := range r.winnerGames {
		if r.winnerGames[i] == 6 && r.loserGames[i] == 7 {
			n++
		}
	}
	return n
}

// Fields returns the result's eight output columns, in the order the
// summary header lists them (WSets through TotalTieBreaks).
func (r *Result) Fields() []string {
	wtb, ltb := r.WinnerTieBreaksWon(), r.LoserTieBreaksWon()
	return []string{
		strconv.Itoa(r.winnerSets),
		strconv.Itoa(r.loserSets),
		strconv.Itoa(r.WinnerGamesWon()),
		strconv.Itoa(r.LoserGamesWon()),
		strconv.Itoa(r.TotalGamesPlayed()),
		strconv.Itoa(wtb),
		strconv.Itoa(ltb),
		strconv.Itoa(wtb + ltb),
	}
}

func sum(xs []int) int {
	n := 0
	for _, x := range xs {
		n += x
	}
	return n
}
