package service

import (
	"sort"

	"github.com/AdamBeresnev/op-bracket/internal/bracket"
	"github.com/AdamBeresnev/op-bracket/internal/store"
)

// Round is one column of a rendered bracket.
type Round struct {
	Side    bracket.BracketSide `json:"side"`
	Round   int                 `json:"round"`
	Matches []store.MatchRecord `json:"matches"`
}

var sideOrder = map[bracket.BracketSide]int{
	bracket.WinnersSide: 0,
	bracket.LosersSide:  1,
	bracket.FinalSide:   2,
}

// GroupRounds groups matches into rounds, winners side first, then losers,
// then finals, with matches ordered by position.
func GroupRounds(records []store.MatchRecord) []Round {
	type roundKey struct {
		side  bracket.BracketSide
		round int
	}

	byRound := make(map[roundKey][]store.MatchRecord)
	var keys []roundKey
	for _, m := range records {
		k := roundKey{side: m.BracketSide, round: m.Round}
		if _, exists := byRound[k]; !exists {
			keys = append(keys, k)
		}
		byRound[k] = append(byRound[k], m)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].side != keys[j].side {
			return sideOrder[keys[i].side] < sideOrder[keys[j].side]
		}
		return keys[i].round < keys[j].round
	})

	rounds := make([]Round, 0, len(keys))
	for _, k := range keys {
		matches := byRound[k]
		sort.Slice(matches, func(i, j int) bool {
			return matches[i].Position < matches[j].Position
		})
		rounds = append(rounds, Round{Side: k.side, Round: k.round, Matches: matches})
	}
	return rounds
}
