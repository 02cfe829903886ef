package bracket

import (
	"errors"
	"fmt"
)

// BuildSingleElimination emits every match of a single-elimination bracket,
// round by round. Round-one byes are already completed and their winners
// already sit in round two.
func BuildSingleElimination(participants []string, tournamentID string, opts ...Option) ([]Match, error) {
	return build(SingleElimination, participants, tournamentID, opts)
}

// BuildDoubleElimination emits the winners bracket, the losers bracket and
// the grand final (plus the reset match when requested).
func BuildDoubleElimination(participants []string, tournamentID string, opts ...Option) ([]Match, error) {
	return build(DoubleElimination, participants, tournamentID, opts)
}

// Build dispatches on format.
func Build(format Format, participants []string, tournamentID string, opts ...Option) ([]Match, error) {
	return build(format, participants, tournamentID, opts)
}

func build(format Format, participants []string, tournamentID string, opts []Option) ([]Match, error) {
	if len(participants) == 0 {
		return nil, ErrEmptyParticipantList
	}
	o := collectOptions(opts)

	layout, err := NewLayout(format, len(participants), o.bracketReset)
	if err != nil {
		return nil, err
	}

	slots, err := Seed(participants, layout.Shape.BracketSize, o.seeding)
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0, layout.MatchCount())
	matches, err = appendWinnersBracket(matches, layout, slots, tournamentID)
	if err != nil {
		return nil, err
	}

	if format == DoubleElimination {
		matches = appendLosersBracket(matches, layout, tournamentID)
		matches = appendFinals(matches, layout, tournamentID)
	}

	if len(matches) != layout.MatchCount() {
		return nil, fmt.Errorf("%w: built %d matches, expected %d", ErrStructuralInvariant, len(matches), layout.MatchCount())
	}

	// Matches are ordered so every match feeds only later ones, which lets a
	// single pass settle byes and forward them.
	index := IndexMatches(matches)
	for i := range matches {
		m := &matches[i]
		if !m.settleBye() {
			continue
		}
		if _, err := layout.forward(index, m); err != nil && !errors.Is(err, ErrTerminalRoundHasNoNext) {
			return nil, err
		}
	}

	return matches, nil
}

func newMatch(tournamentID string, side BracketSide, round, position int) Match {
	return Match{
		TournamentID: tournamentID,
		BracketSide:  side,
		Round:        round,
		Position:     position,
		Status:       MatchUpcoming,
	}
}

func appendWinnersBracket(matches []Match, layout Layout, slots []Slot, tournamentID string) ([]Match, error) {
	for i := 0; i < len(slots); i += 2 {
		m := newMatch(tournamentID, WinnersSide, 1, i/2)
		m.ParticipantA = slots[i]
		m.ParticipantB = slots[i+1]

		if m.ParticipantA.IsBye() && m.ParticipantB.IsBye() {
			return nil, fmt.Errorf("%w: round one match %d is bye against bye", ErrStructuralInvariant, i/2)
		}
		matches = append(matches, m)
	}

	for r := 2; r <= layout.Shape.Rounds; r++ {
		for p := 0; p < layout.Shape.MatchesInRound(r); p++ {
			matches = append(matches, newMatch(tournamentID, WinnersSide, r, p))
		}
	}
	return matches, nil
}

func appendLosersBracket(matches []Match, layout Layout, tournamentID string) []Match {
	for r := 1; r <= layout.LoserRounds; r++ {
		for p := 0; p < layout.LoserMatchesInRound(r); p++ {
			matches = append(matches, newMatch(tournamentID, LosersSide, r, p))
		}
	}
	return matches
}

func appendFinals(matches []Match, layout Layout, tournamentID string) []Match {
	matches = append(matches, newMatch(tournamentID, FinalSide, layout.GrandFinalRound(), 0))
	if layout.BracketReset {
		matches = append(matches, newMatch(tournamentID, FinalSide, layout.ResetRound(), 0))
	}
	return matches
}
