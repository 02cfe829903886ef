package bracket

type TournamentStatus string

const (
	TournamentPlanning   TournamentStatus = "planning"
	TournamentInProgress TournamentStatus = "in-progress"
	TournamentCompleted  TournamentStatus = "completed"
)

// AggregateStatus derives the tournament status from its matches alone.
// Bye-settled matches do not count as play having started.
func AggregateStatus(matches []Match) TournamentStatus {
	if _, ok := Champion(matches); ok {
		return TournamentCompleted
	}

	for i := range matches {
		m := &matches[i]
		if m.Bye {
			continue
		}
		if m.Status == MatchInProgress || m.Status == MatchCompleted {
			return TournamentInProgress
		}
	}
	return TournamentPlanning
}

// Champion returns the tournament winner once the deciding match is done.
// With final-side matches present that is the grand final, or the reset
// match when the losers champion took the grand final.
func Champion(matches []Match) (string, bool) {
	var grandFinal, reset, winnersFinal *Match

	for i := range matches {
		m := &matches[i]
		switch m.BracketSide {
		case FinalSide:
			switch {
			case grandFinal == nil || m.Round < grandFinal.Round:
				reset = grandFinal
				grandFinal = m
			case reset == nil || m.Round < reset.Round:
				reset = m
			}
		case WinnersSide:
			if winnersFinal == nil || m.Round > winnersFinal.Round {
				winnersFinal = m
			}
		}
	}

	if grandFinal != nil {
		if grandFinal.Winner == nil {
			return "", false
		}
		if reset == nil || winnerSlot(grandFinal) == SlotA {
			return *grandFinal.Winner, true
		}
		if reset.Winner == nil {
			return "", false
		}
		return *reset.Winner, true
	}

	if winnersFinal == nil || winnersFinal.Winner == nil {
		return "", false
	}
	return *winnersFinal.Winner, true
}
