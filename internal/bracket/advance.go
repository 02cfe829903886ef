package bracket

import (
	"errors"
	"fmt"
)

// Advancement says where the participants of a completed match go next.
// Loser and LoserTo are nil when the loser is eliminated.
type Advancement struct {
	Winner   string  `json:"winner"`
	WinnerTo Target  `json:"winnerTo"`
	Loser    *string `json:"loser,omitempty"`
	LoserTo  *Target `json:"loserTo,omitempty"`
}

// Resolve maps a completed match to the slots its winner and, in double
// elimination, its loser move into. It is pure: the same match always yields
// the same assignment.
func (l Layout) Resolve(m Match) (Advancement, error) {
	if m.Winner == nil || m.Status != MatchCompleted {
		return Advancement{}, fmt.Errorf("%w: %s", ErrMatchNotCompleted, m.Key())
	}

	winnerTo, loserTo, err := l.route(m.Key(), winnerSlot(&m))
	if err != nil {
		return Advancement{}, err
	}

	adv := Advancement{Winner: *m.Winner, WinnerTo: winnerTo}
	if loserTo != nil {
		if loser, ok := m.Loser(); ok {
			adv.Loser = &loser
			adv.LoserTo = loserTo
		}
	}
	return adv, nil
}

func winnerSlot(m *Match) SlotRef {
	if id, ok := m.ParticipantB.ID(); ok && m.Winner != nil && *m.Winner == id {
		return SlotB
	}
	return SlotA
}

type Index map[Key]*Match

// IndexMatches keys the matches by (side, round, position). The index points
// into the slice, so mutations through it are visible to the caller.
func IndexMatches(matches []Match) Index {
	index := make(Index, len(matches))
	for i := range matches {
		index[matches[i].Key()] = &matches[i]
	}
	return index
}

// Advance pushes the result of the completed match at from through the
// bracket: it fills the next slots and settles any match that turns into a
// participant against a bye, repeating until nothing more moves. It returns
// the keys of the matches it changed. Running it twice changes nothing the
// second time.
func (l Layout) Advance(index Index, from Key) ([]Key, error) {
	var touched []Key
	seen := make(map[Key]bool)

	queue := []Key{from}
	for len(queue) > 0 {
		k := queue[0]
		queue = queue[1:]

		m, ok := index[k]
		if !ok {
			return touched, fmt.Errorf("%w: match %s not found", ErrStructuralInvariant, k)
		}

		changed, err := l.forward(index, m)
		if errors.Is(err, ErrTerminalRoundHasNoNext) {
			continue
		}
		if err != nil {
			return touched, err
		}

		for _, next := range changed {
			if !seen[next] {
				seen[next] = true
				touched = append(touched, next)
			}
			if index[next].settleBye() {
				queue = append(queue, next)
			}
		}
	}

	return touched, nil
}

// forward writes the outcome of a completed match into its successors and
// returns the keys whose slots actually changed. A void match (bye against
// bye) forwards a bye, and so does a bye-settled winners match to the
// losers bracket, since it has no loser to drop.
func (l Layout) forward(index Index, m *Match) ([]Key, error) {
	if m.Status != MatchCompleted || (m.Winner == nil && !m.Bye) {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotCompleted, m.Key())
	}

	winnerTo, loserTo, err := l.route(m.Key(), winnerSlot(m))
	if err != nil {
		return nil, err
	}

	winner := Bye
	if m.Winner != nil {
		winner = Participant(*m.Winner)
	}

	var changed []Key
	place := func(t Target, s Slot) error {
		next, ok := index[t.Key()]
		if !ok {
			return fmt.Errorf("%w: target %s not found", ErrStructuralInvariant, t)
		}
		before := next.SlotAt(t.Slot)
		if err := next.Place(t.Slot, s); err != nil {
			return err
		}
		if before != s {
			changed = append(changed, t.Key())
		}
		return nil
	}

	if err := place(winnerTo, winner); err != nil {
		return nil, err
	}
	if loserTo != nil {
		loser := Bye
		if id, ok := m.Loser(); ok {
			loser = Participant(id)
		}
		if err := place(*loserTo, loser); err != nil {
			return nil, err
		}
	}

	return changed, nil
}
