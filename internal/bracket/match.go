package bracket

import "fmt"

type MatchStatus string

const (
	MatchUpcoming   MatchStatus = "upcoming"
	MatchInProgress MatchStatus = "in-progress"
	MatchCompleted  MatchStatus = "completed"
)

type BracketSide string

const (
	WinnersSide BracketSide = "winners"
	LosersSide  BracketSide = "losers"
	FinalSide   BracketSide = "final"
)

type SlotRef int

const (
	SlotA SlotRef = iota
	SlotB
)

func (r SlotRef) String() string {
	if r == SlotB {
		return "B"
	}
	return "A"
}

// Key identifies a match within one tournament.
type Key struct {
	Side     BracketSide
	Round    int
	Position int
}

func (k Key) String() string {
	return fmt.Sprintf("%s/R%d/P%d", k.Side, k.Round, k.Position)
}

type Match struct {
	TournamentID string `db:"tournament_id" json:"tournamentId"`

	// Position in the bracket, unique per tournament
	BracketSide BracketSide `db:"bracket_side" json:"bracketSide"`
	Round       int         `db:"round" json:"round"`
	Position    int         `db:"position" json:"position"`

	ParticipantA Slot `db:"participant_a" json:"participantA"`
	ParticipantB Slot `db:"participant_b" json:"participantB"`

	ScoreA int         `db:"score_a" json:"scoreA"`
	ScoreB int         `db:"score_b" json:"scoreB"`
	Winner *string     `db:"winner" json:"winner"`
	Status MatchStatus `db:"status" json:"status"`

	// Settled without being played
	Bye bool `db:"is_bye" json:"bye"`
}

func (m *Match) Key() Key {
	return Key{Side: m.BracketSide, Round: m.Round, Position: m.Position}
}

func (m *Match) SlotAt(ref SlotRef) Slot {
	if ref == SlotB {
		return m.ParticipantB
	}
	return m.ParticipantA
}

// Feed maps a position to the position and slot it feeds in the following
// round: positions 2p and 2p+1 both feed position p, even ones into slot A.
func Feed(position int) (int, SlotRef) {
	if position%2 == 0 {
		return position / 2, SlotA
	}
	return position / 2, SlotB
}

// Place writes s into exactly one slot. Writing the value already there is a
// no-op so duplicate advancement events are harmless.
func (m *Match) Place(ref SlotRef, s Slot) error {
	current := m.SlotAt(ref)
	if current == s {
		return nil
	}
	if !current.IsEmpty() {
		return fmt.Errorf("%w: %s slot %s holds %s, got %s", ErrSlotConflict, m.Key(), ref, current, s)
	}

	if ref == SlotB {
		m.ParticipantB = s
	} else {
		m.ParticipantA = s
	}
	return nil
}

// Ready reports whether both participants are known.
func (m *Match) Ready() bool {
	return m.ParticipantA.IsParticipant() && m.ParticipantB.IsParticipant()
}

func (m *Match) Start() error {
	switch m.Status {
	case MatchInProgress:
		return nil
	case MatchCompleted:
		return ErrMatchAlreadyCompleted
	}
	if !m.Ready() {
		return ErrMatchNotReady
	}
	m.Status = MatchInProgress
	return nil
}

func (m *Match) SetScore(scoreA, scoreB int) error {
	if m.Status == MatchCompleted {
		return ErrMatchAlreadyCompleted
	}
	if !m.Ready() {
		return ErrMatchNotReady
	}
	m.ScoreA = scoreA
	m.ScoreB = scoreB
	m.Status = MatchInProgress
	return nil
}

// Complete finalizes the result. Declaring the same winner again only
// corrects the scores; a different winner is rejected.
func (m *Match) Complete(scoreA, scoreB int, winner string) error {
	if !m.Ready() {
		return ErrMatchNotReady
	}
	a, _ := m.ParticipantA.ID()
	b, _ := m.ParticipantB.ID()
	if winner != a && winner != b {
		return fmt.Errorf("%w: %q", ErrWinnerNotInMatch, winner)
	}

	if m.Status == MatchCompleted {
		if m.Winner == nil || *m.Winner != winner {
			return ErrMatchAlreadyCompleted
		}
	}

	m.ScoreA = scoreA
	m.ScoreB = scoreB
	m.Winner = &winner
	m.Status = MatchCompleted
	return nil
}

// Loser returns the participant beaten in a completed, played match.
func (m *Match) Loser() (string, bool) {
	if m.Winner == nil || !m.Ready() {
		return "", false
	}
	a, _ := m.ParticipantA.ID()
	b, _ := m.ParticipantB.ID()
	if *m.Winner == a {
		return b, true
	}
	return a, true
}

// settleBye completes a match that will never be played: a participant
// facing a bye wins outright, two byes produce a void match with no winner.
func (m *Match) settleBye() bool {
	if m.Status == MatchCompleted {
		return false
	}

	a, b := m.ParticipantA, m.ParticipantB
	switch {
	case a.IsBye() && b.IsBye():
		m.Winner = nil
	case a.IsParticipant() && b.IsBye():
		id, _ := a.ID()
		m.Winner = &id
	case a.IsBye() && b.IsParticipant():
		id, _ := b.ID()
		m.Winner = &id
	default:
		return false
	}

	m.Status = MatchCompleted
	m.Bye = true
	return true
}
