package bracket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readyMatch() Match {
	return Match{
		BracketSide:  WinnersSide,
		Round:        1,
		ParticipantA: Participant("A"),
		ParticipantB: Participant("B"),
		Status:       MatchUpcoming,
	}
}

func TestMatch_Lifecycle(t *testing.T) {
	m := readyMatch()

	require.NoError(t, m.Start())
	assert.Equal(t, MatchInProgress, m.Status)

	require.NoError(t, m.SetScore(1, 1))
	assert.Equal(t, 1, m.ScoreA)

	require.NoError(t, m.Complete(3, 1, "A"))
	assert.Equal(t, MatchCompleted, m.Status)
	require.NotNil(t, m.Winner)
	assert.Equal(t, "A", *m.Winner)

	loser, ok := m.Loser()
	require.True(t, ok)
	assert.Equal(t, "B", loser)

	assert.ErrorIs(t, m.Start(), ErrMatchAlreadyCompleted)
	assert.ErrorIs(t, m.SetScore(0, 0), ErrMatchAlreadyCompleted)
}

func TestMatch_CompleteIsFinal(t *testing.T) {
	m := readyMatch()
	require.NoError(t, m.Complete(3, 1, "A"))

	// Re-declaring the same winner may correct the score
	require.NoError(t, m.Complete(3, 2, "A"))
	assert.Equal(t, 2, m.ScoreB)

	err := m.Complete(1, 3, "B")
	assert.ErrorIs(t, err, ErrMatchAlreadyCompleted)
	assert.Equal(t, "A", *m.Winner)
}

func TestMatch_CompleteValidation(t *testing.T) {
	m := readyMatch()
	assert.ErrorIs(t, m.Complete(1, 0, "Z"), ErrWinnerNotInMatch)

	waiting := Match{ParticipantA: Participant("A"), Status: MatchUpcoming}
	assert.ErrorIs(t, waiting.Start(), ErrMatchNotReady)
	assert.ErrorIs(t, waiting.Complete(1, 0, "A"), ErrMatchNotReady)

	bye := Match{ParticipantA: Participant("A"), ParticipantB: Bye}
	assert.ErrorIs(t, bye.Complete(1, 0, "A"), ErrMatchNotReady)
}

func TestMatch_Place(t *testing.T) {
	m := Match{}

	require.NoError(t, m.Place(SlotB, Participant("C")))
	require.NoError(t, m.Place(SlotB, Participant("C")))
	assert.True(t, m.ParticipantA.IsEmpty())
	assert.Equal(t, Participant("C"), m.ParticipantB)

	err := m.Place(SlotB, Participant("D"))
	assert.ErrorIs(t, err, ErrSlotConflict)
	assert.Equal(t, Participant("C"), m.ParticipantB)

	require.NoError(t, m.Place(SlotA, Bye))
	assert.ErrorIs(t, m.Place(SlotA, Participant("A")), ErrSlotConflict)
}

func TestSlot_Storage(t *testing.T) {
	for _, s := range []Slot{{}, Bye, Participant("A"), Participant("bye"), Participant("p:x")} {
		v, err := s.Value()
		require.NoError(t, err)

		var scanned Slot
		require.NoError(t, scanned.Scan(v))
		assert.Equal(t, s, scanned, "slot %s", s)
	}

	var s Slot
	require.NoError(t, s.Scan([]byte("p:42")))
	assert.Equal(t, Participant("42"), s)

	assert.Error(t, s.Scan("garbage"))
	assert.Error(t, s.Scan(42))
}

func TestSlot_JSON(t *testing.T) {
	m := Match{ParticipantA: Participant("A"), ParticipantB: Bye}

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"participantA":{"kind":"participant","id":"A"}`)
	assert.Contains(t, string(data), `"participantB":{"kind":"bye"}`)

	var decoded Match
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, m.ParticipantA, decoded.ParticipantA)
	assert.Equal(t, m.ParticipantB, decoded.ParticipantB)
}
