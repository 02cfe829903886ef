package store

import (
	"context"
	"testing"
	"time"

	"github.com/AdamBeresnev/op-bracket/internal/bracket"
	"github.com/AdamBeresnev/op-bracket/internal/db"
	"github.com/AdamBeresnev/op-bracket/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := db.Open("file::memory:")
	require.NoError(t, err, "Failed to connect to in-memory DB")

	require.NoError(t, db.RunMigrations(database.DB), "Failed to apply migrations")

	t.Cleanup(func() { database.Close() })
	return database
}

func createTournament(t *testing.T, database *sqlx.DB, store *TournamentStore) *bracket.Tournament {
	t.Helper()

	tournament := &bracket.Tournament{
		ID:           uuid.New(),
		Name:         "Test Tournament",
		Status:       bracket.TournamentPlanning,
		Format:       bracket.SingleElimination,
		Seeding:      bracket.SeedInputOrder,
		Participants: 4,
	}

	tx, err := database.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, store.CreateTournament(context.Background(), tx, tournament))
	require.NoError(t, tx.Commit())
	return tournament
}

func TestCreateTournament(t *testing.T) {
	database := setupTestDB(t)
	store := NewTournamentStore(database)
	ctx := context.Background()

	tournament := createTournament(t, database, store)

	fetched, err := store.GetTournament(ctx, tournament.ID)
	require.NoError(t, err)

	assert.Equal(t, tournament.ID, fetched.ID)
	assert.Equal(t, tournament.Name, fetched.Name)
	assert.Equal(t, tournament.Status, fetched.Status)
	assert.Equal(t, tournament.Format, fetched.Format)
	assert.Equal(t, tournament.Seeding, fetched.Seeding)
	assert.Equal(t, tournament.Participants, fetched.Participants)
	assert.False(t, fetched.BracketReset)
	assert.WithinDuration(t, time.Now().UTC(), fetched.CreatedAt, time.Minute)

	tournaments, err := store.ListTournaments(ctx)
	require.NoError(t, err)
	assert.Len(t, tournaments, 1)
}

func TestUpdateTournamentStatus(t *testing.T) {
	database := setupTestDB(t)
	store := NewTournamentStore(database)
	ctx := context.Background()

	tournament := createTournament(t, database, store)

	tx, err := database.BeginTxx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, store.UpdateTournamentStatusTx(ctx, tx, tournament.ID, bracket.TournamentInProgress))
	require.NoError(t, tx.Commit())

	fetched, err := store.GetTournament(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, bracket.TournamentInProgress, fetched.Status)
}

func TestCreateEntries(t *testing.T) {
	database := setupTestDB(t)
	store := NewTournamentStore(database)
	ctx := context.Background()

	tournament := createTournament(t, database, store)

	entries := []bracket.Entry{
		{ID: uuid.New(), TournamentID: tournament.ID, Name: "Entry 1", Seed: 1},
		{ID: uuid.New(), TournamentID: tournament.ID, Name: "Entry 2", Seed: 2},
	}

	tx, err := database.BeginTxx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, store.CreateEntries(ctx, tx, entries))
	require.NoError(t, tx.Commit())

	fetched, err := store.GetEntries(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, entries, fetched)
}

func TestCreateMatches(t *testing.T) {
	database := setupTestDB(t)
	store := NewTournamentStore(database)
	ctx := context.Background()

	tournament := createTournament(t, database, store)

	built, err := bracket.BuildDoubleElimination([]string{"a", "b", "c"}, tournament.ID.String())
	require.NoError(t, err)

	records := make([]MatchRecord, len(built))
	for i, m := range built {
		records[i] = MatchRecord{ID: uuid.New(), Match: m}
	}

	tx, err := database.BeginTxx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, store.CreateMatches(ctx, tx, records))
	require.NoError(t, tx.Commit())

	fetched, err := store.GetMatches(ctx, tournament.ID)
	require.NoError(t, err)
	require.Len(t, fetched, len(records))

	// Same order as built: winners, losers, final
	for i := range records {
		assert.Equal(t, records[i].ID, fetched[i].ID)
		assert.Equal(t, records[i].Match, fetched[i].Match)
	}

	bye, err := store.GetMatch(ctx, records[1].ID)
	require.NoError(t, err)
	assert.True(t, bye.Bye)
	assert.True(t, bye.ParticipantB.IsBye())
	require.NotNil(t, bye.Winner)
	assert.Equal(t, "c", *bye.Winner)
}

func insertMatch(t *testing.T, database *sqlx.DB, store *TournamentStore, m bracket.Match) MatchRecord {
	t.Helper()
	record := MatchRecord{ID: uuid.New(), Match: m}

	tx, err := database.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, store.CreateMatches(context.Background(), tx, []MatchRecord{record}))
	require.NoError(t, tx.Commit())
	return record
}

func TestAssignSlot_Conditional(t *testing.T) {
	database := setupTestDB(t)
	store := NewTournamentStore(database)
	ctx := context.Background()

	tournament := createTournament(t, database, store)
	record := insertMatch(t, database, store, bracket.Match{
		TournamentID: tournament.ID.String(),
		BracketSide:  bracket.WinnersSide,
		Round:        2,
		Status:       bracket.MatchUpcoming,
	})

	tx, err := database.BeginTxx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	require.NoError(t, store.AssignSlotTx(ctx, tx, record.ID, bracket.SlotA, bracket.Participant("x")))
	// Same value again is accepted
	require.NoError(t, store.AssignSlotTx(ctx, tx, record.ID, bracket.SlotA, bracket.Participant("x")))

	err = store.AssignSlotTx(ctx, tx, record.ID, bracket.SlotA, bracket.Participant("y"))
	assert.ErrorIs(t, err, bracket.ErrSlotConflict)

	require.NoError(t, store.AssignSlotTx(ctx, tx, record.ID, bracket.SlotB, bracket.Participant("y")))

	fetched, err := store.GetMatchTx(ctx, tx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, bracket.Participant("x"), fetched.ParticipantA)
	assert.Equal(t, bracket.Participant("y"), fetched.ParticipantB)
}

func TestUpdateMatchResult_WinnerIsFinal(t *testing.T) {
	database := setupTestDB(t)
	store := NewTournamentStore(database)
	ctx := context.Background()

	tournament := createTournament(t, database, store)
	record := insertMatch(t, database, store, bracket.Match{
		TournamentID: tournament.ID.String(),
		BracketSide:  bracket.WinnersSide,
		Round:        1,
		ParticipantA: bracket.Participant("x"),
		ParticipantB: bracket.Participant("y"),
		Status:       bracket.MatchUpcoming,
	})

	tx, err := database.BeginTxx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	require.NoError(t, record.Complete(2, 1, "x"))
	require.NoError(t, store.UpdateMatchResultTx(ctx, tx, &record))

	// Score correction with the same winner
	record.ScoreB = 0
	require.NoError(t, store.UpdateMatchResultTx(ctx, tx, &record))

	record.Winner = utils.Ptr("y")
	err = store.UpdateMatchResultTx(ctx, tx, &record)
	assert.ErrorIs(t, err, bracket.ErrMatchAlreadyCompleted)

	fetched, err := store.GetMatchTx(ctx, tx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, "x", *fetched.Winner)
	assert.Equal(t, 0, fetched.ScoreB)
	assert.Equal(t, bracket.MatchCompleted, fetched.Status)
}
