package service

import (
	"context"
	"testing"

	"github.com/AdamBeresnev/op-bracket/internal/bracket"
	"github.com/AdamBeresnev/op-bracket/internal/db"
	"github.com/AdamBeresnev/op-bracket/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
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

type fixture struct {
	store       *store.TournamentStore
	tournaments *TournamentService
	matches     *MatchService
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	database := setupTestDB(t)
	tournamentStore := store.NewTournamentStore(database)
	return fixture{
		store:       tournamentStore,
		tournaments: NewTournamentService(database, tournamentStore),
		matches:     NewMatchService(database, tournamentStore),
	}
}

func (f fixture) create(t *testing.T, input CreateTournamentInput) uuid.UUID {
	t.Helper()
	if input.Name == "" {
		input.Name = "Test Tournament"
	}
	id, err := f.tournaments.CreateTournament(context.Background(), input)
	require.NoError(t, err)
	return id
}

func (f fixture) match(t *testing.T, tournamentID uuid.UUID, side bracket.BracketSide, round, position int) store.MatchRecord {
	t.Helper()
	records, err := f.store.GetMatches(context.Background(), tournamentID)
	require.NoError(t, err)
	for _, r := range records {
		if r.Key() == (bracket.Key{Side: side, Round: round, Position: position}) {
			return r
		}
	}
	require.Failf(t, "match not found", "%s/R%d/P%d", side, round, position)
	return store.MatchRecord{}
}

// entryIDs maps entry names to the IDs placed in match slots.
func (f fixture) entryIDs(t *testing.T, tournamentID uuid.UUID) map[string]string {
	t.Helper()
	entries, err := f.store.GetEntries(context.Background(), tournamentID)
	require.NoError(t, err)
	ids := make(map[string]string, len(entries))
	for _, e := range entries {
		ids[e.Name] = e.ID.String()
	}
	return ids
}
