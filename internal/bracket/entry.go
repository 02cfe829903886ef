package bracket

import "github.com/google/uuid"

// Entry is a registered participant. Its ID is the identifier the engine
// places into match slots.
type Entry struct {
	ID           uuid.UUID `db:"id" json:"id"`
	TournamentID uuid.UUID `db:"tournament_id" json:"tournamentId"`
	Name         string    `db:"name" json:"name"`
	Seed         int       `db:"seed" json:"seed"`
}
