package bracket

import (
	"time"

	"github.com/google/uuid"
)

type Tournament struct {
	ID           uuid.UUID        `db:"id" json:"id"`
	Name         string           `db:"name" json:"name"`
	Status       TournamentStatus `db:"status" json:"status"`
	Format       Format           `db:"format" json:"format"`
	Seeding      SeedStrategy     `db:"seeding" json:"seeding"`
	BracketReset bool             `db:"bracket_reset" json:"bracketReset"`
	Participants int              `db:"participant_count" json:"participantCount"`
	CreatedAt    time.Time        `db:"created_at" json:"createdAt"`
}

// Layout rebuilds the bracket layout the tournament was created with.
func (t *Tournament) Layout() (Layout, error) {
	return NewLayout(t.Format, t.Participants, t.BracketReset)
}
