package store

import (
	"context"
	"fmt"
	"time"

	"github.com/AdamBeresnev/op-bracket/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// MatchRecord is a bracket match as persisted, with its storage identity.
type MatchRecord struct {
	ID uuid.UUID `db:"id" json:"id"`
	bracket.Match
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type TournamentStore struct {
	db *sqlx.DB
}

func NewTournamentStore(db *sqlx.DB) *TournamentStore {
	return &TournamentStore{db: db}
}

const (
	insertTournamentQuery = `
		INSERT INTO tournaments (id, name, status, format, seeding, bracket_reset, participant_count)
		VALUES (:id, :name, :status, :format, :seeding, :bracket_reset, :participant_count)
	`
	insertEntryQuery = `
		INSERT INTO entries (id, tournament_id, name, seed)
		VALUES (:id, :tournament_id, :name, :seed)
	`
	insertMatchQuery = `
		INSERT INTO matches (id, tournament_id, bracket_side, round, position, participant_a, participant_b, score_a, score_b, winner, status, is_bye)
		VALUES (:id, :tournament_id, :bracket_side, :round, :position, :participant_a, :participant_b, :score_a, :score_b, :winner, :status, :is_bye)
	`
	selectMatchesQuery = `
		SELECT * FROM matches WHERE tournament_id = ?
		ORDER BY CASE bracket_side WHEN 'winners' THEN 0 WHEN 'losers' THEN 1 ELSE 2 END, round ASC, position ASC
	`
	// A winner, once written, is never replaced by a different one.
	updateMatchResultQuery = `
		UPDATE matches SET score_a = ?, score_b = ?, winner = ?, status = ?, is_bye = ?
		WHERE id = ? AND (winner IS NULL OR winner = ?)
	`
)

// Rows per multi-row insert, well below sqlite's bound parameter limit.
const insertBatchSize = 200

func (s *TournamentStore) CreateTournament(ctx context.Context, tx *sqlx.Tx, tournament *bracket.Tournament) error {
	_, err := tx.NamedExecContext(ctx, insertTournamentQuery, tournament)
	return err
}

func (s *TournamentStore) UpdateTournamentStatusTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status bracket.TournamentStatus) error {
	_, err := tx.ExecContext(ctx, "UPDATE tournaments SET status = ? WHERE id = ?", status, id)
	return err
}

func (s *TournamentStore) GetTournament(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error) {
	var tournament bracket.Tournament
	if err := s.db.GetContext(ctx, &tournament, "SELECT * FROM tournaments WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &tournament, nil
}

func (s *TournamentStore) GetTournamentTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*bracket.Tournament, error) {
	var tournament bracket.Tournament
	if err := tx.GetContext(ctx, &tournament, "SELECT * FROM tournaments WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &tournament, nil
}

func (s *TournamentStore) ListTournaments(ctx context.Context) ([]bracket.Tournament, error) {
	var tournaments []bracket.Tournament
	err := s.db.SelectContext(ctx, &tournaments, "SELECT * FROM tournaments ORDER BY created_at DESC, name ASC")
	return tournaments, err
}

func (s *TournamentStore) CreateEntries(ctx context.Context, tx *sqlx.Tx, entries []bracket.Entry) error {
	for start := 0; start < len(entries); start += insertBatchSize {
		end := min(start+insertBatchSize, len(entries))
		if _, err := tx.NamedExecContext(ctx, insertEntryQuery, entries[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (s *TournamentStore) GetEntries(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Entry, error) {
	var entries []bracket.Entry
	err := s.db.SelectContext(ctx, &entries, "SELECT * FROM entries WHERE tournament_id = ? ORDER BY seed ASC", tournamentID)
	return entries, err
}

func (s *TournamentStore) GetEntriesTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) ([]bracket.Entry, error) {
	var entries []bracket.Entry
	err := tx.SelectContext(ctx, &entries, "SELECT * FROM entries WHERE tournament_id = ? ORDER BY seed ASC", tournamentID)
	return entries, err
}

func (s *TournamentStore) CreateMatches(ctx context.Context, tx *sqlx.Tx, matches []MatchRecord) error {
	for start := 0; start < len(matches); start += insertBatchSize {
		end := min(start+insertBatchSize, len(matches))
		if _, err := tx.NamedExecContext(ctx, insertMatchQuery, matches[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (s *TournamentStore) GetMatches(ctx context.Context, tournamentID uuid.UUID) ([]MatchRecord, error) {
	var matches []MatchRecord
	err := s.db.SelectContext(ctx, &matches, selectMatchesQuery, tournamentID)
	return matches, err
}

func (s *TournamentStore) GetMatchesTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) ([]MatchRecord, error) {
	var matches []MatchRecord
	err := tx.SelectContext(ctx, &matches, selectMatchesQuery, tournamentID)
	return matches, err
}

func (s *TournamentStore) GetMatch(ctx context.Context, id uuid.UUID) (*MatchRecord, error) {
	var match MatchRecord
	if err := s.db.GetContext(ctx, &match, "SELECT * FROM matches WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &match, nil
}

func (s *TournamentStore) GetMatchTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*MatchRecord, error) {
	var match MatchRecord
	if err := tx.GetContext(ctx, &match, "SELECT * FROM matches WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &match, nil
}

// UpdateMatchResultTx writes scores, winner and status. It refuses to replace
// a winner that is already set with a different one.
func (s *TournamentStore) UpdateMatchResultTx(ctx context.Context, tx *sqlx.Tx, match *MatchRecord) error {
	res, err := tx.ExecContext(ctx, updateMatchResultQuery,
		match.ScoreA, match.ScoreB, match.Winner, match.Status, match.Bye, match.ID, match.Winner)
	if err != nil {
		return err
	}
	return expectOneRow(res, fmt.Errorf("%w: match %s", bracket.ErrMatchAlreadyCompleted, match.ID))
}

// AssignSlotTx writes one participant slot only if it is still empty or
// already holds the same value. Two results feeding the same match can never
// overwrite each other's slot.
func (s *TournamentStore) AssignSlotTx(ctx context.Context, tx *sqlx.Tx, matchID uuid.UUID, ref bracket.SlotRef, slot bracket.Slot) error {
	column := "participant_a"
	if ref == bracket.SlotB {
		column = "participant_b"
	}

	value, err := slot.Value()
	if err != nil {
		return err
	}

	query := fmt.Sprintf("UPDATE matches SET %[1]s = ? WHERE id = ? AND (%[1]s IS NULL OR %[1]s = ?)", column)
	res, err := tx.ExecContext(ctx, query, value, matchID, value)
	if err != nil {
		return err
	}
	return expectOneRow(res, fmt.Errorf("%w: match %s slot %s", bracket.ErrSlotConflict, matchID, ref))
}
