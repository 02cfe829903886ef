package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AdamBeresnev/op-bracket/internal/bracket"
	"github.com/AdamBeresnev/op-bracket/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

type MatchService struct {
	db    *sqlx.DB
	store *store.TournamentStore
	locks *tournamentLocks
}

func NewMatchService(db *sqlx.DB, store *store.TournamentStore) *MatchService {
	return &MatchService{db: db, store: store, locks: newTournamentLocks()}
}

type MatchData struct {
	Match        *store.MatchRecord
	ParticipantA *bracket.Entry
	ParticipantB *bracket.Entry
}

// ResultInput reports a finished match. Winner is an entry ID or a name that
// identifies one of the two participants.
type ResultInput struct {
	ScoreA int
	ScoreB int
	Winner string
}

type ResultData struct {
	Match            *store.MatchRecord
	Advanced         []store.MatchRecord
	TournamentStatus bracket.TournamentStatus
	Champion         *bracket.Entry
}

func (s *MatchService) GetMatchData(ctx context.Context, matchID uuid.UUID) (*MatchData, error) {
	match, err := s.getMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	tournamentID, err := uuid.Parse(match.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse tournament id: %w", err)
	}

	entries, err := s.store.GetEntries(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get entries: %w", err)
	}

	data := &MatchData{Match: match}
	if id, ok := match.ParticipantA.ID(); ok {
		data.ParticipantA = findEntry(entries, id)
	}
	if id, ok := match.ParticipantB.ID(); ok {
		data.ParticipantB = findEntry(entries, id)
	}
	return data, nil
}

func (s *MatchService) StartMatch(ctx context.Context, matchID uuid.UUID) (*store.MatchRecord, error) {
	return s.updateMatch(ctx, matchID, func(m *store.MatchRecord) error {
		return m.Start()
	})
}

func (s *MatchService) UpdateScore(ctx context.Context, matchID uuid.UUID, scoreA, scoreB int) (*store.MatchRecord, error) {
	if scoreA < 0 || scoreB < 0 {
		return nil, ErrNegativeScore
	}
	return s.updateMatch(ctx, matchID, func(m *store.MatchRecord) error {
		return m.SetScore(scoreA, scoreB)
	})
}

// updateMatch applies an in-play change to a single match and moves the
// tournament out of planning if this is the first match played.
func (s *MatchService) updateMatch(ctx context.Context, matchID uuid.UUID, apply func(*store.MatchRecord) error) (*store.MatchRecord, error) {
	tournamentID, err := s.tournamentOf(ctx, matchID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(tournamentID)
	defer unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	match, err := s.store.GetMatchTx(ctx, tx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	if err := apply(match); err != nil {
		return nil, err
	}
	if err := s.store.UpdateMatchResultTx(ctx, tx, match); err != nil {
		return nil, fmt.Errorf("failed to update match: %w", err)
	}

	tournament, err := s.store.GetTournamentTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}
	if tournament.Status == bracket.TournamentPlanning {
		if err := s.store.UpdateTournamentStatusTx(ctx, tx, tournamentID, bracket.TournamentInProgress); err != nil {
			return nil, fmt.Errorf("failed to update tournament status: %w", err)
		}
	}

	return match, tx.Commit()
}

// ReportResult completes a match and advances its participants through the
// bracket. Results for the same tournament are processed one at a time, and
// every slot write is conditional, so two results feeding the same match can
// never overwrite each other.
func (s *MatchService) ReportResult(ctx context.Context, matchID uuid.UUID, input ResultInput) (*ResultData, error) {
	if input.ScoreA < 0 || input.ScoreB < 0 {
		return nil, ErrNegativeScore
	}
	if strings.TrimSpace(input.Winner) == "" {
		return nil, ErrWinnerRequired
	}

	tournamentID, err := s.tournamentOf(ctx, matchID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(tournamentID)
	defer unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	tournament, err := s.store.GetTournamentTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}
	layout, err := tournament.Layout()
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild layout: %w", err)
	}

	records, err := s.store.GetMatchesTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get matches: %w", err)
	}
	entries, err := s.store.GetEntriesTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get entries: %w", err)
	}

	matches := engineMatches(records)
	index := bracket.IndexMatches(matches)

	pos := -1
	for i := range records {
		if records[i].ID == matchID {
			pos = i
			break
		}
	}
	if pos < 0 {
		return nil, ErrMatchNotFound
	}
	match := &matches[pos]

	winner, err := resolveWinner(input.Winner, match, entries)
	if err != nil {
		return nil, err
	}
	if err := match.Complete(input.ScoreA, input.ScoreB, winner); err != nil {
		return nil, err
	}

	touched, err := layout.Advance(index, match.Key())
	if err != nil {
		return nil, fmt.Errorf("failed to advance match %s: %w", match.Key(), err)
	}

	completed := store.MatchRecord{ID: records[pos].ID, Match: *match, CreatedAt: records[pos].CreatedAt}
	if err := s.store.UpdateMatchResultTx(ctx, tx, &completed); err != nil {
		return nil, fmt.Errorf("failed to update match: %w", err)
	}

	positions := make(map[bracket.Key]int, len(records))
	for i := range records {
		positions[records[i].Key()] = i
	}

	advanced := make([]store.MatchRecord, 0, len(touched))
	for _, k := range touched {
		i := positions[k]
		next := store.MatchRecord{ID: records[i].ID, Match: matches[i], CreatedAt: records[i].CreatedAt}
		if err := s.persistAdvance(ctx, tx, &records[i], &next); err != nil {
			return nil, err
		}
		advanced = append(advanced, next)
	}

	status := bracket.AggregateStatus(matches)
	if status != tournament.Status {
		if err := s.store.UpdateTournamentStatusTx(ctx, tx, tournamentID, status); err != nil {
			return nil, fmt.Errorf("failed to update tournament status: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	slog.Info("match result recorded",
		"tournament_id", tournamentID,
		"match", match.Key().String(),
		"winner", winner,
		"advanced", len(advanced),
		"status", status,
	)

	data := &ResultData{
		Match:            &completed,
		Advanced:         advanced,
		TournamentStatus: status,
	}
	if champion, ok := bracket.Champion(matches); ok {
		data.Champion = findEntry(entries, champion)
	}
	return data, nil
}

// persistAdvance writes the slots that changed between before and after, and
// the result if the advance settled the match against a bye.
func (s *MatchService) persistAdvance(ctx context.Context, tx *sqlx.Tx, before, after *store.MatchRecord) error {
	for _, ref := range []bracket.SlotRef{bracket.SlotA, bracket.SlotB} {
		slot := after.SlotAt(ref)
		if before.SlotAt(ref) == slot {
			continue
		}
		if err := s.store.AssignSlotTx(ctx, tx, after.ID, ref, slot); err != nil {
			if errors.Is(err, bracket.ErrSlotConflict) {
				slog.Warn("slot conflict", "match", after.Key().String(), "slot", ref.String())
			}
			return fmt.Errorf("failed to assign slot: %w", err)
		}
	}

	if after.Status != before.Status {
		if err := s.store.UpdateMatchResultTx(ctx, tx, after); err != nil {
			return fmt.Errorf("failed to settle match: %w", err)
		}
	}
	return nil
}

func (s *MatchService) getMatch(ctx context.Context, matchID uuid.UUID) (*store.MatchRecord, error) {
	match, err := s.store.GetMatch(ctx, matchID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return match, nil
}

func (s *MatchService) tournamentOf(ctx context.Context, matchID uuid.UUID) (uuid.UUID, error) {
	match, err := s.getMatch(ctx, matchID)
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(match.TournamentID)
}

// resolveWinner accepts the winner as an entry ID, an exact name or a fuzzy
// name. Only the two participants of the match are candidates.
func resolveWinner(input string, m *bracket.Match, entries []bracket.Entry) (string, error) {
	if !m.Ready() {
		return "", bracket.ErrMatchNotReady
	}
	a, _ := m.ParticipantA.ID()
	b, _ := m.ParticipantB.ID()

	input = strings.TrimSpace(input)
	if input == a || input == b {
		return input, nil
	}

	names := make(map[string]string, 2)
	for _, id := range []string{a, b} {
		if e := findEntry(entries, id); e != nil {
			names[e.Name] = id
		}
	}

	for name, id := range names {
		if strings.EqualFold(name, input) {
			return id, nil
		}
	}

	candidates := make([]string, 0, len(names))
	for name := range names {
		candidates = append(candidates, name)
	}

	switch found := fuzzy.FindFold(input, candidates); len(found) {
	case 0:
		return "", fmt.Errorf("%w: %q", bracket.ErrWinnerNotInMatch, input)
	case 1:
		return names[found[0]], nil
	default:
		return "", fmt.Errorf("%w: %q", ErrAmbiguousWinner, input)
	}
}

// GetAdvancement reports where the participants of a completed match went.
func (s *MatchService) GetAdvancement(ctx context.Context, matchID uuid.UUID) (*bracket.Advancement, error) {
	match, err := s.getMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	tournamentID, err := uuid.Parse(match.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse tournament id: %w", err)
	}
	tournament, err := s.store.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}
	layout, err := tournament.Layout()
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild layout: %w", err)
	}

	adv, err := layout.Resolve(match.Match)
	if err != nil {
		return nil, err
	}
	return &adv, nil
}
