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
	"golang.org/x/sync/errgroup"
)

type TournamentService struct {
	db    *sqlx.DB
	store *store.TournamentStore
}

func NewTournamentService(db *sqlx.DB, store *store.TournamentStore) *TournamentService {
	return &TournamentService{db: db, store: store}
}

type CreateTournamentInput struct {
	Name         string
	Format       bracket.Format
	Seeding      bracket.SeedStrategy
	BracketReset bool
	Entries      []string
}

type TournamentData struct {
	Tournament  *bracket.Tournament
	Entries     []bracket.Entry
	Matches     []store.MatchRecord
	Champion    *bracket.Entry
	NextMatchID *uuid.UUID
}

func (s *TournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (uuid.UUID, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return uuid.Nil, ErrTournamentNameRequired
	}

	format := input.Format
	if format == "" {
		format = bracket.SingleElimination
	}
	seeding := input.Seeding
	if seeding == "" {
		seeding = bracket.SeedInputOrder
	}

	tournamentID := uuid.New()
	entries, err := newEntries(tournamentID, input.Entries)
	if err != nil {
		return uuid.Nil, err
	}

	participants := make([]string, len(entries))
	for i, e := range entries {
		participants[i] = e.ID.String()
	}

	opts := []bracket.Option{bracket.WithSeeding(seeding)}
	if input.BracketReset {
		opts = append(opts, bracket.WithBracketReset())
	}

	built, err := bracket.Build(format, participants, tournamentID.String(), opts...)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to build bracket: %w", err)
	}

	matches := make([]bracket.Match, len(built))
	records := make([]store.MatchRecord, len(built))
	for i, m := range built {
		matches[i] = m
		records[i] = store.MatchRecord{ID: uuid.New(), Match: m}
	}

	tournament := bracket.Tournament{
		ID:           tournamentID,
		Name:         name,
		Status:       bracket.AggregateStatus(matches),
		Format:       format,
		Seeding:      seeding,
		BracketReset: input.BracketReset && format == bracket.DoubleElimination,
		Participants: len(entries),
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return uuid.Nil, err
	}
	defer tx.Rollback()

	if err := s.store.CreateTournament(ctx, tx, &tournament); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	if err := s.store.CreateEntries(ctx, tx, entries); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create entries: %w", err)
	}
	if err := s.store.CreateMatches(ctx, tx, records); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create matches: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, err
	}

	slog.Info("tournament created",
		"tournament_id", tournamentID,
		"format", format,
		"participants", len(entries),
		"matches", len(records),
	)
	return tournamentID, nil
}

// GetTournamentData loads everything needed to render a bracket. The status
// is recomputed from the matches rather than trusted from the row.
func (s *TournamentService) GetTournamentData(ctx context.Context, id uuid.UUID) (*TournamentData, error) {
	var (
		tournament *bracket.Tournament
		entries    []bracket.Entry
		records    []store.MatchRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tournament, err = s.store.GetTournament(gctx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTournamentNotFound
		}
		return err
	})
	g.Go(func() error {
		var err error
		entries, err = s.store.GetEntries(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		records, err = s.store.GetMatches(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	matches := engineMatches(records)
	tournament.Status = bracket.AggregateStatus(matches)

	data := &TournamentData{
		Tournament: tournament,
		Entries:    entries,
		Matches:    records,
	}

	if winner, ok := bracket.Champion(matches); ok {
		data.Champion = findEntry(entries, winner)
	}

	for _, r := range records {
		if r.Status != bracket.MatchCompleted && r.Ready() {
			id := r.ID
			data.NextMatchID = &id
			break
		}
	}

	return data, nil
}

func (s *TournamentService) ListTournaments(ctx context.Context) ([]bracket.Tournament, error) {
	return s.store.ListTournaments(ctx)
}

func engineMatches(records []store.MatchRecord) []bracket.Match {
	matches := make([]bracket.Match, len(records))
	for i, r := range records {
		matches[i] = r.Match
	}
	return matches
}

func findEntry(entries []bracket.Entry, id string) *bracket.Entry {
	for i := range entries {
		if entries[i].ID.String() == id {
			return &entries[i]
		}
	}
	return nil
}
