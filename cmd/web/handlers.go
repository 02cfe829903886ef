package main

import (
	"errors"
	"net/http"

	"github.com/AdamBeresnev/op-bracket/internal/bracket"
	"github.com/AdamBeresnev/op-bracket/internal/httputil"
	"github.com/AdamBeresnev/op-bracket/internal/service"
	"github.com/AdamBeresnev/op-bracket/internal/store"
	"github.com/AdamBeresnev/op-bracket/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type createTournamentRequest struct {
	Name         string   `json:"name"`
	Format       string   `json:"format"`
	Seeding      string   `json:"seeding"`
	BracketReset bool     `json:"bracketReset"`
	Entries      []string `json:"entries"`
	// EntriesText is an alternative to Entries: one name per line.
	EntriesText string `json:"entriesText"`
}

type scoreRequest struct {
	ScoreA int `json:"scoreA"`
	ScoreB int `json:"scoreB"`
}

type resultRequest struct {
	ScoreA int    `json:"scoreA"`
	ScoreB int    `json:"scoreB"`
	Winner string `json:"winner"`
}

type tournamentResponse struct {
	Tournament  *bracket.Tournament `json:"tournament"`
	Entries     []bracket.Entry     `json:"entries"`
	Matches     []store.MatchRecord `json:"matches"`
	Rounds      []service.Round     `json:"rounds"`
	Champion    *bracket.Entry      `json:"champion,omitempty"`
	NextMatchID *uuid.UUID          `json:"nextMatchId,omitempty"`
}

type statusResponse struct {
	Status   bracket.TournamentStatus `json:"status"`
	Champion string                   `json:"champion,omitempty"`
}

type matchResponse struct {
	Match        *store.MatchRecord `json:"match"`
	ParticipantA *bracket.Entry     `json:"participantA,omitempty"`
	ParticipantB *bracket.Entry     `json:"participantB,omitempty"`
}

type resultResponse struct {
	Match            *store.MatchRecord       `json:"match"`
	Winner           string                   `json:"winner"`
	Advanced         []store.MatchRecord      `json:"advanced"`
	TournamentStatus bracket.TournamentStatus `json:"tournamentStatus"`
	Champion         *bracket.Entry           `json:"champion,omitempty"`
}

func (app *application) createTournament(w http.ResponseWriter, r *http.Request) {
	var req createTournamentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.BadRequest(w, "Invalid request body", err)
		return
	}

	format, err := bracket.ParseFormat(req.Format)
	if err != nil {
		httputil.BadRequest(w, err.Error(), err)
		return
	}
	seeding, err := bracket.ParseSeedStrategy(req.Seeding)
	if err != nil {
		httputil.BadRequest(w, err.Error(), err)
		return
	}

	entries := req.Entries
	if len(entries) == 0 {
		entries = service.ParseEntryNames(req.EntriesText)
	}

	id, err := app.tournaments.CreateTournament(r.Context(), service.CreateTournamentInput{
		Name:         req.Name,
		Format:       format,
		Seeding:      seeding,
		BracketReset: req.BracketReset,
		Entries:      entries,
	})
	if err != nil {
		writeServiceError(w, "Failed to create tournament", err)
		return
	}

	w.Header().Set("Location", "/tournaments/"+id.String())
	httputil.WriteJSON(w, http.StatusCreated, map[string]uuid.UUID{"id": id})
}

func (app *application) listTournaments(w http.ResponseWriter, r *http.Request) {
	tournaments, err := app.tournaments.ListTournaments(r.Context())
	if err != nil {
		httputil.InternalServerError(w, "Failed to list tournaments", err)
		return
	}
	if tournaments == nil {
		tournaments = []bracket.Tournament{}
	}
	httputil.WriteJSON(w, http.StatusOK, tournaments)
}

func (app *application) getTournament(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	data, err := app.tournaments.GetTournamentData(r.Context(), id)
	if err != nil {
		writeServiceError(w, "Failed to get tournament", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, tournamentResponse{
		Tournament:  data.Tournament,
		Entries:     data.Entries,
		Matches:     data.Matches,
		Rounds:      service.GroupRounds(data.Matches),
		Champion:    data.Champion,
		NextMatchID: data.NextMatchID,
	})
}

func (app *application) getTournamentStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	data, err := app.tournaments.GetTournamentData(r.Context(), id)
	if err != nil {
		writeServiceError(w, "Failed to get tournament", err)
		return
	}

	resp := statusResponse{Status: data.Tournament.Status}
	if data.Champion != nil {
		resp.Champion = data.Champion.Name
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (app *application) getMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	data, err := app.matches.GetMatchData(r.Context(), id)
	if err != nil {
		writeServiceError(w, "Failed to get match", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, matchResponse{
		Match:        data.Match,
		ParticipantA: data.ParticipantA,
		ParticipantB: data.ParticipantB,
	})
}

func (app *application) getAdvancement(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	adv, err := app.matches.GetAdvancement(r.Context(), id)
	if err != nil {
		writeServiceError(w, "Failed to resolve advancement", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, adv)
}

func (app *application) startMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	match, err := app.matches.StartMatch(r.Context(), id)
	if err != nil {
		writeServiceError(w, "Failed to start match", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, match)
}

func (app *application) updateScore(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req scoreRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.BadRequest(w, "Invalid request body", err)
		return
	}

	match, err := app.matches.UpdateScore(r.Context(), id, req.ScoreA, req.ScoreB)
	if err != nil {
		writeServiceError(w, "Failed to update score", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, match)
}

func (app *application) reportResult(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req resultRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.BadRequest(w, "Invalid request body", err)
		return
	}

	result, err := app.matches.ReportResult(r.Context(), id, service.ResultInput{
		ScoreA: req.ScoreA,
		ScoreB: req.ScoreB,
		Winner: req.Winner,
	})
	if err != nil {
		writeServiceError(w, "Failed to report result", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resultResponse{
		Match:            result.Match,
		Winner:           utils.OrZero(result.Match.Winner),
		Advanced:         result.Advanced,
		TournamentStatus: result.TournamentStatus,
		Champion:         result.Champion,
	})
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.BadRequest(w, "Invalid ID", err)
		return uuid.Nil, false
	}
	return id, true
}

var (
	notFoundErrors = []error{
		service.ErrTournamentNotFound,
		service.ErrMatchNotFound,
	}
	badRequestErrors = []error{
		service.ErrTournamentNameRequired,
		service.ErrEntryNameTooLong,
		service.ErrDuplicateEntry,
		service.ErrWinnerRequired,
		service.ErrAmbiguousWinner,
		service.ErrNegativeScore,
		bracket.ErrEmptyParticipantList,
		bracket.ErrInvalidParticipantCount,
		bracket.ErrUnknownFormat,
		bracket.ErrUnknownSeeding,
		bracket.ErrWinnerNotInMatch,
	}
	conflictErrors = []error{
		bracket.ErrMatchAlreadyCompleted,
		bracket.ErrMatchNotReady,
		bracket.ErrMatchNotCompleted,
		bracket.ErrSlotConflict,
		bracket.ErrTerminalRoundHasNoNext,
	}
)

// writeServiceError maps domain errors to status codes. Anything unknown,
// structural invariant violations included, is a 500.
func writeServiceError(w http.ResponseWriter, msg string, err error) {
	switch {
	case isAny(err, notFoundErrors):
		httputil.NotFound(w, err.Error(), err)
	case isAny(err, badRequestErrors):
		httputil.BadRequest(w, err.Error(), err)
	case isAny(err, conflictErrors):
		httputil.Conflict(w, err.Error(), err)
	default:
		httputil.InternalServerError(w, msg, err)
	}
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
