package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AdamBeresnev/op-bracket/internal/bracket"
	"github.com/AdamBeresnev/op-bracket/internal/db"
	"github.com/AdamBeresnev/op-bracket/internal/middleware"
	"github.com/AdamBeresnev/op-bracket/internal/service"
	"github.com/AdamBeresnev/op-bracket/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	database, err := db.Open("file::memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations(database.DB))
	t.Cleanup(func() { database.Close() })

	tournamentStore := store.NewTournamentStore(database)
	app := &application{
		tournaments: service.NewTournamentService(database, tournamentStore),
		matches:     service.NewMatchService(database, tournamentStore),
	}

	server := httptest.NewServer(app.routes([]string{"*"}, middleware.NewRateLimiter(1000, 1000)))
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, method, url string, body any, out any) int {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestTournamentLifecycle(t *testing.T) {
	server := newTestServer(t)

	var created struct {
		ID string `json:"id"`
	}
	status := doJSON(t, http.MethodPost, server.URL+"/tournaments", map[string]any{
		"name":        "Friday Cup",
		"entriesText": "Alice\nBob\nCarol\n",
	}, &created)
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, created.ID)

	var list []bracket.Tournament
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, server.URL+"/tournaments", nil, &list))
	assert.Len(t, list, 1)

	var data tournamentResponse
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, server.URL+"/tournaments/"+created.ID, nil, &data))
	assert.Equal(t, "Friday Cup", data.Tournament.Name)
	assert.Len(t, data.Matches, 3)
	assert.Len(t, data.Rounds, 2)
	require.NotNil(t, data.NextMatchID)

	matchURL := server.URL + "/matches/" + data.NextMatchID.String()

	var match store.MatchRecord
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, matchURL+"/start", nil, &match))
	assert.Equal(t, bracket.MatchInProgress, match.Status)

	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, matchURL+"/score", scoreRequest{ScoreA: 1}, &match))
	assert.Equal(t, 1, match.ScoreA)

	var result resultResponse
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, matchURL+"/result", resultRequest{ScoreA: 2, Winner: "Alice"}, &result))
	assert.Equal(t, bracket.TournamentInProgress, result.TournamentStatus)
	require.Len(t, result.Advanced, 1)
	final := result.Advanced[0]

	var adv bracket.Advancement
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, matchURL+"/advancement", nil, &adv))
	assert.Equal(t, result.Winner, adv.Winner)
	assert.Equal(t, final.Key(), adv.WinnerTo.Key())

	var errBody map[string]string
	status = doJSON(t, http.MethodPost, matchURL+"/result", resultRequest{Winner: "Bob"}, &errBody)
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, errBody["error"], "already completed")

	finalURL := server.URL + "/matches/" + final.ID.String()
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, finalURL+"/result", resultRequest{ScoreB: 3, Winner: "carol"}, &result))
	assert.Equal(t, bracket.TournamentCompleted, result.TournamentStatus)
	require.NotNil(t, result.Champion)
	assert.Equal(t, "Carol", result.Champion.Name)

	var st statusResponse
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, server.URL+"/tournaments/"+created.ID+"/status", nil, &st))
	assert.Equal(t, bracket.TournamentCompleted, st.Status)
	assert.Equal(t, "Carol", st.Champion)
}

func TestErrorStatuses(t *testing.T) {
	server := newTestServer(t)

	testCases := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{
			name:   "Single participant",
			method: http.MethodPost,
			path:   "/tournaments",
			body:   map[string]any{"name": "T", "entries": []string{"A"}},
			status: http.StatusBadRequest,
		},
		{
			name:   "Unknown format",
			method: http.MethodPost,
			path:   "/tournaments",
			body:   map[string]any{"name": "T", "format": "swiss", "entries": []string{"A", "B"}},
			status: http.StatusBadRequest,
		},
		{
			name:   "Unknown field",
			method: http.MethodPost,
			path:   "/tournaments",
			body:   map[string]any{"title": "T"},
			status: http.StatusBadRequest,
		},
		{
			name:   "Malformed ID",
			method: http.MethodGet,
			path:   "/tournaments/not-a-uuid",
			status: http.StatusBadRequest,
		},
		{
			name:   "Unknown tournament",
			method: http.MethodGet,
			path:   "/tournaments/00000000-0000-0000-0000-000000000000",
			status: http.StatusNotFound,
		},
		{
			name:   "Unknown match",
			method: http.MethodPost,
			path:   "/matches/00000000-0000-0000-0000-000000000000/result",
			body:   resultRequest{Winner: "A"},
			status: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var errBody map[string]string
			status := doJSON(t, tc.method, server.URL+tc.path, tc.body, &errBody)
			assert.Equal(t, tc.status, status)
			assert.NotEmpty(t, errBody["error"])
		})
	}
}
