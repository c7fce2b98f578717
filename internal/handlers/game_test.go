package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/grand-tour/internal/storage"
	"github.com/jwebster45206/grand-tour/pkg/content"
	"github.com/jwebster45206/grand-tour/pkg/game"
	"github.com/jwebster45206/grand-tour/pkg/leaderboard"
	"github.com/jwebster45206/grand-tour/pkg/state"
)

func leaderboardEntry(i, score int) leaderboard.Entry {
	return leaderboard.Entry{
		PlayerName:  fmt.Sprintf("player-%d", i),
		CharacterID: "knight",
		Score:       score,
	}
}

// quietRand fails every probability draw so handler tests see no
// deaths, regeneration or random encounters.
type quietRand struct{}

func (quietRand) Float64() float64 { return 1 }
func (quietRand) Intn(n int) int   { return 0 }

func newTestMux(t *testing.T) (*chi.Mux, *storage.MockStorage) {
	t.Helper()
	reg, err := content.Load()
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := game.NewEngine(reg, game.DefaultRules(), quietRand{}, logger)
	store := storage.NewMockStorage()

	gameHandler := NewGameHandler(engine, store, logger)
	leaderboardHandler := NewLeaderboardHandler(store, logger)
	contentHandler := NewContentHandler(reg, logger)

	r := chi.NewRouter()
	r.Route("/v1", func(r chi.Router) {
		r.Route("/game", func(r chi.Router) {
			r.Post("/", gameHandler.Create)
			r.Get("/{id}", gameHandler.Get)
			r.Delete("/{id}", gameHandler.Delete)
			r.Post("/{id}/move", gameHandler.Move)
			r.Post("/{id}/riddle", gameHandler.Riddle)
			r.Post("/{id}/event", gameHandler.Event)
			r.Post("/{id}/complete", gameHandler.Complete)
			r.Get("/{id}/location", gameHandler.CheckLocation)
		})
		r.Get("/leaderboard", leaderboardHandler.Top)
		r.Route("/content", func(r chi.Router) {
			r.Get("/cities", contentHandler.Cities)
			r.Get("/characters", contentHandler.Characters)
		})
	})
	return r, store
}

func doJSON(t *testing.T, mux *chi.Mux, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func startSession(t *testing.T, mux *chi.Mux) state.PlayerState {
	t.Helper()
	w := doJSON(t, mux, http.MethodPost, "/v1/game", StartGameRequest{
		City:       "london",
		Character:  "knight",
		PlayerName: "Marie",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var ps state.PlayerState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ps))
	require.NotEqual(t, uuid.Nil, ps.ID)
	return ps
}

func TestCreateGame(t *testing.T) {
	mux, _ := newTestMux(t)

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
	}{
		{
			name:       "valid request",
			body:       StartGameRequest{City: "london", Character: "knight", PlayerName: "Marie"},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "unknown city",
			body:       StartGameRequest{City: "atlantis", Character: "knight", PlayerName: "Marie"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown character",
			body:       StartGameRequest{City: "london", Character: "wizard", PlayerName: "Marie"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing player name",
			body:       StartGameRequest{City: "london", Character: "knight"},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, mux, http.MethodPost, "/v1/game", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestCreateGame_InvalidBody(t *testing.T) {
	mux, _ := newTestMux(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/game", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetGame(t *testing.T) {
	mux, _ := newTestMux(t)
	ps := startSession(t, mux)

	w := doJSON(t, mux, http.MethodGet, "/v1/game/"+ps.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got state.PlayerState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, ps.ID, got.ID)
	assert.Equal(t, "Marie", got.PlayerName)
	assert.Equal(t, "london", got.CurrentCity)
}

func TestGetGame_NotFound(t *testing.T) {
	mux, _ := newTestMux(t)

	w := doJSON(t, mux, http.MethodGet, "/v1/game/"+uuid.New().String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, mux, http.MethodGet, "/v1/game/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteGame(t *testing.T) {
	mux, _ := newTestMux(t)
	ps := startSession(t, mux)

	w := doJSON(t, mux, http.MethodDelete, "/v1/game/"+ps.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, mux, http.MethodGet, "/v1/game/"+ps.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMoveGame(t *testing.T) {
	mux, _ := newTestMux(t)
	ps := startSession(t, mux)

	w := doJSON(t, mux, http.MethodPost, "/v1/game/"+ps.ID.String()+"/move", MoveRequest{Direction: "north"})
	require.Equal(t, http.StatusOK, w.Code)

	var out state.MoveOutcome
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, 1, out.Moves)
	assert.Greater(t, out.Position.Lat, 51.5074)

	// State change is persisted.
	w = doJSON(t, mux, http.MethodGet, "/v1/game/"+ps.ID.String(), nil)
	var got state.PlayerState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 1, got.MoveCount)
}

func TestMoveGame_InvalidDirection(t *testing.T) {
	mux, _ := newTestMux(t)
	ps := startSession(t, mux)

	w := doJSON(t, mux, http.MethodPost, "/v1/game/"+ps.ID.String()+"/move", MoveRequest{Direction: "up"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRiddle(t *testing.T) {
	mux, _ := newTestMux(t)
	ps := startSession(t, mux)
	path := "/v1/game/" + ps.ID.String() + "/riddle"

	// Wrong answer costs points but keeps the riddle open.
	w := doJSON(t, mux, http.MethodPost, path, RiddleRequest{Answer: "ocean"})
	require.Equal(t, http.StatusOK, w.Code)
	var out state.SolveOutcome
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.False(t, out.Correct)
	assert.Equal(t, -10, out.Score)

	w = doJSON(t, mux, http.MethodPost, path, RiddleRequest{Answer: "River"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.True(t, out.Correct)
	assert.Equal(t, 90, out.Score)
	assert.Equal(t, 1, out.CitiesVisited)

	// Solving the same riddle twice conflicts.
	w = doJSON(t, mux, http.MethodPost, path, RiddleRequest{Answer: "river"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestEvent_NoneActive(t *testing.T) {
	mux, _ := newTestMux(t)
	ps := startSession(t, mux)

	w := doJSON(t, mux, http.MethodPost, "/v1/game/"+ps.ID.String()+"/event", EventRequest{Choice: "Press on through the storm"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestComplete_Idempotent(t *testing.T) {
	mux, store := newTestMux(t)
	ps := startSession(t, mux)

	w := doJSON(t, mux, http.MethodPost, "/v1/game/"+ps.ID.String()+"/riddle", RiddleRequest{Answer: "river"})
	require.Equal(t, http.StatusOK, w.Code)

	path := "/v1/game/" + ps.ID.String() + "/complete"
	w = doJSON(t, mux, http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp CompleteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.State.Completed)

	// Completing again returns the same snapshot but records nothing.
	w = doJSON(t, mux, http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, w.Code)

	entries, err := store.TopScores(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Marie", entries[0].PlayerName)
	// 100 riddle points plus the full efficiency bonus for zero moves.
	assert.Equal(t, 200, entries[0].Score)
}

func TestComplete_RecordFailureIsRetryable(t *testing.T) {
	mux, store := newTestMux(t)
	ps := startSession(t, mux)

	w := doJSON(t, mux, http.MethodPost, "/v1/game/"+ps.ID.String()+"/riddle", RiddleRequest{Answer: "river"})
	require.Equal(t, http.StatusOK, w.Code)

	path := "/v1/game/" + ps.ID.String() + "/complete"
	store.RecordErr = errors.New("leaderboard unavailable")
	w = doJSON(t, mux, http.MethodPost, path, nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	// The stored run is still open, so the client can try again.
	stored, err := store.LoadPlayerState(context.Background(), ps.ID)
	require.NoError(t, err)
	assert.False(t, stored.Completed)

	store.RecordErr = nil
	w = doJSON(t, mux, http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, w.Code)

	entries, err := store.TopScores(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 200, entries[0].Score)
}

func TestComplete_AfterDeathConflicts(t *testing.T) {
	mux, store := newTestMux(t)
	ps := startSession(t, mux)

	// Kill the stored session directly.
	stored, err := store.LoadPlayerState(context.Background(), ps.ID)
	require.NoError(t, err)
	stored.HasDied = true
	require.NoError(t, store.SavePlayerState(context.Background(), ps.ID, stored))

	w := doJSON(t, mux, http.MethodPost, "/v1/game/"+ps.ID.String()+"/complete", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCheckLocation(t *testing.T) {
	mux, _ := newTestMux(t)
	ps := startSession(t, mux)
	base := "/v1/game/" + ps.ID.String() + "/location"

	w := doJSON(t, mux, http.MethodGet, base+"?lat=46.8566&lon=2.3522", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var out state.LocationCheck
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.False(t, out.ShowHidden)

	w = doJSON(t, mux, http.MethodGet, base+"?lat=abc&lon=2.3522", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, mux, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCorruptedSessionIsReset(t *testing.T) {
	mux, store := newTestMux(t)
	ps := startSession(t, mux)

	store.LoadErr = errors.New("unreadable payload")
	w := doJSON(t, mux, http.MethodPost, "/v1/game/"+ps.ID.String()+"/move", MoveRequest{Direction: "north"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestFailedActionLeavesStateUntouched(t *testing.T) {
	mux, store := newTestMux(t)
	ps := startSession(t, mux)

	// Rejected riddle answer location: no active event, so the event
	// endpoint fails and the stored state must not change.
	w := doJSON(t, mux, http.MethodPost, "/v1/game/"+ps.ID.String()+"/event", EventRequest{Choice: "anything"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	stored, err := store.LoadPlayerState(context.Background(), ps.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.MoveCount)
	assert.Equal(t, 0, stored.SuccessfulEvents)
}

func TestLeaderboardEndpoint(t *testing.T) {
	mux, store := newTestMux(t)

	for i, score := range []int{100, 300, 200} {
		require.NoError(t, store.RecordScore(context.Background(), leaderboardEntry(i, score)))
	}

	w := doJSON(t, mux, http.MethodGet, "/v1/leaderboard", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp LeaderboardResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Entries, 3)
	assert.Equal(t, 300, resp.Entries[0].Score)
	assert.Equal(t, 3, resp.Stats.Count)
	assert.InDelta(t, 200.0, resp.Stats.AvgScore, 1e-9)

	w = doJSON(t, mux, http.MethodGet, "/v1/leaderboard?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Entries, 1)

	w = doJSON(t, mux, http.MethodGet, "/v1/leaderboard?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestContentEndpoints(t *testing.T) {
	mux, _ := newTestMux(t)

	w := doJSON(t, mux, http.MethodGet, "/v1/content/cities", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cities []content.City
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cities))
	assert.Len(t, cities, 5)
	assert.Equal(t, "london", cities[0].ID)
	// Riddle answers never leave the server.
	assert.NotContains(t, w.Body.String(), "river")

	w = doJSON(t, mux, http.MethodGet, "/v1/content/characters", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var chars []content.Character
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &chars))
	assert.Len(t, chars, 5)
}

func TestHealthHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHealthHandler(storage.NewMockStorage(), logger)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "grand-tour-api", resp.Service)
}
