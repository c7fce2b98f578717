package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jwebster45206/grand-tour/internal/storage"
	"github.com/jwebster45206/grand-tour/pkg/game"
	"github.com/jwebster45206/grand-tour/pkg/geo"
	"github.com/jwebster45206/grand-tour/pkg/state"
)

// GameHandler serves the per-session game endpoints.
type GameHandler struct {
	engine  *game.Engine
	storage storage.Storage
	logger  *slog.Logger

	// locks serializes load→mutate→persist per session so overlapping
	// requests from the same client cannot lose updates.
	locks sync.Map // uuid.UUID → *sync.Mutex
}

// NewGameHandler creates a game handler over the given engine and store.
func NewGameHandler(engine *game.Engine, storage storage.Storage, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		engine:  engine,
		storage: storage,
		logger:  logger,
	}
}

func (h *GameHandler) sessionLock(id uuid.UUID) *sync.Mutex {
	mu, _ := h.locks.LoadOrStore(id, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// StartGameRequest is the body for creating a new session.
type StartGameRequest struct {
	City       string `json:"city"`
	Character  string `json:"character"`
	PlayerName string `json:"player_name"`
}

// Create handles POST /v1/game.
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req StartGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	ps, err := h.engine.StartGame(req.City, req.Character, req.PlayerName)
	if err != nil {
		h.logger.Warn("Failed to start game", "error", err)
		writeError(w, h.logger, statusForGameError(err), err.Error())
		return
	}

	if err := h.storage.SavePlayerState(r.Context(), ps.ID, ps); err != nil {
		h.logger.Error("Failed to save new session", "uuid", ps.ID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save game state")
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, ps)
}

// Get handles GET /v1/game/{id}: a read-only snapshot.
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	ps, ok := h.loadSession(w, r, id)
	if !ok {
		return
	}
	writeJSON(w, h.logger, http.StatusOK, ps)
}

// Delete handles DELETE /v1/game/{id}: reset.
func (h *GameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	if err := h.storage.DeletePlayerState(r.Context(), id); err != nil {
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to reset game")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveRequest is the body for a directional move.
type MoveRequest struct {
	Direction string `json:"direction"`
}

// Move handles POST /v1/game/{id}/move.
func (h *GameHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	dir, err := game.ParseDirection(req.Direction)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	h.withSession(w, r, func(ps *state.PlayerState) (interface{}, error) {
		return h.engine.Move(ps, dir)
	})
}

// RiddleRequest is the body for a riddle attempt.
type RiddleRequest struct {
	Answer string `json:"answer"`
}

// Riddle handles POST /v1/game/{id}/riddle.
func (h *GameHandler) Riddle(w http.ResponseWriter, r *http.Request) {
	var req RiddleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.withSession(w, r, func(ps *state.PlayerState) (interface{}, error) {
		return h.engine.SolveRiddle(ps, req.Answer)
	})
}

// EventRequest is the body for resolving a pending event.
type EventRequest struct {
	Choice string `json:"choice"`
}

// Event handles POST /v1/game/{id}/event.
func (h *GameHandler) Event(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.withSession(w, r, func(ps *state.PlayerState) (interface{}, error) {
		return h.engine.ResolveEvent(ps, req.Choice)
	})
}

// CompleteResponse pairs the final state with its leaderboard entry.
type CompleteResponse struct {
	State *state.PlayerState `json:"state"`
	Entry interface{}        `json:"entry"`
}

// Complete handles POST /v1/game/{id}/complete. It is idempotent: a
// second call returns the completed state without recording a second
// leaderboard entry.
func (h *GameHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	mu := h.sessionLock(id)
	mu.Lock()
	defer mu.Unlock()

	ps, ok := h.loadSession(w, r, id)
	if !ok {
		return
	}

	entry, recorded, err := h.engine.CompleteGame(ps)
	if err != nil {
		writeError(w, h.logger, statusForGameError(err), err.Error())
		return
	}

	// Record before persisting the completed flag: if recording fails,
	// the stored state is untouched and the client can retry.
	if recorded {
		if err := h.storage.RecordScore(r.Context(), *entry); err != nil {
			h.logger.Error("Failed to record leaderboard entry", "uuid", id, "error", err)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to record score")
			return
		}
		if err := h.storage.SavePlayerState(r.Context(), id, ps); err != nil {
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to save game state")
			return
		}
	}

	writeJSON(w, h.logger, http.StatusOK, CompleteResponse{State: ps, Entry: entry})
}

// CheckLocation handles GET /v1/game/{id}/location?lat=..&lon=..
// It is an idempotent query, though it may advance one-way reveal flags.
func (h *GameHandler) CheckLocation(w http.ResponseWriter, r *http.Request) {
	lat, err1 := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, err2 := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if err1 != nil || err2 != nil {
		writeError(w, h.logger, http.StatusBadRequest, "lat and lon query parameters are required")
		return
	}

	h.withSession(w, r, func(ps *state.PlayerState) (interface{}, error) {
		return h.engine.CheckLocation(ps, geo.Point{Lat: lat, Lon: lon})
	})
}

// withSession runs one engine action inside the session's lock,
// persisting the state only when the action succeeds.
func (h *GameHandler) withSession(w http.ResponseWriter, r *http.Request, action func(*state.PlayerState) (interface{}, error)) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	mu := h.sessionLock(id)
	mu.Lock()
	defer mu.Unlock()

	ps, ok := h.loadSession(w, r, id)
	if !ok {
		return
	}

	outcome, err := action(ps)
	if err != nil {
		writeError(w, h.logger, statusForGameError(err), err.Error())
		return
	}

	if err := h.storage.SavePlayerState(r.Context(), id, ps); err != nil {
		h.logger.Error("Failed to save session", "uuid", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save game state")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, outcome)
}

func (h *GameHandler) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.logger.Warn("Invalid session ID", "id", chi.URLParam(r, "id"), "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid session ID format")
		return uuid.Nil, false
	}
	return id, true
}

// loadSession fetches the session, discarding it when the stored
// payload is unreadable so the client can start fresh.
func (h *GameHandler) loadSession(w http.ResponseWriter, r *http.Request, id uuid.UUID) (*state.PlayerState, bool) {
	ps, err := h.storage.LoadPlayerState(r.Context(), id)
	if err != nil {
		h.logger.Error("Discarding unreadable session", "uuid", id, "error", err)
		if delErr := h.storage.DeletePlayerState(r.Context(), id); delErr != nil {
			h.logger.Error("Failed to discard session", "uuid", id, "error", delErr)
		}
		writeError(w, h.logger, http.StatusConflict, "Session was corrupted and has been reset. Start a new game.")
		return nil, false
	}
	if ps == nil {
		writeError(w, h.logger, http.StatusNotFound, "Session not found")
		return nil, false
	}
	return ps, true
}
