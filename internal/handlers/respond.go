// Package handlers exposes the game engine over HTTP. Every handler
// follows the same discipline: load the session, apply one engine
// action, persist, respond. Failed actions leave the stored state
// untouched.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/grand-tour/pkg/game"
)

// ErrorResponse is the JSON body for all error replies.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	writeJSON(w, logger, status, ErrorResponse{Error: msg})
}

// statusForGameError maps engine rule errors onto HTTP statuses.
// Everything the engine rejects is recoverable by the client.
func statusForGameError(err error) int {
	switch {
	case errors.Is(err, game.ErrGameOver),
		errors.Is(err, game.ErrAlreadySolved):
		return http.StatusConflict
	case errors.Is(err, game.ErrInvalidSelection),
		errors.Is(err, game.ErrNotStarted),
		errors.Is(err, game.ErrNoActiveRiddle),
		errors.Is(err, game.ErrNoActiveEvent),
		errors.Is(err, game.ErrInvalidChoice):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
