package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jwebster45206/grand-tour/internal/storage"
	"github.com/jwebster45206/grand-tour/pkg/leaderboard"
)

// LeaderboardHandler serves the shared top-N leaderboard.
type LeaderboardHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

// NewLeaderboardHandler creates a leaderboard handler.
func NewLeaderboardHandler(storage storage.Storage, logger *slog.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{storage: storage, logger: logger}
}

// LeaderboardResponse pairs the entries with aggregate stats over them.
type LeaderboardResponse struct {
	Entries []leaderboard.Entry `json:"entries"`
	Stats   leaderboard.Stats   `json:"stats"`
}

// Top handles GET /v1/leaderboard?limit=k.
func (h *LeaderboardHandler) Top(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, h.logger, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	entries, err := h.storage.TopScores(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to read leaderboard", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to read leaderboard")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, LeaderboardResponse{
		Entries: entries,
		Stats:   leaderboard.Aggregate(entries),
	})
}
