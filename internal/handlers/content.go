package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jwebster45206/grand-tour/pkg/content"
)

// ContentHandler serves the selection tables the start screen needs.
type ContentHandler struct {
	registry *content.Registry
	logger   *slog.Logger
}

// NewContentHandler creates a content handler.
func NewContentHandler(registry *content.Registry, logger *slog.Logger) *ContentHandler {
	return &ContentHandler{registry: registry, logger: logger}
}

// Cities handles GET /v1/content/cities.
func (h *ContentHandler) Cities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, h.registry.Cities())
}

// Characters handles GET /v1/content/characters.
func (h *ContentHandler) Characters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, h.registry.Characters())
}
