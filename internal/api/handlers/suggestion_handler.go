package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
)

const maxSuggestLimit = 50

// Suggester proposes medication names for autocomplete
type Suggester interface {
	Suggest(ctx context.Context, query string, limit int) ([]string, error)
}

// SuggestionHandler handles medication name autocomplete
type SuggestionHandler struct {
	suggester    Suggester
	defaultLimit int
}

// NewSuggestionHandler creates a new suggestion handler
func NewSuggestionHandler(suggester Suggester, defaultLimit int) *SuggestionHandler {
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	return &SuggestionHandler{suggester: suggester, defaultLimit: defaultLimit}
}

// SuggestMedications handles GET /api/medications/suggest?q=&limit=
func (h *SuggestionHandler) SuggestMedications(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	limit := h.defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondWithError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxSuggestLimit)
	}

	names, err := h.suggester.Suggest(r.Context(), query, limit)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"query":       query,
		"suggestions": names,
		"count":       len(names),
	})
}
