package handlers

import (
	"context"
	"net/http"

	"github.com/mBrond/chat-medicamentos/internal/domain/entities"
	"github.com/mBrond/chat-medicamentos/internal/infrastructure/observability"
)

// DatasetLoader reads the current dataset snapshot
type DatasetLoader interface {
	Load(ctx context.Context) (*entities.Dataset, error)
}

// HealthHandler reports liveness and dataset readiness
type HealthHandler struct {
	dataset DatasetLoader
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(dataset DatasetLoader) *HealthHandler {
	return &HealthHandler{dataset: dataset}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /health/ready. It loads the dataset, so a broken source
// reports 503.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ds, err := h.dataset.Load(r.Context())
	if err != nil {
		observability.LoggerFromContext(r.Context()).Warn().Err(err).Msg("readiness check failed")
		respondWithJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ready",
		"records":   ds.Len(),
		"version":   ds.Version,
		"source":    ds.Source,
		"loaded_at": ds.LoadedAt,
	})
}
