package handlers

import (
	"context"
	"net/http"

	"docuchat/internal/contextutil"
	"docuchat/internal/ingest"
)

// ReindexHandler triggers a full re-embedding of stored chunks.
type ReindexHandler struct {
	ingester *ingest.Service
}

// NewReindexHandler creates a new ReindexHandler.
func NewReindexHandler(ingester *ingest.Service) *ReindexHandler {
	return &ReindexHandler{ingester: ingester}
}

// ReindexResponse represents the response from the reindex endpoint.
type ReindexResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// ServeHTTP starts the rebuild in the background so the HTTP response
// returns immediately.
func (h *ReindexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)
	logger.InfoContext(ctx, "reindex triggered via API")

	go func() {
		bgCtx := contextutil.WithLogger(context.Background(), logger)
		count, err := h.ingester.Rebuild(bgCtx)
		if err != nil {
			logger.ErrorContext(bgCtx, "reindex failed", "error", err)
			return
		}
		logger.InfoContext(bgCtx, "reindex completed", "chunks", count)
	}()

	writeJSON(w, r, http.StatusAccepted, ReindexResponse{
		Message: "Reindexing started",
		Status:  "accepted",
	})
}
