package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"docuchat/internal/contextutil"
	"docuchat/internal/ingest"
	"docuchat/internal/storage"
)

// DocumentHandler handles HTTP requests for document management.
type DocumentHandler struct {
	ingester  *ingest.Service
	documents storage.DocumentStore
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(ingester *ingest.Service, documents storage.DocumentStore) *DocumentHandler {
	return &DocumentHandler{ingester: ingester, documents: documents}
}

// UploadRequest represents a document upload payload.
type UploadRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// UploadResponse reports the outcome of an upload.
type UploadResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Title  string `json:"title"`
	Chunks int    `json:"chunks"`
}

// DocumentInfo is a single entry in the document listing.
type DocumentInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
}

// Upload ingests a markdown document. Uploading an unchanged document is a
// no-op; a changed one replaces its chunks.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, r, http.StatusBadRequest, "Document name is required")
		return
	}

	doc, chunks, err := h.ingester.AddDocument(ctx, req.Name, []byte(req.Content))
	if err != nil {
		logger.ErrorContext(ctx, "failed to ingest document", "name", req.Name, "error", err)
		writeError(w, r, http.StatusInternalServerError, "Failed to ingest document")
		return
	}

	writeJSON(w, r, http.StatusOK, UploadResponse{
		ID:     doc.ID,
		Name:   doc.Name,
		Title:  doc.Title,
		Chunks: chunks,
	})
}

// List returns all stored documents.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	docs, err := h.documents.List(ctx)
	if err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to list documents", "error", err)
		writeError(w, r, http.StatusInternalServerError, "Failed to list documents")
		return
	}

	infos := make([]DocumentInfo, len(docs))
	for i, doc := range docs {
		infos[i] = DocumentInfo{
			ID:        doc.ID,
			Name:      doc.Name,
			Title:     doc.Title,
			CreatedAt: doc.CreatedAt.UTC().Format(time.RFC3339),
		}
	}
	writeJSON(w, r, http.StatusOK, infos)
}

// Delete removes a document and its chunks.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	name := strings.TrimSpace(chi.URLParam(r, "name"))
	if name == "" {
		writeError(w, r, http.StatusBadRequest, "Document name is required")
		return
	}

	if err := h.ingester.DeleteDocument(ctx, name); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "Document not found")
			return
		}
		logger.ErrorContext(ctx, "failed to delete document", "name", name, "error", err)
		writeError(w, r, http.StatusInternalServerError, "Failed to delete document")
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]string{"status": "deleted", "name": name})
}
