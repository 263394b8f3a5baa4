package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"docuchat/internal/handlers"
	"docuchat/internal/ingest"
	"docuchat/internal/rag"
	"docuchat/internal/storage"
	"docuchat/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Engine      *rag.Engine
	Ingester    *ingest.Service
	Documents   storage.DocumentStore
	VectorStore vectorstore.VectorStore
	Collection  string
}

// NewRouter creates the API router.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestLogger)
	r.Use(CORS)

	chatHandler := handlers.NewChatHandler(deps.Engine)
	resetHandler := handlers.NewResetHandler(deps.Engine)
	documentHandler := handlers.NewDocumentHandler(deps.Ingester, deps.Documents)
	reindexHandler := handlers.NewReindexHandler(deps.Ingester)
	healthHandler := handlers.NewHealthHandler(deps.VectorStore, deps.Collection)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/chat", chatHandler)
		r.Method(http.MethodPost, "/chat/reset", resetHandler)
		r.Post("/documents", documentHandler.Upload)
		r.Get("/documents", documentHandler.List)
		r.Delete("/documents/{name}", documentHandler.Delete)
		r.Method(http.MethodPost, "/reindex", reindexHandler)
		r.Method(http.MethodGet, "/health", healthHandler)
	})

	return r
}
