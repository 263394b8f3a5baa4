package retrieval

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_searcher.go -package=mocks docuchat/internal/retrieval Searcher,Embedder

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"docuchat/internal/contextutil"
	"docuchat/internal/query"
	"docuchat/internal/storage"
	"docuchat/internal/vectorstore"
)

// Searcher is the retrieval surface the pipeline consumes: one similarity
// search returning ranked chunks plus an assembled, budget-constrained
// context blob.
type Searcher interface {
	Search(ctx context.Context, text string, params query.RetrievalParams) (*SearchResponse, error)
}

// Embedder turns texts into vectors. Satisfied by llm.EmbeddingsClient.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Service implements Searcher over an embedding client, a vector store, and
// the SQLite chunk store. Ordering is relevance-first: hits by descending
// similarity, each hit followed by its adjacency neighbors in document order.
type Service struct {
	embedder   Embedder
	store      vectorstore.VectorStore
	chunks     storage.ChunkStore
	documents  storage.DocumentStore
	collection string
	tokens     TokenCounter
}

// NewService creates a retrieval Service.
func NewService(embedder Embedder, store vectorstore.VectorStore, chunks storage.ChunkStore, documents storage.DocumentStore, collection string, tokens TokenCounter) *Service {
	return &Service{
		embedder:   embedder,
		store:      store,
		chunks:     chunks,
		documents:  documents,
		collection: collection,
		tokens:     tokens,
	}
}

// Search embeds the query, runs similarity search, expands adjacency
// neighbors, and assembles the context text under the token budget.
func (s *Service) Search(ctx context.Context, text string, params query.RetrievalParams) (*SearchResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	vectors, err := s.embedder.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("no embedding returned for query")
	}

	hits, err := s.store.Search(ctx, s.collection, vectors[0], params.TopK, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to search vector store: %w", err)
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })

	logger.InfoContext(ctx, "vector search completed",
		"top_k", params.TopK,
		"hits", len(hits),
		"adjacent_chunks", params.AdjacentChunks,
	)

	chunks := s.expand(ctx, hits, params.AdjacentChunks)
	assembled := s.assemble(chunks, params.TokenBudget)

	logger.DebugContext(ctx, "context assembled",
		"chunks", len(chunks),
		"estimated_tokens", assembled.EstimatedTokens,
		"token_budget", params.TokenBudget,
	)

	return &SearchResponse{Chunks: chunks, Context: assembled}, nil
}

// expand resolves each hit to its stored chunk and pulls in up to window
// neighboring chunks on each side. Neighbors carry the zero similarity
// sentinel and are deduplicated against hits and each other; a chunk that is
// both a hit and a neighbor keeps its hit score.
func (s *Service) expand(ctx context.Context, hits []vectorstore.SearchResult, window int) []Chunk {
	logger := contextutil.LoggerFromContext(ctx)

	seen := make(map[string]struct{}, len(hits))
	for _, hit := range hits {
		seen[hit.PointID] = struct{}{}
	}

	var chunks []Chunk
	for _, hit := range hits {
		record, err := s.chunks.GetByID(ctx, hit.PointID)
		if err != nil {
			logger.WarnContext(ctx, "failed to resolve hit chunk, skipping", "chunk_id", hit.PointID, "error", err)
			continue
		}

		chunks = append(chunks, Chunk{
			ID:         record.ID,
			Content:    record.Text,
			Similarity: float64(hit.Score),
			Source:     s.sourceName(ctx, record.DocumentID),
		})

		for offset := -window; offset <= window; offset++ {
			if offset == 0 {
				continue
			}
			index := record.ChunkIndex + offset
			if index < 0 {
				continue
			}
			neighbor, err := s.chunks.GetByDocumentIndex(ctx, record.DocumentID, index)
			if err != nil {
				if !errors.Is(err, storage.ErrNotFound) {
					logger.WarnContext(ctx, "failed to fetch neighbor chunk", "document_id", record.DocumentID, "index", index, "error", err)
				}
				continue
			}
			if _, ok := seen[neighbor.ID]; ok {
				continue
			}
			seen[neighbor.ID] = struct{}{}

			chunks = append(chunks, Chunk{
				ID:         neighbor.ID,
				Content:    neighbor.Text,
				Similarity: 0, // adjacency sentinel
				Source:     s.sourceName(ctx, record.DocumentID),
			})
		}
	}
	return chunks
}

// assemble concatenates chunk content under the token budget. Whole chunks
// only; once the budget would be exceeded, remaining chunks are dropped. At
// least one chunk is always included so a single oversized chunk cannot
// produce an empty context.
func (s *Service) assemble(chunks []Chunk, budget int) AssembledContext {
	var builder strings.Builder
	total := 0

	for i, chunk := range chunks {
		cost := s.tokens.Count(chunk.Content)
		if i > 0 && budget > 0 && total+cost > budget {
			break
		}
		if builder.Len() > 0 {
			builder.WriteString("\n\n")
		}
		builder.WriteString(chunk.Content)
		total += cost
	}

	return AssembledContext{Text: builder.String(), EstimatedTokens: total}
}

// sourceName resolves a document ID to its display name; the ID itself is
// good enough when the lookup fails.
func (s *Service) sourceName(ctx context.Context, documentID string) string {
	doc, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		return documentID
	}
	if doc.Title != "" {
		return doc.Title
	}
	return doc.Name
}
