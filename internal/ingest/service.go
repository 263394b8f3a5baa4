package ingest

import (
	"context"
	"crypto/sha256"
	"fmt"

	"github.com/google/uuid"

	"docuchat/internal/contextutil"
	"docuchat/internal/storage"
	"docuchat/internal/vectorstore"
)

// Embedder produces embedding vectors for a batch of texts.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Service turns uploaded documents into stored chunks and vectors.
type Service struct {
	documents  storage.DocumentStore
	chunks     storage.ChunkStore
	embedder   Embedder
	vectors    vectorstore.VectorStore
	collection string
	chunker    *MarkdownChunker
}

func NewService(
	documents storage.DocumentStore,
	chunks storage.ChunkStore,
	embedder Embedder,
	vectors vectorstore.VectorStore,
	collection string,
) *Service {
	return &Service{
		documents:  documents,
		chunks:     chunks,
		embedder:   embedder,
		vectors:    vectors,
		collection: collection,
		chunker:    NewMarkdownChunker(),
	}
}

// AddDocument ingests a markdown document under the given name. A document
// whose content hash is unchanged is skipped. Re-uploading a changed document
// replaces its chunks in both stores. Returns the document record and the
// number of chunks stored.
func (s *Service) AddDocument(ctx context.Context, name string, content []byte) (*storage.DocumentRecord, int, error) {
	logger := contextutil.LoggerFromContext(ctx)

	hash := fmt.Sprintf("%x", sha256.Sum256(content))

	existing, err := s.documents.GetByName(ctx, name)
	if err != nil && err != storage.ErrNotFound {
		return nil, 0, fmt.Errorf("check existing document: %w", err)
	}
	if existing != nil && existing.Hash == hash {
		logger.DebugContext(ctx, "skipping unchanged document", "name", name, "hash", hash)
		return existing, 0, nil
	}

	title, chunks, err := s.chunker.Chunk(content, name)
	if err != nil {
		return nil, 0, fmt.Errorf("chunk document: %w", err)
	}
	if len(chunks) == 0 {
		logger.WarnContext(ctx, "document produced no chunks", "name", name)
	}

	doc := &storage.DocumentRecord{
		Name:  name,
		Title: title,
		Hash:  hash,
	}
	if existing != nil {
		doc.ID = existing.ID
	}
	if err := s.documents.Upsert(ctx, doc); err != nil {
		return nil, 0, fmt.Errorf("upsert document: %w", err)
	}

	if existing != nil {
		if err := s.removeChunks(ctx, doc.ID); err != nil {
			return nil, 0, err
		}
	}
	if len(chunks) == 0 {
		return doc, 0, nil
	}

	if err := s.storeChunks(ctx, doc, chunks); err != nil {
		return nil, 0, err
	}

	logger.InfoContext(ctx, "ingested document", "name", name, "title", title, "chunks", len(chunks))
	return doc, len(chunks), nil
}

// DeleteDocument removes a document and its chunks from SQLite and the
// vector store.
func (s *Service) DeleteDocument(ctx context.Context, name string) error {
	doc, err := s.documents.GetByName(ctx, name)
	if err != nil {
		return err
	}
	if err := s.removeChunks(ctx, doc.ID); err != nil {
		return err
	}
	return s.documents.Delete(ctx, doc.ID)
}

// Rebuild re-embeds every stored chunk and rewrites the vector store. Used
// after switching embedding models or recreating the collection.
func (s *Service) Rebuild(ctx context.Context) (int, error) {
	logger := contextutil.LoggerFromContext(ctx)

	chunks, err := s.chunks.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list chunks: %w", err)
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	texts := make([]string, len(chunks))
	ids := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
		ids[i] = ch.ID
	}

	embeddings, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}

	if err := s.vectors.Delete(ctx, s.collection, ids); err != nil {
		logger.WarnContext(ctx, "failed to delete stale vectors", "error", err)
	}

	points := make([]vectorstore.Point, len(chunks))
	for i, ch := range chunks {
		points[i] = vectorstore.Point{
			ID:  ch.ID,
			Vec: embeddings[i],
			Meta: map[string]any{
				"document_id":  ch.DocumentID,
				"chunk_index":  ch.ChunkIndex,
				"heading_path": ch.HeadingPath,
			},
		}
	}
	if err := s.vectors.Upsert(ctx, s.collection, points); err != nil {
		return 0, fmt.Errorf("upsert vectors: %w", err)
	}

	logger.InfoContext(ctx, "rebuilt index", "chunks", len(chunks))
	return len(chunks), nil
}

func (s *Service) removeChunks(ctx context.Context, documentID string) error {
	logger := contextutil.LoggerFromContext(ctx)

	ids, err := s.chunks.ListIDsByDocument(ctx, documentID)
	if err != nil {
		return fmt.Errorf("list chunk IDs: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}
	if err := s.vectors.Delete(ctx, s.collection, ids); err != nil {
		logger.WarnContext(ctx, "failed to delete vectors", "error", err, "count", len(ids))
	}
	if err := s.chunks.DeleteByDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	return nil
}

func (s *Service) storeChunks(ctx context.Context, doc *storage.DocumentRecord, chunks []Chunk) error {
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}

	embeddings, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}

	points := make([]vectorstore.Point, len(chunks))
	for i, ch := range chunks {
		record := &storage.ChunkRecord{
			ID:          uuid.New().String(),
			DocumentID:  doc.ID,
			ChunkIndex:  ch.Index,
			HeadingPath: ch.HeadingPath,
			Text:        ch.Text,
		}
		if err := s.chunks.Insert(ctx, record); err != nil {
			return fmt.Errorf("insert chunk: %w", err)
		}
		points[i] = vectorstore.Point{
			ID:  record.ID,
			Vec: embeddings[i],
			Meta: map[string]any{
				"document_id":  doc.ID,
				"document":     doc.Title,
				"chunk_index":  ch.Index,
				"heading_path": ch.HeadingPath,
			},
		}
	}
	return s.vectors.Upsert(ctx, s.collection, points)
}
