package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// DocumentRecord represents an imported document in the database.
type DocumentRecord struct {
	ID        string    // UUID
	Name      string    // User-supplied name, typically the original filename
	Title     string    // Title extracted from the markdown content
	Hash      string    // SHA256 hex string of the document content
	CreatedAt time.Time
}

// ChunkRecord represents a chunk of document text, indexed for vector search.
// The ID doubles as the vector store point ID.
type ChunkRecord struct {
	ID          string // UUID (same as the Qdrant point ID)
	DocumentID  string // UUID (foreign key to documents.id)
	ChunkIndex  int    // Position within the document (starts at 0)
	HeadingPath string // Format: "# Heading1 > ## Heading2"
	Text        string // Chunk text content
}
