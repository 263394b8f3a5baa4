package storage

import (
	"context"
	"errors"
	"testing"
)

func newTestDB(t *testing.T) (*DocumentRepo, *ChunkRepo) {
	t.Helper()
	db, err := New(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return NewDocumentRepo(db), NewChunkRepo(db)
}

func insertTestDocument(t *testing.T, docs *DocumentRepo, name string) *DocumentRecord {
	t.Helper()
	doc := &DocumentRecord{Name: name, Title: "Test", Hash: "hash"}
	if err := docs.Upsert(context.Background(), doc); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	return doc
}

func TestChunkRepoInsertAndGet(t *testing.T) {
	docs, chunks := newTestDB(t)
	doc := insertTestDocument(t, docs, "test.md")

	chunk := &ChunkRecord{
		ID:          "chunk-1",
		DocumentID:  doc.ID,
		ChunkIndex:  0,
		HeadingPath: "# Heading",
		Text:        "Chunk text",
	}
	if err := chunks.Insert(context.Background(), chunk); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	got, err := chunks.GetByID(context.Background(), "chunk-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Text != "Chunk text" {
		t.Errorf("Text = %q", got.Text)
	}
	if got.HeadingPath != "# Heading" {
		t.Errorf("HeadingPath = %q", got.HeadingPath)
	}
}

func TestChunkRepoGetByIDNotFound(t *testing.T) {
	_, chunks := newTestDB(t)

	_, err := chunks.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestChunkRepoGetByDocumentIndex(t *testing.T) {
	docs, chunks := newTestDB(t)
	doc := insertTestDocument(t, docs, "test.md")

	for i, id := range []string{"chunk-1", "chunk-2", "chunk-3"} {
		chunk := &ChunkRecord{ID: id, DocumentID: doc.ID, ChunkIndex: i, Text: "text"}
		if err := chunks.Insert(context.Background(), chunk); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	got, err := chunks.GetByDocumentIndex(context.Background(), doc.ID, 1)
	if err != nil {
		t.Fatalf("GetByDocumentIndex() error = %v", err)
	}
	if got.ID != "chunk-2" {
		t.Errorf("ID = %q, want chunk-2", got.ID)
	}

	_, err = chunks.GetByDocumentIndex(context.Background(), doc.ID, 99)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByDocumentIndex(99) error = %v, want ErrNotFound", err)
	}
}

func TestChunkRepoListIDsByDocumentOrdered(t *testing.T) {
	docs, chunks := newTestDB(t)
	doc := insertTestDocument(t, docs, "test.md")

	// Insert chunks in non-sequential order
	records := []*ChunkRecord{
		{ID: "chunk-3", DocumentID: doc.ID, ChunkIndex: 2, Text: "Text 3"},
		{ID: "chunk-1", DocumentID: doc.ID, ChunkIndex: 0, Text: "Text 1"},
		{ID: "chunk-2", DocumentID: doc.ID, ChunkIndex: 1, Text: "Text 2"},
	}
	for _, chunk := range records {
		if err := chunks.Insert(context.Background(), chunk); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	ids, err := chunks.ListIDsByDocument(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("ListIDsByDocument() error = %v", err)
	}

	expected := []string{"chunk-1", "chunk-2", "chunk-3"}
	if len(ids) != len(expected) {
		t.Fatalf("ListIDsByDocument() returned %d IDs, want %d", len(ids), len(expected))
	}
	for i, id := range ids {
		if id != expected[i] {
			t.Errorf("ID[%d] = %v, want %v", i, id, expected[i])
		}
	}
}

func TestChunkRepoListIDsByDocumentEmpty(t *testing.T) {
	_, chunks := newTestDB(t)

	ids, err := chunks.ListIDsByDocument(context.Background(), "non-existent")
	if err != nil {
		t.Fatalf("ListIDsByDocument() error = %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("ListIDsByDocument() returned %d IDs, want 0", len(ids))
	}
}

func TestChunkRepoDeleteByDocument(t *testing.T) {
	docs, chunks := newTestDB(t)
	doc := insertTestDocument(t, docs, "test.md")

	for i, id := range []string{"chunk-1", "chunk-2"} {
		chunk := &ChunkRecord{ID: id, DocumentID: doc.ID, ChunkIndex: i, Text: "text"}
		if err := chunks.Insert(context.Background(), chunk); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	if err := chunks.DeleteByDocument(context.Background(), doc.ID); err != nil {
		t.Fatalf("DeleteByDocument() error = %v", err)
	}

	ids, err := chunks.ListIDsByDocument(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("ListIDsByDocument() error = %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("DeleteByDocument() left %d chunks", len(ids))
	}
}

func TestChunkRepoDeleteByDocumentNonExistent(t *testing.T) {
	_, chunks := newTestDB(t)

	if err := chunks.DeleteByDocument(context.Background(), "non-existent-id"); err != nil {
		t.Errorf("DeleteByDocument() with non-existent document should not error, got: %v", err)
	}
}

func TestChunkRepoListAll(t *testing.T) {
	docs, chunks := newTestDB(t)
	docA := insertTestDocument(t, docs, "a.md")
	docB := insertTestDocument(t, docs, "b.md")

	records := []*ChunkRecord{
		{ID: "b-0", DocumentID: docB.ID, ChunkIndex: 0, Text: "b0"},
		{ID: "a-1", DocumentID: docA.ID, ChunkIndex: 1, Text: "a1"},
		{ID: "a-0", DocumentID: docA.ID, ChunkIndex: 0, Text: "a0"},
	}
	for _, chunk := range records {
		if err := chunks.Insert(context.Background(), chunk); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	all, err := chunks.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("ListAll() returned %d chunks, want 3", len(all))
	}
	// Ordered by document then index within each document
	for i := 1; i < len(all); i++ {
		prev, cur := all[i-1], all[i]
		if prev.DocumentID == cur.DocumentID && prev.ChunkIndex > cur.ChunkIndex {
			t.Errorf("ListAll() not ordered by index: %s before %s", prev.ID, cur.ID)
		}
	}
}

func TestChunkRepoCascadeDelete(t *testing.T) {
	docs, chunks := newTestDB(t)
	doc := insertTestDocument(t, docs, "test.md")

	chunk := &ChunkRecord{ID: "chunk-1", DocumentID: doc.ID, ChunkIndex: 0, Text: "text"}
	if err := chunks.Insert(context.Background(), chunk); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	if err := docs.Delete(context.Background(), doc.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, err := chunks.GetByID(context.Background(), "chunk-1")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("chunk survived document delete, error = %v", err)
	}
}
