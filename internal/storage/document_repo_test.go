package storage

import (
	"context"
	"errors"
	"testing"
)

func TestDocumentRepoUpsertNew(t *testing.T) {
	docs, _ := newTestDB(t)

	doc := &DocumentRecord{Name: "notes.md", Title: "Notes", Hash: "abc123"}
	if err := docs.Upsert(context.Background(), doc); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if doc.ID == "" {
		t.Error("Upsert() did not assign an ID")
	}

	got, err := docs.GetByName(context.Background(), "notes.md")
	if err != nil {
		t.Fatalf("GetByName() error = %v", err)
	}
	if got.ID != doc.ID {
		t.Errorf("ID = %q, want %q", got.ID, doc.ID)
	}
	if got.Title != "Notes" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}

func TestDocumentRepoUpsertExistingKeepsID(t *testing.T) {
	docs, _ := newTestDB(t)

	first := &DocumentRecord{Name: "notes.md", Title: "Notes", Hash: "v1"}
	if err := docs.Upsert(context.Background(), first); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	second := &DocumentRecord{Name: "notes.md", Title: "Notes v2", Hash: "v2"}
	if err := docs.Upsert(context.Background(), second); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("ID changed on upsert: %q != %q", second.ID, first.ID)
	}

	got, err := docs.GetByName(context.Background(), "notes.md")
	if err != nil {
		t.Fatalf("GetByName() error = %v", err)
	}
	if got.Title != "Notes v2" {
		t.Errorf("Title = %q, want updated title", got.Title)
	}
	if got.Hash != "v2" {
		t.Errorf("Hash = %q, want v2", got.Hash)
	}
}

func TestDocumentRepoGetByNameNotFound(t *testing.T) {
	docs, _ := newTestDB(t)

	_, err := docs.GetByName(context.Background(), "missing.md")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByName() error = %v, want ErrNotFound", err)
	}
}

func TestDocumentRepoGetByID(t *testing.T) {
	docs, _ := newTestDB(t)
	doc := insertTestDocument(t, docs, "notes.md")

	got, err := docs.GetByID(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Name != "notes.md" {
		t.Errorf("Name = %q", got.Name)
	}

	_, err = docs.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID(missing) error = %v, want ErrNotFound", err)
	}
}

func TestDocumentRepoList(t *testing.T) {
	docs, _ := newTestDB(t)

	list, err := docs.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("List() on empty db returned %d documents", len(list))
	}

	insertTestDocument(t, docs, "a.md")
	insertTestDocument(t, docs, "b.md")

	list, err = docs.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 {
		t.Errorf("List() returned %d documents, want 2", len(list))
	}
}

func TestDocumentRepoDelete(t *testing.T) {
	docs, _ := newTestDB(t)
	doc := insertTestDocument(t, docs, "notes.md")

	if err := docs.Delete(context.Background(), doc.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, err := docs.GetByName(context.Background(), "notes.md")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByName() after delete error = %v, want ErrNotFound", err)
	}
}
