package ingest

import (
	"strings"
	"testing"
)

func TestChunkTitleExtraction(t *testing.T) {
	tests := []struct {
		name    string
		content string
		file    string
		want    string
	}{
		{
			name:    "first H1",
			content: "# My Title\n\nSome content here that is long enough to form a chunk of text.",
			file:    "notes.md",
			want:    "My Title",
		},
		{
			name:    "H2 when no H1",
			content: "## Section Title\n\nSome content here that is long enough to form a chunk of text.",
			file:    "notes.md",
			want:    "Section Title",
		},
		{
			name:    "filename fallback",
			content: "Just a paragraph without any headings, long enough to count as real content.",
			file:    "meeting-notes.md",
			want:    "Meeting Notes",
		},
		{
			name:    "H1 preferred over earlier H2",
			content: "## Early Section\n\nFiller text for the early section of this document.\n\n# Real Title\n\nMore filler text for the titled section of this document.",
			file:    "doc.md",
			want:    "Real Title",
		},
	}

	c := NewMarkdownChunker()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, _, err := c.Chunk([]byte(tt.content), tt.file)
			if err != nil {
				t.Fatalf("Chunk: %v", err)
			}
			if title != tt.want {
				t.Errorf("title = %q, want %q", title, tt.want)
			}
		})
	}
}

func TestChunkEmptyContent(t *testing.T) {
	c := NewMarkdownChunker()

	title, chunks, err := c.Chunk([]byte("   \n  "), "empty-file.md")
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}
	if title != "Empty File" {
		t.Errorf("title = %q", title)
	}
	if len(chunks) != 0 {
		t.Errorf("chunks = %d, want 0", len(chunks))
	}
}

func TestChunkHeadingHierarchy(t *testing.T) {
	content := `# Guide

Intro paragraph with enough words to satisfy the minimum chunk size easily here.

## Setup

Setup instructions with enough words to satisfy the minimum chunk size easily.

### Details

Detailed steps with enough words to satisfy the minimum chunk size easily too.

## Usage

Usage notes with enough words to satisfy the minimum chunk size easily as well.
`
	c := NewMarkdownChunker()
	_, chunks, err := c.Chunk([]byte(content), "guide.md")
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}

	paths := make([]string, len(chunks))
	for i, ch := range chunks {
		paths[i] = ch.HeadingPath
	}

	wantPaths := []string{
		"# Guide",
		"# Guide > ## Setup",
		"# Guide > ## Setup > ### Details",
		"# Guide > ## Usage",
	}
	if len(paths) != len(wantPaths) {
		t.Fatalf("chunks = %d (%v), want %d", len(paths), paths, len(wantPaths))
	}
	for i := range wantPaths {
		if paths[i] != wantPaths[i] {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], wantPaths[i])
		}
	}

	// Indices are sequential after size constraints.
	for i, ch := range chunks {
		if ch.Index != i {
			t.Errorf("chunks[%d].Index = %d", i, ch.Index)
		}
	}
}

func TestChunkContentBeforeFirstHeading(t *testing.T) {
	content := "Preamble text before any heading, padded to be long enough to form a chunk.\n\n# Title\n\nBody text for the titled section, padded to be long enough to form a chunk."
	c := NewMarkdownChunker()
	_, chunks, err := c.Chunk([]byte(content), "doc.md")
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}

	if len(chunks) < 2 {
		t.Fatalf("chunks = %d, want at least 2", len(chunks))
	}
	if !strings.Contains(chunks[0].Text, "Preamble") {
		t.Errorf("first chunk = %q, want preamble content", chunks[0].Text)
	}
	if !strings.HasPrefix(chunks[0].HeadingPath, "# ") {
		t.Errorf("preamble heading path = %q", chunks[0].HeadingPath)
	}
}

func TestChunkMergesTinySections(t *testing.T) {
	content := "# A\n\nx\n\n# B\n\nThis section has plenty of content and easily satisfies the minimum chunk size requirement on its own."
	c := NewMarkdownChunker()
	_, chunks, err := c.Chunk([]byte(content), "doc.md")
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}

	// The one-character section is merged forward instead of standing alone.
	for _, ch := range chunks {
		if len([]rune(ch.Text)) < minChunkRunes {
			t.Errorf("chunk below minimum size survived: %q", ch.Text)
		}
	}
}

func TestChunkSplitsOversizedSections(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("# Big\n\n")
	for i := 0; i < 40; i++ {
		sb.WriteString("This paragraph repeats to push the section far beyond the maximum chunk size. ")
	}

	c := NewMarkdownChunker()
	_, chunks, err := c.Chunk([]byte(sb.String()), "big.md")
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}

	if len(chunks) < 2 {
		t.Fatalf("oversized section not split, chunks = %d", len(chunks))
	}
	for _, ch := range chunks {
		if n := len([]rune(ch.Text)); n > maxChunkRunes {
			t.Errorf("chunk size %d exceeds maximum %d", n, maxChunkRunes)
		}
		if ch.HeadingPath != "# Big" {
			t.Errorf("split chunk lost heading path: %q", ch.HeadingPath)
		}
	}
}

func TestChunkTable(t *testing.T) {
	content := `# Data

Intro paragraph with enough words to satisfy the minimum chunk size easily here.

| Name | Value |
|------|-------|
| one  | 1     |
| two  | 2     |
`
	c := NewMarkdownChunker()
	_, chunks, err := c.Chunk([]byte(content), "data.md")
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}

	var all strings.Builder
	for _, ch := range chunks {
		all.WriteString(ch.Text)
	}
	if !strings.Contains(all.String(), "one | 1") {
		t.Errorf("table rows missing from chunk text: %q", all.String())
	}
}
