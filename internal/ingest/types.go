package ingest

// Chunk is a section of a document produced by the chunker, before it is
// embedded and persisted.
type Chunk struct {
	Index       int
	HeadingPath string
	Text        string
}
