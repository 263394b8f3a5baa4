package retrieval

// Chunk is a bounded span of a source document returned by retrieval,
// carrying its similarity score against the query. A similarity of exactly 0
// is reserved for chunks included purely for adjacency, not relevance.
type Chunk struct {
	// ID is the chunk identifier (vector store point ID).
	ID string `json:"id"`
	// Content is the chunk text.
	Content string `json:"content"`
	// Similarity is the cosine similarity score in [0, 1]; 0 marks an
	// adjacency chunk.
	Similarity float64 `json:"similarity"`
	// Source names the originating document.
	Source string `json:"source"`
}

// AssembledContext is the evidence text prepared for prompt construction.
type AssembledContext struct {
	// Text is the concatenated chunk content.
	Text string `json:"text"`
	// EstimatedTokens is the estimated token count of Text.
	EstimatedTokens int `json:"estimated_tokens"`
}

// SearchResponse is the full result of one retrieval call.
type SearchResponse struct {
	Chunks  []Chunk          `json:"chunks"`
	Context AssembledContext `json:"context"`
}
