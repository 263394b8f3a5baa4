package rag

import "docuchat/internal/retrieval"

// DefaultSimilarityThreshold is the evidence cutoff applied when the
// deployment does not configure its own.
const DefaultSimilarityThreshold = 0.35

// FilterChunks drops chunks scoring below the threshold. Chunks with a
// similarity of exactly 0 are adjacency padding, not relevance evidence, and
// are always retained regardless of threshold.
func FilterChunks(chunks []retrieval.Chunk, threshold float64) []retrieval.Chunk {
	filtered := make([]retrieval.Chunk, 0, len(chunks))
	for _, chunk := range chunks {
		if chunk.Similarity >= threshold || chunk.Similarity == 0 {
			filtered = append(filtered, chunk)
		}
	}
	return filtered
}

// BestSimilarity returns the maximum similarity among scored chunks.
// Zero-score adjacency chunks are excluded; 0 means no scored chunk exists.
func BestSimilarity(chunks []retrieval.Chunk) float64 {
	best := 0.0
	for _, chunk := range chunks {
		if chunk.Similarity > best {
			best = chunk.Similarity
		}
	}
	return best
}
