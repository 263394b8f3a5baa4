package rag

// Mode selection thresholds. Tunable constants, not runtime configuration.
const (
	strictThreshold = 0.7
	hybridThreshold = 0.5
)

// SelectMode picks the generation strategy from retrieval confidence.
// Both thresholds are inclusive lower bounds.
func SelectMode(hasRelevantContext bool, bestSimilarity float64) ResponseMode {
	if !hasRelevantContext {
		return ModeFallback
	}
	switch {
	case bestSimilarity >= strictThreshold:
		return ModeStrict
	case bestSimilarity >= hybridThreshold:
		return ModeHybrid
	default:
		return ModeFallback
	}
}
