package retrieval

import (
	"log/slog"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter estimates the token count of a text span.
type TokenCounter interface {
	Count(text string) int
}

// tiktokenCounter counts tokens with the cl100k_base BPE encoding. Local
// models tokenize differently, but cl100k_base is close enough for a soft
// budget.
type tiktokenCounter struct {
	encoding *tiktoken.Tiktoken
}

// heuristicCounter approximates tokens as bytes/4, the usual rule of thumb
// for English prose.
type heuristicCounter struct{}

const defaultEncoding = "cl100k_base"

// NewTokenCounter returns a tiktoken-backed counter, falling back to the
// bytes/4 heuristic if the encoding cannot be initialized (e.g. no cached
// BPE data and no network).
func NewTokenCounter() TokenCounter {
	encoding, err := tiktoken.GetEncoding(defaultEncoding)
	if err != nil {
		slog.Warn("tiktoken encoding unavailable, using heuristic token counter", "error", err)
		return heuristicCounter{}
	}
	return &tiktokenCounter{encoding: encoding}
}

func (c *tiktokenCounter) Count(text string) int {
	return len(c.encoding.Encode(text, nil, nil))
}

func (heuristicCounter) Count(text string) int {
	return (len(text) + 3) / 4
}
