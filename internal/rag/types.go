package rag

import (
	"time"

	"docuchat/internal/retrieval"
)

// ResponseMode is the generation strategy chosen per message from retrieval
// confidence. It is recomputed for every message, never stored.
type ResponseMode string

const (
	// ModeStrict answers only from retrieved context.
	ModeStrict ResponseMode = "strict"
	// ModeHybrid prefers context but may supplement, distinguishing sources.
	ModeHybrid ResponseMode = "hybrid"
	// ModeFallback answers as a general assistant with no usable context.
	ModeFallback ResponseMode = "fallback"
)

// Role identifies the author of a chat turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Turn is one committed entry of the conversation history.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Result is the outcome of processing one message. It is always populated,
// including for rejections and failures.
type Result struct {
	// Response is the final text shown to the user.
	Response string `json:"response"`
	// Chunks is the evidence set that survived filtering.
	Chunks []retrieval.Chunk `json:"chunks,omitempty"`
	// TokenEstimate is the estimated size of the assembled context.
	TokenEstimate int `json:"token_estimate"`
	// QueryType is the classification label for the query.
	QueryType string `json:"query_type,omitempty"`
	// Mode is the generation strategy that produced the response.
	Mode ResponseMode `json:"mode,omitempty"`
	// Rejected is true when the query never reached retrieval. Distinct from
	// Failed: a rejection is expected behavior, not an error.
	Rejected bool `json:"rejected,omitempty"`
	// Failed is true when retrieval or generation raised; Response then
	// carries a user-visible error string.
	Failed bool `json:"failed,omitempty"`

	RetrievalTime  time.Duration `json:"retrieval_time_ns"`
	GenerationTime time.Duration `json:"generation_time_ns"`
	TotalTime      time.Duration `json:"total_time_ns"`
}
