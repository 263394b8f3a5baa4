package rag

import "sync"

// DefaultHistoryWindow is how many recent turns are replayed into prompts.
const DefaultHistoryWindow = 6

// History is the session-scoped, append-only conversation record. Turns are
// committed only by the engine at the end of message processing, never by
// streaming callbacks, so a single in-flight message cannot race its own
// writes. Only the most recent window of turns is replayed into prompts to
// keep them finite.
type History struct {
	mu     sync.Mutex
	turns  []Turn
	window int
}

// NewHistory creates a History replaying at most window turns.
// A non-positive window falls back to DefaultHistoryWindow.
func NewHistory(window int) *History {
	if window <= 0 {
		window = DefaultHistoryWindow
	}
	return &History{window: window}
}

// Append adds turns to the end of the history.
func (h *History) Append(turns ...Turn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = append(h.turns, turns...)
}

// Window returns a copy of the most recent turns, bounded by the configured
// window size.
func (h *History) Window() []Turn {
	h.mu.Lock()
	defer h.mu.Unlock()

	start := 0
	if len(h.turns) > h.window {
		start = len(h.turns) - h.window
	}
	window := make([]Turn, len(h.turns)-start)
	copy(window, h.turns[start:])
	return window
}

// Len returns the total number of committed turns.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.turns)
}

// Clear discards all turns. Used by the explicit new-chat action.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = nil
}
