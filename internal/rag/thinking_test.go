package rag

import "testing"

func TestThinkFilterPlainStream(t *testing.T) {
	f := &thinkFilter{}

	var streamed string
	streamed += f.Feed("Hello, ")
	streamed += f.Feed("world!")
	streamed += f.tail()

	visible, thinking := f.Flush()
	if visible != "Hello, world!" {
		t.Errorf("visible = %q", visible)
	}
	if thinking != "" {
		t.Errorf("thinking = %q, want empty", thinking)
	}
	if streamed != "Hello, world!" {
		t.Errorf("streamed = %q", streamed)
	}
}

func TestThinkFilterWholeSpanInOneChunk(t *testing.T) {
	f := &thinkFilter{}

	out := f.Feed("<think>reasoning here</think>The answer is 42.")
	visible, thinking := f.Flush()

	if visible != "The answer is 42." {
		t.Errorf("visible = %q", visible)
	}
	if thinking != "reasoning here" {
		t.Errorf("thinking = %q", thinking)
	}
	if out != "The answer is 42." {
		t.Errorf("Feed released %q", out)
	}
}

func TestThinkFilterMarkerSplitAcrossChunks(t *testing.T) {
	f := &thinkFilter{}

	var streamed string
	streamed += f.Feed("Before<th")
	streamed += f.Feed("ink>hidden</thi")
	streamed += f.Feed("nk>After")

	if tail := f.tail(); tail != "" {
		streamed += tail
	}
	visible, thinking := f.Flush()

	if visible != "BeforeAfter" {
		t.Errorf("visible = %q", visible)
	}
	if thinking != "hidden" {
		t.Errorf("thinking = %q", thinking)
	}
	if streamed != "BeforeAfter" {
		t.Errorf("streamed = %q", streamed)
	}
}

func TestThinkFilterTokenByToken(t *testing.T) {
	f := &thinkFilter{}

	var streamed string
	for _, chunk := range []string{"<", "think", ">", "a", "b", "<", "/think>", "ok"} {
		streamed += f.Feed(chunk)
	}
	if tail := f.tail(); tail != "" {
		streamed += tail
	}
	visible, thinking := f.Flush()

	if visible != "ok" {
		t.Errorf("visible = %q", visible)
	}
	if thinking != "ab" {
		t.Errorf("thinking = %q", thinking)
	}
	if streamed != "ok" {
		t.Errorf("streamed = %q", streamed)
	}
}

func TestThinkFilterUnterminatedSpanStaysHidden(t *testing.T) {
	f := &thinkFilter{}

	out := f.Feed("visible<think>never closed")
	visible, thinking := f.Flush()

	if out != "visible" {
		t.Errorf("Feed released %q", out)
	}
	if visible != "visible" {
		t.Errorf("visible = %q", visible)
	}
	if thinking != "never closed" {
		t.Errorf("thinking = %q", thinking)
	}
}

func TestThinkFilterMultipleSpans(t *testing.T) {
	f := &thinkFilter{}

	out := f.Feed("a<think>x</think>b<think>y</think>c")
	visible, thinking := f.Flush()

	if out != "abc" {
		t.Errorf("Feed released %q", out)
	}
	if visible != "abc" {
		t.Errorf("visible = %q", visible)
	}
	if thinking != "xy" {
		t.Errorf("thinking = %q", thinking)
	}
}

func TestThinkFilterAngleBracketNotMarker(t *testing.T) {
	f := &thinkFilter{}

	var streamed string
	streamed += f.Feed("a < b and a <t ")
	streamed += f.Feed("done")
	if tail := f.tail(); tail != "" {
		streamed += tail
	}
	visible, _ := f.Flush()

	if visible != "a < b and a <t done" {
		t.Errorf("visible = %q", visible)
	}
	if streamed != "a < b and a <t done" {
		t.Errorf("streamed = %q", streamed)
	}
}

func TestMarkerPrefixLen(t *testing.T) {
	tests := []struct {
		s    string
		want int
	}{
		{"hello", 0},
		{"hello<", 1},
		{"hello<think", 6},
		{"<think", 6},
		{"x<t", 2},
		{"", 0},
	}
	for _, tt := range tests {
		if got := markerPrefixLen(tt.s, thinkOpen); got != tt.want {
			t.Errorf("markerPrefixLen(%q) = %d, want %d", tt.s, got, tt.want)
		}
	}
}
