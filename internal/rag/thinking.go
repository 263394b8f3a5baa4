package rag

import "strings"

// Reasoning markers emitted by thinking-capable local models.
const (
	thinkOpen  = "<think>"
	thinkClose = "</think>"
)

// thinkFilter splits a token stream into visible text and thinking spans.
// Markers can arrive split across chunk boundaries, so the filter holds back
// any trailing bytes that could be a marker prefix until the next chunk
// resolves them.
type thinkFilter struct {
	inThink  bool
	pending  string
	visible  strings.Builder
	thinking strings.Builder
}

// Feed consumes one stream chunk and returns the visible text it releases.
// Thinking-span content is accumulated separately and never returned.
func (f *thinkFilter) Feed(chunk string) string {
	f.pending += chunk
	var out strings.Builder

	for {
		if f.inThink {
			idx := strings.Index(f.pending, thinkClose)
			if idx < 0 {
				keep := markerPrefixLen(f.pending, thinkClose)
				f.thinking.WriteString(f.pending[:len(f.pending)-keep])
				f.pending = f.pending[len(f.pending)-keep:]
				return out.String()
			}
			f.thinking.WriteString(f.pending[:idx])
			f.pending = f.pending[idx+len(thinkClose):]
			f.inThink = false
			continue
		}

		idx := strings.Index(f.pending, thinkOpen)
		if idx < 0 {
			keep := markerPrefixLen(f.pending, thinkOpen)
			released := f.pending[:len(f.pending)-keep]
			out.WriteString(released)
			f.visible.WriteString(released)
			f.pending = f.pending[len(f.pending)-keep:]
			return out.String()
		}
		out.WriteString(f.pending[:idx])
		f.visible.WriteString(f.pending[:idx])
		f.pending = f.pending[idx+len(thinkOpen):]
		f.inThink = true
	}
}

// Flush releases any held-back bytes at end of stream and returns the final
// visible and thinking texts. An unterminated thinking span stays thinking.
func (f *thinkFilter) Flush() (visible, thinking string) {
	if f.pending != "" {
		if f.inThink {
			f.thinking.WriteString(f.pending)
		} else {
			f.visible.WriteString(f.pending)
		}
		f.pending = ""
	}
	return f.visible.String(), f.thinking.String()
}

// tail returns any held-back visible text that Flush would release, so the
// caller can forward it to the stream consumer before finishing.
func (f *thinkFilter) tail() string {
	if f.inThink || f.pending == "" {
		return ""
	}
	return f.pending
}

// markerPrefixLen returns the length of the longest strict suffix of s that
// is a prefix of marker. Those bytes might complete the marker in the next
// chunk and must be held back.
func markerPrefixLen(s, marker string) int {
	max := len(marker) - 1
	if max > len(s) {
		max = len(s)
	}
	for n := max; n > 0; n-- {
		if strings.HasPrefix(marker, s[len(s)-n:]) {
			return n
		}
	}
	return 0
}
