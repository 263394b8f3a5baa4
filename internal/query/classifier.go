package query

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_completer.go -package=mocks docuchat/internal/query Completer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"docuchat/internal/contextutil"
)

// Completer is the one-shot completion surface the classifier needs from the
// language model. Defined here so the classifier owns its own dependency shape.
type Completer interface {
	// Complete sends a single prompt and returns the model's raw text reply.
	Complete(ctx context.Context, prompt string) (string, error)
}

// Classifier determines query intent via an LLM call with a deterministic
// rule-based fallback. It never returns an error: every input yields either a
// usable Classification or an explicit rejection.
type Classifier struct {
	llm Completer
}

// NewClassifier creates a Classifier backed by the given completion client.
func NewClassifier(llm Completer) *Classifier {
	return &Classifier{llm: llm}
}

// confidenceFloor is the hard gate applied after classification succeeds:
// any result below it becomes a rejection regardless of type.
const confidenceFloor = 0.4

// classifierPayload is the strict JSON object the model is instructed to emit.
type classifierPayload struct {
	IsValid         bool     `json:"is_valid"`
	QueryType       string   `json:"query_type"`
	ImplicitIntent  string   `json:"implicit_intent"`
	NormalizedQuery string   `json:"normalized_query"`
	Keywords        []string `json:"keywords"`
	Confidence      float64  `json:"confidence"`
}

const classifierInstruction = `Analyze the user question below and respond with exactly one JSON object, no other text:
{
  "is_valid": true or false (false if the input is not an answerable question),
  "query_type": one of "definition", "explanation", "factual", "comparison", "listing", "summary", "opinion", "greeting", "unclear",
  "implicit_intent": a short phrase describing what the user wants,
  "normalized_query": the question rewritten for search, using ONLY words that appear in the question,
  "keywords": up to 5 search keywords, each a word that appears in the question,
  "confidence": a number between 0 and 1
}
Do not invent words: normalized_query and keywords must reuse the question's own vocabulary.

Question: %s`

// Classify validates and classifies the given text. External-call failures and
// malformed model output degrade to a deterministic fallback classification;
// they are never surfaced as errors.
func (c *Classifier) Classify(ctx context.Context, text string) Classification {
	logger := contextutil.LoggerFromContext(ctx)

	if rej := Validate(text); rej != nil {
		return Classification{Valid: false, Type: TypeUnknown, RejectReason: rej.Message}
	}

	trimmed := strings.TrimSpace(text)

	raw, err := c.llm.Complete(ctx, fmt.Sprintf(classifierInstruction, trimmed))
	if err != nil {
		logger.WarnContext(ctx, "classification call failed, using fallback", "error", err)
		return c.accept(fallbackClassification(trimmed))
	}

	payload, ok := decodePayload(raw)
	if !ok {
		logger.WarnContext(ctx, "classification response had no usable JSON, using fallback", "raw_length", len(raw))
		return c.accept(fallbackClassification(trimmed))
	}

	result := Classification{
		Valid:      payload.IsValid,
		Type:       ParseType(payload.QueryType),
		Normalized: payload.NormalizedQuery,
		Keywords:   payload.Keywords,
		Confidence: clamp01(payload.Confidence),
	}
	result = sanitize(trimmed, result)

	// Disallowed types and explicit invalidity convert to fixed rejections.
	switch {
	case result.Type == TypeGreeting:
		return reject(result, MsgGreeting)
	case !result.Valid, result.Type == TypeUnclear, result.Type == TypeUnknown:
		return reject(result, MsgNotQuestion)
	}

	return c.accept(result)
}

// accept applies the confidence floor, the last gate before a classification
// is considered actionable.
func (c *Classifier) accept(result Classification) Classification {
	if result.Confidence < confidenceFloor {
		return reject(result, MsgLowConfidence)
	}
	result.Valid = true
	return result
}

func reject(result Classification, message string) Classification {
	result.Valid = false
	result.RejectReason = message
	return result
}

// fallbackClassification is the deterministic result used whenever the model
// call fails or its output cannot be parsed. Same input, same output.
func fallbackClassification(text string) Classification {
	return Classification{
		Valid:      true,
		Type:       TypeDefinition,
		Normalized: text,
		Keywords:   naiveKeywords(text, 5),
		Confidence: 0.5,
	}
}

// naiveKeywords tokenizes by stripping punctuation and splitting on
// whitespace, drops tokens of length <= 1, and keeps the first max tokens.
func naiveKeywords(text string, max int) []string {
	tokens := Tokenize(text)
	keywords := make([]string, 0, max)
	for _, tok := range tokens {
		if len([]rune(tok)) <= 1 {
			continue
		}
		keywords = append(keywords, tok)
		if len(keywords) == max {
			break
		}
	}
	return keywords
}

// sanitize enforces the non-hallucination invariant on model output:
// keywords not present in the input are dropped, and a normalized query
// containing invented vocabulary is replaced by the original text.
func sanitize(original string, result Classification) Classification {
	allowed := make(map[string]struct{})
	for _, tok := range Tokenize(original) {
		allowed[tok] = struct{}{}
	}

	kept := make([]string, 0, len(result.Keywords))
	for _, kw := range result.Keywords {
		if containsOnly(allowed, kw) {
			kept = append(kept, kw)
		}
	}
	result.Keywords = kept

	if result.Normalized == "" || !containsOnly(allowed, result.Normalized) {
		result.Normalized = original
	}
	return result
}

// containsOnly reports whether every token of text is in the allowed set.
func containsOnly(allowed map[string]struct{}, text string) bool {
	for _, tok := range Tokenize(text) {
		if _, ok := allowed[tok]; !ok {
			return false
		}
	}
	return true
}

// Tokenize lowercases text and splits it into letter/digit runs.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	var builder strings.Builder
	builder.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			builder.WriteRune(r)
		} else {
			builder.WriteRune(' ')
		}
	}
	return strings.Fields(builder.String())
}

// decodePayload locates the first {...} span in raw model output via brace
// matching, sanitizes quote variants and control characters, and decodes it.
func decodePayload(raw string) (classifierPayload, bool) {
	span, ok := extractJSONObject(raw)
	if !ok {
		return classifierPayload{}, false
	}

	var payload classifierPayload
	if err := json.Unmarshal([]byte(sanitizeJSON(span)), &payload); err != nil {
		return classifierPayload{}, false
	}
	return payload, true
}

// extractJSONObject returns the first balanced {...} span in s.
// Braces inside JSON strings are ignored.
func extractJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// sanitizeJSON normalizes typographic quote variants to ASCII double quotes
// and strips control characters that local models occasionally emit.
func sanitizeJSON(s string) string {
	var builder strings.Builder
	builder.Grow(len(s))
	for _, r := range s {
		switch r {
		case '“', '”', '„':
			builder.WriteRune('"')
		case '‘', '’':
			builder.WriteRune('\'')
		default:
			if unicode.IsControl(r) && r != '\n' && r != '\t' {
				continue
			}
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
