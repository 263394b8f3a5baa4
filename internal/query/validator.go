package query

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Fixed user-facing rejection messages. The handler surfaces these verbatim,
// so tests assert on exact strings.
const (
	MsgEmptyQuery    = "Please enter a question."
	MsgTooShort      = "Your question is too short. Please add more detail."
	MsgSymbolsOnly   = "Your input contains only symbols. Please ask a question in words."
	MsgNumbersOnly   = "Your input contains only numbers. Please ask a question in words."
	MsgGreeting      = "Hello! Ask me anything about your documents."
	MsgNotQuestion   = "I couldn't understand that as a question. Could you rephrase it?"
	MsgLowConfidence = "I'm not sure what you're asking. Please rephrase your question."
)

// RejectionError signals that a query failed validation or classification.
// Message is safe to show to the user as-is.
type RejectionError struct {
	Message string
}

func (e *RejectionError) Error() string {
	return e.Message
}

// Validate runs structural checks on raw query text before any model call.
// It is a pure function: no I/O, no suspension. A nil return means the text
// is worth classifying.
func Validate(text string) *RejectionError {
	trimmed := strings.TrimSpace(text)

	if trimmed == "" {
		return &RejectionError{Message: MsgEmptyQuery}
	}
	if utf8.RuneCountInString(trimmed) < 2 {
		return &RejectionError{Message: MsgTooShort}
	}
	if isSymbolsOnly(trimmed) {
		return &RejectionError{Message: MsgSymbolsOnly}
	}
	if isNumbersOnly(trimmed) {
		return &RejectionError{Message: MsgNumbersOnly}
	}
	return nil
}

// isSymbolsOnly reports whether the text consists entirely of Unicode
// punctuation, symbols, and spaces.
func isSymbolsOnly(text string) bool {
	for _, r := range text {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// isNumbersOnly reports whether the text consists entirely of digits,
// spaces, and common numeric separators.
func isNumbersOnly(text string) bool {
	for _, r := range text {
		if unicode.IsDigit(r) || unicode.IsSpace(r) {
			continue
		}
		switch r {
		case '.', ',', '-', '+', '/', ':':
			continue
		}
		return false
	}
	return true
}
