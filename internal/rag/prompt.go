package rag

import (
	"fmt"
	"strings"
)

// Language selects the output language of assembled prompts.
type Language string

const (
	LangEnglish Language = "en"
	LangKorean  Language = "ko"
)

// Context block delimiters embedded in strict/hybrid user messages.
const (
	contextOpen  = "--- Context ---"
	contextClose = "--- End Context ---"
)

// Prompt is the instruction/context/question payload handed to generation.
type Prompt struct {
	System string
	User   string
}

var systemPrompts = map[Language]map[ResponseMode]string{
	LangEnglish: {
		ModeStrict: "You are a document assistant. Answer using only the information in the provided context. " +
			"If the context does not contain the answer, say that the documents do not cover it. Do not use outside knowledge.",
		ModeHybrid: "You are a document assistant. Prefer the information in the provided context, but you may " +
			"supplement it with general knowledge when the context is incomplete. Clearly distinguish what comes " +
			"from the documents and what comes from general knowledge.",
		ModeFallback: "You are a helpful general assistant. No document context is available for this question; " +
			"answer from general knowledge.",
	},
	LangKorean: {
		ModeStrict: "당신은 문서 기반 어시스턴트입니다. 제공된 컨텍스트에 있는 정보만 사용해 답변하세요. " +
			"컨텍스트에 답이 없으면 문서에 해당 내용이 없다고 말하세요. 외부 지식은 사용하지 마세요.",
		ModeHybrid: "당신은 문서 기반 어시스턴트입니다. 제공된 컨텍스트의 정보를 우선 사용하되, 컨텍스트가 " +
			"불완전할 때는 일반 지식으로 보완할 수 있습니다. 문서에서 나온 내용과 일반 지식을 명확히 구분하세요.",
		ModeFallback: "당신은 친절한 일반 어시스턴트입니다. 이 질문에 사용할 문서 컨텍스트가 없으므로 일반 지식으로 답변하세요.",
	},
}

var fallbackDisclaimers = map[Language]string{
	LangEnglish: "(Note: no relevant passages were found in your documents, so this answer is not based on them.)",
	LangKorean:  "(참고: 문서에서 관련 내용을 찾지 못해 이 답변은 문서에 기반하지 않습니다.)",
}

// BuildPrompt assembles the system and user messages for one generation
// call. Pure string construction: no I/O, no suspension.
func BuildPrompt(mode ResponseMode, question, contextText string, lang Language) Prompt {
	prompts, ok := systemPrompts[lang]
	if !ok {
		prompts = systemPrompts[LangEnglish]
	}

	system := prompts[mode]

	var user string
	if mode == ModeFallback {
		disclaimer := fallbackDisclaimers[lang]
		if disclaimer == "" {
			disclaimer = fallbackDisclaimers[LangEnglish]
		}
		user = fmt.Sprintf("%s\n\n%s", question, disclaimer)
	} else {
		var builder strings.Builder
		builder.WriteString(contextOpen)
		builder.WriteString("\n")
		builder.WriteString(contextText)
		builder.WriteString("\n")
		builder.WriteString(contextClose)
		builder.WriteString("\n\n")
		builder.WriteString(question)
		user = builder.String()
	}

	return Prompt{System: system, User: user}
}
