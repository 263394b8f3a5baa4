package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_engine_deps.go -package=mocks docuchat/internal/rag Classifier,Generator

import (
	"context"
	"strings"
	"time"

	"docuchat/internal/contextutil"
	"docuchat/internal/llm"
	"docuchat/internal/query"
	"docuchat/internal/retrieval"
)

// Fixed user-facing failure messages. Failures are scoped to one message:
// the conversation stays usable afterwards.
const (
	MsgRetrievalFailed  = "Sorry, I couldn't search your documents right now. Please try again."
	MsgGenerationFailed = "Sorry, something went wrong while generating the response. Please try again."
	MsgEmptyGeneration  = "The model returned an empty response. Please try rephrasing your question."
)

// Classifier is the query-understanding surface the engine consumes.
type Classifier interface {
	Classify(ctx context.Context, text string) query.Classification
}

// Generator is the streaming generation surface. Satisfied by llm.Client.
type Generator interface {
	StreamChatMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams, callback func(chunk string) error) error
}

// Options tunes per-deployment engine behavior.
type Options struct {
	// SimilarityThreshold is the evidence filter cutoff.
	// Zero means DefaultSimilarityThreshold.
	SimilarityThreshold float64
	// HistoryWindow is how many recent turns are replayed into prompts.
	// Zero means DefaultHistoryWindow.
	HistoryWindow int
	// Language selects the prompt language. Empty means English.
	Language Language
}

// Engine sequences the message pipeline: validate, classify, map parameters,
// retrieve, filter, select mode, build prompt, generate. One Engine owns one
// conversation session; the caller is responsible for keeping at most one
// message in flight per session.
type Engine struct {
	classifier Classifier
	retriever  retrieval.Searcher
	generator  Generator
	history    *History
	threshold  float64
	language   Language
}

// NewEngine creates an Engine with explicit, owned collaborators.
func NewEngine(classifier Classifier, retriever retrieval.Searcher, generator Generator, opts Options) *Engine {
	threshold := opts.SimilarityThreshold
	if threshold == 0 {
		threshold = DefaultSimilarityThreshold
	}
	language := opts.Language
	if language == "" {
		language = LangEnglish
	}
	return &Engine{
		classifier: classifier,
		retriever:  retriever,
		generator:  generator,
		history:    NewHistory(opts.HistoryWindow),
		threshold:  threshold,
		language:   language,
	}
}

// History exposes the session history for inspection by the shell layer.
func (e *Engine) History() *History {
	return e.history
}

// Reset clears the session history. Used by the explicit new-chat action.
func (e *Engine) Reset() {
	e.history.Clear()
}

// ProcessMessage runs one message through the full pipeline. Tokens are
// forwarded to onToken in arrival order as they stream from the model;
// thinking spans are excluded from the forwarded stream and from the final
// response, but logged separately. The returned Result is always populated:
// rejections and failures are values, never propagated errors, so message
// processing can never leave the conversation in an undefined state.
func (e *Engine) ProcessMessage(ctx context.Context, text string, cmd query.Command, onToken func(token string)) Result {
	logger := contextutil.LoggerFromContext(ctx)
	start := time.Now()

	trimmed := strings.TrimSpace(text)
	searchText := trimmed
	queryType := ""

	var params query.RetrievalParams
	if cmd != query.CommandNone {
		// Explicit commands bypass validation, classification, and rejection.
		params = query.ParamsForCommand(cmd)
		queryType = string(cmd)
	} else {
		classification := e.classifier.Classify(ctx, trimmed)
		queryType = string(classification.Type)
		if !classification.Valid {
			logger.InfoContext(ctx, "query rejected",
				"query_type", queryType,
				"reason", classification.RejectReason,
			)
			return Result{
				Response:  classification.RejectReason,
				QueryType: queryType,
				Rejected:  true,
				TotalTime: time.Since(start),
			}
		}
		params = query.ParamsForType(classification.Type)
		if classification.Normalized != "" {
			searchText = classification.Normalized
		}
	}

	retrievalStart := time.Now()
	resp, err := e.retriever.Search(ctx, searchText, params)
	retrievalTime := time.Since(retrievalStart)
	if err != nil {
		logger.ErrorContext(ctx, "retrieval failed", "error", err)
		return Result{
			Response:      MsgRetrievalFailed,
			QueryType:     queryType,
			Failed:        true,
			RetrievalTime: retrievalTime,
			TotalTime:     time.Since(start),
		}
	}

	filtered := FilterChunks(resp.Chunks, e.threshold)
	hasContext := len(filtered) > 0
	best := BestSimilarity(filtered)
	mode := SelectMode(hasContext, best)

	logger.InfoContext(ctx, "evidence filtered",
		"retrieved", len(resp.Chunks),
		"kept", len(filtered),
		"best_similarity", best,
		"mode", string(mode),
	)

	prompt := BuildPrompt(mode, trimmed, resp.Context.Text, e.language)
	messages := e.buildMessages(prompt)

	generationStart := time.Now()
	response, thinking, err := e.generate(ctx, messages, onToken)
	generationTime := time.Since(generationStart)

	result := Result{
		Chunks:         filtered,
		TokenEstimate:  resp.Context.EstimatedTokens,
		QueryType:      queryType,
		Mode:           mode,
		RetrievalTime:  retrievalTime,
		GenerationTime: generationTime,
		TotalTime:      time.Since(start),
	}

	if thinking != "" {
		logger.DebugContext(ctx, "model thinking span", "length", len(thinking), "content", thinking)
	}

	if err != nil {
		logger.ErrorContext(ctx, "generation failed", "error", err)
		result.Response = MsgGenerationFailed
		result.Failed = true
		return result
	}
	if strings.TrimSpace(response) == "" {
		logger.WarnContext(ctx, "model returned empty response")
		result.Response = MsgEmptyGeneration
		result.Failed = true
		return result
	}

	result.Response = response

	// Commit exactly two turns at completion: the raw query as typed and the
	// final response. Streamed fragments never touch the history.
	e.history.Append(
		Turn{Role: RoleUser, Content: text},
		Turn{Role: RoleAssistant, Content: response},
	)

	logger.InfoContext(ctx, "message processed",
		"query_type", queryType,
		"mode", string(mode),
		"chunks_used", len(filtered),
		"retrieval_ms", retrievalTime.Milliseconds(),
		"generation_ms", generationTime.Milliseconds(),
		"total_ms", result.TotalTime.Milliseconds(),
	)
	return result
}

// buildMessages assembles the generation payload: system instruction, the
// bounded history window, then the user message.
func (e *Engine) buildMessages(prompt Prompt) []llm.Message {
	window := e.history.Window()
	messages := make([]llm.Message, 0, len(window)+2)
	messages = append(messages, llm.Message{Role: string(RoleSystem), Content: prompt.System})
	for _, turn := range window {
		messages = append(messages, llm.Message{Role: string(turn.Role), Content: turn.Content})
	}
	messages = append(messages, llm.Message{Role: string(RoleUser), Content: prompt.User})
	return messages
}

// generate streams the model response, filtering thinking spans out of both
// the forwarded stream and the accumulated final text.
func (e *Engine) generate(ctx context.Context, messages []llm.Message, onToken func(token string)) (visible, thinking string, err error) {
	filter := &thinkFilter{}

	err = e.generator.StreamChatMessages(ctx, messages, llm.ChatParams{Temperature: 0.7}, func(chunk string) error {
		if released := filter.Feed(chunk); released != "" && onToken != nil {
			onToken(released)
		}
		return nil
	})

	if tail := filter.tail(); tail != "" && onToken != nil {
		onToken(tail)
	}
	visible, thinking = filter.Flush()
	if err != nil {
		return "", thinking, err
	}
	return visible, thinking, nil
}
