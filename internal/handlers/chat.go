package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"docuchat/internal/contextutil"
	"docuchat/internal/query"
	"docuchat/internal/rag"
)

// ChatHandler handles HTTP requests for chat.
type ChatHandler struct {
	engine *rag.Engine
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(engine *rag.Engine) *ChatHandler {
	return &ChatHandler{engine: engine}
}

// ChatRequest represents the HTTP request payload for chat. Command is
// optional; when set it names a preset action ("summary", "definition",
// "expand") that bypasses classification.
type ChatRequest struct {
	Message string `json:"message"`
	Command string `json:"command,omitempty"`
}

// ServeHTTP handles HTTP requests for chat. With ?stream=true the response
// is Server-Sent Events: one data event per token, a result event carrying
// the final payload, then [DONE]. Without it the full result is returned as
// JSON once generation finishes.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	cmd := query.ParseCommand(req.Command)
	if req.Command != "" && cmd == query.CommandNone {
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("Unknown command: %q", req.Command))
		return
	}

	if r.URL.Query().Get("stream") == "true" {
		h.stream(w, r, req.Message, cmd)
		return
	}

	result := h.engine.ProcessMessage(ctx, req.Message, cmd, nil)
	writeJSON(w, r, http.StatusOK, result)
}

// stream runs the pipeline while forwarding tokens over SSE.
func (h *ChatHandler) stream(w http.ResponseWriter, r *http.Request, message string, cmd query.Command) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	flusher, ok := w.(http.Flusher)
	if !ok {
		logger.ErrorContext(ctx, "streaming not supported by response writer")
		writeError(w, r, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	result := h.engine.ProcessMessage(ctx, message, cmd, func(token string) {
		payload, err := json.Marshal(token)
		if err != nil {
			return
		}
		_, _ = fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
	})

	if payload, err := json.Marshal(result); err == nil {
		_, _ = fmt.Fprintf(w, "event: result\ndata: %s\n\n", payload)
	} else {
		logger.ErrorContext(ctx, "failed to encode result event", "error", err)
	}
	_, _ = fmt.Fprintf(w, "data: [DONE]\n\n")
	flusher.Flush()
}

// ResetHandler clears the chat session history.
type ResetHandler struct {
	engine *rag.Engine
}

// NewResetHandler creates a new ResetHandler.
func NewResetHandler(engine *rag.Engine) *ResetHandler {
	return &ResetHandler{engine: engine}
}

func (h *ResetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.engine.Reset()
	contextutil.LoggerFromContext(r.Context()).InfoContext(r.Context(), "chat history reset")
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "reset"})
}
