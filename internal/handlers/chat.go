package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"teamprompt/internal/contextutil"
	"teamprompt/internal/rag"
)

// ChatHandler handles HTTP requests for chat.
type ChatHandler struct {
	engine rag.Engine
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(engine rag.Engine) *ChatHandler {
	return &ChatHandler{engine: engine}
}

// ChatRequest represents the HTTP request payload for chat.
type ChatRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k"`
}

// ChatResponse represents the HTTP response payload for chat.
type ChatResponse struct {
	Answer  string       `json:"answer"`
	Sources []rag.Source `json:"sources"`
}

// ServeHTTP answers a question from the indexed documents. With ?stream=true
// the answer is sent as Server-Sent Events.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if r.URL.Query().Get("stream") == "true" {
		h.handleStreamingChat(w, r, req)
		return
	}

	resp, err := h.engine.Chat(ctx, rag.ChatRequest{Question: req.Question, TopK: req.TopK})
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to process chat request")
		return
	}

	writeJSON(ctx, w, http.StatusOK, ChatResponse{Answer: resp.Answer, Sources: resp.Sources})
}

// handleStreamingChat streams the answer as "data:" events, then one
// "event: sources" event and a final "data: [DONE]".
func (h *ChatHandler) handleStreamingChat(w http.ResponseWriter, r *http.Request, req ChatRequest) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	flusher, ok := w.(http.Flusher)
	if !ok {
		logger.ErrorContext(ctx, "streaming not supported by response writer")
		writeError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	started := false
	start := func() {
		if started {
			return
		}
		started = true
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
	}

	sources, err := h.engine.StreamChat(ctx, rag.ChatRequest{Question: req.Question, TopK: req.TopK}, func(chunk string) error {
		start()
		if err := writeEvent(w, "", chunk); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		if !started {
			handleServiceError(ctx, w, err, "Failed to process chat request")
			return
		}
		logger.ErrorContext(ctx, "error streaming chat", "error", err)
		payload, _ := json.Marshal(ErrorResponse{Error: err.Error()})
		_ = writeEvent(w, "error", string(payload))
		flusher.Flush()
		return
	}

	start()
	payload, err := json.Marshal(sources)
	if err != nil {
		logger.ErrorContext(ctx, "failed to encode sources", "error", err)
	} else {
		_ = writeEvent(w, "sources", string(payload))
	}
	_, _ = fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

// writeEvent writes one SSE event. Multi-line data is split across data lines.
func writeEvent(w io.Writer, event, data string) error {
	if event != "" {
		if _, err := fmt.Fprintf(w, "event: %s\n", event); err != nil {
			return err
		}
	}
	for _, line := range strings.Split(data, "\n") {
		if _, err := fmt.Fprintf(w, "data: %s\n", line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprint(w, "\n")
	return err
}
