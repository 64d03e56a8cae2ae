package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/contentiq/contentiq/internal/domain/entities"
)

// ChatService defines the generation operations used by the handler.
type ChatService interface {
	Generate(ctx context.Context, messages []entities.ChatMessage, contentContext []entities.ContentItem) *entities.GenerateChunk
	Stream(ctx context.Context, messages []entities.ChatMessage, contentContext []entities.ContentItem) <-chan entities.GenerateChunk
	AnalyzeContentGap(ctx context.Context, query string, available []entities.ContentItem) *entities.GapAnalysis
}

// ChatHandler handles text-generation endpoints.
type ChatHandler struct {
	service ChatService
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(service ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

type generateRequest struct {
	Messages       []entities.ChatMessage `json:"messages"`
	ContentContext []entities.ContentItem `json:"content_context"`
	Stream         bool                   `json:"stream"`
}

type gapAnalysisRequest struct {
	Query            string                 `json:"query"`
	AvailableContent []entities.ContentItem `json:"available_content"`
}

func decodeGenerateRequest(w http.ResponseWriter, r *http.Request) (*generateRequest, bool) {
	var payload generateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return nil, false
	}
	if len(payload.Messages) == 0 {
		respondWithError(w, http.StatusBadRequest, "messages must not be empty")
		return nil, false
	}
	return &payload, true
}

// Generate handles POST /api/llm/generate
func (h *ChatHandler) Generate(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeGenerateRequest(w, r)
	if !ok {
		return
	}

	chunk := h.service.Generate(r.Context(), payload.Messages, payload.ContentContext)
	respondWithJSON(w, http.StatusOK, chunk)
}

// GenerateStream handles POST /api/llm/generate/stream as Server-Sent
// Events, one data frame per chunk.
func (h *ChatHandler) GenerateStream(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeGenerateRequest(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for chunk := range h.service.Stream(r.Context(), payload.Messages, payload.ContentContext) {
		data, err := json.Marshal(chunk)
		if err != nil {
			continue
		}
		if _, err := w.Write([]byte("data: " + string(data) + "\n\n")); err != nil {
			return
		}
		flusher.Flush()
	}
}

// AnalyzeContentGap handles POST /api/llm/analyze-content-gap
func (h *ChatHandler) AnalyzeContentGap(w http.ResponseWriter, r *http.Request) {
	var payload gapAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if strings.TrimSpace(payload.Query) == "" {
		respondWithError(w, http.StatusBadRequest, "query must not be empty")
		return
	}

	analysis := h.service.AnalyzeContentGap(r.Context(), payload.Query, payload.AvailableContent)
	respondWithJSON(w, http.StatusOK, analysis)
}
