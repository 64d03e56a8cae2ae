package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/contentiq/contentiq/internal/domain/providers"
	apperrors "github.com/contentiq/contentiq/pkg/errors"
)

// ContentHandler handles CMS content endpoints backed by the MCP tool.
type ContentHandler struct {
	provider providers.ContentProvider
}

// NewContentHandler creates a new content handler. provider may be nil
// when the CMS integration is not configured; endpoints then report 503.
func NewContentHandler(provider providers.ContentProvider) *ContentHandler {
	return &ContentHandler{provider: provider}
}

type searchContentRequest struct {
	Query        string   `json:"query"`
	ContentTypes []string `json:"content_types"`
}

type createDraftRequest struct {
	ContentType string                 `json:"content_type"`
	Title       string                 `json:"title"`
	Data        map[string]interface{} `json:"data"`
}

func (h *ContentHandler) unavailable(w http.ResponseWriter) bool {
	if h.provider == nil {
		respondWithError(w, http.StatusServiceUnavailable, "CMS integration is not configured")
		return true
	}
	return false
}

// FetchContent handles GET /api/mcp/content/{contentType}
func (h *ContentHandler) FetchContent(w http.ResponseWriter, r *http.Request) {
	if h.unavailable(w) {
		return
	}

	contentType := r.PathValue("contentType")
	if contentType == "" {
		respondWithError(w, http.StatusBadRequest, "content type is required")
		return
	}

	entries, err := h.provider.FetchContent(r.Context(), contentType, r.URL.Query().Get("query"))
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "failed to fetch content")
		return
	}
	respondWithJSON(w, http.StatusOK, entries)
}

// SearchContent handles POST /api/mcp/search
func (h *ContentHandler) SearchContent(w http.ResponseWriter, r *http.Request) {
	if h.unavailable(w) {
		return
	}

	var payload searchContentRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if strings.TrimSpace(payload.Query) == "" {
		respondWithError(w, http.StatusBadRequest, "query must not be empty")
		return
	}

	entries, err := h.provider.SearchContent(r.Context(), payload.Query, payload.ContentTypes)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "failed to search content")
		return
	}
	respondWithJSON(w, http.StatusOK, entries)
}

// CreateDraft handles POST /api/mcp/create-draft
func (h *ContentHandler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	if h.unavailable(w) {
		return
	}

	var payload createDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if payload.ContentType == "" || payload.Title == "" {
		respondWithError(w, http.StatusBadRequest, "content_type and title are required")
		return
	}

	entry, err := h.provider.CreateDraft(r.Context(), payload.ContentType, payload.Title, payload.Data)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Type == apperrors.ErrorTypeValidation {
			respondWithError(w, http.StatusBadRequest, appErr.Message)
			return
		}
		respondWithError(w, http.StatusBadGateway, "failed to create draft")
		return
	}
	respondWithJSON(w, http.StatusCreated, entry)
}

// ContentTypes handles GET /api/mcp/content-types
func (h *ContentHandler) ContentTypes(w http.ResponseWriter, r *http.Request) {
	if h.unavailable(w) {
		return
	}

	types, err := h.provider.ContentTypes(r.Context())
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "failed to list content types")
		return
	}
	respondWithJSON(w, http.StatusOK, types)
}
