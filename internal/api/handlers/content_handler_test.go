package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/contentiq/contentiq/internal/domain/entities"
	apperrors "github.com/contentiq/contentiq/pkg/errors"
)

type stubContentProvider struct {
	items     []entities.ContentItem
	draft     entities.ContentItem
	err       error
	lastType  string
	lastQuery string
}

func (s *stubContentProvider) FetchContent(_ context.Context, contentType, query string) ([]entities.ContentItem, error) {
	s.lastType = contentType
	s.lastQuery = query
	return s.items, s.err
}

func (s *stubContentProvider) SearchContent(_ context.Context, query string, _ []string) ([]entities.ContentItem, error) {
	s.lastQuery = query
	return s.items, s.err
}

func (s *stubContentProvider) CreateDraft(_ context.Context, contentType, title string, _ map[string]interface{}) (entities.ContentItem, error) {
	s.lastType = contentType
	return s.draft, s.err
}

func (s *stubContentProvider) ContentTypes(context.Context) ([]entities.ContentItem, error) {
	return s.items, s.err
}

func (s *stubContentProvider) Close() error { return nil }

func TestFetchContentEndpoint(t *testing.T) {
	stub := &stubContentProvider{items: []entities.ContentItem{{"title": "Lagos Guide"}}}
	handler := NewContentHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/mcp/content/tour?query=lagos", nil)
	req.SetPathValue("contentType", "tour")
	rec := httptest.NewRecorder()

	handler.FetchContent(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tour", stub.lastType)
	assert.Equal(t, "lagos", stub.lastQuery)
	assert.Contains(t, rec.Body.String(), "Lagos Guide")
}

func TestFetchContentEndpoint_NoProviderIs503(t *testing.T) {
	handler := NewContentHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/mcp/content/tour", nil)
	req.SetPathValue("contentType", "tour")
	rec := httptest.NewRecorder()

	handler.FetchContent(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSearchContentEndpoint(t *testing.T) {
	stub := &stubContentProvider{items: []entities.ContentItem{{"title": "Beach Resorts"}}}
	handler := NewContentHandler(stub)

	body := `{"query":"beach","content_types":["hotel"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/mcp/search", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.SearchContent(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "beach", stub.lastQuery)
}

func TestSearchContentEndpoint_EmptyQuery(t *testing.T) {
	handler := NewContentHandler(&stubContentProvider{})

	req := httptest.NewRequest(http.MethodPost, "/api/mcp/search", strings.NewReader(`{"query":""}`))
	rec := httptest.NewRecorder()

	handler.SearchContent(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateDraftEndpoint(t *testing.T) {
	stub := &stubContentProvider{draft: entities.ContentItem{"uid": "e1", "title": "New Guide"}}
	handler := NewContentHandler(stub)

	body := `{"content_type":"article","title":"New Guide","data":{"body":"..."}}`
	req := httptest.NewRequest(http.MethodPost, "/api/mcp/create-draft", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.CreateDraft(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "New Guide")
}

func TestCreateDraftEndpoint_MissingFields(t *testing.T) {
	handler := NewContentHandler(&stubContentProvider{})

	req := httptest.NewRequest(http.MethodPost, "/api/mcp/create-draft", strings.NewReader(`{"title":"x"}`))
	rec := httptest.NewRecorder()

	handler.CreateDraft(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateDraftEndpoint_ValidationErrorIs400(t *testing.T) {
	stub := &stubContentProvider{err: apperrors.NewValidationError("draft creation requires a management token")}
	handler := NewContentHandler(stub)

	body := `{"content_type":"article","title":"New Guide"}`
	req := httptest.NewRequest(http.MethodPost, "/api/mcp/create-draft", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.CreateDraft(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "management token")
}

func TestCreateDraftEndpoint_ProviderErrorIs502(t *testing.T) {
	stub := &stubContentProvider{err: apperrors.NewExternalError("MCP tool create_draft_content failed", nil)}
	handler := NewContentHandler(stub)

	body := `{"content_type":"article","title":"New Guide"}`
	req := httptest.NewRequest(http.MethodPost, "/api/mcp/create-draft", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.CreateDraft(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestContentTypesEndpoint(t *testing.T) {
	stub := &stubContentProvider{items: []entities.ContentItem{{"uid": "tour"}}}
	handler := NewContentHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/mcp/content-types", nil)
	rec := httptest.NewRecorder()

	handler.ContentTypes(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tour")
}
