package routes

import (
	"net/http"

	"github.com/contentiq/contentiq/internal/api/handlers"
	"github.com/contentiq/contentiq/internal/api/middleware"
	"github.com/contentiq/contentiq/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	chatHandler      *handlers.ChatHandler
	contentHandler   *handlers.ContentHandler
	analyticsHandler *handlers.AnalyticsHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	chatHandler *handlers.ChatHandler,
	contentHandler *handlers.ContentHandler,
	analyticsHandler *handlers.AnalyticsHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux: http.NewServeMux(),

		chatHandler:      chatHandler,
		contentHandler:   contentHandler,
		analyticsHandler: analyticsHandler,

		metrics: metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// LLM endpoints
	r.mux.HandleFunc("POST /api/llm/generate", r.chatHandler.Generate)
	r.mux.HandleFunc("POST /api/llm/generate/stream", r.chatHandler.GenerateStream)
	r.mux.HandleFunc("POST /api/llm/analyze-content-gap", r.chatHandler.AnalyzeContentGap)

	// CMS content endpoints
	r.mux.HandleFunc("GET /api/mcp/content/{contentType}", r.contentHandler.FetchContent)
	r.mux.HandleFunc("POST /api/mcp/search", r.contentHandler.SearchContent)
	r.mux.HandleFunc("POST /api/mcp/create-draft", r.contentHandler.CreateDraft)
	r.mux.HandleFunc("GET /api/mcp/content-types", r.contentHandler.ContentTypes)

	// Analytics endpoints
	r.mux.HandleFunc("POST /api/analytics/track-query", r.analyticsHandler.TrackQuery)
	r.mux.HandleFunc("POST /api/analytics/track-content-gap", r.analyticsHandler.TrackContentGap)
	r.mux.HandleFunc("GET /api/analytics/summary", r.analyticsHandler.GetSummary)
	r.mux.HandleFunc("GET /api/analytics/trends", r.analyticsHandler.GetTrends)
	r.mux.HandleFunc("GET /api/analytics/top-queries", r.analyticsHandler.GetTopQueries)
	r.mux.HandleFunc("GET /api/analytics/content-gaps", r.analyticsHandler.GetContentGaps)

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics, r.mux)(handler)

	// CORS wraps everything so headers are set even on error responses
	handler = middleware.CORSMiddleware(handler)

	return handler
}
