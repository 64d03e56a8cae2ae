package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/contentiq/contentiq/internal/domain/entities"
	apperrors "github.com/contentiq/contentiq/pkg/errors"
)

const (
	defaultTrendDays = 7
	maxTrendDays     = 365
	defaultTopLimit  = 10
	maxTopLimit      = 100
)

// AnalyticsService defines the analytics operations used by the handler.
type AnalyticsService interface {
	TrackQuery(ctx context.Context, sessionID, query string, responseTimeMs float64, success bool) error
	TrackContentGap(ctx context.Context, query string, gapData entities.GapData) error
	GetSummary(ctx context.Context) *entities.AnalyticsSummary
	GetTrends(ctx context.Context, days int) []entities.TrendPoint
	GetTopQueries(ctx context.Context, limit int) []entities.TopQuery
	GetContentGaps(ctx context.Context) []entities.ContentGapRecord
}

// AnalyticsHandler handles analytics tracking and reporting endpoints.
type AnalyticsHandler struct {
	service AnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(service AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

type trackQueryRequest struct {
	SessionID      string  `json:"session_id"`
	Query          string  `json:"query"`
	ResponseTimeMs float64 `json:"response_time_ms"`
	Success        bool    `json:"success"`
}

type trackContentGapRequest struct {
	Query   string           `json:"query"`
	GapData entities.GapData `json:"gap_data"`
}

// TrackQuery handles POST /api/analytics/track-query
func (h *AnalyticsHandler) TrackQuery(w http.ResponseWriter, r *http.Request) {
	var payload trackQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := h.service.TrackQuery(r.Context(), payload.SessionID, payload.Query, payload.ResponseTimeMs, payload.Success); err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Type == apperrors.ErrorTypeValidation {
			respondWithError(w, http.StatusBadRequest, appErr.Message)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "failed to track query")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// TrackContentGap handles POST /api/analytics/track-content-gap
func (h *AnalyticsHandler) TrackContentGap(w http.ResponseWriter, r *http.Request) {
	var payload trackContentGapRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := h.service.TrackContentGap(r.Context(), payload.Query, payload.GapData); err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Type == apperrors.ErrorTypeValidation {
			respondWithError(w, http.StatusBadRequest, appErr.Message)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "failed to track content gap")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// GetSummary handles GET /api/analytics/summary
func (h *AnalyticsHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.service.GetSummary(r.Context()))
}

// GetTrends handles GET /api/analytics/trends?days=N
func (h *AnalyticsHandler) GetTrends(w http.ResponseWriter, r *http.Request) {
	days := defaultTrendDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxTrendDays {
			respondWithError(w, http.StatusBadRequest, "days must be between 1 and 365")
			return
		}
		days = parsed
	}

	respondWithJSON(w, http.StatusOK, h.service.GetTrends(r.Context(), days))
}

// GetTopQueries handles GET /api/analytics/top-queries?limit=N
func (h *AnalyticsHandler) GetTopQueries(w http.ResponseWriter, r *http.Request) {
	limit := defaultTopLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxTopLimit {
			respondWithError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = parsed
	}

	respondWithJSON(w, http.StatusOK, h.service.GetTopQueries(r.Context(), limit))
}

// GetContentGaps handles GET /api/analytics/content-gaps
func (h *AnalyticsHandler) GetContentGaps(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.service.GetContentGaps(r.Context()))
}

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{"error": message})
}
