package entities

import (
	"time"
)

// AnalyticsSummary is the aggregate view over the trailing week of queries.
// Response-time and success-rate figures reflect only the current day's
// rolling samples; TotalQueries covers the trailing 7 calendar days.
type AnalyticsSummary struct {
	TotalQueries          int64     `json:"total_queries"`
	AverageResponseTimeMs float64   `json:"average_response_time_ms"`
	SuccessRate           float64   `json:"success_rate"`
	ContentGapsCount      int       `json:"content_gaps_count"`
	LastUpdated           time.Time `json:"last_updated"`
}

// TrendPoint is one calendar day's query count.
type TrendPoint struct {
	Date    string `json:"date"`
	Queries int64  `json:"queries"`
}

// TopQuery is a ranked query with its occurrence count and category.
type TopQuery struct {
	Query    string `json:"query"`
	Count    int    `json:"count"`
	Category string `json:"category"`
}
