package entities

import (
	"time"
)

// QueryEvent represents a single tracked user query. Events are immutable
// once recorded and expire from the store after 24 hours.
type QueryEvent struct {
	SessionID      string    `json:"session_id"`
	Query          string    `json:"query"`
	ResponseTimeMs float64   `json:"response_time_ms"`
	Success        bool      `json:"success"`
	Timestamp      time.Time `json:"timestamp"`
}
