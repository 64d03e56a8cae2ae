package entities

import (
	"time"
)

// Gap priority levels. Unknown values score the same as low.
const (
	GapPriorityHigh   = "high"
	GapPriorityMedium = "medium"
	GapPriorityLow    = "low"
)

// GapData carries the remediation suggestion produced when a query is
// identified as a content gap.
type GapData struct {
	Priority             string `json:"priority"`
	SuggestedContentType string `json:"suggested_content_type"`
	SuggestedTitle       string `json:"suggested_title"`
	Reason               string `json:"reason"`
}

// ContentGapRecord tracks a recurring query with no matching content.
// Frequency is stored as a standalone counter in the store and filled in
// on read, so concurrent sightings never lose increments.
type ContentGapRecord struct {
	Query     string    `json:"query"`
	GapData   GapData   `json:"gap_data"`
	Frequency int64     `json:"frequency"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}

// PriorityScore converts a gap priority into its ordinal sort weight.
func PriorityScore(priority string) int {
	switch priority {
	case GapPriorityHigh:
		return 3
	case GapPriorityMedium:
		return 2
	default:
		return 1
	}
}
