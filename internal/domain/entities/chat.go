package entities

// ChatMessage is a single turn in a conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerateChunk is one piece of a generated response. Non-streaming calls
// produce a single chunk with Done set; streaming calls produce a sequence
// of partial chunks followed by a terminal one carrying timing.
type GenerateChunk struct {
	Chunk          string  `json:"chunk"`
	Done           bool    `json:"done"`
	Provider       string  `json:"provider,omitempty"`
	ResponseTimeMs float64 `json:"response_time_ms,omitempty"`
	Error          bool    `json:"error,omitempty"`
}

// GapAnalysis is the verdict on whether a query represents a content gap.
type GapAnalysis struct {
	IsGap                bool   `json:"is_gap"`
	Priority             string `json:"priority"`
	SuggestedContentType string `json:"suggested_content_type"`
	SuggestedTitle       string `json:"suggested_title"`
	Reason               string `json:"reason"`
}

// ContentItem is a schemaless CMS entry. Entry shapes are owned by the CMS,
// so they pass through untyped.
type ContentItem map[string]interface{}

// Title returns the entry title, or a placeholder when absent.
func (c ContentItem) Title() string {
	if title, ok := c["title"].(string); ok && title != "" {
		return title
	}
	return "Untitled"
}

// Description returns the entry description, or a placeholder when absent.
func (c ContentItem) Description() string {
	if desc, ok := c["description"].(string); ok && desc != "" {
		return desc
	}
	return "No description"
}
