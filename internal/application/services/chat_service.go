package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/contentiq/contentiq/internal/domain/entities"
	"github.com/contentiq/contentiq/internal/domain/providers"
	"github.com/contentiq/contentiq/internal/infrastructure/observability"
)

const systemPrompt = `You are ContentIQ, an AI assistant powered by Contentstack MCP integration.
You help users find information about travel content, tours, hotels, and travel guides.

When content is found in the CMS, reference it naturally in your responses.
If no relevant content is found, acknowledge this and suggest what content might be helpful.

Always be helpful, accurate, and engaging in your responses.`

const gapAnalysisPrompt = `Analyze if the user query represents a content gap based on available content.
Respond with JSON in this format:
{
    "is_gap": boolean,
    "priority": "high|medium|low",
    "suggested_content_type": "string",
    "suggested_title": "string",
    "reason": "string"
}`

const fallbackResponse = "I'm sorry, I'm experiencing technical difficulties. Please try again later."

// ChatService generates responses through an ordered list of providers,
// failing over from one to the next. Each provider sits behind a circuit
// breaker so a provider in sustained failure is skipped without paying its
// timeout on every request.
type ChatService struct {
	providers []providers.ChatProvider
	breakers  map[string]*gobreaker.CircuitBreaker
	metrics   *observability.Metrics
}

// NewChatService creates a chat service over the given providers, tried in
// order. metrics may be nil.
func NewChatService(chatProviders []providers.ChatProvider, metrics *observability.Metrics) *ChatService {
	breakers := make(map[string]*gobreaker.CircuitBreaker, len(chatProviders))
	for _, p := range chatProviders {
		breakers[p.Name()] = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    p.Name(),
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		})
	}
	return &ChatService{
		providers: chatProviders,
		breakers:  breakers,
		metrics:   metrics,
	}
}

// Generate produces a complete response, trying each provider in order.
// When every provider fails the caller still receives a well-formed chunk
// carrying an apology and the error flag.
func (s *ChatService) Generate(ctx context.Context, messages []entities.ChatMessage, contentContext []entities.ContentItem) *entities.GenerateChunk {
	enhanced := enhanceMessages(messages, contentContext)
	logger := observability.GetLogger()

	for _, p := range s.providers {
		start := time.Now()
		result, err := s.breakers[p.Name()].Execute(func() (interface{}, error) {
			return p.Complete(ctx, enhanced)
		})
		s.recordLLM(ctx, p.Name(), err)
		if err != nil {
			logger.Warn().Err(err).Str("provider", p.Name()).Msg("generation failed, trying next provider")
			continue
		}
		return &entities.GenerateChunk{
			Chunk:          result.(string),
			Done:           true,
			Provider:       p.Name(),
			ResponseTimeMs: float64(time.Since(start).Milliseconds()),
		}
	}

	logger.Error().Msg("all generation providers failed")
	return &entities.GenerateChunk{
		Chunk: fallbackResponse,
		Done:  true,
		Error: true,
	}
}

// Stream produces a response incrementally on the returned channel. The
// channel terminates with a Done chunk and is closed afterwards. Every
// send races against ctx so an abandoned consumer never strands the
// producer goroutine on a full channel.
func (s *ChatService) Stream(ctx context.Context, messages []entities.ChatMessage, contentContext []entities.ContentItem) <-chan entities.GenerateChunk {
	enhanced := enhanceMessages(messages, contentContext)
	out := make(chan entities.GenerateChunk, 16)

	go func() {
		defer close(out)
		logger := observability.GetLogger()

		send := func(chunk entities.GenerateChunk) bool {
			select {
			case out <- chunk:
				return true
			case <-ctx.Done():
				return false
			}
		}

		for _, p := range s.providers {
			start := time.Now()
			streamed := false
			_, err := s.breakers[p.Name()].Execute(func() (interface{}, error) {
				return nil, p.Stream(ctx, enhanced, func(delta string) error {
					streamed = true
					if !send(entities.GenerateChunk{Chunk: delta, Provider: p.Name()}) {
						return ctx.Err()
					}
					return nil
				})
			})
			s.recordLLM(ctx, p.Name(), err)
			if ctx.Err() != nil {
				// Consumer is gone; nothing left to deliver.
				return
			}
			if err != nil {
				// A mid-stream failure after emitting chunks cannot be
				// retried transparently; end the stream with the error flag.
				logger.Warn().Err(err).Str("provider", p.Name()).Msg("streaming failed")
				if streamed {
					send(entities.GenerateChunk{Done: true, Provider: p.Name(), Error: true})
					return
				}
				continue
			}
			send(entities.GenerateChunk{
				Done:           true,
				Provider:       p.Name(),
				ResponseTimeMs: float64(time.Since(start).Milliseconds()),
			})
			return
		}

		logger.Error().Msg("all streaming providers failed")
		send(entities.GenerateChunk{Chunk: fallbackResponse, Done: true, Error: true})
	}()

	return out
}

// AnalyzeContentGap decides whether a query is a content gap given the
// content already available. Without a usable provider it falls back to a
// heuristic; on provider error it returns a safe "analysis failed" verdict
// rather than an error.
func (s *ChatService) AnalyzeContentGap(ctx context.Context, query string, available []entities.ContentItem) *entities.GapAnalysis {
	logger := observability.GetLogger()

	availableJSON, err := json.Marshal(available)
	if err != nil {
		availableJSON = []byte("[]")
	}
	messages := []entities.ChatMessage{
		{Role: "system", Content: gapAnalysisPrompt},
		{Role: "user", Content: fmt.Sprintf("Query: %s\nAvailable content: %s", query, availableJSON)},
	}

	for _, p := range s.providers {
		result, err := s.breakers[p.Name()].Execute(func() (interface{}, error) {
			return p.CompleteJSON(ctx, messages)
		})
		s.recordLLM(ctx, p.Name(), err)
		if err != nil {
			logger.Warn().Err(err).Str("provider", p.Name()).Msg("gap analysis failed, trying next provider")
			continue
		}

		var analysis entities.GapAnalysis
		if err := json.Unmarshal([]byte(result.(string)), &analysis); err != nil {
			logger.Warn().Err(err).Str("provider", p.Name()).Msg("gap analysis returned unparseable JSON")
			continue
		}
		return &analysis
	}

	if len(s.providers) == 0 {
		// No provider configured: treat a query with no matching content
		// as a gap worth writing about.
		return &entities.GapAnalysis{
			IsGap:                len(available) == 0,
			Priority:             entities.GapPriorityMedium,
			SuggestedContentType: "article",
			SuggestedTitle:       fmt.Sprintf("Guide about %s", query),
			Reason:               "No relevant content found for this query",
		}
	}

	return &entities.GapAnalysis{
		IsGap:                false,
		Priority:             entities.GapPriorityLow,
		SuggestedContentType: "article",
		Reason:               "Analysis failed",
	}
}

func (s *ChatService) recordLLM(ctx context.Context, provider string, err error) {
	if s.metrics == nil {
		return
	}
	observability.RecordLLMMetric(ctx, s.metrics, provider, err == nil)
}

// enhanceMessages prepends the system prompt, extended with a digest of
// the CMS content available for this conversation.
func enhanceMessages(messages []entities.ChatMessage, contentContext []entities.ContentItem) []entities.ChatMessage {
	prompt := systemPrompt
	if len(contentContext) > 0 {
		var b strings.Builder
		b.WriteString("\n\nAvailable content from CMS:\n")
		for _, item := range contentContext {
			fmt.Fprintf(&b, "- %s: %s\n", item.Title(), item.Description())
		}
		prompt += b.String()
	}

	enhanced := make([]entities.ChatMessage, 0, len(messages)+1)
	enhanced = append(enhanced, entities.ChatMessage{Role: "system", Content: prompt})
	enhanced = append(enhanced, messages...)
	return enhanced
}
