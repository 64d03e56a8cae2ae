package llm

import (
	"context"
	"errors"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"github.com/contentiq/contentiq/internal/domain/entities"
	"github.com/contentiq/contentiq/internal/domain/providers"
)

const (
	defaultTemperature = 0.7
	jsonTemperature    = 0.3
	defaultMaxTokens   = 1024
)

// Provider implements ChatProvider against any OpenAI-compatible chat
// completion API. Groq exposes the same wire format, so one adapter serves
// both providers with different base URLs and models.
type Provider struct {
	name   string
	model  string
	client *openai.Client
}

// NewProvider creates a chat provider. baseURL may be empty for the
// OpenAI default endpoint.
func NewProvider(name, apiKey, baseURL, model string) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("api key is required")
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Provider{
		name:   name,
		model:  model,
		client: openai.NewClientWithConfig(cfg),
	}, nil
}

// Name identifies the provider in logs and response metadata.
func (p *Provider) Name() string {
	return p.name
}

// Complete returns the full completion for a conversation.
func (p *Provider) Complete(ctx context.Context, messages []entities.ChatMessage) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    toOpenAIMessages(messages),
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Stream generates a completion incrementally, invoking onDelta per
// content fragment. An error from onDelta aborts the stream.
func (p *Provider) Stream(ctx context.Context, messages []entities.ChatMessage, onDelta func(string) error) error {
	stream, err := p.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    toOpenAIMessages(messages),
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
		Stream:      true,
	})
	if err != nil {
		return err
	}
	defer stream.Close()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if len(resp.Choices) > 0 && resp.Choices[0].Delta.Content != "" {
			if err := onDelta(resp.Choices[0].Delta.Content); err != nil {
				return err
			}
		}
	}
}

// CompleteJSON returns a completion constrained to a JSON object.
func (p *Provider) CompleteJSON(ctx context.Context, messages []entities.ChatMessage) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    toOpenAIMessages(messages),
		Temperature: jsonTemperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func toOpenAIMessages(messages []entities.ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}
	return out
}

var _ providers.ChatProvider = (*Provider)(nil)
