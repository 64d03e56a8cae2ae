package providers

import (
	"context"

	"github.com/contentiq/contentiq/internal/domain/entities"
)

// ChatProvider is a single text-generation backend. The chat service keeps
// an ordered list of these and fails over between them.
type ChatProvider interface {
	// Name identifies the provider in logs and response metadata.
	Name() string

	// Complete returns the full completion for a conversation.
	Complete(ctx context.Context, messages []entities.ChatMessage) (string, error)

	// Stream generates a completion incrementally, invoking onDelta for
	// each content fragment as it arrives. When onDelta returns an error
	// the provider stops generating and returns that error, so a consumer
	// that has gone away releases the upstream connection promptly.
	Stream(ctx context.Context, messages []entities.ChatMessage, onDelta func(delta string) error) error

	// CompleteJSON returns a completion constrained to a JSON object.
	CompleteJSON(ctx context.Context, messages []entities.ChatMessage) (string, error)
}
