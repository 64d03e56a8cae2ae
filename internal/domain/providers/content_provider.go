package providers

import (
	"context"

	"github.com/contentiq/contentiq/internal/domain/entities"
)

// ContentProvider exposes the CMS content operations the request layer
// consumes. The MCP adapter implements this against the Contentstack MCP
// server.
type ContentProvider interface {
	// FetchContent returns entries of a content type, optionally filtered
	// by a query string.
	FetchContent(ctx context.Context, contentType, query string) ([]entities.ContentItem, error)

	// SearchContent searches entries across the given content types.
	SearchContent(ctx context.Context, query string, contentTypes []string) ([]entities.ContentItem, error)

	// CreateDraft creates an unpublished entry of the given content type.
	CreateDraft(ctx context.Context, contentType, title string, data map[string]interface{}) (entities.ContentItem, error)

	// ContentTypes lists the available content types.
	ContentTypes(ctx context.Context) ([]entities.ContentItem, error)

	// Close shuts down the provider and any underlying session.
	Close() error
}
