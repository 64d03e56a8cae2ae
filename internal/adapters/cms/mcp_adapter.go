package cms

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/contentiq/contentiq/internal/domain/entities"
	"github.com/contentiq/contentiq/internal/domain/providers"
	"github.com/contentiq/contentiq/internal/infrastructure/observability"
	"github.com/contentiq/contentiq/pkg/config"
	apperrors "github.com/contentiq/contentiq/pkg/errors"
	"github.com/contentiq/contentiq/pkg/retry"
)

var clientInfo = &mcp.Implementation{Name: "contentiq-services", Version: "1.0.0"}

// MCPAdapter implements ContentProvider against the Contentstack MCP
// server, spawned as a subprocess and spoken to over stdio. The session is
// dialed lazily on first use and reused afterwards.
type MCPAdapter struct {
	cfg *config.ContentstackConfig

	mu      sync.Mutex
	session *mcp.ClientSession
	dial    func(ctx context.Context) (*mcp.ClientSession, error)
}

// NewMCPAdapter creates a content provider backed by the configured MCP
// command (npx -y @contentstack/mcp by default).
func NewMCPAdapter(cfg *config.ContentstackConfig) providers.ContentProvider {
	a := &MCPAdapter{cfg: cfg}
	a.dial = a.dialCommand
	return a
}

func (a *MCPAdapter) dialCommand(ctx context.Context) (*mcp.ClientSession, error) {
	cmd := exec.Command(a.cfg.MCPCommand, a.cfg.MCPArgs...)
	cmd.Env = append(os.Environ(),
		"CONTENTSTACK_API_KEY="+a.cfg.APIKey,
		"CONTENTSTACK_DELIVERY_TOKEN="+a.cfg.DeliveryToken,
		"CONTENTSTACK_MANAGEMENT_TOKEN="+a.cfg.ManagementToken,
		"CONTENTSTACK_ENVIRONMENT="+a.cfg.Environment,
	)

	client := mcp.NewClient(clientInfo, nil)
	return client.Connect(ctx, &mcp.CommandTransport{Command: cmd}, nil)
}

func (a *MCPAdapter) ensureSession(ctx context.Context) (*mcp.ClientSession, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session != nil {
		return a.session, nil
	}

	var session *mcp.ClientSession
	err := retry.Do(ctx, retry.DefaultConfig(), func() error {
		s, err := a.dial(ctx)
		if err != nil {
			return err
		}
		session = s
		return nil
	})
	if err != nil {
		return nil, apperrors.NewExternalError("failed to connect to MCP server", err)
	}

	a.session = session
	return session, nil
}

// callTool invokes a named MCP tool and decodes its JSON text payload.
func (a *MCPAdapter) callTool(ctx context.Context, name string, args map[string]interface{}) (map[string]interface{}, error) {
	session, err := a.ensureSession(ctx)
	if err != nil {
		return nil, err
	}

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		return nil, apperrors.NewExternalError(fmt.Sprintf("MCP tool %s failed", name), err)
	}
	if err := result.GetError(); err != nil {
		return nil, apperrors.NewExternalError(fmt.Sprintf("MCP tool %s returned an error", name), err)
	}
	if len(result.Content) == 0 {
		return nil, apperrors.NewExternalError(fmt.Sprintf("MCP tool %s returned no content", name), nil)
	}

	text, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		return nil, apperrors.NewExternalError(fmt.Sprintf("MCP tool %s returned non-text content", name), nil)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(text.Text), &payload); err != nil {
		return nil, apperrors.NewExternalError(fmt.Sprintf("MCP tool %s returned invalid JSON", name), err)
	}
	return payload, nil
}

// FetchContent returns entries of a content type, optionally filtered by a
// query string. Tool failures map to an empty result; the request layer is
// best-effort over the CMS.
func (a *MCPAdapter) FetchContent(ctx context.Context, contentType, query string) ([]entities.ContentItem, error) {
	args := map[string]interface{}{
		"content_type":   contentType,
		"environment":    a.cfg.Environment,
		"api_key":        a.cfg.APIKey,
		"delivery_token": a.cfg.DeliveryToken,
	}
	if query != "" {
		args["query"] = query
	}

	payload, err := a.callTool(ctx, "fetch_content", args)
	if err != nil {
		observability.GetLogger().Error().Err(err).Str("content_type", contentType).Msg("failed to fetch content")
		return []entities.ContentItem{}, nil
	}
	return extractItems(payload, "entries"), nil
}

// SearchContent searches entries across the given content types.
func (a *MCPAdapter) SearchContent(ctx context.Context, query string, contentTypes []string) ([]entities.ContentItem, error) {
	args := map[string]interface{}{
		"query":          query,
		"environment":    a.cfg.Environment,
		"api_key":        a.cfg.APIKey,
		"delivery_token": a.cfg.DeliveryToken,
	}
	if len(contentTypes) > 0 {
		args["content_types"] = contentTypes
	}

	payload, err := a.callTool(ctx, "search_content", args)
	if err != nil {
		observability.GetLogger().Error().Err(err).Str("query", query).Msg("failed to search content")
		return []entities.ContentItem{}, nil
	}
	return extractItems(payload, "entries"), nil
}

// CreateDraft creates an unpublished entry. Unlike reads, a failed write
// surfaces its error so the caller can report it.
func (a *MCPAdapter) CreateDraft(ctx context.Context, contentType, title string, data map[string]interface{}) (entities.ContentItem, error) {
	if a.cfg.ManagementToken == "" {
		return nil, apperrors.NewValidationError("draft creation requires a management token")
	}

	payload, err := a.callTool(ctx, "create_draft_content", map[string]interface{}{
		"content_type":     contentType,
		"title":            title,
		"data":             data,
		"environment":      a.cfg.Environment,
		"api_key":          a.cfg.APIKey,
		"management_token": a.cfg.ManagementToken,
	})
	if err != nil {
		return nil, err
	}
	return entities.ContentItem(payload), nil
}

// ContentTypes lists the available content types.
func (a *MCPAdapter) ContentTypes(ctx context.Context) ([]entities.ContentItem, error) {
	payload, err := a.callTool(ctx, "get_content_types", map[string]interface{}{
		"api_key":        a.cfg.APIKey,
		"delivery_token": a.cfg.DeliveryToken,
	})
	if err != nil {
		observability.GetLogger().Error().Err(err).Msg("failed to fetch content types")
		return []entities.ContentItem{}, nil
	}
	return extractItems(payload, "content_types"), nil
}

// Close shuts down the MCP session and its subprocess.
func (a *MCPAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session == nil {
		return nil
	}
	err := a.session.Close()
	a.session = nil
	return err
}

func extractItems(payload map[string]interface{}, field string) []entities.ContentItem {
	raw, ok := payload[field].([]interface{})
	if !ok {
		return []entities.ContentItem{}
	}
	items := make([]entities.ContentItem, 0, len(raw))
	for _, entry := range raw {
		if m, ok := entry.(map[string]interface{}); ok {
			items = append(items, entities.ContentItem(m))
		}
	}
	return items
}
