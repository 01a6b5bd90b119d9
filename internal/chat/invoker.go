package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolInvoker executes tools over an MCP client session. It satisfies
// ToolConn and is the production bridge between a conversation driver
// and the planner tool server.
type ToolInvoker struct {
	session *mcp.ClientSession
	logger  *slog.Logger
}

// NewToolInvoker wraps an already-connected MCP client session.
func NewToolInvoker(session *mcp.ClientSession, logger *slog.Logger) *ToolInvoker {
	if logger == nil {
		logger = slog.Default()
	}
	return &ToolInvoker{session: session, logger: logger}
}

// Tools lists the tools exposed by the connected server. A tool whose
// input schema cannot be decoded is kept with a nil schema so the rest
// of the catalog stays usable.
func (ti *ToolInvoker) Tools(ctx context.Context) ([]ToolDescriptor, error) {
	res, err := ti.session.ListTools(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("listing tools: %w", err)
	}

	out := make([]ToolDescriptor, 0, len(res.Tools))
	for _, t := range res.Tools {
		schema, err := decodeSchema(t.InputSchema)
		if err != nil {
			ti.logger.Warn("dropping unusable tool input schema", "tool", t.Name, "error", err)
		}
		out = append(out, ToolDescriptor{
			Name:        t.Name,
			Description: t.Description,
			Schema:      schema,
		})
	}
	return out, nil
}

// decodeSchema converts the wire-format input schema the SDK hands back
// into a typed schema. Over a real transport the value arrives as
// decoded JSON, not as a *jsonschema.Schema, so it is re-marshaled.
func decodeSchema(v any) (*jsonschema.Schema, error) {
	switch s := v.(type) {
	case nil:
		return nil, nil
	case *jsonschema.Schema:
		return s, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding input schema: %w", err)
	}
	var s jsonschema.Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding input schema: %w", err)
	}
	return &s, nil
}

// Invoke calls one tool and flattens its response into text. Text parts
// are concatenated; anything else is carried over as JSON. A result the
// server flagged as an error comes back as a non-nil error with the
// flattened text as the message.
func (ti *ToolInvoker) Invoke(ctx context.Context, name string, args map[string]any) (string, error) {
	res, err := ti.session.CallTool(ctx, &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		return "", fmt.Errorf("calling tool %q: %w", name, err)
	}

	text := flattenContent(res.Content)
	if res.IsError {
		if text == "" {
			text = "tool reported an error"
		}
		return "", fmt.Errorf("tool %q: %s", name, text)
	}
	return text, nil
}

// Close terminates the MCP session, which also stops the spawned server
// process when the transport owns one.
func (ti *ToolInvoker) Close() error {
	return ti.session.Close()
}

// flattenContent joins content parts into a single trimmed string. Text
// parts contribute their text directly; other part kinds are serialized
// to JSON so nothing the server sent is silently dropped.
func flattenContent(parts []mcp.Content) string {
	var b strings.Builder
	for _, part := range parts {
		if text, ok := part.(*mcp.TextContent); ok {
			b.WriteString(text.Text)
			continue
		}
		if data, err := json.Marshal(part); err == nil {
			b.Write(data)
		}
	}
	return strings.TrimSpace(b.String())
}
