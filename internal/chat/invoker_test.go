package chat

import (
	"context"
	"strings"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type echoInput struct {
	Text string `json:"text"`
}

// connectInvoker starts an in-process MCP server with an echo tool and a
// tool that always fails, and returns an invoker connected to it.
func connectInvoker(t *testing.T) *ToolInvoker {
	t.Helper()
	ctx := context.Background()

	server := mcp.NewServer(&mcp.Implementation{Name: "test-tools", Version: "0.0.1"}, nil)

	echoSchema, err := jsonschema.For[echoInput](nil)
	if err != nil {
		t.Fatalf("jsonschema.For() error: %v", err)
	}
	mcp.AddTool(server, &mcp.Tool{
		Name:        "echo",
		Description: "Echoes the input text back.",
		InputSchema: echoSchema,
	}, func(ctx context.Context, req *mcp.CallToolRequest, in echoInput) (*mcp.CallToolResult, any, error) {
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: "echo: " + in.Text}},
		}, nil, nil
	})
	mcp.AddTool(server, &mcp.Tool{
		Name:        "always_fails",
		Description: "Reports an error result.",
		InputSchema: echoSchema,
	}, func(ctx context.Context, req *mcp.CallToolRequest, in echoInput) (*mcp.CallToolResult, any, error) {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: "boom"}},
		}, nil, nil
	})

	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	serverSession, err := server.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server.Connect() error: %v", err)
	}
	t.Cleanup(func() { _ = serverSession.Wait() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	clientSession, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client.Connect() error: %v", err)
	}

	inv := NewToolInvoker(clientSession, nil)
	t.Cleanup(func() { _ = inv.Close() })
	return inv
}

func TestToolInvokerTools(t *testing.T) {
	inv := connectInvoker(t)

	tools, err := inv.Tools(context.Background())
	if err != nil {
		t.Fatalf("Tools() error: %v", err)
	}
	if len(tools) != 2 {
		t.Fatalf("Tools() returned %d tools, want 2", len(tools))
	}
	for _, tool := range tools {
		if tool.Name == "" || tool.Description == "" || tool.Schema == nil {
			t.Errorf("tool %+v missing name, description, or schema", tool)
			continue
		}
		// The wire-format schema is decoded into a typed one, properties
		// intact, not just asserted through.
		if tool.Schema.Type != "object" || tool.Schema.Properties["text"] == nil {
			t.Errorf("tool %q schema = %+v, want an object schema with a text property", tool.Name, tool.Schema)
		}
	}
}

func TestDecodeSchema(t *testing.T) {
	got, err := decodeSchema(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{"type": "string"},
		},
		"required": []any{"title"},
	})
	if err != nil {
		t.Fatalf("decodeSchema() error: %v", err)
	}
	if got.Type != "object" || got.Properties["title"] == nil || got.Properties["title"].Type != "string" {
		t.Errorf("decodeSchema() = %+v, want the object schema", got)
	}
	if len(got.Required) != 1 || got.Required[0] != "title" {
		t.Errorf("Required = %v, want [title]", got.Required)
	}

	if got, err := decodeSchema(nil); err != nil || got != nil {
		t.Errorf("decodeSchema(nil) = %v, %v, want nil, nil", got, err)
	}
}

func TestToolInvokerInvoke(t *testing.T) {
	inv := connectInvoker(t)

	got, err := inv.Invoke(context.Background(), "echo", map[string]any{"text": "hello"})
	if err != nil {
		t.Fatalf("Invoke() error: %v", err)
	}
	if got != "echo: hello" {
		t.Errorf("Invoke() = %q, want %q", got, "echo: hello")
	}
}

func TestToolInvokerInvokeErrorResult(t *testing.T) {
	inv := connectInvoker(t)

	_, err := inv.Invoke(context.Background(), "always_fails", map[string]any{"text": "x"})
	if err == nil {
		t.Fatal("Invoke() on failing tool returned nil error")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("Invoke() error = %v, want the server's message", err)
	}
}

func TestToolInvokerInvokeUnknownTool(t *testing.T) {
	inv := connectInvoker(t)

	if _, err := inv.Invoke(context.Background(), "no_such_tool", nil); err == nil {
		t.Fatal("Invoke() on unknown tool returned nil error")
	}
}

func TestFlattenContentMixedParts(t *testing.T) {
	got := flattenContent([]mcp.Content{
		&mcp.TextContent{Text: "  first "},
		&mcp.TextContent{Text: "second  "},
	})
	if got != "first second" {
		t.Errorf("flattenContent() = %q, want %q", got, "first second")
	}

	if got := flattenContent(nil); got != "" {
		t.Errorf("flattenContent(nil) = %q, want empty", got)
	}
}
