// Package chat hosts the conversational core: per-session drivers that
// relay user messages to a language model, execute the tool calls the
// model requests, and feed the results back until the model produces a
// plain text answer.
package chat

import (
	"context"
	"errors"

	"github.com/google/jsonschema-go/jsonschema"
)

var (
	// ErrSessionCorrupted reports that the model rejected the conversation
	// history and the session state cannot be continued as-is.
	ErrSessionCorrupted = errors.New("chat: session state corrupted")

	// ErrSessionClosed reports use of a driver after Close.
	ErrSessionClosed = errors.New("chat: session closed")
)

// Model starts conversations with a language model. Implementations live
// outside this package; internal/gemini provides the production one.
type Model interface {
	// Start opens a fresh conversation seeded with the system context.
	// The tool descriptors are advertised to the model; pass nil to start
	// a conversation without tool support.
	Start(ctx context.Context, tools []ToolDescriptor) (Conversation, error)
}

// Conversation is a stateful exchange with the model. Send returns
// ErrSessionCorrupted (possibly wrapped) when the provider rejects the
// accumulated history.
type Conversation interface {
	Send(ctx context.Context, msg Message) (*Reply, error)
}

// Message is one turn sent to the model: either user text or a batch of
// tool results, never both.
type Message struct {
	Text    string
	Results []ToolResult
}

// Reply is the model's turn: accumulated text plus any tool calls the
// model wants executed before it can finish.
type Reply struct {
	Text  string
	Calls []ToolCall
}

// ToolCall is a single function invocation requested by the model. Name
// is kept exactly as the model produced it, including any namespace
// prefix.
type ToolCall struct {
	Name string
	Args map[string]any
}

// ToolResult carries one tool outcome back to the model. Name must echo
// the original call name so the model can correlate responses. Response
// holds {"result": ...} on success or {"error": ...} on failure.
type ToolResult struct {
	Name     string
	Response map[string]any
}

// ToolDescriptor describes one callable tool.
type ToolDescriptor struct {
	Name        string
	Description string
	Schema      *jsonschema.Schema
}

// ToolConn executes tools on behalf of a session. Implementations are
// expected to be safe for use from a single driver goroutine at a time.
type ToolConn interface {
	// Tools lists the tools available on this connection.
	Tools(ctx context.Context) ([]ToolDescriptor, error)
	// Invoke runs one tool and returns its text outcome.
	Invoke(ctx context.Context, name string, args map[string]any) (string, error)
	// Close releases the connection.
	Close() error
}
