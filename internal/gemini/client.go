// Package gemini implements the chat.Model interface on top of the
// Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/ownplanner/ownplanner/internal/chat"
)

// systemInstructions primes every conversation. They are seeded as a
// user turn with a canned model acknowledgement, so the model treats
// them as established context rather than a message to answer.
const systemInstructions = `You are a helpful personal planning assistant integrated into OwnPlanner.

Your capabilities:
- Help users manage their tasks and to-do lists
- Assist with note-taking and organization
- Provide information about current date and time
- Answer questions and provide helpful advice

Available tools:
- Task management: Create, list, update, and delete tasks
- Note management: Create, list, update, and delete notes
- Date/time information: Get current date and time
- List tasks by focus date to see if the user has tasks planned for today or other dates

Guidelines:
- Be concise but friendly
- When users ask to create tasks or notes, use the appropriate tools
- Always confirm actions taken (e.g., "I've created a task for...")
- If asked about the current date/time, use the datetime tool
- Proactively suggest using tools when relevant
- Format responses clearly and professionally, don't show entity IDs unless requested

Remember: You have access to real tools that can modify user data. Always use them when appropriate.`

// instructionsAck is the model turn paired with the instructions.
const instructionsAck = "Understood! I'm ready to help you with your tasks, notes, and planning needs."

// corruptedStateMarker appears in the API error when the accumulated
// history contains a content entry the backend can no longer parse. The
// only recovery is starting the conversation over.
const corruptedStateMarker = "required oneof field 'data' must have one initialized field"

// Config configures a Gemini model client.
type Config struct {
	APIKey    string
	ModelName string
	Logger    *slog.Logger
}

func (c *Config) validate() error {
	if c.APIKey == "" {
		return errors.New("gemini: api key is required")
	}
	if c.ModelName == "" {
		return errors.New("gemini: model name is required")
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return nil
}

// Client talks to the Gemini API. It implements chat.Model.
type Client struct {
	genai     *genai.Client
	modelName string
	logger    *slog.Logger
}

// NewClient creates a Gemini client.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	return &Client{
		genai:     gc,
		modelName: cfg.ModelName,
		logger:    cfg.Logger.With("component", "gemini"),
	}, nil
}

// Start opens a chat seeded with the system instructions, advertising
// the given tools to the model.
func (c *Client) Start(ctx context.Context, tools []chat.ToolDescriptor) (chat.Conversation, error) {
	config := &genai.GenerateContentConfig{}
	if len(tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(tools))
		for _, t := range tools {
			params, err := convertSchema(t.Schema)
			if err != nil {
				return nil, fmt.Errorf("converting schema for tool %q: %w", t.Name, err)
			}
			decls = append(decls, &genai.FunctionDeclaration{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  params,
			})
		}
		config.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	history := []*genai.Content{
		genai.NewContentFromText(systemInstructions, genai.RoleUser),
		genai.NewContentFromText(instructionsAck, genai.RoleModel),
	}

	gc, err := c.genai.Chats.Create(ctx, c.modelName, config, history)
	if err != nil {
		return nil, fmt.Errorf("creating chat: %w", err)
	}

	c.logger.Debug("conversation started", "model", c.modelName, "tools", len(tools))
	return &conversation{chat: gc}, nil
}

// conversation adapts a genai chat to chat.Conversation.
type conversation struct {
	chat *genai.Chat
}

// Send relays one turn and reduces the response. A corrupted-history
// rejection from the API is surfaced as chat.ErrSessionCorrupted.
func (cv *conversation) Send(ctx context.Context, msg chat.Message) (*chat.Reply, error) {
	var parts []genai.Part
	if len(msg.Results) > 0 {
		parts = make([]genai.Part, 0, len(msg.Results))
		for _, r := range msg.Results {
			parts = append(parts, genai.Part{
				FunctionResponse: &genai.FunctionResponse{
					Name:     r.Name,
					Response: r.Response,
				},
			})
		}
	} else {
		parts = []genai.Part{{Text: msg.Text}}
	}

	resp, err := cv.chat.SendMessage(ctx, parts...)
	if err != nil {
		if isCorruptedState(err) {
			return nil, fmt.Errorf("%w: %w", chat.ErrSessionCorrupted, err)
		}
		return nil, fmt.Errorf("sending message: %w", err)
	}

	reply := &chat.Reply{Text: resp.Text()}
	for _, fc := range resp.FunctionCalls() {
		reply.Calls = append(reply.Calls, chat.ToolCall{
			Name: fc.Name,
			Args: fc.Args,
		})
	}
	return reply, nil
}

// isCorruptedState reports whether the API rejected the conversation
// history itself, as opposed to a transient failure.
func isCorruptedState(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return strings.Contains(apiErr.Message, corruptedStateMarker)
	}
	return strings.Contains(err.Error(), corruptedStateMarker)
}
