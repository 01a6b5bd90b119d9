package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultMaxToolRounds bounds how many times a single Respond call will
// execute tools and hand the results back to the model.
const DefaultMaxToolRounds = 10

// resetApology is returned after an automatic session reset so the user
// knows to repeat their last message.
const resetApology = "I'm sorry, there was an issue processing your request. " +
	"I've reset our conversation context. Could you please repeat your last message?"

// DriverConfig configures a conversation driver.
type DriverConfig struct {
	SessionID string
	UserID    string

	Model Model
	// Invoker executes the model's tool calls. May be nil, in which case
	// the conversation runs without tools.
	Invoker ToolConn
	// MaxToolRounds overrides DefaultMaxToolRounds when positive.
	MaxToolRounds int
	Logger        *slog.Logger
}

func (c *DriverConfig) validate() error {
	if c.Model == nil {
		return errors.New("chat: model is required")
	}
	if c.SessionID == "" {
		return errors.New("chat: session id is required")
	}
	if c.MaxToolRounds <= 0 {
		c.MaxToolRounds = DefaultMaxToolRounds
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return nil
}

// Driver owns one session's conversation with the model. It relays user
// messages, runs the tool loop, and transparently resets the session
// when the provider rejects the accumulated history.
//
// A driver serializes its own calls: concurrent Respond calls for the
// same session queue up rather than interleave turns.
type Driver struct {
	mu     sync.Mutex
	conv   Conversation
	closed bool

	model     Model
	invoker   ToolConn
	tools     []ToolDescriptor
	maxRounds int
	logger    *slog.Logger

	sessionID string
	userID    string

	lastAccess atomic.Int64 // unix nanoseconds
	closeOnce  sync.Once
	closeErr   error
}

// NewDriver starts a conversation and returns a driver for it. When the
// config carries an invoker, its tools are listed once and advertised to
// the model for the life of the driver.
func NewDriver(ctx context.Context, cfg DriverConfig) (*Driver, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// The tool catalog is best-effort: a failed listing leaves the
	// session conversational but tool-less.
	var tools []ToolDescriptor
	if cfg.Invoker != nil {
		var err error
		tools, err = cfg.Invoker.Tools(ctx)
		if err != nil {
			cfg.Logger.Warn("listing session tools failed, continuing without tools",
				"session_id", cfg.SessionID, "error", err)
			tools = nil
		}
	}

	conv, err := cfg.Model.Start(ctx, tools)
	if err != nil {
		return nil, fmt.Errorf("starting conversation: %w", err)
	}

	d := &Driver{
		conv:      conv,
		model:     cfg.Model,
		invoker:   cfg.Invoker,
		tools:     tools,
		maxRounds: cfg.MaxToolRounds,
		logger:    cfg.Logger.With("session_id", cfg.SessionID),
		sessionID: cfg.SessionID,
		userID:    cfg.UserID,
	}
	d.touch()
	return d, nil
}

// SessionID returns the session this driver serves.
func (d *Driver) SessionID() string { return d.sessionID }

// UserID returns the user the session belongs to.
func (d *Driver) UserID() string { return d.userID }

// LastAccess reports when the driver last handled a call.
func (d *Driver) LastAccess() time.Time {
	return time.Unix(0, d.lastAccess.Load())
}

func (d *Driver) touch() {
	d.lastAccess.Store(time.Now().UnixNano())
}

// Respond sends a user message and drives the tool loop until the model
// produces a plain text answer, the round cap is reached, or the context
// is cancelled. When the provider rejects the session history the driver
// resets the conversation and returns an apology asking the user to
// repeat themselves.
func (d *Driver) Respond(ctx context.Context, userMessage string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return "", ErrSessionClosed
	}
	d.touch()

	reply, err := d.conv.Send(ctx, Message{Text: userMessage})
	d.touch()
	if err != nil {
		return d.handleSendError(ctx, err)
	}

	for round := 0; ; round++ {
		if len(reply.Calls) == 0 {
			return reply.Text, nil
		}
		if round >= d.maxRounds {
			d.logger.Warn("tool round limit reached, returning current response",
				"rounds", round)
			return reply.Text, nil
		}

		results := d.executeCalls(ctx, reply.Calls)
		if len(results) == 0 {
			d.logger.Warn("tool calls produced no results, returning current response")
			return reply.Text, nil
		}

		reply, err = d.conv.Send(ctx, Message{Results: results})
		d.touch()
		if err != nil {
			return d.handleSendError(ctx, err)
		}
	}
}

// executeCalls runs each requested tool and packages the outcomes,
// tagged with the call's original name so the model can correlate them.
// Failures are reported to the model as {"error": ...} rather than
// aborting the turn. Without an invoker the directives are skipped
// entirely, which ends the loop on the zero-results check.
func (d *Driver) executeCalls(ctx context.Context, calls []ToolCall) []ToolResult {
	results := make([]ToolResult, 0, len(calls))
	for _, call := range calls {
		if d.invoker == nil {
			d.logger.Warn("skipping tool call, no tool connection", "tool", call.Name)
			continue
		}

		var response map[string]any
		name := stripNamespace(call.Name)
		out, err := d.invoker.Invoke(ctx, name, call.Args)
		if err != nil {
			d.logger.Error("tool call failed", "tool", name, "error", err)
			response = map[string]any{"error": err.Error()}
		} else {
			response = map[string]any{"result": out}
		}

		results = append(results, ToolResult{Name: call.Name, Response: response})
	}
	return results
}

// handleSendError recovers from a corrupted session by starting a fresh
// conversation and apologizing; any other error is passed through.
func (d *Driver) handleSendError(ctx context.Context, err error) (string, error) {
	if !errors.Is(err, ErrSessionCorrupted) {
		return "", err
	}

	d.logger.Warn("session state corrupted, resetting conversation", "error", err)
	conv, startErr := d.model.Start(ctx, d.tools)
	if startErr != nil {
		return "", fmt.Errorf("resetting corrupted session: %w", startErr)
	}
	d.conv = conv
	return resetApology, nil
}

// Clear discards the conversation history and starts over with the same
// tools.
func (d *Driver) Clear(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrSessionClosed
	}
	d.touch()

	conv, err := d.model.Start(ctx, d.tools)
	if err != nil {
		return fmt.Errorf("restarting conversation: %w", err)
	}
	d.conv = conv
	return nil
}

// Close releases the driver's tool connection. Safe to call more than
// once; later calls return the first result.
func (d *Driver) Close() error {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		d.mu.Unlock()
		if d.invoker != nil {
			d.closeErr = d.invoker.Close()
		}
	})
	return d.closeErr
}

// stripNamespace drops a namespace prefix from a tool name: everything
// up to and including the first ':'. Models sometimes qualify names as
// "default_api:create_task" while the server registers "create_task".
func stripNamespace(name string) string {
	if i := strings.Index(name, ":"); i >= 0 {
		return name[i+1:]
	}
	return name
}
