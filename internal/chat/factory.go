package chat

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"slices"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// FactoryConfig configures a session factory.
type FactoryConfig struct {
	Model Model
	// ToolCommand is the executable spawned as the per-session tool
	// server, speaking MCP over stdio. Leave empty to run every session
	// without tools.
	ToolCommand string
	// ToolArgs are passed to the tool command before the session
	// identity flags.
	ToolArgs []string
	// ClientVersion is reported in the MCP handshake.
	ClientVersion string
	MaxToolRounds int
	Logger        *slog.Logger
}

// SessionFactory assembles drivers for new sessions: it spawns the
// session's tool server, connects to it, and starts the model
// conversation. A tool server failure is logged and the session
// continues without tools rather than failing outright.
type SessionFactory struct {
	model         Model
	toolCommand   string
	toolArgs      []string
	clientVersion string
	maxToolRounds int
	logger        *slog.Logger
}

// NewSessionFactory creates a session factory.
func NewSessionFactory(cfg FactoryConfig) (*SessionFactory, error) {
	if cfg.Model == nil {
		return nil, errors.New("chat: model is required")
	}
	if cfg.ClientVersion == "" {
		cfg.ClientVersion = "dev"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &SessionFactory{
		model:         cfg.Model,
		toolCommand:   cfg.ToolCommand,
		toolArgs:      cfg.ToolArgs,
		clientVersion: cfg.ClientVersion,
		maxToolRounds: cfg.MaxToolRounds,
		logger:        cfg.Logger,
	}, nil
}

// NewDriver builds a driver for one session. It satisfies DriverFactory.
func (f *SessionFactory) NewDriver(ctx context.Context, sessionID, userID string) (*Driver, error) {
	invoker := f.connectTools(ctx, sessionID, userID)

	d, err := NewDriver(ctx, DriverConfig{
		SessionID:     sessionID,
		UserID:        userID,
		Model:         f.model,
		Invoker:       invoker,
		MaxToolRounds: f.maxToolRounds,
		Logger:        f.logger,
	})
	if err != nil {
		if invoker != nil {
			invoker.Close()
		}
		return nil, err
	}
	return d, nil
}

// connectTools spawns the tool server scoped to this session and
// connects to it. Returns nil when no tool command is configured or the
// connection fails; the session then runs without tools.
func (f *SessionFactory) connectTools(ctx context.Context, sessionID, userID string) ToolConn {
	if f.toolCommand == "" {
		return nil
	}

	args := slices.Clone(f.toolArgs)
	args = append(args, "--session-id", sessionID, "--user-id", userID)

	// The server process must outlive ctx (which only covers session
	// creation), so the command is not bound to it. The transport kills
	// the process when the session closes.
	cmd := exec.Command(f.toolCommand, args...)

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "ownplanner",
		Version: f.clientVersion,
	}, nil)

	session, err := client.Connect(ctx, &mcp.CommandTransport{Command: cmd}, nil)
	if err != nil {
		f.logger.Error("tool server unavailable, session continues without tools",
			"session_id", sessionID, "command", f.toolCommand, "error", err)
		return nil
	}

	return NewToolInvoker(session, f.logger)
}
