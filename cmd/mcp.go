package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	mcpSDK "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/ownplanner/ownplanner/internal/config"
	"github.com/ownplanner/ownplanner/internal/log"
	"github.com/ownplanner/ownplanner/internal/mcpserver"
	"github.com/ownplanner/ownplanner/internal/planner"
	"github.com/ownplanner/ownplanner/internal/store"
)

var (
	mcpSessionID string
	mcpUserID    string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the planner tool server on stdio",
	Long: `Runs the MCP tool server that exposes task, note, and datetime
tools over stdio. The serve command spawns one of these per chat
session; it can also be run standalone for any MCP-capable client.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMCP()
	},
}

func init() {
	mcpCmd.Flags().StringVar(&mcpSessionID, "session-id", "", "chat session this server belongs to")
	mcpCmd.Flags().StringVar(&mcpUserID, "user-id", "", "user whose data the tools operate on")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// stdout carries the MCP protocol, so logs must go to stderr.
	logger := log.NewWithWriter(os.Stderr, log.Config{Level: cfg.LogLevelValue(), JSON: cfg.LogJSON})
	if mcpSessionID != "" {
		logger = logger.With("session_id", mcpSessionID)
	}

	userID := mcpUserID
	if userID == "" {
		userID = "default"
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := store.Open(cfg.DBPath, logger)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	server, err := mcpserver.NewServer(mcpserver.Config{
		Name:    "ownplanner-tools",
		Version: Version,
		UserID:  userID,
		Tasks:   planner.NewTaskService(store.NewTaskStore(db), logger),
		Notes:   planner.NewNoteService(store.NewNoteStore(db), logger),
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	logger.Info("tool server ready", "user_id", userID, "transport", "stdio")
	if err := server.Run(ctx, &mcpSDK.StdioTransport{}); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}
