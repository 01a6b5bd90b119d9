package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ownplanner/ownplanner/internal/api"
	"github.com/ownplanner/ownplanner/internal/chat"
	"github.com/ownplanner/ownplanner/internal/config"
	"github.com/ownplanner/ownplanner/internal/gemini"
	"github.com/ownplanner/ownplanner/internal/log"
	"github.com/ownplanner/ownplanner/internal/planner"
	"github.com/ownplanner/ownplanner/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.RequireAPIKey(); err != nil {
		return err
	}

	logger := log.New(log.Config{Level: cfg.LogLevelValue(), JSON: cfg.LogJSON})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := store.Open(cfg.DBPath, logger)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	tasks := planner.NewTaskService(store.NewTaskStore(db), logger)
	notes := planner.NewNoteService(store.NewNoteStore(db), logger)

	model, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:    cfg.GeminiAPIKey,
		ModelName: cfg.ModelName,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("creating model client: %w", err)
	}

	toolCommand, toolArgs, err := resolveToolCommand(cfg)
	if err != nil {
		return err
	}

	factory, err := chat.NewSessionFactory(chat.FactoryConfig{
		Model:         model,
		ToolCommand:   toolCommand,
		ToolArgs:      toolArgs,
		ClientVersion: Version,
		MaxToolRounds: cfg.MaxToolRounds,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("creating session factory: %w", err)
	}

	registry, err := chat.NewRegistry(chat.RegistryConfig{
		Factory:       factory.NewDriver,
		IdleTimeout:   cfg.SessionIdleTimeout,
		SweepInterval: cfg.SweepInterval,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("creating session registry: %w", err)
	}
	defer registry.Close()

	server, err := api.NewServer(api.ServerConfig{
		Addr:        cfg.Addr,
		Sessions:    registry,
		Tasks:       tasks,
		Notes:       notes,
		CORSOrigins: cfg.CORSOrigins,
		RateLimit:   1,
		RateBurst:   cfg.RateBurst,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("creating HTTP server: %w", err)
	}

	logger.Info("ownplanner serving", "addr", cfg.Addr, "model", cfg.ModelName)
	return server.Run(ctx)
}

// resolveToolCommand decides what the session factory spawns as the
// per-session tool server. By default it re-executes this binary with
// the mcp subcommand.
func resolveToolCommand(cfg *config.Config) (string, []string, error) {
	if cfg.MCPCommand != "" {
		return cfg.MCPCommand, cfg.MCPArgs, nil
	}
	self, err := os.Executable()
	if err != nil {
		return "", nil, fmt.Errorf("locating own executable: %w", err)
	}
	return self, []string{"mcp"}, nil
}
