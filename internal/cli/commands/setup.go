package commands

import (
	"context"
	"log/slog"

	"github.com/leapstack-labs/tablesnap/internal/cli/config"
	"github.com/leapstack-labs/tablesnap/internal/cli/output"
	"github.com/leapstack-labs/tablesnap/internal/resource"
	"github.com/leapstack-labs/tablesnap/internal/snap"
	"github.com/leapstack-labs/tablesnap/internal/state"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with config, logger and renderer.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// Options returns the parse and render options from the config.
func (c *CommandContext) Options() snap.Options {
	return snap.Options{
		Separator:     c.Cfg.Separator,
		MaxCellLength: c.Cfg.MaxCellLength,
		FontSize:      c.Cfg.FontSize,
	}
}

// Fetcher returns a URL fetcher honoring the configured timeout.
func (c *CommandContext) Fetcher() *resource.Fetcher {
	return &resource.Fetcher{Timeout: c.Cfg.Timeout}
}

// newRunner builds a snap runner from the command context.
func newRunner(c *CommandContext, history state.Store) *snap.Runner {
	return snap.NewRunner(c.Fetcher(), history, c.Logger)
}

// OpenHistory opens the history store when it is enabled.
// Returns a nil store and a no-op cleanup when history is disabled.
func (c *CommandContext) OpenHistory(ctx context.Context) (state.Store, func(), error) {
	if !c.Cfg.History.Enabled {
		return nil, func() {}, nil
	}
	store := state.NewSQLiteStore(c.Logger)
	if err := store.Open(ctx, c.Cfg.History.Path); err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			c.Logger.Warn("failed to close history", slog.Any("error", err))
		}
	}
	return store, cleanup, nil
}

// getConfig returns the current configuration, or defaults when none was loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Defaults()
}
