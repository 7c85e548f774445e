package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/leapstack-labs/tablesnap/internal/cli/config"
	"github.com/leapstack-labs/tablesnap/internal/cli/output"
	"github.com/leapstack-labs/tablesnap/internal/server"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve table rendering over HTTP",
		Long: `Start an HTTP server that turns CSV request bodies into PNG images.

Endpoints:
  POST /render   body is the table text; query parameters separator,
                 max_cell_length and font_size override the config
  GET  /healthz  returns "ok"

The server stops gracefully on SIGINT or SIGTERM.`,
		Example: `  tablesnap serve --addr :9000
  curl --data-binary @data.csv 'localhost:9000/render?separator=;' > data.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd)
		},
	}

	cmd.Flags().String("addr", config.DefaultServeAddr, "Address to listen on")
	cmd.Flags().Int64("max-body-bytes", config.DefaultMaxBodyBytes, "Largest accepted request body")

	return cmd
}

func runServe(cmd *cobra.Command) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	history, closeHistory, err := cmdCtx.OpenHistory(ctx)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer closeHistory()

	srv := server.New(server.Config{
		Addr:          cfg.Serve.Addr,
		Separator:     cfg.Separator,
		MaxCellLength: cfg.MaxCellLength,
		FontSize:      cfg.FontSize,
		MaxBodyBytes:  cfg.Serve.MaxBodyBytes,
		History:       history,
		Logger:        cmdCtx.Logger,
	})

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeText {
		r.Success(fmt.Sprintf("Listening on %s", cfg.Serve.Addr))
	}
	return srv.Serve(ctx)
}
