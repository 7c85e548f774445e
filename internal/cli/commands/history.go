package commands

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/leapstack-labs/tablesnap/internal/cli/output"
	"github.com/leapstack-labs/tablesnap/internal/state"
	"github.com/spf13/cobra"
)

// DefaultHistoryLimit is how many entries history shows by default.
const DefaultHistoryLimit = 20

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [id]",
		Short: "Show previously rendered tables",
		Long: `List recent renders recorded in the history database, newest first,
or show a single render by id.`,
		Example: `  tablesnap history
  tablesnap history --limit 5 --output json
  tablesnap history 6f1c0a3e-...`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runHistoryShow(cmd, args[0])
			}
			return runHistory(cmd, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", DefaultHistoryLimit, "Maximum entries to show (0 = all)")

	return cmd
}

func openHistoryOrFail(cmd *cobra.Command, cmdCtx *CommandContext) (state.Store, func(), error) {
	if !cmdCtx.Cfg.History.Enabled {
		return nil, nil, errors.New("history is disabled (set history.enabled or pass --history)")
	}
	store, cleanup, err := cmdCtx.OpenHistory(cmd.Context())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open history: %w", err)
	}
	return store, cleanup, nil
}

func runHistory(cmd *cobra.Command, limit int) error {
	if limit < 0 {
		return fmt.Errorf("--limit must not be negative, got %d", limit)
	}

	cmdCtx := NewCommandContext(cmd)
	store, cleanup, err := openHistoryOrFail(cmd, cmdCtx)
	if err != nil {
		return err
	}
	defer cleanup()

	entries, err := store.List(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		if entries == nil {
			entries = []state.Entry{}
		}
		return r.JSON(entries)
	}

	r.Header(1, fmt.Sprintf("History (%d shown)", len(entries)))
	if len(entries) == 0 {
		r.Muted("No renders recorded yet.")
		return nil
	}

	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{
			shortID(e.ID),
			e.CreatedAt.Local().Format(time.DateTime),
			e.Source,
			e.Output,
			fmt.Sprintf("%dx%d", e.Columns, e.Rows),
		}
	}
	r.Table([]string{"ID", "Created", "Source", "Output", "Cols x Rows"}, rows)
	return nil
}

func runHistoryShow(cmd *cobra.Command, id string) error {
	cmdCtx := NewCommandContext(cmd)
	store, cleanup, err := openHistoryOrFail(cmd, cmdCtx)
	if err != nil {
		return err
	}
	defer cleanup()

	e, err := store.Get(cmd.Context(), id)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(e)
	}

	r.Header(1, e.ID)
	r.Println(output.FormatKeyValue("Created", e.CreatedAt.Local().Format(time.RFC3339)))
	r.Println(output.FormatKeyValue("Source", e.Source))
	r.Println(output.FormatKeyValue("Output", e.Output))
	r.Println(output.FormatKeyValue("Separator", strconv.Quote(e.Separator)))
	r.Println(output.FormatKeyValue("Columns", strconv.Itoa(e.Columns)))
	r.Println(output.FormatKeyValue("Rows", strconv.Itoa(e.Rows)))
	r.Println(output.FormatKeyValue("Image", fmt.Sprintf("%dx%d px", e.Width, e.Height)))
	r.Println(output.FormatKeyValue("Font Size", strconv.FormatFloat(e.FontSize, 'g', -1, 64)))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
