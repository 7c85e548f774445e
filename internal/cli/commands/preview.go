package commands

import (
	"fmt"
	"strconv"

	"github.com/leapstack-labs/tablesnap/internal/cli/output"
	"github.com/leapstack-labs/tablesnap/pkg/table"
	"github.com/spf13/cobra"
)

// PreviewOutput is the JSON form of a parsed table.
type PreviewOutput struct {
	Source    string       `json:"source"`
	Separator string       `json:"separator"`
	Columns   []string     `json:"columns"`
	Rows      []PreviewRow `json:"rows"`
}

// PreviewRow is one data row with its source line.
type PreviewRow struct {
	Line   int      `json:"line"`
	Values []string `json:"values"`
}

// NewPreviewCommand creates the preview command.
func NewPreviewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview <input>",
		Short: "Print the parsed table without rendering",
		Long: `Parse an input with the current separator and cell limit and print the
result. Useful for checking how a file will be split before rendering it.

Output adapts to environment:
  - Terminal: box-drawn table
  - Piped/Scripted: Markdown table

Use --output to override: auto, text, markdown, json`,
		Example: `  # Preview a semicolon separated file
  tablesnap preview --separator ';' data.csv

  # Machine readable
  tablesnap preview data.csv --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(cmd, args[0])
		},
	}
	return cmd
}

func runPreview(cmd *cobra.Command, source string) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	runner := newRunner(cmdCtx, nil)
	tbl, err := runner.Table(cmd.Context(), source, cmdCtx.Options())
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", source, err)
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(previewOutput(source, tbl))
	case output.ModeMarkdown:
		r.Header(1, source)
		r.Println(output.FormatKeyValue("Columns", strconv.Itoa(tbl.ColumnCount())))
		r.Println(output.FormatKeyValue("Rows", strconv.Itoa(tbl.RowCount())))
		r.Println("")
		r.Table(tbl.Header(), rowValues(tbl))
	default:
		r.Header(1, source)
		r.Table(tbl.Header(), rowValues(tbl))
		r.Muted(fmt.Sprintf("%d columns, %d rows", tbl.ColumnCount(), tbl.RowCount()))
	}
	return nil
}

func previewOutput(source string, tbl *table.Table) PreviewOutput {
	out := PreviewOutput{
		Source:    source,
		Separator: tbl.Separator,
		Columns:   tbl.Header(),
		Rows:      make([]PreviewRow, len(tbl.Rows)),
	}
	if out.Columns == nil {
		out.Columns = []string{}
	}
	for i, row := range tbl.Rows {
		out.Rows[i] = PreviewRow{Line: row.Line, Values: row.Values}
	}
	return out
}

func rowValues(tbl *table.Table) [][]string {
	rows := make([][]string, len(tbl.Rows))
	for i, row := range tbl.Rows {
		rows[i] = row.Values
	}
	return rows
}
