package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/leapstack-labs/tablesnap/internal/cli/config"
	"github.com/leapstack-labs/tablesnap/internal/cli/output"
	"github.com/leapstack-labs/tablesnap/internal/resource"
	"github.com/leapstack-labs/tablesnap/internal/snap"
	"github.com/leapstack-labs/tablesnap/internal/watch"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// RenderOptions holds options for the render command.
type RenderOptions struct {
	Out   string
	Watch bool
}

// renderOutcome is one job's result as reported to the user.
type renderOutcome struct {
	Source  string `json:"source"`
	Output  string `json:"output"`
	Columns int    `json:"columns,omitempty"`
	Rows    int    `json:"rows,omitempty"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand() *cobra.Command {
	opts := &RenderOptions{}

	cmd := &cobra.Command{
		Use:   "render <input>...",
		Short: "Render CSV files or URLs to PNG images",
		Long: `Render one or more delimiter-separated inputs to PNG images.

Inputs are local paths or http(s) URLs. Each input is written to
<out-dir>/<name>.png unless --out names the destination of a single input.
Inputs are rendered in parallel, up to --jobs at a time.`,
		Example: `  # Render a file next to the current directory
  tablesnap render data.csv

  # Semicolon separated, long cells cut to 20 characters
  tablesnap render --separator ';' --max-cell-length 20 report.csv -o report.png

  # Render a remote file and several local ones into images/
  tablesnap render https://example.com/sales.csv a.csv b.csv --out-dir images

  # Re-render whenever the input changes
  tablesnap render data.csv --watch`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "Output file (single input only)")
	cmd.Flags().String("out-dir", config.DefaultOutDir, "Directory for rendered images")
	cmd.Flags().IntP("jobs", "j", config.DefaultJobs, "Number of inputs rendered in parallel")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-render local inputs when they change")

	return cmd
}

func runRender(cmd *cobra.Command, args []string, opts *RenderOptions) error {
	if opts.Out != "" && len(args) != 1 {
		return fmt.Errorf("--out requires exactly one input, got %d", len(args))
	}

	cmdCtx := NewCommandContext(cmd)
	ctx := cmd.Context()

	history, closeHistory, err := cmdCtx.OpenHistory(ctx)
	if err != nil {
		cmdCtx.Logger.Warn("history disabled", slog.Any("error", err))
		history, closeHistory = nil, func() {}
	}
	defer closeHistory()

	runner := newRunner(cmdCtx, history)
	jobs := buildJobs(args, opts.Out, cmdCtx.Cfg.OutDir)

	outcomes := renderAll(ctx, runner, jobs, cmdCtx.Options(), cmdCtx.Cfg.Jobs)
	if err := reportRender(cmdCtx.Renderer, outcomes); err != nil {
		return err
	}

	if opts.Watch {
		return watchRender(ctx, cmdCtx, runner, jobs)
	}

	var failed int
	for _, o := range outcomes {
		if o.Error != "" {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed to render", failed, len(outcomes))
	}
	return nil
}

func buildJobs(sources []string, out, outDir string) []snap.Job {
	jobs := make([]snap.Job, len(sources))
	for i, src := range sources {
		dest := out
		if dest == "" {
			dest = snap.OutputPath(src, outDir)
		}
		jobs[i] = snap.Job{Source: src, Output: dest}
	}
	return jobs
}

// renderAll runs jobs with at most limit in flight. One failure does not
// stop the others.
func renderAll(ctx context.Context, runner *snap.Runner, jobs []snap.Job, opts snap.Options, limit int) []renderOutcome {
	outcomes := make([]renderOutcome, len(jobs))

	var g errgroup.Group
	g.SetLimit(max(limit, 1))
	for i, job := range jobs {
		g.Go(func() error {
			outcomes[i] = runJob(ctx, runner, job, opts)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func runJob(ctx context.Context, runner *snap.Runner, job snap.Job, opts snap.Options) renderOutcome {
	o := renderOutcome{Source: job.Source, Output: job.Output}
	res, err := runner.Run(ctx, job, opts)
	if err != nil {
		o.Error = err.Error()
		return o
	}
	o.Columns, o.Rows = res.Columns, res.Rows
	o.Width, o.Height = res.Width, res.Height
	if res.Entry != nil {
		o.ID = res.Entry.ID
	}
	return o
}

func reportRender(r *output.Renderer, outcomes []renderOutcome) error {
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(outcomes)
	case output.ModeMarkdown:
		rows := make([][]string, len(outcomes))
		for i, o := range outcomes {
			status := "ok"
			if o.Error != "" {
				status = o.Error
			}
			rows[i] = []string{o.Source, o.Output, size(o), status}
		}
		r.Table([]string{"Source", "Output", "Size", "Status"}, rows)
	default:
		for _, o := range outcomes {
			if o.Error != "" {
				r.StatusLine(o.Source, "failed", o.Error)
				continue
			}
			r.StatusLine(fmt.Sprintf("%s → %s", o.Source, o.Output), "success", size(o))
		}
	}
	return nil
}

func size(o renderOutcome) string {
	if o.Error != "" {
		return ""
	}
	return strconv.Itoa(o.Width) + "x" + strconv.Itoa(o.Height)
}

// watchRender re-renders local jobs on change until interrupted.
func watchRender(ctx context.Context, cmdCtx *CommandContext, runner *snap.Runner, jobs []snap.Job) error {
	byPath := make(map[string]snap.Job)
	var paths []string
	for _, job := range jobs {
		if resource.IsURL(job.Source) {
			continue
		}
		abs, err := filepath.Abs(job.Source)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", job.Source, err)
		}
		byPath[abs] = job
		paths = append(paths, abs)
	}
	if len(paths) == 0 {
		return errors.New("--watch requires at least one local input")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeText {
		r.Muted(fmt.Sprintf("Watching %d file(s), press Ctrl+C to stop", len(paths)))
	}

	opts := cmdCtx.Options()
	return watch.Files(ctx, paths, func(path string) error {
		job, ok := byPath[path]
		if !ok {
			return nil
		}
		o := runJob(ctx, runner, job, opts)
		if err := reportRender(r, []renderOutcome{o}); err != nil {
			return err
		}
		if o.Error != "" {
			return errors.New(o.Error)
		}
		return nil
	}, watch.Options{Logger: cmdCtx.Logger})
}
