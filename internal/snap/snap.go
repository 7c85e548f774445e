// Package snap wires the collaborators around the table core: it loads a
// source, parses and renders it, writes the PNG and records the result.
package snap

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/tablesnap/internal/resource"
	"github.com/leapstack-labs/tablesnap/internal/state"
	"github.com/leapstack-labs/tablesnap/pkg/raster"
	"github.com/leapstack-labs/tablesnap/pkg/table"
)

// fallbackName is used when no file name can be derived from a source.
const fallbackName = "table"

// Options control parsing and rendering of a single source.
type Options struct {
	Separator     string
	MaxCellLength int
	FontSize      float64
}

// Job is one source to render into one destination.
type Job struct {
	Source string
	Output string
}

// Result describes a completed job.
type Result struct {
	Job     Job
	Columns int
	Rows    int
	Width   int
	Height  int
	Bytes   int
	Entry   *state.Entry
}

// Runner executes jobs. History is optional.
type Runner struct {
	fetcher *resource.Fetcher
	history state.Store
	logger  *slog.Logger
}

// NewRunner creates a Runner. A nil fetcher uses resource defaults and a nil
// logger discards output.
func NewRunner(fetcher *resource.Fetcher, history state.Store, logger *slog.Logger) *Runner {
	if fetcher == nil {
		fetcher = &resource.Fetcher{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{fetcher: fetcher, history: history, logger: logger}
}

// Table loads source and parses it.
func (r *Runner) Table(ctx context.Context, source string, opts Options) (*table.Table, error) {
	text, err := resource.Load(ctx, r.fetcher, source)
	if err != nil {
		return nil, err
	}
	return table.Parse(text, table.ParseOptions{
		Separator:     opts.Separator,
		MaxCellLength: opts.MaxCellLength,
		Logger:        r.logger.With(slog.String("source", source)),
	}), nil
}

// Run loads, parses, renders and writes one job.
func (r *Runner) Run(ctx context.Context, job Job, opts Options) (*Result, error) {
	tbl, err := r.Table(ctx, job.Source, opts)
	if err != nil {
		return nil, err
	}

	img := raster.Render(tbl, opts.FontSize)
	data, err := raster.EncodePNG(img)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", job.Source, err)
	}
	if err := resource.WriteFile(job.Output, data); err != nil {
		return nil, err
	}

	res := &Result{
		Job:     job,
		Columns: tbl.ColumnCount(),
		Rows:    tbl.RowCount(),
		Width:   img.Bounds().Dx(),
		Height:  img.Bounds().Dy(),
		Bytes:   len(data),
	}
	r.logger.Debug("rendered table",
		slog.String("source", job.Source),
		slog.String("output", job.Output),
		slog.Int("columns", res.Columns),
		slog.Int("rows", res.Rows))

	if r.history != nil {
		fontSize := opts.FontSize
		if fontSize <= 0 {
			fontSize = raster.DefaultFontSize
		}
		entry, err := r.history.Record(ctx, state.Entry{
			Source:    job.Source,
			Output:    job.Output,
			Separator: tbl.Separator,
			Columns:   res.Columns,
			Rows:      res.Rows,
			Width:     res.Width,
			Height:    res.Height,
			FontSize:  fontSize,
		})
		if err != nil {
			// The image is already on disk; history is best effort.
			r.logger.Warn("failed to record render", slog.String("source", job.Source), slog.Any("error", err))
		} else {
			res.Entry = entry
		}
	}

	return res, nil
}

// OutputPath derives "<outDir>/<name>.png" from a local path or URL.
func OutputPath(source, outDir string) string {
	if outDir == "" {
		outDir = "."
	}
	return filepath.Join(outDir, baseName(source)+".png")
}

func baseName(source string) string {
	var name string
	if resource.IsURL(source) {
		if u, err := url.Parse(source); err == nil {
			name = path.Base(u.Path)
		}
	} else {
		name = filepath.Base(source)
	}
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if name == "" || name == "." || name == "/" {
		return fallbackName
	}
	return name
}
