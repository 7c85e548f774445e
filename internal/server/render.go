package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/leapstack-labs/tablesnap/internal/state"
	"github.com/leapstack-labs/tablesnap/pkg/raster"
	"github.com/leapstack-labs/tablesnap/pkg/table"
)

// renderParams are the per-request overrides read from the query string.
type renderParams struct {
	separator     string
	maxCellLength int
	fontSize      float64
}

func (s *Server) params(r *http.Request) (renderParams, error) {
	p := renderParams{
		separator:     s.cfg.Separator,
		maxCellLength: s.cfg.MaxCellLength,
		fontSize:      s.cfg.FontSize,
	}
	q := r.URL.Query()
	if v := q.Get("separator"); v != "" {
		p.separator = v
	}
	if v := q.Get("max_cell_length"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return p, fmt.Errorf("invalid max_cell_length %q", v)
		}
		p.maxCellLength = n
	}
	if v := q.Get("font_size"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || !(f > 0) || f > raster.MaxFontSize {
			return p, fmt.Errorf("invalid font_size %q", v)
		}
		p.fontSize = f
	}
	return p, nil
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	p, err := s.params(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}
	if !utf8.Valid(body) {
		http.Error(w, "request body is not valid UTF-8", http.StatusBadRequest)
		return
	}

	tbl := table.Parse(string(body), table.ParseOptions{
		Separator:     p.separator,
		MaxCellLength: p.maxCellLength,
		Logger:        s.logger,
	})
	img := raster.Render(tbl, p.fontSize)
	data, err := raster.EncodePNG(img)
	if err != nil {
		s.logger.Error("encode failed", slog.Any("error", err))
		http.Error(w, "failed to encode image", http.StatusInternalServerError)
		return
	}

	if s.cfg.History != nil {
		_, err := s.cfg.History.Record(r.Context(), state.Entry{
			Source:    "http:" + r.RemoteAddr,
			Output:    "-",
			Separator: tbl.Separator,
			Columns:   tbl.ColumnCount(),
			Rows:      tbl.RowCount(),
			Width:     img.Bounds().Dx(),
			Height:    img.Bounds().Dy(),
			FontSize:  p.fontSize,
		})
		if err != nil {
			s.logger.Warn("failed to record render", slog.Any("error", err))
		}
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("X-Table-Columns", strconv.Itoa(tbl.ColumnCount()))
	w.Header().Set("X-Table-Rows", strconv.Itoa(tbl.RowCount()))
	_, _ = w.Write(data)
}
