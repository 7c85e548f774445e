package table

import (
	"log/slog"
	"strings"

	"github.com/rivo/uniseg"
)

// ParseOptions controls how text is split into a Table.
type ParseOptions struct {
	// Separator splits a line into cells. Empty means DefaultSeparator.
	Separator string
	// MaxCellLength caps data cells, counted in grapheme clusters.
	// Zero or negative disables truncation.
	MaxCellLength int
	// Logger receives truncation notices (optional, uses discard if nil).
	Logger *slog.Logger
}

// Parse splits text into a header and data rows.
//
// Blank lines are dropped before anything else, so they never show up as rows
// and do not count toward Row.Line. Header positions holding an empty token are
// removed from the header and from every data row. Parse never fails.
func Parse(text string, opts ParseOptions) *Table {
	sep := opts.Separator
	if sep == "" {
		sep = DefaultSeparator
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	t := &Table{Separator: sep}

	lines := splitLines(text)
	if len(lines) == 0 {
		return t
	}

	ignored := make(map[int]struct{})
	for i, token := range strings.Split(lines[0], sep) {
		if token == "" {
			ignored[i] = struct{}{}
			continue
		}
		t.Columns = append(t.Columns, ColumnName{Name: token})
	}

	for n, line := range lines[1:] {
		tokens := strings.Split(line, sep)
		values := make([]string, 0, len(tokens))
		for i, token := range tokens {
			if _, skip := ignored[i]; skip {
				continue
			}
			if cut, ok := truncate(token, opts.MaxCellLength); ok {
				logger.Info("cell truncated",
					slog.Int("line", n+2),
					slog.Int("column", i),
					slog.String("original", token))
				token = cut
			}
			values = append(values, token)
		}
		t.Rows = append(t.Rows, Row{Values: values, Line: n + 2})
	}

	return t
}

// splitLines splits on CR and LF as a character set and drops empty lines.
func splitLines(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == '\r' || r == '\n'
	})
}

// truncate cuts s to limit grapheme clusters plus the marker. It reports false
// when s is short enough or limit disables truncation.
func truncate(s string, limit int) (string, bool) {
	if limit <= 0 || uniseg.GraphemeClusterCount(s) <= limit {
		return s, false
	}

	var b strings.Builder
	g := uniseg.NewGraphemes(s)
	for count := 0; count < limit && g.Next(); count++ {
		b.WriteString(g.Str())
	}
	b.WriteString(TruncationMarker)
	return b.String(), true
}
