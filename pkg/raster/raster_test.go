package raster

import (
	"bytes"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/tablesnap/pkg/table"
)

func parse(t *testing.T, text string) *table.Table {
	t.Helper()
	return table.Parse(text, table.ParseOptions{})
}

func TestComputeLayout_Geometry(t *testing.T) {
	tbl := parse(t, "name,qty\nwidget,12\ngizmo,7")

	l, err := ComputeLayout(tbl, 12)
	require.NoError(t, err)

	require.Len(t, l.ColumnWidths, 2)
	assert.Equal(t, 3, l.Rows)
	assert.Equal(t, rowHeight(12), l.RowHeight)

	sum := 0
	for _, w := range l.ColumnWidths {
		assert.Greater(t, w, 2*PaddingX, "every column has text wider than zero")
		sum += w
	}
	assert.Equal(t, sum+GridLine, l.Width)
	assert.Equal(t, 3*l.RowHeight+GridLine, l.Height)
}

func TestComputeLayout_WidestCellWins(t *testing.T) {
	narrow, err := ComputeLayout(parse(t, "a\nb"), 12)
	require.NoError(t, err)
	wide, err := ComputeLayout(parse(t, "a\nbbbbbbbbbbbbbbbb"), 12)
	require.NoError(t, err)

	assert.Greater(t, wide.ColumnWidths[0], narrow.ColumnWidths[0])
}

func TestComputeLayout_RaggedRowsArePadded(t *testing.T) {
	tbl := parse(t, "a\n1,2,3\n4")

	l, err := ComputeLayout(tbl, 12)
	require.NoError(t, err)

	assert.Len(t, l.ColumnWidths, 3)
	assert.Equal(t, 1, tbl.ColumnCount(), "padding is layout only")
	assert.Equal(t, []string{"4"}, tbl.Rows[1].Values)
}

func TestComputeLayout_MonotonicInFontSize(t *testing.T) {
	tbl := parse(t, "id,description,price\n1,A rather long description,9.99\n2,Short,1000000.00\n3,ÄÖÜ ß,0")
	sizes := []float64{6, 8, 10, 11, 12, 14, 16, 20, 24, 32, 48}

	var prev Layout
	for i, size := range sizes {
		l, err := ComputeLayout(tbl, size)
		require.NoError(t, err)
		if i > 0 {
			assert.GreaterOrEqual(t, l.Width, prev.Width, "width at %v", size)
			assert.GreaterOrEqual(t, l.Height, prev.Height, "height at %v", size)
			assert.GreaterOrEqual(t, l.RowHeight, prev.RowHeight, "row height at %v", size)
			for c := range l.ColumnWidths {
				assert.GreaterOrEqual(t, l.ColumnWidths[c], prev.ColumnWidths[c], "column %d at %v", c, size)
			}
		}
		prev = l
	}
}

func TestRender_Deterministic(t *testing.T) {
	tbl := parse(t, "a,b,c\n1,2,3\n4,5,6")

	first := Render(tbl, 14)
	second := Render(tbl, 14)

	assert.Equal(t, first.Bounds(), second.Bounds())
	assert.True(t, bytes.Equal(first.Pix, second.Pix), "pixels differ between identical renders")
}

func TestRender_BoundsMatchLayout(t *testing.T) {
	tbl := parse(t, "a,b,c\n1,2,3\n4,5,6")

	l, err := ComputeLayout(tbl, 12)
	require.NoError(t, err)
	img := Render(tbl, 12)

	assert.Equal(t, l.Width, img.Bounds().Dx())
	assert.Equal(t, l.Height, img.Bounds().Dy())
}

func TestRender_Colors(t *testing.T) {
	tbl := parse(t, "a,b\n1,2")
	img := Render(tbl, 12)
	l, err := ComputeLayout(tbl, 12)
	require.NoError(t, err)

	assert.Equal(t, gridColor, img.RGBAAt(0, 0), "top-left corner is a grid line")
	assert.Equal(t, gridColor, img.RGBAAt(l.Width-1, l.Height-1), "bottom-right corner is a grid line")
	assert.Equal(t, gridColor, img.RGBAAt(2, l.RowHeight), "header separator")
	assert.Equal(t, headerColor, img.RGBAAt(2, 2), "header band")
	assert.Equal(t, backgroundColor, img.RGBAAt(2, l.RowHeight+2), "data row background")
}

func TestRender_DrawsText(t *testing.T) {
	blank := Render(parse(t, "WWWW\n "), 12)
	filled := Render(parse(t, "WWWW\nW"), 12)

	require.Equal(t, blank.Bounds(), filled.Bounds())
	assert.False(t, bytes.Equal(blank.Pix, filled.Pix), "text should change pixels")

	// Text is left-aligned: ink appears right after the left padding.
	bounds := filled.Bounds()
	l, err := ComputeLayout(parse(t, "WWWW\nW"), 12)
	require.NoError(t, err)
	found := false
	for y := l.RowHeight + 1; y < bounds.Max.Y-1 && !found; y++ {
		for x := 1; x < PaddingX+measureW(t, 12); x++ {
			if isInk(filled.RGBAAt(x, y)) {
				found = true
				break
			}
		}
	}
	assert.True(t, found, "expected glyph pixels near the left padding")
}

func TestRender_EmptyTable(t *testing.T) {
	for _, tbl := range []*table.Table{parse(t, ""), {}, nil} {
		img := Render(tbl, 12)
		require.NotNil(t, img)
		assert.Equal(t, GridLine, img.Bounds().Dx())
		assert.Equal(t, rowHeight(12)+GridLine, img.Bounds().Dy())
	}
}

func TestRender_InvalidSizeUsesDefault(t *testing.T) {
	tbl := parse(t, "a,b\n1,2")

	want := Render(tbl, DefaultFontSize)
	tests := []struct {
		name string
		size float64
	}{
		{"zero", 0},
		{"negative", -3},
		{"nan", math.NaN()},
		{"positive infinity", math.Inf(1)},
		{"negative infinity", math.Inf(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(tbl, tt.size)
			assert.Equal(t, want.Bounds(), got.Bounds())
			assert.True(t, bytes.Equal(want.Pix, got.Pix))
		})
	}
}

func TestRender_OversizeIsClamped(t *testing.T) {
	tbl := parse(t, "a,b\n1,2")

	want, err := ComputeLayout(tbl, MaxFontSize)
	require.NoError(t, err)

	for _, size := range []float64{MaxFontSize + 1, 1e6, math.MaxFloat64} {
		l, err := ComputeLayout(tbl, size)
		require.NoError(t, err)
		assert.Equal(t, want, l, "size %v", size)
	}

	img := Render(tbl, 1e6)
	assert.Equal(t, want.Width, img.Bounds().Dx())
	assert.Equal(t, want.Height, img.Bounds().Dy())
}

func TestSnapshot_ProducesPNG(t *testing.T) {
	tbl := parse(t, "a,b,c\n1,2,3")

	data, err := Snapshot(tbl, 12)
	require.NoError(t, err)

	decoded, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, Render(tbl, 12).Bounds(), decoded.Bounds())

	again, err := Snapshot(tbl, 12)
	require.NoError(t, err)
	assert.Equal(t, data, again, "encoding is deterministic")
}

func TestRenderer_FontSize(t *testing.T) {
	r := NewRenderer()
	assert.Equal(t, DefaultFontSize, r.FontSize())

	r.SetFontSize(20)
	assert.Equal(t, 20.0, r.FontSize())

	tbl := parse(t, "a\n1")
	assert.Equal(t, Render(tbl, 20).Pix, r.Render(tbl).Pix)

	r.SetFontSize(-1)
	assert.Equal(t, DefaultFontSize, r.FontSize())

	var zero Renderer
	assert.Equal(t, DefaultFontSize, zero.FontSize())

	data, err := r.Snapshot(tbl)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func measureW(t *testing.T, size float64) int {
	t.Helper()
	f, err := newFaces(size)
	require.NoError(t, err)
	defer f.Close()
	return measure(f.body, "W")
}

func isInk(c color.RGBA) bool {
	return c != backgroundColor && c != gridColor
}
