// Package raster draws a parsed table as a PNG-ready image: a grid with a
// shaded header row and left-aligned cell text.
//
// Render is a pure function of the table and font size. Renderer wraps it for
// callers that want to set the font size once and render many tables.
package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/leapstack-labs/tablesnap/pkg/table"
)

// Layout constants, in pixels unless noted.
const (
	DefaultFontSize  = 12.0
	MaxFontSize      = 200.0
	PaddingX         = 6
	PaddingY         = 4
	GridLine         = 1
	lineHeightFactor = 1.4
)

var (
	backgroundColor = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	headerColor     = color.RGBA{R: 0xee, G: 0xf1, B: 0xf5, A: 0xff}
	gridColor       = color.RGBA{R: 0x9a, G: 0xa0, B: 0xa6, A: 0xff}
	textColor       = color.RGBA{R: 0x11, G: 0x11, B: 0x11, A: 0xff}
)

// Layout is the computed geometry of a rendered table.
type Layout struct {
	FontSize     float64
	ColumnWidths []int
	RowHeight    int
	Rows         int // header plus data rows
	Width        int
	Height       int
}

// ComputeLayout measures t at fontSize without drawing anything.
func ComputeLayout(t *table.Table, fontSize float64) (Layout, error) {
	size := normalizeSize(fontSize)
	f, err := newFaces(size)
	if err != nil {
		return Layout{}, err
	}
	defer f.Close()
	return computeLayout(t, size, f), nil
}

func computeLayout(t *table.Table, size float64, f *faces) Layout {
	cols := t.Width()
	widths := make([]int, cols)
	header := t.Header()
	for c := 0; c < cols; c++ {
		w := 0
		if c < len(header) {
			w = measure(f.header, header[c])
		}
		for r := 0; r < t.RowCount(); r++ {
			if cw := measure(f.body, t.Cell(r, c)); cw > w {
				w = cw
			}
		}
		widths[c] = w + 2*PaddingX
	}

	l := Layout{
		FontSize:     size,
		ColumnWidths: widths,
		RowHeight:    rowHeight(size),
		Rows:         1 + t.RowCount(),
	}
	for _, w := range widths {
		l.Width += w
	}
	l.Width += GridLine
	l.Height = l.Rows*l.RowHeight + GridLine
	return l
}

// Render draws t at fontSize. A size that is not a positive finite number
// falls back to DefaultFontSize and sizes above MaxFontSize are clamped.
// Render does not fail for any table, including an empty one.
func Render(t *table.Table, fontSize float64) *image.RGBA {
	size := normalizeSize(fontSize)
	f, err := newFaces(size)
	if err != nil {
		// The embedded fonts are fixed at build time.
		panic(fmt.Sprintf("raster: %v", err))
	}
	defer f.Close()

	l := computeLayout(t, size, f)
	img := image.NewRGBA(image.Rect(0, 0, l.Width, l.Height))

	draw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(0, 0, l.Width, l.RowHeight), image.NewUniform(headerColor), image.Point{}, draw.Src)
	drawGrid(img, l)

	header := t.Header()
	x := 0
	for c, w := range l.ColumnWidths {
		if c < len(header) {
			drawCell(img, f.header, header[c], image.Rect(x, 0, x+w, l.RowHeight))
		}
		for r := 0; r < t.RowCount(); r++ {
			top := (r + 1) * l.RowHeight
			drawCell(img, f.body, t.Cell(r, c), image.Rect(x, top, x+w, top+l.RowHeight))
		}
		x += w
	}

	return img
}

func drawGrid(img *image.RGBA, l Layout) {
	grid := image.NewUniform(gridColor)
	for r := 0; r <= l.Rows; r++ {
		y := r * l.RowHeight
		draw.Draw(img, image.Rect(0, y, l.Width, y+GridLine), grid, image.Point{}, draw.Src)
	}
	x := 0
	for c := 0; c <= len(l.ColumnWidths); c++ {
		draw.Draw(img, image.Rect(x, 0, x+GridLine, l.Height), grid, image.Point{}, draw.Src)
		if c < len(l.ColumnWidths) {
			x += l.ColumnWidths[c]
		}
	}
}

// drawCell writes s left-aligned and vertically centered inside cell,
// clipped to the cell's interior.
func drawCell(img *image.RGBA, face font.Face, s string, cell image.Rectangle) {
	if s == "" {
		return
	}
	inner := image.Rect(cell.Min.X+GridLine, cell.Min.Y+GridLine, cell.Max.X, cell.Max.Y)
	dst, ok := img.SubImage(inner).(*image.RGBA)
	if !ok || dst.Bounds().Empty() {
		return
	}

	m := face.Metrics()
	baseline := cell.Min.Y + (cell.Dy()+m.Ascent.Ceil()-m.Descent.Ceil())/2
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(textColor),
		Face: face,
		Dot:  fixed.P(cell.Min.X+PaddingX, baseline),
	}
	d.DrawString(s)
}

// EncodePNG encodes img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Snapshot renders t and encodes the result as PNG.
func Snapshot(t *table.Table, fontSize float64) ([]byte, error) {
	return EncodePNG(Render(t, fontSize))
}

func normalizeSize(size float64) float64 {
	if !(size > 0) || math.IsInf(size, 0) {
		return DefaultFontSize
	}
	return min(size, MaxFontSize)
}
