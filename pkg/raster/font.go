package raster

import (
	"fmt"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Fonts are parsed once; faces are built per render because they are not
// safe for concurrent use.
var (
	regularFont = sync.OnceValues(func() (*opentype.Font, error) { return opentype.Parse(goregular.TTF) })
	boldFont    = sync.OnceValues(func() (*opentype.Font, error) { return opentype.Parse(gobold.TTF) })
)

// faces is the pair of faces a single render draws with.
type faces struct {
	header font.Face
	body   font.Face
}

func newFaces(size float64) (*faces, error) {
	regular, err := regularFont()
	if err != nil {
		return nil, fmt.Errorf("failed to parse regular font: %w", err)
	}
	bold, err := boldFont()
	if err != nil {
		return nil, fmt.Errorf("failed to parse bold font: %w", err)
	}

	opts := &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingNone}
	body, err := opentype.NewFace(regular, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create body face: %w", err)
	}
	header, err := opentype.NewFace(bold, opts)
	if err != nil {
		_ = body.Close()
		return nil, fmt.Errorf("failed to create header face: %w", err)
	}
	return &faces{header: header, body: body}, nil
}

func (f *faces) Close() {
	_ = f.header.Close()
	_ = f.body.Close()
}

// measure returns the pixel width of s as the sum of its glyph advances.
// Kerning is left out so that widths never shrink as the size grows.
func measure(face font.Face, s string) int {
	var width fixed.Int26_6
	for _, r := range s {
		advance, _ := face.GlyphAdvance(r)
		width += advance
	}
	return width.Ceil()
}

// rowHeight is a fixed function of the font size plus vertical padding.
func rowHeight(size float64) int {
	return int(math.Ceil(size*lineHeightFactor)) + 2*PaddingY
}
