package raster

import (
	"image"

	"github.com/leapstack-labs/tablesnap/pkg/table"
)

// Renderer renders tables at a remembered font size.
// It is not safe for concurrent use while SetFontSize may be called.
type Renderer struct {
	fontSize float64
}

// NewRenderer returns a Renderer set to DefaultFontSize.
func NewRenderer() *Renderer {
	return &Renderer{fontSize: DefaultFontSize}
}

// SetFontSize changes the size used by later Render calls.
// Sizes that are not positive and finite reset it to DefaultFontSize.
func (r *Renderer) SetFontSize(size float64) {
	r.fontSize = normalizeSize(size)
}

// FontSize returns the current font size.
func (r *Renderer) FontSize() float64 {
	if r.fontSize <= 0 {
		return DefaultFontSize
	}
	return r.fontSize
}

// Render draws t at the current font size.
func (r *Renderer) Render(t *table.Table) *image.RGBA {
	return Render(t, r.FontSize())
}

// Snapshot renders t at the current font size and encodes it as PNG.
func (r *Renderer) Snapshot(t *table.Table) ([]byte, error) {
	return Snapshot(t, r.FontSize())
}
