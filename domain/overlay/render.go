package overlay

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// StrokeWidth is the outline thickness in view pixels.
const StrokeWidth = 4

var palette = []color.RGBA{
	{R: 0, G: 0, B: 255, A: 255},   // blue
	{R: 0, G: 255, B: 255, A: 255}, // cyan
	{R: 0, G: 255, B: 0, A: 255},   // green
}

// ColorFor returns the outline colour used for an identity.
func ColorFor(id int) color.RGBA {
	if id < 0 {
		id = -id
	}
	return palette[id%len(palette)]
}

// Render projects the entries onto dst's bounds and draws each as an outlined
// rectangle with its label on the bottom edge. It returns the number
// of entries drawn.
func (s *Store) Render(dst *image.RGBA) int {
	b := dst.Bounds()
	placed := s.Project(b.Dx(), b.Dy())
	face := basicfont.Face7x13
	for _, p := range placed {
		r := p.Rect.Add(b.Min)
		c := image.NewUniform(ColorFor(p.ID))
		strokeRect(dst, r, c)
		if p.Label == "" {
			continue
		}
		d := font.Drawer{
			Dst:  dst,
			Src:  c,
			Face: face,
			Dot:  fixed.P(r.Min.X+StrokeWidth, r.Max.Y-StrokeWidth),
		}
		d.DrawString(p.Label)
	}
	return len(placed)
}

func strokeRect(dst draw.Image, r image.Rectangle, src image.Image) {
	w := StrokeWidth
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+w),
		image.Rect(r.Min.X, r.Max.Y-w, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+w, r.Max.Y),
		image.Rect(r.Max.X-w, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(dst, e.Intersect(dst.Bounds()), src, image.Point{}, draw.Src)
	}
}
