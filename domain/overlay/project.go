package overlay

import (
	"image"
	"math"
)

// Placed is an entry mapped to view coordinates.
type Placed struct {
	Entry
	Rect image.Rectangle // view coordinates
}

// transform maps preview space to a view of the given size.
type transform struct {
	sx, sy float64
	viewW  float64
	mirror bool
}

func newTransform(previewW, previewH, viewW, viewH int, mirror bool) transform {
	t := transform{sx: 1, sy: 1, viewW: float64(viewW), mirror: mirror}
	if previewW > 0 && previewH > 0 && viewW > 0 && viewH > 0 {
		t.sx = float64(viewW) / float64(previewW)
		t.sy = float64(viewH) / float64(previewH)
	}
	return t
}

func (t transform) x(px float64) float64 {
	if t.mirror {
		return t.viewW - px*t.sx
	}
	return px * t.sx
}

func (t transform) y(py float64) float64 { return py * t.sy }

// invert maps a view point back to preview space.
func (t transform) invert(vx, vy float64) (float64, float64) {
	if t.mirror {
		vx = t.viewW - vx
	}
	return vx / t.sx, vy / t.sy
}

func (t transform) rect(r image.Rectangle) image.Rectangle {
	x0, x1 := t.x(float64(r.Min.X)), t.x(float64(r.Max.X))
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	return image.Rect(
		int(math.Round(x0)), int(math.Round(t.y(float64(r.Min.Y)))),
		int(math.Round(x1)), int(math.Round(t.y(float64(r.Max.Y)))),
	)
}

// Project maps every entry to a view of viewW x viewH and remembers that size
// for later hit tests.
func (s *Store) Project(viewW, viewH int) []Placed {
	s.mu.Lock()
	s.viewW, s.viewH = viewW, viewH
	t := newTransform(s.previewW, s.previewH, viewW, viewH, s.mirror)
	out := make([]Placed, len(s.entries))
	for i, e := range s.entries {
		out[i] = Placed{Entry: e, Rect: t.rect(e.Bounds)}
	}
	s.mu.Unlock()
	return out
}
