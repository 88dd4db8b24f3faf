package overlay

import "math"

// HitTest maps a tap on the last rendered view back to preview space and
// returns the entry under it. When no entry contains the point the entry with
// the nearest centroid wins. Ties, both among containing entries and among
// equidistant centroids, go to the earliest inserted entry. Before the first
// render the view is assumed to match the preview.
func (s *Store) HitTest(viewX, viewY float64) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) == 0 {
		return Entry{}, false
	}
	t := newTransform(s.previewW, s.previewH, s.viewW, s.viewH, s.mirror)
	if s.viewW == 0 {
		// never rendered: identity scale, mirror around the preview width
		t.viewW = float64(s.previewW)
	}
	px, py := t.invert(viewX, viewY)

	for _, e := range s.entries {
		b := e.Bounds
		if px >= float64(b.Min.X) && px < float64(b.Max.X) && py >= float64(b.Min.Y) && py < float64(b.Max.Y) {
			return e, true
		}
	}
	best, bestDist := 0, math.Inf(1)
	for i, e := range s.entries {
		cx, cy := e.Center()
		d := (cx-px)*(cx-px) + (cy-py)*(cy-py)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return s.entries[best], true
}
