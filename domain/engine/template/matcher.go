// Package template is a reference detection engine: it finds fixed image
// patches in the luma plane of each frame by normalized cross-correlation.
// Every template is one stable identity.
package template

import (
	"errors"
	"fmt"
	"image"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/soocke/barcode-tracker-go/domain/detect"
)

// Template is one patch to look for.
type Template struct {
	ID    int
	Label string
	Image image.Image
}

// Options tunes the search.
type Options struct {
	Threshold float64   // minimum score for a detection (default 0.80)
	Stride    int       // coarse scan step in pixels (default 2)
	Refine    bool      // rescan around the coarse winner at full resolution
	Scales    []float64 // template scale factors to try (default 1.0)
}

func (o Options) withDefaults() Options {
	if o.Threshold <= 0 {
		o.Threshold = 0.80
	}
	if o.Stride <= 0 {
		o.Stride = 2
	}
	if len(o.Scales) == 0 {
		o.Scales = []float64{1}
	}
	return o
}

type entry struct {
	id      int
	label   string
	patches []*patch // one per usable scale
}

// Matcher scans frames for its templates. Detect must not be called
// concurrently; it reuses per-frame scratch buffers.
type Matcher struct {
	opts    Options
	entries []entry
	pre     lumaPrecomp
}

// New prepares every template at every scale.
func New(templates []Template, opts Options) (*Matcher, error) {
	opts = opts.withDefaults()
	m := &Matcher{opts: opts}
	seen := make(map[int]bool, len(templates))
	for _, t := range templates {
		if t.ID < 0 {
			return nil, fmt.Errorf("template %q: negative id %d", t.Label, t.ID)
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("template %q: duplicate id %d", t.Label, t.ID)
		}
		seen[t.ID] = true
		if t.Image == nil {
			return nil, fmt.Errorf("template %d: no image", t.ID)
		}
		base := patchFromImage(t.Image)
		if base == nil {
			return nil, fmt.Errorf("template %d: empty image", t.ID)
		}
		e := entry{id: t.ID, label: t.Label}
		for _, f := range opts.Scales {
			if p := base.scaled(f); p != nil {
				e.patches = append(e.patches, p)
			}
		}
		if len(e.patches) == 0 {
			return nil, fmt.Errorf("template %d: no usable scale", t.ID)
		}
		m.entries = append(m.entries, e)
	}
	return m, nil
}

// Detect returns one detection per template whose best score reaches the
// threshold. Templates are searched in parallel; a panic in a search is
// returned as an error.
func (m *Matcher) Detect(f detect.Frame) ([]detect.Detection, error) {
	plane := f.Luma()
	if plane == nil {
		return nil, errors.New("template: frame shorter than its luma plane")
	}
	m.pre.build(plane, f.Width, f.Height)

	found := make([]*detect.Detection, len(m.entries))
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i := range m.entries {
		e := &m.entries[i]
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("template %d: search panicked: %v", e.id, r)
				}
			}()
			best, bestPatch := match{Score: -1}, (*patch)(nil)
			for _, p := range e.patches {
				if r := p.best(&m.pre, m.opts.Stride, m.opts.Refine); r.Score > best.Score {
					best, bestPatch = r, p
				}
			}
			if bestPatch == nil || best.Score < m.opts.Threshold {
				return nil
			}
			found[i] = &detect.Detection{ID: e.id, Payload: detect.Payload{
				Bounds: image.Rect(best.X, best.Y, best.X+bestPatch.W, best.Y+bestPatch.H),
				Label:  e.label,
				Score:  best.Score,
			}}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []detect.Detection
	for _, d := range found {
		if d != nil {
			out = append(out, *d)
		}
	}
	return out, nil
}

// Len returns the number of templates.
func (m *Matcher) Len() int { return len(m.entries) }
