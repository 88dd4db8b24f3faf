package presenter

import (
	"image"
	"sync/atomic"

	"github.com/soocke/barcode-tracker-go/domain/capture"
	"github.com/soocke/barcode-tracker-go/domain/engine"
	"github.com/soocke/barcode-tracker-go/ui/images"
)

// FrameSource hands out a copy of the newest captured frame.
type FrameSource interface {
	Latest(dst []byte) ([]byte, engine.FrameInfo, bool)
}

// GeometrySource reports how frames should be oriented for display.
type GeometrySource interface {
	Geometry() capture.ResolvedGeometry
	Facing() capture.Facing
}

// OverlayRenderer draws overlay entries onto a rendered preview.
type OverlayRenderer interface {
	Render(dst *image.RGBA) int
}

// PreviewView shows the composed preview and reports the space available for it.
type PreviewView interface {
	ShowPreview(img image.Image)
	PreviewBounds() (w, h int)
}

// FramePresenter composes the newest frame and the overlay into the preview.
// A redraw happens when a new frame arrived or the overlay was invalidated.
type FramePresenter struct {
	src     FrameSource
	geom    GeometrySource
	overlay OverlayRenderer
	view    PreviewView

	dirty  atomic.Bool
	lastID uint64
	shownW int
	shownH int
	buf    []byte
	rgba   *image.RGBA
}

// NewFramePresenter returns a FramePresenter.
func NewFramePresenter(src FrameSource, geom GeometrySource, ov OverlayRenderer, view PreviewView) *FramePresenter {
	return &FramePresenter{src: src, geom: geom, overlay: ov, view: view}
}

// Invalidate requests a redraw on the next tick. Safe from any goroutine.
func (p *FramePresenter) Invalidate() {
	if p != nil {
		p.dirty.Store(true)
	}
}

// Tick redraws the preview if needed and reports whether it did.
func (p *FramePresenter) Tick() bool {
	if p == nil || p.src == nil || p.view == nil {
		return false
	}
	data, info, ok := p.src.Latest(p.buf)
	if !ok {
		return false
	}
	p.buf = data
	dirty := p.dirty.Swap(false)
	if info.ID == p.lastID && !dirty {
		return false
	}
	p.lastID = info.ID

	mirror, degrees := false, 0
	if p.geom != nil {
		mirror = p.geom.Facing() == capture.FacingFront
		degrees = p.geom.Geometry().DisplayDegrees
	}
	p.rgba = images.FrameToRGBA(p.rgba, data, info.Width, info.Height, info.Format, mirror)
	if p.rgba == nil {
		return false
	}
	w, h := p.view.PreviewBounds()
	img, _ := images.ScaleToFit(images.Rotate(p.rgba, degrees), w, h).(*image.RGBA)
	if img == nil {
		return false
	}
	if img == p.rgba && p.overlay != nil {
		// keep the conversion buffer clean for the next frame
		img = cloneRGBA(img)
	}
	if p.overlay != nil {
		p.overlay.Render(img)
	}
	p.view.ShowPreview(img)
	p.shownW, p.shownH = img.Bounds().Dx(), img.Bounds().Dy()
	return true
}

// ShownSize returns the size of the last preview handed to the view, which
// is the coordinate space of taps on it.
func (p *FramePresenter) ShownSize() (w, h int) {
	if p == nil {
		return 0, 0
	}
	return p.shownW, p.shownH
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}
