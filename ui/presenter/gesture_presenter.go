package presenter

import (
	"log/slog"

	"github.com/soocke/barcode-tracker-go/domain/overlay"
	"github.com/soocke/barcode-tracker-go/ui/model"
)

// HitTester resolves a view position to an overlay entry.
type HitTester interface {
	HitTest(viewX, viewY float64) (overlay.Entry, bool)
}

// Zoomer applies a pinch scale factor and returns the resulting zoom index.
type Zoomer interface {
	DoZoom(scale float64) int
}

// GesturePresenter turns taps into selections and pinches into zoom.
type GesturePresenter struct {
	hits      HitTester
	zoom      Zoomer
	selection *model.SelectionModel
	onResult  func(overlay.Entry)
	logger    *slog.Logger
}

// NewGesturePresenter returns a GesturePresenter. onResult is called with
// every selected entry and may be nil.
func NewGesturePresenter(hits HitTester, zoom Zoomer, selection *model.SelectionModel, onResult func(overlay.Entry), logger *slog.Logger) *GesturePresenter {
	if logger == nil {
		logger = slog.Default()
	}
	return &GesturePresenter{hits: hits, zoom: zoom, selection: selection, onResult: onResult, logger: logger}
}

// Tap selects the entry at the view position. It reports whether anything
// was selected.
func (p *GesturePresenter) Tap(viewX, viewY float64) bool {
	if p == nil || p.hits == nil {
		return false
	}
	e, ok := p.hits.HitTest(viewX, viewY)
	if !ok {
		p.logger.Debug("tap hit nothing", "x", viewX, "y", viewY)
		return false
	}
	p.selection.Select(e)
	p.logger.Info("selected", "id", e.ID, "label", e.Label)
	if p.onResult != nil {
		p.onResult(e)
	}
	return true
}

// Scale forwards a pinch factor to the session and returns the new zoom index.
func (p *GesturePresenter) Scale(factor float64) int {
	if p == nil || p.zoom == nil {
		return 0
	}
	return p.zoom.DoZoom(factor)
}
