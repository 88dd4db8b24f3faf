package presenter

import (
	"log/slog"

	"github.com/soocke/barcode-tracker-go/domain/capture"
	"github.com/soocke/barcode-tracker-go/ui/model"
)

// CaptureSession is the part of capture.Session the preview drives.
type CaptureSession interface {
	Start() error
	Stop() error
	Release() error
	State() capture.State
	Geometry() capture.ResolvedGeometry
	Facing() capture.Facing
}

// OverlayControl receives camera info on every start.
type OverlayControl interface {
	SetCameraInfo(previewW, previewH int, facing capture.Facing)
}

// TrackerReset forgets tracked objects and removes their overlay entries.
// Only called while no worker runs.
type TrackerReset interface{ Reset() }

// PreviewPresenter starts capture once both a start was requested and a
// render surface exists, whichever comes second.
type PreviewPresenter struct {
	model   *model.PreviewModel
	session CaptureSession
	overlay OverlayControl
	tracker TrackerReset
	logger  *slog.Logger
}

// NewPreviewPresenter returns a PreviewPresenter. overlay and tracker may be nil.
func NewPreviewPresenter(m *model.PreviewModel, overlay OverlayControl, tracker TrackerReset, logger *slog.Logger) *PreviewPresenter {
	if logger == nil {
		logger = slog.Default()
	}
	return &PreviewPresenter{model: m, overlay: overlay, tracker: tracker, logger: logger}
}

// Start records session and starts it if the surface is ready. A nil
// session stops the current one.
func (p *PreviewPresenter) Start(session CaptureSession) error {
	if p == nil || p.model == nil {
		return nil
	}
	if session == nil {
		p.Stop()
	}
	p.session = session
	if session == nil {
		return nil
	}
	p.model.SetRequested(true)
	return p.startIfReady()
}

// Stop stops capture. The session stays attached for a later start.
func (p *PreviewPresenter) Stop() {
	if p == nil || p.session == nil {
		return
	}
	if err := p.session.Stop(); err != nil {
		p.logger.Warn("stop capture", "error", err)
	}
}

// Release stops and releases the session and detaches it.
func (p *PreviewPresenter) Release() {
	if p == nil || p.session == nil {
		return
	}
	p.Stop()
	if err := p.session.Release(); err != nil {
		p.logger.Warn("release capture", "error", err)
	}
	p.session = nil
	if p.model != nil {
		p.model.SetRequested(false)
	}
}

// SurfaceCreated marks the surface available and starts pending capture.
func (p *PreviewPresenter) SurfaceCreated() {
	if p == nil || p.model == nil {
		return
	}
	p.model.SetSurfaceAvailable(true)
	if err := p.startIfReady(); err != nil {
		p.logger.Error("could not start camera source", "error", err)
	}
}

// SurfaceDestroyed marks the surface gone. Running capture is stopped and
// re-requested so it resumes with the next surface.
func (p *PreviewPresenter) SurfaceDestroyed() {
	if p == nil || p.model == nil {
		return
	}
	p.model.SetSurfaceAvailable(false)
	if p.session != nil && p.session.State() == capture.StateRunning {
		p.Stop()
		p.model.SetRequested(true)
	}
}

func (p *PreviewPresenter) startIfReady() error {
	if !p.model.Ready() || p.session == nil {
		return nil
	}
	if p.session.State() == capture.StateIdle && p.tracker != nil {
		p.tracker.Reset()
	}
	if err := p.session.Start(); err != nil {
		return err
	}
	if p.overlay != nil {
		g := p.session.Geometry()
		lo, hi := min(g.Preview.W, g.Preview.H), max(g.Preview.W, g.Preview.H)
		if g.DisplayDegrees%180 != 0 {
			p.overlay.SetCameraInfo(lo, hi, p.session.Facing())
		} else {
			p.overlay.SetCameraInfo(hi, lo, p.session.Facing())
		}
	}
	p.model.SetRequested(false)
	return nil
}
