package app

import (
	"fmt"
	"log/slog"
	"time"

	. "modernc.org/tk9.0"

	"github.com/soocke/barcode-tracker-go/config"
	"github.com/soocke/barcode-tracker-go/debug"
	"github.com/soocke/barcode-tracker-go/domain/capture"
	"github.com/soocke/barcode-tracker-go/domain/overlay"
	"github.com/soocke/barcode-tracker-go/ui/presenter"
	"github.com/soocke/barcode-tracker-go/ui/view"
)

const (
	tick = 50 * time.Millisecond

	zoomInFactor  = 1.25
	zoomOutFactor = 0.8
)

type app struct {
	title    string
	width    int
	height   int
	logger   *slog.Logger
	c        *AppContainer
	afterID  string
	stopLogs []func()
}

// NewApp builds the pipeline for cfg and sizes the main window.
func NewApp(title string, width, height int, cfg *config.Config, cfgPath string, logger *slog.Logger) (*app, error) {
	a := &app{title: title, width: width, height: height, logger: logger}
	c, err := BuildContainer(cfg, cfgPath, logger, a.onResult)
	if err != nil {
		return nil, err
	}
	a.c = c

	App.WmTitle(title)
	WmProtocol(App, "WM_DELETE_WINDOW", a.exitHandler)
	WmGeometry(App, fmt.Sprintf("%dx%d+100+100", width, height))
	return a, nil
}

// Start builds the view, starts capture and enters the Tk event loop.
func (a *app) Start() {
	c := a.c
	handlers := view.Handlers{
		OnToggleCapture: a.toggleCapture,
		OnSelect:        a.selectCenter,
		OnZoomIn:        func() { a.zoom(zoomInFactor) },
		OnZoomOut:       func() { a.zoom(zoomOutFactor) },
		OnExit:          a.exitHandler,
	}
	if c.Screen != nil {
		handlers.OnRegion = func() { c.RootView.Region.OpenOrFocus() }
	}
	c.RootView.Build(handlers)

	if c.Config.Debug {
		a.stopLogs = append(a.stopLogs,
			debug.StartGoroutineLogger(10*time.Second, a.logger),
			debug.StartMemLogger(10*time.Second, a.logger),
			debug.StartPipelineLogger(5*time.Second, a.logger, c.Session))
	}

	// The preview label exists once the view is built.
	c.PreviewPresenter.SurfaceCreated()
	a.startCapture()

	c.Loop = presenter.NewLoop(c.SessionPresenter, c.FramePresenter, a.scheduleUpdate)
	a.scheduleUpdate()

	App.Wait()
}

func (a *app) scheduleUpdate() {
	// Schedule the next update using TclAfter to stay on Tk's event loop thread.
	a.afterID = TclAfter(tick, func() { a.c.Loop.Tick() })
}

func (a *app) startCapture() {
	c := a.c
	if c.Screen != nil {
		if r := c.RootView.Region.ActiveRect(); r != nil {
			c.Screen.SetRegion(*r)
		}
	}
	if err := c.PreviewPresenter.Start(c.Session); err != nil {
		a.logger.Error("start capture", "error", err)
		c.RootView.SetStatus("Capture failed: " + err.Error())
		return
	}
	c.RootView.SetConfigEditable(false)
}

func (a *app) toggleCapture() {
	c := a.c
	if c.Session.State() == capture.StateRunning {
		c.PreviewPresenter.Stop()
		c.RootView.SetConfigEditable(true)
		c.RootView.PreviewReset()
		return
	}
	a.startCapture()
}

// selectCenter taps the centre of the shown preview.
func (a *app) selectCenter() {
	w, h := a.c.FramePresenter.ShownSize()
	if w == 0 || h == 0 {
		return
	}
	if !a.c.GesturePresenter.Tap(float64(w)/2, float64(h)/2) {
		a.c.RootView.SetStatus("Selected: <none>")
	}
}

func (a *app) zoom(factor float64) {
	z := a.c.GesturePresenter.Scale(factor)
	a.logger.Debug("zoom", "factor", factor, "zoom", z)
}

func (a *app) onResult(e overlay.Entry) {
	a.c.RootView.SetStatus(fmt.Sprintf("Selected: %s (#%d)", e.Label, e.ID))
}

func (a *app) exitHandler() {
	if a.afterID != "" {
		TclAfterCancel(a.afterID)
	}
	for _, stop := range a.stopLogs {
		stop()
	}
	a.c.PreviewPresenter.SurfaceDestroyed()
	a.c.PreviewPresenter.Release()
	Destroy(App)
}
