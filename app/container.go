package app

import (
	"fmt"
	"log/slog"

	"github.com/soocke/barcode-tracker-go/config"
	"github.com/soocke/barcode-tracker-go/device/screen"
	"github.com/soocke/barcode-tracker-go/device/synthetic"
	"github.com/soocke/barcode-tracker-go/domain/capture"
	"github.com/soocke/barcode-tracker-go/domain/detect"
	"github.com/soocke/barcode-tracker-go/domain/engine"
	"github.com/soocke/barcode-tracker-go/domain/engine/template"
	"github.com/soocke/barcode-tracker-go/domain/overlay"
	"github.com/soocke/barcode-tracker-go/domain/tracking"
	"github.com/soocke/barcode-tracker-go/ui/model"
	"github.com/soocke/barcode-tracker-go/ui/presenter"
	"github.com/soocke/barcode-tracker-go/ui/view"
)

// AppContainer assembles the pipeline, models, presenters and the root view.
type AppContainer struct {
	Config  *config.Config
	CfgPath string
	Logger  *slog.Logger

	// Pipeline
	Device  capture.Device
	Screen  *screen.Device // set when the screen source is used
	Overlay *overlay.Store
	Tracker *tracking.Registry
	Tap     *engine.FrameTap
	Session *capture.Session

	// Models
	Preview   *model.PreviewModel
	Selection *model.SelectionModel
	Stats     *model.SessionModel

	RootView *view.RootView

	// Presenters
	PreviewPresenter *presenter.PreviewPresenter
	GesturePresenter *presenter.GesturePresenter
	FramePresenter   *presenter.FramePresenter
	SessionPresenter *presenter.SessionPresenter
	Loop             *presenter.Loop
}

// BuildContainer constructs all components. The view is created but not
// built; presenters reach it through its nil-safe methods. onResult
// receives every selection and may be nil.
func BuildContainer(cfg *config.Config, cfgPath string, logger *slog.Logger, onResult func(overlay.Entry)) (*AppContainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &AppContainer{Config: cfg, CfgPath: cfgPath, Logger: logger}

	switch cfg.Source {
	case config.SourceScreen:
		c.Screen = screen.New(logger, screen.Desktop, cfg.Region())
		c.Device = c.Screen
	default:
		facing := capture.ParseFacing(cfg.Facing)
		c.Device = synthetic.New(logger, synthetic.DefaultCapabilities(facing), synthetic.DefaultTargets())
	}

	// The frame presenter is created below; invalidations before that are dropped.
	c.Overlay = overlay.NewStore(func() { c.FramePresenter.Invalidate() })
	c.Tracker = tracking.NewRegistry(logger, c.Overlay)
	c.Tracker.OnNewItem(func(id int, p detect.Payload) {
		logger.Info("new item", "id", id, "label", p.Label)
	})

	tpls, err := loadTemplates(cfg)
	if err != nil {
		return nil, err
	}
	matcher, err := template.New(tpls, template.Options{
		Threshold: cfg.Threshold,
		Stride:    cfg.Stride,
		Refine:    cfg.Refine,
		Scales:    cfg.Scales(),
	})
	if err != nil {
		return nil, fmt.Errorf("build matcher: %w", err)
	}
	multi := engine.NewMultiProcessor(matcher, c.Tracker,
		engine.WithMaxGapFrames(cfg.MaxGapFrames),
		engine.WithLogger(logger))
	c.Tap = engine.NewFrameTap(multi)

	c.Session, err = capture.NewSession(c.Device, c.Tap, capture.FixedDisplay(cfg.DisplayRotation), cfg.Capture(),
		capture.WithLogger(logger),
		capture.WithBufferCount(cfg.BufferCount),
		capture.WithAspectTolerance(cfg.AspectTolerance))
	if err != nil {
		return nil, err
	}
	logger.Info("session created", "session", c.Session.ID(), "source", cfg.Source, "templates", matcher.Len())

	c.Preview = &model.PreviewModel{}
	c.Selection = &model.SelectionModel{}
	c.Stats = model.NewSessionModel()

	c.RootView = view.NewRootView(cfg, cfgPath, logger)

	c.PreviewPresenter = presenter.NewPreviewPresenter(c.Preview, c.Overlay, c.Tracker, logger)
	c.GesturePresenter = presenter.NewGesturePresenter(c.Overlay, c.Session, c.Selection, onResult, logger)
	c.FramePresenter = presenter.NewFramePresenter(c.Tap, c.Session, c.Overlay, c.RootView)
	c.SessionPresenter = presenter.NewSessionPresenter(c.Stats, c.Session, c.RootView)
	return c, nil
}
