package view

import (
	"image"
	"log/slog"
	"time"

	"github.com/soocke/barcode-tracker-go/config"
	"github.com/soocke/barcode-tracker-go/domain/capture"
	"github.com/soocke/barcode-tracker-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Handlers are invoked on user actions. A nil handler omits its button.
type Handlers struct {
	OnToggleCapture func()
	OnSelect        func() // taps the centre of the preview
	OnZoomIn        func()
	OnZoomOut       func()
	OnRegion        func()
	OnExit          func()
}

// RootView composes the top-level application layout and wires UI callbacks.
// It owns high-level subviews but exposes minimal exported fields for presenters.
type RootView struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger

	// Subviews
	Session     SessionStats
	ConfigPanel ConfigPanel
	Preview     PreviewPanel
	Region      RegionOverlay

	// Widgets
	StatusLabel *TLabelWidget
	previewRow  int
}

func NewRootView(cfg *config.Config, cfgPath string, logger *slog.Logger) *RootView {
	return &RootView{cfg: cfg, cfgPath: cfgPath, logger: logger}
}

// Build constructs the layout.
func (rv *RootView) Build(h Handlers) {
	if rv == nil {
		return
	}
	theme.InitStyles(rv.cfg != nil && rv.cfg.DarkMode)

	// Row 0: session stats, status label, buttons frame
	rv.Session = NewSessionStats(nil, 0, 0)

	rv.StatusLabel = TLabel(Txt("Selected: <none>"), Style(theme.StyleStatusLabel))
	Grid(rv.StatusLabel, Row(0), Column(3), Sticky("we"), Padx("0.4m"), Pady("0.3m"))

	btnFrame := Frame()
	Grid(btnFrame, Row(0), Column(4), Rowspan(2), Sticky("ne"), Padx("0.3m"), Pady("0.3m"))
	btn := 0
	addButton := func(text, style string, fn func()) {
		if fn == nil {
			return
		}
		b := TButton(Txt(text), Style(style), Command(fn))
		Grid(b, In(btnFrame), Row(btn), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
		btn++
	}
	addButton("Toggle Capture", theme.StylePrimaryButton, h.OnToggleCapture)
	addButton("Select [Space]", theme.StylePrimaryButton, h.OnSelect)
	addButton("Zoom In [+]", theme.StylePrimaryButton, h.OnZoomIn)
	addButton("Zoom Out [-]", theme.StylePrimaryButton, h.OnZoomOut)
	addButton("Capture Region", theme.StylePrimaryButton, h.OnRegion)
	addButton("Exit", theme.StyleDangerButton, h.OnExit)
	if h.OnSelect != nil {
		Bind(App, "<space>", Command(h.OnSelect))
	}
	if h.OnZoomIn != nil {
		Bind(App, "<plus>", Command(h.OnZoomIn))
	}
	if h.OnZoomOut != nil {
		Bind(App, "<minus>", Command(h.OnZoomOut))
	}

	// Config panel rows
	rv.ConfigPanel = NewConfigPanel(rv.cfg, rv.cfgPath, rv.logger)
	rv.previewRow = rv.ConfigPanel.Build(1)

	maxW, maxH := 640, 480
	if rv.cfg != nil {
		maxW, maxH = rv.cfg.ViewWidth, rv.cfg.ViewHeight
	}
	rv.Preview = NewPreviewPanel(rv.previewRow, maxW, maxH)
	rv.Region = NewRegionOverlay(rv.cfg, rv.cfgPath, rv.logger)
}

// SetStatus updates the status label text.
func (rv *RootView) SetStatus(text string) {
	if rv != nil && rv.StatusLabel != nil {
		rv.StatusLabel.Configure(Txt(text))
	}
}

// SetConfigEditable toggles config panel editability.
func (rv *RootView) SetConfigEditable(enabled bool) {
	if rv != nil && rv.ConfigPanel != nil {
		rv.ConfigPanel.SetEditable(enabled)
	}
}

// ShowPreview proxies to the preview panel.
func (rv *RootView) ShowPreview(img image.Image) {
	if rv != nil && rv.Preview != nil {
		rv.Preview.ShowPreview(img)
	}
}

// PreviewBounds proxies to the preview panel.
func (rv *RootView) PreviewBounds() (int, int) {
	if rv == nil || rv.Preview == nil {
		return 0, 0
	}
	return rv.Preview.PreviewBounds()
}

// PreviewReset clears the preview.
func (rv *RootView) PreviewReset() {
	if rv != nil && rv.Preview != nil {
		rv.Preview.Reset()
	}
}

// SetSession updates the session stats labels.
func (rv *RootView) SetSession(run, total time.Duration, fps float64, st capture.SessionStats) {
	if rv == nil || rv.Session == nil {
		return
	}
	rv.Session.SetSession(run, total, fps, st)
}
