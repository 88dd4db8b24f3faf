package view

import (
	"log/slog"
	"strings"

	"github.com/soocke/barcode-tracker-go/config"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// ConfigPanel is the form for the settings in config.EditableFields. Edits
// are validated and saved on apply and take effect on the next start.
type ConfigPanel interface {
	Build(startRow int) (endRow int) // constructs widgets starting at startRow, returns next free row
	SetEditable(enabled bool)
	ApplyChanges()
}

type fieldRow struct {
	field config.Field
	entry *TextWidget
}

type configPanel struct {
	cfg      *config.Config
	cfgPath  string
	logger   *slog.Logger
	rows     []fieldRow
	applyBtn *ButtonWidget
}

// NewConfigPanel creates the view bound to cfg.
func NewConfigPanel(cfg *config.Config, cfgPath string, logger *slog.Logger) ConfigPanel {
	if logger == nil {
		logger = slog.Default()
	}
	return &configPanel{cfg: cfg, cfgPath: cfgPath, logger: logger}
}

func (v *configPanel) Build(startRow int) int {
	row := startRow
	if v.cfg == nil {
		return row
	}
	for _, f := range config.EditableFields() {
		Grid(Label(Txt(f.Label), Anchor("w")), Row(row), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.15m"))
		entry := Text(Height(1), Width(16))
		Grid(entry, Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
		entry.Insert("1.0", f.Get(v.cfg))
		v.rows = append(v.rows, fieldRow{field: f, entry: entry})
		row++
	}
	v.applyBtn = Button(Txt("Apply Changes"), Command(v.ApplyChanges))
	Grid(v.applyBtn, Row(row), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	return row + 1
}

func (v *configPanel) SetEditable(enabled bool) {
	state := "disabled"
	if enabled {
		state = "normal"
	}
	for _, r := range v.rows {
		r.entry.Configure(State(state))
	}
	if v.applyBtn != nil {
		v.applyBtn.Configure(State(state))
	}
}

// ApplyChanges parses every row into a copy of the config. Rows that do not
// parse keep their old value. The copy replaces the config only if it
// validates.
func (v *configPanel) ApplyChanges() {
	if v.cfg == nil {
		return
	}
	next := *v.cfg
	for _, r := range v.rows {
		text := strings.Join(r.entry.Get("1.0", END), "")
		if !r.field.Set(&next, text) {
			v.logger.Warn("ignoring unparsable value", "field", r.field.Key, "value", strings.TrimSpace(text))
		}
	}
	if err := next.Validate(); err != nil {
		v.logger.Warn("config rejected", "error", err)
		return
	}
	*v.cfg = next
	if err := v.cfg.Save(v.cfgPath); err != nil {
		v.logger.Error("config save failed", "error", err)
		return
	}
	v.logger.Info("config saved, applies on next start", "path", v.cfgPath)
}
