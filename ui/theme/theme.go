package theme

// Styling for the tracker UI: a light and a dark palette and the ttk styles
// the root view applies to its buttons and status label.

import (
	tk "modernc.org/tk9.0"
)

// Palette holds the resolved colors for one mode.
type Palette struct {
	AppBg   string
	Surface string
	Primary string
	Danger  string
	Accent  string
	Text    string
}

var (
	light = Palette{AppBg: "#f7f9fb", Surface: "#ffffff", Primary: "#2563eb", Danger: "#dc2626", Accent: "#10b981", Text: "#1e293b"}
	dark  = Palette{AppBg: "#0f172a", Surface: "#1e293b", Primary: "#3b82f6", Danger: "#ef4444", Accent: "#10b981", Text: "#f1f5f9"}
)

// Style names used with Style("primary.TButton") etc.
const (
	StylePrimaryButton = "primary.TButton"
	StyleDangerButton  = "danger.TButton"
	StyleStatusLabel   = "status.TLabel"
)

// For returns the palette for the given mode.
func For(darkMode bool) Palette {
	if darkMode {
		return dark
	}
	return light
}

// InitStyles activates the base theme and configures the semantic styles.
func InitStyles(darkMode bool) {
	p := For(darkMode)
	_ = tk.ActivateTheme("azure light") // baseline metrics
	tk.App.Configure(tk.Background(p.AppBg))
	tk.StyleConfigure(StylePrimaryButton, tk.Background(p.Primary), tk.Foreground("white"),
		tk.Padding("4p 3p"), tk.Borderwidth(1), tk.Relief("ridge"))
	tk.StyleConfigure(StyleDangerButton, tk.Background(p.Danger), tk.Foreground("white"),
		tk.Padding("4p 3p"), tk.Borderwidth(1), tk.Relief("ridge"))
	tk.StyleConfigure(StyleStatusLabel, tk.Foreground(p.Text), tk.Background(p.Surface),
		tk.Padding("4p 2p"), tk.Borderwidth(1), tk.Relief("groove"))
}
