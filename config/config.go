package config

import (
	"image"
	"os"
	"strconv"

	jsoniter "github.com/json-iterator/go"

	"github.com/soocke/barcode-tracker-go/domain/capture"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Sensor sources.
const (
	SourceSynthetic = "synthetic"
	SourceScreen    = "screen"
)

// TemplateConfig names an image to detect and the identity it reports.
type TemplateConfig struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
	Path  string `json:"path"`
}

// Config holds runtime configuration for capture, detection and the app.
// Fields may be loaded from a JSON file and overridden by command-line flags.
type Config struct {
	Debug   bool   `json:"debug"`
	LogFile string `json:"log_file"` // empty logs to stdout only

	// Capture preferences
	Source          string  `json:"source"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	FPS             float64 `json:"fps"`
	Facing          string  `json:"facing"`
	FocusMode       string  `json:"focus_mode"`
	FlashMode       string  `json:"flash_mode"`
	BufferCount     int     `json:"buffer_count"`
	AspectTolerance float64 `json:"aspect_tolerance"`
	DisplayRotation int     `json:"display_rotation"` // quarter turns

	// Screen region for the screen source (zero size means the whole screen)
	RegionX int `json:"region_x"`
	RegionY int `json:"region_y"`
	RegionW int `json:"region_w"`
	RegionH int `json:"region_h"`

	// Detection parameters
	MinScale     float64          `json:"min_scale"`
	MaxScale     float64          `json:"max_scale"`
	ScaleStep    float64          `json:"scale_step"`
	Threshold    float64          `json:"threshold"`
	Stride       int              `json:"stride"`
	Refine       bool             `json:"refine"`
	MaxGapFrames int              `json:"max_gap_frames"`
	Templates    []TemplateConfig `json:"templates"`

	// Preview window
	ViewWidth  int  `json:"view_width"`
	ViewHeight int  `json:"view_height"`
	DarkMode   bool `json:"dark_mode"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	cc := capture.DefaultCaptureConfig()
	return &Config{
		Source:          SourceSynthetic,
		Width:           cc.Width,
		Height:          cc.Height,
		FPS:             cc.FPS,
		Facing:          cc.Facing.String(),
		BufferCount:     capture.DefaultBufferCount,
		AspectTolerance: capture.DefaultAspectTolerance,
		MinScale:        1.0,
		MaxScale:        1.0,
		ScaleStep:       0.1,
		Threshold:       0.80,
		Stride:          2,
		Refine:          true,
		MaxGapFrames:    3,
		ViewWidth:       800,
		ViewHeight:      600,
	}
}

// Validate clamps/normalizes values to safe ranges and then checks the
// capture preferences, which cannot be clamped meaningfully.
func (c *Config) Validate() error {
	if c.Source != SourceScreen {
		c.Source = SourceSynthetic
	}
	if c.Facing != "front" {
		c.Facing = "back"
	}
	if c.BufferCount < 2 {
		c.BufferCount = capture.DefaultBufferCount
	}
	if c.AspectTolerance <= 0 || c.AspectTolerance > 1 {
		c.AspectTolerance = capture.DefaultAspectTolerance
	}
	c.DisplayRotation = ((c.DisplayRotation % 4) + 4) % 4
	if c.MinScale <= 0 {
		c.MinScale = 1.0
	}
	if c.MaxScale < c.MinScale {
		c.MaxScale = c.MinScale
	}
	if c.ScaleStep <= 0 {
		c.ScaleStep = 0.1
	}
	if c.Threshold <= 0 || c.Threshold > 1 {
		c.Threshold = 0.80
	}
	if c.Stride <= 0 {
		c.Stride = 2
	}
	if c.MaxGapFrames < 0 {
		c.MaxGapFrames = 3
	}
	if c.ViewWidth <= 0 {
		c.ViewWidth = 800
	}
	if c.ViewHeight <= 0 {
		c.ViewHeight = 600
	}
	return c.Capture().Validate()
}

// Capture returns the capture preferences handed to a session.
func (c *Config) Capture() capture.CaptureConfig {
	return capture.CaptureConfig{
		Width:     c.Width,
		Height:    c.Height,
		FPS:       c.FPS,
		Facing:    capture.ParseFacing(c.Facing),
		FocusMode: c.FocusMode,
		FlashMode: c.FlashMode,
	}
}

// Region returns the screen region, empty for the whole screen.
func (c *Config) Region() image.Rectangle {
	if c.RegionW <= 0 || c.RegionH <= 0 {
		return image.Rectangle{}
	}
	return image.Rect(c.RegionX, c.RegionY, c.RegionX+c.RegionW, c.RegionY+c.RegionH)
}

// Scales expands MinScale..MaxScale by ScaleStep, capped at 200 factors.
func (c *Config) Scales() []float64 {
	if c.MinScale <= 0 || c.ScaleStep <= 0 || c.MaxScale < c.MinScale {
		return []float64{1}
	}
	var out []float64
	for s := c.MinScale; s <= c.MaxScale+1e-9 && len(out) < 200; s += c.ScaleStep {
		out = append(out, s)
	}
	return out
}

// Load attempts to read configuration from the given JSON file path. If the file does not
// exist it returns DefaultConfig(). On JSON or validation error it returns the config with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Environment overrides read by ApplyEnv.
const (
	EnvSource    = "BT_SOURCE"
	EnvLogFile   = "BT_LOG_FILE"
	EnvDebug     = "BT_DEBUG"
	EnvFacing    = "BT_FACING"
	EnvFPS       = "BT_FPS"
	EnvThreshold = "BT_THRESHOLD"
)

// ApplyEnv overrides fields from environment variables looked up with
// lookup (normally os.LookupEnv). Unparseable numbers are ignored. Call
// Validate afterwards.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvSource); ok && v != "" {
		c.Source = v
	}
	if v, ok := lookup(EnvLogFile); ok {
		c.LogFile = v
	}
	if v, ok := lookup(EnvDebug); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Debug = b
		}
	}
	if v, ok := lookup(EnvFacing); ok && v != "" {
		c.Facing = v
	}
	if v, ok := lookup(EnvFPS); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.FPS = f
		}
	}
	if v, ok := lookup(EnvThreshold); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Threshold = f
		}
	}
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
