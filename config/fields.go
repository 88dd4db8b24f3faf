package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Field is a setting the user may edit as text while capture is stopped.
// Set returns false and leaves the config untouched when text does not parse.
type Field struct {
	Key   string
	Label string
	Get   func(c *Config) string
	Set   func(c *Config, text string) bool
}

func floatField(key, label, format string, p func(*Config) *float64) Field {
	return Field{Key: key, Label: label,
		Get: func(c *Config) string { return fmt.Sprintf(format, *p(c)) },
		Set: func(c *Config, s string) bool {
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return false
			}
			*p(c) = f
			return true
		},
	}
}

func intField(key, label string, p func(*Config) *int) Field {
	return Field{Key: key, Label: label,
		Get: func(c *Config) string { return strconv.Itoa(*p(c)) },
		Set: func(c *Config, s string) bool {
			i, err := strconv.Atoi(strings.TrimSpace(s))
			if err != nil {
				return false
			}
			*p(c) = i
			return true
		},
	}
}

func boolField(key, label string, p func(*Config) *bool) Field {
	return Field{Key: key, Label: label,
		Get: func(c *Config) string { return strconv.FormatBool(*p(c)) },
		Set: func(c *Config, s string) bool {
			b, ok := parseBool(s)
			if ok {
				*p(c) = b
			}
			return ok
		},
	}
}

func stringField(key, label string, p func(*Config) *string) Field {
	return Field{Key: key, Label: label,
		Get: func(c *Config) string { return *p(c) },
		Set: func(c *Config, s string) bool { *p(c) = strings.TrimSpace(s); return true },
	}
}

// EditableFields lists the capture and detection settings shown in the
// config form, in display order.
func EditableFields() []Field {
	return []Field{
		floatField("fps", "Requested FPS", "%.1f", func(c *Config) *float64 { return &c.FPS }),
		stringField("focus_mode", "Focus Mode (empty for default)", func(c *Config) *string { return &c.FocusMode }),
		stringField("flash_mode", "Flash Mode (empty for default)", func(c *Config) *string { return &c.FlashMode }),
		floatField("min_scale", "Min Scale", "%.2f", func(c *Config) *float64 { return &c.MinScale }),
		floatField("max_scale", "Max Scale", "%.2f", func(c *Config) *float64 { return &c.MaxScale }),
		floatField("scale_step", "Scale Step", "%.3f", func(c *Config) *float64 { return &c.ScaleStep }),
		floatField("threshold", "Threshold", "%.3f", func(c *Config) *float64 { return &c.Threshold }),
		intField("stride", "Stride", func(c *Config) *int { return &c.Stride }),
		boolField("refine", "Refine (true/false)", func(c *Config) *bool { return &c.Refine }),
		intField("max_gap_frames", "Max Gap Frames", func(c *Config) *int { return &c.MaxGapFrames }),
	}
}

// parseBool accepts the usual spellings of yes and no.
func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y", "on", "t":
		return true, true
	case "false", "0", "no", "n", "off", "f":
		return false, true
	}
	return false, false
}
