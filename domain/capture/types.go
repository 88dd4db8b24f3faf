package capture

import (
	"fmt"
	"time"

	"github.com/soocke/barcode-tracker-go/domain/detect"
)

// Facing identifies which side of the device a sensor points to.
type Facing int

const (
	FacingBack Facing = iota
	FacingFront
)

func (f Facing) String() string {
	if f == FacingFront {
		return "front"
	}
	return "back"
}

// ParseFacing maps "front"/"back" to a Facing. Anything else is back.
func ParseFacing(s string) Facing {
	if s == "front" {
		return FacingFront
	}
	return FacingBack
}

// Size is a resolution in pixels.
type Size struct {
	W, H int
}

func (s Size) String() string { return fmt.Sprintf("%dx%d", s.W, s.H) }

// Aspect returns W/H, or 0 for a degenerate size.
func (s Size) Aspect() float64 {
	if s.H == 0 {
		return 0
	}
	return float64(s.W) / float64(s.H)
}

// FPSRange is a supported frame-rate range in the device's fixed-point scale
// (frames per second multiplied by 1000).
type FPSRange struct {
	Min, Max int
}

// Capabilities is what a sensor reports once opened.
type Capabilities struct {
	PreviewSizes      []Size
	PictureSizes      []Size
	FPSRanges         []FPSRange
	Facing            Facing
	SensorOrientation int // degrees, multiple of 90
	ZoomSupported     bool
	MaxZoom           int
	FocusModes        []string
	FlashModes        []string
}

// CaptureConfig holds the caller's capture preferences. A session copies it
// on construction; later edits to the caller's value have no effect.
type CaptureConfig struct {
	Width     int     `json:"width" validate:"gt=0,lte=1000000"`
	Height    int     `json:"height" validate:"gt=0,lte=1000000"`
	FPS       float64 `json:"fps" validate:"gt=0,lte=1000"`
	Facing    Facing  `json:"facing" validate:"min=0,max=1"`
	FocusMode string  `json:"focus_mode" validate:"omitempty,oneof=auto continuous-picture continuous-video edof fixed infinity macro"`
	FlashMode string  `json:"flash_mode" validate:"omitempty,oneof=on off auto red-eye torch"`
}

// DefaultCaptureConfig matches what the scanner screen asks for.
func DefaultCaptureConfig() CaptureConfig {
	return CaptureConfig{Width: 1024, Height: 768, FPS: 15, Facing: FacingBack}
}

// Validate reports whether the preferences can be handed to a sensor.
func (c CaptureConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return newError(ErrConfiguration, "validate config", err)
	}
	return nil
}

// ResolvedGeometry is derived once per start from CaptureConfig and the
// sensor capabilities. Picture is nil when no size shares the preview aspect.
type ResolvedGeometry struct {
	Preview        Size
	Picture        *Size
	FPS            FPSRange
	Rotation       int // quarter turns handed to the detector
	DisplayDegrees int // display compensation, mirrored for front sensors
}

// Parameters is the configuration applied to an opened device.
type Parameters struct {
	Preview        Size
	Picture        *Size
	FPS            FPSRange
	Format         detect.PixelFormat
	DisplayDegrees int
	FocusMode      string
	FlashMode      string
}

// State is the capture session lifecycle.
type State int32

const (
	StateIdle State = iota
	StateStarting
	StateRunning
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// PendingFrame is a hardware-delivered buffer waiting for the worker.
type PendingFrame struct {
	Buffer    *FrameBuffer
	ID        uint64
	Timestamp time.Duration
}

// SessionStats summarises pipeline behaviour for instrumentation.
type SessionStats struct {
	State      State
	Processed  uint64
	Detections uint64
	Faults     uint64
	LastFrame  uint64
	Pool       PoolStats
	Mailbox    MailboxStats
}
