// Package detect holds the vocabulary shared between the capture pipeline,
// detection engines and the tracker: frames handed to an engine, the
// detections it reports and the per-identity lifecycle events it emits.
package detect

import (
	"image"
	"time"
)

// PixelFormat identifies the packed layout of a frame buffer.
type PixelFormat int

const (
	// FormatNV21 is YCrCb 4:2:0 semi-planar: a full-resolution luma plane
	// followed by interleaved V/U samples at quarter resolution.
	FormatNV21 PixelFormat = iota
	// FormatGray8 is a single 8-bit luma plane.
	FormatGray8
)

// BitsPerPixel returns the average number of bits each pixel occupies.
func (f PixelFormat) BitsPerPixel() int {
	switch f {
	case FormatNV21:
		return 12
	case FormatGray8:
		return 8
	default:
		return 0
	}
}

func (f PixelFormat) String() string {
	switch f {
	case FormatNV21:
		return "nv21"
	case FormatGray8:
		return "gray8"
	default:
		return "unknown"
	}
}

// Frame is one captured image sample as seen by a detection engine. Data is
// borrowed: the engine may read it only for the duration of Process and must
// not retain or modify it.
type Frame struct {
	Data      []byte
	Width     int
	Height    int
	Format    PixelFormat
	ID        uint64
	Timestamp time.Duration // relative to session start
	Rotation  int           // quarter turns, 0..3
}

// Luma returns the full-resolution luma plane of the frame, or nil when the
// buffer is too short for the declared geometry.
func (f Frame) Luma() []byte {
	n := f.Width * f.Height
	if n <= 0 || len(f.Data) < n {
		return nil
	}
	return f.Data[:n]
}

// Payload is the engine-specific result attached to one detected object.
// Bounds are expressed in preview (sensor) coordinates.
type Payload struct {
	Bounds image.Rectangle
	Label  string
	Score  float64
}

// Detection pairs an engine-assigned identity with its payload.
type Detection struct {
	ID      int
	Payload Payload
}
