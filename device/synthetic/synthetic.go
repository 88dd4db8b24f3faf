// Package synthetic is a software sensor that renders textured squares
// drifting across a dark background. Frames are deterministic for a given
// sequence number, which makes it usable from tests and headless runs.
package synthetic

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/soocke/barcode-tracker-go/device/feed"
	"github.com/soocke/barcode-tracker-go/domain/capture"
	"github.com/soocke/barcode-tracker-go/domain/detect"
)

const (
	background = 16
	bright     = 235
	dark       = 64
)

// Target is one moving square. Position and velocity are fractions of the
// frame size so targets behave the same at every resolution.
type Target struct {
	Label  string
	X, Y   float64 // top-left at frame 0
	VX, VY float64 // per frame
	Size   float64 // side as a fraction of the frame height
	Cell   int     // checker cell size in pixels
}

// DefaultTargets are three squares with distinct textures.
func DefaultTargets() []Target {
	return []Target{
		{Label: "4006381333931", X: 0.10, Y: 0.15, VX: 0.004, VY: 0.003, Size: 0.18, Cell: 3},
		{Label: "9780201379624", X: 0.60, Y: 0.55, VX: -0.003, VY: 0.002, Size: 0.20, Cell: 5},
		{Label: "5901234123457", X: 0.45, Y: 0.10, VX: 0.002, VY: 0.004, Size: 0.16, Cell: 4},
	}
}

// DefaultCapabilities describes a small landscape sensor.
func DefaultCapabilities(facing capture.Facing) capture.Capabilities {
	sizes := []capture.Size{{W: 320, H: 240}, {W: 640, H: 480}, {W: 1280, H: 720}}
	return capture.Capabilities{
		PreviewSizes:  sizes,
		PictureSizes:  sizes,
		FPSRanges:     []capture.FPSRange{{Min: 15000, Max: 15000}, {Min: 15000, Max: 30000}, {Min: 30000, Max: 30000}},
		Facing:        facing,
		ZoomSupported: true,
		MaxZoom:       10,
		FocusModes:    []string{"auto", "fixed"},
		FlashModes:    []string{"off", "torch"},
	}
}

// Device implements capture.Device.
type Device struct {
	*feed.Feed
	logger  *slog.Logger
	targets []Target

	mu     sync.Mutex
	caps   capture.Capabilities
	params capture.Parameters
	opened bool
	zoom   int
	closed bool
}

// New creates a closed device. caps is reported by Open.
func New(logger *slog.Logger, caps capture.Capabilities, targets []Target) *Device {
	d := &Device{logger: logger, caps: caps, targets: targets}
	d.Feed = feed.New(logger, d.render)
	return d
}

// Targets returns the scene description.
func (d *Device) Targets() []Target { return d.targets }

func (d *Device) Open() (capture.Capabilities, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return capture.Capabilities{}, errors.New("synthetic: device closed")
	}
	d.opened = true
	return d.caps, nil
}

func (d *Device) Configure(p capture.Parameters) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.opened {
		return errors.New("synthetic: not open")
	}
	if p.Format != detect.FormatNV21 && p.Format != detect.FormatGray8 {
		return fmt.Errorf("synthetic: unsupported format %v", p.Format)
	}
	if p.Preview.W <= 0 || p.Preview.H <= 0 || p.FPS.Max <= 0 {
		return fmt.Errorf("synthetic: bad parameters %+v", p)
	}
	d.params = p
	return nil
}

func (d *Device) StartCapture(cb capture.FrameCallback) error {
	d.mu.Lock()
	fps := d.params.FPS.Max
	d.mu.Unlock()
	if fps <= 0 {
		return errors.New("synthetic: not configured")
	}
	return d.Feed.Start(time.Duration(int64(time.Second)*1000/int64(fps)), cb)
}

func (d *Device) StopCapture() error {
	d.Feed.Stop()
	return nil
}

func (d *Device) Zoom() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.zoom
}

func (d *Device) SetZoom(step int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if step < 0 || step > d.caps.MaxZoom {
		return fmt.Errorf("synthetic: zoom %d out of range", step)
	}
	d.zoom = step
	return nil
}

func (d *Device) Close() error {
	d.Feed.Stop()
	d.Feed.FlushBuffers()
	d.mu.Lock()
	d.opened, d.closed = false, true
	d.mu.Unlock()
	return nil
}

// Placement is where a target sits in a given frame.
type Placement struct {
	Target
	Bounds image.Rectangle
}

// Scene returns the target placements of frame seq at the configured
// preview size and zoom.
func (d *Device) Scene(seq uint64) []Placement {
	d.mu.Lock()
	size, zoom, maxZoom := d.params.Preview, d.zoom, d.caps.MaxZoom
	d.mu.Unlock()
	return scene(d.targets, seq, size, zoomFactor(zoom, maxZoom))
}

func zoomFactor(zoom, maxZoom int) float64 {
	if maxZoom <= 0 {
		return 1
	}
	return 1 + float64(zoom)/float64(maxZoom)
}

func scene(targets []Target, seq uint64, size capture.Size, z float64) []Placement {
	out := make([]Placement, 0, len(targets))
	cx, cy := float64(size.W)/2, float64(size.H)/2
	for _, t := range targets {
		side := t.Size * float64(size.H)
		span := 1 - side/float64(size.W)
		x := bounce(t.X+t.VX*float64(seq), span) * float64(size.W)
		y := bounce(t.Y+t.VY*float64(seq), 1-t.Size) * float64(size.H)
		// zoom scales the scene about the frame centre
		x0, y0 := cx+(x-cx)*z, cy+(y-cy)*z
		s := side * z
		out = append(out, Placement{Target: t, Bounds: image.Rect(int(x0), int(y0), int(x0+s), int(y0+s))})
	}
	return out
}

// bounce folds p into [0, span] like a ball between two walls.
func bounce(p, span float64) float64 {
	if span <= 0 {
		return 0
	}
	period := 2 * span
	for p < 0 {
		p += period
	}
	for p >= period {
		p -= period
	}
	if p > span {
		return period - p
	}
	return p
}

// Pattern renders a target's texture at side x side, as it appears in frames
// at zoom 0. Useful as a detector template.
func Pattern(t Target, side int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, side, side))
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			img.Pix[y*img.Stride+x] = checker(x, y, float64(t.Cell))
		}
	}
	return img
}

func checker(x, y int, cell float64) byte {
	if cell < 1 {
		cell = 1
	}
	if (int(float64(x)/cell)+int(float64(y)/cell))%2 == 0 {
		return bright
	}
	return dark
}

func (d *Device) render(dst []byte, seq uint64) error {
	d.mu.Lock()
	p, zoom, maxZoom := d.params, d.zoom, d.caps.MaxZoom
	d.mu.Unlock()
	w, h := p.Preview.W, p.Preview.H
	if want := capture.FrameSize(p.Preview, p.Format); len(dst) != want {
		return fmt.Errorf("synthetic: buffer is %d bytes, want %d", len(dst), want)
	}
	luma := dst[:w*h]
	for i := range luma {
		luma[i] = background
	}
	z := zoomFactor(zoom, maxZoom)
	for _, pl := range scene(d.targets, seq, p.Preview, z) {
		r := pl.Bounds.Intersect(image.Rect(0, 0, w, h))
		cell := float64(pl.Cell) * z
		for y := r.Min.Y; y < r.Max.Y; y++ {
			row := luma[y*w:]
			for x := r.Min.X; x < r.Max.X; x++ {
				row[x] = checker(x-pl.Bounds.Min.X, y-pl.Bounds.Min.Y, cell)
			}
		}
	}
	if p.Format == detect.FormatNV21 {
		chroma := dst[w*h:]
		for i := range chroma {
			chroma[i] = 128
		}
	}
	return nil
}

var _ capture.Device = (*Device)(nil)
