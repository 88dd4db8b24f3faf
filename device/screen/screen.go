// Package screen is a sensor backed by the desktop: each frame is a grab of a
// screen region, resampled to the preview size and packed as NV21. Zoom crops
// the centre of the region.
package screen

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/vova616/screenshot"

	"github.com/soocke/barcode-tracker-go/device/feed"
	"github.com/soocke/barcode-tracker-go/domain/capture"
	"github.com/soocke/barcode-tracker-go/domain/detect"
)

// MaxZoom is the zoom step at which the crop is a quarter of the region.
const MaxZoom = 10

// Grabber captures a rectangle of the screen.
type Grabber interface {
	Bounds() (image.Rectangle, error)
	Grab(r image.Rectangle) (*image.RGBA, error)
}

type desktop struct{}

func (desktop) Bounds() (image.Rectangle, error)            { return screenshot.ScreenRect() }
func (desktop) Grab(r image.Rectangle) (*image.RGBA, error) { return screenshot.CaptureRect(r) }

// Desktop grabs the primary screen.
var Desktop Grabber = desktop{}

// Device implements capture.Device on top of a Grabber.
type Device struct {
	*feed.Feed
	logger  *slog.Logger
	grabber Grabber

	mu     sync.Mutex
	region image.Rectangle // empty means the whole screen
	bounds image.Rectangle
	params capture.Parameters
	opened bool
	zoom   int
}

// New creates a sensor over region of the screen; pass an empty rectangle for
// the whole screen.
func New(logger *slog.Logger, g Grabber, region image.Rectangle) *Device {
	if g == nil {
		g = Desktop
	}
	d := &Device{logger: logger, grabber: g, region: region}
	d.Feed = feed.New(logger, d.fill)
	return d
}

func (d *Device) Open() (capture.Capabilities, error) {
	caps, err := d.resolve()
	if err != nil {
		return capture.Capabilities{}, err
	}
	d.mu.Lock()
	d.opened = true
	d.mu.Unlock()
	return caps, nil
}

// Refresh re-reads the screen bounds and the region set since the last open.
func (d *Device) Refresh() (capture.Capabilities, error) {
	d.mu.Lock()
	opened := d.opened
	d.mu.Unlock()
	if !opened {
		return capture.Capabilities{}, errors.New("screen: not open")
	}
	return d.resolve()
}

func (d *Device) resolve() (capture.Capabilities, error) {
	full, err := d.grabber.Bounds()
	if err != nil {
		return capture.Capabilities{}, fmt.Errorf("screen bounds: %w", err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	b := full
	if !d.region.Empty() {
		b = d.region.Intersect(full)
	}
	if b.Dx() < 2 || b.Dy() < 2 {
		return capture.Capabilities{}, fmt.Errorf("screen region %v is empty", d.region)
	}
	if b != d.bounds && d.logger != nil {
		d.logger.Info("screen sensor bounds", "bounds", b.String())
	}
	d.bounds = b
	return capabilities(b), nil
}

// SetRegion changes the captured region; it applies on the next start.
func (d *Device) SetRegion(r image.Rectangle) {
	d.mu.Lock()
	d.region = r
	d.mu.Unlock()
}

// capabilities offers the region size and its halves and quarters, rounded
// down to even dimensions.
func capabilities(b image.Rectangle) capture.Capabilities {
	var sizes []capture.Size
	for div := 1; div <= 4; div *= 2 {
		w, h := b.Dx()/div&^1, b.Dy()/div&^1
		if w >= 2 && h >= 2 {
			sizes = append(sizes, capture.Size{W: w, H: h})
		}
	}
	return capture.Capabilities{
		PreviewSizes:  sizes,
		PictureSizes:  sizes,
		FPSRanges:     []capture.FPSRange{{Min: 5000, Max: 5000}, {Min: 10000, Max: 10000}, {Min: 15000, Max: 15000}},
		Facing:        capture.FacingBack,
		ZoomSupported: true,
		MaxZoom:       MaxZoom,
		FocusModes:    []string{"fixed"},
		FlashModes:    []string{"off"},
	}
}

func (d *Device) Configure(p capture.Parameters) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.opened {
		return errors.New("screen: not open")
	}
	if p.Format != detect.FormatNV21 && p.Format != detect.FormatGray8 {
		return fmt.Errorf("screen: unsupported format %v", p.Format)
	}
	if p.Preview.W <= 0 || p.Preview.H <= 0 || p.FPS.Max <= 0 {
		return fmt.Errorf("screen: bad parameters %+v", p)
	}
	d.params = p
	return nil
}

func (d *Device) StartCapture(cb capture.FrameCallback) error {
	d.mu.Lock()
	fps := d.params.FPS.Max
	d.mu.Unlock()
	if fps <= 0 {
		return errors.New("screen: not configured")
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
	if step < 0 || step > MaxZoom {
		return fmt.Errorf("screen: zoom %d out of range", step)
	}
	d.mu.Lock()
	d.zoom = step
	d.mu.Unlock()
	return nil
}

func (d *Device) Close() error {
	d.Feed.Stop()
	d.Feed.FlushBuffers()
	d.mu.Lock()
	d.opened = false
	d.mu.Unlock()
	return nil
}

// cropFor returns the centred part of b shown at zoom step: the full region
// at 0, half its width and height at MaxZoom.
func cropFor(b image.Rectangle, zoom int) image.Rectangle {
	f := 1 + float64(zoom)/MaxZoom
	w, h := int(float64(b.Dx())/f), int(float64(b.Dy())/f)
	x0 := b.Min.X + (b.Dx()-w)/2
	y0 := b.Min.Y + (b.Dy()-h)/2
	return image.Rect(x0, y0, x0+w, y0+h)
}

func (d *Device) fill(dst []byte, _ uint64) error {
	d.mu.Lock()
	p, b, zoom := d.params, d.bounds, d.zoom
	d.mu.Unlock()
	if want := capture.FrameSize(p.Preview, p.Format); len(dst) != want {
		return fmt.Errorf("screen: buffer is %d bytes, want %d", len(dst), want)
	}
	img, err := d.grabber.Grab(cropFor(b, zoom))
	if err != nil {
		return fmt.Errorf("screen grab: %w", err)
	}
	PackNV21(dst, img, p.Preview.W, p.Preview.H, p.Format == detect.FormatNV21)
	return nil
}

var (
	_ capture.Device    = (*Device)(nil)
	_ capture.Refresher = (*Device)(nil)
)
