package screen

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/soocke/barcode-tracker-go/domain/capture"
	"github.com/soocke/barcode-tracker-go/domain/detect"
)

// fakeGrabber serves a left-white, right-black screen.
type fakeGrabber struct {
	screen image.Rectangle
	last   image.Rectangle
	err    error
}

func (g *fakeGrabber) Bounds() (image.Rectangle, error) { return g.screen, g.err }

func (g *fakeGrabber) Grab(r image.Rectangle) (*image.RGBA, error) {
	g.last = r
	img := image.NewRGBA(r)
	mid := g.screen.Min.X + g.screen.Dx()/2
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if x < mid {
				img.SetRGBA(x, y, color.RGBA{255, 255, 255, 255})
			} else {
				img.SetRGBA(x, y, color.RGBA{0, 0, 0, 255})
			}
		}
	}
	return img, nil
}

func TestDevice_OpenReportsEvenSizes(t *testing.T) {
	d := New(nil, &fakeGrabber{screen: image.Rect(0, 0, 1921, 1081)}, image.Rectangle{})
	caps, err := d.Open()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	want := []capture.Size{{W: 1920, H: 1080}, {W: 960, H: 540}, {W: 480, H: 270}}
	if len(caps.PreviewSizes) != len(want) {
		t.Fatalf("unexpected sizes %v", caps.PreviewSizes)
	}
	for i, s := range want {
		if caps.PreviewSizes[i] != s {
			t.Fatalf("size %d: want %v got %v", i, s, caps.PreviewSizes[i])
		}
	}
	if !caps.ZoomSupported || caps.MaxZoom != MaxZoom {
		t.Fatalf("zoom not advertised")
	}
}

func TestDevice_OpenErrors(t *testing.T) {
	d := New(nil, &fakeGrabber{err: errors.New("no display")}, image.Rectangle{})
	if _, err := d.Open(); err == nil {
		t.Fatalf("expected error")
	}
	d = New(nil, &fakeGrabber{screen: image.Rect(0, 0, 100, 100)}, image.Rect(200, 200, 300, 300))
	if _, err := d.Open(); err == nil {
		t.Fatalf("region outside the screen should fail")
	}
}

func TestDevice_FillPacksNV21(t *testing.T) {
	g := &fakeGrabber{screen: image.Rect(0, 0, 64, 32)}
	d := New(nil, g, image.Rectangle{})
	if _, err := d.Open(); err != nil {
		t.Fatalf("open: %v", err)
	}
	size := capture.Size{W: 16, H: 8}
	if err := d.Configure(capture.Parameters{Preview: size, FPS: capture.FPSRange{Min: 5000, Max: 5000}, Format: detect.FormatNV21}); err != nil {
		t.Fatalf("configure: %v", err)
	}
	buf := make([]byte, capture.FrameSize(size, detect.FormatNV21))
	if err := d.fill(buf, 1); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if buf[0] != 235 || buf[15] != 16 {
		t.Fatalf("expected white then black luma, got %d and %d", buf[0], buf[15])
	}
	if v, u := buf[16*8], buf[16*8+1]; v != 128 || u != 128 {
		t.Fatalf("grey input should have neutral chroma, got v=%d u=%d", v, u)
	}
	if err := d.fill(make([]byte, 5), 2); err == nil {
		t.Fatalf("short buffer should fail")
	}
}

func TestCropFor(t *testing.T) {
	b := image.Rect(100, 100, 500, 300)
	if got := cropFor(b, 0); got != b {
		t.Fatalf("zoom 0 should keep region, got %v", got)
	}
	if got, want := cropFor(b, MaxZoom), image.Rect(200, 150, 400, 250); got != want {
		t.Fatalf("max zoom: want %v got %v", want, got)
	}
}

func TestDevice_ZoomCropsGrab(t *testing.T) {
	g := &fakeGrabber{screen: image.Rect(0, 0, 40, 20)}
	d := New(nil, g, image.Rectangle{})
	d.Open()
	size := capture.Size{W: 4, H: 2}
	d.Configure(capture.Parameters{Preview: size, FPS: capture.FPSRange{Min: 5000, Max: 5000}, Format: detect.FormatGray8})
	if err := d.SetZoom(MaxZoom + 1); err == nil {
		t.Fatalf("out of range zoom should fail")
	}
	d.SetZoom(MaxZoom)
	if err := d.fill(make([]byte, 8), 1); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if want := image.Rect(10, 5, 30, 15); g.last != want {
		t.Fatalf("expected grab of %v, got %v", want, g.last)
	}
}

type nopDetector struct{}

func (nopDetector) Process(detect.Frame) ([]detect.Detection, error) { return nil, nil }
func (nopDetector) Close() error                                     { return nil }

func TestDevice_RegionChangeAppliesOnRestart(t *testing.T) {
	d := New(nil, &fakeGrabber{screen: image.Rect(0, 0, 1600, 1200)}, image.Rect(0, 0, 800, 600))
	s, err := capture.NewSession(d, nopDetector{}, nil, capture.CaptureConfig{Width: 800, Height: 600, FPS: 15})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	defer s.Release()

	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := s.Geometry().Preview; got != (capture.Size{W: 800, H: 600}) {
		t.Fatalf("first run: unexpected preview %v", got)
	}
	s.Stop()

	region := image.Rect(100, 100, 500, 400)
	d.SetRegion(region)
	if err := s.Start(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if got := s.Geometry().Preview; got != (capture.Size{W: 400, H: 300}) {
		t.Fatalf("second run: preview %v still follows the old region", got)
	}
	d.mu.Lock()
	b := d.bounds
	d.mu.Unlock()
	if b != region {
		t.Fatalf("expected bounds %v, got %v", region, b)
	}
}

func TestDevice_RefreshRequiresOpen(t *testing.T) {
	d := New(nil, &fakeGrabber{screen: image.Rect(0, 0, 100, 100)}, image.Rectangle{})
	if _, err := d.Refresh(); err == nil {
		t.Fatalf("refresh before open should fail")
	}
	d.Open()
	d.SetRegion(image.Rect(0, 0, 40, 20))
	caps, err := d.Refresh()
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if caps.PreviewSizes[0] != (capture.Size{W: 40, H: 20}) {
		t.Fatalf("refresh ignored the region: %v", caps.PreviewSizes)
	}
}
