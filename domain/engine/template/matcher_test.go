package template

import (
	"image"
	"math"
	"math/rand"
	"testing"

	"github.com/soocke/barcode-tracker-go/domain/detect"
)

// noiseFrame builds an NV21 frame of random luma with neutral chroma.
func noiseFrame(rng *rand.Rand, w, h int) detect.Frame {
	data := make([]byte, w*h*3/2)
	for i := 0; i < w*h; i++ {
		data[i] = byte(rng.Intn(256))
	}
	for i := w * h; i < len(data); i++ {
		data[i] = 128
	}
	return detect.Frame{Data: data, Width: w, Height: h, Format: detect.FormatNV21}
}

func crop(f detect.Frame, r image.Rectangle) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, r.Dx(), r.Dy()))
	for y := 0; y < r.Dy(); y++ {
		copy(g.Pix[y*g.Stride:], f.Data[(r.Min.Y+y)*f.Width+r.Min.X:][:r.Dx()])
	}
	return g
}

func TestMatcher_FindsTemplate(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	frame := noiseFrame(rng, 64, 48)
	where := image.Rect(20, 10, 36, 26)
	other := noiseFrame(rng, 16, 16)

	m, err := New([]Template{
		{ID: 1, Label: "target", Image: crop(frame, where)},
		{ID: 2, Label: "absent", Image: crop(other, image.Rect(0, 0, 16, 16))},
	}, Options{Stride: 2, Refine: true})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	dets, err := m.Detect(frame)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(dets) != 1 {
		t.Fatalf("expected exactly one detection, got %+v", dets)
	}
	d := dets[0]
	if d.ID != 1 || d.Payload.Label != "target" || d.Payload.Bounds != where {
		t.Fatalf("unexpected detection %+v", d)
	}
	if d.Payload.Score < 0.99 {
		t.Fatalf("expected near-perfect score, got %f", d.Payload.Score)
	}
}

// blobFrame is faint noise with a smooth bright blob centred on (cx, cy), so
// windows near the blob correlate well with it.
func blobFrame(rng *rand.Rand, w, h, cx, cy int) detect.Frame {
	f := noiseFrame(rng, w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d2 := float64((x-cx)*(x-cx) + (y-cy)*(y-cy))
			f.Data[y*w+x] = byte(40 + rng.Intn(10) + int(150*math.Exp(-d2/32)))
		}
	}
	return f
}

func TestMatcher_RefineFindsOddOffset(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	frame := blobFrame(rng, 48, 48, 19, 15)
	where := image.Rect(13, 9, 25, 21)
	m, err := New([]Template{{ID: 0, Image: crop(frame, where)}}, Options{Stride: 4, Refine: true, Threshold: 0.9})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	dets, _ := m.Detect(frame)
	if len(dets) != 1 || dets[0].Payload.Bounds != where {
		t.Fatalf("expected refined match at %v, got %+v", where, dets)
	}
}

func TestMatcher_Errors(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	if _, err := New([]Template{{ID: 1, Image: img}, {ID: 1, Image: img}}, Options{}); err == nil {
		t.Fatalf("duplicate ids should fail")
	}
	if _, err := New([]Template{{ID: -1, Image: img}}, Options{}); err == nil {
		t.Fatalf("negative id should fail")
	}
	if _, err := New([]Template{{ID: 1}}, Options{}); err == nil {
		t.Fatalf("missing image should fail")
	}
	m, err := New([]Template{{ID: 1, Image: img}}, Options{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := m.Detect(detect.Frame{Data: make([]byte, 3), Width: 4, Height: 4}); err == nil {
		t.Fatalf("short frame should fail")
	}
}

func TestMatcher_SearchPanicIsAnError(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	m, err := New([]Template{{ID: 1, Image: img}, {ID: 2, Image: img}}, Options{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	m.entries[1].patches = []*patch{nil}
	rng := rand.New(rand.NewSource(3))
	dets, err := m.Detect(noiseFrame(rng, 16, 16))
	if err == nil || dets != nil {
		t.Fatalf("expected an error and no detections, got %v %+v", err, dets)
	}
}

func TestPatch_Scaled(t *testing.T) {
	base := newPatch(make([]float32, 16), 4, 4)
	if p := base.scaled(0.5); p == nil || p.W != 2 || p.H != 2 {
		t.Fatalf("expected 2x2 patch, got %+v", p)
	}
	if p := base.scaled(0.25); p != nil {
		t.Fatalf("1x1 patch should be rejected")
	}
	if base.scaled(1) != base {
		t.Fatalf("unit scale should return the base patch")
	}
}
