package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/soocke/barcode-tracker-go/domain/detect"
)

func TestFitSize(t *testing.T) {
	tests := []struct {
		w, h, maxW, maxH int
		wantW, wantH     int
	}{
		{640, 480, 800, 600, 640, 480},
		{1280, 720, 800, 600, 800, 450},
		{480, 640, 800, 600, 450, 600},
		{100, 100, 0, 0, 1, 1},
	}
	for _, tc := range tests {
		w, h := FitSize(tc.w, tc.h, tc.maxW, tc.maxH)
		if w != tc.wantW || h != tc.wantH {
			t.Fatalf("FitSize(%d,%d,%d,%d)=%dx%d want %dx%d", tc.w, tc.h, tc.maxW, tc.maxH, w, h, tc.wantW, tc.wantH)
		}
	}
}

func TestScaleToFit(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 200, 100))
	for i := range src.Pix {
		src.Pix[i] = 200
	}
	out := ScaleToFit(src, 100, 100)
	if b := out.Bounds(); b.Dx() != 100 || b.Dy() != 50 {
		t.Fatalf("expected 100x50, got %v", b)
	}
	if r, _, _, _ := out.At(50, 25).RGBA(); r>>8 < 199 || r>>8 > 201 {
		t.Fatalf("uniform source should stay uniform, got %d", r>>8)
	}
	if ScaleToFit(src, 400, 400) != image.Image(src) {
		t.Fatalf("fitting source should be returned as is")
	}
}

func TestFrameToRGBA_GreyAndMirror(t *testing.T) {
	w, h := 4, 2
	data := make([]byte, w*h*3/2)
	data[0] = 200 // top-left luma
	for i := w * h; i < len(data); i++ {
		data[i] = 128
	}
	img := FrameToRGBA(nil, data, w, h, detect.FormatGray8, false)
	if got := img.RGBAAt(0, 0); got != (color.RGBA{200, 200, 200, 255}) {
		t.Fatalf("gray pixel: %v", got)
	}
	reused := FrameToRGBA(img, data, w, h, detect.FormatGray8, true)
	if reused != img {
		t.Fatalf("destination of the right size should be reused")
	}
	if got := img.RGBAAt(w-1, 0); got.R != 200 {
		t.Fatalf("mirrored pixel should move to the right edge: %v", got)
	}
}

func TestFrameToRGBA_NV21Colour(t *testing.T) {
	w, h := 2, 2
	// pure red in BT.601 studio range: Y=81 V=240 U=90
	data := []byte{81, 81, 81, 81, 240, 90}
	img := FrameToRGBA(nil, data, w, h, detect.FormatNV21, false)
	got := img.RGBAAt(1, 1)
	if got.R < 250 || got.G > 5 || got.B > 5 {
		t.Fatalf("expected red, got %v", got)
	}
}

func TestFrameToRGBA_ShortFrame(t *testing.T) {
	if img := FrameToRGBA(nil, make([]byte, 3), 2, 2, detect.FormatNV21, false); img != nil {
		t.Fatalf("short frame should not produce an image")
	}
}

func TestEncodePNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 3))
	data := EncodePNG(img)
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil || decoded.Bounds() != img.Bounds() {
		t.Fatalf("decode: %v", err)
	}
	if EncodePNG(nil) != nil {
		t.Fatalf("nil image should encode to nil")
	}
}

func TestRotate(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	src.Set(0, 0, color.RGBA{R: 255, A: 255}) // top-left marker

	if Rotate(src, 0) != src || Rotate(src, 360) != src {
		t.Fatalf("zero turns should return the source")
	}
	cases := []struct {
		deg    int
		w, h   int
		px, py int
	}{
		{90, 2, 3, 1, 0},
		{180, 3, 2, 2, 1},
		{270, 2, 3, 0, 2},
		{-90, 2, 3, 0, 2},
	}
	for _, c := range cases {
		got := Rotate(src, c.deg)
		if got.Bounds().Dx() != c.w || got.Bounds().Dy() != c.h {
			t.Fatalf("%d: size %v", c.deg, got.Bounds())
		}
		if r := got.RGBAAt(c.px, c.py).R; r != 255 {
			t.Fatalf("%d: marker not at (%d,%d)", c.deg, c.px, c.py)
		}
	}
}
