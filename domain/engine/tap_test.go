package engine

import (
	"testing"

	"github.com/soocke/barcode-tracker-go/domain/detect"
)

type countingDetector struct{ calls, closed int }

func (c *countingDetector) Process(detect.Frame) ([]detect.Detection, error) {
	c.calls++
	return nil, nil
}

func (c *countingDetector) Close() error { c.closed++; return nil }

func TestFrameTap_CopiesNewestFrame(t *testing.T) {
	next := &countingDetector{}
	tap := NewFrameTap(next)
	if _, _, ok := tap.Latest(nil); ok {
		t.Fatalf("no frame yet")
	}
	src := []byte{1, 2, 3, 4}
	tap.Process(detect.Frame{Data: src, Width: 2, Height: 2, Format: detect.FormatGray8, ID: 9})
	src[0] = 99 // the pipeline reuses the buffer

	got, info, ok := tap.Latest(make([]byte, 0, 1))
	if !ok || info.ID != 9 || info.Width != 2 || got[0] != 1 || len(got) != 4 {
		t.Fatalf("unexpected copy %v %+v %v", got, info, ok)
	}
	if next.calls != 1 {
		t.Fatalf("frame not forwarded")
	}
	tap.Close()
	if next.closed != 1 {
		t.Fatalf("close not forwarded")
	}
}
