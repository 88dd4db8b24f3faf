package engine

import (
	"sync"

	"github.com/soocke/barcode-tracker-go/domain/detect"
)

// FrameInfo describes the frame held by a FrameTap.
type FrameInfo struct {
	ID     uint64
	Width  int
	Height int
	Format detect.PixelFormat
}

// FrameTap is a detect.Detector that keeps a copy of the newest frame for
// display before handing it to the next detector. Frame buffers go back to
// the hardware after Process, so the copy is the only way for the UI to see
// a frame. Its lock is held only while copying.
type FrameTap struct {
	next detect.Detector

	mu   sync.Mutex
	data []byte
	info FrameInfo
	ok   bool
}

// NewFrameTap wraps next.
func NewFrameTap(next detect.Detector) *FrameTap {
	return &FrameTap{next: next}
}

func (t *FrameTap) Process(f detect.Frame) ([]detect.Detection, error) {
	t.mu.Lock()
	t.data = append(t.data[:0], f.Data...)
	t.info = FrameInfo{ID: f.ID, Width: f.Width, Height: f.Height, Format: f.Format}
	t.ok = true
	t.mu.Unlock()
	return t.next.Process(f)
}

func (t *FrameTap) Close() error { return t.next.Close() }

// Latest copies the newest frame into dst (grown as needed) and returns it.
// The last result is false until a frame has been seen.
func (t *FrameTap) Latest(dst []byte) ([]byte, FrameInfo, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.ok {
		return dst, FrameInfo{}, false
	}
	return append(dst[:0], t.data...), t.info, true
}

var _ detect.Detector = (*FrameTap)(nil)
