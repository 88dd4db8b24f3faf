package capture

import (
	"errors"
	"testing"

	"github.com/soocke/barcode-tracker-go/domain/detect"
)

type recordingQueue struct{ added [][]byte }

func (q *recordingQueue) AddBuffer(b []byte) { q.added = append(q.added, b) }

func TestFrameSize(t *testing.T) {
	tests := []struct {
		size   Size
		format detect.PixelFormat
		want   int
	}{
		{Size{640, 480}, detect.FormatNV21, 460800},
		{Size{3, 3}, detect.FormatNV21, 14}, // 108 bits rounds up
		{Size{320, 240}, detect.FormatGray8, 76800},
	}
	for _, tc := range tests {
		if got := FrameSize(tc.size, tc.format); got != tc.want {
			t.Fatalf("FrameSize(%v,%v)=%d want %d", tc.size, tc.format, got, tc.want)
		}
	}
}

func TestNewBufferPool_RejectsEmptyFrame(t *testing.T) {
	_, err := NewBufferPool(4, Size{0, 480}, detect.FormatNV21)
	if !errors.Is(err, ErrBufferInvariant) {
		t.Fatalf("expected buffer invariant error, got %v", err)
	}
}

func TestBufferPool_RegisterClaimReturn(t *testing.T) {
	p, err := NewBufferPool(3, Size{8, 8}, detect.FormatNV21)
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	if p.FrameBytes() != 96 {
		t.Fatalf("expected 96 bytes per buffer, got %d", p.FrameBytes())
	}
	q := &recordingQueue{}
	p.Register(q)
	if len(q.added) != 3 {
		t.Fatalf("expected 3 registered buffers, got %d", len(q.added))
	}

	fb, ok := p.Claim(q.added[1])
	if !ok || fb.Index() != 1 {
		t.Fatalf("claim failed: ok=%v fb=%v", ok, fb)
	}
	// claiming the same buffer again means the hardware handed it out twice
	if _, ok := p.Claim(q.added[1]); ok {
		t.Fatalf("second claim of an unqueued buffer should fail")
	}
	if _, ok := p.Claim(make([]byte, 96)); ok {
		t.Fatalf("foreign buffer should not be claimed")
	}
	if _, ok := p.Claim(nil); ok {
		t.Fatalf("empty data should not be claimed")
	}

	p.Return(fb)
	if len(q.added) != 4 || &q.added[3][0] != &fb.Bytes()[0] {
		t.Fatalf("returned buffer not re-queued")
	}
	p.Return(fb)
	if len(q.added) != 4 {
		t.Fatalf("double return must not re-queue")
	}

	st := p.Stats()
	if st.Buffers != 3 || st.Delivered != 1 || st.Returned != 1 || st.DoubleReturns != 1 || st.Unknown != 3 {
		t.Fatalf("unexpected stats: %+v", st)
	}
}

func TestBufferPool_DistinctBuffers(t *testing.T) {
	p, err := NewBufferPool(DefaultBufferCount, Size{4, 4}, detect.FormatGray8)
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	q := &recordingQueue{}
	p.Register(q)
	seen := map[*byte]bool{}
	for _, b := range q.added {
		if len(b) != 16 || cap(b) != 16 {
			t.Fatalf("buffer len=%d cap=%d", len(b), cap(b))
		}
		if seen[&b[0]] {
			t.Fatalf("buffers alias each other")
		}
		seen[&b[0]] = true
	}
}
