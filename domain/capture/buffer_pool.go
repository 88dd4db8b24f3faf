package capture

import (
	"fmt"
	"sync/atomic"

	"github.com/soocke/barcode-tracker-go/domain/detect"
)

// DefaultBufferCount is the number of frame buffers cycled through the
// hardware queue: one being filled, one pending, one being processed and one
// spare.
const DefaultBufferCount = 4

type owner int32

const (
	ownerHardware owner = iota
	ownerMailbox
	ownerWorker
)

// FrameBuffer is one preallocated buffer. Exactly one party owns it at a
// time: the hardware queue, the mailbox or the worker.
type FrameBuffer struct {
	data  []byte
	index int
	owner atomic.Int32
}

// Bytes returns the backing slice. Only the current owner may touch it.
func (b *FrameBuffer) Bytes() []byte { return b.data }

// Index is the buffer's position in its pool.
func (b *FrameBuffer) Index() int { return b.index }

func (b *FrameBuffer) transfer(from, to owner) bool {
	return b.owner.CompareAndSwap(int32(from), int32(to))
}

// PoolStats counts buffer hand-offs between the hardware and the pipeline.
// After a clean stop Delivered equals Returned.
type PoolStats struct {
	Buffers       int
	Delivered     uint64 // claimed from hardware callbacks
	Returned      uint64 // handed back to the hardware queue
	DoubleReturns uint64
	Unknown       uint64 // callback data that matched no pool buffer
}

// BufferPool preallocates the frame buffers for one capture run. It never
// allocates after construction. The lookup table is immutable once built so
// the pool needs no lock; ownership changes are atomic.
type BufferPool struct {
	buffers []*FrameBuffer
	byAddr  map[*byte]*FrameBuffer
	size    int
	queue   HardwareQueue

	delivered     atomic.Uint64
	returned      atomic.Uint64
	doubleReturns atomic.Uint64
	unknown       atomic.Uint64
}

// FrameSize returns ceil(w*h*bpp/8) for the given resolution and format.
func FrameSize(size Size, format detect.PixelFormat) int {
	bits := size.W * size.H * format.BitsPerPixel()
	return (bits + 7) / 8
}

// NewBufferPool allocates n buffers sized for size in format.
func NewBufferPool(n int, size Size, format detect.PixelFormat) (*BufferPool, error) {
	if n <= 0 {
		n = DefaultBufferCount
	}
	frameSize := FrameSize(size, format)
	if frameSize <= 0 {
		return nil, newError(ErrBufferInvariant, "allocate buffers", fmt.Errorf("size %v format %v yields %d bytes", size, format, frameSize))
	}
	p := &BufferPool{
		buffers: make([]*FrameBuffer, 0, n),
		byAddr:  make(map[*byte]*FrameBuffer, n),
		size:    frameSize,
	}
	for i := 0; i < n; i++ {
		data := make([]byte, frameSize)
		if len(data) != frameSize || cap(data) != frameSize {
			return nil, newError(ErrBufferInvariant, "allocate buffers", fmt.Errorf("buffer %d has len=%d cap=%d, want %d", i, len(data), cap(data), frameSize))
		}
		addr := &data[0]
		if _, dup := p.byAddr[addr]; dup {
			return nil, newError(ErrBufferInvariant, "allocate buffers", fmt.Errorf("buffer %d aliases another buffer", i))
		}
		fb := &FrameBuffer{data: data, index: i}
		p.buffers = append(p.buffers, fb)
		p.byAddr[addr] = fb
	}
	return p, nil
}

// FrameBytes is the size of every buffer in the pool.
func (p *BufferPool) FrameBytes() int { return p.size }

// Register hands every buffer to the hardware queue. Called once, before
// capture starts.
func (p *BufferPool) Register(q HardwareQueue) {
	p.queue = q
	for _, b := range p.buffers {
		b.owner.Store(int32(ownerHardware))
		q.AddBuffer(b.data)
	}
}

// Claim maps a slice delivered by the hardware back to its buffer and moves
// ownership to the mailbox. It reports false for data the pool does not know
// or for a buffer the pool did not believe was queued.
func (p *BufferPool) Claim(data []byte) (*FrameBuffer, bool) {
	if len(data) == 0 {
		p.unknown.Add(1)
		return nil, false
	}
	fb, ok := p.byAddr[&data[0]]
	if !ok || !fb.transfer(ownerHardware, ownerMailbox) {
		p.unknown.Add(1)
		return nil, false
	}
	p.delivered.Add(1)
	return fb, true
}

// Return hands fb back to the hardware queue. A buffer already queued is not
// queued twice; the attempt is counted instead.
func (p *BufferPool) Return(fb *FrameBuffer) {
	if fb == nil {
		return
	}
	if prev := owner(fb.owner.Swap(int32(ownerHardware))); prev == ownerHardware {
		p.doubleReturns.Add(1)
		return
	}
	p.returned.Add(1)
	if p.queue != nil {
		p.queue.AddBuffer(fb.data)
	}
}

// Stats returns a snapshot of the hand-off counters.
func (p *BufferPool) Stats() PoolStats {
	return PoolStats{
		Buffers:       len(p.buffers),
		Delivered:     p.delivered.Load(),
		Returned:      p.returned.Load(),
		DoubleReturns: p.doubleReturns.Load(),
		Unknown:       p.unknown.Load(),
	}
}
