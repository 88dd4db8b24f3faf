package capture

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/soocke/barcode-tracker-go/domain/detect"
)

// frameProcessor owns the worker goroutine of one capture run. The hardware
// callback feeds it through onFrame; the worker drains the mailbox and is the
// only caller of the detector.
type frameProcessor struct {
	sessionID string
	logger    *slog.Logger
	detector  detect.Detector
	pool      *BufferPool
	mailbox   *Mailbox
	geometry  ResolvedGeometry
	format    detect.PixelFormat
	started   time.Time
	now       func() time.Time
	limiter   *rate.Limiter

	nextID     atomic.Uint64
	processed  atomic.Uint64
	detections atomic.Uint64
	faults     atomic.Uint64
	lastFrame  atomic.Uint64
	done       chan struct{}
}

func newFrameProcessor(sessionID string, logger *slog.Logger, detector detect.Detector, pool *BufferPool, geometry ResolvedGeometry, format detect.PixelFormat, now func() time.Time) *frameProcessor {
	p := &frameProcessor{
		sessionID: sessionID,
		logger:    logger,
		detector:  detector,
		pool:      pool,
		geometry:  geometry,
		format:    format,
		now:       now,
		started:   now(),
		limiter:   rate.NewLimiter(rate.Every(time.Second), 3),
		done:      make(chan struct{}),
	}
	p.mailbox = NewMailbox(pool.Return)
	return p
}

// onFrame runs on the device goroutine. It only claims the buffer and
// deposits it in the mailbox.
func (p *frameProcessor) onFrame(data []byte) {
	fb, ok := p.pool.Claim(data)
	if !ok {
		if p.logger != nil {
			p.logger.Debug("skipping frame: unknown buffer", "session", p.sessionID, "bytes", len(data))
		}
		return
	}
	p.mailbox.Publish(PendingFrame{
		Buffer:    fb,
		ID:        p.nextID.Add(1),
		Timestamp: p.now().Sub(p.started),
	})
}

func (p *frameProcessor) start() { go p.run() }

func (p *frameProcessor) run() {
	defer close(p.done)
	for {
		f, ok := p.mailbox.Take()
		if !ok {
			return
		}
		p.process(f)
	}
}

// process hands one frame to the detector. The buffer goes back to the
// hardware queue whatever the detector does.
func (p *frameProcessor) process(f PendingFrame) {
	defer p.pool.Return(f.Buffer)
	defer func() {
		if r := recover(); r != nil {
			p.fault(f.ID, fmt.Errorf("%w: panic: %v", ErrEngineFault, r), string(debug.Stack()))
		}
	}()
	f.Buffer.transfer(ownerMailbox, ownerWorker)
	p.lastFrame.Store(f.ID)

	dets, err := p.detector.Process(detect.Frame{
		Data:      f.Buffer.Bytes(),
		Width:     p.geometry.Preview.W,
		Height:    p.geometry.Preview.H,
		Format:    p.format,
		ID:        f.ID,
		Timestamp: f.Timestamp,
		Rotation:  p.geometry.Rotation,
	})
	if err != nil {
		p.fault(f.ID, fmt.Errorf("%w: %w", ErrEngineFault, err), "")
		return
	}
	for _, d := range dets {
		if d.ID < 0 {
			p.fault(f.ID, fmt.Errorf("%w: negative identity %d", ErrEngineFault, d.ID), "")
			return
		}
	}
	p.processed.Add(1)
	p.detections.Add(uint64(len(dets)))
}

func (p *frameProcessor) fault(frameID uint64, err error, stack string) {
	n := p.faults.Add(1)
	if p.logger == nil || !p.limiter.Allow() {
		return
	}
	attrs := []any{"session", p.sessionID, "frame", frameID, "faults", n, "error", err}
	if stack != "" {
		attrs = append(attrs, "stack", stack)
	}
	p.logger.Warn("detector failed on frame", attrs...)
}

func (p *frameProcessor) stats() (processed, detections, faults, last uint64) {
	return p.processed.Load(), p.detections.Load(), p.faults.Load(), p.lastFrame.Load()
}
