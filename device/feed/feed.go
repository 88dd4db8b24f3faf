// Package feed is the buffer queue and delivery loop shared by the software
// sensors: buffers are queued by the pipeline, filled on a ticker and handed
// back through the frame callback.
package feed

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/soocke/barcode-tracker-go/domain/capture"
)

// FillFunc renders frame number seq into dst.
type FillFunc func(dst []byte, seq uint64) error

// Stats counts delivery loop outcomes.
type Stats struct {
	Frames   uint64 // delivered through the callback
	Starved  uint64 // ticks with no queued buffer
	Failures uint64 // fill errors
}

// Feed implements the queue half of capture.Device.
type Feed struct {
	logger *slog.Logger
	fill   FillFunc

	mu    sync.Mutex
	queue [][]byte

	run  sync.Mutex // start/stop
	stop chan struct{}
	done chan struct{}

	seq      atomic.Uint64
	frames   atomic.Uint64
	starved  atomic.Uint64
	failures atomic.Uint64
}

// New creates a stopped feed.
func New(logger *slog.Logger, fill FillFunc) *Feed {
	return &Feed{logger: logger, fill: fill}
}

// AddBuffer queues buf for filling.
func (f *Feed) AddBuffer(buf []byte) {
	f.mu.Lock()
	f.queue = append(f.queue, buf)
	f.mu.Unlock()
}

// FlushBuffers forgets every queued buffer.
func (f *Feed) FlushBuffers() {
	f.mu.Lock()
	f.queue = nil
	f.mu.Unlock()
}

// Queued returns the number of buffers waiting to be filled.
func (f *Feed) Queued() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

func (f *Feed) pop() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queue) == 0 {
		return nil
	}
	buf := f.queue[0]
	f.queue = f.queue[1:]
	return buf
}

// Start launches the delivery loop, one frame per interval.
func (f *Feed) Start(interval time.Duration, cb capture.FrameCallback) error {
	if cb == nil {
		return errors.New("feed: nil callback")
	}
	if interval <= 0 {
		return errors.New("feed: non-positive interval")
	}
	f.run.Lock()
	defer f.run.Unlock()
	if f.stop != nil {
		return errors.New("feed: already running")
	}
	f.stop = make(chan struct{})
	f.done = make(chan struct{})
	go f.loop(interval, cb, f.stop, f.done)
	return nil
}

// Stop ends the loop and waits for it, so no callback runs after it returns.
func (f *Feed) Stop() {
	f.run.Lock()
	defer f.run.Unlock()
	if f.stop == nil {
		return
	}
	close(f.stop)
	<-f.done
	f.stop, f.done = nil, nil
}

// Running reports whether the loop is active.
func (f *Feed) Running() bool {
	f.run.Lock()
	defer f.run.Unlock()
	return f.stop != nil
}

func (f *Feed) loop(interval time.Duration, cb capture.FrameCallback, stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
		f.tick(cb)
	}
}

func (f *Feed) tick(cb capture.FrameCallback) {
	buf := f.pop()
	if buf == nil {
		f.starved.Add(1)
		return
	}
	seq := f.seq.Add(1)
	if err := f.fill(buf, seq); err != nil {
		f.failures.Add(1)
		if f.logger != nil {
			f.logger.Warn("frame fill failed", "seq", seq, "error", err)
		}
		f.AddBuffer(buf)
		return
	}
	f.frames.Add(1)
	cb(buf)
}

// Stats returns a snapshot of the counters.
func (f *Feed) Stats() Stats {
	return Stats{Frames: f.frames.Load(), Starved: f.starved.Load(), Failures: f.failures.Load()}
}
