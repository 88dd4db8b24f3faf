// Package engine adapts per-frame detectors to the capture pipeline: it turns
// the list of detections of each frame into per-identity lifecycle events.
package engine

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"slices"

	"github.com/soocke/barcode-tracker-go/domain/detect"
)

// DefaultMaxGapFrames is how many consecutive frames an identity may be
// absent before it is reported Done.
const DefaultMaxGapFrames = 3

// FrameDetector finds identities in a single frame.
type FrameDetector interface {
	Detect(f detect.Frame) ([]detect.Detection, error)
}

// FrameDetectorFunc adapts a function to FrameDetector.
type FrameDetectorFunc func(detect.Frame) ([]detect.Detection, error)

func (fn FrameDetectorFunc) Detect(f detect.Frame) ([]detect.Detection, error) { return fn(f) }

type track struct {
	missed int
}

// MultiProcessor implements detect.Detector on top of a FrameDetector. For
// every frame it emits NewItem then Update for a first sighting, Update for a
// repeat, Missing on the first absent frame and Done once an identity has been
// absent for more than MaxGapFrames frames.
type MultiProcessor struct {
	detector FrameDetector
	sink     detect.Sink
	logger   *slog.Logger
	maxGap   int
	live     map[int]*track
	closed   bool
}

// Option customises a MultiProcessor.
type Option func(*MultiProcessor)

// WithMaxGapFrames overrides DefaultMaxGapFrames.
func WithMaxGapFrames(n int) Option {
	return func(m *MultiProcessor) {
		if n >= 0 {
			m.maxGap = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(m *MultiProcessor) { m.logger = l } }

// NewMultiProcessor wraps d and delivers events to sink.
func NewMultiProcessor(d FrameDetector, sink detect.Sink, opts ...Option) *MultiProcessor {
	m := &MultiProcessor{detector: d, sink: sink, maxGap: DefaultMaxGapFrames, live: make(map[int]*track)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MultiProcessor) emit(kind detect.EventKind, id int, p *detect.Payload) {
	if m.sink != nil {
		m.sink.Handle(detect.Event{Kind: kind, ID: id, Payload: p})
	}
}

// Process runs the detector on f and emits the resulting events. Bounds are
// turned by f.Rotation so they match the upright preview. A detector error or
// a malformed result emits nothing.
func (m *MultiProcessor) Process(f detect.Frame) ([]detect.Detection, error) {
	if m.closed {
		return nil, errors.New("engine: processor closed")
	}
	dets, err := m.detector.Detect(f)
	if err != nil {
		return nil, err
	}
	seen := make(map[int]bool, len(dets))
	for _, d := range dets {
		if d.ID < 0 {
			return nil, fmt.Errorf("engine: negative identity %d", d.ID)
		}
		if seen[d.ID] {
			return nil, fmt.Errorf("engine: identity %d reported twice", d.ID)
		}
		seen[d.ID] = true
	}
	if f.Rotation%4 != 0 {
		for i := range dets {
			dets[i].Payload.Bounds = uprightRect(dets[i].Payload.Bounds, f.Width, f.Height, f.Rotation)
		}
	}

	for _, d := range dets {
		p := d.Payload
		t, ok := m.live[d.ID]
		if !ok {
			m.live[d.ID] = &track{}
			m.emit(detect.EventNewItem, d.ID, &p)
		} else {
			t.missed = 0
		}
		m.emit(detect.EventUpdate, d.ID, &p)
	}
	for _, id := range m.liveIDs() {
		if seen[id] {
			continue
		}
		t := m.live[id]
		t.missed++
		if t.missed == 1 {
			m.emit(detect.EventMissing, id, nil)
		}
		if t.missed > m.maxGap {
			delete(m.live, id)
			m.emit(detect.EventDone, id, nil)
		}
	}
	return dets, nil
}

// Live returns the number of identities not yet Done.
func (m *MultiProcessor) Live() int { return len(m.live) }

// Close reports Done for every live identity and closes the underlying
// detector when it is an io.Closer.
func (m *MultiProcessor) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	for _, id := range m.liveIDs() {
		delete(m.live, id)
		m.emit(detect.EventDone, id, nil)
	}
	if c, ok := m.detector.(io.Closer); ok {
		if err := c.Close(); err != nil {
			if m.logger != nil {
				m.logger.Warn("closing frame detector", "error", err)
			}
			return err
		}
	}
	return nil
}

// uprightRect turns r, given in a w x h frame, clockwise by quarter turns.
func uprightRect(r image.Rectangle, w, h, turns int) image.Rectangle {
	switch ((turns % 4) + 4) % 4 {
	case 1:
		return image.Rect(h-r.Max.Y, r.Min.X, h-r.Min.Y, r.Max.X)
	case 2:
		return image.Rect(w-r.Max.X, h-r.Max.Y, w-r.Min.X, h-r.Min.Y)
	case 3:
		return image.Rect(r.Min.Y, w-r.Max.X, r.Max.Y, w-r.Min.X)
	}
	return r
}

func (m *MultiProcessor) liveIDs() []int {
	ids := make([]int, 0, len(m.live))
	for id := range m.live {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

var _ detect.Detector = (*MultiProcessor)(nil)
