package capture

import (
	"errors"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/soocke/barcode-tracker-go/domain/detect"
)

// Session owns a sensor, its buffer pool, the frame mailbox and the worker
// goroutine that feeds the detection engine.
//
// Start, Stop, Release and DoZoom are meant for the UI goroutine. Only Stop
// and Release block: Stop waits for the worker to exit without a timeout, so
// a detector call that never returns stalls it.
type Session struct {
	id          string
	logger      *slog.Logger
	device      Device
	detector    detect.Detector
	display     Display
	cfg         CaptureConfig
	bufferCount int
	format      detect.PixelFormat
	tolerance   float64
	now         func() time.Time

	state atomic.Int32
	proc  atomic.Pointer[frameProcessor]

	mu       sync.Mutex // device handle and the start/stop/release sequence
	released bool
	opened   bool
	caps     Capabilities
	geometry ResolvedGeometry
}

// Option customises a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option { return func(s *Session) { s.logger = l } }

// WithBufferCount sets how many frame buffers cycle through the hardware.
func WithBufferCount(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.bufferCount = n
		}
	}
}

// WithPixelFormat sets the packed format requested from the sensor.
func WithPixelFormat(f detect.PixelFormat) Option { return func(s *Session) { s.format = f } }

// WithAspectTolerance overrides DefaultAspectTolerance.
func WithAspectTolerance(t float64) Option {
	return func(s *Session) {
		if t > 0 {
			s.tolerance = t
		}
	}
}

// WithClock replaces time.Now for frame timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSession validates cfg and builds an idle session. display may be nil,
// meaning an unrotated display.
func NewSession(device Device, detector detect.Detector, display Display, cfg CaptureConfig, opts ...Option) (*Session, error) {
	if device == nil || detector == nil {
		return nil, newError(ErrIllegalState, "new session", errors.New("device and detector are required"))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if display == nil {
		display = FixedDisplay(0)
	}
	s := &Session{
		id:          uuid.NewString(),
		device:      device,
		detector:    detector,
		display:     display,
		cfg:         cfg,
		bufferCount: DefaultBufferCount,
		format:      detect.FormatNV21,
		tolerance:   DefaultAspectTolerance,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s, nil
}

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id }

// State reports the lifecycle state without blocking.
func (s *Session) State() State { return State(s.state.Load()) }

// Facing reports the facing requested for this session.
func (s *Session) Facing() Facing { return s.cfg.Facing }

// Geometry returns the geometry resolved by the last successful Start.
func (s *Session) Geometry() ResolvedGeometry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.geometry
}

func (s *Session) setState(next State) {
	prev := State(s.state.Swap(int32(next)))
	if prev != next {
		s.logger.Debug("capture state transition", "session", s.id, "from", prev.String(), "to", next.String())
	}
}

// Start opens and configures the sensor, registers the buffers, begins
// capture and spawns the worker. Starting a running session is a no-op.
// On failure the session stays idle and the device is closed.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return newError(ErrIllegalState, "start", errors.New("session released"))
	}
	if s.State() == StateRunning {
		return nil
	}
	s.setState(StateStarting)
	if err := s.startLocked(); err != nil {
		if s.opened {
			if cerr := s.device.Close(); cerr != nil {
				s.logger.Warn("closing device after failed start", "session", s.id, "error", cerr)
			}
			s.opened = false
		}
		s.setState(StateIdle)
		s.logger.Error("capture start failed", "session", s.id, "error", err)
		return err
	}
	s.setState(StateRunning)
	return nil
}

func (s *Session) startLocked() error {
	if !s.opened {
		caps, err := s.device.Open()
		if err != nil {
			return newError(ErrDevice, "open", err)
		}
		s.caps, s.opened = caps, true
	} else if r, ok := s.device.(Refresher); ok {
		caps, err := r.Refresh()
		if err != nil {
			return newError(ErrDevice, "refresh", err)
		}
		s.caps = caps
	}
	turns, err := s.display.Rotation()
	if err != nil {
		return newError(ErrDevice, "display rotation", err)
	}
	geom, err := ResolveGeometry(s.cfg, s.caps, turns, s.tolerance)
	if err != nil {
		return err
	}
	params := Parameters{
		Preview:        geom.Preview,
		Picture:        geom.Picture,
		FPS:            geom.FPS,
		Format:         s.format,
		DisplayDegrees: geom.DisplayDegrees,
		FocusMode:      selectMode(s.cfg.FocusMode, s.caps.FocusModes),
		FlashMode:      selectMode(s.cfg.FlashMode, s.caps.FlashModes),
	}
	if s.cfg.FocusMode != "" && params.FocusMode == "" {
		s.logger.Info("focus mode not supported", "session", s.id, "mode", s.cfg.FocusMode)
	}
	if s.cfg.FlashMode != "" && params.FlashMode == "" {
		s.logger.Info("flash mode not supported", "session", s.id, "mode", s.cfg.FlashMode)
	}
	if err := s.device.Configure(params); err != nil {
		return newError(ErrDevice, "configure", err)
	}
	pool, err := NewBufferPool(s.bufferCount, geom.Preview, s.format)
	if err != nil {
		return err
	}
	pool.Register(s.device)
	proc := newFrameProcessor(s.id, s.logger, s.detector, pool, geom, s.format, s.now)
	if err := s.device.StartCapture(proc.onFrame); err != nil {
		s.device.FlushBuffers()
		return newError(ErrDevice, "start capture", err)
	}
	proc.start()
	s.proc.Store(proc)
	s.geometry = geom
	s.logger.Info("capture started",
		"session", s.id,
		"preview", geom.Preview.String(),
		"fps_min", geom.FPS.Min,
		"fps_max", geom.FPS.Max,
		"rotation", geom.Rotation,
		"buffers", s.bufferCount,
	)
	return nil
}

// Stop deactivates the mailbox, waits for the worker to exit, then stops
// hardware capture and flushes the queue. Stopping an idle session is a no-op.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.State() != StateRunning {
		return nil
	}
	s.setState(StateStopping)
	proc := s.proc.Load()
	proc.mailbox.Deactivate()
	<-proc.done
	err := s.device.StopCapture()
	s.device.FlushBuffers()
	s.setState(StateIdle)

	ps := proc.pool.Stats()
	processed, _, faults, _ := proc.stats()
	s.logger.Info("capture stopped",
		"session", s.id,
		"processed", processed,
		"faults", faults,
		"dropped", proc.mailbox.Stats().Dropped,
		"delivered", ps.Delivered,
		"returned", ps.Returned,
	)
	if err != nil {
		return newError(ErrDevice, "stop capture", err)
	}
	return nil
}

// Release frees the detector and the device. The session cannot be started
// again. Releasing a running session is rejected; releasing twice is a no-op.
func (s *Session) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return nil
	}
	if st := s.State(); st != StateIdle {
		return newError(ErrIllegalState, "release", errors.New("session is "+st.String()))
	}
	s.released = true
	var errs []error
	if err := s.detector.Close(); err != nil {
		errs = append(errs, err)
	}
	if s.opened {
		if err := s.device.Close(); err != nil {
			errs = append(errs, newError(ErrDevice, "close", err))
		}
		s.opened = false
	}
	s.logger.Info("capture released", "session", s.id)
	return errors.Join(errs...)
}

// DoZoom maps a pinch scale factor to a zoom step and applies it. Scale above
// one zooms in by scale*maxZoom/10 steps; scale at or below one scales the
// current step. It returns the applied step, or 0 when zoom is unsupported.
func (s *Session) DoZoom(scale float64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.opened || !s.caps.ZoomSupported || s.caps.MaxZoom <= 0 {
		return 0
	}
	current := s.device.Zoom()
	maxZoom := float64(s.caps.MaxZoom)
	var next float64
	if scale > 1 {
		next = float64(current) + scale*maxZoom/10
	} else {
		next = float64(current) * scale
	}
	step := int(math.Round(next))
	step = min(max(step, 0), s.caps.MaxZoom)
	if err := s.device.SetZoom(step); err != nil {
		s.logger.Warn("zoom failed", "session", s.id, "step", step, "error", err)
		return current
	}
	return step
}

// Stats returns pipeline counters of the current (or last) capture run.
func (s *Session) Stats() SessionStats {
	st := SessionStats{State: s.State()}
	proc := s.proc.Load()
	if proc == nil {
		return st
	}
	st.Processed, st.Detections, st.Faults, st.LastFrame = proc.stats()
	st.Pool = proc.pool.Stats()
	st.Mailbox = proc.mailbox.Stats()
	return st
}
