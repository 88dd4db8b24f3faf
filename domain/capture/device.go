package capture

// HardwareQueue accepts buffers the sensor may fill. A queued buffer is owned
// by the hardware until it is handed back through the frame callback.
type HardwareQueue interface {
	AddBuffer(buf []byte)
}

// FrameCallback is invoked by the device on its own goroutine with a filled
// buffer previously passed to AddBuffer. It must not block.
type FrameCallback func(data []byte)

// Device is a physical (or emulated) sensor.
//
// StopCapture must not return while a callback is still running, and no
// callback may start after it returns. FlushBuffers makes the device forget
// every queued buffer.
type Device interface {
	HardwareQueue
	Open() (Capabilities, error)
	Configure(p Parameters) error
	StartCapture(cb FrameCallback) error
	StopCapture() error
	FlushBuffers()
	Zoom() int
	SetZoom(step int) error
	Close() error
}

// Refresher is implemented by devices whose capabilities can change while
// they stay open. Start re-reads them before resolving the geometry.
type Refresher interface {
	Refresh() (Capabilities, error)
}

// Display reports the current display rotation in quarter turns (0..3).
type Display interface {
	Rotation() (int, error)
}

// FixedDisplay is a Display that never rotates.
type FixedDisplay int

func (d FixedDisplay) Rotation() (int, error) { return int(d), nil }
