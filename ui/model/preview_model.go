package model

import "sync/atomic"

// PreviewModel tracks the two conditions capture needs before it may start:
// the user asked for it and a render surface exists. The zero value has
// neither and is usable.
type PreviewModel struct {
	requested atomic.Bool
	surface   atomic.Bool
}

// Requested reports whether capture was asked for.
func (m *PreviewModel) Requested() bool { return m != nil && m.requested.Load() }

// SetRequested stores the request flag.
func (m *PreviewModel) SetRequested(b bool) {
	if m != nil {
		m.requested.Store(b)
	}
}

// SurfaceAvailable reports whether a render surface exists.
func (m *PreviewModel) SurfaceAvailable() bool { return m != nil && m.surface.Load() }

// SetSurfaceAvailable stores the surface flag.
func (m *PreviewModel) SetSurfaceAvailable(b bool) {
	if m != nil {
		m.surface.Store(b)
	}
}

// Ready reports whether both conditions hold.
func (m *PreviewModel) Ready() bool { return m.Requested() && m.SurfaceAvailable() }
