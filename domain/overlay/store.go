// Package overlay holds the drawable entries layered over the camera preview.
// Entries live in preview coordinates; rendering and hit-testing map between
// preview space and the size of the surface last rendered to.
package overlay

import (
	"image"
	"slices"
	"sync"

	"github.com/soocke/barcode-tracker-go/domain/capture"
)

// Entry is the drawable form of one tracked identity.
type Entry struct {
	ID     int
	Bounds image.Rectangle // preview coordinates
	Label  string
}

// Center returns the centroid of the entry's bounds.
func (e Entry) Center() (x, y float64) {
	return float64(e.Bounds.Min.X+e.Bounds.Max.X) / 2, float64(e.Bounds.Min.Y+e.Bounds.Max.Y) / 2
}

// Snapshot is a consistent copy of the store taken under its lock.
type Snapshot struct {
	Entries  []Entry
	PreviewW int
	PreviewH int
	Mirror   bool
}

// Store is the set of entries drawn over the preview. Mutations come from the
// worker goroutine, reads from the UI goroutine. A single mutex guards it and
// the invalidate callback always runs after the mutex is released.
type Store struct {
	mu         sync.Mutex
	entries    []Entry // insertion order
	previewW   int
	previewH   int
	mirror     bool
	viewW      int // size of the last render target
	viewH      int
	invalidate func()
}

// NewStore creates an empty store. invalidate, if set, is called after every
// mutation to request a redraw; it must not block.
func NewStore(invalidate func()) *Store {
	return &Store{invalidate: invalidate}
}

func (s *Store) notify() {
	if s.invalidate != nil {
		s.invalidate()
	}
}

// Add inserts e, or replaces the entry with the same ID in place.
func (s *Store) Add(e Entry) {
	s.mu.Lock()
	if i := s.indexLocked(e.ID); i >= 0 {
		s.entries[i] = e
	} else {
		s.entries = append(s.entries, e)
	}
	s.mu.Unlock()
	s.notify()
}

// Remove deletes the entry with the given ID and reports whether it existed.
func (s *Store) Remove(id int) bool {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i >= 0 {
		s.entries = slices.Delete(s.entries, i, i+1)
	}
	s.mu.Unlock()
	if i >= 0 {
		s.notify()
	}
	return i >= 0
}

// Clear removes every entry.
func (s *Store) Clear() {
	s.mu.Lock()
	s.entries = nil
	s.mu.Unlock()
	s.notify()
}

// Contains reports whether an entry with the given ID exists.
func (s *Store) Contains(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexLocked(id) >= 0
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// SetCameraInfo records the preview size the entry coordinates refer to and
// whether the sensor is front-facing (drawn mirrored).
func (s *Store) SetCameraInfo(previewW, previewH int, facing capture.Facing) {
	s.mu.Lock()
	s.previewW, s.previewH = previewW, previewH
	s.mirror = facing == capture.FacingFront
	s.mu.Unlock()
	s.notify()
}

// Snapshot copies the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Entries:  slices.Clone(s.entries),
		PreviewW: s.previewW,
		PreviewH: s.previewH,
		Mirror:   s.mirror,
	}
}

func (s *Store) indexLocked(id int) int {
	return slices.IndexFunc(s.entries, func(e Entry) bool { return e.ID == id })
}
