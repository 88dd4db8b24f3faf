package model

import (
	"sync/atomic"

	"github.com/soocke/barcode-tracker-go/domain/overlay"
)

// SelectionModel holds the overlay entry the user last picked. The zero value
// means nothing is selected and is usable. Concurrency-safe: the result
// callback may read it off the UI goroutine.
type SelectionModel struct {
	selected atomic.Pointer[overlay.Entry]
	count    atomic.Uint64
}

// Select stores e as the current selection.
func (m *SelectionModel) Select(e overlay.Entry) {
	if m == nil {
		return
	}
	m.selected.Store(&e)
	m.count.Add(1)
}

// Clear drops the selection.
func (m *SelectionModel) Clear() {
	if m == nil {
		return
	}
	m.selected.Store(nil)
}

// Selected returns the current selection.
func (m *SelectionModel) Selected() (overlay.Entry, bool) {
	if m == nil {
		return overlay.Entry{}, false
	}
	e := m.selected.Load()
	if e == nil {
		return overlay.Entry{}, false
	}
	return *e, true
}

// Count returns how many selections have been made.
func (m *SelectionModel) Count() uint64 {
	if m == nil {
		return 0
	}
	return m.count.Load()
}
