// Package tracking follows engine-assigned identities across frames and keeps
// the overlay in step with their lifecycle.
package tracking

import (
	"log/slog"

	"github.com/soocke/barcode-tracker-go/domain/detect"
	"github.com/soocke/barcode-tracker-go/domain/overlay"
)

// State of a tracked identity.
type State int

const (
	StateCreated State = iota
	StateVisible
	StateMissing
	StateDone
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateVisible:
		return "visible"
	case StateMissing:
		return "missing"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Overlay is the part of the overlay store the registry drives.
type Overlay interface {
	Add(e overlay.Entry)
	Remove(id int) bool
}

// NewItemListener is called when an identity is first seen.
type NewItemListener func(id int, p detect.Payload)

// Object is one tracked identity.
type Object struct {
	ID      int
	State   State
	Payload detect.Payload
}

// Registry maps identities to tracked objects and mirrors every Visible object
// into the overlay. It is driven from the capture worker goroutine only and has
// no lock of its own; calls made while no session is running are safe.
type Registry struct {
	logger    *slog.Logger
	overlay   Overlay
	objects   map[int]*Object
	listeners []NewItemListener
}

// NewRegistry creates an empty registry feeding ov.
func NewRegistry(logger *slog.Logger, ov Overlay) *Registry {
	return &Registry{logger: logger, overlay: ov, objects: make(map[int]*Object)}
}

// OnNewItem registers a listener for first sightings.
func (r *Registry) OnNewItem(l NewItemListener) {
	if l != nil {
		r.listeners = append(r.listeners, l)
	}
}

// Handle applies one lifecycle event.
func (r *Registry) Handle(ev detect.Event) {
	switch ev.Kind {
	case detect.EventNewItem:
		r.newItem(ev.ID, ev.Payload)
	case detect.EventUpdate:
		r.update(ev.ID, ev.Payload)
	case detect.EventMissing:
		if o, ok := r.objects[ev.ID]; ok {
			r.hide(o)
			o.State = StateMissing
		}
	case detect.EventDone:
		if o, ok := r.objects[ev.ID]; ok {
			r.hide(o)
			o.State = StateDone
			delete(r.objects, ev.ID)
		}
	default:
		r.debug("ignoring event", "kind", ev.Kind.String(), "id", ev.ID)
	}
}

func (r *Registry) newItem(id int, p *detect.Payload) {
	if _, ok := r.objects[id]; ok {
		r.debug("duplicate new item", "id", id)
		return
	}
	o := &Object{ID: id, State: StateCreated}
	if p != nil {
		o.Payload = *p
	}
	r.objects[id] = o
	for _, l := range r.listeners {
		l(id, o.Payload)
	}
}

// update makes the identity visible, creating it when the engine skipped
// NewItem.
func (r *Registry) update(id int, p *detect.Payload) {
	if p == nil {
		r.debug("update without payload", "id", id)
		return
	}
	o, ok := r.objects[id]
	if !ok {
		o = &Object{ID: id}
		r.objects[id] = o
	}
	o.Payload = *p
	o.State = StateVisible
	if r.overlay != nil {
		r.overlay.Add(overlay.Entry{ID: id, Bounds: p.Bounds, Label: p.Label})
	}
}

func (r *Registry) hide(o *Object) {
	if o.State == StateVisible && r.overlay != nil {
		r.overlay.Remove(o.ID)
	}
}

// State returns the state of a live identity.
func (r *Registry) State(id int) (State, bool) {
	o, ok := r.objects[id]
	if !ok {
		return 0, false
	}
	return o.State, true
}

// Len returns the number of live identities.
func (r *Registry) Len() int { return len(r.objects) }

// Reset drops every identity and removes their overlay entries. Only call
// it while no capture worker is running.
func (r *Registry) Reset() {
	for _, o := range r.objects {
		r.hide(o)
	}
	clear(r.objects)
}

func (r *Registry) debug(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}

var _ detect.Sink = (*Registry)(nil)
