package detect

// EventKind tags a per-identity lifecycle event.
type EventKind int

const (
	EventNewItem EventKind = iota + 1
	EventUpdate
	EventMissing
	EventDone
)

func (k EventKind) String() string {
	switch k {
	case EventNewItem:
		return "new"
	case EventUpdate:
		return "update"
	case EventMissing:
		return "missing"
	case EventDone:
		return "done"
	default:
		return "unknown"
	}
}

// Event is delivered by an engine for a single identity. Payload is nil for
// Missing and Done.
type Event struct {
	Kind    EventKind
	ID      int
	Payload *Payload
}

// Sink consumes lifecycle events. Engines call Handle from the goroutine that
// invoked Process.
type Sink interface {
	Handle(ev Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

func (f SinkFunc) Handle(ev Event) { f(ev) }

// Detector is the detection engine capability consumed by the capture
// session. Process is called from exactly one goroutine; Close is called once
// after that goroutine has exited.
type Detector interface {
	Process(frame Frame) ([]Detection, error)
	Close() error
}
