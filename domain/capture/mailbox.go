package capture

import (
	"sync"
	"sync/atomic"
)

// MailboxStats counts mailbox traffic.
type MailboxStats struct {
	Published uint64
	Dropped   uint64 // replaced before the worker took them
	Taken     uint64
}

// Mailbox is a single-slot exchange between the hardware callback and the
// worker. A new frame replaces an unconsumed one (drop-oldest), so the worker
// always sees the freshest frame and no backlog builds up.
//
// The slot is a channel of capacity one. mu serialises publishers and
// deactivation so replace-then-store is atomic; the consumer never takes mu.
type Mailbox struct {
	mu      sync.Mutex
	slot    chan PendingFrame
	done    chan struct{}
	closed  bool
	recycle func(*FrameBuffer)

	published atomic.Uint64
	dropped   atomic.Uint64
	taken     atomic.Uint64
}

// NewMailbox creates an active mailbox. recycle receives buffers of frames
// that are dropped or arrive after deactivation.
func NewMailbox(recycle func(*FrameBuffer)) *Mailbox {
	return &Mailbox{
		slot:    make(chan PendingFrame, 1),
		done:    make(chan struct{}),
		recycle: recycle,
	}
}

// Publish stores f, returning any unconsumed frame's buffer to the pool
// first. It never blocks on the consumer.
func (m *Mailbox) Publish(f PendingFrame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		m.recycleLocked(f.Buffer)
		return
	}
	select {
	case old := <-m.slot:
		m.dropped.Add(1)
		m.recycleLocked(old.Buffer)
	default:
	}
	// Only the consumer removes from the slot and publishers hold mu, so
	// the slot is empty here and the send cannot block.
	m.slot <- f
	m.published.Add(1)
}

// Take blocks until a frame is available or the mailbox is deactivated. The
// second result is false once deactivated.
func (m *Mailbox) Take() (PendingFrame, bool) {
	select {
	case <-m.done:
		return PendingFrame{}, false
	default:
	}
	select {
	case <-m.done:
		return PendingFrame{}, false
	case f := <-m.slot:
		m.taken.Add(1)
		return f, true
	}
}

// Deactivate wakes a blocked Take and returns any pending buffer to the
// pool. Safe to call more than once.
func (m *Mailbox) Deactivate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	close(m.done)
	select {
	case old := <-m.slot:
		m.recycleLocked(old.Buffer)
	default:
	}
}

// Pending reports whether an unconsumed frame sits in the slot.
func (m *Mailbox) Pending() bool { return len(m.slot) > 0 }

// Stats returns a snapshot of the counters.
func (m *Mailbox) Stats() MailboxStats {
	return MailboxStats{
		Published: m.published.Load(),
		Dropped:   m.dropped.Load(),
		Taken:     m.taken.Load(),
	}
}

func (m *Mailbox) recycleLocked(fb *FrameBuffer) {
	if m.recycle != nil && fb != nil {
		m.recycle(fb)
	}
}
