package capture

import (
	"sync"
	"testing"
	"time"
)

func TestMailbox_DropOldest(t *testing.T) {
	var recycled []*FrameBuffer
	m := NewMailbox(func(fb *FrameBuffer) { recycled = append(recycled, fb) })
	a, b := &FrameBuffer{index: 0}, &FrameBuffer{index: 1}

	m.Publish(PendingFrame{Buffer: a, ID: 1})
	m.Publish(PendingFrame{Buffer: b, ID: 2})
	if len(recycled) != 1 || recycled[0] != a {
		t.Fatalf("expected the older buffer to be recycled, got %v", recycled)
	}
	if !m.Pending() {
		t.Fatalf("expected a pending frame")
	}
	f, ok := m.Take()
	if !ok || f.ID != 2 || f.Buffer != b {
		t.Fatalf("expected newest frame, got ok=%v id=%d", ok, f.ID)
	}
	if m.Pending() {
		t.Fatalf("slot should be empty after take")
	}
	st := m.Stats()
	if st.Published != 2 || st.Dropped != 1 || st.Taken != 1 {
		t.Fatalf("unexpected stats: %+v", st)
	}
}

func TestMailbox_DeactivateWakesTake(t *testing.T) {
	m := NewMailbox(nil)
	done := make(chan bool)
	go func() {
		_, ok := m.Take()
		done <- ok
	}()
	time.Sleep(10 * time.Millisecond)
	m.Deactivate()
	select {
	case ok := <-done:
		if ok {
			t.Fatalf("take should report deactivation")
		}
	case <-time.After(time.Second):
		t.Fatalf("take not woken by deactivate")
	}
	m.Deactivate() // idempotent
}

func TestMailbox_DeactivateRecyclesPendingAndLatePublishes(t *testing.T) {
	var recycled []*FrameBuffer
	m := NewMailbox(func(fb *FrameBuffer) { recycled = append(recycled, fb) })
	a, b := &FrameBuffer{}, &FrameBuffer{}
	m.Publish(PendingFrame{Buffer: a, ID: 1})
	m.Deactivate()
	if len(recycled) != 1 || recycled[0] != a {
		t.Fatalf("pending buffer not recycled on deactivate")
	}
	m.Publish(PendingFrame{Buffer: b, ID: 2})
	if len(recycled) != 2 || recycled[1] != b {
		t.Fatalf("publish after deactivate should recycle immediately")
	}
	if _, ok := m.Take(); ok {
		t.Fatalf("take after deactivate should fail")
	}
}

func TestMailbox_ConcurrentPublishersNeverLoseBuffers(t *testing.T) {
	var mu sync.Mutex
	recycled := 0
	m := NewMailbox(func(*FrameBuffer) { mu.Lock(); recycled++; mu.Unlock() })

	const publishers, perPublisher = 4, 500
	var wg sync.WaitGroup
	for i := 0; i < publishers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perPublisher; j++ {
				m.Publish(PendingFrame{Buffer: &FrameBuffer{}})
			}
		}()
	}
	taken := 0
	consumed := make(chan struct{})
	go func() {
		defer close(consumed)
		for {
			if _, ok := m.Take(); !ok {
				return
			}
			taken++
		}
	}()
	wg.Wait()
	m.Deactivate()
	<-consumed

	mu.Lock()
	defer mu.Unlock()
	if taken+recycled != publishers*perPublisher {
		t.Fatalf("taken=%d recycled=%d, want sum %d", taken, recycled, publishers*perPublisher)
	}
}
