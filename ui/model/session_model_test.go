package model

import (
	"testing"
	"time"

	"github.com/soocke/barcode-tracker-go/domain/capture"
)

func running(processed uint64) capture.SessionStats {
	return capture.SessionStats{State: capture.StateRunning, Processed: processed}
}

func TestSessionModel_BasicLifecycle(t *testing.T) {
	m := NewSessionModel()
	base := time.Unix(0, 0)
	idle := capture.SessionStats{State: capture.StateIdle}

	// Start at t0 and run for 5s.
	m.OnTick(running(0), base)
	m.OnTick(running(50), base.Add(5*time.Second))
	run, total, fps := m.Values()
	if run != 5*time.Second || total != 5*time.Second {
		t.Fatalf("expected 5s run & total; got run=%v total=%v", run, total)
	}
	if fps != 10 {
		t.Fatalf("expected 10 fps, got %v", fps)
	}

	// Stop at 5s.
	m.OnTick(idle, base.Add(5*time.Second))
	run, total, fps = m.Values()
	if run != 5*time.Second || total != 5*time.Second || fps != 0 {
		t.Fatalf("after stop expected persisted 5s and no rate; got run=%v total=%v fps=%v", run, total, fps)
	}

	// Idle 2s (no change expected).
	m.OnTick(idle, base.Add(7*time.Second))
	run2, total2, _ := m.Values()
	if run2 != run || total2 != total {
		t.Fatalf("idle tick should not change durations: before run=%v total=%v after run=%v total=%v", run, total, run2, total2)
	}

	// Second run at 10s lasting 3s; processed restarts from zero.
	m.OnTick(running(0), base.Add(10*time.Second))
	m.OnTick(running(6), base.Add(13*time.Second))
	run3, total3, fps3 := m.Values()
	if run3 != 3*time.Second || total3 != 8*time.Second {
		t.Fatalf("expected run 3s total 8s, got run=%v total=%v", run3, total3)
	}
	if fps3 != 2 {
		t.Fatalf("expected 2 fps on second run, got %v", fps3)
	}

	// A stopping session is not running.
	m.OnTick(capture.SessionStats{State: capture.StateStopping}, base.Add(13*time.Second))
	if _, total, _ := m.Values(); total != 8*time.Second {
		t.Fatalf("final total expected 8s got %v", total)
	}
}

func TestSessionModel_NilSafe(t *testing.T) {
	var m *SessionModel
	m.OnTick(running(1), time.Now())
	if run, total, fps := m.Values(); run != 0 || total != 0 || fps != 0 {
		t.Fatalf("nil model should report zeros")
	}
}
