package tracking

import (
	"image"
	"math/rand"
	"testing"

	"github.com/soocke/barcode-tracker-go/domain/detect"
	"github.com/soocke/barcode-tracker-go/domain/overlay"
)

func payload(label string) *detect.Payload {
	return &detect.Payload{Bounds: image.Rect(0, 0, 10, 10), Label: label}
}

func checkInvariant(t *testing.T, r *Registry, ov *overlay.Store, ids []int) {
	t.Helper()
	for _, id := range ids {
		st, ok := r.State(id)
		visible := ok && st == StateVisible
		if ov.Contains(id) != visible {
			t.Fatalf("id %d: overlay entry=%v state=%v (live=%v)", id, ov.Contains(id), st, ok)
		}
	}
}

func TestRegistry_Lifecycle(t *testing.T) {
	ov := overlay.NewStore(nil)
	r := NewRegistry(nil, ov)
	var seen []string
	r.OnNewItem(func(id int, p detect.Payload) { seen = append(seen, p.Label) })

	r.Handle(detect.Event{Kind: detect.EventNewItem, ID: 1, Payload: payload("A")})
	if st, _ := r.State(1); st != StateCreated || ov.Contains(1) {
		t.Fatalf("new item should be created without overlay entry, got %v", st)
	}
	if len(seen) != 1 || seen[0] != "A" {
		t.Fatalf("listener not called: %v", seen)
	}

	r.Handle(detect.Event{Kind: detect.EventUpdate, ID: 1, Payload: payload("A")})
	if st, _ := r.State(1); st != StateVisible || !ov.Contains(1) {
		t.Fatalf("update should make visible, got %v", st)
	}

	r.Handle(detect.Event{Kind: detect.EventMissing, ID: 1})
	if st, ok := r.State(1); !ok || st != StateMissing || ov.Contains(1) {
		t.Fatalf("missing should hide but retain, got %v %v", st, ok)
	}

	r.Handle(detect.Event{Kind: detect.EventUpdate, ID: 1, Payload: payload("A'")})
	if st, _ := r.State(1); st != StateVisible || !ov.Contains(1) {
		t.Fatalf("update after missing should resurrect")
	}
	if e := ov.Snapshot().Entries[0]; e.Label != "A'" {
		t.Fatalf("overlay payload not refreshed: %q", e.Label)
	}

	r.Handle(detect.Event{Kind: detect.EventDone, ID: 1})
	if _, ok := r.State(1); ok || ov.Contains(1) || r.Len() != 0 {
		t.Fatalf("done should drop object and entry")
	}
}

func TestRegistry_UnknownIdentities(t *testing.T) {
	ov := overlay.NewStore(nil)
	r := NewRegistry(nil, ov)
	r.Handle(detect.Event{Kind: detect.EventMissing, ID: 9})
	r.Handle(detect.Event{Kind: detect.EventDone, ID: 9})
	if r.Len() != 0 {
		t.Fatalf("missing/done for unknown ids must be ignored")
	}
	r.Handle(detect.Event{Kind: detect.EventUpdate, ID: 9, Payload: payload("x")})
	if st, _ := r.State(9); st != StateVisible || !ov.Contains(9) {
		t.Fatalf("update without new item should create a visible object")
	}
	r.Handle(detect.Event{Kind: detect.EventUpdate, ID: 10})
	if _, ok := r.State(10); ok {
		t.Fatalf("update without payload should be ignored")
	}
}

func TestRegistry_OverlayMatchesVisibleUnderRandomEvents(t *testing.T) {
	ov := overlay.NewStore(nil)
	r := NewRegistry(nil, ov)
	ids := []int{0, 1, 2, 3, 4}
	rng := rand.New(rand.NewSource(42))
	kinds := []detect.EventKind{detect.EventNewItem, detect.EventUpdate, detect.EventMissing, detect.EventDone}
	for i := 0; i < 2000; i++ {
		ev := detect.Event{Kind: kinds[rng.Intn(len(kinds))], ID: ids[rng.Intn(len(ids))]}
		if ev.Kind == detect.EventNewItem || ev.Kind == detect.EventUpdate {
			ev.Payload = payload("p")
		}
		r.Handle(ev)
		checkInvariant(t, r, ov, ids)
	}
}

func TestRegistry_Reset(t *testing.T) {
	ov := overlay.NewStore(nil)
	r := NewRegistry(nil, ov)
	r.Handle(detect.Event{Kind: detect.EventUpdate, ID: 1, Payload: payload("a")})
	r.Handle(detect.Event{Kind: detect.EventNewItem, ID: 2, Payload: payload("b")})
	r.Reset()
	if r.Len() != 0 || ov.Len() != 0 {
		t.Fatalf("reset left registry=%d overlay=%d", r.Len(), ov.Len())
	}
}
