package config

import "testing"

func fieldByKey(t *testing.T, key string) Field {
	t.Helper()
	for _, f := range EditableFields() {
		if f.Key == key {
			return f
		}
	}
	t.Fatalf("no field %q", key)
	return Field{}
}

func TestEditableFields_RoundTripDefaults(t *testing.T) {
	src := DefaultConfig()
	src.FocusMode = "auto"
	src.Stride = 5
	src.Refine = false
	dst := DefaultConfig()
	dst.Stride, dst.Refine = 1, true
	seen := map[string]bool{}
	for _, f := range EditableFields() {
		if seen[f.Key] {
			t.Fatalf("duplicate key %q", f.Key)
		}
		seen[f.Key] = true
		if !f.Set(dst, f.Get(src)) {
			t.Fatalf("%s: own value %q does not parse", f.Key, f.Get(src))
		}
	}
	if dst.FocusMode != "auto" || dst.Stride != 5 || dst.Refine {
		t.Fatalf("values not copied: %+v", dst)
	}
}

func TestEditableFields_Parse(t *testing.T) {
	c := DefaultConfig()
	if !fieldByKey(t, "threshold").Set(c, " 0.65\n") || c.Threshold != 0.65 {
		t.Fatalf("threshold not set: %v", c.Threshold)
	}
	if fieldByKey(t, "stride").Set(c, "two") || c.Stride != 2 {
		t.Fatalf("bad int should be rejected and leave %d", c.Stride)
	}
	if !fieldByKey(t, "refine").Set(c, "off") || c.Refine {
		t.Fatalf("refine should accept off")
	}
	if fieldByKey(t, "refine").Set(c, "maybe") {
		t.Fatalf("refine should reject maybe")
	}
	if !fieldByKey(t, "flash_mode").Set(c, " torch \n") || c.FlashMode != "torch" {
		t.Fatalf("flash mode not trimmed: %q", c.FlashMode)
	}
}
