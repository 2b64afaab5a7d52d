package bitmap

import "testing"

func TestBitmapGetSetClear(t *testing.T) {
	b := NewCleared(256)

	indices := []int{0, 63, 64, 127, 128, 191, 192, 255}
	for _, i := range indices {
		if b.IsSet(i) {
			t.Fatalf("bit %d should be clear initially", i)
		}
	}

	for _, i := range indices {
		if err := b.Set(i); err != nil {
			t.Fatalf("Set(%d): %v", i, err)
		}
		if !b.IsSet(i) {
			t.Fatalf("bit %d should be set after Set()", i)
		}
	}

	for _, i := range []int{1, 2, 60, 65, 129, 254} {
		if b.IsSet(i) {
			t.Fatalf("bit %d should remain clear", i)
		}
	}

	for _, i := range indices {
		if err := b.Clear(i); err != nil {
			t.Fatalf("Clear(%d): %v", i, err)
		}
		if b.IsSet(i) {
			t.Fatalf("bit %d should be clear after Clear()", i)
		}
	}
}

func TestBitmapPopCount(t *testing.T) {
	b := NewCleared(256)

	if got := b.PopCount(); got != 0 {
		t.Fatalf("expected count 0 on new bitmap, got %d", got)
	}

	_ = b.Set(10)
	_ = b.Set(20)
	_ = b.Set(10) // duplicate, should not increase count
	if got := b.PopCount(); got != 2 {
		t.Fatalf("expected count 2 after setting two distinct bits, got %d", got)
	}

	_ = b.Set(0)
	_ = b.Set(255)
	if got := b.PopCount(); got != 4 {
		t.Fatalf("expected count 4 after adding two more bits, got %d", got)
	}

	_ = b.Clear(20)
	if got := b.PopCount(); got != 3 {
		t.Fatalf("expected count 3 after clearing one bit, got %d", got)
	}
}

func TestBitmapDefaultAllPresent(t *testing.T) {
	b := New(5)
	for i := 0; i < 5; i++ {
		if !b.IsSet(i) {
			t.Fatalf("index %d should default to present", i)
		}
	}
	if !b.All() {
		t.Fatalf("All() should report true for a freshly built bitmap")
	}
	_ = b.Clear(2)
	if b.All() {
		t.Fatalf("All() should report false once a bit is cleared")
	}
}

func TestBitmapEmptySentinel(t *testing.T) {
	var b Bitmap
	if !b.IsEmpty() {
		t.Fatalf("zero value should be the empty sentinel")
	}
	for _, i := range []int{0, 1, 100} {
		if !b.IsSet(i) {
			t.Fatalf("empty bitmap should report every index as present (non-optional level)")
		}
	}
}

func TestBitmapOutOfRange(t *testing.T) {
	b := NewCleared(4)
	if err := b.Set(4); err == nil {
		t.Fatalf("expected out_of_range error setting index 4 of a 4-bit bitmap")
	}
	if err := b.Set(-1); err == nil {
		t.Fatalf("expected out_of_range error setting index -1")
	}
}

func TestBitmapSliceAndGather(t *testing.T) {
	b := New(6)
	_ = b.Clear(1)
	_ = b.Clear(4)

	sl, err := b.Slice(2, 6)
	if err != nil {
		t.Fatalf("Slice: %v", err)
	}
	want := []bool{true, true, false, true}
	for i, w := range want {
		if sl.IsSet(i) != w {
			t.Fatalf("slice bit %d: got %v want %v", i, sl.IsSet(i), w)
		}
	}

	g, err := b.Gather([]int{5, 4, 3, 2, 1, 0})
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	wantG := []bool{true, false, true, true, false, true}
	for i, w := range wantG {
		if g.IsSet(i) != w {
			t.Fatalf("gather bit %d: got %v want %v", i, g.IsSet(i), w)
		}
	}
}

func TestBitmapCloneIndependence(t *testing.T) {
	b := New(8)
	clone := b.Clone()
	_ = clone.Clear(3)
	if !b.IsSet(3) {
		t.Fatalf("mutating a clone must not affect the original bitmap")
	}
	if clone.IsSet(3) {
		t.Fatalf("clone should reflect its own Clear")
	}
}
