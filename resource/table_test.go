package resource

import (
	"testing"
)

type dropCounter struct {
	drops int
}

func (d *dropCounter) Drop() { d.drops++ }

func TestInsertGetRemove(t *testing.T) {
	tbl := NewTable[string]()

	h := tbl.Insert("alpha")
	if h == 0 {
		t.Fatal("expected non-zero handle")
	}

	v, ok := tbl.Get(h)
	if !ok || v != "alpha" {
		t.Fatalf("Get = %q, %v", v, ok)
	}

	v, ok = tbl.Remove(h)
	if !ok || v != "alpha" {
		t.Fatalf("Remove = %q, %v", v, ok)
	}

	if _, ok := tbl.Get(h); ok {
		t.Error("handle still resolvable after Remove")
	}
	if _, ok := tbl.Remove(h); ok {
		t.Error("second Remove should fail")
	}
}

func TestZeroHandleAlwaysInvalid(t *testing.T) {
	tbl := NewTable[int]()
	if _, ok := tbl.Get(0); ok {
		t.Error("handle 0 must be invalid")
	}
	if _, ok := tbl.Remove(0); ok {
		t.Error("handle 0 must not be removable")
	}
}

func TestDropCalledExactlyOnce(t *testing.T) {
	tbl := NewTable[*dropCounter]()
	d := &dropCounter{}

	h := tbl.Insert(d)
	tbl.Remove(h)
	tbl.Remove(h)

	if d.drops != 1 {
		t.Errorf("drops = %d, want 1", d.drops)
	}
}

func TestHandleReuseOnlyAfterRemove(t *testing.T) {
	tbl := NewTable[int]()

	h1 := tbl.Insert(1)
	h2 := tbl.Insert(2)
	if h1 == h2 {
		t.Fatal("live handles must be distinct")
	}

	tbl.Remove(h1)
	h3 := tbl.Insert(3)
	if h3 != h1 {
		t.Errorf("expected freelist reuse of %d, got %d", h1, h3)
	}

	v, ok := tbl.Get(h3)
	if !ok || v != 3 {
		t.Errorf("reused handle resolves to %d, %v", v, ok)
	}
}

func TestLenAndEach(t *testing.T) {
	tbl := NewTable[int]()
	h1 := tbl.Insert(10)
	tbl.Insert(20)
	tbl.Remove(h1)

	if tbl.Len() != 1 {
		t.Errorf("Len = %d, want 1", tbl.Len())
	}

	seen := 0
	tbl.Each(func(h Handle, v int) bool {
		seen++
		if v != 20 {
			t.Errorf("unexpected value %d", v)
		}
		return true
	})
	if seen != 1 {
		t.Errorf("Each visited %d entries, want 1", seen)
	}
}

func TestCloseDropsAllAndRejectsInserts(t *testing.T) {
	tbl := NewTable[*dropCounter]()
	d1 := &dropCounter{}
	d2 := &dropCounter{}
	tbl.Insert(d1)
	tbl.Insert(d2)

	if err := tbl.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if d1.drops != 1 || d2.drops != 1 {
		t.Errorf("drops = %d, %d, want 1, 1", d1.drops, d2.drops)
	}

	if h := tbl.Insert(&dropCounter{}); h != 0 {
		t.Errorf("Insert after Close returned %d, want 0", h)
	}
}
