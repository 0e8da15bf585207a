package mempool

import "testing"

func TestFIFOOrder(t *testing.T) {
	p := New()
	p.Push("a")
	p.Push("b")
	p.Push("c")

	for _, want := range []string{"a", "b", "c"} {
		got, ok := p.Pop()
		if !ok || got != want {
			t.Fatalf("Pop() = (%q, %v), want (%q, true)", got, ok, want)
		}
	}
	if _, ok := p.Pop(); ok {
		t.Fatalf("expected empty pool")
	}
}

func TestPushFrontReQueuesAtHead(t *testing.T) {
	p := New()
	p.Push("second")
	p.PushFront("first")

	got, _ := p.Pop()
	if got != "first" {
		t.Fatalf("got %q, want %q", got, "first")
	}
	got, _ = p.Pop()
	if got != "second" {
		t.Fatalf("got %q, want %q", got, "second")
	}
}

func TestPeekDoesNotRemove(t *testing.T) {
	p := New()
	p.Push("x")
	if v, ok := p.Peek(); !ok || v != "x" {
		t.Fatalf("Peek() = (%q, %v)", v, ok)
	}
	if p.Len() != 1 {
		t.Fatalf("Peek() should not remove, Len() = %d", p.Len())
	}
}

func TestRemoveFirstMatching(t *testing.T) {
	p := New()
	p.Push("tx1")
	p.Push("tx2")
	p.Push("tx1")

	if !p.RemoveFirstMatching("tx1") {
		t.Fatalf("expected removal to succeed")
	}
	if got := p.Items(); len(got) != 2 || got[0] != "tx2" || got[1] != "tx1" {
		t.Fatalf("unexpected items after removal: %v", got)
	}
	if p.RemoveFirstMatching("missing") {
		t.Fatalf("expected removal of missing item to fail")
	}
}

func TestDuplicatesAreNotDeduplicated(t *testing.T) {
	p := New()
	p.Push("dup")
	p.Push("dup")
	if p.Len() != 2 {
		t.Fatalf("expected duplicates to both be queued, Len() = %d", p.Len())
	}
}
