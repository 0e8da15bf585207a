package miner

import (
	"context"
	"testing"
	"time"
)

func TestMineFindsSmallestSatisfyingNonce(t *testing.T) {
	tmpl := Template{ID: 1, Data: "tx1", Prev: "deadbeef"}
	got, err := Mine(context.Background(), tmpl, "")
	if err != nil {
		t.Fatalf("Mine: %v", err)
	}
	if !got.IsValid("") {
		t.Fatalf("mined block is not valid")
	}

	// With an empty suffix nonce 0 always satisfies, so it must be chosen.
	if got.Nonce() != 0 {
		t.Fatalf("expected nonce 0 for empty suffix, got %d", got.Nonce())
	}
}

func TestMineRespectsSuffix(t *testing.T) {
	tmpl := Template{ID: 0, Data: "genesis", Prev: "0"}
	got, err := Mine(context.Background(), tmpl, "0")
	if err != nil {
		t.Fatalf("Mine: %v", err)
	}
	if got.Hash()[len(got.Hash())-1] != '0' {
		t.Fatalf("expected hash ending in 0, got %s", got.Hash())
	}
}

func TestMineCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tmpl := Template{ID: 0, Data: "tx", Prev: "0"}
	_, err := Mine(ctx, tmpl, "ffffffffffff")
	if err != ErrCancelled {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
}

func TestMineCancellationDuringSearch(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	tmpl := Template{ID: 0, Data: "tx", Prev: "0"}
	// A suffix this long will not be found within the timeout, forcing the
	// cancellation path to trigger.
	_, err := Mine(ctx, tmpl, "ffffffffffffffffffffffffffffffff")
	if err != ErrCancelled {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
}

func TestMineDeterministic(t *testing.T) {
	tmpl := Template{ID: 5, Data: "same-input", Prev: "cafebabe"}
	a, err := Mine(context.Background(), tmpl, "0")
	if err != nil {
		t.Fatalf("Mine: %v", err)
	}
	b, err := Mine(context.Background(), tmpl, "0")
	if err != nil {
		t.Fatalf("Mine: %v", err)
	}
	if a.Nonce() != b.Nonce() || a.Hash() != b.Hash() {
		t.Fatalf("expected identical results for identical inputs: %+v vs %+v", a, b)
	}
}
