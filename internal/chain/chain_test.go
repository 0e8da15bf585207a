package chain

import (
	"context"
	"errors"
	"testing"

	"github.com/wooffie/klingnode/internal/miner"
	"github.com/wooffie/klingnode/pkg/block"
)

func mineNext(t *testing.T, id uint64, data, prev, suffix string) block.Block {
	t.Helper()
	b, err := miner.Mine(context.Background(), miner.Template{ID: id, Data: data, Prev: prev}, suffix)
	if err != nil {
		t.Fatalf("mine: %v", err)
	}
	return b
}

func TestGenesisDeterminism(t *testing.T) {
	a := Genesis("00")
	b := Genesis("00")
	if a.Head().Hash() != b.Head().Hash() || a.Head().Nonce() != b.Head().Nonce() {
		t.Fatalf("expected identical genesis blocks, got %+v vs %+v", a.Head(), b.Head())
	}
}

func TestTryAppendSuccess(t *testing.T) {
	c := Genesis("")
	head := c.Head()
	b1 := mineNext(t, head.ID()+1, "tx1", head.Hash(), "")

	if err := c.TryAppend(b1, ""); err != nil {
		t.Fatalf("TryAppend: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	if c.Head() != b1 {
		t.Fatalf("Head() = %+v, want %+v", c.Head(), b1)
	}
}

func TestTryAppendBadPrev(t *testing.T) {
	c := Genesis("")
	b := mineNext(t, 1, "tx1", "not-the-real-prev", "")
	if err := c.TryAppend(b, ""); !errors.Is(err, ErrBadPrev) {
		t.Fatalf("err = %v, want ErrBadPrev", err)
	}
}

func TestTryAppendBadId(t *testing.T) {
	c := Genesis("")
	head := c.Head()
	b := mineNext(t, 7, "tx1", head.Hash(), "")
	if err := c.TryAppend(b, ""); !errors.Is(err, ErrBadId) {
		t.Fatalf("err = %v, want ErrBadId", err)
	}
}

func TestTryAppendBadHash(t *testing.T) {
	c := Genesis("")
	head := c.Head()
	good := mineNext(t, head.ID()+1, "tx1", head.Hash(), "")
	tampered := block.New(good.ID(), "tampered-data", good.Prev(), good.Nonce(), good.Hash())
	if err := c.TryAppend(tampered, ""); !errors.Is(err, ErrBadHash) {
		t.Fatalf("err = %v, want ErrBadHash", err)
	}
}

func TestIsValid(t *testing.T) {
	c := Genesis("")
	head := c.Head()
	b1 := mineNext(t, head.ID()+1, "tx1", head.Hash(), "")
	if err := c.TryAppend(b1, ""); err != nil {
		t.Fatalf("TryAppend: %v", err)
	}
	if !c.IsValid("") {
		t.Fatalf("expected chain to be valid")
	}
}

func TestChooseLongerRemoteWins(t *testing.T) {
	local := Genesis("")
	remote := Genesis("")
	// Force remote to share the same genesis as local (they do, since
	// genesis is deterministic for a shared suffix), then extend it twice.
	remoteBlocks := remote.Blocks()
	head := remoteBlocks[len(remoteBlocks)-1]
	b1 := mineNext(t, head.ID()+1, "tx1", head.Hash(), "")
	remoteBlocks = append(remoteBlocks, b1)
	b2 := mineNext(t, b1.ID()+1, "tx2", b1.Hash(), "")
	remoteBlocks = append(remoteBlocks, b2)

	chosen := local.Choose(remoteBlocks, "")
	if len(chosen) != 3 {
		t.Fatalf("expected longer remote chain to win, got len %d", len(chosen))
	}
}

func TestChooseTieGoesToReceiver(t *testing.T) {
	local := Genesis("")
	remote := local.Blocks() // identical length -> tie
	chosen := local.Choose(remote, "")
	if len(chosen) != local.Len() {
		t.Fatalf("expected tie to keep local length")
	}
}

func TestChooseInvalidRemoteLoses(t *testing.T) {
	local := Genesis("")
	head := local.Head()
	b1 := mineNext(t, head.ID()+1, "tx1", head.Hash(), "")
	invalid := []block.Block{local.Head(), b1, b1} // not a valid sequence

	chosen := local.Choose(invalid, "")
	if len(chosen) != 1 {
		t.Fatalf("expected invalid remote chain to be rejected, kept local")
	}
}

func TestChooseIdempotent(t *testing.T) {
	local := Genesis("")
	chosen := local.Choose(local.Blocks(), "")
	if len(chosen) != local.Len() {
		t.Fatalf("choose(L, L) should equal L")
	}
}
