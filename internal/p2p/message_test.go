package p2p

import (
	"testing"

	"github.com/wooffie/klingnode/pkg/block"
)

func TestEncodeDecodeTx(t *testing.T) {
	m := NewTx("hello world")
	data, err := m.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeMessage(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Kind != KindTx || got.Data != "hello world" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestEncodeDecodeBlock(t *testing.T) {
	b := block.New(1, "tx1", "deadbeef", 42, "cafef00d")
	m := NewBlock(b)

	data, err := m.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeMessage(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Kind != KindBlock || got.Block == nil || *got.Block != b {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestEncodeDecodeChainRequest(t *testing.T) {
	m := NewChainRequest("peer-1")
	data, err := m.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeMessage(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Kind != KindChainRequest || got.To != "peer-1" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestEncodeDecodeChainResponse(t *testing.T) {
	chain := []block.Block{
		block.New(0, "genesis", "0", 1, "aaaa"),
		block.New(1, "tx1", "aaaa", 2, "bbbb"),
	}
	m := NewChainResponse("peer-1", chain)

	data, err := m.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeMessage(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Kind != KindChainResponse || got.To != "peer-1" || len(got.Chain) != 2 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	for i, b := range got.Chain {
		if b != chain[i] {
			t.Fatalf("chain[%d] mismatch: got %+v, want %+v", i, b, chain[i])
		}
	}
}

func TestDecodeMalformedMessage(t *testing.T) {
	if _, err := DecodeMessage([]byte("not json")); err == nil {
		t.Fatal("expected error decoding malformed message")
	}
}

func TestWireFormatMatchesSpec(t *testing.T) {
	data, err := NewTx("hi").Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := `{"kind":"Tx","data":"hi"}`
	if string(data) != want {
		t.Fatalf("got %s, want %s", data, want)
	}
}
