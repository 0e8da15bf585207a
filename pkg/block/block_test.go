package block

import (
	"testing"

	"github.com/wooffie/klingnode/pkg/hash"
)

func mustBlock(t *testing.T, id uint64, data, prev string, suffix string) Block {
	t.Helper()
	for nonce := uint64(0); ; nonce++ {
		h := hash.Hash(id, data, prev, nonce)
		if hash.Satisfies(h, suffix) {
			return New(id, data, prev, nonce, h)
		}
	}
}

func TestIsValid(t *testing.T) {
	b := mustBlock(t, 0, "genesis", "0", "0")
	if !b.IsValid("0") {
		t.Fatalf("expected mined block to be valid")
	}
}

func TestIsValidRejectsTamperedData(t *testing.T) {
	b := mustBlock(t, 0, "genesis", "0", "")
	tampered := New(b.ID(), "tampered", b.Prev(), b.Nonce(), b.Hash())
	if tampered.IsValid("") {
		t.Fatalf("expected tampered block to be invalid")
	}
}

func TestIsValidRejectsUnmetSuffix(t *testing.T) {
	b := mustBlock(t, 0, "genesis", "0", "")
	if b.IsValid("ffffffff") {
		t.Fatalf("expected suffix mismatch to fail validation")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	b := mustBlock(t, 3, "tx3", "deadbeef", "")
	data, err := b.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != b {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, b)
	}
}

func TestEncodeFieldOrder(t *testing.T) {
	b := New(1, "x", "y", 2, "z")
	data, err := b.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := `{"id":1,"data":"x","prev":"y","nonce":2,"hash":"z"}`
	if string(data) != want {
		t.Fatalf("got %s, want %s", data, want)
	}
}
