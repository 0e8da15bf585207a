// Package block defines the immutable, self-validating Block type that is
// the unit of the chain.
package block

import (
	"encoding/json"
	"fmt"

	"github.com/wooffie/klingnode/pkg/hash"
)

// Block is an immutable record of a single chain entry. Fields are stored
// verbatim at construction time and never mutated afterward; the JSON field
// order below is the canonical wire order.
type Block struct {
	id    uint64
	data  string
	prev  string
	nonce uint64
	hash  string
}

// wireBlock mirrors Block's field order for (de)serialization:
// id, data, prev, nonce, hash.
type wireBlock struct {
	ID    uint64 `json:"id"`
	Data  string `json:"data"`
	Prev  string `json:"prev"`
	Nonce uint64 `json:"nonce"`
	Hash  string `json:"hash"`
}

// New stores the five fields verbatim. It performs no validation — callers
// that need a guaranteed-valid block should follow construction with
// IsValid, as Chain.TryAppend does.
func New(id uint64, data, prev string, nonce uint64, h string) Block {
	return Block{id: id, data: data, prev: prev, nonce: nonce, hash: h}
}

func (b Block) ID() uint64    { return b.id }
func (b Block) Data() string  { return b.data }
func (b Block) Prev() string  { return b.prev }
func (b Block) Nonce() uint64 { return b.nonce }
func (b Block) Hash() string  { return b.hash }

// IsValid recomputes the hash from (id, data, prev, nonce), compares it
// against the stored hash, and checks that it carries the required suffix.
func (b Block) IsValid(suffix string) bool {
	want := hash.Hash(b.id, b.data, b.prev, b.nonce)
	if want != b.hash {
		return false
	}
	return hash.Satisfies(b.hash, suffix)
}

// Encode serializes the block to its canonical wire JSON form.
func (b Block) Encode() ([]byte, error) {
	return json.Marshal(wireBlock{
		ID:    b.id,
		Data:  b.data,
		Prev:  b.prev,
		Nonce: b.nonce,
		Hash:  b.hash,
	})
}

// Decode parses a block from its canonical wire JSON form.
func Decode(data []byte) (Block, error) {
	var w wireBlock
	if err := json.Unmarshal(data, &w); err != nil {
		return Block{}, fmt.Errorf("decode block: %w", err)
	}
	return New(w.ID, w.Data, w.Prev, w.Nonce, w.Hash), nil
}

// MarshalJSON implements json.Marshaler so a Block embeds correctly inside
// larger wire messages (e.g. ChainResponse's block list).
func (b Block) MarshalJSON() ([]byte, error) {
	return b.Encode()
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *Block) UnmarshalJSON(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	*b = decoded
	return nil
}

// String renders a one-line, all-fields view used by the CLI "ls" command.
func (b Block) String() string {
	return fmt.Sprintf("id=%d data=%q prev=%s nonce=%d hash=%s", b.id, b.data, b.prev, b.nonce, b.hash)
}
