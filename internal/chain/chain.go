// Package chain implements the ordered block sequence with structural
// validation and longest-valid-chain fork-choice.
package chain

import (
	"context"
	"sync"

	"github.com/wooffie/klingnode/internal/miner"
	"github.com/wooffie/klingnode/pkg/block"
)

// GenesisData is the fixed, sentinel payload every node mines for block 0,
// making genesis deterministic across any two nodes configured with the
// same suffix.
const GenesisData = "genesis"

// GenesisPrev is the fixed sentinel "previous hash" carried by the genesis
// block, since it has no real predecessor.
const GenesisPrev = "0"

// Chain is an ordered sequence of blocks, grown one block at a time by
// TryAppend and swapped wholesale only by Replace, guarded by a mutex
// so that read-only snapshots (CLI "ls", ChainResponse marshalling) never
// race a concurrent append. The Node event loop is the only writer — the
// mutex exists for safe concurrent reads, not to coordinate multiple
// writers.
type Chain struct {
	mu     sync.RWMutex
	blocks []block.Block
}

// Genesis mines (deterministically, starting from nonce 0) and returns a
// chain containing only the genesis block, whose hash satisfies suffix.
func Genesis(suffix string) Chain {
	tmpl := miner.Template{ID: 0, Data: GenesisData, Prev: GenesisPrev}
	// Genesis mining cannot be cancelled — there is no event loop yet to
	// drive cancellation, and it must complete synchronously at
	// construction time.
	b, err := miner.Mine(context.Background(), tmpl, suffix)
	if err != nil {
		// Only ErrExhausted can occur here (no cancellation is possible),
		// and nonce exhaustion is a fatal condition.
		panic(err)
	}
	return Chain{blocks: []block.Block{b}}
}

// Head returns the last block in the chain.
func (c *Chain) Head() block.Block {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.blocks[len(c.blocks)-1]
}

// Len returns the number of blocks in the chain.
func (c *Chain) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.blocks)
}

// Blocks returns a read-only snapshot of every block, genesis first.
func (c *Chain) Blocks() []block.Block {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]block.Block, len(c.blocks))
	copy(out, c.blocks)
	return out
}

// TryAppend validates b against the current head and appends it on
// success.
func (c *Chain) TryAppend(b block.Block, suffix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	head := c.blocks[len(c.blocks)-1]
	if b.Prev() != head.Hash() {
		return ErrBadPrev
	}
	if b.ID() != head.ID()+1 {
		return ErrBadId
	}
	if !b.IsValid(suffix) {
		return ErrBadHash
	}

	c.blocks = append(c.blocks, b)
	return nil
}

// IsValid validates the whole chain from genesis forward.
func (c *Chain) IsValid(suffix string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return isValidSequence(c.blocks, suffix)
}

func isValidSequence(blocks []block.Block, suffix string) bool {
	if len(blocks) == 0 {
		return false
	}
	if !blocks[0].IsValid(suffix) {
		return false
	}
	for i := 1; i < len(blocks); i++ {
		prev, cur := blocks[i-1], blocks[i]
		if cur.Prev() != prev.Hash() {
			return false
		}
		if cur.ID() != prev.ID()+1 {
			return false
		}
		if !cur.IsValid(suffix) {
			return false
		}
	}
	return true
}

// Choose implements the longest-valid-chain fork-choice: if other is not
// entirely valid, the receiver wins; otherwise the longer chain wins; ties
// go to the receiver.
func (c *Chain) Choose(other []block.Block, suffix string) []block.Block {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !isValidSequence(other, suffix) {
		return c.blocks
	}
	if len(other) > len(c.blocks) {
		return other
	}
	return c.blocks
}

// Replace atomically swaps the chain's contents for blocks. Callers are
// expected to have produced blocks via Choose.
func (c *Chain) Replace(blocks []block.Block) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.blocks = blocks
}
