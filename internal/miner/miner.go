// Package miner implements the cooperatively-cancellable nonce search that
// produces new blocks.
package miner

import (
	"context"
	"errors"
	"math"

	"github.com/wooffie/klingnode/pkg/block"
	"github.com/wooffie/klingnode/pkg/hash"
)

// ErrCancelled is returned when the search context is done before a
// satisfying nonce is found.
var ErrCancelled = errors.New("miner: cancelled")

// ErrExhausted is returned if the nonce counter wraps past its maximum
// value without finding a satisfying hash. Unreachable in practice for any
// reasonable difficulty suffix.
var ErrExhausted = errors.New("miner: nonce space exhausted")

// pollInterval bounds how many nonce attempts pass between cancellation
// checks.
const pollInterval = 0x10000

// Template is the immutable block-in-progress a Miner is handed: the next
// id, the transaction text it will carry, and the predecessor's hash. The
// Miner never reads chain state directly — it only ever sees this
// snapshot.
type Template struct {
	ID   uint64
	Data string
	Prev string
}

// Mine searches for a nonce, starting at zero and incrementing
// monotonically, such that Hash(tmpl.ID, tmpl.Data, tmpl.Prev, nonce)
// satisfies suffix. The search polls ctx for cancellation at bounded
// intervals; on cancellation it returns ErrCancelled promptly, leaving any
// restart decision to the caller.
func Mine(ctx context.Context, tmpl Template, suffix string) (block.Block, error) {
	for nonce := uint64(0); ; nonce++ {
		if nonce&(pollInterval-1) == 0 {
			select {
			case <-ctx.Done():
				return block.Block{}, ErrCancelled
			default:
			}
		}

		h := hash.Hash(tmpl.ID, tmpl.Data, tmpl.Prev, nonce)
		if hash.Satisfies(h, suffix) {
			return block.New(tmpl.ID, tmpl.Data, tmpl.Prev, nonce, h), nil
		}

		if nonce == math.MaxUint64 {
			return block.Block{}, ErrExhausted
		}
	}
}
