// Package node implements the orchestrator that mediates local mining,
// the pending-transaction queue, and network ingress/egress.
package node

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/wooffie/klingnode/internal/chain"
	klog "github.com/wooffie/klingnode/internal/log"
	"github.com/wooffie/klingnode/internal/mempool"
	"github.com/wooffie/klingnode/internal/miner"
	"github.com/wooffie/klingnode/internal/p2p"
	"github.com/wooffie/klingnode/pkg/block"
)

// Node owns the authoritative local chain and mediates between mining,
// network ingress, and network egress. All chain and queue mutation
// happens on a single event-loop goroutine: the miner only
// ever sees an immutable template and a cancellation handle.
type Node struct {
	chain   *chain.Chain
	pending *mempool.Pool
	suffix  string
	peerID  string
	bus     p2p.Bus
	logger  zerolog.Logger

	txCh   chan string
	netCh  chan p2p.Envelope
	stopCh chan struct{}
	doneCh chan struct{}

	miningResultCh chan miningResult
	miningActive   bool
	miningData     string
	miningCancel   context.CancelFunc
	miningGen      uint64
}

type miningResult struct {
	gen   uint64
	data  string
	block block.Block
	err   error
}

// New constructs a Node with a freshly-mined genesis block.
// bus may be nil for tests that only exercise local behavior; Broadcast is
// then a no-op.
func New(suffix, peerID string, bus p2p.Bus) *Node {
	c := chain.Genesis(suffix)
	return &Node{
		chain:          &c,
		pending:        mempool.New(),
		suffix:         suffix,
		peerID:         peerID,
		bus:            bus,
		logger:         klog.WithComponent("node"),
		txCh:           make(chan string, 64),
		netCh:          make(chan p2p.Envelope, 64),
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
		miningResultCh: make(chan miningResult, 1),
	}
}

// SubmitTransaction enqueues text as a pending transaction and broadcasts
// it to peers.
func (n *Node) SubmitTransaction(text string) {
	n.txCh <- text
}

// OnNetwork delivers a decoded inbound message to the event loop.
func (n *Node) OnNetwork(env p2p.Envelope) {
	n.netCh <- env
}

// Snapshot returns a read-only copy of the chain for display.
func (n *Node) Snapshot() []block.Block {
	return n.chain.Blocks()
}

// Shutdown terminates mining and the event loop and waits for it to exit.
func (n *Node) Shutdown() {
	close(n.stopCh)
	<-n.doneCh
}

// Run starts the event loop. It reads from the bus (if any) in a helper
// goroutine and blocks in the main select loop
// until Shutdown is called.
func (n *Node) Run() {
	var wg sync.WaitGroup
	if n.bus != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case env, ok := <-n.bus.Messages():
					if !ok {
						return
					}
					select {
					case n.netCh <- env:
					case <-n.stopCh:
						return
					}
				case <-n.stopCh:
					return
				}
			}
		}()
	}

	n.loop()
	wg.Wait()
	close(n.doneCh)
}

func (n *Node) loop() {
	defer n.cancelMining()
	for {
		select {
		case <-n.stopCh:
			return
		case text := <-n.txCh:
			n.pending.Push(text)
			n.broadcast(p2p.NewTx(text))
			if !n.miningActive {
				n.startMining()
			}
		case env := <-n.netCh:
			n.handleNetwork(env)
		case res := <-n.miningResultCh:
			n.handleMiningResult(res)
		}
	}
}

func (n *Node) handleNetwork(env p2p.Envelope) {
	msg := env.Message
	switch msg.Kind {
	case p2p.KindTx:
		n.pending.Push(msg.Data)
		if !n.miningActive {
			n.startMining()
		}

	case p2p.KindBlock:
		if msg.Block == nil {
			n.logger.Warn().Str("from", env.From).Msg("discarding Block message without a block")
			return
		}
		n.handleBlockMessage(env.From, *msg.Block)

	case p2p.KindChainRequest:
		n.broadcast(p2p.NewChainResponse(env.From, n.chain.Blocks()))

	case p2p.KindChainResponse:
		if msg.To != n.peerID {
			return
		}
		n.handleChainResponse(msg.Chain)
	}
}

func (n *Node) handleBlockMessage(from string, b block.Block) {
	err := n.chain.TryAppend(b, n.suffix)
	switch {
	case err == nil:
		wasMining := n.miningData != ""
		n.cancelMining()
		// The transaction that was being mined is handled either way: drop
		// it, and re-queue it at the head only if the appended block did
		// not carry the same text.
		if wasMining {
			if popped, ok := n.pending.Pop(); ok && popped != b.Data() {
				n.pending.PushFront(popped)
			}
		}
		n.startMining()

	case errors.Is(err, chain.ErrBadPrev), errors.Is(err, chain.ErrBadId):
		n.broadcast(p2p.NewChainRequest(from))

	case errors.Is(err, chain.ErrBadHash):
		n.logger.Warn().Str("from", from).Msg("discarding invalid block")

	default:
		n.logger.Warn().Err(err).Str("from", from).Msg("unexpected append error")
	}
}

func (n *Node) handleChainResponse(remote []block.Block) {
	before := n.chain.Len()
	chosen := n.chain.Choose(remote, n.suffix)
	if len(chosen) == before {
		return // no replacement; receiver kept (tie or invalid remote)
	}

	newTail := chosen[before:]

	n.chain.Replace(chosen)
	n.cancelMining()
	n.pruneAdopted(newTail)
	n.startMining()
}

// pruneAdopted drops any pending transaction whose text already appears in
// the newly adopted tail, since those transactions are now confirmed.
func (n *Node) pruneAdopted(tail []block.Block) {
	for _, b := range tail {
		for n.pending.RemoveFirstMatching(b.Data()) {
		}
	}
}

func (n *Node) startMining() {
	if n.pending.Len() == 0 {
		n.miningActive = false
		return
	}
	text, ok := n.pending.Peek()
	if !ok {
		n.miningActive = false
		return
	}

	head := n.chain.Head()
	tmpl := miner.Template{ID: head.ID() + 1, Data: text, Prev: head.Hash()}

	ctx, cancel := context.WithCancel(context.Background())
	n.miningCancel = cancel
	n.miningGen++
	gen := n.miningGen
	n.miningActive = true
	n.miningData = text

	go func() {
		b, err := miner.Mine(ctx, tmpl, n.suffix)
		n.miningResultCh <- miningResult{gen: gen, data: text, block: b, err: err}
	}()
}

func (n *Node) cancelMining() {
	if n.miningActive && n.miningCancel != nil {
		n.miningCancel()
	}
	n.miningActive = false
	n.miningData = ""
}

func (n *Node) handleMiningResult(res miningResult) {
	if res.gen != n.miningGen {
		return // stale result from an already-superseded mining task
	}
	n.miningActive = false
	n.miningData = ""

	switch {
	case errors.Is(res.err, miner.ErrCancelled):
		return // the cancelling event already drove the next action

	case errors.Is(res.err, miner.ErrExhausted):
		n.logger.Fatal().Msg("nonce space exhausted")
		return

	case res.err != nil:
		n.logger.Error().Err(res.err).Msg("unexpected miner error")
		return
	}

	if err := n.chain.TryAppend(res.block, n.suffix); err != nil {
		// Lost a race against a concurrently-received block; discard and
		// restart mining on the new head.
		n.startMining()
		return
	}
	n.pending.Pop()
	n.broadcast(p2p.NewBlock(res.block))
	n.startMining()
}

func (n *Node) broadcast(m p2p.Message) {
	if n.bus == nil {
		return
	}
	if err := n.bus.Publish(m); err != nil {
		n.logger.Warn().Err(err).Str("kind", string(m.Kind)).Msg("broadcast failed")
	}
}
