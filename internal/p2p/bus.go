package p2p

import "errors"

// ErrNotStarted reports a Bus that is not running. Neither MemoryBus nor
// LibP2PBus returns it: both are usable as soon as they are constructed.
var ErrNotStarted = errors.New("p2p: bus not started")

// Bus is the opaque broadcast/subscribe transport the Node depends on.
// MemoryBus backs tests and single-process simulation; LibP2PBus backs a
// real network.
type Bus interface {
	// ID returns this bus's peer identifier, used to recognize
	// ChainResponse messages addressed to this node.
	ID() string

	// Publish broadcasts a message to every other peer on the bus.
	Publish(m Message) error

	// Messages returns the channel of inbound messages from peers, each
	// tagged with the sender's peer identity. It is closed when the bus is
	// closed.
	Messages() <-chan Envelope

	// Close shuts down the bus and releases its resources.
	Close() error
}
