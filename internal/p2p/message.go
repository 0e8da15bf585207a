// Package p2p models the opaque broadcast/subscribe message bus the Node
// consumes and produces: a backing transport the Node treats as a gossip
// overlay, a broadcast channel, or a mocked in-memory bus for testing.
package p2p

import (
	"bufio"
	"encoding/json"
	"fmt"

	"github.com/wooffie/klingnode/pkg/block"
)

// Kind tags a Message's payload.
type Kind string

const (
	KindTx            Kind = "Tx"
	KindBlock         Kind = "Block"
	KindChainRequest  Kind = "ChainRequest"
	KindChainResponse Kind = "ChainResponse"
)

// Message is the tagged union of the four network messages the Node
// exchanges with peers. Only the payload fields belonging to Kind are
// populated (ChainResponse uses both To and Chain).
type Message struct {
	Kind Kind `json:"kind"`

	Data string `json:"data,omitempty"` // Tx

	Block *block.Block `json:"block,omitempty"` // Block

	To string `json:"to,omitempty"` // ChainRequest, ChainResponse

	Chain []block.Block `json:"chain,omitempty"` // ChainResponse
}

// NewTx builds a Tx message.
func NewTx(data string) Message { return Message{Kind: KindTx, Data: data} }

// NewBlock builds a Block message.
func NewBlock(b block.Block) Message { return Message{Kind: KindBlock, Block: &b} }

// NewChainRequest builds a ChainRequest message addressed to "to".
func NewChainRequest(to string) Message { return Message{Kind: KindChainRequest, To: to} }

// NewChainResponse builds a ChainResponse message addressed to "to" carrying chain.
func NewChainResponse(to string, chain []block.Block) Message {
	return Message{Kind: KindChainResponse, To: to, Chain: chain}
}

// Envelope pairs an inbound Message with the sender's transport-level peer
// identity. Sender identity is never part of the wire JSON itself — it is
// metadata the opaque bus attaches on delivery, which is what lets a
// ChainResponse's "to" field be recognized as addressed to this node.
type Envelope struct {
	From    string
	Message Message
}

// Encode renders a message as a single JSON line (no trailing newline).
func (m Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// DecodeMessage parses a single wire line into a Message.
func DecodeMessage(line []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(line, &m); err != nil {
		return Message{}, fmt.Errorf("decode message: %w", err)
	}
	return m, nil
}

// writeLine writes a message followed by '\n', the line-delimited framing
// every wire transport in this package shares.
func writeLine(w *bufio.Writer, m Message) error {
	data, err := m.Encode()
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if err := w.WriteByte('\n'); err != nil {
		return err
	}
	return w.Flush()
}
