package p2p

import (
	"sync"

	"github.com/google/uuid"
)

// MemoryHub fans messages out to every MemoryBus registered on it,
// simulating a gossip overlay within a single process for tests and local
// multi-node demos.
type MemoryHub struct {
	mu      sync.Mutex
	members map[string]chan Envelope
}

// NewMemoryHub creates an empty hub.
func NewMemoryHub() *MemoryHub {
	return &MemoryHub{members: make(map[string]chan Envelope)}
}

// Join registers a new peer on the hub and returns its Bus. The peer ID is
// generated with a UUID unless id is supplied.
func (h *MemoryHub) Join(id string) *MemoryBus {
	if id == "" {
		id = uuid.NewString()
	}
	ch := make(chan Envelope, 256)

	h.mu.Lock()
	h.members[id] = ch
	h.mu.Unlock()

	return &MemoryBus{hub: h, id: id, in: ch}
}

func (h *MemoryHub) broadcast(from string, m Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	env := Envelope{From: from, Message: m}
	for id, ch := range h.members {
		if id == from {
			continue
		}
		select {
		case ch <- env:
		default:
			// Slow consumer: drop rather than block the broadcaster. The
			// transport collaborator owns send/receive failures; the core
			// never retries them.
		}
	}
}

func (h *MemoryHub) leave(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.members[id]; ok {
		close(ch)
		delete(h.members, id)
	}
}

// MemoryBus is a Bus backed by a MemoryHub.
type MemoryBus struct {
	hub *MemoryHub
	id  string
	in  chan Envelope
}

func (b *MemoryBus) ID() string { return b.id }

func (b *MemoryBus) Publish(m Message) error {
	b.hub.broadcast(b.id, m)
	return nil
}

func (b *MemoryBus) Messages() <-chan Envelope { return b.in }

func (b *MemoryBus) Close() error {
	b.hub.leave(b.id)
	return nil
}
