package p2p

import (
	"bufio"
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/libp2p/go-libp2p"
	dht "github.com/libp2p/go-libp2p-kad-dht"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	libp2pcrypto "github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"

	klog "github.com/wooffie/klingnode/internal/log"
)

const rendezvousFallback = "klingnode"

// LibP2PConfig configures a LibP2PBus.
type LibP2PConfig struct {
	ListenAddr string
	Seeds      []string
	NoDiscover bool
	DHTServer  bool
	NetworkID  string
	DataDir    string
}

// LibP2PBus is a Bus backed by a real libp2p GossipSub overlay. It carries
// every Message kind over a single topic, line-delimited-JSON framed.
type LibP2PBus struct {
	host   host.Host
	pubsub *pubsub.PubSub
	topic  *pubsub.Topic
	sub    *pubsub.Subscription
	dht    *dht.IpfsDHT

	cfg    LibP2PConfig
	ctx    context.Context
	cancel context.CancelFunc

	out chan Envelope
}

// NewLibP2PBus creates and starts a libp2p-backed bus.
func NewLibP2PBus(cfg LibP2PConfig) (*LibP2PBus, error) {
	ctx, cancel := context.WithCancel(context.Background())
	b := &LibP2PBus{cfg: cfg, ctx: ctx, cancel: cancel, out: make(chan Envelope, 256)}

	listen := cfg.ListenAddr
	if listen == "" {
		listen = "/ip4/0.0.0.0/tcp/0"
	}

	opts := []libp2p.Option{libp2p.ListenAddrStrings(listen)}

	if cfg.DataDir != "" {
		priv, err := loadOrCreateIdentity(cfg.DataDir)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("load p2p identity: %w", err)
		}
		opts = append(opts, libp2p.Identity(priv))
	}

	h, err := libp2p.New(opts...)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("create libp2p host: %w", err)
	}
	b.host = h

	if !cfg.NoDiscover {
		if err := b.initDHT(); err != nil {
			h.Close()
			cancel()
			return nil, fmt.Errorf("init dht: %w", err)
		}
	}

	ps, err := pubsub.NewGossipSub(ctx, h)
	if err != nil {
		b.closeDHT()
		h.Close()
		cancel()
		return nil, fmt.Errorf("create pubsub: %w", err)
	}
	b.pubsub = ps

	topic, err := ps.Join(topicName)
	if err != nil {
		b.closeDHT()
		h.Close()
		cancel()
		return nil, fmt.Errorf("join topic: %w", err)
	}
	b.topic = topic

	sub, err := topic.Subscribe()
	if err != nil {
		topic.Close()
		b.closeDHT()
		h.Close()
		cancel()
		return nil, fmt.Errorf("subscribe topic: %w", err)
	}
	b.sub = sub

	go b.readLoop()

	for _, seed := range cfg.Seeds {
		b.connectSeed(seed)
	}

	if !cfg.NoDiscover {
		b.startMDNS()
		go b.runDHTDiscovery()
	}

	return b, nil
}

func (b *LibP2PBus) rendezvous() string {
	if b.cfg.NetworkID != "" {
		return "klingnode/" + b.cfg.NetworkID
	}
	return rendezvousFallback
}

func (b *LibP2PBus) ID() string { return b.host.ID().String() }

// Publish writes a message to the shared topic, framed exactly as
// writeLine would frame it over a raw stream: a single JSON line, even
// though the transport here is GossipSub, not a raw stream handler.
func (b *LibP2PBus) Publish(m Message) error {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	if err := writeLine(w, m); err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	return b.topic.Publish(b.ctx, buf.Bytes())
}

func (b *LibP2PBus) Messages() <-chan Envelope { return b.out }

func (b *LibP2PBus) Close() error {
	b.cancel()
	if b.sub != nil {
		b.sub.Cancel()
	}
	if b.topic != nil {
		b.topic.Close()
	}
	b.closeDHT()
	close(b.out)
	if b.host != nil {
		return b.host.Close()
	}
	return nil
}

func (b *LibP2PBus) readLoop() {
	logger := klog.WithComponent("p2p")
	for {
		raw, err := b.sub.Next(b.ctx)
		if err != nil {
			return // context cancelled
		}
		if raw.ReceivedFrom == b.host.ID() {
			continue
		}
		m, err := DecodeMessage(bytes.TrimSuffix(raw.Data, []byte("\n")))
		if err != nil {
			logger.Warn().Err(err).Msg("dropping malformed message")
			continue
		}
		env := Envelope{From: raw.ReceivedFrom.String(), Message: m}
		select {
		case b.out <- env:
		case <-b.ctx.Done():
			return
		}
	}
}

func (b *LibP2PBus) connectSeed(addr string) {
	logger := klog.WithComponent("p2p")
	info, err := peer.AddrInfoFromString(addr)
	if err != nil {
		logger.Warn().Str("addr", addr).Err(err).Msg("bad seed address")
		return
	}
	ctx, cancel := context.WithTimeout(b.ctx, 10*time.Second)
	defer cancel()
	if err := b.host.Connect(ctx, *info); err != nil {
		logger.Warn().Str("addr", addr).Err(err).Msg("seed connect failed")
	}
}

func (b *LibP2PBus) initDHT() error {
	mode := dht.ModeClient
	if b.cfg.DHTServer {
		mode = dht.ModeServer
	}
	kadDHT, err := dht.New(b.ctx, b.host, dht.Mode(mode))
	if err != nil {
		return fmt.Errorf("create kad-dht: %w", err)
	}
	b.dht = kadDHT
	return kadDHT.Bootstrap(b.ctx)
}

func (b *LibP2PBus) closeDHT() {
	if b.dht != nil {
		b.dht.Close()
		b.dht = nil
	}
}

// loadOrCreateIdentity loads a persisted libp2p identity key from dataDir, or
// generates and saves a new one, so peer IDs survive restarts.
func loadOrCreateIdentity(dataDir string) (libp2pcrypto.PrivKey, error) {
	keyPath := filepath.Join(dataDir, "node.key")

	if data, err := os.ReadFile(keyPath); err == nil {
		keyBytes, err := hex.DecodeString(string(data))
		if err != nil {
			return nil, fmt.Errorf("decode node key: %w", err)
		}
		return libp2pcrypto.UnmarshalEd25519PrivateKey(keyBytes)
	}

	priv, _, err := libp2pcrypto.GenerateEd25519Key(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	raw, err := priv.Raw()
	if err != nil {
		return nil, fmt.Errorf("marshal key: %w", err)
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	if err := os.WriteFile(keyPath, []byte(hex.EncodeToString(raw)), 0600); err != nil {
		return nil, fmt.Errorf("save node key: %w", err)
	}
	return priv, nil
}
