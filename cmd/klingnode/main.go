// Klingnode runs a single proof-of-work node: it mines against a local
// transaction queue, gossips transactions and blocks to peers, and drives
// an interactive REPL for injecting transactions and inspecting the chain.
package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wooffie/klingnode/config"
	klog "github.com/wooffie/klingnode/internal/log"
	"github.com/wooffie/klingnode/internal/node"
	"github.com/wooffie/klingnode/internal/p2p"
)

func main() {
	// ── 1. Load config (defaults → file → flags) ────────────────────────
	cfg, _, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// ── 2. Init logger ──────────────────────────────────────────────────
	logFile := cfg.Log.File
	if logFile == "" {
		logFile = cfg.LogsDir() + "/klingnode.log"
	}
	if err := klog.Init(cfg.Log.Level, cfg.Log.JSON, logFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	logger := klog.WithComponent("cli")

	// ── 3. Start the transport ───────────────────────────────────────────
	var bus p2p.Bus
	peerID := cfg.PeerID
	if cfg.P2P.Enabled {
		lb, err := p2p.NewLibP2PBus(p2p.LibP2PConfig{
			ListenAddr: cfg.P2P.ListenAddr,
			Seeds:      cfg.P2P.Seeds,
			NoDiscover: cfg.P2P.NoDiscover,
			DHTServer:  cfg.P2P.DHTServer,
			DataDir:    cfg.DataDir,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to start p2p bus")
		}
		defer lb.Close()
		bus = lb
		if peerID == "" {
			peerID = lb.ID()
		}
	} else if peerID == "" {
		peerID = uuid.NewString()
	}

	// ── 4. Build and run the node ────────────────────────────────────────
	n := node.New(cfg.Difficulty, peerID, bus)
	go n.Run()
	defer n.Shutdown()

	logger.Info().
		Str("peer_id", peerID).
		Str("difficulty", cfg.Difficulty).
		Bool("p2p", cfg.P2P.Enabled).
		Msg("klingnode started")

	// ── 5. Run the REPL until "exit" or a termination signal ────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	replDone := make(chan struct{})
	go func() {
		defer close(replDone)
		runREPL(n, bus, logger)
	}()

	select {
	case <-replDone:
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	}

	logger.Info().Msg("shutting down")
}

// runREPL implements the node's three interactive commands (ls, =<text>,
// exit), plus an ambient "peers" command for operational visibility.
func runREPL(n *node.Node, bus p2p.Bus, logger zerolog.Logger) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case line == "ls":
			for _, b := range n.Snapshot() {
				fmt.Println(b.String())
			}

		case line == "peers":
			if bus == nil {
				fmt.Println("p2p disabled")
				continue
			}
			fmt.Println(bus.ID())

		case line == "exit":
			return

		case strings.HasPrefix(line, "="):
			text := line[1:]
			n.SubmitTransaction(text)
			logger.Debug().Str("tx", text).Msg("submitted transaction")

		default:
			fmt.Printf("unknown command: %q (try ls, =<text>, exit)\n", line)
		}
	}
}
