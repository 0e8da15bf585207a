// Package config handles node configuration: the difficulty suffix, P2P
// listen/seed addresses, and logging options, loaded with the precedence
// defaults -> config file -> command-line flags/environment.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Config holds a node's runtime configuration.
type Config struct {
	// Difficulty is the lowercase hex suffix a block hash must end with.
	// Empty/absent resolves to "00" (see Load and Validate).
	Difficulty string `conf:"difficulty"`

	// PeerID is this node's identifier as seen in ChainRequest/ChainResponse
	// addressing. When empty the libp2p host ID is used, or a generated UUID
	// when P2P is disabled.
	PeerID string `conf:"peerid"`

	DataDir string `conf:"datadir"`

	P2P P2PConfig
	Log LogConfig
}

// P2PConfig holds peer-to-peer network settings.
type P2PConfig struct {
	Enabled    bool     `conf:"p2p.enabled"`
	ListenAddr string   `conf:"p2p.listen"` // multiaddr, e.g. /ip4/0.0.0.0/tcp/30303
	Seeds      []string `conf:"p2p.seeds"`  // bootstrap peer multiaddrs
	NoDiscover bool     `conf:"p2p.nodiscover"`
	DHTServer  bool     `conf:"p2p.dhtserver"` // run the DHT in server mode
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.klingnode
//	macOS:   ~/Library/Application Support/Klingnode
//	Windows: %APPDATA%\Klingnode
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".klingnode"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Klingnode")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "Klingnode")
		}
		return filepath.Join(home, "AppData", "Roaming", "Klingnode")
	default:
		return filepath.Join(home, ".klingnode")
	}
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "klingnode.conf")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}
