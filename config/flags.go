package config

import (
	"flag"
	"fmt"
	"os"
)

// Flags holds parsed command-line flags.
type Flags struct {
	Help    bool
	Version bool

	Difficulty string
	PeerID     string
	DataDir    string
	Config     string

	P2P        bool
	P2PListen  string
	Seeds      string
	NoDiscover bool
	DHTServer  bool

	LogLevel string
	LogFile  string
	LogJSON  bool

	Args []string

	// Explicitly-set bool flags (for true/false overrides).
	SetP2P        bool
	SetNoDiscover bool
	SetLogJSON    bool
	SetDifficulty bool
}

// ParseFlags parses command-line flags.
func ParseFlags() *Flags {
	f := &Flags{}
	fs := flag.NewFlagSet("klingnode", flag.ContinueOnError)

	fs.BoolVar(&f.Help, "help", false, "Show help message")
	fs.BoolVar(&f.Help, "h", false, "Show help message (shorthand)")
	fs.BoolVar(&f.Version, "version", false, "Show version information")
	fs.BoolVar(&f.Version, "v", false, "Show version (shorthand)")

	fs.StringVar(&f.Difficulty, "difficulty", "", "Required hex suffix of a valid block hash")
	fs.StringVar(&f.Difficulty, "d", "", "Required hex suffix of a valid block hash (shorthand)")
	fs.StringVar(&f.PeerID, "peerid", "", "This node's peer identifier")
	fs.StringVar(&f.DataDir, "datadir", "", "Data directory path")
	fs.StringVar(&f.Config, "config", "", "Config file path")
	fs.StringVar(&f.Config, "c", "", "Config file path (shorthand)")

	fs.BoolVar(&f.P2P, "p2p", true, "Enable P2P networking")
	fs.StringVar(&f.P2PListen, "p2p-listen", "", "P2P listen multiaddr")
	fs.StringVar(&f.Seeds, "seeds", "", "Seed nodes as comma-separated libp2p multiaddrs")
	fs.BoolVar(&f.NoDiscover, "nodiscover", false, "Disable peer discovery")
	fs.BoolVar(&f.DHTServer, "dht-server", false, "Run the DHT in server mode")

	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.LogFile, "log-file", "", "Log file path")
	fs.BoolVar(&f.LogJSON, "log-json", false, "Output logs as JSON")

	fs.Usage = func() {
		printUsage()
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	f.SetP2P = isFlagSet(fs, "p2p")
	f.SetNoDiscover = isFlagSet(fs, "nodiscover")
	f.SetLogJSON = isFlagSet(fs, "log-json")
	f.SetDifficulty = isFlagSet(fs, "difficulty") || isFlagSet(fs, "d")

	f.Args = fs.Args()

	return f
}

// ApplyFlags applies command-line flags to a Config struct. Flags have the
// highest precedence of any configuration source: CLI wins over the
// environment, which wins over the config file.
func ApplyFlags(cfg *Config, f *Flags) {
	if f.SetDifficulty {
		cfg.Difficulty = f.Difficulty
	}
	if f.PeerID != "" {
		cfg.PeerID = f.PeerID
	}
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}

	if f.SetP2P {
		cfg.P2P.Enabled = f.P2P
	}
	if f.P2PListen != "" {
		cfg.P2P.ListenAddr = f.P2PListen
	}
	if f.Seeds != "" {
		cfg.P2P.Seeds = parseStringList(f.Seeds)
	}
	if f.SetNoDiscover {
		cfg.P2P.NoDiscover = f.NoDiscover
	}
	if f.DHTServer {
		cfg.P2P.DHTServer = true
	}

	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.Log.File = f.LogFile
	}
	if f.SetLogJSON {
		cfg.Log.JSON = f.LogJSON
	}
}

// isFlagSet checks if a flag was explicitly set.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(fl *flag.Flag) {
		if fl.Name == name {
			found = true
		}
	})
	return found
}

func printUsage() {
	usage := `Klingnode - a proof-of-work blockchain node

Usage:
  klingnode [options]
  klingnode --help

Commands:
  --help, -h      Show this help message
  --version, -v   Show version information

Core Options:
  --difficulty, -d  Required hex suffix of a valid block hash (default: 00)
                     Also settable via the DIFFICULTY environment variable;
                     this flag takes precedence over the environment.
  --peerid          This node's peer identifier
  --datadir         Data directory (default: ` + DefaultDataDir() + `)
  --config, -c      Config file path (default: <datadir>/klingnode.conf)

P2P Options:
  --p2p             Enable P2P networking (default: true)
  --p2p-listen      P2P listen multiaddr (default: /ip4/0.0.0.0/tcp/30303)
  --seeds           Seed nodes as comma-separated libp2p multiaddrs
  --nodiscover      Disable peer discovery
  --dht-server      Run the DHT in server mode (for seed nodes)

Logging Options:
  --log-level     Log level: debug, info, warn, error (default: info)
  --log-file      Log file path (default: <datadir>/logs/klingnode.log)
  --log-json      Output logs as JSON

Interactive commands (once running):
  ls          print the current chain
  =<text>     submit <text> as a new transaction
  peers       print this node's own peer identifier
  exit        shut down
`
	fmt.Print(usage)
}

// Load loads configuration with the following precedence:
//  1. Default values
//  2. Auto-create data dir + default config (idempotent)
//  3. Config file
//  4. DIFFICULTY environment variable
//  5. Command-line flags (highest)
func Load() (*Config, *Flags, error) {
	flags := ParseFlags()

	if flags.Help {
		printUsage()
		os.Exit(0)
	}
	if flags.Version {
		fmt.Println("klingnode version 0.1.0")
		os.Exit(0)
	}

	cfg := Default()

	if flags.DataDir != "" {
		cfg.DataDir = flags.DataDir
	}

	if err := EnsureDataDirs(cfg); err != nil {
		return nil, nil, fmt.Errorf("ensuring data dirs: %w", err)
	}

	configPath := flags.Config
	if configPath == "" {
		configPath = cfg.ConfigFile()
	}

	fileValues, err := LoadFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config file: %w", err)
	}
	if err := ApplyFileConfig(cfg, fileValues); err != nil {
		return nil, nil, fmt.Errorf("applying config file: %w", err)
	}

	if env, ok := os.LookupEnv("DIFFICULTY"); ok {
		cfg.Difficulty = env
	}

	ApplyFlags(cfg, flags)

	if err := Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, flags, nil
}

// EnsureDataDirs creates the data directory and a default config file if
// they don't already exist. Idempotent — safe to call on every startup.
func EnsureDataDirs(cfg *Config) error {
	dirs := []string{
		cfg.DataDir,
		cfg.LogsDir(),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	configPath := cfg.ConfigFile()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := WriteDefaultConfig(configPath); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}
	}

	return nil
}
