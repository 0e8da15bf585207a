package config

import "fmt"

// ErrInvalidDifficulty is returned by Validate when the configured
// difficulty suffix contains anything other than lowercase hex digits
// (0-9, a-f); uppercase A-F is rejected too.
var ErrInvalidDifficulty = fmt.Errorf("difficulty must be a lowercase hex string")

// Validate checks runtime node config for obvious operator mistakes.
// A malformed difficulty suffix is the one fatal, startup-time configuration
// error this node recognizes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.Difficulty == "" {
		cfg.Difficulty = DefaultDifficulty
	}
	for _, r := range cfg.Difficulty {
		if !isHexDigit(r) {
			return ErrInvalidDifficulty
		}
	}
	return nil
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')
}
