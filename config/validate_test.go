package config

import "testing"

func TestValidateDefaultsEmptyDifficulty(t *testing.T) {
	cfg := &Config{}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Difficulty != DefaultDifficulty {
		t.Fatalf("Difficulty = %q, want default %q", cfg.Difficulty, DefaultDifficulty)
	}
}

func TestValidateAcceptsLowercaseHex(t *testing.T) {
	cfg := &Config{Difficulty: "00ff"}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejectsNonHex(t *testing.T) {
	cfg := &Config{Difficulty: "not-hex"}
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for non-hex difficulty")
	}
}

func TestValidateRejectsUppercase(t *testing.T) {
	cfg := &Config{Difficulty: "FF"}
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for uppercase difficulty (suffix must be lowercase hex)")
	}
}
