package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestLoadFileAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dtflash.json")
	content := `{"symbolPrefix": "BOARD", "policy": {"enabled": false}, "logLevel": "debug"}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.SymbolPrefix != "BOARD" {
		t.Fatalf("expected symbol prefix BOARD, got %q", cfg.SymbolPrefix)
	}
	if cfg.Directives.Flash != "zephyr,flash" || cfg.Directives.CodePartition != "zephyr,code-partition" {
		t.Fatalf("expected default directives, got %+v", cfg.Directives)
	}
	if cfg.NoFlashSentinel != "dummy-flash" || cfg.PartitionPrefix != "FLASH_AREA" {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if cfg.PolicyEnabled() {
		t.Fatalf("expected policy disabled")
	}
	if !cfg.ValidationEnabled() {
		t.Fatalf("expected validation enabled by default")
	}
	if cfg.Level() != logrus.DebugLevel {
		t.Fatalf("expected debug level, got %v", cfg.Level())
	}
	if len(cfg.Passthrough) != 3 {
		t.Fatalf("expected default passthrough properties, got %v", cfg.Passthrough)
	}
}

func TestLoadFileRejectsBadLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dtflash.json")
	if err := os.WriteFile(path, []byte(`{"logLevel": "loud"}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatalf("expected error for unknown log level")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dtflash.json")
	cfg := DefaultConfig()
	cfg.PartitionPrefix = "AREA"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if loaded.PartitionPrefix != "AREA" {
		t.Fatalf("expected AREA, got %q", loaded.PartitionPrefix)
	}
}

func TestLoadFallsBackToDefaults(t *testing.T) {
	root := t.TempDir()
	t.Setenv("HOME", root)
	cwd, _ := os.Getwd()
	if err := os.Chdir(root); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	defer func() { _ = os.Chdir(cwd) }()

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ChosenPath != "/chosen" {
		t.Fatalf("expected default chosen path, got %q", cfg.ChosenPath)
	}
}
