package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Config is the top-level configuration for dtflash
type Config struct {
	// Directives maps directive roles to the tags found in the chosen node
	Directives DirectiveConfig `json:"directives,omitempty"`

	// NoFlashSentinel is the node address used by systems without a flash controller
	NoFlashSentinel string `json:"noFlashSentinel,omitempty"`

	// SymbolPrefix is prepended to flash and code partition symbols ("DT")
	SymbolPrefix string `json:"symbolPrefix,omitempty"`

	// PartitionPrefix is prepended to partition symbols ("FLASH_AREA")
	PartitionPrefix string `json:"partitionPrefix,omitempty"`

	// PartitionsCompatible marks the parent node of partition nodes
	PartitionsCompatible string `json:"partitionsCompatible,omitempty"`

	// ChosenPath is the node holding the directive -> node mapping
	ChosenPath string `json:"chosenPath,omitempty"`

	// Passthrough lists flash node properties forwarded as definitions
	Passthrough []string `json:"passthrough,omitempty"`

	// Validate enables the CUE contract check of the emitted definitions
	Validate *bool `json:"validate,omitempty"`

	// Policy controls flash layout checks
	Policy PolicyConfig `json:"policy,omitempty"`

	// LogLevel is a logrus level name: "debug", "info", "warn", "error"
	LogLevel string `json:"logLevel,omitempty"`
}

// DirectiveConfig names the directive tags
type DirectiveConfig struct {
	Flash         string `json:"flash,omitempty"`
	CodePartition string `json:"codePartition,omitempty"`
}

// PolicyConfig controls Rego layout checks
type PolicyConfig struct {
	// Enabled turns layout checks on
	Enabled *bool `json:"enabled,omitempty"`

	// Files is a list of glob patterns for additional .rego modules
	Files []string `json:"files,omitempty"`

	// Exclude is a list of glob patterns removed from Files
	Exclude []string `json:"exclude,omitempty"`
}

// DefaultConfig returns a sensible default configuration
func DefaultConfig() *Config {
	return &Config{
		Directives: DirectiveConfig{
			Flash:         "zephyr,flash",
			CodePartition: "zephyr,code-partition",
		},
		NoFlashSentinel:      "dummy-flash",
		SymbolPrefix:         "DT",
		PartitionPrefix:      "FLASH_AREA",
		PartitionsCompatible: "fixed-partitions",
		ChosenPath:           "/chosen",
		Passthrough:          []string{"label", "write-block-size", "erase-block-size"},
		Validate:             boolPtr(true),
		Policy: PolicyConfig{
			Enabled: boolPtr(true),
		},
		LogLevel: "info",
	}
}

func boolPtr(v bool) *bool {
	return &v
}

// Load finds and loads the configuration file
// Search order:
//  1. ./dtflash.json (current working directory)
//  2. ./.dtflash.json (current working directory)
//  3. <rootPath>/dtflash.json (if different from cwd)
//  4. ~/.config/dtflash/config.json
//
// Returns DefaultConfig if no config file is found
func Load(rootPath string) (*Config, error) {
	cwd, _ := os.Getwd()

	searchPaths := []string{
		filepath.Join(cwd, "dtflash.json"),
		filepath.Join(cwd, ".dtflash.json"),
	}

	if info, err := os.Stat(rootPath); err == nil && info.IsDir() {
		absRoot, _ := filepath.Abs(rootPath)
		if absRoot != cwd {
			searchPaths = append(searchPaths,
				filepath.Join(rootPath, "dtflash.json"),
				filepath.Join(rootPath, ".dtflash.json"),
			)
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".config", "dtflash", "config.json"))
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}

	return DefaultConfig(), nil
}

// LoadFile loads configuration from a specific file
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return &cfg, nil
}

// applyDefaults fills in missing configuration with defaults
func (c *Config) applyDefaults() {
	def := DefaultConfig()

	if c.Directives.Flash == "" {
		c.Directives.Flash = def.Directives.Flash
	}
	if c.Directives.CodePartition == "" {
		c.Directives.CodePartition = def.Directives.CodePartition
	}
	if c.NoFlashSentinel == "" {
		c.NoFlashSentinel = def.NoFlashSentinel
	}
	if c.SymbolPrefix == "" {
		c.SymbolPrefix = def.SymbolPrefix
	}
	if c.PartitionPrefix == "" {
		c.PartitionPrefix = def.PartitionPrefix
	}
	if c.PartitionsCompatible == "" {
		c.PartitionsCompatible = def.PartitionsCompatible
	}
	if c.ChosenPath == "" {
		c.ChosenPath = def.ChosenPath
	}
	if c.Passthrough == nil {
		c.Passthrough = def.Passthrough
	}
	if c.Validate == nil {
		c.Validate = boolPtr(true)
	}
	if c.Policy.Enabled == nil {
		c.Policy.Enabled = boolPtr(true)
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
}

// Save writes the configuration to a file
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// ValidationEnabled reports whether the CUE contract check runs
func (c *Config) ValidationEnabled() bool {
	return c.Validate == nil || *c.Validate
}

// PolicyEnabled reports whether layout checks run
func (c *Config) PolicyEnabled() bool {
	return c.Policy.Enabled == nil || *c.Policy.Enabled
}

// Level returns the configured log level, falling back to info
func (c *Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}
