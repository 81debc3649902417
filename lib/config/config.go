// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/memshell/lib/units"
)

// EnvironmentVariable names the variable [Load] reads.
const EnvironmentVariable = "MEMSHELL_CONFIG"

// InteractiveMode selects the console front end.
type InteractiveMode string

const (
	// InteractiveAuto uses the interactive front end when stdin and
	// stdout are both terminals.
	InteractiveAuto InteractiveMode = "auto"
	// InteractiveAlways forces the interactive front end.
	InteractiveAlways InteractiveMode = "always"
	// InteractiveNever forces plain line mode.
	InteractiveNever InteractiveMode = "never"
)

// Config is the memshell configuration.
type Config struct {
	Memory  MemoryConfig  `yaml:"memory"`
	Console ConsoleConfig `yaml:"console"`
	Log     LogConfig     `yaml:"log"`
}

// MemoryConfig sizes the backing store.
type MemoryConfig struct {
	// InitialSize is the capacity allocated at startup.
	// Default: 2GB
	InitialSize string `yaml:"initial_size"`

	// Limit caps every allocation, simulating constrained memory.
	// Empty or "0" means no limit.
	Limit string `yaml:"limit"`

	// Reserved is the size of the low region kept free of file content.
	// Default: 1MB
	Reserved string `yaml:"reserved"`
}

// ConsoleConfig configures the front end.
type ConsoleConfig struct {
	// PromptSuffix follows the working directory in the prompt.
	// Default: "> "
	PromptSuffix string `yaml:"prompt_suffix"`

	// Interactive is auto, always, or never.
	// Default: auto
	Interactive InteractiveMode `yaml:"interactive"`
}

// LogConfig configures the slog logger.
type LogConfig struct {
	// Level is debug, info, warn, or error.
	// Default: warn
	Level string `yaml:"level"`
}

// Sizes holds the parsed memory fields, in bytes.
type Sizes struct {
	Initial  int64
	Limit    int64
	Reserved int64
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Memory: MemoryConfig{
			InitialSize: "2GB",
			Limit:       "",
			Reserved:    "1MB",
		},
		Console: ConsoleConfig{
			PromptSuffix: "> ",
			Interactive:  InteractiveAuto,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Load reads the file named by MEMSHELL_CONFIG. When the variable is
// unset it returns [Default].
func Load() (*Config, error) {
	path := os.Getenv(EnvironmentVariable)
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads one configuration file over the defaults. Fields the
// file omits keep their default values.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		// JSON is a subset of YAML once comments and trailing commas
		// are stripped, so one decoder and one set of tags serve both.
		data = jsonc.ToJSON(data)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.expandVariables()
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} in string fields.
func (c *Config) expandVariables() {
	c.Memory.InitialSize = expandVars(c.Memory.InitialSize)
	c.Memory.Limit = expandVars(c.Memory.Limit)
	c.Memory.Reserved = expandVars(c.Memory.Reserved)
	c.Console.PromptSuffix = expandVars(c.Console.PromptSuffix)
	c.Console.Interactive = InteractiveMode(expandVars(string(c.Console.Interactive)))
	c.Log.Level = expandVars(c.Log.Level)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		if len(parts) >= 3 {
			return parts[2]
		}
		return ""
	})
}

// Sizes parses the memory fields.
func (c *Config) Sizes() (Sizes, error) {
	var sizes Sizes
	var err error
	if sizes.Initial, err = units.ParseSize(c.Memory.InitialSize); err != nil {
		return Sizes{}, fmt.Errorf("memory.initial_size: %w", err)
	}
	if strings.TrimSpace(c.Memory.Limit) != "" {
		if sizes.Limit, err = units.ParseSize(c.Memory.Limit); err != nil {
			return Sizes{}, fmt.Errorf("memory.limit: %w", err)
		}
	}
	if sizes.Reserved, err = units.ParseSize(c.Memory.Reserved); err != nil {
		return Sizes{}, fmt.Errorf("memory.reserved: %w", err)
	}
	return sizes, nil
}

// LogLevel parses the log level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	sizes, err := c.Sizes()
	if err != nil {
		errs = append(errs, err)
	} else {
		if sizes.Limit > 0 && sizes.Initial > sizes.Limit {
			errs = append(errs, fmt.Errorf("memory.initial_size (%s) exceeds memory.limit (%s)",
				c.Memory.InitialSize, c.Memory.Limit))
		}
		if sizes.Reserved == 0 {
			errs = append(errs, fmt.Errorf("memory.reserved must be positive"))
		}
	}

	switch c.Console.Interactive {
	case InteractiveAuto, InteractiveAlways, InteractiveNever:
	default:
		errs = append(errs, fmt.Errorf("console.interactive must be one of: auto, always, never (got %q)",
			c.Console.Interactive))
	}

	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
