// Package config loads the settings of the compiler from an optional TOML
// file.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/cottand/pixl/internal/log"
	"github.com/cottand/pixl/util"
)

const FileName = "pixl.toml"

type Config struct {
	// MaxScopeDepth bounds how deeply fact scopes nest, so pathological
	// nesting is reported instead of exhausting the stack.
	MaxScopeDepth int      `toml:"max_scope_depth"`
	LogLevel      string   `toml:"log_level"`
	LogSections   []string `toml:"log_sections"`

	Simplify SimplifyConfig `toml:"simplify"`
}

type SimplifyConfig struct {
	// SubstituteFacts replaces conditions known to hold inside a branch with
	// constants.
	SubstituteFacts bool `toml:"substitute_facts"`
	// TrimAlignment tightens bounds using alignment after every node.
	TrimAlignment bool `toml:"trim_alignment"`
}

var defaultConfig = Config{
	MaxScopeDepth: 256,
	LogLevel:      "error",
	LogSections:   []string{"simplify"},
	Simplify: SimplifyConfig{
		SubstituteFacts: true,
		TrimAlignment:   true,
	},
}

func Default() Config {
	cfg := defaultConfig
	cfg.LogSections = append([]string(nil), defaultConfig.LogSections...)
	return cfg
}

// Load reads path over the defaults. Keys missing from the file keep their
// default value. An empty path means the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, errors.Wrapf(err, "reading config %s", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		return Config{}, fmt.Errorf("unknown keys in config %s: %v", path, util.SortedUnique(keys))
	}
	return cfg, cfg.Validate()
}

// LoadDefaultFile loads FileName from the working directory if it exists.
func LoadDefaultFile() (Config, error) {
	if _, err := os.Stat(FileName); err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, err
	}
	return Load(FileName)
}

func (c Config) Validate() error {
	if c.MaxScopeDepth < 1 {
		return fmt.Errorf("max_scope_depth must be positive, got %d", c.MaxScopeDepth)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level '%s': %w", c.LogLevel, err)
	}
	return level, nil
}

// ApplyLogging configures the default logger from c.
func (c Config) ApplyLogging() error {
	level, err := c.Level()
	if err != nil {
		return err
	}
	log.SetLevel(level)
	log.EnableSections(c.LogSections...)
	return nil
}
