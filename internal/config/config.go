// Package config loads engine settings from CUE or YAML files.
//
// CUE files are unified with the embedded #Config schema, which supplies
// defaults and rejects unknown fields. YAML files are decoded strictly and
// checked against the same rules.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/scribe/internal/history"
)

//go:embed schema.cue
var schemaSource string

// Default values, kept in step with schema.cue.
const (
	DefaultDatabase = "scribe.db"
	DefaultLogLevel = "info"
)

var validLogLevels = []string{"debug", "info", "warn", "error"}

// Config holds the settings shared by the CLI and the store.
type Config struct {
	CollapseWindowMs int64    `json:"collapse_window_ms" yaml:"collapse_window_ms"`
	CollapseMask     []string `json:"collapse_mask" yaml:"collapse_mask"`
	Database         string   `json:"database" yaml:"database"`
	LogLevel         string   `json:"log_level" yaml:"log_level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		CollapseMask: []string{},
		Database:     DefaultDatabase,
		LogLevel:     DefaultLogLevel,
	}
}

// Load reads the configuration at path. The format is chosen by extension:
// .cue, .yaml, or .yml. An empty path returns Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	switch ext := filepath.Ext(path); ext {
	case ".cue":
		return parseCUE(path, data)
	case ".yaml", ".yml":
		return parseYAML(data)
	default:
		return Config{}, fmt.Errorf("config: unsupported file extension %q", ext)
	}
}

func parseCUE(path string, data []byte) (Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, fmt.Errorf("config schema: %w", err)
	}

	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}

	var cfg Config
	if err := unified.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config %s: decode: %w", path, err)
	}
	if cfg.CollapseMask == nil {
		cfg.CollapseMask = []string{}
	}
	return cfg, nil
}

func parseYAML(data []byte) (Config, error) {
	cfg := Default()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: parse YAML: %w", err)
	}
	if cfg.CollapseMask == nil {
		cfg.CollapseMask = []string{}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the rules the CUE schema enforces, for configs built by
// hand or decoded from YAML.
func (c Config) Validate() error {
	if c.CollapseWindowMs < 0 {
		return fmt.Errorf("config: collapse_window_ms must be >= 0, got %d", c.CollapseWindowMs)
	}
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("config: log_level must be one of %v, got %q", validLogLevels, c.LogLevel)
	}
	return nil
}

// CompactionOptions converts the config into history compaction options.
func (c Config) CompactionOptions() history.CompactionOptions {
	return history.CompactionOptions{
		CollapseWindowMs: c.CollapseWindowMs,
		CollapseMask:     slices.Clone(c.CollapseMask),
	}
}

// HistoryOptions returns the config as builder options.
func (c Config) HistoryOptions() []history.Option {
	return []history.Option{history.WithCompaction(c.CompactionOptions())}
}

// SlogLevel maps LogLevel onto a slog level. Unknown values map to Info.
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
