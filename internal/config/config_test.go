package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/scribe/internal/history"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "scribe.db", cfg.Database)
	assert.Equal(t, int64(0), cfg.CollapseWindowMs)
}

func TestLoad_CUE(t *testing.T) {
	path := writeConfig(t, "scribe.cue", `
collapse_window_ms: 1000
collapse_mask: ["finished"]
log_level: "debug"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Config{
		CollapseWindowMs: 1000,
		CollapseMask:     []string{"finished"},
		Database:         "scribe.db",
		LogLevel:         "debug",
	}, cfg)
}

func TestLoad_CUEDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "empty.cue", ``))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_CUERejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"negative window", `collapse_window_ms: -1`},
		{"string window", `collapse_window_ms: "soon"`},
		{"unknown field", `collapse_windows: 10`},
		{"bad log level", `log_level: "loud"`},
		{"syntax error", `collapse_window_ms: {`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, "bad.cue", tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, "scribe.yaml", `
collapse_window_ms: 250
collapse_mask: [finished, stage]
database: /tmp/history.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Config{
		CollapseWindowMs: 250,
		CollapseMask:     []string{"finished", "stage"},
		Database:         "/tmp/history.db",
		LogLevel:         "info",
	}, cfg)
}

func TestLoad_YAMLEmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, "scribe.yml", ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAMLRejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"negative window", "collapse_window_ms: -5\n"},
		{"unknown field", "collapse_windows: 10\n"},
		{"bad log level", "log_level: loud\n"},
		{"wrong type", "collapse_mask: 12\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, "bad.yaml", tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "scribe.toml", "x = 1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".toml")
}

func TestConfig_CompactionOptions(t *testing.T) {
	cfg := Config{CollapseWindowMs: 500, CollapseMask: []string{"finished"}}

	opts := cfg.CompactionOptions()
	assert.Equal(t, history.CompactionOptions{CollapseWindowMs: 500, CollapseMask: []string{"finished"}}, opts)

	opts.CollapseMask[0] = "changed"
	assert.Equal(t, "finished", cfg.CollapseMask[0])

	s := history.New[string](cfg.HistoryOptions()...)
	assert.Equal(t, int64(500), s.Options().CollapseWindowMs)
}

func TestConfig_SlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, Config{LogLevel: "debug"}.SlogLevel())
	assert.Equal(t, slog.LevelWarn, Config{LogLevel: "warn"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, Config{LogLevel: "bogus"}.SlogLevel())
}
