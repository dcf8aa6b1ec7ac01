package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 256, cfg.MaxScopeDepth)
	assert.True(t, cfg.Simplify.SubstituteFacts)
	assert.True(t, cfg.Simplify.TrimAlignment)
	assert.Equal(t, []string{"simplify"}, cfg.LogSections)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelError, level)

	// callers cannot modify the defaults through a returned config
	cfg.LogSections[0] = "changed"
	assert.Equal(t, []string{"simplify"}, Default().LogSections)
}

func TestLoadOverridesOnlyDefinedKeys(t *testing.T) {
	path := writeConfig(t, `
max_scope_depth = 8
log_level = "debug"

[simplify]
substitute_facts = false
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.MaxScopeDepth)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.Simplify.SubstituteFacts)
	assert.True(t, cfg.Simplify.TrimAlignment)
	assert.Equal(t, []string{"simplify"}, cfg.LogSections)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(writeConfig(t, "max_scope_depth = 0"))
	assert.ErrorContains(t, err, "max_scope_depth")

	_, err = Load(writeConfig(t, `log_level = "loud"`))
	assert.ErrorContains(t, err, "log_level")

	_, err = Load(writeConfig(t, "unknown_key = 1\n[simplify]\nother = true"))
	assert.ErrorContains(t, err, "unknown_key")
	assert.ErrorContains(t, err, "simplify.other")

	_, err = Load(writeConfig(t, "max_scope_depth = "))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
